package evo

import (
	"context"
	"errors"
	"fmt"

	"innit/internal/genetics"
	"innit/internal/model"
)

var ErrNoRandomSource = errors.New("random source is required")

// Rand is the random source used by the operators. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
	Float64() float64
}

// BitFlip flips one random bit inside one whole gene window. The decoded cache
// of the result is dropped because it no longer matches the raw bytes.
type BitFlip struct {
	Rand Rand
}

func (o *BitFlip) Name() string {
	return "bit_flip"
}

func (o *BitFlip) Apply(ctx context.Context, genome model.Genome) (model.Genome, error) {
	if err := ctx.Err(); err != nil {
		return model.Genome{}, err
	}
	if o == nil || o.Rand == nil {
		return model.Genome{}, ErrNoRandomSource
	}

	raw, err := genetics.Mutate(genome.Raw, o.Rand)
	if err != nil {
		return model.Genome{}, fmt.Errorf("%s: %w", o.Name(), err)
	}
	mutated := cloneGenome(genome)
	mutated.Raw = raw
	mutated.Decoded = nil
	return mutated, nil
}

// StabilityGate applies Operator with probability 1 - genome.Stability, the
// per-turn gene stability check of living entities.
type StabilityGate struct {
	Rand     Rand
	Operator Operator
}

func (o *StabilityGate) Name() string {
	if o == nil || o.Operator == nil {
		return "stability_gate"
	}
	return "stability_gate(" + o.Operator.Name() + ")"
}

func (o *StabilityGate) Apply(ctx context.Context, genome model.Genome) (model.Genome, error) {
	if o == nil || o.Rand == nil {
		return model.Genome{}, ErrNoRandomSource
	}
	if o.Operator == nil {
		return model.Genome{}, errors.New("gated operator is required")
	}
	if len(genome.Raw) == 0 {
		return cloneGenome(genome), nil
	}
	if o.Rand.Float64() >= 1-genome.Stability {
		return cloneGenome(genome), nil
	}
	return o.Operator.Apply(ctx, genome)
}

// ChangedPositions lists the byte offsets at which two equal-length genomes differ.
func ChangedPositions(before, after []byte) []int {
	var positions []int
	for i := 0; i < len(before) && i < len(after); i++ {
		if before[i] != after[i] {
			positions = append(positions, i)
		}
	}
	return positions
}

func cloneGenome(g model.Genome) model.Genome {
	g.Raw = append([]byte(nil), g.Raw...)
	if g.Decoded != nil {
		g.Decoded = append([]genetics.GeneticTrait(nil), g.Decoded...)
	}
	return g
}
