package evo

import (
	"context"

	"innit/internal/model"
)

// Operator derives a new genome from an existing one. Implementations never
// modify the input genome.
type Operator interface {
	Name() string
	Apply(ctx context.Context, genome model.Genome) (model.Genome, error)
}
