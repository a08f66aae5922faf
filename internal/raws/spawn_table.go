package raws

import (
	"errors"
	"fmt"

	"innit/internal/genetics"
)

// Transition sets Value from dungeon level Level onwards.
type Transition[T any] struct {
	Level uint32 `yaml:"level"`
	Value T      `yaml:"value"`
}

// FromDungeonLevel returns the value of the last transition whose level is at
// or below level, or the zero value when none applies. Transitions are expected
// in ascending level order.
func FromDungeonLevel[T any](table []Transition[T], level uint32) T {
	for i := len(table) - 1; i >= 0; i-- {
		if level >= table[i].Level {
			return table[i].Value
		}
	}
	var zero T
	return zero
}

// Spawn couples an object template with level-dependent spawn weights and dna
// templates.
type Spawn struct {
	Npc              string                    `yaml:"npc"`
	SpawnTransitions []Transition[uint32]      `yaml:"spawn_transitions"`
	DnaTransitions   []Transition[DnaTemplate] `yaml:"dna_transitions,omitempty"`
}

func (s Spawn) Validate() error {
	if s.Npc == "" {
		return errors.New("npc name is required")
	}
	if len(s.SpawnTransitions) == 0 {
		return fmt.Errorf("%s: spawn_transitions are required", s.Npc)
	}
	for _, t := range s.DnaTransitions {
		if err := t.Value.Validate(); err != nil {
			return fmt.Errorf("%s: level %d: %w", s.Npc, t.Level, err)
		}
	}
	return nil
}

func (s Spawn) checkTraits(catalog *genetics.Catalog) error {
	for _, t := range s.DnaTransitions {
		if err := t.Value.CheckTraits(catalog); err != nil {
			return fmt.Errorf("%s: level %d: %w", s.Npc, t.Level, err)
		}
	}
	return nil
}

var ErrNothingToSpawn = errors.New("no spawn has weight on this level")

// ChooseSpawn accumulates the spawn weights of all entries for level and picks
// one proportionally.
func ChooseSpawn(rng Rand, spawns []Spawn, level uint32) (Spawn, error) {
	total := 0
	for _, s := range spawns {
		total += int(FromDungeonLevel(s.SpawnTransitions, level))
	}
	if total == 0 {
		return Spawn{}, ErrNothingToSpawn
	}
	pick := rng.Intn(total)
	for _, s := range spawns {
		weight := int(FromDungeonLevel(s.SpawnTransitions, level))
		if pick < weight {
			return s, nil
		}
		pick -= weight
	}
	return Spawn{}, ErrNothingToSpawn
}
