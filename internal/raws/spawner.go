package raws

import (
	"errors"
	"fmt"

	"innit/internal/genetics"
)

// Rand is the random source used for spawning. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Spawned is an entity built from an object template.
type Spawned struct {
	Template  ObjectTemplate
	Dna       genetics.Dna
	Phenotype genetics.Phenotype
}

type Spawner struct {
	Catalog *genetics.Catalog
	Rand    Rand
}

func NewSpawner(catalog *genetics.Catalog, rng Rand) *Spawner {
	return &Spawner{Catalog: catalog, Rand: rng}
}

// Genome builds raw dna for a dna template.
func (s *Spawner) Genome(tmpl DnaTemplate) ([]byte, error) {
	if s == nil || s.Catalog == nil {
		return nil, errors.New("spawner requires a catalog")
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	switch tmpl.Kind {
	case DnaRandom:
		if s.Rand == nil {
			return nil, errors.New("random template requires a random source")
		}
		return s.Catalog.RandomGenome(s.Rand, tmpl.HasLTR, tmpl.GenomeLen), nil
	case DnaDistributed:
		if s.Rand == nil {
			return nil, errors.New("distributed template requires a random source")
		}
		return s.Catalog.DistributedGenome(
			s.Rand,
			[]uint8{tmpl.Rates.Sensing, tmpl.Rates.Processing, tmpl.Rates.Actuating},
			[]genetics.Family{genetics.Sensing, genetics.Processing, genetics.Actuating},
			tmpl.HasLTR,
			tmpl.GenomeLen,
		)
	default:
		return s.Catalog.FromTraitNames(tmpl.Traits)
	}
}

// Spawn builds and expresses the genome of an object template.
func (s *Spawner) Spawn(tmpl ObjectTemplate) (Spawned, error) {
	if err := tmpl.Validate(); err != nil {
		return Spawned{}, err
	}
	return s.spawnWith(tmpl, tmpl.Dna)
}

// SpawnAt picks a spawn for the dungeon level and builds it from its object
// template, replacing the template's dna with the level's dna transition when
// one applies.
func (s *Spawner) SpawnAt(raws Raws, level uint32) (Spawned, error) {
	if s == nil || s.Rand == nil {
		return Spawned{}, errors.New("spawner requires a random source")
	}
	spawn, err := ChooseSpawn(s.Rand, raws.Spawns, level)
	if err != nil {
		return Spawned{}, err
	}
	tmpl, ok := raws.Object(spawn.Npc)
	if !ok {
		return Spawned{}, fmt.Errorf("spawn %s has no object template", spawn.Npc)
	}
	dna := tmpl.Dna
	if override := FromDungeonLevel(spawn.DnaTransitions, level); override.Kind != "" {
		dna = override
	}
	return s.spawnWith(tmpl, dna)
}

func (s *Spawner) spawnWith(tmpl ObjectTemplate, dna DnaTemplate) (Spawned, error) {
	raw, err := s.Genome(dna)
	if err != nil {
		return Spawned{}, fmt.Errorf("spawn %s: %w", tmpl.Npc, err)
	}
	phenotype, expressed, err := s.Catalog.Express(raw, tmpl.DnaType)
	if err != nil {
		return Spawned{}, fmt.Errorf("spawn %s: %w", tmpl.Npc, err)
	}
	tmpl.Dna = dna
	return Spawned{Template: tmpl, Dna: expressed, Phenotype: phenotype}, nil
}
