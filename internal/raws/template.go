// Package raws loads object and spawn templates from YAML and turns them into
// genomes and phenotypes.
package raws

import (
	"errors"
	"fmt"

	"innit/internal/genetics"
)

// DnaKind selects how a template produces its genome.
type DnaKind string

const (
	DnaRandom      DnaKind = "random"
	DnaDistributed DnaKind = "distributed"
	DnaDefined     DnaKind = "defined"
)

// Rates are the family weights of a distributed template.
type Rates struct {
	Sensing    uint8 `yaml:"s_rate"`
	Processing uint8 `yaml:"p_rate"`
	Actuating  uint8 `yaml:"a_rate"`
}

type DnaTemplate struct {
	Kind      DnaKind  `yaml:"kind"`
	GenomeLen int      `yaml:"genome_len,omitempty"`
	Rates     Rates    `yaml:",inline"`
	Traits    []string `yaml:"traits,omitempty"`
	HasLTR    bool     `yaml:"has_ltr,omitempty"`
}

func (t DnaTemplate) Validate() error {
	switch t.Kind {
	case DnaRandom:
		if t.GenomeLen <= 0 {
			return errors.New("random template requires genome_len > 0")
		}
	case DnaDistributed:
		if t.GenomeLen <= 0 {
			return errors.New("distributed template requires genome_len > 0")
		}
		if int(t.Rates.Sensing)+int(t.Rates.Processing)+int(t.Rates.Actuating) == 0 {
			return errors.New("distributed template requires a non-zero rate")
		}
	case DnaDefined:
		if len(t.Traits) == 0 {
			return errors.New("defined template requires traits")
		}
	default:
		return fmt.Errorf("unsupported dna template kind %q", t.Kind)
	}
	return nil
}

// CheckTraits reports the first trait of a defined template that the catalog
// does not know as an *genetics.UnknownTraitError.
func (t DnaTemplate) CheckTraits(catalog *genetics.Catalog) error {
	if t.Kind != DnaDefined {
		return nil
	}
	for _, name := range t.Traits {
		if _, ok := catalog.Lookup(name); !ok {
			return &genetics.UnknownTraitError{Name: name}
		}
	}
	return nil
}

type Physics struct {
	IsBlocking      bool `yaml:"is_blocking"`
	IsBlockingSight bool `yaml:"is_blocking_sight"`
	IsAlwaysVisible bool `yaml:"is_always_visible"`
	IsVisible       bool `yaml:"is_visible"`
}

type ItemTemplate struct {
	Name   string `yaml:"name"`
	Action string `yaml:"action"`
}

// ObjectTemplate describes a spawnable entity.
type ObjectTemplate struct {
	Npc        string           `yaml:"npc"`
	Glyph      string           `yaml:"glyph"`
	Physics    Physics          `yaml:"physics"`
	Item       *ItemTemplate    `yaml:"item,omitempty"`
	Controller string           `yaml:"controller,omitempty"`
	DnaType    genetics.DnaType `yaml:"dna_type"`
	Dna        DnaTemplate      `yaml:"dna_template"`
	Stability  float64          `yaml:"stability"`
}

func (t ObjectTemplate) Validate() error {
	if t.Npc == "" {
		return errors.New("npc name is required")
	}
	if len([]rune(t.Glyph)) != 1 {
		return fmt.Errorf("glyph must be a single character, got %q", t.Glyph)
	}
	if t.Stability < 0 || t.Stability > 1 {
		return fmt.Errorf("stability must be in [0,1], got %g", t.Stability)
	}
	if err := t.Dna.Validate(); err != nil {
		return fmt.Errorf("%s: %w", t.Npc, err)
	}
	return nil
}
