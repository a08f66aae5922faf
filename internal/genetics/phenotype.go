package genetics

import (
	"fmt"
	"strings"

	"innit/internal/action"
)

// DnaType distinguishes real cells from viral and plasmid genomes.
type DnaType uint8

const (
	Nucleus DnaType = iota
	Nucleoid
	Rna
	Plasmid
)

var dnaTypeNames = [...]string{
	Nucleus:  "nucleus",
	Nucleoid: "nucleoid",
	Rna:      "rna",
	Plasmid:  "plasmid",
}

func (t DnaType) String() string {
	if int(t) < len(dnaTypeNames) {
		return dnaTypeNames[t]
	}
	return fmt.Sprintf("dna_type(%d)", uint8(t))
}

func (t DnaType) MarshalText() ([]byte, error) {
	if int(t) >= len(dnaTypeNames) {
		return nil, fmt.Errorf("unknown dna type: %d", uint8(t))
	}
	return []byte(dnaTypeNames[t]), nil
}

func (t *DnaType) UnmarshalText(text []byte) error {
	parsed, err := ParseDnaType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func ParseDnaType(name string) (DnaType, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range dnaTypeNames {
		if candidate == normalized {
			return DnaType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown dna type: %s", name)
}

// IsCell reports whether the genome belongs to a living cell rather than a
// virus or plasmid.
func (t DnaType) IsCell() bool {
	return t == Nucleus || t == Nucleoid
}

// Dna is a genome together with its decoded trait cache.
type Dna struct {
	Type    DnaType        `json:"dna_type"`
	Raw     []byte         `json:"raw"`
	Decoded []GeneticTrait `json:"decoded,omitempty"`
}

// Sensors gather information about the environment.
type Sensors struct {
	Actions      []action.Action `json:"actions"`
	SensingRange int             `json:"sensing_range"`
}

// Receptor identity is the genome position of the gene that produced it.
type Receptor struct {
	TypeID int `json:"type_id"`
}

// Processors hold decision making actions and the energy household.
type Processors struct {
	Actions        []action.Action `json:"actions"`
	Metabolism     int             `json:"metabolism"`
	EnergyStorage  int             `json:"energy_storage"`
	Energy         int             `json:"energy"`
	LifeExpectancy int             `json:"life_expectancy"`
	LifeElapsed    int             `json:"life_elapsed"`
	Receptors      []Receptor      `json:"receptors"`
}

// Actuators interact with other objects and the world.
type Actuators struct {
	Actions []action.Action `json:"actions"`
	MaxHp   int             `json:"max_hp"`
	Hp      int             `json:"hp"`
	Volume  int             `json:"volume"`
}

// Phenotype is the expressed capability set of a genome.
type Phenotype struct {
	Sensors    Sensors    `json:"sensors"`
	Processors Processors `json:"processors"`
	Actuators  Actuators  `json:"actuators"`
}

// ActionNamed returns the first action in any block with the given identifier.
func (p Phenotype) ActionNamed(identifier string) (action.Action, bool) {
	for _, block := range [][]action.Action{p.Sensors.Actions, p.Processors.Actions, p.Actuators.Actions} {
		for _, a := range block {
			if a.Identifier() == identifier {
				return a, true
			}
		}
	}
	return action.Action{}, false
}

type counterKey struct {
	family Family
	name   string
}

type actionCounter struct {
	key   counterKey
	kind  action.Kind
	count int
}

// BuildPhenotype aggregates a decoded trait stream. Attributes accumulate one
// unit per occurrence and each action-bearing trait yields a single action whose
// level is its occurrence count. Actions are listed in order of first
// occurrence within their block.
func BuildPhenotype(decoded []GeneticTrait, dnaType DnaType) Phenotype {
	var p Phenotype
	counters := make([]actionCounter, 0)
	index := make(map[counterKey]int)

	for _, trait := range decoded {
		if trait.Family == Junk || trait.Family == LtrMarker {
			continue
		}
		applyAttribute(&p, trait)
		if !trait.HasAction() {
			continue
		}
		key := counterKey{family: trait.Family, name: trait.Name}
		i, ok := index[key]
		if !ok {
			i = len(counters)
			index[key] = i
			counters = append(counters, actionCounter{key: key, kind: trait.Action})
		}
		counters[i].count++
	}

	for _, counter := range counters {
		instance := action.New(counter.kind).WithLevel(counter.count)
		switch counter.key.family {
		case Sensing:
			p.Sensors.Actions = append(p.Sensors.Actions, instance)
		case Processing:
			p.Processors.Actions = append(p.Processors.Actions, instance)
		case Actuating:
			p.Actuators.Actions = append(p.Actuators.Actions, instance)
		}
	}

	if dnaType.IsCell() {
		p.Actuators.Actions = append(p.Actuators.Actions, action.New(action.KindPickUpItem))
	}
	p.Actuators.Hp = p.Actuators.MaxHp
	p.Processors.Energy = p.Processors.EnergyStorage
	return p
}

func applyAttribute(p *Phenotype, trait GeneticTrait) {
	switch trait.Attribute {
	case AttrSensingRange:
		p.Sensors.SensingRange++
	case AttrHp:
		p.Actuators.MaxHp++
	case AttrVolume:
		p.Actuators.Volume++
	case AttrMetabolism:
		p.Processors.Metabolism++
	case AttrStorage:
		p.Processors.EnergyStorage++
	case AttrLifeExpectancy:
		p.Processors.LifeExpectancy++
	case AttrReceptor:
		p.Processors.Receptors = append(p.Processors.Receptors, Receptor{TypeID: trait.Position})
	}
}

// Express decodes raw and builds its phenotype. The returned Dna owns a copy of
// raw and caches the decoded trait stream.
func (c *Catalog) Express(raw []byte, dnaType DnaType) (Phenotype, Dna, error) {
	if len(raw) == 0 {
		return Phenotype{}, Dna{}, ErrEmptyGenome
	}
	decoded := c.Decode(raw)
	dna := Dna{
		Type:    dnaType,
		Raw:     append([]byte(nil), raw...),
		Decoded: decoded,
	}
	return BuildPhenotype(decoded, dnaType), dna, nil
}

// GenerateAndExpress creates a fresh random genome and expresses it.
func (c *Catalog) GenerateAndExpress(rng Rand, dnaType DnaType, hasLTR bool, length int) (Phenotype, Dna, error) {
	return c.Express(c.RandomGenome(rng, hasLTR, length), dnaType)
}
