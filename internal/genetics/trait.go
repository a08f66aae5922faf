// Package genetics turns byte genomes into phenotypes.
//
// A genome is a sequence of 3-byte gene windows [marker, length, symbol]. The
// symbol resolves through the catalog's gray-code table to a trait; unknown
// symbols decode to junk. The more often a trait occurs, the stronger it is:
// attributes add up and action levels equal the occurrence count.
package genetics

import (
	"fmt"
	"strings"

	"innit/internal/action"
)

// Family is the capability category of a trait.
type Family uint8

const (
	Sensing Family = iota
	Processing
	Actuating
	LtrMarker
	Junk
)

var familyNames = [...]string{
	Sensing:    "sensing",
	Processing: "processing",
	Actuating:  "actuating",
	LtrMarker:  "ltr",
	Junk:       "junk",
}

func (f Family) String() string {
	if int(f) < len(familyNames) {
		return familyNames[f]
	}
	return fmt.Sprintf("family(%d)", uint8(f))
}

func (f Family) MarshalText() ([]byte, error) {
	if int(f) >= len(familyNames) {
		return nil, fmt.Errorf("unknown trait family: %d", uint8(f))
	}
	return []byte(familyNames[f]), nil
}

func (f *Family) UnmarshalText(text []byte) error {
	parsed, err := ParseFamily(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// ParseFamily resolves a family by name. Single-letter aliases s, p, a match the
// rate keys used in object templates.
func ParseFamily(name string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sensing", "s":
		return Sensing, nil
	case "processing", "p":
		return Processing, nil
	case "actuating", "a":
		return Actuating, nil
	case "ltr", "ltr_marker":
		return LtrMarker, nil
	case "junk":
		return Junk, nil
	default:
		return 0, fmt.Errorf("unknown trait family: %s", name)
	}
}

// Attribute names the capability field a trait increments.
type Attribute uint8

const (
	AttrNone Attribute = iota
	AttrSensingRange
	AttrHp
	AttrVolume
	AttrMetabolism
	AttrStorage
	AttrReceptor
	AttrLifeExpectancy
)

var attributeNames = [...]string{
	AttrNone:           "none",
	AttrSensingRange:   "sensing_range",
	AttrHp:             "hp",
	AttrVolume:         "volume",
	AttrMetabolism:     "metabolism",
	AttrStorage:        "storage",
	AttrReceptor:       "receptor",
	AttrLifeExpectancy: "life_expectancy",
}

func (a Attribute) String() string {
	if int(a) < len(attributeNames) {
		return attributeNames[a]
	}
	return fmt.Sprintf("attribute(%d)", uint8(a))
}

func (a Attribute) MarshalText() ([]byte, error) {
	if int(a) >= len(attributeNames) {
		return nil, fmt.Errorf("unknown trait attribute: %d", uint8(a))
	}
	return []byte(attributeNames[a]), nil
}

func (a *Attribute) UnmarshalText(text []byte) error {
	for i, name := range attributeNames {
		if name == string(text) {
			*a = Attribute(i)
			return nil
		}
	}
	return fmt.Errorf("unknown trait attribute: %s", text)
}

// GeneticTrait is one catalog entry or one decoded gene. Position and Symbol
// are filled in at decode time.
type GeneticTrait struct {
	Name      string      `json:"name"`
	Family    Family      `json:"family"`
	Attribute Attribute   `json:"attribute"`
	Action    action.Kind `json:"action"`
	Position  int         `json:"position"`
	Symbol    byte        `json:"symbol"`
}

// IsJunk reports whether the gene symbol did not resolve to a catalog trait.
func (t GeneticTrait) IsJunk() bool {
	return t.Family == Junk
}

// HasAction reports whether the trait carries an action template.
func (t GeneticTrait) HasAction() bool {
	return t.Action != action.KindNone
}

func (t GeneticTrait) String() string {
	if t.IsJunk() {
		return fmt.Sprintf("junk(0x%02x)@%d", t.Symbol, t.Position)
	}
	return fmt.Sprintf("%s[%s]@%d", t.Name, t.Family, t.Position)
}

func junkTrait(symbol byte, position int) GeneticTrait {
	return GeneticTrait{
		Family:   Junk,
		Position: position,
		Symbol:   symbol,
	}
}
