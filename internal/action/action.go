// Package action defines the closed set of actions an entity can perform. Every
// action belongs to one of the three capability blocks of a phenotype and carries
// a level derived from how often its trait occurs in the genome.
package action

import (
	"fmt"
	"strings"
)

// Kind identifies an action variant. KindNone marks a trait without an action template.
type Kind uint8

const (
	KindNone Kind = iota
	KindPass
	KindMove
	KindAttack
	KindRepairStructure
	KindKillSwitch
	KindBinaryFission
	KindProduceVirion
	KindInjectRnaVirus
	KindInjectRetrovirus
	KindEditGenome
	KindPickUpItem
	KindDropItem
)

var kindNames = map[Kind]string{
	KindNone:             "none",
	KindPass:             "pass",
	KindMove:             "move",
	KindAttack:           "attack",
	KindRepairStructure:  "repair_structure",
	KindKillSwitch:       "kill_switch",
	KindBinaryFission:    "binary_fission",
	KindProduceVirion:    "produce_virion",
	KindInjectRnaVirus:   "inject_rna_virus",
	KindInjectRetrovirus: "inject_retrovirus",
	KindEditGenome:       "edit_genome",
	KindPickUpItem:       "pick_up_item",
	KindDropItem:         "drop_item",
}

// identifiers are the player-facing action names used for matching key bindings
// and comparing action lists.
var identifiers = map[Kind]string{
	KindPass:             "pass",
	KindMove:             "move",
	KindAttack:           "attack",
	KindRepairStructure:  "repair",
	KindKillSwitch:       "killswitch",
	KindBinaryFission:    "bin. fission",
	KindProduceVirion:    "produce virus",
	KindInjectRnaVirus:   "inject RNA virus",
	KindInjectRetrovirus: "inject retrovirus",
	KindEditGenome:       "Manipulate Genome",
	KindPickUpItem:       "pick up item",
	KindDropItem:         "drop item",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("unknown action kind: %d", uint8(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind resolves a kind by its text name.
func ParseKind(name string) (Kind, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for kind, candidate := range kindNames {
		if candidate == normalized {
			return kind, nil
		}
	}
	return KindNone, fmt.Errorf("unknown action kind: %s", name)
}

// TargetCategory describes what an action may be aimed at.
type TargetCategory uint8

const (
	// TargetNone actions always apply to the acting entity itself.
	TargetNone TargetCategory = iota
	TargetAny
	TargetBlockingObject
	TargetEmptyObject
)

// Target is a direction relative to the acting entity.
type Target uint8

const (
	Center Target = iota
	North
	South
	East
	West
)

func (t Target) String() string {
	switch t {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	default:
		return "center"
	}
}

// Offset returns the grid delta of the target.
func (t Target) Offset() (int, int) {
	switch t {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case East:
		return 1, 0
	case West:
		return -1, 0
	default:
		return 0, 0
	}
}

// Action is one concrete action instance. Copying the value clones the action.
type Action struct {
	Kind   Kind   `json:"kind"`
	Level  int    `json:"level"`
	Target Target `json:"target"`
}

// New instantiates an action template with level zero aimed at the owner.
func New(kind Kind) Action {
	return Action{Kind: kind, Target: Center}
}

// WithLevel returns a copy of a with the given level.
func (a Action) WithLevel(level int) Action {
	a.Level = level
	return a
}

// WithTarget returns a copy of a aimed at t.
func (a Action) WithTarget(t Target) Action {
	a.Target = t
	return a
}

// Identifier is the stable name used to compare and bind actions.
func (a Action) Identifier() string {
	if id, ok := identifiers[a.Kind]; ok {
		return id
	}
	return a.Kind.String()
}

func (a Action) TargetCategory() TargetCategory {
	switch a.Kind {
	case KindMove, KindBinaryFission:
		return TargetEmptyObject
	case KindAttack:
		return TargetBlockingObject
	case KindKillSwitch:
		return TargetAny
	default:
		return TargetNone
	}
}

// EnergyCost is the energy spent performing the action. Hereditary actions cost
// their level, inventory and idle actions are free.
func (a Action) EnergyCost() int {
	switch a.Kind {
	case KindNone, KindPass, KindPickUpItem, KindDropItem:
		return 0
	default:
		return a.Level
	}
}

// Text is a short human readable description.
func (a Action) Text() string {
	switch a.Kind {
	case KindMove:
		return "move to " + a.Target.String()
	case KindAttack:
		return "attack " + a.Target.String()
	case KindRepairStructure:
		return "repair cell structure"
	case KindKillSwitch:
		return "killswitch " + a.Target.String()
	case KindBinaryFission:
		return "binary fission into " + a.Target.String()
	case KindProduceVirion:
		return "produces virus"
	default:
		return a.Identifier()
	}
}
