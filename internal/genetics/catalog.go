package genetics

import (
	"errors"
	"fmt"

	"innit/internal/action"
)

// SymbolBits is the width of the gray code used for trait symbols.
const SymbolBits = 4

// GrayCode returns the reflected binary code sequence for the given bit width.
// Element i is the code for ordinal i.
func GrayCode(bits uint) []byte {
	n := 1 << bits
	codes := make([]byte, n)
	for i := 0; i < n; i++ {
		codes[i] = byte(i ^ (i >> 1))
	}
	return codes
}

// SymbolTable is the bijection between catalog ordinals and one-byte symbols.
// Ordinal 0 is reserved and never mapped to a trait.
type SymbolTable struct {
	ordinalToSymbol []byte
	symbolToOrdinal map[byte]int
}

func newSymbolTable(traitCount int) (SymbolTable, error) {
	codes := GrayCode(SymbolBits)
	if traitCount >= len(codes) {
		return SymbolTable{}, fmt.Errorf("catalog holds %d traits, gray code addresses %d", traitCount, len(codes)-1)
	}
	table := SymbolTable{
		ordinalToSymbol: codes[:traitCount+1],
		symbolToOrdinal: make(map[byte]int, traitCount),
	}
	for ordinal := 1; ordinal <= traitCount; ordinal++ {
		table.symbolToOrdinal[codes[ordinal]] = ordinal
	}
	return table, nil
}

// Symbol returns the symbol of a 1-based ordinal.
func (t SymbolTable) Symbol(ordinal int) (byte, bool) {
	if ordinal < 1 || ordinal >= len(t.ordinalToSymbol) {
		return 0, false
	}
	return t.ordinalToSymbol[ordinal], true
}

// Ordinal returns the 1-based ordinal of a symbol.
func (t SymbolTable) Ordinal(symbol byte) (int, bool) {
	ordinal, ok := t.symbolToOrdinal[symbol]
	return ordinal, ok
}

// Catalog is the fixed, ordered list of known traits together with its symbol
// table. It is immutable after construction and safe for concurrent reads.
type Catalog struct {
	traits   []GeneticTrait
	symbols  SymbolTable
	byName   map[string]int
	byFamily map[Family][]int
}

// NewCatalog builds a catalog from an ordered trait list. The order defines the
// symbols, so reordering the list changes the meaning of stored genomes.
func NewCatalog(traits []GeneticTrait) (*Catalog, error) {
	if len(traits) == 0 {
		return nil, errors.New("catalog requires at least one trait")
	}
	symbols, err := newSymbolTable(len(traits))
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		traits:   make([]GeneticTrait, len(traits)),
		symbols:  symbols,
		byName:   make(map[string]int, len(traits)),
		byFamily: make(map[Family][]int),
	}
	for i, trait := range traits {
		if trait.Name == "" {
			return nil, fmt.Errorf("trait %d has no name", i)
		}
		if trait.Family == Junk {
			return nil, fmt.Errorf("trait %s cannot belong to the junk family", trait.Name)
		}
		if _, exists := c.byName[trait.Name]; exists {
			return nil, fmt.Errorf("duplicate trait: %s", trait.Name)
		}
		ordinal := i + 1
		trait.Position = 0
		trait.Symbol, _ = symbols.Symbol(ordinal)
		c.traits[i] = trait
		c.byName[trait.Name] = ordinal
		c.byFamily[trait.Family] = append(c.byFamily[trait.Family], ordinal)
	}
	return c, nil
}

// DefaultCatalog returns the traits shipped with the game.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultTraits())
	if err != nil {
		panic(err)
	}
	return c
}

func defaultTraits() []GeneticTrait {
	return []GeneticTrait{
		{Name: "Optical Sensor", Family: Sensing, Attribute: AttrSensingRange},
		{Name: "Metabolism", Family: Processing, Attribute: AttrMetabolism},
		{Name: "Energy Store", Family: Processing, Attribute: AttrStorage},
		{Name: "Receptor", Family: Processing, Attribute: AttrReceptor},
		{Name: "Life Expectancy", Family: Processing, Attribute: AttrLifeExpectancy},
		{Name: "Edit Genome", Family: Processing, Action: action.KindEditGenome},
		{Name: "Move", Family: Actuating, Action: action.KindMove},
		{Name: "Attack", Family: Actuating, Action: action.KindAttack},
		{Name: "Cell Membrane", Family: Actuating, Attribute: AttrHp},
		{Name: "Cytoplasm", Family: Actuating, Attribute: AttrVolume},
		{Name: "Repair Cell Structure", Family: Actuating, Action: action.KindRepairStructure},
		{Name: "Binary Fission", Family: Actuating, Action: action.KindBinaryFission},
		{Name: "Kill Switch", Family: Actuating, Action: action.KindKillSwitch},
		{Name: "Produce Virion", Family: Actuating, Action: action.KindProduceVirion},
		{Name: "LTR marker", Family: LtrMarker},
	}
}

// Len is the number of traits.
func (c *Catalog) Len() int {
	return len(c.traits)
}

// Traits returns a copy of the catalog in symbol order.
func (c *Catalog) Traits() []GeneticTrait {
	return append([]GeneticTrait(nil), c.traits...)
}

// Symbols exposes the catalog's symbol table.
func (c *Catalog) Symbols() SymbolTable {
	return c.symbols
}

// Trait returns the catalog entry for a 1-based ordinal.
func (c *Catalog) Trait(ordinal int) (GeneticTrait, bool) {
	if ordinal < 1 || ordinal > len(c.traits) {
		return GeneticTrait{}, false
	}
	return c.traits[ordinal-1], true
}

// TraitFor resolves a gene symbol.
func (c *Catalog) TraitFor(symbol byte) (GeneticTrait, bool) {
	ordinal, ok := c.symbols.Ordinal(symbol)
	if !ok {
		return GeneticTrait{}, false
	}
	return c.traits[ordinal-1], true
}

// Lookup returns the catalog entry with the given name.
func (c *Catalog) Lookup(name string) (GeneticTrait, bool) {
	ordinal, ok := c.byName[name]
	if !ok {
		return GeneticTrait{}, false
	}
	return c.traits[ordinal-1], true
}

// SymbolFor returns the symbol encoding the named trait.
func (c *Catalog) SymbolFor(name string) (byte, bool) {
	ordinal, ok := c.byName[name]
	if !ok {
		return 0, false
	}
	return c.symbols.Symbol(ordinal)
}

// ByFamily returns the catalog entries of a family in catalog order.
func (c *Catalog) ByFamily(f Family) []GeneticTrait {
	ordinals := c.byFamily[f]
	out := make([]GeneticTrait, 0, len(ordinals))
	for _, ordinal := range ordinals {
		out = append(out, c.traits[ordinal-1])
	}
	return out
}
