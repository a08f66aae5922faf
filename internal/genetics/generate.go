package genetics

// Gene window layout. The length byte is written for every window but the
// decoder never uses it to vary the window size.
const (
	WindowWidth       = 3
	GeneMarker   byte = 0x00
	GeneLength   byte = 0x01
	ltrWindows        = 2
)

// Rand is the random source consumed by the generators and the mutation
// operator. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

func appendWindow(dna []byte, symbol byte) []byte {
	return append(dna, GeneMarker, GeneLength, symbol)
}

// RandomGenome encodes length windows of catalog traits drawn uniformly. With
// hasLTR the sequence is flanked by LTR marker windows.
func (c *Catalog) RandomGenome(rng Rand, hasLTR bool, length int) []byte {
	dna := c.newBuffer(hasLTR, length)
	for i := 0; i < length; i++ {
		ordinal := rng.Intn(len(c.traits)) + 1
		symbol, _ := c.symbols.Symbol(ordinal)
		dna = appendWindow(dna, symbol)
	}
	return c.closeLTR(dna, hasLTR)
}

// DistributedGenome draws a family per window from the weighted families and
// then a trait uniformly within that family.
func (c *Catalog) DistributedGenome(rng Rand, weights []uint8, families []Family, hasLTR bool, length int) ([]byte, error) {
	if len(weights) == 0 {
		return nil, &InvalidDistributionError{Reason: "no weights"}
	}
	if len(weights) != len(families) {
		return nil, &InvalidDistributionError{Reason: "weights and families differ in length"}
	}
	total := 0
	for i, weight := range weights {
		if weight == 0 {
			continue
		}
		if len(c.byFamily[families[i]]) == 0 {
			return nil, &InvalidDistributionError{Reason: "family " + families[i].String() + " has no traits"}
		}
		total += int(weight)
	}
	if total == 0 {
		return nil, &InvalidDistributionError{Reason: "all weights are zero"}
	}

	dna := c.newBuffer(hasLTR, length)
	for i := 0; i < length; i++ {
		family := families[weightedIndex(rng, weights, total)]
		members := c.byFamily[family]
		ordinal := members[rng.Intn(len(members))]
		symbol, _ := c.symbols.Symbol(ordinal)
		dna = appendWindow(dna, symbol)
	}
	return c.closeLTR(dna, hasLTR), nil
}

// FromTraitNames encodes the named traits verbatim, one window each.
func (c *Catalog) FromTraitNames(names []string) ([]byte, error) {
	dna := make([]byte, 0, len(names)*WindowWidth)
	for _, name := range names {
		symbol, ok := c.SymbolFor(name)
		if !ok {
			return nil, &UnknownTraitError{Name: name}
		}
		dna = appendWindow(dna, symbol)
	}
	return dna, nil
}

// Encode writes a decoded trait stream back to raw bytes. Junk genes keep their
// original symbol so decode(Encode(traits)) reproduces the stream.
func (c *Catalog) Encode(traits []GeneticTrait) []byte {
	dna := make([]byte, 0, len(traits)*WindowWidth)
	for _, trait := range traits {
		symbol := trait.Symbol
		if !trait.IsJunk() {
			if known, ok := c.SymbolFor(trait.Name); ok {
				symbol = known
			}
		}
		dna = appendWindow(dna, symbol)
	}
	return dna
}

func (c *Catalog) newBuffer(hasLTR bool, length int) []byte {
	windows := max(length, 0)
	if hasLTR {
		windows += ltrWindows
	}
	dna := make([]byte, 0, windows*WindowWidth)
	if hasLTR {
		dna = c.appendLTR(dna)
	}
	return dna
}

func (c *Catalog) closeLTR(dna []byte, hasLTR bool) []byte {
	if !hasLTR {
		return dna
	}
	return c.appendLTR(dna)
}

// appendLTR writes the first LTR marker of the catalog. A catalog without one
// leaves the genome unflanked.
func (c *Catalog) appendLTR(dna []byte) []byte {
	markers := c.byFamily[LtrMarker]
	if len(markers) == 0 {
		return dna
	}
	symbol, _ := c.symbols.Symbol(markers[0])
	return appendWindow(dna, symbol)
}

func weightedIndex(rng Rand, weights []uint8, total int) int {
	pick := rng.Intn(total)
	for i, weight := range weights {
		if pick < int(weight) {
			return i
		}
		pick -= int(weight)
	}
	return len(weights) - 1
}
