package genetics

// Decode walks raw gene windows and returns one trait per window in genome
// order. It accepts any input: the marker and length bytes are consumed without
// validation, unknown symbols become junk and a trailing partial window is
// ignored.
func (c *Catalog) Decode(raw []byte) []GeneticTrait {
	decoded := make([]GeneticTrait, 0, len(raw)/WindowWidth)
	position := 0
	for cursor := 0; cursor+2 < len(raw); {
		// marker
		cursor++
		// length
		cursor++
		symbol := raw[cursor]
		cursor++

		trait, ok := c.TraitFor(symbol)
		if !ok {
			trait = junkTrait(symbol, position)
		}
		trait.Position = position
		decoded = append(decoded, trait)
		position++
	}
	return decoded
}

// LTRSequence returns the genes strictly between the first and the last LTR
// marker. It reports false unless two distinct markers flank the sequence.
func LTRSequence(decoded []GeneticTrait) ([]GeneticTrait, bool) {
	first, last := -1, -1
	for i, trait := range decoded {
		if trait.Family != LtrMarker {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 || first == last {
		return nil, false
	}
	return append([]GeneticTrait(nil), decoded[first+1:last]...), true
}
