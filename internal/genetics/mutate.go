package genetics

// Mutation describes a single bit flip.
type Mutation struct {
	// Gene is the 0-based index of the mutated window.
	Gene     int
	Position int
	Old      byte
	New      byte
}

// Mutate returns a copy of raw with exactly one bit flipped inside one whole
// gene window. Bytes past the last whole window are never selected. Genomes
// shorter than one window have nothing to mutate and are returned unchanged.
func Mutate(raw []byte, rng Rand) ([]byte, error) {
	mutated, _, err := MutateWithReport(raw, rng)
	return mutated, err
}

// MutateWithReport is Mutate and additionally describes the flip. The report is
// zero when no window was available.
func MutateWithReport(raw []byte, rng Rand) ([]byte, Mutation, error) {
	if len(raw) == 0 {
		return nil, Mutation{}, ErrEmptyGenome
	}
	mutated := append([]byte(nil), raw...)
	traitCount := len(raw) / WindowWidth
	if traitCount == 0 {
		return mutated, Mutation{}, nil
	}

	gene := rng.Intn(traitCount)
	position := gene*WindowWidth + rng.Intn(WindowWidth)
	bit := byte(1) << uint(rng.Intn(8))

	old := mutated[position]
	mutated[position] = old ^ bit
	return mutated, Mutation{
		Gene:     gene,
		Position: position,
		Old:      old,
		New:      mutated[position],
	}, nil
}

// Window returns the bytes of a gene window, clipped to the genome.
func Window(raw []byte, gene int) []byte {
	start := gene * WindowWidth
	if gene < 0 || start >= len(raw) {
		return nil
	}
	end := min(start+WindowWidth, len(raw))
	return raw[start:end]
}
