package stats

import (
	"innit/internal/genetics"
	"innit/internal/model"
)

// TraitCount tallies one catalog trait across a set of genomes.
type TraitCount struct {
	Name    string          `json:"name"`
	Family  genetics.Family `json:"family"`
	Windows int             `json:"windows"`
	Genomes int             `json:"genomes"`
}

// Census summarizes the trait makeup of a genome population.
type Census struct {
	Genomes     int            `json:"genomes"`
	Windows     int            `json:"windows"`
	JunkWindows int            `json:"junk_windows"`
	MeanWindows float64        `json:"mean_windows"`
	ByDnaType   map[string]int `json:"by_dna_type"`
	Traits      []TraitCount   `json:"traits"`
}

// TakeCensus decodes every genome against catalog and counts trait windows.
// Traits are reported in catalog order, including those that never occur.
func TakeCensus(catalog *genetics.Catalog, genomes []model.Genome) Census {
	traits := catalog.Traits()
	index := make(map[string]int, len(traits))
	census := Census{
		Genomes:   len(genomes),
		ByDnaType: make(map[string]int),
		Traits:    make([]TraitCount, len(traits)),
	}
	for i, trait := range traits {
		index[trait.Name] = i
		census.Traits[i] = TraitCount{Name: trait.Name, Family: trait.Family}
	}

	for _, genome := range genomes {
		census.ByDnaType[genome.DnaType.String()]++
		decoded := catalog.Decode(genome.Raw)
		census.Windows += len(decoded)

		seen := make(map[int]bool)
		for _, trait := range decoded {
			if trait.IsJunk() {
				census.JunkWindows++
				continue
			}
			i := index[trait.Name]
			census.Traits[i].Windows++
			if !seen[i] {
				seen[i] = true
				census.Traits[i].Genomes++
			}
		}
	}
	if census.Genomes > 0 {
		census.MeanWindows = float64(census.Windows) / float64(census.Genomes)
	}
	return census
}

// JunkRatio is the share of decoded windows that did not map to a catalog trait.
func (c Census) JunkRatio() float64 {
	if c.Windows == 0 {
		return 0
	}
	return float64(c.JunkWindows) / float64(c.Windows)
}
