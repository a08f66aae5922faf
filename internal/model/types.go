package model

import (
	"time"

	"innit/internal/genetics"
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Genome is the persisted form of an entity genome. Decoded is a derivable
// cache and may be absent on read.
type Genome struct {
	VersionedRecord
	ID        string                  `json:"id"`
	ParentID  string                  `json:"parent_id,omitempty"`
	Name      string                  `json:"name,omitempty"`
	DnaType   genetics.DnaType        `json:"dna_type"`
	Raw       []byte                  `json:"raw"`
	Stability float64                 `json:"stability"`
	Decoded   []genetics.GeneticTrait `json:"decoded,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
}

// Dna returns the genome in the form the expression engine consumes.
func (g Genome) Dna() genetics.Dna {
	return genetics.Dna{
		Type:    g.DnaType,
		Raw:     append([]byte(nil), g.Raw...),
		Decoded: append([]genetics.GeneticTrait(nil), g.Decoded...),
	}
}

// LineageRecord links a genome to the genome it was derived from.
type LineageRecord struct {
	VersionedRecord
	GenomeID   string `json:"genome_id"`
	ParentID   string `json:"parent_id"`
	Generation int    `json:"generation"`
	Operation  string `json:"operation"`
	// Mutations lists the byte positions flipped while deriving the genome.
	Mutations []int `json:"mutations,omitempty"`
}
