package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"innit/internal/genetics"
	"innit/internal/model"
)

func TestDecodeGenomeFixture(t *testing.T) {
	genome := decodeGenomeFixture(t, "minimal_genome_v1.json")
	if genome.ID != "genome-minimal-1" {
		t.Fatalf("unexpected genome id: %s", genome.ID)
	}
	if genome.DnaType != genetics.Nucleus {
		t.Fatalf("unexpected dna type: %s", genome.DnaType)
	}
	if diff := cmp.Diff([]byte{0x00, 0x01, 0x04, 0x00, 0x01, 0x01}, genome.Raw); diff != "" {
		t.Fatalf("raw mismatch (-want +got):\n%s", diff)
	}
	if len(genome.Decoded) != 2 || genome.Decoded[0].Name != "Move" {
		t.Fatalf("unexpected decoded cache: %+v", genome.Decoded)
	}
}

func TestDecodedCacheMatchesCatalog(t *testing.T) {
	genome := decodeGenomeFixture(t, "minimal_genome_v1.json")
	decoded := genetics.DefaultCatalog().Decode(genome.Raw)
	if diff := cmp.Diff(decoded, genome.Decoded); diff != "" {
		t.Fatalf("persisted cache diverges from decoder (-decoder +fixture):\n%s", diff)
	}
}

func TestDecodeGenomeFixtureWithoutDecodedCache(t *testing.T) {
	genome := decodeGenomeFixture(t, "genome_raw_only_v1.json")
	if genome.Decoded != nil {
		t.Fatalf("expected no decoded cache, got %+v", genome.Decoded)
	}
	if genome.ParentID != "genome-minimal-1" || genome.DnaType != genetics.Rna {
		t.Fatalf("unexpected genome: %+v", genome)
	}
	decoded := genetics.DefaultCatalog().Decode(genome.Raw)
	if len(decoded) != 1 || !decoded[0].IsJunk() || decoded[0].Symbol != 0xFF {
		t.Fatalf("unexpected derived stream: %+v", decoded)
	}
}

func TestDecodeGenomeVersionMismatch(t *testing.T) {
	data, err := os.ReadFile(fixturePath("genome_future_schema.json"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	if _, err := DecodeGenome(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestGenomeCodecRoundTrip(t *testing.T) {
	catalog := genetics.DefaultCatalog()
	raw, err := catalog.FromTraitNames([]string{"Receptor", "Move", "Move"})
	if err != nil {
		t.Fatalf("encode traits: %v", err)
	}
	input := model.Genome{
		VersionedRecord: Versioned(),
		ID:              "g1",
		DnaType:         genetics.Nucleoid,
		Raw:             raw,
		Stability:       0.9,
		Decoded:         catalog.Decode(raw),
		CreatedAt:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	encoded, err := EncodeGenome(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeGenome(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(input, decoded); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLineageCodecRejectsStaleRecords(t *testing.T) {
	payload, err := EncodeLineage([]model.LineageRecord{{
		VersionedRecord: model.VersionedRecord{SchemaVersion: 0, CodecVersion: CurrentCodecVersion},
		GenomeID:        "g2",
		ParentID:        "g1",
	}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeLineage(payload); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func fixturePath(name string) string {
	return filepath.Join("..", "..", "testdata", "fixtures", name)
}

func decodeGenomeFixture(t *testing.T, name string) model.Genome {
	t.Helper()

	path := fixturePath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	genome, err := DecodeGenome(data)
	if err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return genome
}
