package stats

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"innit/internal/genetics"
	"innit/internal/model"
)

func sampleGenomes(t *testing.T) []model.Genome {
	t.Helper()
	catalog := genetics.DefaultCatalog()
	first, err := catalog.FromTraitNames([]string{"Move", "Move", "Receptor"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	second, err := catalog.FromTraitNames([]string{"Move"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	second = append(second, 0x00, 0x01, 0xFF)
	return []model.Genome{
		{ID: "g1", DnaType: genetics.Nucleus, Raw: first},
		{ID: "g2", DnaType: genetics.Rna, Raw: second},
	}
}

func TestTakeCensus(t *testing.T) {
	catalog := genetics.DefaultCatalog()
	census := TakeCensus(catalog, sampleGenomes(t))

	if census.Genomes != 2 || census.Windows != 5 || census.JunkWindows != 1 {
		t.Fatalf("unexpected totals: %+v", census)
	}
	if census.MeanWindows != 2.5 {
		t.Fatalf("mean windows: got=%v want=2.5", census.MeanWindows)
	}
	if census.JunkRatio() != 0.2 {
		t.Fatalf("junk ratio: got=%v want=0.2", census.JunkRatio())
	}
	if diff := cmp.Diff(map[string]int{"nucleus": 1, "rna": 1}, census.ByDnaType); diff != "" {
		t.Fatalf("by dna type (-want +got):\n%s", diff)
	}
	if len(census.Traits) != catalog.Len() {
		t.Fatalf("traits: got=%d want=%d", len(census.Traits), catalog.Len())
	}

	byName := make(map[string]TraitCount)
	for _, trait := range census.Traits {
		byName[trait.Name] = trait
	}
	if got := byName["Move"]; got.Windows != 3 || got.Genomes != 2 {
		t.Fatalf("move: got=%+v", got)
	}
	if got := byName["Receptor"]; got.Windows != 1 || got.Genomes != 1 {
		t.Fatalf("receptor: got=%+v", got)
	}
	if got := byName["Attack"]; got.Windows != 0 || got.Genomes != 0 {
		t.Fatalf("attack: got=%+v", got)
	}
}

func TestTakeCensusEmpty(t *testing.T) {
	census := TakeCensus(genetics.DefaultCatalog(), nil)
	if census.Genomes != 0 || census.MeanWindows != 0 || census.JunkRatio() != 0 {
		t.Fatalf("unexpected empty census: %+v", census)
	}
}

func TestWriteExport(t *testing.T) {
	baseDir := t.TempDir()
	genomes := sampleGenomes(t)
	census := TakeCensus(genetics.DefaultCatalog(), genomes)

	exportDir, err := WriteExport(baseDir, ExportArtifacts{
		ExportID: "export-1",
		Genomes:  genomes,
		Lineage:  []model.LineageRecord{{GenomeID: "g2", ParentID: "g1", Generation: 1, Operation: "bit_flip"}},
		Census:   census,
	})
	if err != nil {
		t.Fatalf("write export: %v", err)
	}
	for _, file := range []string{"genomes.json", "lineage.json", "census.json", "trait_census.csv"} {
		if _, err := os.Stat(filepath.Join(exportDir, file)); err != nil {
			t.Fatalf("expected file %s: %v", file, err)
		}
	}

	loaded, ok, err := ReadCensus(baseDir, "export-1")
	if err != nil || !ok {
		t.Fatalf("read census: ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(census, loaded); diff != "" {
		t.Fatalf("census roundtrip (-want +got):\n%s", diff)
	}

	f, err := os.Open(filepath.Join(exportDir, "trait_census.csv"))
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != len(census.Traits)+1 {
		t.Fatalf("csv rows: got=%d want=%d", len(rows), len(census.Traits)+1)
	}
	if diff := cmp.Diff([]string{"trait", "family", "windows", "genomes"}, rows[0]); diff != "" {
		t.Fatalf("csv header (-want +got):\n%s", diff)
	}

	entries, err := ListExportIndex(baseDir)
	if err != nil {
		t.Fatalf("list index: %v", err)
	}
	if len(entries) != 1 || entries[0].ExportID != "export-1" || entries[0].Genomes != 2 {
		t.Fatalf("unexpected index: %+v", entries)
	}
}

func TestWriteExportRequiresID(t *testing.T) {
	if _, err := WriteExport(t.TempDir(), ExportArtifacts{}); err == nil {
		t.Fatal("expected error for missing export id")
	}
}

func TestReadCensusMissing(t *testing.T) {
	_, ok, err := ReadCensus(t.TempDir(), "missing")
	if err != nil || ok {
		t.Fatalf("expected missing census, ok=%v err=%v", ok, err)
	}
}
