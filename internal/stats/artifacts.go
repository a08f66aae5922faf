package stats

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"innit/internal/model"
)

const exportIndexFile = "export_index.json"

// ExportArtifacts is everything written for one export of the genome store.
type ExportArtifacts struct {
	ExportID string
	Genomes  []model.Genome
	Lineage  []model.LineageRecord
	Census   Census
}

type ExportIndexEntry struct {
	ExportID     string `json:"export_id"`
	CreatedAtUTC string `json:"created_at_utc"`
	Genomes      int    `json:"genomes"`
	Windows      int    `json:"windows"`
}

// WriteExport writes the genomes, lineage and census of an export under
// baseDir/<export id> and returns that directory.
func WriteExport(baseDir string, artifacts ExportArtifacts) (string, error) {
	if artifacts.ExportID == "" {
		return "", fmt.Errorf("export id is required")
	}

	exportDir := filepath.Join(baseDir, artifacts.ExportID)
	if err := os.MkdirAll(exportDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(exportDir, "genomes.json"), artifacts.Genomes); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(exportDir, "lineage.json"), artifacts.Lineage); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(exportDir, "census.json"), artifacts.Census); err != nil {
		return "", err
	}
	if err := writeTraitCSV(filepath.Join(exportDir, "trait_census.csv"), artifacts.Census); err != nil {
		return "", err
	}

	entry := ExportIndexEntry{
		ExportID:     artifacts.ExportID,
		CreatedAtUTC: time.Now().UTC().Format(time.RFC3339),
		Genomes:      artifacts.Census.Genomes,
		Windows:      artifacts.Census.Windows,
	}
	if err := AppendExportIndex(baseDir, entry); err != nil {
		return "", err
	}
	return exportDir, nil
}

// ReadCensus loads the census of a previous export.
func ReadCensus(baseDir, exportID string) (Census, bool, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, exportID, "census.json"))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Census{}, false, nil
		}
		return Census{}, false, err
	}
	var census Census
	if err := json.Unmarshal(data, &census); err != nil {
		return Census{}, false, err
	}
	return census, true, nil
}

func AppendExportIndex(baseDir string, entry ExportIndexEntry) error {
	entries, err := ListExportIndex(baseDir)
	if err != nil {
		return err
	}
	entries = append(entries, entry)
	return writeJSON(filepath.Join(baseDir, exportIndexFile), entries)
}

// ListExportIndex returns recorded exports, newest first.
func ListExportIndex(baseDir string) ([]ExportIndexEntry, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, exportIndexFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var entries []ExportIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAtUTC > entries[j].CreatedAtUTC
	})
	return entries, nil
}

func writeTraitCSV(path string, census Census) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"trait", "family", "windows", "genomes"}); err != nil {
		return err
	}
	for _, trait := range census.Traits {
		record := []string{
			trait.Name,
			trait.Family.String(),
			strconv.Itoa(trait.Windows),
			strconv.Itoa(trait.Genomes),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Sync()
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
