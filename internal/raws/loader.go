package raws

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"innit/internal/genetics"
)

// Raws bundles all templates read from a raws file.
type Raws struct {
	Objects []ObjectTemplate `yaml:"objects"`
	Spawns  []Spawn          `yaml:"spawns"`
}

type rawsDocument struct {
	Objects []yaml.Node `yaml:"objects"`
	Spawns  []yaml.Node `yaml:"spawns"`
}

// Parse decodes a raws document. Entries that fail to decode, fail to validate
// or name traits missing from catalog are logged and skipped; only a malformed
// document is an error.
func Parse(data []byte, catalog *genetics.Catalog, logger *zap.Logger) (Raws, error) {
	if catalog == nil {
		catalog = genetics.DefaultCatalog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var doc rawsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Raws{}, fmt.Errorf("parse raws: %w", err)
	}

	var out Raws
	for i := range doc.Objects {
		var tmpl ObjectTemplate
		if err := doc.Objects[i].Decode(&tmpl); err != nil {
			logger.Warn("skipping object template", zap.Int("line", doc.Objects[i].Line), zap.Error(err))
			continue
		}
		if err := tmpl.Validate(); err != nil {
			logger.Warn("skipping object template", zap.Int("line", doc.Objects[i].Line), zap.Error(err))
			continue
		}
		if err := tmpl.Dna.CheckTraits(catalog); err != nil {
			logger.Warn("skipping object template",
				zap.Int("line", doc.Objects[i].Line),
				zap.String("npc", tmpl.Npc),
				zap.Error(err))
			continue
		}
		out.Objects = append(out.Objects, tmpl)
	}
	for i := range doc.Spawns {
		var spawn Spawn
		if err := doc.Spawns[i].Decode(&spawn); err != nil {
			logger.Warn("skipping spawn", zap.Int("line", doc.Spawns[i].Line), zap.Error(err))
			continue
		}
		if err := spawn.Validate(); err != nil {
			logger.Warn("skipping spawn", zap.Int("line", doc.Spawns[i].Line), zap.Error(err))
			continue
		}
		if err := spawn.checkTraits(catalog); err != nil {
			logger.Warn("skipping spawn",
				zap.Int("line", doc.Spawns[i].Line),
				zap.String("npc", spawn.Npc),
				zap.Error(err))
			continue
		}
		out.Spawns = append(out.Spawns, spawn)
	}
	logger.Debug("raws loaded", zap.Int("objects", len(out.Objects)), zap.Int("spawns", len(out.Spawns)))
	return out, nil
}

// Load reads and parses the raws file at path.
func Load(path string, catalog *genetics.Catalog, logger *zap.Logger) (Raws, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Raws{}, fmt.Errorf("read raws %s: %w", path, err)
	}
	return Parse(data, catalog, logger)
}

// Object returns the object template named npc.
func (r Raws) Object(npc string) (ObjectTemplate, bool) {
	for _, tmpl := range r.Objects {
		if tmpl.Npc == npc {
			return tmpl, true
		}
	}
	return ObjectTemplate{}, false
}
