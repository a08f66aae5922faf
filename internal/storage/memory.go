package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"innit/internal/model"
)

var errNotInitialized = errors.New("store is not initialized")

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	genomes     map[string]model.Genome
	lineage     map[string][]model.LineageRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.genomes = make(map[string]model.Genome)
	s.lineage = make(map[string][]model.LineageRecord)
	return nil
}

func (s *MemoryStore) SaveGenome(_ context.Context, genome model.Genome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	s.genomes[genome.ID] = cloneGenome(genome)
	return nil
}

func (s *MemoryStore) GetGenome(_ context.Context, id string) (model.Genome, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	genome, ok := s.genomes[id]
	if !ok {
		return model.Genome{}, false, nil
	}
	return cloneGenome(genome), true, nil
}

func (s *MemoryStore) ListGenomes(_ context.Context) ([]model.Genome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Genome, 0, len(s.genomes))
	for _, genome := range s.genomes {
		out = append(out, cloneGenome(genome))
	}
	sortGenomes(out)
	return out, nil
}

func (s *MemoryStore) DeleteGenome(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.genomes, id)
	delete(s.lineage, id)
	return nil
}

func (s *MemoryStore) SaveLineage(_ context.Context, record model.LineageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return errNotInitialized
	}
	record.Mutations = append([]int(nil), record.Mutations...)
	s.lineage[record.GenomeID] = append(s.lineage[record.GenomeID], record)
	return nil
}

func (s *MemoryStore) GetLineage(_ context.Context, genomeID string) ([]model.LineageRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lineage, ok := s.lineage[genomeID]
	if !ok {
		return nil, false, nil
	}
	copied := make([]model.LineageRecord, len(lineage))
	for i, record := range lineage {
		record.Mutations = append([]int(nil), record.Mutations...)
		copied[i] = record
	}
	return copied, true, nil
}

func cloneGenome(genome model.Genome) model.Genome {
	genome.Raw = append([]byte(nil), genome.Raw...)
	if genome.Decoded != nil {
		genome.Decoded = append(genome.Decoded[:0:0], genome.Decoded...)
	}
	return genome
}

// sortGenomes orders genomes by creation time, then id.
func sortGenomes(genomes []model.Genome) {
	sort.Slice(genomes, func(i, j int) bool {
		if !genomes[i].CreatedAt.Equal(genomes[j].CreatedAt) {
			return genomes[i].CreatedAt.Before(genomes[j].CreatedAt)
		}
		return genomes[i].ID < genomes[j].ID
	})
}
