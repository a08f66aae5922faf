package storage

import (
	"context"

	"innit/internal/model"
)

// Store defines transaction-like persistence operations for genomes and their lineage.
type Store interface {
	Init(ctx context.Context) error
	SaveGenome(ctx context.Context, genome model.Genome) error
	GetGenome(ctx context.Context, id string) (model.Genome, bool, error)
	ListGenomes(ctx context.Context) ([]model.Genome, error)
	DeleteGenome(ctx context.Context, id string) error
	SaveLineage(ctx context.Context, record model.LineageRecord) error
	GetLineage(ctx context.Context, genomeID string) ([]model.LineageRecord, bool, error)
}
