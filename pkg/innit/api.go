// Package innit is the client facade over the genome engine: generation,
// decoding, mutation, reproduction, template spawning and persistence.
package innit

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"innit/internal/evo"
	"innit/internal/genetics"
	"innit/internal/model"
	"innit/internal/raws"
	"innit/internal/stats"
	"innit/internal/storage"
)

const (
	defaultDBPath     = "innit.db"
	defaultExportsDir = "exports"
	defaultOperator   = "bit_flip"
	defaultStability  = 0.75
)

var (
	ErrGenomeNotFound = errors.New("genome not found")
	ErrNoTemplates    = errors.New("no object templates loaded")
)

type Options struct {
	StoreKind     string
	DBPath        string
	ExportsDir    string
	TemplatesPath string
	Seed          int64
	// Operator names the registered operator used by Reproduce when the
	// request does not name one.
	Operator string
	Catalog  *genetics.Catalog
	Logger   *zap.Logger
}

type Client struct {
	catalog  *genetics.Catalog
	store    storage.Store
	logger   *zap.Logger
	rng      *lockedRand
	registry *evo.Registry
	raws     raws.Raws

	operator   string
	exportsDir string

	initMu      sync.Mutex
	initialized bool
}

// Expression is a genome together with its expressed phenotype.
type Expression struct {
	Dna       genetics.Dna
	Phenotype genetics.Phenotype
}

type GenerateRequest struct {
	DnaType genetics.DnaType
	HasLTR  bool
	Length  int
}

type SaveRequest struct {
	Name      string
	ParentID  string
	DnaType   genetics.DnaType
	Raw       []byte
	Stability float64
}

type ReproduceRequest struct {
	ParentID string
	Operator string
}

type ReproduceResult struct {
	Child      model.Genome
	Expression Expression
	Lineage    model.LineageRecord
}

type SpawnRequest struct {
	Npc string
	// Level picks a spawn from the spawn tables when Npc is empty.
	Level uint32
	Save  bool
}

type SpawnResult struct {
	Spawned raws.Spawned
	Genome  *model.Genome
}

type DecodedGenome struct {
	Genome     model.Genome
	Expression Expression
}

type ExportRequest struct {
	ExportID string
	OutDir   string
}

type ExportSummary struct {
	ExportID  string
	Directory string
	Census    stats.Census
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}
	operator := opts.Operator
	if operator == "" {
		operator = defaultOperator
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = genetics.DefaultCatalog()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var templates raws.Raws
	if opts.TemplatesPath != "" {
		loaded, err := raws.Load(opts.TemplatesPath, catalog, logger)
		if err != nil {
			return nil, err
		}
		templates = loaded
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	rng := &lockedRand{r: rand.New(rand.NewSource(opts.Seed))}
	return &Client{
		catalog:    catalog,
		store:      store,
		logger:     logger,
		rng:        rng,
		registry:   evo.NewDefaultRegistry(rng),
		raws:       templates,
		operator:   operator,
		exportsDir: exportsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Catalog() *genetics.Catalog {
	return c.catalog
}

// Registry exposes the operator registry so callers can add operators.
func (c *Client) Registry() *evo.Registry {
	return c.registry
}

func (c *Client) Templates() raws.Raws {
	return c.raws
}

func (c *Client) Init(ctx context.Context) error {
	return c.ensureStore(ctx)
}

// GenerateAndDecode creates a random genome and expresses it.
func (c *Client) GenerateAndDecode(_ context.Context, req GenerateRequest) (Expression, error) {
	if req.Length < 0 || (req.Length == 0 && !req.HasLTR) {
		return Expression{}, errors.New("genome length must be > 0 unless LTR markers are requested")
	}
	phenotype, dna, err := c.catalog.GenerateAndExpress(c.rng, req.DnaType, req.HasLTR, req.Length)
	if err != nil {
		return Expression{}, err
	}
	c.logger.Debug("generated genome",
		zap.Stringer("dna_type", req.DnaType),
		zap.Int("windows", len(dna.Decoded)),
		zap.Bool("has_ltr", req.HasLTR))
	return Expression{Dna: dna, Phenotype: phenotype}, nil
}

// Decode expresses an existing genome.
func (c *Client) Decode(raw []byte, dnaType genetics.DnaType) (Expression, error) {
	phenotype, dna, err := c.catalog.Express(raw, dnaType)
	if err != nil {
		return Expression{}, err
	}
	return Expression{Dna: dna, Phenotype: phenotype}, nil
}

// Mutate flips a single bit of raw and reports which.
func (c *Client) Mutate(raw []byte) ([]byte, genetics.Mutation, error) {
	mutated, report, err := genetics.MutateWithReport(raw, c.rng)
	if err != nil {
		return nil, genetics.Mutation{}, err
	}
	if report.Old != report.New {
		c.logger.Debug("mutated genome",
			zap.Int("gene", report.Gene),
			zap.String("from", fmt.Sprintf("%08b", report.Old)),
			zap.String("to", fmt.Sprintf("%08b", report.New)))
	}
	return mutated, report, nil
}

// Save persists a genome under a fresh id together with its decoded cache.
func (c *Client) Save(ctx context.Context, req SaveRequest) (model.Genome, error) {
	if len(req.Raw) == 0 {
		return model.Genome{}, genetics.ErrEmptyGenome
	}
	if req.Stability < 0 || req.Stability > 1 {
		return model.Genome{}, fmt.Errorf("stability must be in [0,1], got %g", req.Stability)
	}
	if err := c.ensureStore(ctx); err != nil {
		return model.Genome{}, err
	}

	genome := model.Genome{
		VersionedRecord: storage.Versioned(),
		ID:              uuid.NewString(),
		ParentID:        req.ParentID,
		Name:            req.Name,
		DnaType:         req.DnaType,
		Raw:             append([]byte(nil), req.Raw...),
		Stability:       req.Stability,
		Decoded:         c.catalog.Decode(req.Raw),
		CreatedAt:       time.Now().UTC(),
	}
	if err := c.store.SaveGenome(ctx, genome); err != nil {
		return model.Genome{}, err
	}
	c.logger.Info("saved genome", zap.String("id", genome.ID), zap.Int("bytes", len(genome.Raw)))
	return genome, nil
}

// Load returns a stored genome and its expression. A missing decoded cache is
// rebuilt from the raw bytes.
func (c *Client) Load(ctx context.Context, id string) (model.Genome, Expression, error) {
	if err := c.ensureStore(ctx); err != nil {
		return model.Genome{}, Expression{}, err
	}
	genome, ok, err := c.store.GetGenome(ctx, id)
	if err != nil {
		return model.Genome{}, Expression{}, err
	}
	if !ok {
		return model.Genome{}, Expression{}, fmt.Errorf("%w: %s", ErrGenomeNotFound, id)
	}
	expression, err := c.Decode(genome.Raw, genome.DnaType)
	if err != nil {
		return model.Genome{}, Expression{}, fmt.Errorf("express genome %s: %w", id, err)
	}
	genome.Decoded = expression.Dna.Decoded
	return genome, expression, nil
}

// Reproduce derives a child from a stored parent with a registered operator
// and records the derivation in the lineage.
func (c *Client) Reproduce(ctx context.Context, req ReproduceRequest) (ReproduceResult, error) {
	parent, _, err := c.Load(ctx, req.ParentID)
	if err != nil {
		return ReproduceResult{}, err
	}
	operatorName := req.Operator
	if operatorName == "" {
		operatorName = c.operator
	}
	op, err := c.registry.Resolve(operatorName, parent)
	if err != nil {
		return ReproduceResult{}, err
	}

	derived, err := op.Apply(ctx, parent)
	if err != nil {
		return ReproduceResult{}, err
	}
	generation := 1
	if history, ok, err := c.store.GetLineage(ctx, parent.ID); err != nil {
		return ReproduceResult{}, err
	} else if ok && len(history) > 0 {
		generation = history[len(history)-1].Generation + 1
	}

	child, err := c.Save(ctx, SaveRequest{
		Name:      parent.Name,
		ParentID:  parent.ID,
		DnaType:   parent.DnaType,
		Raw:       derived.Raw,
		Stability: parent.Stability,
	})
	if err != nil {
		return ReproduceResult{}, err
	}
	record := model.LineageRecord{
		VersionedRecord: storage.Versioned(),
		GenomeID:        child.ID,
		ParentID:        parent.ID,
		Generation:      generation,
		Operation:       op.Name(),
		Mutations:       evo.ChangedPositions(parent.Raw, child.Raw),
	}
	if err := c.store.SaveLineage(ctx, record); err != nil {
		// A child without its lineage record would cut the chain short.
		if delErr := c.store.DeleteGenome(ctx, child.ID); delErr != nil {
			return ReproduceResult{}, errors.Join(err, delErr)
		}
		return ReproduceResult{}, err
	}

	expression, err := c.Decode(child.Raw, child.DnaType)
	if err != nil {
		return ReproduceResult{}, err
	}
	c.logger.Info("reproduced genome",
		zap.String("parent", parent.ID),
		zap.String("child", child.ID),
		zap.String("operation", record.Operation),
		zap.Ints("mutations", record.Mutations))
	return ReproduceResult{Child: child, Expression: expression, Lineage: record}, nil
}

// Lineage returns the derivation records from the oldest recorded ancestor
// down to id.
func (c *Client) Lineage(ctx context.Context, id string) ([]model.LineageRecord, error) {
	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}
	if _, ok, err := c.store.GetGenome(ctx, id); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGenomeNotFound, id)
	}

	var chain []model.LineageRecord
	visited := make(map[string]bool)
	for current := id; current != "" && !visited[current]; {
		visited[current] = true
		records, ok, err := c.store.GetLineage(ctx, current)
		if err != nil {
			return nil, err
		}
		if !ok || len(records) == 0 {
			break
		}
		last := records[len(records)-1]
		chain = append(chain, last)
		current = last.ParentID
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Spawn builds an entity from the loaded object templates, either by name or
// from the spawn tables of req.Level.
func (c *Client) Spawn(ctx context.Context, req SpawnRequest) (SpawnResult, error) {
	if len(c.raws.Objects) == 0 {
		return SpawnResult{}, ErrNoTemplates
	}
	spawner := raws.NewSpawner(c.catalog, c.rng)

	var (
		spawned raws.Spawned
		err     error
	)
	if req.Npc != "" {
		tmpl, ok := c.raws.Object(req.Npc)
		if !ok {
			return SpawnResult{}, fmt.Errorf("unknown object template: %s", req.Npc)
		}
		spawned, err = spawner.Spawn(tmpl)
	} else {
		spawned, err = spawner.SpawnAt(c.raws, req.Level)
	}
	if err != nil {
		return SpawnResult{}, err
	}

	result := SpawnResult{Spawned: spawned}
	if req.Save {
		genome, err := c.Save(ctx, SaveRequest{
			Name:      spawned.Template.Npc,
			DnaType:   spawned.Template.DnaType,
			Raw:       spawned.Dna.Raw,
			Stability: spawned.Template.Stability,
		})
		if err != nil {
			return SpawnResult{}, err
		}
		result.Genome = &genome
	}
	return result, nil
}

// DecodeAll expresses every stored genome concurrently. Results follow store
// order.
func (c *Client) DecodeAll(ctx context.Context) ([]DecodedGenome, error) {
	if err := c.ensureStore(ctx); err != nil {
		return nil, err
	}
	genomes, err := c.store.ListGenomes(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]DecodedGenome, len(genomes))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range genomes {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			expression, err := c.Decode(genomes[i].Raw, genomes[i].DnaType)
			if err != nil {
				return fmt.Errorf("express genome %s: %w", genomes[i].ID, err)
			}
			genome := genomes[i]
			genome.Decoded = expression.Dna.Decoded
			out[i] = DecodedGenome{Genome: genome, Expression: expression}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Census counts trait windows across the stored genomes.
func (c *Client) Census(ctx context.Context) (stats.Census, error) {
	if err := c.ensureStore(ctx); err != nil {
		return stats.Census{}, err
	}
	genomes, err := c.store.ListGenomes(ctx)
	if err != nil {
		return stats.Census{}, err
	}
	return stats.TakeCensus(c.catalog, genomes), nil
}

// Export writes every stored genome, its lineage and the census to disk.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	if err := c.ensureStore(ctx); err != nil {
		return ExportSummary{}, err
	}
	genomes, err := c.store.ListGenomes(ctx)
	if err != nil {
		return ExportSummary{}, err
	}
	var lineage []model.LineageRecord
	for _, genome := range genomes {
		records, _, err := c.store.GetLineage(ctx, genome.ID)
		if err != nil {
			return ExportSummary{}, err
		}
		lineage = append(lineage, records...)
	}

	exportID := req.ExportID
	if exportID == "" {
		exportID = "export-" + uuid.NewString()
	}
	outDir := req.OutDir
	if outDir == "" {
		outDir = c.exportsDir
	}
	census := stats.TakeCensus(c.catalog, genomes)
	dir, err := stats.WriteExport(outDir, stats.ExportArtifacts{
		ExportID: exportID,
		Genomes:  genomes,
		Lineage:  lineage,
		Census:   census,
	})
	if err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{ExportID: exportID, Directory: dir, Census: census}, nil
}

func (c *Client) ensureStore(ctx context.Context) error {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	if c.initialized {
		return nil
	}
	if err := c.store.Init(ctx); err != nil {
		return err
	}
	c.initialized = true
	return nil
}

// lockedRand serializes access to a *rand.Rand shared by the client and its
// operators.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}
