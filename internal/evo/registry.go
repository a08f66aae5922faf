package evo

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"innit/internal/model"
)

const (
	SupportedSchemaVersion = 1
	SupportedCodecVersion  = 1
)

var (
	ErrOperatorExists       = errors.New("operator already registered")
	ErrOperatorNotFound     = errors.New("operator not found")
	ErrOperatorIncompatible = errors.New("operator incompatible with genome")
	ErrVersionMismatch      = errors.New("operator version mismatch")
)

type CompatibilityFn func(genome model.Genome) error

type OperatorSpec struct {
	Name          string
	Operator      Operator
	SchemaVersion int
	CodecVersion  int
	Compatible    CompatibilityFn
}

type registeredOperator struct {
	operator      Operator
	schemaVersion int
	codecVersion  int
	compatible    CompatibilityFn
}

// Registry maps operator names to operators. The zero value is not usable; use NewRegistry.
type Registry struct {
	mu sync.RWMutex
	m  map[string]registeredOperator
}

func NewRegistry() *Registry {
	return &Registry{m: make(map[string]registeredOperator)}
}

// NewDefaultRegistry registers bit_flip and its stability-gated variant on rng.
func NewDefaultRegistry(rng Rand) *Registry {
	r := NewRegistry()
	flip := &BitFlip{Rand: rng}
	_ = r.RegisterWithSpec(OperatorSpec{
		Name:          flip.Name(),
		Operator:      flip,
		SchemaVersion: SupportedSchemaVersion,
		CodecVersion:  SupportedCodecVersion,
		Compatible:    RequireRaw,
	})
	_ = r.Register("stability_gate", &StabilityGate{Rand: rng, Operator: flip})
	return r
}

// RequireRaw rejects genomes without any bytes.
func RequireRaw(genome model.Genome) error {
	if len(genome.Raw) == 0 {
		return errors.New("genome has no raw bytes")
	}
	return nil
}

// Register registers an operator with default schema and codec versions.
func (r *Registry) Register(name string, op Operator) error {
	return r.RegisterWithSpec(OperatorSpec{
		Name:          name,
		Operator:      op,
		SchemaVersion: SupportedSchemaVersion,
		CodecVersion:  SupportedCodecVersion,
	})
}

// RegisterWithSpec registers an operator with explicit versioning and compatibility metadata.
func (r *Registry) RegisterWithSpec(spec OperatorSpec) error {
	if spec.Name == "" {
		return errors.New("operator name is required")
	}
	if spec.Operator == nil {
		return errors.New("operator is required")
	}
	if spec.SchemaVersion != SupportedSchemaVersion || spec.CodecVersion != SupportedCodecVersion {
		return fmt.Errorf("%w: schema=%d codec=%d", ErrVersionMismatch, spec.SchemaVersion, spec.CodecVersion)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.m[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrOperatorExists, spec.Name)
	}

	r.m[spec.Name] = registeredOperator{
		operator:      spec.Operator,
		schemaVersion: spec.SchemaVersion,
		codecVersion:  spec.CodecVersion,
		compatible:    spec.Compatible,
	}
	return nil
}

// Resolve returns a registered operator only if record versions and compatibility checks pass.
func (r *Registry) Resolve(name string, genome model.Genome) (Operator, error) {
	r.mu.RLock()
	entry, ok := r.m[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOperatorNotFound, name)
	}
	if genome.SchemaVersion != entry.schemaVersion || genome.CodecVersion != entry.codecVersion {
		return nil, fmt.Errorf("%w: operator=%s expected(schema=%d codec=%d) got(schema=%d codec=%d)",
			ErrVersionMismatch,
			name,
			entry.schemaVersion,
			entry.codecVersion,
			genome.SchemaVersion,
			genome.CodecVersion,
		)
	}
	if entry.compatible != nil {
		if err := entry.compatible(genome); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrOperatorIncompatible, name, err)
		}
	}
	return entry.operator, nil
}

func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.m))
	for name := range r.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
