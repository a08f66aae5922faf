package genetics

import (
	"errors"
	"fmt"
)

// ErrEmptyGenome is returned when a phenotype is requested for, or a mutation
// applied to, a genome without any bytes.
var ErrEmptyGenome = errors.New("genome is empty")

// UnknownTraitError reports a trait name that is not part of the catalog.
type UnknownTraitError struct {
	Name string
}

func (e *UnknownTraitError) Error() string {
	return fmt.Sprintf("unknown trait: %q", e.Name)
}

// InvalidDistributionError reports a malformed family weight table.
type InvalidDistributionError struct {
	Reason string
}

func (e *InvalidDistributionError) Error() string {
	return "invalid trait distribution: " + e.Reason
}
