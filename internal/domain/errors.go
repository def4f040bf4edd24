package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBundleNotLoaded  = errors.New("model bundle not loaded")
	ErrEmptyBatch       = errors.New("no rows provided")
	ErrUnsupportedModel = errors.New("unsupported model type")
	ErrUpstreamDown     = errors.New("prediction service unreachable")
)

// ValidationError reports input that cannot be predicted: columns missing
// from the batch and per-row cell problems. It maps to HTTP 400 and is
// never retried.
type ValidationError struct {
	MissingColumns []string
	Problems       []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.MissingColumns) > 0 {
		parts = append(parts, "missing required columns: "+strings.Join(e.MissingColumns, ", "))
	}
	if len(e.Problems) > 0 {
		parts = append(parts, strings.Join(e.Problems, "; "))
	}
	if len(parts) == 0 {
		return "invalid input"
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) AddProblem(rowIdx int, column, reason string) {
	e.Problems = append(e.Problems, fmt.Sprintf("row %d: column %q: %s", rowIdx+1, column, reason))
}

func (e *ValidationError) Empty() bool {
	return len(e.MissingColumns) == 0 && len(e.Problems) == 0
}
