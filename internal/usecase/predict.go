package usecase

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"merch-forecast/internal/domain"
	"merch-forecast/internal/feature"
)

// PredictUseCase answers prediction queries against the bundle loaded at
// startup. The bundle is read-only; the use case keeps no other state, so
// the same batch always yields the same predictions.
type PredictUseCase struct {
	bundle   *domain.Bundle
	pipeline *feature.Pipeline
}

func NewPredictUseCase(bundle *domain.Bundle) *PredictUseCase {
	return &PredictUseCase{bundle: bundle, pipeline: feature.NewPipeline(bundle)}
}

// RequiredColumns reports the input columns the loaded bundle expects.
func (uc *PredictUseCase) RequiredColumns() []string {
	if uc.bundle == nil {
		return nil
	}
	return uc.bundle.Manifest.RequiredColumns()
}

// Predict validates and vectorizes the batch, runs the model row by row,
// and returns a new table augmented with the target column (and the share
// column when configured). Output preserves submission order, one row per
// input row; the input table is never mutated.
func (uc *PredictUseCase) Predict(ctx context.Context, input *domain.Table) (*domain.Table, error) {
	if uc.bundle == nil || uc.bundle.Model == nil {
		return nil, domain.ErrBundleNotLoaded
	}
	if input == nil || input.Len() == 0 {
		return nil, domain.ErrEmptyBatch
	}

	batch, err := uc.pipeline.Transform(input)
	if err != nil {
		return nil, err
	}

	quantities := make([]float64, len(batch.Vectors))
	for i, vector := range batch.Vectors {
		q, err := uc.bundle.Model.Predict(vector)
		if err != nil {
			return nil, fmt.Errorf("predict row %d: %w", i+1, err)
		}
		quantities[i] = math.Round(q)
	}

	m := uc.bundle.Manifest
	out := input.Clone()
	for i, row := range out.Rows {
		if len(batch.Dates) > 0 && !batch.Dates[i].IsZero() {
			row[m.DateColumn] = batch.Dates[i].Format("2006-01-02")
		}
		row[m.Target] = strconv.Itoa(int(quantities[i]))
	}
	if m.ShareColumn != "" {
		applyShares(out, m, quantities)
	}

	out.Columns = m.ResultColumns(input.Columns)
	return out, nil
}

// applyShares fills each row's percentage of the predicted quantity within
// its group, rounded to two decimals.
func applyShares(t *domain.Table, m domain.Manifest, quantities []float64) {
	sums := make(map[string]float64, t.Len())
	keys := make([]string, t.Len())
	for i, row := range t.Rows {
		keys[i] = groupKey(row, m.ShareGroupBy)
		sums[keys[i]] += quantities[i]
	}
	for i, row := range t.Rows {
		share := 0.0
		if total := sums[keys[i]]; total != 0 {
			share = math.Round(quantities[i]/total*100*100) / 100
		}
		row[m.ShareColumn] = strconv.FormatFloat(share, 'f', 2, 64)
	}
}

func groupKey(row domain.Row, cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = row[c]
	}
	return strings.Join(parts, "\x1f")
}
