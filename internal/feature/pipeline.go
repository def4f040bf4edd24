// Package feature turns uploaded rows into the numeric vectors the model
// consumes: date expansion, text normalization, scaling, and encoding, in
// the same order the bundle was trained with.
package feature

import (
	"strconv"
	"strings"
	"time"

	"merch-forecast/internal/domain"
)

// Pipeline binds the transformation steps to one loaded bundle. It holds no
// per-request state and is safe for concurrent use.
type Pipeline struct {
	bundle *domain.Bundle
}

func NewPipeline(bundle *domain.Bundle) *Pipeline {
	return &Pipeline{bundle: bundle}
}

// Batch is a validated, vectorized input batch. Dates holds the parsed date
// column per row when the bundle declares one, so output can re-format it.
type Batch struct {
	Vectors [][]float64
	Dates   []time.Time
}

// Transform validates the table against the bundle schema and produces one
// feature vector per row, numerical features first, categorical features
// after, both in manifest order. Any missing column or unparseable cell
// fails the whole batch with a ValidationError; no partial output.
func (p *Pipeline) Transform(table *domain.Table) (*Batch, error) {
	m := p.bundle.Manifest

	verr := &domain.ValidationError{}
	for _, col := range m.RequiredColumns() {
		if !table.HasColumn(col) {
			verr.MissingColumns = append(verr.MissingColumns, col)
		}
	}
	if len(verr.MissingColumns) > 0 {
		return nil, verr
	}

	hasDates := m.DateColumn != "" && len(m.DerivedFeatures) > 0
	batch := &Batch{Vectors: make([][]float64, 0, table.Len())}
	if hasDates {
		batch.Dates = make([]time.Time, table.Len())
	}

	width := len(m.NumericalFeatures) + len(m.CategoricalFeatures)
	for i, row := range table.Rows {
		rowOK := true

		var date time.Time
		if hasDates {
			parsed, err := ParseShowDate(row[m.DateColumn])
			if err != nil {
				verr.AddProblem(i, m.DateColumn, "not a date")
				rowOK = false
			} else {
				date = parsed
				batch.Dates[i] = parsed
			}
		}

		vector := make([]float64, 0, width)
		for _, f := range m.NumericalFeatures {
			raw := strings.TrimSpace(row[f])
			if raw == "" {
				verr.AddProblem(i, f, "is empty")
				rowOK = false
				continue
			}
			value, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				verr.AddProblem(i, f, "not a number")
				rowOK = false
				continue
			}
			scaled, err := p.bundle.Scaler.Transform(f, value)
			if err != nil {
				return nil, err
			}
			vector = append(vector, scaled)
		}
		if !rowOK {
			continue
		}
		for _, f := range m.CategoricalFeatures {
			value, ok := p.derivedValue(f, date)
			if !ok {
				value = row[f]
			}
			encoded, err := p.bundle.Encoder.Transform(f, NormalizeCategory(value))
			if err != nil {
				return nil, err
			}
			vector = append(vector, encoded)
		}
		batch.Vectors = append(batch.Vectors, vector)
	}

	if !verr.Empty() {
		return nil, verr
	}
	return batch, nil
}

func (p *Pipeline) derivedValue(feature string, date time.Time) (string, bool) {
	for _, d := range p.bundle.Manifest.DerivedFeatures {
		if d.Name != feature {
			continue
		}
		switch d.Part {
		case domain.DatePartDay:
			return strconv.Itoa(date.Day()), true
		case domain.DatePartMonth:
			return strconv.Itoa(int(date.Month())), true
		case domain.DatePartWeekday:
			// Monday is 0 in the training data; Go counts Sunday as 0.
			return strconv.Itoa((int(date.Weekday()) + 6) % 7), true
		}
	}
	return "", false
}

// NormalizeCategory applies the text cleanup the encoder classes were built
// with: trim, non-breaking spaces to plain spaces, lower case.
func NormalizeCategory(v string) string {
	v = strings.ReplaceAll(v, "\u00a0", " ")
	return strings.ToLower(strings.TrimSpace(v))
}

var showDateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"1/2/06",
}

// ParseShowDate accepts the date shapes seen in tour exports and builder
// output: ISO, and US month/day with two- or four-digit years.
func ParseShowDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	var firstErr error
	for _, layout := range showDateLayouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
