// Package testutil carries the shared test doubles: a deterministic stub
// model and pre-built bundles over the minimal and the production schemas.
package testutil

import (
	"time"

	"merch-forecast/internal/artifact"
	"merch-forecast/internal/domain"
)

// StubPredictor is a deterministic model for tests. It counts calls so
// tests can assert how often the model ran.
type StubPredictor struct {
	Fn    func(features []float64) (float64, error)
	Calls int
}

func (p *StubPredictor) Predict(features []float64) (float64, error) {
	p.Calls++
	if p.Fn != nil {
		return p.Fn(features)
	}
	return 0, nil
}

func (p *StubPredictor) Type() string { return "stub" }

// PriceBundle is a loaded bundle over the minimal schema with predictions
// fixed at 2 * price, so expected outputs are trivial to compute by hand.
// The scaler is identity and "week" passes through unvalidated.
func PriceBundle() (*domain.Bundle, *StubPredictor) {
	scalerJSON := `{"features": {"price": {"center": 0, "scale": 1}}}`
	encoderJSON := `{"features": {"item_id": ["sku-1", "sku-2", "sku-3", "unknown_category"]}}`

	stub := &StubPredictor{Fn: func(f []float64) (float64, error) { return 2 * f[0], nil }}

	return &domain.Bundle{
		Manifest: domain.Manifest{
			Name:                "test-bundle",
			Version:             "1",
			ModelType:           stub.Type(),
			Target:              "predicted_sales_quantity",
			NumericalFeatures:   []string{"price"},
			CategoricalFeatures: []string{"item_id"},
			Passthrough:         []string{"week"},
			Artifacts: domain.ArtifactRefs{
				Model: "model.json", Scaler: "scaler.json", Encoder: "encoder.json",
			},
		},
		Model:    stub,
		Scaler:   mustScaler(scalerJSON),
		Encoder:  mustEncoder(encoderJSON),
		LoadedAt: time.Now().UTC(),
	}, stub
}

// MerchBundle mirrors the production schema: attendance and product price
// scaled, the show date expanded into day, month, and weekday features,
// and every categorical label-encoded with an unknown fallback.
// Predictions are fixed at 2 * the raw product price.
//
// Encoded categories cover the values used by the canonical test rows
// (Deftones at the Fox Theater, 2025-06-14 and 6/15/2025); anything else
// falls back to unknown_category.
func MerchBundle() (*domain.Bundle, *StubPredictor) {
	scalerJSON := `{"features": {
		"attendance": {"center": 1000, "scale": 500},
		"product price": {"center": 20, "scale": 10}
	}}`

	encoderJSON := `{"features": {
		"artistName":      ["deftones", "unknown_category"],
		"Genre":           ["metal", "unknown_category"],
		"Show Day":        ["14", "15", "unknown_category"],
		"Show Month":      ["6", "unknown_category"],
		"Day of Week Num": ["5", "6", "unknown_category"],
		"venue name":      ["the fox theater", "unknown_category"],
		"venue state":     ["ca", "unknown_category"],
		"venue city":      ["oakland", "unknown_category"],
		"productType":     ["t-shirt", "hoodie", "unknown_category"],
		"product size":    ["s", "m", "one size", "unknown_category"]
	}}`

	// Raw price is f[1] unscaled back from the fixture scaler.
	stub := &StubPredictor{Fn: func(f []float64) (float64, error) {
		return 2 * (f[1]*10 + 20), nil
	}}

	return &domain.Bundle{
		Manifest: domain.Manifest{
			Name:              "merch-sales",
			Version:           "2025.06",
			ModelType:         stub.Type(),
			Target:            "predicted_sales_quantity",
			NumericalFeatures: []string{"attendance", "product price"},
			CategoricalFeatures: []string{
				"artistName", "Genre", "Show Day", "Show Month", "Day of Week Num",
				"venue name", "venue state", "venue city", "productType", "product size",
			},
			DateColumn: "showDate",
			DerivedFeatures: []domain.DerivedFeature{
				{Name: "Show Day", Part: domain.DatePartDay},
				{Name: "Show Month", Part: domain.DatePartMonth},
				{Name: "Day of Week Num", Part: domain.DatePartWeekday},
			},
			Passthrough:  []string{"Item Name"},
			ShareColumn:  "%_item_sales_per_category",
			ShareGroupBy: []string{"artistName", "showDate", "productType"},
			Artifacts: domain.ArtifactRefs{
				Model: "model.json", Scaler: "scaler.json", Encoder: "encoder.json",
			},
		},
		Model:    stub,
		Scaler:   mustScaler(scalerJSON),
		Encoder:  mustEncoder(encoderJSON),
		LoadedAt: time.Now().UTC(),
	}, stub
}

func mustScaler(payload string) domain.Scaler {
	s, err := artifact.ParseScaler([]byte(payload))
	if err != nil {
		panic(err)
	}
	return s
}

func mustEncoder(payload string) domain.Encoder {
	e, err := artifact.ParseEncoder([]byte(payload))
	if err != nil {
		panic(err)
	}
	return e
}
