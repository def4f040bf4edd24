package domain

import "time"

// Manifest describes a model bundle: which artifacts make it up and which
// input columns the model expects. The feature lists travel with the bundle
// rather than living in code, so swapping models never needs a rebuild.
type Manifest struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	ModelType string `json:"model_type"`

	// Target is the column the predictor fills in, e.g. predicted_sales_quantity.
	Target string `json:"target"`

	NumericalFeatures   []string `json:"numerical_features"`
	CategoricalFeatures []string `json:"categorical_features"`

	// DateColumn, when set, is parsed per row and expanded into the
	// DerivedFeatures before encoding. Derived features are categorical
	// features that need not appear in the input.
	DateColumn      string           `json:"date_column,omitempty"`
	DerivedFeatures []DerivedFeature `json:"derived_features,omitempty"`

	// Passthrough columns are required in the input and copied to the
	// output untouched.
	Passthrough []string `json:"passthrough_columns,omitempty"`

	// ShareColumn, when set, is an extra output column holding each row's
	// percentage share of the predicted target within its ShareGroupBy group.
	ShareColumn  string   `json:"share_column,omitempty"`
	ShareGroupBy []string `json:"share_group_by,omitempty"`

	// OutputColumns fixes the column order of responses. Empty means
	// input columns followed by target and share.
	OutputColumns []string `json:"output_columns,omitempty"`

	Artifacts ArtifactRefs `json:"artifacts"`
}

// ArtifactRefs names the bundle's artifact files relative to the manifest URI.
type ArtifactRefs struct {
	Model   string `json:"model"`
	Scaler  string `json:"scaler"`
	Encoder string `json:"encoder"`
}

// DatePart selects which component of the date column a derived feature
// carries. Weekday counts Monday as 0, matching the training data.
type DatePart string

const (
	DatePartDay     DatePart = "day"
	DatePartMonth   DatePart = "month"
	DatePartWeekday DatePart = "weekday"
)

// DerivedFeature is a categorical feature computed from the date column
// instead of being read from the input.
type DerivedFeature struct {
	Name string   `json:"name"`
	Part DatePart `json:"part"`
}

// RequiredColumns lists every column an input batch must carry: all
// numerical features, all categorical features except derived ones, the
// date column when derived features depend on it, and passthrough columns.
func (m Manifest) RequiredColumns() []string {
	derived := make(map[string]bool, len(m.DerivedFeatures))
	for _, f := range m.DerivedFeatures {
		derived[f.Name] = true
	}

	seen := make(map[string]bool)
	var cols []string
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			cols = append(cols, c)
		}
	}

	for _, f := range m.NumericalFeatures {
		add(f)
	}
	for _, f := range m.CategoricalFeatures {
		if !derived[f] {
			add(f)
		}
	}
	if len(m.DerivedFeatures) > 0 {
		add(m.DateColumn)
	}
	for _, c := range m.ShareGroupBy {
		if !derived[c] {
			add(c)
		}
	}
	for _, c := range m.Passthrough {
		add(c)
	}
	return cols
}

// ResultColumns resolves the output column order for a batch that arrived
// with the given input columns.
func (m Manifest) ResultColumns(inputColumns []string) []string {
	if len(m.OutputColumns) > 0 {
		return append([]string(nil), m.OutputColumns...)
	}
	cols := append([]string(nil), inputColumns...)
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		seen[c] = true
	}
	if !seen[m.Target] {
		cols = append(cols, m.Target)
	}
	if m.ShareColumn != "" && !seen[m.ShareColumn] {
		cols = append(cols, m.ShareColumn)
	}
	return cols
}

// Predictor is the opaque loaded model: a feature vector in, one predicted
// quantity out. Implementations are read-only after load.
type Predictor interface {
	Predict(features []float64) (float64, error)
	Type() string
}

// Scaler maps a raw numerical feature value into model space.
type Scaler interface {
	Transform(feature string, value float64) (float64, error)
	Features() []string
}

// Encoder maps a normalized categorical value to its class index. Values
// outside the known classes encode as the unknown-category class.
type Encoder interface {
	Transform(feature, value string) (float64, error)
	Features() []string
}

// ArtifactInfo records where an artifact came from and when it was loaded.
type ArtifactInfo struct {
	Name     string    `json:"name"`
	URI      string    `json:"uri"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Bundle is a fully loaded model: manifest plus the three live artifacts.
// It is built once at startup and treated as read-only from then on.
type Bundle struct {
	Manifest  Manifest
	Model     Predictor
	Scaler    Scaler
	Encoder   Encoder
	Artifacts []ArtifactInfo
	LoadedAt  time.Time
}

// BundleInfo is the read model reported by /model-info and the health check.
type BundleInfo struct {
	Name                string
	Version             string
	ModelType           string
	Target              string
	NumericalFeatures   []string
	CategoricalFeatures []string
	RequiredColumns     []string
	Artifacts           []ArtifactInfo
	LoadedAt            time.Time
}
