package dto

// PredictResponse is the wire shape of a successful prediction. Cell values
// are strings throughout so the payload round-trips losslessly to CSV;
// Columns fixes the rendering order, since JSON objects carry none.
type PredictResponse struct {
	Status      string              `json:"status"`
	Columns     []string            `json:"columns"`
	Data        []map[string]string `json:"data"`
	RecordCount int                 `json:"record_count"`
}

// ErrorResponse is the machine-readable error body. MissingColumns is set
// for validation failures so clients can name the offending columns.
type ErrorResponse struct {
	Status         string   `json:"status"`
	Message        string   `json:"message"`
	MissingColumns []string `json:"missing_columns,omitempty"`
}

type ArtifactInfoResponse struct {
	Name     string `json:"name"`
	URI      string `json:"uri"`
	LoadedAt string `json:"loaded_at"`
}

type ModelInfoResponse struct {
	Status              string                 `json:"status"`
	Name                string                 `json:"name"`
	Version             string                 `json:"version"`
	ModelType           string                 `json:"model_type"`
	Target              string                 `json:"target"`
	NumericalFeatures   []string               `json:"numerical_features"`
	CategoricalFeatures []string               `json:"categorical_features"`
	RequiredColumns     []string               `json:"required_columns"`
	Artifacts           []ArtifactInfoResponse `json:"artifacts"`
	LoadedAt            string                 `json:"loaded_at"`
}

type HealthResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Bundle   string `json:"bundle,omitempty"`
	LoadedAt string `json:"loaded_at,omitempty"`
}
