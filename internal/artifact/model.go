package artifact

import (
	"fmt"

	"merch-forecast/internal/domain"
)

// ParseModel decodes a model artifact according to the type declared in the
// bundle manifest.
func ParseModel(modelType string, data []byte) (domain.Predictor, error) {
	switch modelType {
	case "regression_forest":
		return ParseForest(data)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedModel, modelType)
	}
}
