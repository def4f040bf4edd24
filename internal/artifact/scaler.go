package artifact

import (
	"encoding/json"
	"fmt"
	"sort"
)

// RobustScaler centers and scales numerical features with the per-feature
// parameters fitted at training time: (value - center) / scale.
type RobustScaler struct {
	params map[string]scaleParams
}

type scaleParams struct {
	Center float64 `json:"center"`
	Scale  float64 `json:"scale"`
}

type scalerFile struct {
	Features map[string]scaleParams `json:"features"`
}

func ParseScaler(data []byte) (*RobustScaler, error) {
	var f scalerFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scaler artifact: %w", err)
	}
	if len(f.Features) == 0 {
		return nil, fmt.Errorf("scaler artifact has no features")
	}
	return &RobustScaler{params: f.Features}, nil
}

func (s *RobustScaler) Transform(feature string, value float64) (float64, error) {
	p, ok := s.params[feature]
	if !ok {
		return 0, fmt.Errorf("scaler has no parameters for feature %q", feature)
	}
	scale := p.Scale
	if scale == 0 {
		// Zero spread in the training data; exporter conventions treat this
		// as an identity scale.
		scale = 1
	}
	return (value - p.Center) / scale, nil
}

func (s *RobustScaler) Features() []string {
	names := make([]string, 0, len(s.params))
	for name := range s.params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
