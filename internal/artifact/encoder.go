package artifact

import (
	"encoding/json"
	"fmt"
	"sort"
)

// UnknownCategory is the class reserved at training time for values the
// encoder has never seen. Inference maps any out-of-vocabulary value onto it
// instead of failing the whole batch.
const UnknownCategory = "unknown_category"

// LabelEncoder maps normalized categorical values to the class index the
// model was trained with.
type LabelEncoder struct {
	classes map[string][]string
	index   map[string]map[string]int
}

type encoderFile struct {
	Features map[string][]string `json:"features"`
}

func ParseEncoder(data []byte) (*LabelEncoder, error) {
	var f encoderFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse encoder artifact: %w", err)
	}
	if len(f.Features) == 0 {
		return nil, fmt.Errorf("encoder artifact has no features")
	}

	index := make(map[string]map[string]int, len(f.Features))
	for feature, classes := range f.Features {
		m := make(map[string]int, len(classes))
		for i, class := range classes {
			m[class] = i
		}
		index[feature] = m
	}
	return &LabelEncoder{classes: f.Features, index: index}, nil
}

func (e *LabelEncoder) Transform(feature, value string) (float64, error) {
	m, ok := e.index[feature]
	if !ok {
		return 0, fmt.Errorf("encoder has no classes for feature %q", feature)
	}
	if i, ok := m[value]; ok {
		return float64(i), nil
	}
	if i, ok := m[UnknownCategory]; ok {
		return float64(i), nil
	}
	return 0, fmt.Errorf("feature %q: value %q not in classes and encoder has no %s class", feature, value, UnknownCategory)
}

func (e *LabelEncoder) Features() []string {
	names := make([]string, 0, len(e.classes))
	for name := range e.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Classes returns the ordered class list for one feature.
func (e *LabelEncoder) Classes(feature string) []string {
	return e.classes[feature]
}
