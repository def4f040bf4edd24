package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
)

// TreeNode is one node of a regression tree stored as a flat array.
// Leaves carry the predicted value; internal nodes split on
// features[FeatureIdx] <= Threshold.
type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	Value      float64 `json:"value"`
	IsLeaf     bool    `json:"is_leaf"`
}

// Forest is a bagged ensemble of regression trees. The prediction is the
// mean of the per-tree values, matching how the bundle was exported.
type Forest struct {
	trees [][]TreeNode
}

type forestFile struct {
	ModelType string       `json:"model_type"`
	Trees     [][]TreeNode `json:"trees"`
}

func ParseForest(data []byte) (*Forest, error) {
	var f forestFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse forest artifact: %w", err)
	}
	if len(f.Trees) == 0 {
		return nil, errors.New("forest artifact has no trees")
	}
	for i, tree := range f.Trees {
		if len(tree) == 0 {
			return nil, fmt.Errorf("forest artifact: tree %d is empty", i)
		}
	}
	return &Forest{trees: f.Trees}, nil
}

func (f *Forest) Type() string { return "regression_forest" }

func (f *Forest) Predict(features []float64) (float64, error) {
	if len(f.trees) == 0 {
		return 0, errors.New("forest not loaded")
	}
	sum := 0.0
	for i := range f.trees {
		v, err := f.walk(f.trees[i], features)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		sum += v
	}
	return sum / float64(len(f.trees)), nil
}

func (f *Forest) walk(tree []TreeNode, features []float64) (float64, error) {
	idx := 0
	for {
		node := tree[idx]
		if node.IsLeaf {
			return node.Value, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(features) {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(tree) {
			return 0, errors.New("invalid tree state")
		}
	}
}
