package ml

import (
	"errors"
	"fmt"
)

// DecisionTree is a fitted tree flattened in pre-order. Regression leaves carry
// Value; when ClassLabels is set the tree is a classifier and leaves carry a
// class Distribution.
type DecisionTree struct {
	Features    int        `json:"n_features"`
	ClassLabels []float64  `json:"classes,omitempty"`
	Nodes       []TreeNode `json:"nodes"`
}

type TreeNode struct {
	FeatureIdx   int       `json:"feature_idx"`
	Threshold    float64   `json:"threshold"`
	LeftChild    int       `json:"left_child"`
	RightChild   int       `json:"right_child"`
	IsLeaf       bool      `json:"is_leaf"`
	Value        float64   `json:"value,omitempty"`
	Distribution []float64 `json:"distribution,omitempty"`
}

func (dt *DecisionTree) Predict(features []float64) (float64, error) {
	leaf, err := dt.leaf(features)
	if err != nil {
		return 0, err
	}
	if !dt.isClassifier() {
		return leaf.Value, nil
	}
	best := 0
	for i, p := range leaf.Distribution {
		if p > leaf.Distribution[best] {
			best = i
		}
	}
	return dt.ClassLabels[best], nil
}

func (dt *DecisionTree) PredictProba(features []float64) ([]float64, error) {
	if !dt.isClassifier() {
		return nil, errors.New("regression tree has no class probabilities")
	}
	leaf, err := dt.leaf(features)
	if err != nil {
		return nil, err
	}
	total := 0.0
	for _, p := range leaf.Distribution {
		total += p
	}
	proba := make([]float64, len(leaf.Distribution))
	for i, p := range leaf.Distribution {
		if total > 0 {
			proba[i] = p / total
		}
	}
	return proba, nil
}

func (dt *DecisionTree) Classes() []float64 {
	return append([]float64(nil), dt.ClassLabels...)
}

func (dt *DecisionTree) NumFeatures() int {
	return dt.Features
}

func (dt *DecisionTree) Load(path string) error {
	var loaded DecisionTree
	if err := readArtifact(path, &loaded); err != nil {
		return err
	}
	if err := loaded.validate(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrArtifactLoad, path, err)
	}
	*dt = loaded
	return nil
}

func (dt *DecisionTree) isClassifier() bool {
	return len(dt.ClassLabels) > 0
}

func (dt *DecisionTree) leaf(features []float64) (TreeNode, error) {
	if len(dt.Nodes) == 0 {
		return TreeNode{}, errors.New("model not loaded")
	}
	if err := checkWidth(features, dt.Features); err != nil {
		return TreeNode{}, err
	}
	idx := 0
	for {
		node := dt.Nodes[idx]
		if node.IsLeaf {
			return node, nil
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
}

// validate checks the tree once at load time so that traversal never leaves
// the node array and always terminates: children must come after their parent.
func (dt *DecisionTree) validate() error {
	if dt.Features <= 0 {
		return errors.New("n_features must be positive")
	}
	if len(dt.Nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range dt.Nodes {
		if node.IsLeaf {
			if dt.isClassifier() && len(node.Distribution) != len(dt.ClassLabels) {
				return fmt.Errorf("leaf %d has %d probabilities for %d classes", i, len(node.Distribution), len(dt.ClassLabels))
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= dt.Features {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= i || child >= len(dt.Nodes) {
				return fmt.Errorf("node %d: invalid child %d", i, child)
			}
		}
	}
	return nil
}
