package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

type LinearRegression struct {
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

func (lr *LinearRegression) Predict(features []float64) (float64, error) {
	if len(lr.Coefficients) == 0 {
		return 0, errors.New("model not loaded")
	}
	if err := checkWidth(features, len(lr.Coefficients)); err != nil {
		return 0, err
	}
	return dot(lr.Coefficients, features) + lr.Intercept, nil
}

func (lr *LinearRegression) NumFeatures() int {
	return len(lr.Coefficients)
}

func (lr *LinearRegression) Load(path string) error {
	var loaded LinearRegression
	if err := readArtifact(path, &loaded); err != nil {
		return err
	}
	if len(loaded.Coefficients) == 0 {
		return fmt.Errorf("%w: %s has no coefficients", ErrArtifactLoad, path)
	}
	*lr = loaded
	return nil
}

// LogisticRegression is a binary classifier. Predict returns the label of the
// more probable class.
type LogisticRegression struct {
	ClassLabels  []float64 `json:"classes"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
}

func (lr *LogisticRegression) Predict(features []float64) (float64, error) {
	proba, err := lr.PredictProba(features)
	if err != nil {
		return 0, err
	}
	if proba[1] > proba[0] {
		return lr.ClassLabels[1], nil
	}
	return lr.ClassLabels[0], nil
}

func (lr *LogisticRegression) PredictProba(features []float64) ([]float64, error) {
	if len(lr.Coefficients) == 0 {
		return nil, errors.New("model not loaded")
	}
	if err := checkWidth(features, len(lr.Coefficients)); err != nil {
		return nil, err
	}
	positive := sigmoid(dot(lr.Coefficients, features) + lr.Intercept)
	return []float64{1 - positive, positive}, nil
}

func (lr *LogisticRegression) Classes() []float64 {
	return append([]float64(nil), lr.ClassLabels...)
}

func (lr *LogisticRegression) NumFeatures() int {
	return len(lr.Coefficients)
}

func (lr *LogisticRegression) Load(path string) error {
	var loaded LogisticRegression
	if err := readArtifact(path, &loaded); err != nil {
		return err
	}
	if len(loaded.Coefficients) == 0 {
		return fmt.Errorf("%w: %s has no coefficients", ErrArtifactLoad, path)
	}
	if len(loaded.ClassLabels) != 2 {
		return fmt.Errorf("%w: %s must declare exactly two classes, got %d", ErrArtifactLoad, path, len(loaded.ClassLabels))
	}
	*lr = loaded
	return nil
}

func readArtifact(path string, v interface{}) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrArtifactLoad, err)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: decoding %s: %v", ErrArtifactLoad, path, err)
	}
	return nil
}

func checkWidth(features []float64, want int) error {
	if len(features) != want {
		return fmt.Errorf("%w: model expects %d features, got %d", ErrSchemaMismatch, want, len(features))
	}
	return nil
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}
