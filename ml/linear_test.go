package ml

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
)

func TestLinearRegressionPredict(t *testing.T) {
	model := &LinearRegression{Coefficients: []float64{2, -1}, Intercept: 10}
	got, err := model.Predict([]float64{3, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 12 {
		t.Fatalf("expected 12, got %v", got)
	}
	if _, err := model.Predict([]float64{1}); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	if _, err := (&LinearRegression{}).Predict([]float64{1}); err == nil {
		t.Fatal("expected error for unloaded model")
	}
}

func TestLinearRegressionIncomeClassEffect(t *testing.T) {
	model := &LinearRegression{}
	if err := model.Load(filepath.Join("testdata", "linear_regression.json")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if model.NumFeatures() != 23 {
		t.Fatalf("expected 23 features, got %d", model.NumFeatures())
	}

	high := DefaultRecord()
	high.IncomeClass = "High"
	lowIncome, err := model.Predict(featuresFor(t, DefaultRecord()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	highIncome, err := model.Predict(featuresFor(t, high))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(highIncome-lowIncome-18000) > 1e-6 {
		t.Fatalf("expected High to add 18000, got %v -> %v", lowIncome, highIncome)
	}
}

func TestLogisticRegression(t *testing.T) {
	model := &LogisticRegression{ClassLabels: []float64{0, 1}, Coefficients: []float64{1, 1}, Intercept: 0}

	proba, err := model.PredictProba([]float64{0, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proba[0] != 0.5 || proba[1] != 0.5 {
		t.Fatalf("expected even odds, got %v", proba)
	}

	proba, err = model.PredictProba([]float64{3, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if proba[1] <= 0.99 || math.Abs(proba[0]+proba[1]-1) > 1e-12 {
		t.Fatalf("unexpected probabilities %v", proba)
	}
	label, err := model.Predict([]float64{3, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 1 {
		t.Fatalf("expected label 1, got %v", label)
	}
	label, err = model.Predict([]float64{-3, -2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected label 0, got %v", label)
	}

	// very negative margins must not overflow
	proba, err = model.PredictProba([]float64{-800, -800})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.IsNaN(proba[1]) || proba[1] != 0 {
		t.Fatalf("expected probability 0, got %v", proba[1])
	}
}

func TestLogisticRegressionLoad(t *testing.T) {
	model := &LogisticRegression{}
	if err := model.Load(filepath.Join("testdata", "logistic_regression.json")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := model.Classes(); len(got) != 2 || got[0] != 5000 || got[1] != 25000 {
		t.Fatalf("unexpected classes %v", got)
	}
	if _, err := model.Predict(featuresFor(t, DefaultRecord())); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
