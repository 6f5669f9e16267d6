package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

const (
	StepOneHot         = "onehot"
	StepOrdinal        = "ordinal"
	StepStandardScaler = "standard_scaler"
	StepMinMaxScaler   = "minmax_scaler"
	StepPassthrough    = "passthrough"

	RemainderDrop        = "drop"
	RemainderPassthrough = "passthrough"
)

// TransformerStep is one fitted column group of a ColumnTransformer.
type TransformerStep struct {
	Name       string     `json:"name"`
	Kind       string     `json:"kind"`
	Columns    []string   `json:"columns"`
	Categories [][]string `json:"categories,omitempty"`
	Mean       []float64  `json:"mean,omitempty"`
	Scale      []float64  `json:"scale,omitempty"`
	DataMin    []float64  `json:"data_min,omitempty"`
	DataMax    []float64  `json:"data_max,omitempty"`
}

// ColumnTransformer maps a Row onto the numeric feature vector the model was
// trained on. It is immutable once loaded.
type ColumnTransformer struct {
	FeatureNamesIn []string          `json:"feature_names_in"`
	Transformers   []TransformerStep `json:"transformers"`
	Remainder      string            `json:"remainder"`

	remainder []string
	width     int
}

func LoadTransformer(path string) (*ColumnTransformer, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading transformer: %v", ErrArtifactLoad, err)
	}
	var ct ColumnTransformer
	if err := json.Unmarshal(payload, &ct); err != nil {
		return nil, fmt.Errorf("%w: decoding transformer %s: %v", ErrArtifactLoad, path, err)
	}
	if err := ct.init(); err != nil {
		return nil, fmt.Errorf("%w: transformer %s: %v", ErrArtifactLoad, path, err)
	}
	return &ct, nil
}

// NewColumnTransformer validates a transformer built in memory.
func NewColumnTransformer(featureNamesIn []string, steps []TransformerStep, remainder string) (*ColumnTransformer, error) {
	ct := &ColumnTransformer{
		FeatureNamesIn: append([]string(nil), featureNamesIn...),
		Transformers:   steps,
		Remainder:      remainder,
	}
	if err := ct.init(); err != nil {
		return nil, err
	}
	return ct, nil
}

func (ct *ColumnTransformer) NumFeatures() int {
	return ct.width
}

func (ct *ColumnTransformer) init() error {
	if len(ct.FeatureNamesIn) == 0 {
		return errors.New("feature_names_in is empty")
	}
	known := make(map[string]bool, len(ct.FeatureNamesIn))
	for _, name := range ct.FeatureNamesIn {
		if known[name] {
			return fmt.Errorf("duplicate input column %q", name)
		}
		known[name] = true
	}

	claimed := make(map[string]string)
	width := 0
	for i, step := range ct.Transformers {
		if len(step.Columns) == 0 {
			return fmt.Errorf("transformer %d (%s) has no columns", i, step.Name)
		}
		for _, column := range step.Columns {
			if !known[column] {
				return fmt.Errorf("transformer %s uses unknown column %q", step.Name, column)
			}
			if owner, ok := claimed[column]; ok {
				return fmt.Errorf("column %q claimed by both %s and %s", column, owner, step.Name)
			}
			claimed[column] = step.Name
		}

		n := len(step.Columns)
		switch step.Kind {
		case StepOneHot, StepOrdinal:
			if len(step.Categories) != n {
				return fmt.Errorf("transformer %s: %d category lists for %d columns", step.Name, len(step.Categories), n)
			}
			for j, categories := range step.Categories {
				if len(categories) == 0 {
					return fmt.Errorf("transformer %s: no categories for %q", step.Name, step.Columns[j])
				}
				if step.Kind == StepOneHot {
					width += len(categories)
				} else {
					width++
				}
			}
		case StepStandardScaler:
			if len(step.Mean) != n || len(step.Scale) != n {
				return fmt.Errorf("transformer %s: mean/scale length does not match %d columns", step.Name, n)
			}
			width += n
		case StepMinMaxScaler:
			if len(step.DataMin) != n || len(step.DataMax) != n {
				return fmt.Errorf("transformer %s: data_min/data_max length does not match %d columns", step.Name, n)
			}
			width += n
		case StepPassthrough:
			width += n
		default:
			return fmt.Errorf("transformer %s: unsupported kind %q", step.Name, step.Kind)
		}
	}

	ct.remainder = nil
	switch ct.Remainder {
	case "", RemainderDrop:
	case RemainderPassthrough:
		for _, name := range ct.FeatureNamesIn {
			if _, ok := claimed[name]; !ok {
				ct.remainder = append(ct.remainder, name)
			}
		}
		width += len(ct.remainder)
	default:
		return fmt.Errorf("unsupported remainder %q", ct.Remainder)
	}

	if width == 0 {
		return errors.New("transformer produces no features")
	}
	ct.width = width
	return nil
}

// Transform encodes a single row. Any column or category the transformer was
// not fitted with fails with ErrSchemaMismatch.
func (ct *ColumnTransformer) Transform(row Row) ([]float64, error) {
	if err := ct.checkColumns(row); err != nil {
		return nil, err
	}

	features := make([]float64, 0, ct.width)
	for _, step := range ct.Transformers {
		for j, column := range step.Columns {
			switch step.Kind {
			case StepOneHot:
				idx, err := categoryIndex(row, column, step.Categories[j])
				if err != nil {
					return nil, err
				}
				encoded := make([]float64, len(step.Categories[j]))
				encoded[idx] = 1
				features = append(features, encoded...)
			case StepOrdinal:
				idx, err := categoryIndex(row, column, step.Categories[j])
				if err != nil {
					return nil, err
				}
				features = append(features, float64(idx))
			case StepStandardScaler:
				value, err := numericValue(row, column)
				if err != nil {
					return nil, err
				}
				scale := step.Scale[j]
				if scale == 0 {
					scale = 1
				}
				features = append(features, (value-step.Mean[j])/scale)
			case StepMinMaxScaler:
				value, err := numericValue(row, column)
				if err != nil {
					return nil, err
				}
				features = append(features, minMax(value, step.DataMin[j], step.DataMax[j]))
			case StepPassthrough:
				value, err := numericValue(row, column)
				if err != nil {
					return nil, err
				}
				features = append(features, value)
			}
		}
	}
	for _, column := range ct.remainder {
		value, err := numericValue(row, column)
		if err != nil {
			return nil, err
		}
		features = append(features, value)
	}
	return features, nil
}

func (ct *ColumnTransformer) checkColumns(row Row) error {
	expected := make(map[string]bool, len(ct.FeatureNamesIn))
	for _, name := range ct.FeatureNamesIn {
		expected[name] = true
		if !row.has(name) {
			return fmt.Errorf("%w: column %q is missing", ErrSchemaMismatch, name)
		}
	}
	for _, column := range row.Columns() {
		if !expected[column] {
			return fmt.Errorf("%w: column %q was not seen during fit", ErrSchemaMismatch, column)
		}
	}
	return nil
}

func categoryIndex(row Row, column string, categories []string) (int, error) {
	value, ok := row.Categorical[column]
	if !ok {
		return 0, fmt.Errorf("%w: column %q must be categorical", ErrSchemaMismatch, column)
	}
	for i, category := range categories {
		if category == value {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown category %q in column %q", ErrSchemaMismatch, value, column)
}

func numericValue(row Row, column string) (float64, error) {
	value, ok := row.Numeric[column]
	if !ok {
		return 0, fmt.Errorf("%w: column %q must be numeric", ErrSchemaMismatch, column)
	}
	return value, nil
}

func minMax(value, min, max float64) float64 {
	if max == min {
		return value - min
	}
	return (value - min) / (max - min)
}
