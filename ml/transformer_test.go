package ml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func loadTestTransformer(t *testing.T) *ColumnTransformer {
	t.Helper()
	ct, err := LoadTransformer(filepath.Join("testdata", "transformer.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return ct
}

func TestTransformDefaultRecord(t *testing.T) {
	ct := loadTestTransformer(t)
	if ct.NumFeatures() != 23 {
		t.Fatalf("expected 23 features, got %d", ct.NumFeatures())
	}

	record := DefaultRecord()
	record.EducationLevel = "S1"
	features, err := ct.Transform(record.Row())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []float64{
		0, 1, 0, // Male
		0, 0, 1, // Single
		0, 0, 1, // Surabaya
		0, 0, 0, 1, 0, // Marketing
		0, 1, // Low
		2, // S1
		(35 - 34.0) / 9.8,
		(10 - 10.1) / 6.3,
		(40 - 40.2) / 7.1,
		(10 - 9.6) / 4.9,
		(75 - 75.4) / 12.2,
		(10 - 10.3) / 6.8,
	}
	if diff := cmp.Diff(want, features, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("features mismatch (-want +got):\n%s", diff)
	}
}

func TestTransformAcceptsEveryValidRecord(t *testing.T) {
	ct := loadTestTransformer(t)
	fields := Fields()
	options := func(name string) []string {
		for _, f := range fields {
			if f.Name == name {
				return f.Options
			}
		}
		t.Fatalf("unknown field %s", name)
		return nil
	}

	count := 0
	for _, gender := range options("gender") {
		for _, marital := range options("marital_status") {
			for _, city := range options("city") {
				for _, department := range options("department") {
					for _, incomeClass := range options("income_class") {
						for _, education := range options("education_level") {
							record := DefaultRecord()
							record.Gender = gender
							record.MaritalStatus = marital
							record.City = city
							record.Department = department
							record.IncomeClass = incomeClass
							record.EducationLevel = education
							if _, err := ct.Transform(record.Row()); err != nil {
								t.Fatalf("record %+v: unexpected error: %v", record, err)
							}
							count++
						}
					}
				}
			}
		}
	}
	if count != 3*3*3*5*2*4 {
		t.Fatalf("unexpected combination count %d", count)
	}

	bounds := DefaultRecord()
	for _, f := range fields {
		if !f.IsNumeric() {
			continue
		}
		for _, v := range []int{f.Min, f.Max} {
			row := bounds.Row()
			row.Numeric[f.Column] = float64(v)
			if _, err := ct.Transform(row); err != nil {
				t.Fatalf("%s=%d: unexpected error: %v", f.Name, v, err)
			}
		}
	}
}

func TestTransformSchemaMismatch(t *testing.T) {
	ct := loadTestTransformer(t)

	tests := []struct {
		name   string
		mutate func(Row)
	}{
		{"unknown category", func(r Row) { r.Categorical[ColumnCity] = "Medan" }},
		{"case differs", func(r Row) { r.Categorical[ColumnGender] = "male" }},
		{"missing column", func(r Row) { delete(r.Numeric, ColumnAge) }},
		{"unexpected column", func(r Row) { r.Numeric["Commute Minutes"] = 30 }},
		{"renamed column", func(r Row) {
			r.Categorical["Marital_Status"] = r.Categorical[ColumnMaritalStatus]
			delete(r.Categorical, ColumnMaritalStatus)
		}},
		{"numeric given for categorical", func(r Row) {
			delete(r.Categorical, ColumnIncomeClass)
			r.Numeric[ColumnIncomeClass] = 1
		}},
		{"categorical given for numeric", func(r Row) {
			delete(r.Numeric, ColumnWeeklyHours)
			r.Categorical[ColumnWeeklyHours] = "40"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := DefaultRecord().Row()
			tt.mutate(row)
			_, err := ct.Transform(row)
			if !errors.Is(err, ErrSchemaMismatch) {
				t.Fatalf("expected ErrSchemaMismatch, got %v", err)
			}
		})
	}
}

func TestTransformRemainderPassthrough(t *testing.T) {
	ct, err := NewColumnTransformer(
		[]string{"A", "B", "C"},
		[]TransformerStep{
			{Name: "cat", Kind: StepOneHot, Columns: []string{"A"}, Categories: [][]string{{"x", "y"}}},
			{Name: "mm", Kind: StepMinMaxScaler, Columns: []string{"C"}, DataMin: []float64{0}, DataMax: []float64{10}},
		},
		RemainderPassthrough,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row := Row{
		Categorical: map[string]string{"A": "y"},
		Numeric:     map[string]float64{"B": 7, "C": 5},
	}
	features, err := ct.Transform(row)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]float64{0, 1, 0.5, 7}, features); diff != "" {
		t.Fatalf("features mismatch (-want +got):\n%s", diff)
	}
}

func TestNewColumnTransformerRejectsInvalidShapes(t *testing.T) {
	tests := []struct {
		name      string
		columns   []string
		steps     []TransformerStep
		remainder string
	}{
		{"no inputs", nil, nil, ""},
		{"duplicate input", []string{"A", "A"}, nil, RemainderPassthrough},
		{"unknown column", []string{"A"}, []TransformerStep{{Name: "p", Kind: StepPassthrough, Columns: []string{"B"}}}, ""},
		{"claimed twice", []string{"A"}, []TransformerStep{
			{Name: "p", Kind: StepPassthrough, Columns: []string{"A"}},
			{Name: "q", Kind: StepPassthrough, Columns: []string{"A"}},
		}, ""},
		{"category count", []string{"A"}, []TransformerStep{{Name: "c", Kind: StepOneHot, Columns: []string{"A"}}}, ""},
		{"empty categories", []string{"A"}, []TransformerStep{{Name: "c", Kind: StepOrdinal, Columns: []string{"A"}, Categories: [][]string{{}}}}, ""},
		{"scaler shape", []string{"A"}, []TransformerStep{{Name: "s", Kind: StepStandardScaler, Columns: []string{"A"}, Mean: []float64{1}}}, ""},
		{"unknown kind", []string{"A"}, []TransformerStep{{Name: "k", Kind: "binarizer", Columns: []string{"A"}}}, ""},
		{"bad remainder", []string{"A"}, nil, "keep"},
		{"no output", []string{"A"}, nil, RemainderDrop},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewColumnTransformer(tt.columns, tt.steps, tt.remainder); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadTransformerFailures(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	invalid := filepath.Join(dir, "invalid.json")
	if err := os.WriteFile(invalid, []byte(`{"feature_names_in": []}`), 0o600); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, path := range []string{filepath.Join(dir, "missing.json"), corrupt, invalid} {
		if _, err := LoadTransformer(path); !errors.Is(err, ErrArtifactLoad) {
			t.Fatalf("%s: expected ErrArtifactLoad, got %v", path, err)
		}
	}
}
