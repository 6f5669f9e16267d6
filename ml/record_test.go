package ml

import (
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFieldsFollowTrainingColumnOrder(t *testing.T) {
	want := []string{
		"Gender", "Marital Status", "City", "Department", "Income Class", "Education Level",
		"Age", "Years Experience", "Weekly Hours", "Bonus Percentage", "Performance Score", "Overtime Hours",
	}
	if diff := cmp.Diff(want, ColumnNames()); diff != "" {
		t.Fatalf("column names mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldDefaultsWithinDomain(t *testing.T) {
	for _, field := range Fields() {
		if field.IsNumeric() {
			v, err := strconv.Atoi(field.Default)
			if err != nil {
				t.Fatalf("%s: default %q is not an integer", field.Name, field.Default)
			}
			if v < field.Min || v > field.Max {
				t.Fatalf("%s: default %d outside [%d, %d]", field.Name, v, field.Min, field.Max)
			}
			continue
		}
		found := false
		for _, option := range field.Options {
			if option == field.Default {
				found = true
			}
		}
		if !found {
			t.Fatalf("%s: default %q not in options %v", field.Name, field.Default, field.Options)
		}
	}
}

func TestFieldsReturnsCopy(t *testing.T) {
	fields := Fields()
	fields[0].Options[0] = "changed"
	if Fields()[0].Options[0] == "changed" {
		t.Fatal("expected Fields to return a copy")
	}
}

func TestRecordRow(t *testing.T) {
	record := DefaultRecord()
	record.Age = 41
	row := record.Row()

	if len(row.Categorical) != 6 || len(row.Numeric) != 6 {
		t.Fatalf("expected 6 categorical and 6 numeric columns, got %d and %d", len(row.Categorical), len(row.Numeric))
	}
	if row.Numeric[ColumnAge] != 41.0 {
		t.Fatalf("expected age 41, got %v", row.Numeric[ColumnAge])
	}
	if row.Categorical[ColumnEducationLevel] != "SMA" {
		t.Fatalf("unexpected education level %q", row.Categorical[ColumnEducationLevel])
	}

	columns := row.Columns()
	if len(columns) != len(ColumnNames()) {
		t.Fatalf("expected %d columns, got %d", len(ColumnNames()), len(columns))
	}
	for _, name := range ColumnNames() {
		if !row.has(name) {
			t.Fatalf("row is missing column %q", name)
		}
	}
}
