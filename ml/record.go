package ml

import "sort"

type FieldKind string

const (
	KindCategorical FieldKind = "categorical"
	KindOrdinal     FieldKind = "ordinal"
	KindInteger     FieldKind = "integer"
)

const (
	ColumnGender           = "Gender"
	ColumnMaritalStatus    = "Marital Status"
	ColumnCity             = "City"
	ColumnDepartment       = "Department"
	ColumnIncomeClass      = "Income Class"
	ColumnEducationLevel   = "Education Level"
	ColumnAge              = "Age"
	ColumnYearsExperience  = "Years Experience"
	ColumnWeeklyHours      = "Weekly Hours"
	ColumnBonusPercentage  = "Bonus Percentage"
	ColumnPerformanceScore = "Performance Score"
	ColumnOvertimeHours    = "Overtime Hours"
)

// FieldSpec describes one input of the prediction form. Column is the name
// the transformer was fitted with.
type FieldSpec struct {
	Name    string    `json:"name"`
	Column  string    `json:"column"`
	Label   string    `json:"label"`
	Kind    FieldKind `json:"kind"`
	Options []string  `json:"options,omitempty"`
	Min     int       `json:"min,omitempty"`
	Max     int       `json:"max,omitempty"`
	Default string    `json:"default"`
}

func (f FieldSpec) IsNumeric() bool {
	return f.Kind == KindInteger
}

var fieldSpecs = []FieldSpec{
	{Name: "gender", Column: ColumnGender, Label: "Gender", Kind: KindCategorical,
		Options: []string{"Male", "Female", "Other"}, Default: "Male"},
	{Name: "marital_status", Column: ColumnMaritalStatus, Label: "Marital Status", Kind: KindCategorical,
		Options: []string{"Single", "Married", "Divorced"}, Default: "Single"},
	{Name: "city", Column: ColumnCity, Label: "City", Kind: KindCategorical,
		Options: []string{"Surabaya", "Jakarta", "Bandung"}, Default: "Surabaya"},
	{Name: "department", Column: ColumnDepartment, Label: "Department", Kind: KindCategorical,
		Options: []string{"Marketing", "IT", "HR", "Sales", "Finance"}, Default: "Marketing"},
	{Name: "income_class", Column: ColumnIncomeClass, Label: "Income Class", Kind: KindCategorical,
		Options: []string{"Low", "High"}, Default: "Low"},
	{Name: "education_level", Column: ColumnEducationLevel, Label: "Education Level", Kind: KindOrdinal,
		Options: []string{"SMA", "D3", "S1", "S2"}, Default: "SMA"},
	{Name: "age", Column: ColumnAge, Label: "Age", Kind: KindInteger, Min: 2, Max: 66, Default: "35"},
	{Name: "years_experience", Column: ColumnYearsExperience, Label: "Years of Experience", Kind: KindInteger,
		Min: 0, Max: 24, Default: "10"},
	{Name: "weekly_hours", Column: ColumnWeeklyHours, Label: "Weekly Hours Worked", Kind: KindInteger,
		Min: 23, Max: 57, Default: "40"},
	{Name: "bonus_percentage", Column: ColumnBonusPercentage, Label: "Bonus Percentage", Kind: KindInteger,
		Min: 1, Max: 18, Default: "10"},
	{Name: "performance_score", Column: ColumnPerformanceScore, Label: "Performance Score", Kind: KindInteger,
		Min: 44, Max: 107, Default: "75"},
	{Name: "overtime_hours", Column: ColumnOvertimeHours, Label: "Overtime Hours (Monthly)", Kind: KindInteger,
		Min: 0, Max: 25, Default: "10"},
}

// Fields returns the form fields in training column order.
func Fields() []FieldSpec {
	out := make([]FieldSpec, len(fieldSpecs))
	for i, spec := range fieldSpecs {
		spec.Options = append([]string(nil), spec.Options...)
		out[i] = spec
	}
	return out
}

func ColumnNames() []string {
	names := make([]string, len(fieldSpecs))
	for i, spec := range fieldSpecs {
		names[i] = spec.Column
	}
	return names
}

// Record is a single prediction request.
type Record struct {
	Gender         string
	MaritalStatus  string
	City           string
	Department     string
	IncomeClass    string
	EducationLevel string

	Age              int
	YearsExperience  int
	WeeklyHours      int
	BonusPercentage  int
	PerformanceScore int
	OvertimeHours    int
}

func DefaultRecord() Record {
	return Record{
		Gender:           "Male",
		MaritalStatus:    "Single",
		City:             "Surabaya",
		Department:       "Marketing",
		IncomeClass:      "Low",
		EducationLevel:   "SMA",
		Age:              35,
		YearsExperience:  10,
		WeeklyHours:      40,
		BonusPercentage:  10,
		PerformanceScore: 75,
		OvertimeHours:    10,
	}
}

// Row is the single-row frame handed to the transformer. Numeric cells are
// float64 because the transformer was fitted on float columns.
type Row struct {
	Categorical map[string]string
	Numeric     map[string]float64
}

func (r Record) Row() Row {
	return Row{
		Categorical: map[string]string{
			ColumnGender:         r.Gender,
			ColumnMaritalStatus:  r.MaritalStatus,
			ColumnCity:           r.City,
			ColumnDepartment:     r.Department,
			ColumnIncomeClass:    r.IncomeClass,
			ColumnEducationLevel: r.EducationLevel,
		},
		Numeric: map[string]float64{
			ColumnAge:              float64(r.Age),
			ColumnYearsExperience:  float64(r.YearsExperience),
			ColumnWeeklyHours:      float64(r.WeeklyHours),
			ColumnBonusPercentage:  float64(r.BonusPercentage),
			ColumnPerformanceScore: float64(r.PerformanceScore),
			ColumnOvertimeHours:    float64(r.OvertimeHours),
		},
	}
}

func (r Row) Columns() []string {
	columns := make([]string, 0, len(r.Categorical)+len(r.Numeric))
	for column := range r.Categorical {
		columns = append(columns, column)
	}
	for column := range r.Numeric {
		columns = append(columns, column)
	}
	sort.Strings(columns)
	return columns
}

func (r Row) has(column string) bool {
	if _, ok := r.Categorical[column]; ok {
		return true
	}
	_, ok := r.Numeric[column]
	return ok
}
