package http

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"incomepredict/ml"
)

// PredictForm is the collected input. The tags mirror ml.Fields; the
// pipeline itself does not re-check bounds.
type PredictForm struct {
	Gender         string `json:"gender" validate:"required,oneof=Male Female Other"`
	MaritalStatus  string `json:"marital_status" validate:"required,oneof=Single Married Divorced"`
	City           string `json:"city" validate:"required,oneof=Surabaya Jakarta Bandung"`
	Department     string `json:"department" validate:"required,oneof=Marketing IT HR Sales Finance"`
	IncomeClass    string `json:"income_class" validate:"required,oneof=Low High"`
	EducationLevel string `json:"education_level" validate:"required,oneof=SMA D3 S1 S2"`

	Age              *int `json:"age" validate:"required,min=2,max=66"`
	YearsExperience  *int `json:"years_experience" validate:"required,min=0,max=24"`
	WeeklyHours      *int `json:"weekly_hours" validate:"required,min=23,max=57"`
	BonusPercentage  *int `json:"bonus_percentage" validate:"required,min=1,max=18"`
	PerformanceScore *int `json:"performance_score" validate:"required,min=44,max=107"`
	OvertimeHours    *int `json:"overtime_hours" validate:"required,min=0,max=25"`
}

// Record must only be called on a validated form.
func (f PredictForm) Record() ml.Record {
	return ml.Record{
		Gender:           f.Gender,
		MaritalStatus:    f.MaritalStatus,
		City:             f.City,
		Department:       f.Department,
		IncomeClass:      f.IncomeClass,
		EducationLevel:   f.EducationLevel,
		Age:              *f.Age,
		YearsExperience:  *f.YearsExperience,
		WeeklyHours:      *f.WeeklyHours,
		BonusPercentage:  *f.BonusPercentage,
		PerformanceScore: *f.PerformanceScore,
		OvertimeHours:    *f.OvertimeHours,
	}
}

// Values returns the submitted value per field name, for re-rendering.
func (f PredictForm) Values() map[string]string {
	values := map[string]string{
		"gender":          f.Gender,
		"marital_status":  f.MaritalStatus,
		"city":            f.City,
		"department":      f.Department,
		"income_class":    f.IncomeClass,
		"education_level": f.EducationLevel,
	}
	for name, v := range f.numberFields() {
		if *v != nil {
			values[name] = strconv.Itoa(**v)
		}
	}
	return values
}

func (f *PredictForm) textFields() map[string]*string {
	return map[string]*string{
		"gender":          &f.Gender,
		"marital_status":  &f.MaritalStatus,
		"city":            &f.City,
		"department":      &f.Department,
		"income_class":    &f.IncomeClass,
		"education_level": &f.EducationLevel,
	}
}

func (f *PredictForm) numberFields() map[string]**int {
	return map[string]**int{
		"age":               &f.Age,
		"years_experience":  &f.YearsExperience,
		"weekly_hours":      &f.WeeklyHours,
		"bonus_percentage":  &f.BonusPercentage,
		"performance_score": &f.PerformanceScore,
		"overtime_hours":    &f.OvertimeHours,
	}
}

// FieldErrors maps a field name to a human readable problem.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for _, field := range ml.Fields() {
		if msg, ok := e[field.Name]; ok {
			parts = append(parts, field.Name+": "+msg)
		}
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// parseFormValues reads an url-encoded submission. Non-integer numeric
// inputs are reported here; everything else is left to FormValidator.
func parseFormValues(values url.Values) (PredictForm, FieldErrors) {
	var form PredictForm
	problems := FieldErrors{}
	for name, target := range form.textFields() {
		*target = strings.TrimSpace(values.Get(name))
	}
	for name, target := range form.numberFields() {
		raw := strings.TrimSpace(values.Get(name))
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			problems[name] = "must be a whole number"
			continue
		}
		*target = &n
	}
	return form, problems
}

// FormValidator enforces the enum and range constraints of the form.
type FormValidator struct {
	validate *validator.Validate
	specs    map[string]ml.FieldSpec
}

func NewFormValidator() *FormValidator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	specs := make(map[string]ml.FieldSpec)
	for _, spec := range ml.Fields() {
		specs[spec.Name] = spec
	}
	return &FormValidator{validate: validate, specs: specs}
}

func (v *FormValidator) Validate(form PredictForm) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	problems := FieldErrors{}
	for _, fe := range validationErrors {
		problems[fe.Field()] = v.message(fe)
	}
	return problems
}

func (v *FormValidator) message(fe validator.FieldError) string {
	spec := v.specs[fe.Field()]
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.Join(spec.Options, ", "))
	case "min", "max":
		return fmt.Sprintf("must be between %d and %d", spec.Min, spec.Max)
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}
