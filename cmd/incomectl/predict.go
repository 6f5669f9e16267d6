package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"incomepredict/display"
	qhttp "incomepredict/http"
	"incomepredict/ml"
)

type predictOptions struct {
	text    map[string]*string
	numbers map[string]*int
	json    bool
}

func newPredictCmd(root *rootOptions) *cobra.Command {
	opts := &predictOptions{
		text:    make(map[string]*string),
		numbers: make(map[string]*int),
	}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the monthly income for one employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPredict(cmd, root, opts)
		},
	}

	// one flag per form field, named like the JSON API (dashes instead of underscores)
	for _, field := range ml.Fields() {
		name := flagName(field.Name)
		if field.IsNumeric() {
			def, _ := strconv.Atoi(field.Default)
			usage := fmt.Sprintf("%s [%d-%d]", field.Label, field.Min, field.Max)
			opts.numbers[field.Name] = cmd.Flags().Int(name, def, usage)
			continue
		}
		usage := fmt.Sprintf("%s %v", field.Label, field.Options)
		opts.text[field.Name] = cmd.Flags().String(name, field.Default, usage)
	}
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the prediction as JSON")
	return cmd
}

func (o *predictOptions) form() qhttp.PredictForm {
	return qhttp.PredictForm{
		Gender:           *o.text["gender"],
		MaritalStatus:    *o.text["marital_status"],
		City:             *o.text["city"],
		Department:       *o.text["department"],
		IncomeClass:      *o.text["income_class"],
		EducationLevel:   *o.text["education_level"],
		Age:              o.numbers["age"],
		YearsExperience:  o.numbers["years_experience"],
		WeeklyHours:      o.numbers["weekly_hours"],
		BonusPercentage:  o.numbers["bonus_percentage"],
		PerformanceScore: o.numbers["performance_score"],
		OvertimeHours:    o.numbers["overtime_hours"],
	}
}

func runPredict(cmd *cobra.Command, root *rootOptions, opts *predictOptions) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log, err := root.newLogger(cfg)
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer log.Sync()

	form := opts.form()
	if err := qhttp.NewFormValidator().Validate(form); err != nil {
		return err
	}

	pipeline, err := ml.LoadPipeline(cfg.Transformer.Path, cfg.Model.Type, cfg.Model.Path, ml.PipelineConfig{
		Range:          cfg.Display.Range(),
		ProgressSource: cfg.Display.Progress,
	})
	if err != nil {
		return err
	}
	log.Debug("artifacts loaded", zap.String("model", pipeline.ModelName()))

	record := form.Record()
	prediction, err := pipeline.Predict(cmd.Context(), record)
	if err != nil {
		return err
	}
	log.Debug("prediction", zap.Any("record", record), zap.Float64("income", prediction.Income))

	out := cmd.OutOrStdout()
	if opts.json {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(prediction)
	}

	fmt.Fprintf(out, "Predicted Monthly Income: %s\n", display.FormatAmount(prediction.Income, cfg.Display.Currency))
	switch {
	case prediction.Progress != nil:
		fmt.Fprintf(out, "Progress: %s\n", display.FormatPercent(*prediction.Progress))
	case prediction.Degenerate:
		fmt.Fprintln(out, "Progress: unavailable (income range is degenerate)")
	}
	if prediction.Probability != nil {
		fmt.Fprintf(out, "Probability of Income Prediction: %s\n", display.FormatProbability(*prediction.Probability))
	}
	return nil
}

func flagName(field string) string {
	return strings.ReplaceAll(field, "_", "-")
}
