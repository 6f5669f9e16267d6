package ml

import (
	"context"
	"errors"
	"fmt"
)

const (
	ProgressFromRange       = "range"
	ProgressFromProbability = "probability"
)

type PipelineConfig struct {
	Range IncomeRange
	// ProgressSource selects what drives the progress value: the scaled
	// income (default) or the classifier's positive-class probability.
	ProgressSource string
}

// Prediction is the outcome of one inference. Probability is nil for
// regressors; Progress is nil when the income range is degenerate.
type Prediction struct {
	Income      float64  `json:"income"`
	Probability *float64 `json:"probability,omitempty"`
	Progress    *float64 `json:"progress,omitempty"`
	Degenerate  bool     `json:"degenerate_range"`
}

// Pipeline holds the loaded artifacts. It never mutates them, so one
// Pipeline may serve concurrent requests.
type Pipeline struct {
	transformer *ColumnTransformer
	model       Model
	config      PipelineConfig
}

func NewPipeline(transformer *ColumnTransformer, model Model, config PipelineConfig) (*Pipeline, error) {
	if transformer == nil || model == nil {
		return nil, errors.New("transformer and model are required")
	}
	if model.NumFeatures() != transformer.NumFeatures() {
		return nil, fmt.Errorf("%w: transformer yields %d features, model expects %d",
			ErrSchemaMismatch, transformer.NumFeatures(), model.NumFeatures())
	}
	switch config.ProgressSource {
	case "":
		config.ProgressSource = ProgressFromRange
	case ProgressFromRange, ProgressFromProbability:
	default:
		return nil, fmt.Errorf("unsupported progress source %q", config.ProgressSource)
	}
	return &Pipeline{transformer: transformer, model: model, config: config}, nil
}

func (p *Pipeline) Predict(ctx context.Context, record Record) (*Prediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	features, err := p.transformer.Transform(record.Row())
	if err != nil {
		return nil, err
	}
	income, err := p.model.Predict(features)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	prediction := &Prediction{Income: income}

	if classifier, ok := p.model.(Classifier); ok && len(classifier.Classes()) > 0 {
		proba, err := classifier.PredictProba(features)
		if err != nil {
			return nil, fmt.Errorf("predict proba: %w", err)
		}
		if len(proba) > 0 {
			positive := proba[len(proba)-1]
			prediction.Probability = &positive
		}
	}

	if p.config.ProgressSource == ProgressFromProbability && prediction.Probability != nil {
		progress := clamp(*prediction.Probability, 0, 1)
		prediction.Progress = &progress
		return prediction, nil
	}

	progress, err := p.config.Range.Scale(income)
	switch {
	case errors.Is(err, ErrRangeDegenerate):
		prediction.Degenerate = true
	case err != nil:
		return nil, err
	default:
		prediction.Progress = &progress
	}
	return prediction, nil
}

func (p *Pipeline) ModelName() string {
	switch p.model.(type) {
	case *LinearRegression:
		return ModelLinearRegression
	case *LogisticRegression:
		return ModelLogisticRegression
	case *DecisionTree:
		return ModelDecisionTree
	default:
		return fmt.Sprintf("%T", p.model)
	}
}

// LoadPipeline loads both artifacts from disk. Any failure is an
// ErrArtifactLoad or ErrSchemaMismatch and should stop the process.
func LoadPipeline(transformerPath, modelType, modelPath string, config PipelineConfig) (*Pipeline, error) {
	transformer, err := LoadTransformer(transformerPath)
	if err != nil {
		return nil, err
	}
	model, err := LoadModel(modelType, modelPath)
	if err != nil {
		return nil, err
	}
	return NewPipeline(transformer, model, config)
}
