package ml

import "fmt"

const (
	ModelLinearRegression   = "linear_regression"
	ModelLogisticRegression = "logistic_regression"
	ModelDecisionTree       = "decision_tree"
)

func ModelTypes() []string {
	return []string{ModelLinearRegression, ModelLogisticRegression, ModelDecisionTree}
}

func LoadModel(modelType, path string) (Model, error) {
	var model Model
	switch modelType {
	case ModelLinearRegression:
		model = &LinearRegression{}
	case ModelLogisticRegression:
		model = &LogisticRegression{}
	case ModelDecisionTree:
		model = &DecisionTree{}
	default:
		return nil, fmt.Errorf("%w: unsupported model type %q", ErrArtifactLoad, modelType)
	}
	if err := model.Load(path); err != nil {
		return nil, err
	}
	return model, nil
}
