package ml

// Model is a pre-trained estimator over the transformer's feature vector.
type Model interface {
	Predict(features []float64) (float64, error)
	NumFeatures() int
	Load(path string) error
}

// Classifier is implemented by models that also expose class probabilities,
// ordered like Classes.
type Classifier interface {
	Model
	PredictProba(features []float64) ([]float64, error)
	Classes() []float64
}
