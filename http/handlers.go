package http

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"time"

	"go.uber.org/zap"

	"incomepredict/display"
	"incomepredict/ml"
	"incomepredict/monitoring"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Predictor runs one inference. *ml.Pipeline implements it.
type Predictor interface {
	Predict(ctx context.Context, record ml.Record) (*ml.Prediction, error)
	ModelName() string
}

// Handlers serves the form page and the JSON API over one Predictor.
type Handlers struct {
	predictor Predictor
	validator *FormValidator
	currency  string
	metrics   *monitoring.PredictionMetrics
	logger    *zap.Logger
}

func NewHandlers(predictor Predictor, currency string, logger *zap.Logger) *Handlers {
	return &Handlers{
		predictor: predictor,
		validator: NewFormValidator(),
		currency:  currency,
		metrics:   monitoring.NewPredictionMetrics(),
		logger:    logger,
	}
}

// Register mounts every route on mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/schema", handleSchema)
	mux.HandleFunc("POST /api/predict", h.handlePredict)
	mux.HandleFunc("GET /api/metrics", h.handleMetrics)
	mux.HandleFunc("GET /metrics", h.handlePrometheus)
	mux.HandleFunc("GET /{$}", h.handleFormPage)
	mux.HandleFunc("POST /{$}", h.handleFormSubmit)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleSchema(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"fields": ml.Fields(),
	})
}

func (h *Handlers) handleMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.metrics.Snapshot())
}

func (h *Handlers) handlePrometheus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_, _ = w.Write([]byte(h.metrics.ExportPrometheus()))
}

type predictResponse struct {
	Income             float64  `json:"income"`
	IncomeDisplay      string   `json:"income_display"`
	Currency           string   `json:"currency,omitempty"`
	Probability        *float64 `json:"probability,omitempty"`
	ProbabilityDisplay string   `json:"probability_display,omitempty"`
	Progress           *float64 `json:"progress,omitempty"`
	DegenerateRange    bool     `json:"degenerate_range"`
	Model              string   `json:"model"`
}

type errorResponse struct {
	Error  string      `json:"error"`
	Fields FieldErrors `json:"fields,omitempty"`
}

func (h *Handlers) handlePredict(w http.ResponseWriter, r *http.Request) {
	var form PredictForm
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&form); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large", nil)
			return
		}
		respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error(), nil)
		return
	}
	if err := h.validator.Validate(form); err != nil {
		var problems FieldErrors
		if errors.As(err, &problems) {
			h.metrics.RecordOutcome(monitoring.OutcomeInvalid)
			respondError(w, http.StatusBadRequest, "invalid input", problems)
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error(), nil)
		return
	}

	prediction, err := h.predict(r.Context(), form.Record())
	if err != nil {
		status, message := classifyError(err)
		respondError(w, status, message, nil)
		return
	}

	response := predictResponse{
		Income:          prediction.Income,
		IncomeDisplay:   display.FormatAmount(prediction.Income, h.currency),
		Currency:        h.currency,
		Probability:     prediction.Probability,
		Progress:        prediction.Progress,
		DegenerateRange: prediction.Degenerate,
		Model:           h.predictor.ModelName(),
	}
	if prediction.Probability != nil {
		response.ProbabilityDisplay = display.FormatProbability(*prediction.Probability)
	}
	respondJSON(w, http.StatusOK, response)
}

type fieldView struct {
	ml.FieldSpec
	Value string
	Error string
}

type resultView struct {
	Income        string
	Probability   string
	HasProgress   bool
	Progress      float64
	ProgressLabel string
	Degenerate    bool
}

type pageView struct {
	Fields []fieldView
	Result *resultView
	Error  string
}

func newPageView(values map[string]string, problems FieldErrors) pageView {
	specs := ml.Fields()
	view := pageView{Fields: make([]fieldView, len(specs))}
	for i, spec := range specs {
		value, ok := values[spec.Name]
		if !ok || value == "" {
			value = spec.Default
		}
		view.Fields[i] = fieldView{FieldSpec: spec, Value: value, Error: problems[spec.Name]}
	}
	return view
}

func (h *Handlers) handleFormPage(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, http.StatusOK, newPageView(nil, nil))
}

func (h *Handlers) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderPage(w, http.StatusBadRequest, pageView{Fields: newPageView(nil, nil).Fields, Error: "could not read the form"})
		return
	}
	form, problems := parseFormValues(r.PostForm)
	if err := h.validator.Validate(form); err != nil {
		var validationProblems FieldErrors
		if !errors.As(err, &validationProblems) {
			h.renderPage(w, http.StatusInternalServerError, pageView{Fields: newPageView(nil, nil).Fields, Error: err.Error()})
			return
		}
		for field, message := range validationProblems {
			if _, ok := problems[field]; !ok {
				problems[field] = message
			}
		}
	}
	if len(problems) > 0 {
		h.metrics.RecordOutcome(monitoring.OutcomeInvalid)
		view := newPageView(flatten(r.PostForm), problems)
		view.Error = "Please correct the highlighted fields."
		h.renderPage(w, http.StatusBadRequest, view)
		return
	}

	view := newPageView(form.Values(), nil)
	prediction, err := h.predict(r.Context(), form.Record())
	if err != nil {
		status, message := classifyError(err)
		view.Error = "Prediction failed: " + message
		h.renderPage(w, status, view)
		return
	}

	result := &resultView{
		Income:     display.FormatAmount(prediction.Income, h.currency),
		Degenerate: prediction.Degenerate,
	}
	if prediction.Progress != nil {
		result.HasProgress = true
		result.Progress = *prediction.Progress
		result.ProgressLabel = display.FormatPercent(*prediction.Progress)
	}
	if prediction.Probability != nil {
		result.Probability = display.FormatProbability(*prediction.Probability)
	}
	view.Result = result
	h.renderPage(w, http.StatusOK, view)
}

func (h *Handlers) predict(ctx context.Context, record ml.Record) (*ml.Prediction, error) {
	started := time.Now()
	prediction, err := h.predictor.Predict(ctx, record)
	requestID := GetRequestID(ctx)
	if err != nil {
		h.metrics.RecordOutcome(outcomeOf(err))
		h.logger.Warn("prediction failed",
			zap.String("request_id", requestID),
			zap.Any("record", record),
			zap.Error(err),
		)
		return nil, err
	}
	h.metrics.RecordPrediction(prediction.Income, prediction.Degenerate, time.Since(started))

	elapsed := time.Duration(0)
	if start := GetStartTime(ctx); !start.IsZero() {
		elapsed = time.Since(start)
	}
	fields := []zap.Field{
		zap.String("request_id", requestID),
		zap.Float64("income", prediction.Income),
		zap.Duration("elapsed", elapsed),
	}
	if prediction.Degenerate {
		h.logger.Warn("income range is degenerate, progress left undefined", fields...)
	} else {
		h.logger.Debug("prediction", fields...)
	}
	return prediction, nil
}

func outcomeOf(err error) monitoring.Outcome {
	switch {
	case errors.Is(err, ml.ErrSchemaMismatch):
		return monitoring.OutcomeSchemaMismatch
	case errors.Is(err, context.DeadlineExceeded):
		return monitoring.OutcomeTimeout
	default:
		return monitoring.OutcomeFailed
	}
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, ml.ErrSchemaMismatch):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "prediction timed out"
	default:
		return http.StatusInternalServerError, "prediction failed"
	}
}

func (h *Handlers) renderPage(w http.ResponseWriter, status int, view pageView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, view); err != nil {
		h.logger.Error("rendering page", zap.Error(err))
	}
}

func flatten(values map[string][]string) map[string]string {
	flat := make(map[string]string, len(values))
	for key, v := range values {
		if len(v) > 0 {
			flat[key] = v[0]
		}
	}
	return flat
}

// respondJSON writes data as the JSON response body.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, fields FieldErrors) {
	respondJSON(w, status, errorResponse{Error: message, Fields: fields})
}
