package engine

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/cardiorun/cardiorun/internal/config"
	"github.com/cardiorun/cardiorun/internal/dataset"
	"github.com/cardiorun/cardiorun/internal/explain"
	"github.com/cardiorun/cardiorun/internal/features"
	"github.com/cardiorun/cardiorun/internal/metrics"
	"github.com/cardiorun/cardiorun/internal/model"
	"github.com/cardiorun/cardiorun/internal/risk"
	"github.com/cardiorun/cardiorun/internal/simulate"
	"github.com/cardiorun/cardiorun/internal/train"
)

// ErrModelUnavailable means no usable model snapshot is published for this
// call. It fails the predict call, never the process; callers may retry after
// a training run completes.
var ErrModelUnavailable = errors.New("no trained model available")

// Snapshot is the immutable serving state produced by one training run: the
// selected classifier plus the fitted preprocessing it depends on. Never
// mutated after construction; shared by concurrent predictions without
// synchronization.
type Snapshot struct {
	ModelName   string
	Model       model.Classifier
	UseScaled   bool
	Scaler      *model.StandardScaler
	Pre         *features.Preprocessor
	Importance  []float64 // nil when the model exposes none
	Performance map[string]train.Metrics
}

// SnapshotFromResult extracts the serving state for the selected candidate.
func SnapshotFromResult(r *train.Result) (*Snapshot, error) {
	best := r.Best()
	if best == nil {
		return nil, ErrModelUnavailable
	}
	perf := make(map[string]train.Metrics, len(r.Candidates))
	for _, c := range r.Candidates {
		perf[c.Name] = c.Metrics
	}
	return &Snapshot{
		ModelName:   best.Name,
		Model:       best.Model,
		UseScaled:   best.UseScaled,
		Scaler:      r.Scaler,
		Pre:         features.NewPreprocessor(r.Columns, r.Encoders),
		Importance:  best.Importance,
		Performance: perf,
	}, nil
}

// Assessment is the full derived result for one predict call. Transient value
// object, produced fresh per call, never mutated afterwards.
type Assessment struct {
	ID              string                       `json:"id"`
	Timestamp       time.Time                    `json:"timestamp"`
	ModelUsed       string                       `json:"model_used"`
	Prediction      int                          `json:"prediction"`
	Risks           risk.Composition             `json:"cardiovascular_risks"`
	Analysis        explain.Analysis             `json:"risk_factors_analysis"`
	Scenarios       map[string]simulate.Scenario `json:"lifestyle_scenarios"`
	Recommendations []simulate.Recommendation    `json:"recommendations_priority"`
}

// Engine is the serving facade. The current snapshot sits behind a single
// atomically-replaceable reference so a background retrain can publish a new
// model while in-flight predictions keep the one they started with.
type Engine struct {
	current    atomic.Pointer[Snapshot]
	cfg        config.RiskConfig
	compositor *risk.Compositor
	trainer    *train.Trainer
}

// New builds an engine with no model published yet.
func New(cfg config.RiskConfig) *Engine {
	return &Engine{
		cfg:        cfg,
		compositor: risk.NewCompositor(cfg),
		trainer:    train.New(),
	}
}

// Publish atomically swaps in a new snapshot.
func (e *Engine) Publish(s *Snapshot) {
	e.current.Store(s)
	if m, ok := s.Performance[s.ModelName]; ok {
		metrics.BestModelROCAUC.Set(m.ROCAUC)
	}
	log.Info().Str("model", s.ModelName).Msg("model snapshot published")
}

// Snapshot returns the currently published snapshot, nil when none.
func (e *Engine) Snapshot() *Snapshot {
	return e.current.Load()
}

// TrainAndSelect runs the one-shot training pipeline and publishes the
// resulting snapshot.
func (e *Engine) TrainAndSelect(ds *dataset.Dataset) (*train.Result, error) {
	result, err := e.trainer.Train(ds)
	if err != nil {
		metrics.TrainingRunsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	snap, err := SnapshotFromResult(result)
	if err != nil {
		metrics.TrainingRunsTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	e.Publish(snap)
	metrics.TrainingRunsTotal.WithLabelValues("ok").Inc()
	return result, nil
}

// Predict produces a full assessment: base probability, derived risks,
// explanation and counterfactual scenarios. Deterministic for a fixed
// snapshot.
func (e *Engine) Predict(v features.FeatureVector) (*Assessment, error) {
	start := time.Now()
	snap := e.current.Load()
	if snap == nil {
		metrics.PredictionErrors.WithLabelValues("model_unavailable").Inc()
		return nil, ErrModelUnavailable
	}

	// Bind the whole assessment, counterfactuals included, to one snapshot so
	// a concurrent publish cannot mix models mid-call.
	compose := func(in features.FeatureVector) (risk.Composition, error) {
		return e.composeWith(snap, in)
	}

	baseline, err := compose(v)
	if err != nil {
		metrics.PredictionErrors.WithLabelValues("numeric").Inc()
		return nil, err
	}

	sim := simulate.New(compose, e.cfg.Priority)
	scenarios, err := sim.Run(v, baseline)
	if err != nil {
		metrics.PredictionErrors.WithLabelValues("numeric").Inc()
		return nil, err
	}

	prediction := 0
	if baseline.HeartAttack.Probability >= 0.5 {
		prediction = 1
	}

	a := &Assessment{
		ID:              uuid.NewString(),
		Timestamp:       time.Now().UTC(),
		ModelUsed:       snap.ModelName,
		Prediction:      prediction,
		Risks:           baseline,
		Analysis:        explain.Build(v, snap.Pre.Columns, snap.Importance),
		Scenarios:       scenarios,
		Recommendations: sim.Recommendations(scenarios),
	}

	metrics.PredictionsTotal.WithLabelValues(string(baseline.Overall.Level)).Inc()
	metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	return a, nil
}

// composeWith runs preprocess -> model -> compose against a fixed snapshot.
func (e *Engine) composeWith(snap *Snapshot, v features.FeatureVector) (risk.Composition, error) {
	row := snap.Pre.Transform(v)
	if snap.UseScaled {
		row = snap.Scaler.Transform(row)
	}
	base, err := snap.Model.PredictProba(row)
	if err != nil {
		return risk.Composition{}, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	comp, err := e.compositor.Compose(base, v)
	if err != nil {
		// Numeric instability is a model-unavailable condition, never a
		// malformed result.
		return risk.Composition{}, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return comp, nil
}
