package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors for the serving engine. Registered on the default registry and
// exposed by the ops server.
var (
	PredictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardiorun_predictions_total",
		Help: "Completed risk assessments by overall risk level.",
	}, []string{"risk_level"})

	PredictionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardiorun_prediction_errors_total",
		Help: "Failed risk assessments by reason.",
	}, []string{"reason"})

	PredictionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cardiorun_prediction_duration_seconds",
		Help:    "Latency of one full assessment including counterfactuals.",
		Buckets: prometheus.DefBuckets,
	})

	TrainingRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardiorun_training_runs_total",
		Help: "Training runs by outcome.",
	}, []string{"status"})

	BestModelROCAUC = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cardiorun_best_model_roc_auc",
		Help: "Held-out ROC-AUC of the currently published model.",
	})
)
