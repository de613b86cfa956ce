package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// analysisOutcomes counts terminal states of the analysis pipeline.
	analysisOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_outcomes_total",
			Help: "Analysis runs by terminal outcome.",
		},
		[]string{"outcome"},
	)

	// completionCalls counts provider calls by transport result (ok|error).
	completionCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_completion_calls_total",
			Help: "Completion provider calls made by the analysis pipeline.",
		},
		[]string{"result"},
	)

	// validationFailures counts schema rejections by attempt (first|retry).
	validationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_validation_failures_total",
			Help: "Model responses rejected by schema validation.",
		},
		[]string{"schema", "attempt"},
	)
)

func init() {
	prometheus.MustRegister(analysisOutcomes, completionCalls, validationFailures)
}
