package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ComparisonsCreated counts persisted comparisons by type
	ComparisonsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comparisons_created_total",
			Help: "Total number of comparisons created",
		},
		[]string{"tipo"},
	)

	// PipelineSteps counts analysis pipeline steps by outcome
	PipelineSteps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_pipeline_steps_total",
			Help: "Total number of analysis pipeline steps executed",
		},
		[]string{"step", "outcome"},
	)

	// EngineCallDuration measures analysis engine call duration
	EngineCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "engine_call_duration_seconds",
			Help: "Analysis engine call duration in seconds",
		},
		[]string{"operation"},
	)

	// EngineTokensUsed counts tokens reported by the AI commentary step
	EngineTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_tokens_used_total",
			Help: "Total AI tokens reported by the analysis engine",
		},
		[]string{"proveedor"},
	)
)

// InitPrometheus registers all application metrics
func InitPrometheus() {
	prometheus.MustRegister(ComparisonsCreated)
	prometheus.MustRegister(PipelineSteps)
	prometheus.MustRegister(EngineCallDuration)
	prometheus.MustRegister(EngineTokensUsed)
}

// Handler returns the Prometheus metrics handler
func Handler() http.Handler {
	return promhttp.Handler()
}
