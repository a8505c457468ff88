package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	requestsTotal   *prometheus.CounterVec
	tokensTotal     *prometheus.CounterVec
	costsTotal      *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

//nolint:gochecknoglobals // promauto registers collectors globally, so the recorder is a singleton
var (
	promRecorder     *PrometheusRecorder
	promRecorderOnce sync.Once
)

// NewPrometheusRecorder returns the process-wide Prometheus recorder.
func NewPrometheusRecorder() *PrometheusRecorder {
	promRecorderOnce.Do(func() {
		promRecorder = &PrometheusRecorder{
			requestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "llm_requests_total",
					Help: "Total number of LLM requests by model, provider, agent, workflow, and status",
				},
				[]string{"model", "provider", "agent_id", "workflow_id", "status", "reason"},
			),
			tokensTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "llm_tokens_total",
					Help: "Total number of tokens used in LLM requests",
				},
				[]string{"model", "provider", "agent_id", "workflow_id", "type"},
			),
			costsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "llm_costs_total",
					Help: "Total cost in USD for LLM requests",
				},
				[]string{"model", "provider", "agent_id", "workflow_id"},
			),
			requestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "llm_request_duration_seconds",
					Help:    "Duration of LLM requests in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"model", "provider", "agent_id", "workflow_id"},
			),
		}
	})
	return promRecorder
}

// ObserveRequest records metrics for a completed LLM request.
func (p *PrometheusRecorder) ObserveRequest(
	model, provider, agentID, workflowID string,
	promptTokens, completionTokens int,
	cost float64,
	success bool,
	reason string,
	duration time.Duration,
) {
	status := "success"
	if !success {
		status = "error"
	}

	p.requestsTotal.WithLabelValues(model, provider, agentID, workflowID, status, reason).Inc()

	if success {
		p.tokensTotal.WithLabelValues(model, provider, agentID, workflowID, "prompt").Add(float64(promptTokens))
		p.tokensTotal.WithLabelValues(model, provider, agentID, workflowID, "completion").Add(float64(completionTokens))
		p.costsTotal.WithLabelValues(model, provider, agentID, workflowID).Add(cost)
	}

	p.requestDuration.WithLabelValues(model, provider, agentID, workflowID).Observe(duration.Seconds())
}
