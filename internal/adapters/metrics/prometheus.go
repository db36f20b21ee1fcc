// Package metrics exports pipeline counters to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/ahamitd/notifyai/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "notifyai"

type Recorder struct {
	registry         *prometheus.Registry
	providerRequests *prometheus.CounterVec
	providerDuration *prometheus.HistogramVec
	deliveries       *prometheus.CounterVec
	ttsAttempts      *prometheus.CounterVec
}

var _ ports.Metrics = (*Recorder)(nil)

// NewRecorder registers the collectors on a private registry so that tests
// and multiple servers in one process do not collide.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		providerRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provider_requests_total",
				Help:      "Total number of provider API calls",
			},
			[]string{"provider", "model", "status"},
		),
		providerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "provider_request_duration_seconds",
				Help:      "Duration of provider API calls in seconds",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"provider", "model"},
		),
		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deliveries_total",
				Help:      "Total number of notification deliveries by target namespace",
			},
			[]string{"namespace", "status"},
		),
		ttsAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tts_attempts_total",
				Help:      "Total number of text-to-speech attempts by call shape",
			},
			[]string{"stage", "status"},
		),
	}

	r.registry.MustRegister(r.providerRequests, r.providerDuration, r.deliveries, r.ttsAttempts)
	return r
}

func (r *Recorder) ProviderCall(provider, model, status string, elapsed time.Duration) {
	r.providerRequests.WithLabelValues(provider, model, status).Inc()
	r.providerDuration.WithLabelValues(provider, model).Observe(elapsed.Seconds())
}

func (r *Recorder) Delivery(namespace, status string) {
	r.deliveries.WithLabelValues(namespace, status).Inc()
}

func (r *Recorder) TTSAttempt(stage, status string) {
	r.ttsAttempts.WithLabelValues(stage, status).Inc()
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
