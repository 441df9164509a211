package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder collects client-side metrics about calls to the cooperative API.
type Recorder struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
}

func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "milkdesk",
				Name:      "api_requests_total",
				Help:      "Total number of requests sent to the cooperative API",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "milkdesk",
				Name:      "api_request_duration_seconds",
				Help:      "Duration of requests sent to the cooperative API in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "milkdesk",
				Name:      "api_transport_errors_total",
				Help:      "Requests that failed before a response was received",
			},
			[]string{"method", "route"},
		),
	}

	r.registry.MustRegister(r.requests, r.duration, r.failures)
	return r
}

// ObserveRequest records one API round trip. A zero status means no response was received.
func (r *Recorder) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if r == nil {
		return
	}

	r.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
	if status == 0 {
		r.failures.WithLabelValues(method, route).Inc()
		return
	}
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

// WriteTextfile dumps the collected metrics in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
