// Package metrics collects provider instrumentation: request timings, error
// counts and event emissions.
package metrics

import (
	"strconv"
	"time"

	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records provider activity.
type Metrics interface {
	// RecordRequest records one settled request and its duration.
	RecordRequest(method string, start time.Time)

	// RecordRequestError counts a rejected request by normalized error code.
	RecordRequestError(method string, code int)

	// RecordEvent counts one event emission by event name.
	RecordEvent(event string)
}

// DurationBucketsMicroseconds spans in-process rejections up to slow network
// calls.
var DurationBucketsMicroseconds = []float64{1, 10, 50, 100, 500, 1000, 5000, 10000, 100000, 1000000, 5000000}

// RPCMetrics is a prometheus-backed Metrics.
type RPCMetrics struct {
	RequestDuration *stdprometheus.HistogramVec
	RequestErrors   *stdprometheus.CounterVec
	Events          *stdprometheus.CounterVec
}

// NewRPCMetrics registers collectors under the given namespace with the
// default registerer.
func NewRPCMetrics(namespace string) *RPCMetrics {
	return NewRPCMetricsWith(stdprometheus.DefaultRegisterer, namespace)
}

// NewRPCMetricsWith registers collectors with reg.
func NewRPCMetricsWith(reg stdprometheus.Registerer, namespace string) *RPCMetrics {
	factory := promauto.With(reg)
	return &RPCMetrics{
		RequestDuration: factory.NewHistogramVec(stdprometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "request_duration_microseconds",
			Help:      "Duration of each provider request in microseconds.",
			Buckets:   DurationBucketsMicroseconds,
		}, []string{
			"method",
		}),
		RequestErrors: factory.NewCounterVec(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "request_errors_total",
			Help:      "Rejected provider requests by method and normalized error code.",
		}, []string{
			"method", "code",
		}),
		Events: factory.NewCounterVec(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "provider",
			Name:      "events_total",
			Help:      "Provider event emissions by event name.",
		}, []string{
			"event",
		}),
	}
}

func (m *RPCMetrics) RecordRequest(method string, start time.Time) {
	m.RequestDuration.WithLabelValues(method).Observe(float64(time.Since(start).Microseconds()))
}

func (m *RPCMetrics) RecordRequestError(method string, code int) {
	m.RequestErrors.WithLabelValues(method, strconv.Itoa(code)).Inc()
}

func (m *RPCMetrics) RecordEvent(event string) {
	m.Events.WithLabelValues(event).Inc()
}

// Nop discards all measurements.
type Nop struct{}

// NewNop returns a Metrics that records nothing.
func NewNop() *Nop { return &Nop{} }

func (*Nop) RecordRequest(string, time.Time) {}
func (*Nop) RecordRequestError(string, int)  {}
func (*Nop) RecordEvent(string)              {}
