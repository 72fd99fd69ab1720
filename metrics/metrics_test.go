package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRPCMetricsRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewRPCMetricsWith(reg, "pulse")

	m.RecordRequest("eth_blockNumber", time.Now().Add(-time.Millisecond))
	m.RecordRequestError("eth_call", -32603)
	m.RecordEvent("connect")
	m.RecordEvent("connect")
	m.RecordEvent("message")

	assert.Equal(t, 1, testutil.CollectAndCount(m.RequestDuration))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestErrors.WithLabelValues("eth_call", "-32603")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.Events.WithLabelValues("connect")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Events.WithLabelValues("message")))
}

func TestNopDiscardsEverything(t *testing.T) {
	var m Metrics = NewNop()
	m.RecordRequest("eth_blockNumber", time.Now())
	m.RecordRequestError("eth_call", 4001)
	m.RecordEvent("close")
}
