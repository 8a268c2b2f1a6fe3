package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.EntityUpdateApplied("weiInUpdated")
	m.EntityUpdateApplied("weiInUpdated")
	m.EntityUpdateDropped("graduatedCoin")
	m.SetEntityCount(3)
	m.SetFeedState("connected", []string{"disconnected", "connecting", "connected", "closing"})
	m.FeedReconnectAttempt()
	m.LoaderPage()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.entityUpdates.WithLabelValues("weiInUpdated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.entityDropped.WithLabelValues("graduatedCoin")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.entityCount))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.feedState.WithLabelValues("connected")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.feedState.WithLabelValues("connecting")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.feedReconnects))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loaderPages))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.EntityUpdateApplied("coin")
		m.EntityUpdateDropped("coin")
		m.SetEntityCount(1)
		m.SetFeedState("connected", []string{"connected"})
		m.FeedReconnectAttempt()
		m.FeedMalformedMessage()
		m.LoaderPage()
		m.LoaderFailure()
		m.TradeTransition("buy", "confirmed")
		m.Notification("success")
	})
}
