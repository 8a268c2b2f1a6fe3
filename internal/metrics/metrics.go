package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pump"

// Metrics holds the Prometheus collectors of the client.
// All methods are safe to call on a nil *Metrics, which disables recording.
type Metrics struct {
	entityUpdates   *prometheus.CounterVec
	entityDropped   *prometheus.CounterVec
	entityCount     prometheus.Gauge
	feedState       *prometheus.GaugeVec
	feedReconnects  prometheus.Counter
	feedMalformed   prometheus.Counter
	loaderPages     prometheus.Counter
	loaderFailures  prometheus.Counter
	tradeTransition *prometheus.CounterVec
	notifications   *prometheus.CounterVec
}

// New creates the collectors and registers them on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		entityUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entity_updates_applied_total",
			Help:      "Coin updates applied to the entity store by type",
		}, []string{"type"}),
		entityDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entity_updates_dropped_total",
			Help:      "Partial coin updates dropped because the coin was not loaded yet",
		}, []string{"type"}),
		entityCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entity_coins",
			Help:      "Number of coins held by the entity store",
		}),
		feedState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_state",
			Help:      "Current live feed state, 1 for the active state",
		}, []string{"state"}),
		feedReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_reconnect_attempts_total",
			Help:      "Live feed reconnect attempts",
		}),
		feedMalformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_malformed_messages_total",
			Help:      "Live feed messages dropped because they could not be decoded",
		}),
		loaderPages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loader_pages_total",
			Help:      "Coin pages fetched by the bulk loader",
		}),
		loaderFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loader_failures_total",
			Help:      "Bulk loads aborted by a page failure",
		}),
		tradeTransition: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trade_transitions_total",
			Help:      "Trade state machine transitions by side and target phase",
		}, []string{"side", "phase"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "User-facing notifications by kind",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		m.entityUpdates,
		m.entityDropped,
		m.entityCount,
		m.feedState,
		m.feedReconnects,
		m.feedMalformed,
		m.loaderPages,
		m.loaderFailures,
		m.tradeTransition,
		m.notifications,
	)

	return m
}

func (m *Metrics) EntityUpdateApplied(updateType string) {
	if m == nil {
		return
	}
	m.entityUpdates.WithLabelValues(updateType).Inc()
}

func (m *Metrics) EntityUpdateDropped(updateType string) {
	if m == nil {
		return
	}
	m.entityDropped.WithLabelValues(updateType).Inc()
}

func (m *Metrics) SetEntityCount(n int) {
	if m == nil {
		return
	}
	m.entityCount.Set(float64(n))
}

// SetFeedState marks state as the active feed state and clears the others
func (m *Metrics) SetFeedState(state string, all []string) {
	if m == nil {
		return
	}
	for _, s := range all {
		v := 0.0
		if s == state {
			v = 1
		}
		m.feedState.WithLabelValues(s).Set(v)
	}
}

func (m *Metrics) FeedReconnectAttempt() {
	if m == nil {
		return
	}
	m.feedReconnects.Inc()
}

func (m *Metrics) FeedMalformedMessage() {
	if m == nil {
		return
	}
	m.feedMalformed.Inc()
}

func (m *Metrics) LoaderPage() {
	if m == nil {
		return
	}
	m.loaderPages.Inc()
}

func (m *Metrics) LoaderFailure() {
	if m == nil {
		return
	}
	m.loaderFailures.Inc()
}

func (m *Metrics) TradeTransition(side, phase string) {
	if m == nil {
		return
	}
	m.tradeTransition.WithLabelValues(side, phase).Inc()
}

func (m *Metrics) Notification(kind string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(kind).Inc()
}
