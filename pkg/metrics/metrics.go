package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/joripage/limit-orderbook/pkg/orderbook"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orderbook"

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	OrdersSubmitted  *prometheus.CounterVec
	OrdersRejected   *prometheus.CounterVec
	Trades           *prometheus.CounterVec
	TradedQuantity   *prometheus.CounterVec
	MatchDuration    prometheus.Histogram
	PublisherDropped prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		OrdersSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_submitted_total",
			Help:      "Accepted limit orders.",
		}, []string{"pair", "side"}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Limit orders rejected by validation.",
		}, []string{"reason"}),
		Trades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trades_total",
			Help:      "Executed trades.",
		}, []string{"pair"}),
		TradedQuantity: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "traded_quantity_total",
			Help:      "Executed base quantity.",
		}, []string{"pair"}),
		MatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_duration_seconds",
			Help:      "Time spent submitting an order to its book.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		PublisherDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publisher_dropped_total",
			Help:      "Trade batches dropped because the publisher queue was full.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.OrdersSubmitted,
		m.OrdersRejected,
		m.Trades,
		m.TradedQuantity,
		m.MatchDuration,
		m.PublisherDropped,
	)

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveTrades is registered as a book trade callback.
func (m *Metrics) ObserveTrades(trades []orderbook.Trade) {
	for _, t := range trades {
		m.Trades.WithLabelValues(t.CurrencyPair).Inc()
		m.TradedQuantity.WithLabelValues(t.CurrencyPair).Add(t.Quantity.InexactFloat64())
	}
}

func (m *Metrics) ObserveSubmitted(pair string, side orderbook.Side, took time.Duration) {
	m.OrdersSubmitted.WithLabelValues(pair, string(side)).Inc()
	m.MatchDuration.Observe(took.Seconds())
}

func (m *Metrics) ObserveRejected(err error) {
	m.OrdersRejected.WithLabelValues(RejectReason(err)).Inc()
}

// RejectReason maps a submission error to a low-cardinality label.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, orderbook.ErrInvalidSide):
		return "side"
	case errors.Is(err, orderbook.ErrInvalidQuantity):
		return "quantity"
	case errors.Is(err, orderbook.ErrInvalidPrice):
		return "price"
	case errors.Is(err, orderbook.ErrUnsupportedPair):
		return "pair"
	case errors.Is(err, orderbook.ErrInvalidOrder):
		return "invalid"
	}
	return "request"
}
