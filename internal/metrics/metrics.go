// Package metrics defines the Prometheus collectors the server exports.
//
// A nil *Metrics is valid and records nothing, so components can be built
// without a registry in tests.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "swisscoin"

type Metrics struct {
	rpcRequests  *prometheus.CounterVec
	rpcDuration  *prometheus.HistogramVec
	settlements  *prometheus.CounterVec
	balances     *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	charges      *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		rpcRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Connect RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
		rpcDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Connect RPC latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"procedure"}),
		settlements: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settlements_recorded_total",
			Help:      "Payment reconciliation attempts, by outcome.",
		}, []string{"outcome"}),
		balances: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_computations_total",
			Help:      "Balances computed from a fact snapshot, by scope.",
		}, []string{"scope"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_cache_lookups_total",
			Help:      "Balance cache lookups, by result.",
		}, []string{"result"}),
		charges: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscription_charges_total",
			Help:      "Subscription billing attempts, by outcome.",
		}, []string{"outcome"}),
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Settlement counts one reconciliation attempt.
func (m *Metrics) Settlement(outcome string) {
	if m == nil {
		return
	}
	m.settlements.WithLabelValues(outcome).Inc()
}

// BalanceComputed counts one engine evaluation.
func (m *Metrics) BalanceComputed(scope string) {
	if m == nil {
		return
	}
	m.balances.WithLabelValues(scope).Inc()
}

// CacheLookup counts a cache hit, miss or error.
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// Charge counts one subscription billing attempt.
func (m *Metrics) Charge(outcome string) {
	if m == nil {
		return
	}
	m.charges.WithLabelValues(outcome).Inc()
}

// Interceptor returns a Connect interceptor recording request counts and latency.
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if m == nil {
				return next(ctx, req)
			}
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeUnknown.String()
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					code = connectErr.Code().String()
				}
			}
			m.rpcRequests.WithLabelValues(procedure, code).Inc()
			m.rpcDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			return resp, err
		}
	}
}
