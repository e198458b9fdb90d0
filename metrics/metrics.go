// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "goosetap"

// Metrics owns a private registry so tests can build independent instances.
// All methods are safe on a nil *Metrics.
type Metrics struct {
	registry        *prometheus.Registry
	taps            *prometheus.CounterVec
	rateLimited     prometheus.Counter
	roundsCreated   prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		taps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "taps_total",
			Help:      "Tap ingestion attempts by outcome.",
		}, []string{"outcome"}),
		rateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "taps_rate_limited_total",
			Help:      "Taps rejected by the per-participant rate limiter.",
		}),
		roundsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_created_total",
			Help:      "Rounds created.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "code"}),
	}
	reg.MustRegister(m.taps, m.rateLimited, m.roundsCreated, m.requestDuration)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// TapProcessed counts one ingestion attempt.
func (m *Metrics) TapProcessed(outcome string) {
	if m == nil {
		return
	}
	m.taps.WithLabelValues(outcome).Inc()
}

// TapRateLimited counts one rejected tap.
func (m *Metrics) TapRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}

func (m *Metrics) RoundCreated() {
	if m == nil {
		return
	}
	m.roundsCreated.Inc()
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, strconv.Itoa(code)).Observe(d.Seconds())
}
