// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package metrics exposes prometheus collectors for authorization flows and
// data service exchanges.
//
// A [Metrics] value is registered on a caller-supplied registerer so the host
// application decides where (and whether) the collectors are scraped.
package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/MKhiriev/go-consent-sdk/models"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "consent_sdk"

// Metrics holds every collector of the SDK.
type Metrics struct {
	authOutcomes  *prometheus.CounterVec
	authDuration  prometheus.Histogram
	sessions      prometheus.Counter
	fetchDuration *prometheus.HistogramVec
	fetchAttempts *prometheus.CounterVec
	fetchResults  *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		authOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "authorization",
			Name:      "outcomes_total",
			Help:      "Finished authorization flows by terminal state.",
		}, []string{"state"}),
		authDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "authorization",
			Name:      "duration_seconds",
			Help:      "Time from authorization start to terminal state.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "established_total",
			Help:      "Sessions established after a granted authorization.",
		}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "Duration of data service exchanges including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		fetchAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "attempts_total",
			Help:      "Network attempts made against the data service.",
		}, []string{"endpoint"}),
		fetchResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "results_total",
			Help:      "Finished data service exchanges by result.",
		}, []string{"endpoint", "result"}),
	}

	for _, c := range []prometheus.Collector{
		m.authOutcomes, m.authDuration, m.sessions,
		m.fetchDuration, m.fetchAttempts, m.fetchResults,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// AuthorizationCompleted records one finished flow.
func (m *Metrics) AuthorizationCompleted(state models.AuthorizationState, elapsed time.Duration) {
	m.authOutcomes.WithLabelValues(state.String()).Inc()
	m.authDuration.Observe(elapsed.Seconds())
	if state == models.StateAuthorized {
		m.sessions.Inc()
	}
}

// ExchangeCompleted implements the adapter's exchange observer.
func (m *Metrics) ExchangeCompleted(endpoint string, attempts int, elapsed time.Duration, err error) {
	m.fetchDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	if attempts > 0 {
		m.fetchAttempts.WithLabelValues(endpoint).Add(float64(attempts))
	}
	m.fetchResults.WithLabelValues(endpoint, Result(err)).Inc()
}

// Result classifies an exchange error into a low-cardinality label.
func Result(err error) string {
	var serverErr *models.ServerError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, models.ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, models.ErrNetwork):
		return "network"
	case errors.As(err, &serverErr):
		return "http_" + strconv.Itoa(serverErr.Status)
	case errors.Is(err, models.ErrIntegrity):
		return "integrity"
	case errors.Is(err, models.ErrDecryption):
		return "decryption"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}
