package client

import (
	"context"
	"net/http"
	"time"

	"github.com/MKhiriev/go-consent-sdk/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// LaunchFunc opens the companion application with an outbound message, for
// example through an OS URL scheme. An error means the companion is not
// available.
type LaunchFunc func(ctx context.Context, msg models.AppMessage) error

// ConsentHintStore persists the last consent time per contract.
type ConsentHintStore interface {
	SaveHint(ctx context.Context, hint models.ConsentHint) error
	GetHint(ctx context.Context, contractID string) (models.ConsentHint, error)
	ListHints(ctx context.Context) ([]models.ConsentHint, error)
	DeleteHint(ctx context.Context, contractID string) error
}

// Option customises a [Client].
type Option func(o *options)

type options struct {
	logger     *zerolog.Logger
	launch     LaunchFunc
	now        func() time.Time
	hints      ConsentHintStore
	registerer prometheus.Registerer
	httpClient *http.Client
}

// WithLogger routes SDK logs to l. The default discards them.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &l
	}
}

// WithLauncher replaces the HTTP launcher built from Config.CompanionURL.
func WithLauncher(fn LaunchFunc) Option {
	return func(o *options) {
		o.launch = fn
	}
}

// WithClock replaces the wall clock used for session validity.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithConsentHints records a hint in s after every granted authorization.
// It takes precedence over Config.ConsentHintsDSN.
func WithConsentHints(s ConsentHintStore) Option {
	return func(o *options) {
		o.hints = s
	}
}

// WithMetrics registers the SDK collectors on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}

// WithHTTPClient reuses the transport of hc for every outbound request.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}
