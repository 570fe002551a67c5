package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MKhiriev/go-consent-sdk/internal/adapter"
	"github.com/MKhiriev/go-consent-sdk/internal/appcomm"
	"github.com/MKhiriev/go-consent-sdk/internal/auth"
	"github.com/MKhiriev/go-consent-sdk/internal/crypto"
	handler "github.com/MKhiriev/go-consent-sdk/internal/handler/http"
	"github.com/MKhiriev/go-consent-sdk/internal/logger"
	"github.com/MKhiriev/go-consent-sdk/internal/metrics"
	"github.com/MKhiriev/go-consent-sdk/internal/session"
	"github.com/MKhiriev/go-consent-sdk/internal/store"
	"github.com/MKhiriev/go-consent-sdk/internal/utils"
	"github.com/MKhiriev/go-consent-sdk/models"
)

// Client owns every component of the SDK. It is safe for concurrent use.
type Client struct {
	cfg Config

	crypto    crypto.Service
	comm      appcomm.Communicator
	auth      auth.Manager
	sessions  *session.Manager
	api       adapter.APIClient
	callbacks http.Handler

	hints    ConsentHintStore
	storages *store.Storages
	metrics  *metrics.Metrics

	now    func() time.Time
	logger *logger.Logger

	closed atomic.Bool
	async  sync.WaitGroup
}

// New validates cfg, applies defaults and wires the components.
func New(cfg Config, opts ...Option) (*Client, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	log := logger.Nop()
	if o.logger != nil {
		log = &logger.Logger{Logger: o.logger.With().Str("role", "consent-sdk").Logger()}
	}
	now := o.now
	if now == nil {
		now = time.Now
	}

	keys, err := crypto.ParseKeyPair(cfg.ClientKeyPair)
	if err != nil {
		return nil, fmt.Errorf("%w: client key pair: %v", ErrInvalidConfig, err)
	}
	companion, err := crypto.ParsePublicKey(cfg.CompanionPublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: companion public key: %v", ErrInvalidConfig, err)
	}

	var httpOpts []utils.HTTPClientOption
	if o.httpClient != nil {
		httpOpts = append(httpOpts, utils.WithTransportOf(o.httpClient))
	}

	c := &Client{
		cfg:    cfg,
		crypto: crypto.NewService(keys),
		now:    now,
		logger: log,
	}

	launcher, err := newLauncher(cfg, o, log, httpOpts)
	if err != nil {
		return nil, err
	}
	c.comm = appcomm.NewCommunicator(launcher, log)
	c.callbacks = handler.NewHandler(c.comm, log).Init()

	c.auth = auth.NewManager(auth.Config{
		AppID:               cfg.AppID,
		ReturnChannel:       cfg.CallbackURL,
		Timeout:             cfg.AuthorizationTimeout,
		CompanionSigningKey: companion.Signing,
	}, c.comm, c.crypto, log,
		auth.WithClock(now),
		auth.OnComplete(c.onAuthorizationComplete),
	)

	c.sessions = session.NewManager(c.reauthorize, now, log)

	if o.registerer != nil {
		if c.metrics, err = metrics.New(o.registerer); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	apiOpts := []adapter.Option{adapter.WithHTTPOptions(httpOpts...)}
	if c.metrics != nil {
		apiOpts = append(apiOpts, adapter.WithObserver(c.metrics))
	}
	c.api, err = adapter.NewHTTPAPIClient(adapter.Config{
		BaseURL:             cfg.BaseURL,
		RequestTimeout:      cfg.RequestTimeout,
		MaxRetryAttempts:    cfg.MaxRetryAttempts,
		RetryWaitMin:        cfg.RetryWaitMin,
		RetryWaitMax:        cfg.RetryWaitMax,
		CompanionSigningKey: companion.Signing,
		SDK:                 cfg.SDK,
	}, c.sessions, c.crypto, log, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	c.hints = o.hints
	if c.hints == nil && cfg.ConsentHintsDSN != "" {
		c.storages, err = store.NewStorages(context.Background(), cfg.ConsentHintsDSN, log)
		if err != nil {
			return nil, fmt.Errorf("open consent hints: %w", err)
		}
		c.hints = c.storages.ConsentHints
	}

	log.Info().
		Str("app_id", cfg.AppID).
		Str("sdk_version", cfg.SDK.Version()).
		Msg("consent client created")
	return c, nil
}

func newLauncher(cfg Config, o *options, log *logger.Logger, httpOpts []utils.HTTPClientOption) (appcomm.Launcher, error) {
	if o.launch != nil {
		return appcomm.LauncherFunc(o.launch), nil
	}
	if cfg.CompanionURL == "" {
		return nil, ErrNoLauncher
	}
	l, err := appcomm.NewHTTPLauncher(cfg.CompanionURL, cfg.RequestTimeout, log, httpOpts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return l, nil
}

// Session returns the current session, which may already be expired.
func (c *Client) Session() (models.Session, bool) {
	return c.sessions.Current()
}

// SessionValid reports whether a session exists and has not expired.
func (c *Client) SessionValid() bool {
	return c.sessions.IsValid()
}

// RefreshSession runs a new authorization for the current session's contract
// and scope. Concurrent callers share one authorization.
func (c *Client) RefreshSession(ctx context.Context) (models.Session, error) {
	if c.closed.Load() {
		return models.Session{}, ErrClosed
	}
	return c.sessions.Refresh(ctx)
}

// Invalidate drops the session and wipes its key.
func (c *Client) Invalidate() {
	c.sessions.Invalidate()
}

// CallbackHandler serves POST /v1/callback for companion callbacks.
func (c *Client) CallbackHandler() http.Handler {
	return c.callbacks
}

// DeliverCallback hands a callback received outside HTTP (for example an OS
// URL hook) to the waiting authorization. It reports whether one was waiting.
func (c *Client) DeliverCallback(cb models.CallbackMessage) bool {
	msg, err := models.NewInboundMessage(cb)
	if err != nil {
		c.logger.Err(err).Str("func", "Client.DeliverCallback").Msg("failed to wrap callback")
		return false
	}
	return c.comm.Deliver(msg)
}

// ConsentHint returns when contractID was last granted.
func (c *Client) ConsentHint(ctx context.Context, contractID string) (models.ConsentHint, error) {
	if c.hints == nil {
		return models.ConsentHint{}, ErrNoConsentHints
	}
	hint, err := c.hints.GetHint(ctx, contractID)
	if errors.Is(err, store.ErrHintNotFound) {
		return models.ConsentHint{}, fmt.Errorf("%w: %s", ErrConsentHintNotFound, contractID)
	}
	return hint, err
}

// Close cancels a live authorization, waits for AuthorizeAsync goroutines,
// wipes the session key and closes the hint store opened by New. It is safe
// to call more than once.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	c.auth.Cancel()
	c.async.Wait()
	c.sessions.Close()

	if c.storages != nil {
		if err := c.storages.Close(); err != nil {
			return fmt.Errorf("close consent hints: %w", err)
		}
	}
	c.logger.Info().Msg("consent client closed")
	return nil
}
