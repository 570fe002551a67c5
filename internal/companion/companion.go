// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package companion

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-consent-sdk/internal/crypto"
	"github.com/MKhiriev/go-consent-sdk/internal/logger"
	"github.com/MKhiriev/go-consent-sdk/internal/utils"
	"github.com/MKhiriev/go-consent-sdk/internal/validators"
	"github.com/MKhiriev/go-consent-sdk/models"
)

// Mode decides how the simulated user answers a launch request.
type Mode string

const (
	// ModeApprove grants the requested scope.
	ModeApprove Mode = "approve"
	// ModeDeny answers with status denied.
	ModeDeny Mode = "deny"
	// ModeIgnore accepts the launch and never calls back.
	ModeIgnore Mode = "ignore"
	// ModeError answers with status error and Config.ErrorCode.
	ModeError Mode = "error"
	// ModeUnavailable refuses the launch with 503.
	ModeUnavailable Mode = "unavailable"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeApprove, ModeDeny, ModeIgnore, ModeError, ModeUnavailable:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Responder produces the plaintext answer to a query.
type Responder func(q models.Query, scope models.Scope) (any, error)

// Config carries the simulator settings.
type Config struct {
	Keys crypto.KeyPair
	Mode Mode

	// SessionTTL is the lifetime of granted sessions.
	SessionTTL time.Duration
	// CallbackDelay is how long the simulated user takes to decide.
	CallbackDelay time.Duration
	// ErrorCode is reported in ModeError.
	ErrorCode string

	// RejectedSDKVersions are answered with 403 SDKVersionInvalid.
	RejectedSDKVersions []string

	Accounts models.Accounts
	// Files maps file IDs to their plaintext content.
	Files map[string]json.RawMessage
}

type grant struct {
	contractID   string
	scope        models.Scope
	clientSigner []byte
	key          *crypto.SessionKey
	expiresAt    time.Time
}

// Companion is the simulator. It is safe for concurrent use.
type Companion struct {
	cfg       Config
	crypto    crypto.Service
	callbacks *utils.HTTPClient
	respond   Responder
	validator validators.Validator
	now       func() time.Time

	mu       sync.Mutex
	mode     Mode
	sessions map[string]*grant
	dropNext int

	pending sync.WaitGroup
	// stop ends scheduled callbacks; cancelled by Close.
	stop   context.Context
	cancel context.CancelFunc

	logger *logger.Logger
}

// Option customises a [Companion].
type Option func(c *Companion)

// WithResponder replaces the default query responder, which echoes the query.
func WithResponder(fn Responder) Option {
	return func(c *Companion) {
		c.respond = fn
	}
}

// WithClock replaces the wall clock used for session issue and expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Companion) {
		c.now = now
	}
}

// WithCallbackHTTPOptions customises the client that posts callbacks.
func WithCallbackHTTPOptions(opts ...utils.HTTPClientOption) Option {
	return func(c *Companion) {
		c.callbacks = utils.NewHTTPClient(append([]utils.HTTPClientOption{utils.WithTimeout(10 * time.Second)}, opts...)...)
	}
}

// New constructs a [Companion].
func New(cfg Config, log *logger.Logger, opts ...Option) (*Companion, error) {
	if len(cfg.Keys.SigningPrivate) == 0 {
		return nil, ErrNoKeys
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeApprove
	}
	if _, err := ParseMode(string(cfg.Mode)); err != nil {
		return nil, err
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = time.Hour
	}
	if cfg.ErrorCode == "" {
		cfg.ErrorCode = "InternalError"
	}

	c := &Companion{
		cfg:       cfg,
		crypto:    crypto.NewService(cfg.Keys),
		callbacks: utils.NewHTTPClient(utils.WithTimeout(10 * time.Second)),
		respond:   echo,
		validator: validators.NewMessageValidator(),
		now:       time.Now,
		mode:      cfg.Mode,
		sessions:  make(map[string]*grant),
		logger:    log,
	}
	c.stop, c.cancel = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// PublicKey returns the key bundle clients must be configured with.
func (c *Companion) PublicKey() crypto.PublicKey {
	return c.crypto.PublicKey()
}

// SetMode changes how later launch requests are answered.
func (c *Companion) SetMode(m Mode) {
	c.mu.Lock()
	c.mode = m
	c.mu.Unlock()
}

func (c *Companion) currentMode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// DropConnections makes the next n data requests hang up without a response.
func (c *Companion) DropConnections(n int) {
	c.mu.Lock()
	c.dropNext = n
	c.mu.Unlock()
}

func (c *Companion) shouldDrop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dropNext <= 0 {
		return false
	}
	c.dropNext--
	return true
}

// Revoke forgets a session so later requests with it fail.
func (c *Companion) Revoke(sessionID string) {
	c.mu.Lock()
	if g, ok := c.sessions[sessionID]; ok {
		g.key.Wipe()
		delete(c.sessions, sessionID)
	}
	c.mu.Unlock()
}

// Sessions reports how many granted sessions are known.
func (c *Companion) Sessions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// Wait blocks until every scheduled callback was sent or dropped.
func (c *Companion) Wait() {
	c.pending.Wait()
}

// Close drops callbacks still waiting out CallbackDelay, aborts those in
// flight and waits for their goroutines. Launches after Close are not
// answered.
func (c *Companion) Close() {
	c.cancel()
	c.pending.Wait()
}

func echo(q models.Query, _ models.Scope) (any, error) {
	return map[string]any{"kind": q.Kind, "parameters": q.Parameters}, nil
}
