package auth

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-consent-sdk/internal/appcomm"
	"github.com/MKhiriev/go-consent-sdk/internal/crypto"
	"github.com/MKhiriev/go-consent-sdk/internal/logger"
	"github.com/MKhiriev/go-consent-sdk/internal/utils"
	"github.com/MKhiriev/go-consent-sdk/models"
)

// Config carries the settings an authorization flow needs.
type Config struct {
	AppID string
	// ReturnChannel is where the companion sends its callback.
	ReturnChannel string
	// Timeout bounds the wait for the callback.
	Timeout time.Duration
	// CompanionSigningKey verifies the signed session payload.
	CompanionSigningKey ed25519.PublicKey
}

// Option customises a manager.
type Option func(m *manager)

// WithClock replaces the wall clock used for token validation and session
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *manager) {
		m.now = now
	}
}

// WithIDGenerator replaces the correlation ID source.
func WithIDGenerator(ids utils.IDGenerator) Option {
	return func(m *manager) {
		m.ids = ids
	}
}

// OnComplete registers the completion callback. It is called once per flow
// that reached a terminal state, after the state is recorded, and never under
// the manager's lock.
func OnComplete(fn func(Outcome)) Option {
	return func(m *manager) {
		m.onComplete = fn
	}
}

type flow struct {
	req       models.AuthorizationRequest
	cancelled bool
}

type manager struct {
	cfg    Config
	comm   appcomm.Communicator
	crypto crypto.Service
	ids    utils.IDGenerator
	now    func() time.Time

	onComplete func(Outcome)

	mu        sync.Mutex
	live      *flow
	lastState models.AuthorizationState

	logger *logger.Logger
}

// NewManager constructs a [Manager].
func NewManager(cfg Config, comm appcomm.Communicator, cryptoSvc crypto.Service, log *logger.Logger, opts ...Option) Manager {
	m := &manager{
		cfg:       cfg,
		comm:      comm,
		crypto:    cryptoSvc,
		ids:       utils.NewUUIDGenerator(),
		now:       time.Now,
		lastState: models.StateIdle,
		logger:    log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Authorize implements [Manager].
func (m *manager) Authorize(ctx context.Context, contractID string, scope models.Scope) (Outcome, error) {
	if contractID == "" {
		return Outcome{}, errEmptyContractID
	}

	req, err := m.begin(contractID, scope)
	if err != nil {
		return Outcome{}, err
	}
	log := m.logger.ForFlow(req.CorrelationID, req.ContractID)
	log.Info().Msg("authorization started")

	outcome := m.run(utils.WithCorrelationID(ctx, req.CorrelationID), req, log)
	outcome = m.finish(outcome)

	ev := log.Info()
	if outcome.Err != nil {
		ev = log.Warn().Err(outcome.Err)
	}
	ev.Str("state", outcome.State.String()).Msg("authorization finished")

	if m.onComplete != nil {
		m.onComplete(outcome)
	}
	return outcome, outcome.Err
}

func (m *manager) begin(contractID string, scope models.Scope) (models.AuthorizationRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.live != nil {
		return models.AuthorizationRequest{}, fmt.Errorf("%w: %s is %s",
			models.ErrConcurrentAuthorization, m.live.req.CorrelationID, m.live.req.State)
	}

	m.live = &flow{req: models.AuthorizationRequest{
		ContractID:    contractID,
		Scope:         scope,
		CorrelationID: m.ids.Generate(),
		State:         models.StateAwaitingCompanionLaunch,
	}}
	m.lastState = m.live.req.State
	return m.live.req, nil
}

// run drives one flow from launch to its terminal outcome.
func (m *manager) run(ctx context.Context, req models.AuthorizationRequest, log *logger.Logger) Outcome {
	fail := func(state models.AuthorizationState, err error) Outcome {
		return Outcome{Request: req, State: state, Err: err}
	}

	msg, err := models.NewOutboundMessage(models.LaunchRequest{
		Action:          models.ActionAuthorize,
		AppID:           m.cfg.AppID,
		ContractID:      req.ContractID,
		CorrelationID:   req.CorrelationID,
		RequestedScope:  req.Scope,
		ReturnChannel:   m.cfg.ReturnChannel,
		ClientPublicKey: m.crypto.PublicKey().Encode(),
	})
	if err != nil {
		return fail(models.StateFailed, fmt.Errorf("encode launch request: %w", err))
	}

	if err = m.comm.Send(ctx, msg); err != nil {
		if !errors.Is(err, models.ErrCompanionAppUnavailable) {
			err = fmt.Errorf("%w: %v", models.ErrCompanionAppUnavailable, err)
		}
		return fail(models.StateFailed, err)
	}

	if !m.advance(req.CorrelationID, models.StateAwaitingUserConsent) {
		m.comm.Cancel(req.CorrelationID)
		return fail(models.StateCancelled, models.ErrAuthorizationCancelled)
	}
	log.Debug().Msg("companion launched, awaiting user consent")

	if !m.advance(req.CorrelationID, models.StateAwaitingCallback) {
		m.comm.Cancel(req.CorrelationID)
		return fail(models.StateCancelled, models.ErrAuthorizationCancelled)
	}

	reply, err := m.comm.AwaitCallback(ctx, req.CorrelationID, m.cfg.Timeout)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrAuthorizationTimedOut):
		return fail(models.StateTimedOut, err)
	case errors.Is(err, models.ErrAuthorizationCancelled):
		return fail(models.StateCancelled, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fail(models.StateCancelled, fmt.Errorf("%w: %v", models.ErrAuthorizationCancelled, err))
	default:
		return fail(models.StateFailed, err)
	}

	return m.handleCallback(req, reply)
}

// advance moves the live flow to state unless it was cancelled meanwhile.
func (m *manager) advance(correlationID string, state models.AuthorizationState) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.live == nil || m.live.req.CorrelationID != correlationID || m.live.cancelled {
		return false
	}
	m.live.req.State = state
	m.lastState = state
	return true
}

func (m *manager) handleCallback(req models.AuthorizationRequest, reply models.AppMessage) Outcome {
	invalid := func(err error) Outcome {
		return Outcome{Request: req, State: models.StateFailed, Err: fmt.Errorf("%w: %v", models.ErrInvalidCallback, err)}
	}

	cb, err := reply.Callback()
	if err != nil {
		return invalid(err)
	}
	if cb.CorrelationID != req.CorrelationID {
		return invalid(errCorrelationMismatch)
	}

	switch cb.Status {
	case models.CallbackDenied:
		return Outcome{Request: req, State: models.StateDenied, Err: models.ErrUserDenied}
	case models.CallbackError:
		return Outcome{Request: req, State: models.StateFailed, Err: &models.CompanionError{Code: cb.ErrorCode}}
	case models.CallbackGranted:
	default:
		return invalid(fmt.Errorf("%w: %q", errUnknownStatus, cb.Status))
	}

	claims, err := utils.ParseSessionToken(cb.SessionPayload, m.cfg.CompanionSigningKey, m.cfg.AppID, req.CorrelationID, m.now)
	if err != nil {
		return invalid(err)
	}
	if claims.ContractID != req.ContractID {
		return invalid(errContractMismatch)
	}

	peer, err := crypto.ParseAgreementKey(claims.AgreementKey)
	if err != nil {
		return invalid(err)
	}
	key, err := m.crypto.DeriveSharedSecret(peer, claims.SessionKey, req.ContractID)
	if err != nil {
		return invalid(err)
	}

	createdAt := m.now()
	if claims.IssuedAt != nil {
		createdAt = claims.IssuedAt.Time
	}

	return Outcome{
		Request: req,
		State:   models.StateAuthorized,
		Session: models.Session{
			SessionKey: claims.SessionKey,
			ContractID: req.ContractID,
			CreatedAt:  createdAt,
			ExpiresAt:  claims.ExpiresAt.Time,
		},
		Key: key,
	}
}

// finish records the terminal state and drops the live request.
func (m *manager) finish(outcome Outcome) Outcome {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.live != nil && m.live.cancelled && outcome.State == models.StateAuthorized {
		// Cancel won against a granted callback that was already in hand.
		outcome.Key.Wipe()
		outcome = Outcome{Request: outcome.Request, State: models.StateCancelled, Err: models.ErrAuthorizationCancelled}
	}

	outcome.Request.State = outcome.State
	m.lastState = outcome.State
	m.live = nil
	return outcome
}

// Cancel implements [Manager].
func (m *manager) Cancel() bool {
	m.mu.Lock()
	if m.live == nil || m.live.cancelled {
		m.mu.Unlock()
		return false
	}
	m.live.cancelled = true
	id := m.live.req.CorrelationID
	m.mu.Unlock()

	m.logger.Info().Str("correlation_id", id).Msg("authorization cancel requested")
	m.comm.Cancel(id)
	return true
}

// State implements [Manager].
func (m *manager) State() models.AuthorizationState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastState
}

// Current implements [Manager].
func (m *manager) Current() (models.AuthorizationRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.live == nil {
		return models.AuthorizationRequest{}, false
	}
	return m.live.req, true
}
