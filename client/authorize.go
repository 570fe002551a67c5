package client

import (
	"context"
	"time"

	"github.com/MKhiriev/go-consent-sdk/internal/auth"
	"github.com/MKhiriev/go-consent-sdk/internal/crypto"
	"github.com/MKhiriev/go-consent-sdk/models"
)

// AuthorizationOutcome is the terminal result of one authorization flow.
// Session is set only when State is models.StateAuthorized.
type AuthorizationOutcome struct {
	State         models.AuthorizationState
	Session       *models.Session
	CorrelationID string
}

// AuthorizationResult is delivered by AuthorizeAsync.
type AuthorizationResult struct {
	Outcome AuthorizationOutcome
	Err     error
}

// Authorize asks the companion for consent to contractID with scope and waits
// for a terminal state. On success the new session replaces the current one
// and the previous session key is wiped.
//
// The returned error is one of the models sentinels: ErrUserDenied,
// ErrAuthorizationTimedOut, ErrAuthorizationCancelled,
// ErrCompanionAppUnavailable, ErrInvalidCallback, ErrConcurrentAuthorization,
// or a *models.CompanionError.
func (c *Client) Authorize(ctx context.Context, contractID string, scope models.Scope) (AuthorizationOutcome, error) {
	if c.closed.Load() {
		return AuthorizationOutcome{}, ErrClosed
	}

	out, err := c.authorize(ctx, contractID, scope)
	return toOutcome(out), err
}

// authorize runs one flow and records its outcome. A grant that lands after
// Close is reported as ErrClosed; the session manager has already wiped its
// key.
func (c *Client) authorize(ctx context.Context, contractID string, scope models.Scope) (auth.Outcome, error) {
	start := c.now()
	out, err := c.auth.Authorize(ctx, contractID, scope)
	if c.metrics != nil && out.State.Terminal() {
		c.metrics.AuthorizationCompleted(out.State, c.now().Sub(start))
	}
	if err == nil && c.closed.Load() {
		return auth.Outcome{Request: out.Request, State: models.StateCancelled}, ErrClosed
	}
	return out, err
}

// AuthorizeAsync runs Authorize in a goroutine. The channel receives exactly
// one result and is never closed by a later call.
func (c *Client) AuthorizeAsync(ctx context.Context, contractID string, scope models.Scope) <-chan AuthorizationResult {
	results := make(chan AuthorizationResult, 1)
	if c.closed.Load() {
		results <- AuthorizationResult{Err: ErrClosed}
		return results
	}

	c.async.Add(1)
	go func() {
		defer c.async.Done()
		out, err := c.Authorize(ctx, contractID, scope)
		results <- AuthorizationResult{Outcome: out, Err: err}
	}()
	return results
}

// CancelAuthorization abandons the live authorization. It reports false when
// none is in progress.
func (c *Client) CancelAuthorization() bool {
	return c.auth.Cancel()
}

// AuthorizationState returns the state of the live flow, or the terminal
// state of the last one.
func (c *Client) AuthorizationState() models.AuthorizationState {
	return c.auth.State()
}

func toOutcome(out auth.Outcome) AuthorizationOutcome {
	res := AuthorizationOutcome{
		State:         out.State,
		CorrelationID: out.Request.CorrelationID,
	}
	if out.State == models.StateAuthorized {
		s := out.Session
		res.Session = &s
	}
	return res
}

// reauthorize backs session refresh with a new authorization flow.
func (c *Client) reauthorize(ctx context.Context, contractID string, scope models.Scope) (models.Session, *crypto.SessionKey, error) {
	out, err := c.authorize(ctx, contractID, scope)
	if err != nil {
		return models.Session{}, nil, err
	}
	return out.Session, out.Key, nil
}

// onAuthorizationComplete installs a granted session and records the consent
// hint. It runs for flows started by Authorize and by session refresh alike.
// After Close the session manager refuses the session.
func (c *Client) onAuthorizationComplete(out auth.Outcome) {
	if out.State != models.StateAuthorized {
		return
	}
	if !c.sessions.Establish(out.Session, out.Key, out.Request.Scope) || c.hints == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	hint := models.ConsentHint{ContractID: out.Request.ContractID, LastConsentAt: out.Session.CreatedAt}
	if err := c.hints.SaveHint(ctx, hint); err != nil {
		c.logger.Err(err).
			Str("func", "Client.onAuthorizationComplete").
			Str("contract_id", hint.ContractID).
			Msg("failed to save consent hint")
	}
}
