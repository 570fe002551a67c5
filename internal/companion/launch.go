package companion

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/MKhiriev/go-consent-sdk/internal/crypto"
	"github.com/MKhiriev/go-consent-sdk/internal/logger"
	"github.com/MKhiriev/go-consent-sdk/internal/utils"
	"github.com/MKhiriev/go-consent-sdk/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// launch handles POST /v1/launch. The answer is sent asynchronously to the
// request's return channel; the launch itself is acknowledged with 202.
func (c *Companion) launch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var msg models.AppMessage
	if err := utils.DecodeJSON(r, &msg); err != nil {
		c.writeError(w, log, fmt.Errorf("%w: %v", ErrMalformedLaunch, err))
		return
	}
	req, client, err := c.parseLaunch(r.Context(), msg)
	if err != nil {
		c.writeError(w, log, err)
		return
	}
	mode := c.currentMode()
	if mode == ModeUnavailable {
		c.writeError(w, log, ErrUnavailable)
		return
	}

	log.Info().
		Str("correlation_id", req.CorrelationID).
		Str("contract_id", req.ContractID).
		Str("mode", string(mode)).
		Msg("launch accepted")

	c.pending.Add(1)
	go func() {
		defer c.pending.Done()
		if !c.delay(req.CorrelationID) {
			return
		}
		cb, ok, err := c.decide(mode, req, client)
		if err != nil {
			c.logger.Err(err).Str("func", "Companion.launch").Msg("failed to answer launch")
			return
		}
		if ok {
			c.postCallback(req.ReturnChannel, cb)
		}
	}()

	_, _ = utils.WriteJSON(w, map[string]string{"status": "launched"}, http.StatusAccepted)
}

// Answer decides a launch message in-process, for hosts that deliver
// callbacks without HTTP. ok is false when the simulated user never answers.
func (c *Companion) Answer(msg models.AppMessage) (cb models.CallbackMessage, ok bool, err error) {
	req, client, err := c.parseLaunch(context.Background(), msg)
	if err != nil {
		return models.CallbackMessage{}, false, err
	}
	mode := c.currentMode()
	if mode == ModeUnavailable {
		return models.CallbackMessage{}, false, ErrUnavailable
	}
	return c.decide(mode, req, client)
}

func (c *Companion) parseLaunch(ctx context.Context, msg models.AppMessage) (models.LaunchRequest, crypto.PublicKey, error) {
	if msg.Action != models.ActionAuthorize {
		return models.LaunchRequest{}, crypto.PublicKey{}, fmt.Errorf("%w: action %q", ErrMalformedLaunch, msg.Action)
	}
	req, err := msg.LaunchRequest()
	if err != nil {
		return models.LaunchRequest{}, crypto.PublicKey{}, fmt.Errorf("%w: %v", ErrMalformedLaunch, err)
	}
	if err = c.validator.Validate(ctx, req); err != nil {
		return models.LaunchRequest{}, crypto.PublicKey{}, fmt.Errorf("%w: %v", ErrMalformedLaunch, err)
	}
	client, err := crypto.ParsePublicKey(req.ClientPublicKey)
	if err != nil {
		return models.LaunchRequest{}, crypto.PublicKey{}, fmt.Errorf("%w: %v", ErrMalformedLaunch, err)
	}
	return req, client, nil
}

func (c *Companion) decide(mode Mode, req models.LaunchRequest, client crypto.PublicKey) (models.CallbackMessage, bool, error) {
	cb := models.CallbackMessage{CorrelationID: req.CorrelationID}
	switch mode {
	case ModeIgnore:
		return cb, false, nil
	case ModeDeny:
		cb.Status = models.CallbackDenied
		return cb, true, nil
	case ModeError:
		cb.Status = models.CallbackError
		cb.ErrorCode = c.cfg.ErrorCode
		return cb, true, nil
	}

	token, err := c.grant(req, client)
	if err != nil {
		return cb, false, err
	}
	cb.Status = models.CallbackGranted
	cb.SessionPayload = token
	return cb, true, nil
}

// grant opens a session for req and returns the signed session token.
func (c *Companion) grant(req models.LaunchRequest, client crypto.PublicKey) (string, error) {
	ephemeral, err := crypto.GenerateKeyPair()
	if err != nil {
		return "", err
	}
	defer crypto.Zero(ephemeral.AgreementPrivate[:])

	sessionID := uuid.NewString()
	key, err := crypto.DeriveSessionKey(ephemeral.AgreementPrivate, client.Agreement, sessionID, req.ContractID)
	if err != nil {
		return "", fmt.Errorf("derive session key: %w", err)
	}

	now := c.now()
	expiresAt := now.Add(c.cfg.SessionTTL)
	token, err := utils.SignSessionToken(utils.SessionClaims{
		ContractID:   req.ContractID,
		SessionKey:   sessionID,
		AgreementKey: base64.StdEncoding.EncodeToString(ephemeral.AgreementPublic[:]),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   req.CorrelationID,
			Audience:  jwt.ClaimStrings{req.AppID},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}, c.cfg.Keys.SigningPrivate)
	if err != nil {
		key.Wipe()
		return "", err
	}

	c.mu.Lock()
	c.sessions[sessionID] = &grant{
		contractID:   req.ContractID,
		scope:        req.RequestedScope,
		clientSigner: client.Signing,
		key:          key,
		expiresAt:    expiresAt,
	}
	c.mu.Unlock()

	c.logger.Info().
		Str("contract_id", req.ContractID).
		Time("expires_at", expiresAt).
		Msg("session granted")
	return token, nil
}

// delay waits out CallbackDelay. It reports false when Close came first.
func (c *Companion) delay(correlationID string) bool {
	if c.cfg.CallbackDelay > 0 {
		t := time.NewTimer(c.cfg.CallbackDelay)
		defer t.Stop()
		select {
		case <-t.C:
		case <-c.stop.Done():
		}
	}
	if c.stop.Err() != nil {
		c.logger.Info().Str("correlation_id", correlationID).Msg("callback dropped, companion closed")
		return false
	}
	return true
}

func (c *Companion) postCallback(returnChannel string, cb models.CallbackMessage) {
	resp, err := c.callbacks.R().
		SetContext(c.stop).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Correlation-ID", cb.CorrelationID).
		SetBody(cb).
		Post(returnChannel)
	if err != nil {
		c.logger.Err(err).
			Str("func", "Companion.postCallback").
			Str("correlation_id", cb.CorrelationID).
			Msg("callback not delivered")
		return
	}
	c.logger.Info().
		Str("correlation_id", cb.CorrelationID).
		Str("status", cb.Status).
		Int("http_status", resp.StatusCode()).
		Msg("callback posted")
}
