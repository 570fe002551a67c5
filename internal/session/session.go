// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package session owns the current session and its derived key.
//
// A session is replaced wholesale under a lock; readers never observe a
// half-updated session. Invalidation wipes the key in place, so any later use
// of a stale reference fails instead of encrypting with old material.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/MKhiriev/go-consent-sdk/internal/crypto"
	"github.com/MKhiriev/go-consent-sdk/internal/logger"
	"github.com/MKhiriev/go-consent-sdk/models"
)

// ErrNoReauthorizer is returned by Refresh when no re-authorization hook is
// configured.
var ErrNoReauthorizer = errors.New("session refresh is not configured")

// ErrClosed is returned by Refresh when the manager was closed while the
// re-authorization ran.
var ErrClosed = errors.New("session manager is closed")

// Reauthorizer runs a fresh authorization for contractID and scope and
// returns the resulting session and key. Refresh calls it at most once per
// group of concurrent callers.
type Reauthorizer func(ctx context.Context, contractID string, scope models.Scope) (models.Session, *crypto.SessionKey, error)

// Manager tracks the single current session.
type Manager struct {
	mu      sync.RWMutex
	current *models.Session
	key     *crypto.SessionKey
	scope   models.Scope
	closed  bool

	reauth  Reauthorizer
	refresh singleflight.Group
	now     func() time.Time

	logger *logger.Logger
}

// NewManager constructs an empty [Manager]. now may be nil.
func NewManager(reauth Reauthorizer, now func() time.Time, log *logger.Logger) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{reauth: reauth, now: now, logger: log}
}

// Establish replaces the current session. The previous key, if any, is wiped.
// After Close the session is refused, key is wiped instead and Establish
// reports false.
func (m *Manager) Establish(s models.Session, key *crypto.SessionKey, scope models.Scope) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		if key != nil {
			key.Wipe()
		}
		m.logger.Warn().Str("contract_id", s.ContractID).Msg("session refused, manager closed")
		return false
	}
	old := m.key
	m.current = &s
	m.key = key
	m.scope = scope
	m.mu.Unlock()

	if old != nil && old != key {
		old.Wipe()
	}

	m.logger.Info().
		Str("contract_id", s.ContractID).
		Time("expires_at", s.ExpiresAt).
		Msg("session established")
	return true
}

// Current returns a copy of the current session.
func (m *Manager) Current() (models.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return models.Session{}, false
	}
	return *m.current, true
}

// IsValid reports whether a session exists and is inside its validity window.
func (m *Manager) IsValid() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current != nil && m.current.ValidAt(m.now())
}

// Active returns the current session and its key, or
// models.ErrSessionExpired when there is none or it has expired.
func (m *Manager) Active() (models.Session, *crypto.SessionKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.current == nil {
		return models.Session{}, nil, fmt.Errorf("%w: no session", models.ErrSessionExpired)
	}
	if !m.current.ValidAt(m.now()) {
		return models.Session{}, nil, fmt.Errorf("%w: expired at %s", models.ErrSessionExpired, m.current.ExpiresAt.Format(time.RFC3339))
	}
	return *m.current, m.key, nil
}

// Key returns the key of a valid session.
func (m *Manager) Key() (*crypto.SessionKey, error) {
	_, key, err := m.Active()
	return key, err
}

// Refresh obtains a new session for the current contract and scope.
// Concurrent callers share the outcome of a single re-authorization.
func (m *Manager) Refresh(ctx context.Context) (models.Session, error) {
	m.mu.RLock()
	var contractID string
	if m.current != nil {
		contractID = m.current.ContractID
	}
	scope := m.scope
	m.mu.RUnlock()

	if contractID == "" {
		return models.Session{}, fmt.Errorf("%w: nothing to refresh", models.ErrSessionExpired)
	}
	if m.reauth == nil {
		return models.Session{}, ErrNoReauthorizer
	}

	v, err, shared := m.refresh.Do(contractID, func() (any, error) {
		m.logger.Info().Str("contract_id", contractID).Msg("refreshing session")

		s, key, err := m.reauth(ctx, contractID, scope)
		if err != nil {
			return models.Session{}, err
		}
		if !m.Establish(s, key, scope) {
			return models.Session{}, ErrClosed
		}
		return s, nil
	})
	if shared {
		m.logger.Debug().Str("contract_id", contractID).Msg("joined in-flight session refresh")
	}
	if err != nil {
		return models.Session{}, fmt.Errorf("refresh session: %w", err)
	}
	return v.(models.Session), nil
}

// Invalidate drops the current session and wipes its key.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	key := m.key
	had := m.current != nil
	m.current = nil
	m.key = nil
	m.mu.Unlock()

	if key != nil {
		key.Wipe()
	}
	if had {
		m.logger.Info().Msg("session invalidated")
	}
}

// Close invalidates the current session and refuses every later one.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.Invalidate()
}
