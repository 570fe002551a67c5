// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package auth drives the consent handshake with the companion application.
//
//	Idle → AwaitingCompanionLaunch → AwaitingUserConsent → AwaitingCallback
//	     → Authorized | Denied | Failed | TimedOut | Cancelled
//
// At most one flow is live at a time. The outcome of every flow is reported
// to a completion callback registered at construction.
package auth

import (
	"context"

	"github.com/MKhiriev/go-consent-sdk/internal/crypto"
	"github.com/MKhiriev/go-consent-sdk/models"
)

// Manager runs authorization flows.
type Manager interface {
	// Authorize runs one flow to a terminal state and returns its outcome.
	// While another flow is live it fails immediately with
	// models.ErrConcurrentAuthorization and changes nothing.
	Authorize(ctx context.Context, contractID string, scope models.Scope) (Outcome, error)

	// Cancel abandons the live flow. It reports false when there is none.
	Cancel() bool

	// State returns the state of the live flow, or the terminal state of the
	// last one.
	State() models.AuthorizationState

	// Current returns the live request, if any.
	Current() (models.AuthorizationRequest, bool)
}

// Outcome is the terminal result of one flow. Session and Key are set only
// when State is models.StateAuthorized; Err is set otherwise.
type Outcome struct {
	Request models.AuthorizationRequest
	State   models.AuthorizationState
	Session models.Session
	Key     *crypto.SessionKey
	Err     error
}
