// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package appcomm exchanges messages with the companion application.
//
// Outbound launch requests go through a [Launcher] (an OS deep-link hook or
// the HTTP launch endpoint of a companion service). Inbound callbacks arrive
// asynchronously through [Communicator.Deliver] and are matched to the waiting
// flow by correlation ID. A callback for an unknown, cancelled or timed-out
// correlation ID is discarded.
package appcomm

import (
	"context"
	"time"

	"github.com/MKhiriev/go-consent-sdk/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/appcomm_mock.go -package=mock

// Launcher hands an outbound message to the companion application.
// A returned error means the companion could not be reached.
type Launcher interface {
	Launch(ctx context.Context, msg models.AppMessage) error
}

// Communicator correlates outbound launch requests with inbound callbacks.
// It is safe for concurrent use.
type Communicator interface {
	// Send registers msg.CorrelationID as awaiting a callback and launches the
	// companion. Fails with models.ErrCompanionAppUnavailable when the launch
	// fails; the registration is dropped in that case.
	Send(ctx context.Context, msg models.AppMessage) error

	// AwaitCallback blocks until the callback for correlationID arrives,
	// timeout elapses (models.ErrAuthorizationTimedOut), Cancel is called
	// (models.ErrAuthorizationCancelled) or ctx is done.
	AwaitCallback(ctx context.Context, correlationID string, timeout time.Duration) (models.AppMessage, error)

	// Cancel abandons correlationID. A callback arriving later is discarded.
	Cancel(correlationID string)

	// Deliver routes an inbound message to its waiter. It reports false when
	// the message was discarded.
	Deliver(msg models.AppMessage) bool
}
