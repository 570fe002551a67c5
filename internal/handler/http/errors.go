// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

// Sentinel errors returned while validating an incoming callback. Callers can
// match against them with [errors.Is].
var (
	// ErrMalformedCallback is returned when the body is not a callback object.
	ErrMalformedCallback = errors.New("malformed callback body")

	// ErrNoCorrelationID is returned when the callback does not name the
	// request it answers.
	ErrNoCorrelationID = errors.New("callback has no correlation id")

	// ErrUnknownCallbackStatus is returned for a status other than granted,
	// denied or error.
	ErrUnknownCallbackStatus = errors.New("unknown callback status")

	// ErrNoSessionPayload is returned when a granted callback carries no
	// session payload.
	ErrNoSessionPayload = errors.New("granted callback has no session payload")

	// ErrNoPendingRequest is returned when no authorization is waiting for the
	// callback's correlation id.
	ErrNoPendingRequest = errors.New("no pending request for correlation id")
)
