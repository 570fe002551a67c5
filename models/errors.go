// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by every layer of the SDK. Callers should match them
// with [errors.Is]; typed errors ([ServerError], [CompanionError]) are matched
// with [errors.As].
var (
	// ErrCompanionAppUnavailable is returned when the companion application
	// cannot be launched (not installed, not reachable, or refused the launch).
	ErrCompanionAppUnavailable = errors.New("companion application unavailable")

	// ErrUserDenied is returned when the user declined the requested contract
	// scope in the companion application.
	ErrUserDenied = errors.New("user denied consent")

	// ErrAuthorizationTimedOut is returned when no callback arrived for the
	// authorization request within the configured window.
	ErrAuthorizationTimedOut = errors.New("authorization timed out")

	// ErrAuthorizationCancelled is returned when the caller cancelled an
	// in-flight authorization before a callback arrived.
	ErrAuthorizationCancelled = errors.New("authorization cancelled")

	// ErrInvalidCallback is returned when the callback payload is malformed or
	// its signature cannot be verified against the companion key.
	ErrInvalidCallback = errors.New("invalid callback")

	// ErrConcurrentAuthorization is returned by Authorize while another
	// authorization flow is still in a non-terminal state.
	ErrConcurrentAuthorization = errors.New("authorization already in progress")

	// ErrSessionExpired is returned when there is no session or the current
	// session is outside its validity window.
	ErrSessionExpired = errors.New("session expired")

	// ErrIntegrity is returned when a signature does not match the payload.
	// The ciphertext is never decoded in that case.
	ErrIntegrity = errors.New("payload integrity check failed")

	// ErrDecryption is returned when a verified payload cannot be decrypted
	// (wrong key, malformed framing, truncated stream).
	ErrDecryption = errors.New("payload decryption failed")

	// ErrNetwork is returned once every allowed network attempt has failed.
	ErrNetwork = errors.New("network error")

	// ErrInvalidSDKVersion is matched by a [ServerError] the server reported as
	// SDKVersionInvalid.
	ErrInvalidSDKVersion = errors.New("sdk version is not supported")

	// ErrScopeOutOfBounds is matched by a [ServerError] the server reported as
	// ScopeOutOfBounds.
	ErrScopeOutOfBounds = errors.New("requested scope is out of contract bounds")
)

// ServerError is a non-2xx response from the data service. It is never
// retried.
type ServerError struct {
	Status  int
	Code    string
	Message string
}

func (e *ServerError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server error: http %d", e.Status)
	}
	return fmt.Sprintf("server error: http %d, code %s: %s", e.Status, e.Code, e.Message)
}

// Is lets the two well-known server codes match their sentinel values.
func (e *ServerError) Is(target error) bool {
	switch target {
	case ErrInvalidSDKVersion:
		return e.Status == 403 && e.Code == "SDKVersionInvalid"
	case ErrScopeOutOfBounds:
		return e.Status == 400 && e.Code == "ScopeOutOfBounds"
	}
	return false
}

// CompanionError is reported when the companion application answered the
// authorization request with status "error".
type CompanionError struct {
	Code string
}

func (e *CompanionError) Error() string {
	return "companion reported error: " + e.Code
}
