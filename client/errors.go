package client

import "errors"

var (
	// ErrClosed is returned by every call made after Close.
	ErrClosed = errors.New("client is closed")

	// ErrNoLauncher is returned by New when neither a companion URL nor a
	// launcher option is configured.
	ErrNoLauncher = errors.New("no way to launch the companion application")

	// ErrInvalidConfig wraps every configuration problem reported by New.
	ErrInvalidConfig = errors.New("invalid client configuration")

	// ErrNoConsentHints is returned by ConsentHint when no hint store is
	// configured.
	ErrNoConsentHints = errors.New("consent hints are not configured")

	// ErrConsentHintNotFound is returned by ConsentHint for a contract that
	// was never granted.
	ErrConsentHintNotFound = errors.New("consent hint not found")
)
