package companion

import "errors"

var (
	ErrUnknownMode      = errors.New("unknown companion mode")
	ErrNoKeys           = errors.New("companion keys are not configured")
	ErrMalformedLaunch  = errors.New("malformed launch request")
	ErrUnavailable      = errors.New("companion is unavailable")
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionExpired   = errors.New("session expired")
	ErrInvalidPayload   = errors.New("request payload rejected")
	ErrSDKVersion       = errors.New("sdk version is not supported")
	ErrScopeOutOfBounds = errors.New("query is outside the granted scope")
	ErrFileNotFound     = errors.New("file not found")
)
