package config

import "errors"

// Validation errors returned when required configuration groups are
// incomplete or invalid.
var (
	// ErrInvalidAppConfigs indicates missing host application settings
	// (for example, an empty application id).
	ErrInvalidAppConfigs = errors.New("invalid app configuration")
	// ErrInvalidKeyConfigs indicates missing key material.
	ErrInvalidKeyConfigs = errors.New("invalid key configuration")
	// ErrInvalidAuthConfigs indicates the companion cannot be reached or
	// cannot call back.
	ErrInvalidAuthConfigs = errors.New("invalid auth configuration")
	// ErrInvalidAdapterConfigs indicates invalid data service settings
	// (for example, a missing base url or an inverted retry window).
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configuration")
	// ErrInvalidCompanionConfigs indicates invalid simulator settings.
	ErrInvalidCompanionConfigs = errors.New("invalid companion configuration")
)
