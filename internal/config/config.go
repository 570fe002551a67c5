// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container. It aggregates
// all sub-configurations and is populated by merging values from flags,
// environment variables, a .env file and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env:       direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds host application settings.
	App App `envPrefix:"APP_"`

	// Keys holds the encoded key material of both parties.
	Keys Keys `envPrefix:"KEYS_"`

	// Auth holds the authorization handshake settings.
	Auth Auth `envPrefix:"AUTH_"`

	// Adapter holds the data service client settings.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Storage holds the optional consent hint store settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Companion holds settings used only by the companion simulator.
	Companion Companion `envPrefix:"COMPANION_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`

	// DotEnvPath is the optional path to a .env file.
	// Populated via the DOTENV environment variable or the -env-file flag.
	DotEnvPath string `env:"DOTENV"`
}

// App holds host application settings.
type App struct {
	// ID identifies the host application to the companion.
	// Env: APP_ID
	ID string `env:"ID"`

	// LogLevel is parsed by zerolog (e.g. "debug", "info").
	// Env: APP_LOG_LEVEL
	LogLevel string `env:"LOG_LEVEL"`

	// CallbackAddress is the "host:port" the callback receiver listens on.
	// Env: APP_CALLBACK_ADDRESS
	CallbackAddress string `env:"CALLBACK_ADDRESS"`

	// ContractID is the contract the sample host asks consent for.
	// Env: APP_CONTRACT_ID
	ContractID string `env:"CONTRACT_ID"`

	// MetricsAddress is the "host:port" serving /metrics. Empty disables it.
	// Env: APP_METRICS_ADDRESS
	MetricsAddress string `env:"METRICS_ADDRESS"`
}

// Keys holds base64 key material produced by the companion's keygen command.
type Keys struct {
	// ClientKeyPair is the host's private key pair.
	// Env: KEYS_CLIENT_KEY_PAIR
	ClientKeyPair string `env:"CLIENT_KEY_PAIR"`

	// CompanionPublicKey is the companion's public key bundle.
	// Env: KEYS_COMPANION_PUBLIC_KEY
	CompanionPublicKey string `env:"COMPANION_PUBLIC_KEY"`
}

// Auth holds the authorization handshake settings.
type Auth struct {
	// Timeout bounds the wait for the companion's callback.
	// Env: AUTH_TIMEOUT
	Timeout time.Duration `env:"TIMEOUT"`

	// CompanionURL is the companion's launch endpoint base.
	// Env: AUTH_COMPANION_URL
	CompanionURL string `env:"COMPANION_URL"`

	// CallbackURL is the return channel sent to the companion. When empty it
	// is derived from App.CallbackAddress.
	// Env: AUTH_CALLBACK_URL
	CallbackURL string `env:"CALLBACK_URL"`
}

// Adapter holds the data service client settings.
type Adapter struct {
	// BaseURL is the data service address.
	// Env: ADAPTER_BASE_URL
	BaseURL string `env:"BASE_URL"`

	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// MaxRetryAttempts is the total number of tries of a query.
	// Env: ADAPTER_MAX_RETRY_ATTEMPTS
	MaxRetryAttempts int `env:"MAX_RETRY_ATTEMPTS"`

	// Env: ADAPTER_RETRY_WAIT_MIN
	RetryWaitMin time.Duration `env:"RETRY_WAIT_MIN"`

	// Env: ADAPTER_RETRY_WAIT_MAX
	RetryWaitMax time.Duration `env:"RETRY_WAIT_MAX"`

	// FetchConcurrency bounds parallel file downloads.
	// Env: ADAPTER_FETCH_CONCURRENCY
	FetchConcurrency int `env:"FETCH_CONCURRENCY"`
}

// Storage holds the consent hint store settings.
type Storage struct {
	// ConsentHintsDSN is the SQLite DSN of the consent hint store.
	// Env: STORAGE_CONSENT_HINTS_DSN
	ConsentHintsDSN string `env:"CONSENT_HINTS_DSN"`
}

// Companion holds the simulator settings.
type Companion struct {
	// Address is the "host:port" the simulator listens on.
	// Env: COMPANION_ADDRESS
	Address string `env:"ADDRESS"`

	// KeyPair is the simulator's private key pair.
	// Env: COMPANION_KEY_PAIR
	KeyPair string `env:"KEY_PAIR"`

	// Mode is one of approve, deny, ignore, error, unavailable.
	// Env: COMPANION_MODE
	Mode string `env:"MODE"`

	// Env: COMPANION_SESSION_TTL
	SessionTTL time.Duration `env:"SESSION_TTL"`

	// Env: COMPANION_CALLBACK_DELAY
	CallbackDelay time.Duration `env:"CALLBACK_DELAY"`
}

// GetStructuredConfig loads, merges, and validates the configuration from all
// available sources. args are the command-line arguments without the program
// name.
func GetStructuredConfig(args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withFlags(args).
		withEnv().
		withDotEnv().
		withJSON().
		build()
}
