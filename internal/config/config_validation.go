// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import "fmt"

// validate checks invariants that hold for every consumer of the merged
// [StructuredConfig]. Required fields are checked by the consumer-specific
// views.
func (cfg *StructuredConfig) validate() error {
	a := cfg.Adapter
	if a.RequestTimeout < 0 || a.RetryWaitMin < 0 || a.RetryWaitMax < 0 || a.MaxRetryAttempts < 0 || a.FetchConcurrency < 0 {
		return fmt.Errorf("%w: negative value", ErrInvalidAdapterConfigs)
	}
	if a.RetryWaitMin > 0 && a.RetryWaitMax > 0 && a.RetryWaitMax < a.RetryWaitMin {
		return fmt.Errorf("%w: retry wait max %s is below min %s", ErrInvalidAdapterConfigs, a.RetryWaitMax, a.RetryWaitMin)
	}
	if cfg.Auth.Timeout < 0 {
		return fmt.Errorf("%w: negative timeout", ErrInvalidAuthConfigs)
	}
	if cfg.Companion.SessionTTL < 0 || cfg.Companion.CallbackDelay < 0 {
		return fmt.Errorf("%w: negative duration", ErrInvalidCompanionConfigs)
	}
	return nil
}

func (cfg *StructuredConfig) validateClient() error {
	if cfg.App.ID == "" {
		return fmt.Errorf("%w: app id is required", ErrInvalidAppConfigs)
	}
	if cfg.Keys.ClientKeyPair == "" || cfg.Keys.CompanionPublicKey == "" {
		return fmt.Errorf("%w: client key pair and companion public key are required", ErrInvalidKeyConfigs)
	}
	if cfg.Auth.CompanionURL == "" {
		return fmt.Errorf("%w: companion url is required", ErrInvalidAuthConfigs)
	}
	if cfg.Auth.CallbackURL == "" && cfg.App.CallbackAddress == "" {
		return fmt.Errorf("%w: callback url or callback address is required", ErrInvalidAuthConfigs)
	}
	if cfg.Adapter.BaseURL == "" {
		return fmt.Errorf("%w: base url is required", ErrInvalidAdapterConfigs)
	}
	return nil
}

func (cfg *StructuredConfig) validateCompanion() error {
	if cfg.Companion.Address == "" {
		return fmt.Errorf("%w: address is required", ErrInvalidCompanionConfigs)
	}
	if cfg.Companion.KeyPair == "" {
		return fmt.Errorf("%w: key pair is required", ErrInvalidCompanionConfigs)
	}
	return nil
}
