package config

import (
	"fmt"
	"time"
)

// CompanionConfig is the simulator's view of [StructuredConfig].
type CompanionConfig struct {
	Address       string
	KeyPair       string
	Mode          string
	SessionTTL    time.Duration
	CallbackDelay time.Duration
	LogLevel      string
}

// GetCompanionConfig builds and validates the simulator configuration.
func GetCompanionConfig(args []string) (*CompanionConfig, error) {
	cfg, err := GetStructuredConfig(args)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}
	if err = cfg.validateCompanion(); err != nil {
		return nil, err
	}

	return &CompanionConfig{
		Address:       cfg.Companion.Address,
		KeyPair:       cfg.Companion.KeyPair,
		Mode:          cfg.Companion.Mode,
		SessionTTL:    cfg.Companion.SessionTTL,
		CallbackDelay: cfg.Companion.CallbackDelay,
		LogLevel:      cfg.App.LogLevel,
	}, nil
}
