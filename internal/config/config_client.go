package config

import (
	"fmt"

	"github.com/MKhiriev/go-consent-sdk/client"
	handler "github.com/MKhiriev/go-consent-sdk/internal/handler/http"
	"github.com/MKhiriev/go-consent-sdk/models"
)

// ClientConfig is the sample host's view of [StructuredConfig].
type ClientConfig struct {
	// SDK is passed to client.New unchanged.
	SDK client.Config
	// ContractID is requested on startup when set.
	ContractID string
	// LogLevel is the zerolog level of the host.
	LogLevel string
	// CallbackAddress is where the callback receiver listens.
	CallbackAddress string
	// MetricsAddress serves /metrics when set.
	MetricsAddress string
}

// GetClientConfig builds and validates the host configuration from args and
// the environment. sdk is the build metadata reported to the data service.
func GetClientConfig(args []string, sdk models.SDKInfo) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(args)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}
	if err = cfg.validateClient(); err != nil {
		return nil, err
	}
	return cfg.clientConfig(sdk), nil
}

func (cfg *StructuredConfig) clientConfig(sdk models.SDKInfo) *ClientConfig {
	callbackURL := cfg.Auth.CallbackURL
	if callbackURL == "" {
		callbackURL = "http://" + cfg.App.CallbackAddress + handler.CallbackPath
	}

	return &ClientConfig{
		SDK: client.Config{
			AppID:                cfg.App.ID,
			ClientKeyPair:        cfg.Keys.ClientKeyPair,
			CompanionPublicKey:   cfg.Keys.CompanionPublicKey,
			AuthorizationTimeout: cfg.Auth.Timeout,
			CompanionURL:         cfg.Auth.CompanionURL,
			CallbackURL:          callbackURL,
			BaseURL:              cfg.Adapter.BaseURL,
			RequestTimeout:       cfg.Adapter.RequestTimeout,
			MaxRetryAttempts:     cfg.Adapter.MaxRetryAttempts,
			RetryWaitMin:         cfg.Adapter.RetryWaitMin,
			RetryWaitMax:         cfg.Adapter.RetryWaitMax,
			FetchConcurrency:     cfg.Adapter.FetchConcurrency,
			ConsentHintsDSN:      cfg.Storage.ConsentHintsDSN,
			SDK:                  sdk,
		},
		ContractID:      cfg.App.ContractID,
		LogLevel:        cfg.App.LogLevel,
		CallbackAddress: cfg.App.CallbackAddress,
		MetricsAddress:  cfg.App.MetricsAddress,
	}
}
