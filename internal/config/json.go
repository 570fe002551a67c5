package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	App struct {
		ID              string `json:"id"`
		ContractID      string `json:"contract_id"`
		LogLevel        string `json:"log_level"`
		CallbackAddress string `json:"callback_address"`
		MetricsAddress  string `json:"metrics_address"`
	} `json:"app,omitempty"`

	Keys struct {
		ClientKeyPair      string `json:"client_key_pair"`
		CompanionPublicKey string `json:"companion_public_key"`
	} `json:"keys,omitempty"`

	Auth struct {
		Timeout      Duration `json:"timeout"`
		CompanionURL string   `json:"companion_url"`
		CallbackURL  string   `json:"callback_url"`
	} `json:"auth,omitempty"`

	Adapter struct {
		BaseURL          string   `json:"base_url"`
		RequestTimeout   Duration `json:"request_timeout"`
		MaxRetryAttempts int      `json:"max_retry_attempts"`
		RetryWaitMin     Duration `json:"retry_wait_min"`
		RetryWaitMax     Duration `json:"retry_wait_max"`
		FetchConcurrency int      `json:"fetch_concurrency"`
	} `json:"adapter,omitempty"`

	Storage struct {
		ConsentHintsDSN string `json:"consent_hints_dsn"`
	} `json:"storage,omitempty"`

	Companion struct {
		Address       string   `json:"address"`
		KeyPair       string   `json:"key_pair"`
		Mode          string   `json:"mode"`
		SessionTTL    Duration `json:"session_ttl"`
		CallbackDelay Duration `json:"callback_delay"`
	} `json:"companion,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			ID:              jsonCfg.App.ID,
			ContractID:      jsonCfg.App.ContractID,
			LogLevel:        jsonCfg.App.LogLevel,
			CallbackAddress: jsonCfg.App.CallbackAddress,
			MetricsAddress:  jsonCfg.App.MetricsAddress,
		},
		Keys: Keys{
			ClientKeyPair:      jsonCfg.Keys.ClientKeyPair,
			CompanionPublicKey: jsonCfg.Keys.CompanionPublicKey,
		},
		Auth: Auth{
			Timeout:      time.Duration(jsonCfg.Auth.Timeout),
			CompanionURL: jsonCfg.Auth.CompanionURL,
			CallbackURL:  jsonCfg.Auth.CallbackURL,
		},
		Adapter: Adapter{
			BaseURL:          jsonCfg.Adapter.BaseURL,
			RequestTimeout:   time.Duration(jsonCfg.Adapter.RequestTimeout),
			MaxRetryAttempts: jsonCfg.Adapter.MaxRetryAttempts,
			RetryWaitMin:     time.Duration(jsonCfg.Adapter.RetryWaitMin),
			RetryWaitMax:     time.Duration(jsonCfg.Adapter.RetryWaitMax),
			FetchConcurrency: jsonCfg.Adapter.FetchConcurrency,
		},
		Storage: Storage{
			ConsentHintsDSN: jsonCfg.Storage.ConsentHintsDSN,
		},
		Companion: Companion{
			Address:       jsonCfg.Companion.Address,
			KeyPair:       jsonCfg.Companion.KeyPair,
			Mode:          jsonCfg.Companion.Mode,
			SessionTTL:    time.Duration(jsonCfg.Companion.SessionTTL),
			CallbackDelay: time.Duration(jsonCfg.Companion.CallbackDelay),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
