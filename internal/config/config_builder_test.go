package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MKhiriev/go-consent-sdk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempJSONConfig(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

// ── newConfigBuilder ──────────────────────────────────────────────────────────

func TestNewConfigBuilder_InitialState(t *testing.T) {
	b := newConfigBuilder()
	require.NotNil(t, b)
	assert.NoError(t, b.err)
	assert.Empty(t, b.configs)
}

// ── build ─────────────────────────────────────────────────────────────────────

func TestBuild_EmptyBuilder(t *testing.T) {
	cfg, err := newConfigBuilder().build()
	require.NoError(t, err)
	assert.Equal(t, &StructuredConfig{}, cfg)
}

func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}

// Earlier sources win for fields they set; later ones fill the gaps.
func TestBuild_EarlierSourcesTakePrecedence(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{App: App{ID: "from-flags"}},
		&StructuredConfig{App: App{ID: "from-env", LogLevel: "debug"}, Adapter: Adapter{MaxRetryAttempts: 5}},
	)

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "from-flags", cfg.App.ID)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, 5, cfg.Adapter.MaxRetryAttempts)
}

func TestBuild_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     StructuredConfig
		wantErr error
	}{
		{"negative retries", StructuredConfig{Adapter: Adapter{MaxRetryAttempts: -1}}, ErrInvalidAdapterConfigs},
		{"inverted retry window", StructuredConfig{Adapter: Adapter{RetryWaitMin: time.Second, RetryWaitMax: time.Millisecond}}, ErrInvalidAdapterConfigs},
		{"negative timeout", StructuredConfig{Auth: Auth{Timeout: -time.Second}}, ErrInvalidAuthConfigs},
		{"negative ttl", StructuredConfig{Companion: Companion{SessionTTL: -time.Second}}, ErrInvalidCompanionConfigs},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newConfigBuilder()
			b.configs = append(b.configs, &tt.cfg)
			_, err := b.build()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ── sources ───────────────────────────────────────────────────────────────────

func TestWithFlags_Error(t *testing.T) {
	b := newConfigBuilder().withFlags([]string{"-nope"})
	require.Error(t, b.err)
	assert.Empty(t, b.configs)
}

func TestWithJSON_PathFromFlags(t *testing.T) {
	path := writeTempJSONConfig(t, map[string]any{
		"app":     map[string]any{"id": "json-app", "log_level": "warn"},
		"adapter": map[string]any{"base_url": "http://json"},
	})

	cfg, err := newConfigBuilder().
		withFlags([]string{"-app-id", "flag-app", "-config", path}).
		withJSON().
		build()

	require.NoError(t, err)
	assert.Equal(t, "flag-app", cfg.App.ID)
	assert.Equal(t, "warn", cfg.App.LogLevel)
	assert.Equal(t, "http://json", cfg.Adapter.BaseURL)
}

func TestWithJSON_NoPathIsNoop(t *testing.T) {
	b := newConfigBuilder().withFlags(nil).withJSON()
	require.NoError(t, b.err)
	assert.Len(t, b.configs, 1)
}

func TestWithJSON_MissingFile(t *testing.T) {
	b := newConfigBuilder().
		withFlags([]string{"-c", filepath.Join(t.TempDir(), "missing.json")}).
		withJSON()
	require.Error(t, b.err)
}

func TestWithDotEnv_PathFromEnv(t *testing.T) {
	p := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(p, []byte("APP_ID=dotenv-app\nADAPTER_BASE_URL=http://dotenv\n"), 0o600))
	t.Setenv("DOTENV", p)
	t.Setenv("ADAPTER_BASE_URL", "http://env")

	cfg, err := newConfigBuilder().withFlags(nil).withEnv().withDotEnv().build()

	require.NoError(t, err)
	assert.Equal(t, "dotenv-app", cfg.App.ID)
	assert.Equal(t, "http://env", cfg.Adapter.BaseURL)
}

// ── consumer views ────────────────────────────────────────────────────────────

func TestGetClientConfig(t *testing.T) {
	args := []string{
		"-app-id", "app-1",
		"-client-key-pair", "client-pair",
		"-companion-public-key", "companion-pub",
		"-companion-url", "http://localhost:8090",
		"-a", "localhost:8081",
		"-base-url", "http://localhost:8090",
		"-max-retry-attempts", "4",
		"-d", "hints.db",
		"-contract", "contract-123",
	}
	sdk := models.NewSDKInfo("2.0.0", "2026-03-01", "abc")

	cfg, err := GetClientConfig(args, sdk)
	require.NoError(t, err)

	assert.Equal(t, "app-1", cfg.SDK.AppID)
	assert.Equal(t, "client-pair", cfg.SDK.ClientKeyPair)
	assert.Equal(t, "companion-pub", cfg.SDK.CompanionPublicKey)
	assert.Equal(t, "http://localhost:8090", cfg.SDK.CompanionURL)
	assert.Equal(t, "http://localhost:8081/v1/callback", cfg.SDK.CallbackURL)
	assert.Equal(t, 4, cfg.SDK.MaxRetryAttempts)
	assert.Equal(t, "hints.db", cfg.SDK.ConsentHintsDSN)
	assert.Equal(t, sdk, cfg.SDK.SDK)
	assert.Equal(t, "localhost:8081", cfg.CallbackAddress)
	assert.Equal(t, "contract-123", cfg.ContractID)
}

func TestGetClientConfig_Missing(t *testing.T) {
	full := []string{
		"-app-id", "app-1",
		"-client-key-pair", "client-pair",
		"-companion-public-key", "companion-pub",
		"-companion-url", "http://localhost:8090",
		"-callback-url", "http://localhost:8081/v1/callback",
		"-base-url", "http://localhost:8090",
	}
	without := func(flag string) []string {
		var out []string
		for i := 0; i < len(full); i += 2 {
			if full[i] != flag {
				out = append(out, full[i], full[i+1])
			}
		}
		return out
	}

	tests := []struct {
		flag    string
		wantErr error
	}{
		{"-app-id", ErrInvalidAppConfigs},
		{"-client-key-pair", ErrInvalidKeyConfigs},
		{"-companion-url", ErrInvalidAuthConfigs},
		{"-callback-url", ErrInvalidAuthConfigs},
		{"-base-url", ErrInvalidAdapterConfigs},
	}
	for _, tt := range tests {
		t.Run(tt.flag, func(t *testing.T) {
			_, err := GetClientConfig(without(tt.flag), models.SDKInfo{})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetCompanionConfig(t *testing.T) {
	cfg, err := GetCompanionConfig([]string{
		"-companion-address", "localhost:8090",
		"-companion-key-pair", "pair",
		"-mode", "deny",
		"-session-ttl", "10m",
	})
	require.NoError(t, err)
	assert.Equal(t, "localhost:8090", cfg.Address)
	assert.Equal(t, "pair", cfg.KeyPair)
	assert.Equal(t, "deny", cfg.Mode)
	assert.Equal(t, 10*time.Minute, cfg.SessionTTL)

	_, err = GetCompanionConfig([]string{"-companion-address", "localhost:8090"})
	assert.ErrorIs(t, err, ErrInvalidCompanionConfigs)
}
