package client

import (
	"fmt"
	"time"

	"github.com/MKhiriev/go-consent-sdk/models"
)

// Version is the SDK version reported to the data service when Config.SDK is
// not set.
const Version = "1.0.0"

// Defaults applied by New to zero fields.
const (
	DefaultAuthorizationTimeout = 2 * time.Minute
	DefaultRequestTimeout       = 30 * time.Second
	DefaultMaxRetryAttempts     = 3
	DefaultRetryWaitMin         = 200 * time.Millisecond
	DefaultRetryWaitMax         = 5 * time.Second
	DefaultFetchConcurrency     = 4
)

// Config is everything a [Client] needs. Keys are the base64 encodings
// produced by the key tooling of cmd/companion.
type Config struct {
	// AppID identifies the host application to the companion.
	AppID string
	// ClientKeyPair is the host's encoded agreement and signing key pair.
	ClientKeyPair string
	// CompanionPublicKey is the companion's encoded public key bundle. Its
	// signing half verifies session payloads and data responses.
	CompanionPublicKey string

	// AuthorizationTimeout bounds the wait for the companion's callback.
	AuthorizationTimeout time.Duration

	// CompanionURL is the companion's launch endpoint. It may be empty when
	// a launcher is supplied with WithLauncher.
	CompanionURL string
	// CallbackURL is the return channel sent to the companion.
	CallbackURL string

	// BaseURL is the data service address.
	BaseURL          string
	RequestTimeout   time.Duration
	MaxRetryAttempts int
	RetryWaitMin     time.Duration
	RetryWaitMax     time.Duration

	// FetchConcurrency bounds parallel file downloads in FetchSessionData.
	FetchConcurrency int

	// ConsentHintsDSN opens a SQLite consent hint store when set.
	ConsentHintsDSN string

	SDK models.SDKInfo
}

func (c *Config) applyDefaults() {
	if c.AuthorizationTimeout <= 0 {
		c.AuthorizationTimeout = DefaultAuthorizationTimeout
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.MaxRetryAttempts <= 0 {
		c.MaxRetryAttempts = DefaultMaxRetryAttempts
	}
	if c.RetryWaitMin <= 0 {
		c.RetryWaitMin = DefaultRetryWaitMin
	}
	if c.RetryWaitMax <= 0 {
		c.RetryWaitMax = DefaultRetryWaitMax
	}
	if c.FetchConcurrency <= 0 {
		c.FetchConcurrency = DefaultFetchConcurrency
	}
	if c.SDK == (models.SDKInfo{}) {
		c.SDK = models.NewSDKInfo(Version, "", "")
	}
}

func (c *Config) validate() error {
	switch {
	case c.AppID == "":
		return fmt.Errorf("%w: app id is required", ErrInvalidConfig)
	case c.ClientKeyPair == "":
		return fmt.Errorf("%w: client key pair is required", ErrInvalidConfig)
	case c.CompanionPublicKey == "":
		return fmt.Errorf("%w: companion public key is required", ErrInvalidConfig)
	case c.BaseURL == "":
		return fmt.Errorf("%w: data service base url is required", ErrInvalidConfig)
	case c.RetryWaitMax < c.RetryWaitMin:
		return fmt.Errorf("%w: retry wait max %s is below min %s", ErrInvalidConfig, c.RetryWaitMax, c.RetryWaitMin)
	}
	return nil
}
