package utils

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTPClient is a wrapper around the resty.Client HTTP client.
// It embeds *resty.Client to expose all of its methods directly.
type HTTPClient struct {
	*resty.Client
}

// HTTPClientOption customises the underlying resty client.
type HTTPClientOption func(c *resty.Client)

// WithBaseURL sets the base URL every relative request path is resolved against.
func WithBaseURL(baseURL string) HTTPClientOption {
	return func(c *resty.Client) {
		c.SetBaseURL(baseURL)
	}
}

// WithTimeout bounds every single request attempt.
func WithTimeout(d time.Duration) HTTPClientOption {
	return func(c *resty.Client) {
		if d > 0 {
			c.SetTimeout(d)
		}
	}
}

// WithUserAgent sets the User-Agent header of every request.
func WithUserAgent(ua string) HTTPClientOption {
	return func(c *resty.Client) {
		c.SetHeader("User-Agent", ua)
	}
}

// WithTransportOf reuses the transport of a host-supplied *http.Client.
func WithTransportOf(hc *http.Client) HTTPClientOption {
	return func(c *resty.Client) {
		if hc != nil && hc.Transport != nil {
			c.SetTransport(hc.Transport)
		}
	}
}

// NewHTTPClient creates and returns a new HTTPClient instance.
//
// Each call returns an independent client instance with its own
// configuration, connection pool, and state. resty's own retry mechanism is
// left disabled; callers that retry do so explicitly.
//
// Example usage:
//
//	client := utils.NewHTTPClient(utils.WithBaseURL("https://api.example.com"))
//	resp, err := client.R().SetContext(ctx).Get("/v1/status")
func NewHTTPClient(opts ...HTTPClientOption) *HTTPClient {
	c := resty.New()
	for _, opt := range opts {
		opt(c)
	}
	return &HTTPClient{Client: c}
}
