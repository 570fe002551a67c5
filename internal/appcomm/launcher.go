package appcomm

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-consent-sdk/internal/logger"
	"github.com/MKhiriev/go-consent-sdk/internal/utils"
	"github.com/MKhiriev/go-consent-sdk/models"
)

// LauncherFunc adapts a host function (for example an OS deep-link opener)
// to [Launcher].
type LauncherFunc func(ctx context.Context, msg models.AppMessage) error

// Launch implements [Launcher].
func (f LauncherFunc) Launch(ctx context.Context, msg models.AppMessage) error {
	return f(ctx, msg)
}

const (
	launchPath          = "/v1/launch"
	correlationIDHeader = "X-Correlation-ID"
)

type httpLauncher struct {
	client *utils.HTTPClient
	logger *logger.Logger
}

// NewHTTPLauncher constructs a [Launcher] that POSTs the outbound message to
// the launch endpoint of a companion service at companionURL. Any transport
// error or non-2xx status means the companion is unavailable.
func NewHTTPLauncher(companionURL string, timeout time.Duration, log *logger.Logger, opts ...utils.HTTPClientOption) (Launcher, error) {
	baseURL, err := utils.NormalizeBaseURL(companionURL)
	if err != nil {
		return nil, fmt.Errorf("invalid companion address: %w", err)
	}

	opts = append([]utils.HTTPClientOption{utils.WithBaseURL(baseURL), utils.WithTimeout(timeout)}, opts...)
	return &httpLauncher{client: utils.NewHTTPClient(opts...), logger: log}, nil
}

// Launch implements [Launcher].
func (h *httpLauncher) Launch(ctx context.Context, msg models.AppMessage) error {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader(correlationIDHeader, msg.CorrelationID).
		SetBody(msg).
		Post(launchPath)
	if err != nil {
		return fmt.Errorf("launch request: %w", err)
	}
	if !resp.IsSuccess() {
		h.logger.Warn().
			Str("func", "httpLauncher.Launch").
			Int("status", resp.StatusCode()).
			Str("correlation_id", msg.CorrelationID).
			Msg("companion rejected launch")
		return fmt.Errorf("companion rejected launch: http %d", resp.StatusCode())
	}
	return nil
}
