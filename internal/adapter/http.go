package adapter

import (
	"context"
	"crypto/ed25519"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-consent-sdk/internal/crypto"
	"github.com/MKhiriev/go-consent-sdk/internal/logger"
	"github.com/MKhiriev/go-consent-sdk/internal/utils"
	"github.com/MKhiriev/go-consent-sdk/models"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Endpoints of the data service.
const (
	queryPath    = "/v1/permission-access/query"
	accountsPath = "/v1/permission-access/accounts"
	filesPath    = "/v1/permission-access/files"
	filePath     = "/v1/permission-access/files/{fileID}"
)

// Headers exchanged with the data service.
const (
	sdkVersionHeader       = "X-SDK-Version"
	sdkStatusHeader        = "X-SDK-Status"
	sdkStatusMessageHeader = "X-SDK-Status-Message"
)

// Config carries the data service settings.
type Config struct {
	BaseURL        string
	RequestTimeout time.Duration
	// MaxRetryAttempts is the total number of tries for a query without side
	// effects. Values below 1 mean a single try.
	MaxRetryAttempts int
	RetryWaitMin     time.Duration
	RetryWaitMax     time.Duration

	CompanionSigningKey ed25519.PublicKey
	SDK                 models.SDKInfo
}

// Option customises the adapter.
type Option func(h *httpAPIClient)

// WithObserver reports every finished exchange to o.
func WithObserver(o Observer) Option {
	return func(h *httpAPIClient) {
		h.observer = o
	}
}

// WithHTTPOptions forwards options to the underlying HTTP client.
func WithHTTPOptions(opts ...utils.HTTPClientOption) Option {
	return func(h *httpAPIClient) {
		h.httpOpts = append(h.httpOpts, opts...)
	}
}

type httpAPIClient struct {
	client   *utils.HTTPClient
	httpOpts []utils.HTTPClientOption

	cfg      Config
	sessions SessionSource
	crypto   crypto.Service
	observer Observer

	// sleep waits between attempts; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error

	logger *logger.Logger
}

// NewHTTPAPIClient constructs an HTTP implementation of [APIClient].
//
// Returns an error if cfg.BaseURL is empty or cannot be parsed as a valid URL,
// or if no companion signing key is configured.
func NewHTTPAPIClient(cfg Config, sessions SessionSource, cryptoSvc crypto.Service, log *logger.Logger, opts ...Option) (APIClient, error) {
	baseURL, err := utils.NormalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid data service address: %w", err)
	}
	if len(cfg.CompanionSigningKey) != ed25519.PublicKeySize {
		return nil, ErrNoSigningKey
	}
	if cfg.MaxRetryAttempts < 1 {
		cfg.MaxRetryAttempts = 1
	}
	if cfg.RetryWaitMax < cfg.RetryWaitMin {
		cfg.RetryWaitMax = cfg.RetryWaitMin
	}

	h := &httpAPIClient{
		cfg:      cfg,
		sessions: sessions,
		crypto:   cryptoSvc,
		sleep:    sleepCtx,
		logger:   log,
	}
	for _, opt := range opts {
		opt(h)
	}

	httpOpts := append([]utils.HTTPClientOption{
		utils.WithBaseURL(baseURL),
		utils.WithTimeout(cfg.RequestTimeout),
		utils.WithUserAgent("go-consent-sdk/" + cfg.SDK.Version()),
	}, h.httpOpts...)
	h.client = utils.NewHTTPClient(httpOpts...)

	return h, nil
}

// FetchData implements [APIClient]. It POSTs the encrypted query to
// POST /v1/permission-access/query.
func (h *httpAPIClient) FetchData(ctx context.Context, q models.Query) (models.Payload, error) {
	return h.exchange(ctx, queryPath, nil, q, q.SideEffects)
}

// FetchAccounts implements [APIClient]. It POSTs to
// POST /v1/permission-access/accounts and decodes [models.Accounts].
func (h *httpAPIClient) FetchAccounts(ctx context.Context) (models.Accounts, error) {
	var accounts models.Accounts
	payload, err := h.exchange(ctx, accountsPath, nil, models.Query{Kind: "accounts"}, false)
	if err != nil {
		return accounts, err
	}
	if err = payload.Unmarshal(&accounts); err != nil {
		return accounts, fmt.Errorf("decode accounts: %w", err)
	}
	return accounts, nil
}

// ListFiles implements [APIClient]. It POSTs to
// POST /v1/permission-access/files and decodes [models.FileList].
func (h *httpAPIClient) ListFiles(ctx context.Context) (models.FileList, error) {
	var list models.FileList
	payload, err := h.exchange(ctx, filesPath, nil, models.Query{Kind: "files"}, false)
	if err != nil {
		return list, err
	}
	if err = payload.Unmarshal(&list); err != nil {
		return list, fmt.Errorf("decode file list: %w", err)
	}
	return list, nil
}

// FetchFile implements [APIClient]. It POSTs to
// POST /v1/permission-access/files/{fileID}.
func (h *httpAPIClient) FetchFile(ctx context.Context, fileID string) (models.File, error) {
	if fileID == "" {
		return models.File{}, ErrEmptyFileID
	}
	payload, err := h.exchange(ctx, filePath, map[string]string{"fileID": fileID}, models.Query{Kind: "file"}, false)
	if err != nil {
		return models.File{}, err
	}
	return models.File{ID: fileID, Content: payload}, nil
}

// exchange runs one session-scoped request: encrypt, POST with bounded
// retries, map errors, verify and decrypt.
func (h *httpAPIClient) exchange(ctx context.Context, path string, pathParams map[string]string, body any, sideEffects bool) (payload models.Payload, err error) {
	start := time.Now()
	attempts := 0
	defer func() {
		if h.observer != nil {
			h.observer.ExchangeCompleted(path, attempts, time.Since(start), err)
		}
	}()

	session, key, err := h.sessions.Active()
	if err != nil {
		return nil, err
	}

	plaintext, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	env, err := h.crypto.Encrypt(ctx, plaintext, key)
	crypto.Zero(plaintext)
	if err != nil {
		if errors.Is(err, crypto.ErrKeyWiped) {
			return nil, fmt.Errorf("%w: %v", models.ErrSessionExpired, err)
		}
		return nil, fmt.Errorf("encrypt request: %w", err)
	}

	ct, sig := crypto.EncodeEnvelope(env)
	reqBody := models.FetchRequest{SessionKey: session.SessionKey, EncryptedPayload: ct, Signature: sig}

	maxAttempts := h.cfg.MaxRetryAttempts
	if sideEffects {
		maxAttempts = 1
	}

	log := h.logger.With().Str("endpoint", path).Str("contract_id", session.ContractID).Logger()

	var resp *resty.Response
	var lastErr error
	for attempts < maxAttempts {
		if attempts > 0 {
			if err = h.sleep(ctx, h.backoff(attempts-1)); err != nil {
				return nil, err
			}
		}
		attempts++

		resp, lastErr = h.client.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "application/json").
			SetHeader(sdkVersionHeader, h.cfg.SDK.Version()).
			SetPathParams(pathParams).
			SetBody(reqBody).
			Post(path)
		if lastErr == nil {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		log.Warn().Err(lastErr).
			Str("func", "httpAPIClient.exchange").
			Int("attempt", attempts).
			Int("max_attempts", maxAttempts).
			Msg("request failed")
	}
	if lastErr != nil {
		return nil, fmt.Errorf("%w: %d attempt(s): %v", models.ErrNetwork, attempts, lastErr)
	}

	h.logSDKStatus(resp, log)

	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var fetchResp models.FetchResponse
	if err = json.Unmarshal(resp.Body(), &fetchResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", models.ErrIntegrity, err)
	}
	respEnv, err := crypto.DecodeEnvelope(fetchResp.EncryptedPayload, fetchResp.Signature)
	if err != nil {
		return nil, err
	}

	plain, err := h.crypto.Decrypt(ctx, respEnv, key, h.cfg.CompanionSigningKey)
	if err != nil {
		log.Err(err).Str("func", "httpAPIClient.exchange").Msg("response rejected")
		return nil, err
	}
	return plain, nil
}

// backoff returns RetryWaitMin * 2^n capped at RetryWaitMax.
func (h *httpAPIClient) backoff(n int) time.Duration {
	wait := h.cfg.RetryWaitMin
	for i := 0; i < n && wait < h.cfg.RetryWaitMax; i++ {
		wait *= 2
	}
	if wait > h.cfg.RetryWaitMax {
		wait = h.cfg.RetryWaitMax
	}
	return wait
}

func (h *httpAPIClient) logSDKStatus(resp *resty.Response, log zerolog.Logger) {
	status := resp.Header().Get(sdkStatusHeader)
	if status == "" {
		return
	}
	log.Warn().
		Str("sdk_status", status).
		Str("sdk_status_message", resp.Header().Get(sdkStatusMessageHeader)).
		Msg("data service reported sdk status")
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
