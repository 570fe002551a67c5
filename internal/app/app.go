package app

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-consent-sdk/client"
	"github.com/MKhiriev/go-consent-sdk/internal/config"
	"github.com/MKhiriev/go-consent-sdk/internal/logger"
	"github.com/MKhiriev/go-consent-sdk/internal/server"
	"github.com/MKhiriev/go-consent-sdk/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Report is what one consent run obtained.
type Report struct {
	Session  models.Session
	Accounts models.Accounts
	Files    []string
	Skipped  map[string]error
}

// App is the sample host application.
type App struct {
	cfg    config.ClientConfig
	client *client.Client
	server server.Server

	// done receives the result of the consent run, if any.
	done chan Report

	logger *logger.Logger
}

// NewApp builds the consent client and binds the host listeners.
func NewApp(cfg config.ClientConfig, log *logger.Logger, opts ...client.Option) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts = append([]client.Option{client.WithLogger(log.Logger), client.WithMetrics(reg)}, opts...)
	c, err := client.New(cfg.SDK, opts...)
	if err != nil {
		return nil, fmt.Errorf("create consent client: %w", err)
	}

	endpoints := []server.Endpoint{{Name: "callback", Address: cfg.CallbackAddress, Handler: c.CallbackHandler()}}
	if cfg.MetricsAddress != "" {
		endpoints = append(endpoints, server.Endpoint{
			Name:    "metrics",
			Address: cfg.MetricsAddress,
			Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		})
	}
	srv, err := server.NewServer(log, endpoints...)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("create server: %w", err)
	}

	return &App{cfg: cfg, client: c, server: srv, done: make(chan Report, 1), logger: log}, nil
}

// Client returns the consent client the host runs.
func (a *App) Client() *client.Client {
	return a.client
}

// Addr returns the bound address of the named listener.
func (a *App) Addr(name string) string {
	return a.server.Addr(name)
}

// Done delivers the report of the consent run once it finished.
func (a *App) Done() <-chan Report {
	return a.done
}

// Run implements [Runner]. When a contract is configured it is authorized
// and its data downloaded in the background while the listeners serve.
func (a *App) Run(ctx context.Context) error {
	defer a.client.Close()

	if a.cfg.ContractID != "" {
		go func() {
			report, err := a.Consent(ctx, a.cfg.ContractID, models.Scope{})
			if err != nil {
				a.logger.Err(err).Str("func", "App.Run").Msg("consent run failed")
			}
			a.done <- report
		}()
	}

	return a.server.Run(ctx)
}

// Consent authorizes contractID and downloads everything the session
// exposes. Files that fail are reported in Report.Skipped.
func (a *App) Consent(ctx context.Context, contractID string, scope models.Scope) (Report, error) {
	report := Report{Skipped: make(map[string]error)}

	out, err := a.client.Authorize(ctx, contractID, scope)
	if err != nil {
		return report, fmt.Errorf("authorize %s (%s): %w", contractID, out.State, err)
	}
	report.Session = *out.Session
	a.logger.Info().
		Str("contract_id", report.Session.ContractID).
		Time("expires_at", report.Session.ExpiresAt).
		Msg("authorized")

	if report.Accounts, err = a.client.FetchAccounts(ctx); err != nil {
		return report, fmt.Errorf("fetch accounts: %w", err)
	}
	for _, acc := range report.Accounts.Accounts {
		a.logger.Info().Str("account", acc.Name).Str("service", acc.ServiceName).Msg("account shared")
	}

	err = a.client.FetchSessionData(ctx, func(f models.File, err error) {
		if err != nil {
			report.Skipped[f.ID] = err
			a.logger.Warn().Err(err).Str("file_id", f.ID).Msg("file skipped")
			return
		}
		report.Files = append(report.Files, f.ID)
		a.logger.Info().Str("file_id", f.ID).Int("bytes", len(f.Content)).Msg("file received")
	})
	// per-file failures are already in report.Skipped
	if err != nil && ctx.Err() != nil {
		return report, fmt.Errorf("fetch session data: %w", err)
	}
	return report, nil
}
