package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-consent-sdk/internal/app"
	"github.com/MKhiriev/go-consent-sdk/internal/config"
	"github.com/MKhiriev/go-consent-sdk/internal/logger"
	"github.com/MKhiriev/go-consent-sdk/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	sdk := models.NewSDKInfo(buildVersion, buildDate, buildCommit)
	printBuildInfo(sdk)

	cfg, err := config.GetClientConfig(os.Args[1:], sdk)
	if err != nil {
		logger.NewLogger("consent-host", "").Fatal().Err(err).Msg("error getting configs")
	}
	log := logger.NewLogger("consent-host", cfg.LogLevel)

	host, err := app.NewApp(*cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating host application")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	if err = host.Run(ctx); err != nil {
		log.Error().Err(err).Msg("host application stopped with error")
	}
}

func printBuildInfo(sdk models.SDKInfo) {
	fmt.Printf("Build version: %s\n", sdk.Version())
	fmt.Printf("Build date: %s\n", sdk.Date())
	fmt.Printf("Build commit: %s\n", sdk.Commit())
}
