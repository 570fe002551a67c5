package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-consent-sdk/internal/companion"
	"github.com/MKhiriev/go-consent-sdk/internal/config"
	"github.com/MKhiriev/go-consent-sdk/internal/crypto"
	"github.com/MKhiriev/go-consent-sdk/internal/logger"
	"github.com/MKhiriev/go-consent-sdk/internal/server"
	"github.com/MKhiriev/go-consent-sdk/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "keygen" {
		if err := keygen(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	printBuildInfo()

	cfg, err := config.GetCompanionConfig(os.Args[1:])
	if err != nil {
		logger.NewLogger("companion", "").Fatal().Err(err).Msg("error getting configs")
	}
	log := logger.NewLogger("companion", cfg.LogLevel)

	keys, err := crypto.ParseKeyPair(cfg.KeyPair)
	if err != nil {
		log.Fatal().Err(err).Msg("parse key pair")
	}
	mode := companion.ModeApprove
	if cfg.Mode != "" {
		if mode, err = companion.ParseMode(cfg.Mode); err != nil {
			log.Fatal().Err(err).Msg("parse mode")
		}
	}

	sim, err := companion.New(companion.Config{
		Keys:          keys,
		Mode:          mode,
		SessionTTL:    cfg.SessionTTL,
		CallbackDelay: cfg.CallbackDelay,
		Accounts:      sampleAccounts,
		Files:         sampleFiles,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("create companion")
	}

	srv, err := server.NewServer(log, server.Endpoint{Name: "companion", Address: cfg.Address, Handler: sim.Init()})
	if err != nil {
		log.Fatal().Err(err).Msg("create server")
	}

	log.Info().Str("public_key", sim.PublicKey().Encode()).Str("mode", string(mode)).Msg("companion ready")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	if err = srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server run error")
	}
	sim.Close()
}

// keygen prints a fresh key pair and its public half in env file format.
func keygen() error {
	kp, err := crypto.GenerateKeyPair()
	if err != nil {
		return err
	}
	fmt.Printf("KEY_PAIR=%s\n", kp.Encode())
	fmt.Printf("PUBLIC_KEY=%s\n", kp.Public().Encode())
	return nil
}

var sampleAccounts = models.Accounts{Accounts: []models.Account{
	{ID: "acc-1", Name: "Everyday account", ServiceID: 1, ServiceName: "Bank"},
	{ID: "acc-2", Name: "Running log", ServiceID: 2, ServiceName: "Fitness"},
}}

var sampleFiles = map[string]json.RawMessage{
	"transactions-2026-01": json.RawMessage(`{"transactions":[{"amount":-12.5,"currency":"EUR"}]}`),
	"workouts-2026-01":     json.RawMessage(`{"workouts":[{"kind":"run","km":5.2}]}`),
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
