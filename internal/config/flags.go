package config

import (
	"errors"
	"flag"
	"io"
	"net"
	"strconv"
	"strings"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags from args.
//
// Flags:
//
//	-app-id host application id
//	-contract contract to request consent for
//	-log-level log level (debug, info, warn, error)
//	-a callback receiver address in format [host]:[port]
//	-metrics-address metrics address in format [host]:[port]
//	-client-key-pair base64 client key pair
//	-companion-public-key base64 companion public key
//	-auth-timeout callback wait (e.g., "2m")
//	-companion-url companion launch endpoint
//	-callback-url return channel sent to the companion
//	-base-url data service address
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-max-retry-attempts total tries of a query
//	-retry-wait-min first backoff wait
//	-retry-wait-max backoff cap
//	-fetch-concurrency parallel file downloads
//	-d consent hints DSN
//	-companion-address simulator address in format [host]:[port]
//	-companion-key-pair base64 simulator key pair
//	-mode simulator mode
//	-session-ttl simulator session lifetime
//	-callback-delay simulator decision delay
//	-c/-config json file path with configs
//	-env-file .env file path
func ParseFlags(args []string) (*StructuredConfig, error) {
	var callbackAddress, metricsAddress, companionAddress NetAddress
	cfg := &StructuredConfig{}

	fs := flag.NewFlagSet("consent", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.App.ID, "app-id", "", "Host application id")
	fs.StringVar(&cfg.App.ContractID, "contract", "", "Contract to request consent for")
	fs.StringVar(&cfg.App.LogLevel, "log-level", "", "Log level")
	fs.Var(&callbackAddress, "a", "Callback receiver address host:port")
	fs.Var(&metricsAddress, "metrics-address", "Metrics address host:port")

	fs.StringVar(&cfg.Keys.ClientKeyPair, "client-key-pair", "", "Base64 client key pair")
	fs.StringVar(&cfg.Keys.CompanionPublicKey, "companion-public-key", "", "Base64 companion public key")

	fs.DurationVar(&cfg.Auth.Timeout, "auth-timeout", 0, "Callback wait (e.g., 2m)")
	fs.StringVar(&cfg.Auth.CompanionURL, "companion-url", "", "Companion launch endpoint")
	fs.StringVar(&cfg.Auth.CallbackURL, "callback-url", "", "Return channel sent to the companion")

	fs.StringVar(&cfg.Adapter.BaseURL, "base-url", "", "Data service address")
	fs.DurationVar(&cfg.Adapter.RequestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.IntVar(&cfg.Adapter.MaxRetryAttempts, "max-retry-attempts", 0, "Total tries of a query")
	fs.DurationVar(&cfg.Adapter.RetryWaitMin, "retry-wait-min", 0, "First backoff wait")
	fs.DurationVar(&cfg.Adapter.RetryWaitMax, "retry-wait-max", 0, "Backoff cap")
	fs.IntVar(&cfg.Adapter.FetchConcurrency, "fetch-concurrency", 0, "Parallel file downloads")

	fs.StringVar(&cfg.Storage.ConsentHintsDSN, "d", "", "Consent hints DSN")

	fs.Var(&companionAddress, "companion-address", "Simulator address host:port")
	fs.StringVar(&cfg.Companion.KeyPair, "companion-key-pair", "", "Base64 simulator key pair")
	fs.StringVar(&cfg.Companion.Mode, "mode", "", "Simulator mode")
	fs.DurationVar(&cfg.Companion.SessionTTL, "session-ttl", 0, "Simulator session lifetime")
	fs.DurationVar(&cfg.Companion.CallbackDelay, "callback-delay", 0, "Simulator decision delay")

	fs.StringVar(&cfg.JSONFilePath, "c", "", "JSON config file path")
	fs.StringVar(&cfg.JSONFilePath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&cfg.DotEnvPath, "env-file", "", ".env file path")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.App.CallbackAddress = callbackAddress.String()
	cfg.App.MetricsAddress = metricsAddress.String()
	cfg.Companion.Address = companionAddress.String()
	return cfg, nil
}

// String returns a canonical host:port string for a NetAddress.
// If neither Host nor Port are set, it returns an empty string.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is "localhost",
// and returns an error if the format or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 {
		return errors.New("port number is a positive integer")
	}

	if host != "localhost" {
		ip := net.ParseIP(hostAndPort[0])
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
