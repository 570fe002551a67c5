package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/MKhiriev/go-consent-sdk/internal/logger"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout bounds graceful shutdown of one endpoint.
const shutdownTimeout = 10 * time.Second

// Endpoint is one HTTP listener.
type Endpoint struct {
	Name    string
	Address string
	Handler http.Handler
}

type httpServer struct {
	name     string
	server   *http.Server
	listener net.Listener
}

type server struct {
	servers []*httpServer
	logger  *logger.Logger
}

// NewServer binds every endpoint. Binding happens here so that a busy port is
// reported before anything runs and so ":0" addresses can be queried.
func NewServer(logger *logger.Logger, endpoints ...Endpoint) (Server, error) {
	logger.Info().Msg("creating new server...")
	if len(endpoints) == 0 {
		return nil, errNoServersAreCreated
	}

	s := &server{logger: logger}
	for _, e := range endpoints {
		if e.Address == "" {
			s.close()
			return nil, fmt.Errorf("%w: %s", errEmptyAddress, e.Name)
		}
		l, err := net.Listen("tcp", e.Address)
		if err != nil {
			s.close()
			return nil, fmt.Errorf("listen %s on %s: %w", e.Name, e.Address, err)
		}
		s.servers = append(s.servers, &httpServer{
			name:     e.Name,
			server:   &http.Server{Handler: e.Handler, ReadHeaderTimeout: 10 * time.Second},
			listener: l,
		})
	}
	return s, nil
}

func (s *server) Addr(name string) string {
	for _, srv := range s.servers {
		if srv.name == name {
			return srv.listener.Addr().String()
		}
	}
	return ""
}

func (s *server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, srv := range s.servers {
		s.logger.Info().Str("endpoint", srv.name).Str("address", srv.listener.Addr().String()).Msg("launching HTTP server")
		g.Go(func() error {
			if err := srv.server.Serve(srv.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s: %w", srv.name, err)
			}
			return nil
		})
	}

	// listen for stop signals
	g.Go(func() error {
		<-ctx.Done()
		s.shutdown()
		return nil
	})

	err := g.Wait()
	s.logger.Info().Msg("server shutdown gracefully")
	return err
}

func (s *server) shutdown() {
	for _, srv := range s.servers {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := srv.server.Shutdown(ctx); err != nil {
			s.logger.Err(err).Str("endpoint", srv.name).Msg("HTTP server shutdown")
		}
		cancel()
	}
}

func (s *server) close() {
	for _, srv := range s.servers {
		_ = srv.listener.Close()
	}
}
