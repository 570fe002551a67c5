package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/MKhiriev/go-consent-sdk/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hello(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, body)
	})
}

func get(t *testing.T, addr string) string {
	t.Helper()
	resp, err := http.Get("http://" + addr + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestServer_RunAndShutdown(t *testing.T) {
	s, err := NewServer(logger.Nop(),
		Endpoint{Name: "callback", Address: "127.0.0.1:0", Handler: hello("callback")},
		Endpoint{Name: "metrics", Address: "127.0.0.1:0", Handler: hello("metrics")},
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Equal(t, "callback", get(t, s.Addr("callback")))
	assert.Equal(t, "metrics", get(t, s.Addr("metrics")))
	assert.Empty(t, s.Addr("unknown"))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	_, err = http.Get("http://" + s.Addr("callback") + "/")
	assert.Error(t, err)
}

func TestNewServer_Errors(t *testing.T) {
	_, err := NewServer(logger.Nop())
	assert.ErrorIs(t, err, errNoServersAreCreated)

	_, err = NewServer(logger.Nop(), Endpoint{Name: "x"})
	assert.ErrorIs(t, err, errEmptyAddress)

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()

	_, err = NewServer(logger.Nop(),
		Endpoint{Name: "ok", Address: "127.0.0.1:0", Handler: hello("")},
		Endpoint{Name: "busy", Address: busy.Addr().String(), Handler: hello("")},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "listen busy")
}
