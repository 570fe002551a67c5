package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MKhiriev/go-consent-sdk/internal/logger"
	"github.com/MKhiriev/go-consent-sdk/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithCorrelationID(t *testing.T) {
	tests := []struct {
		name          string
		requestHeader string
		wantSame      bool
	}{
		{name: "header is reused", requestHeader: "corr-123", wantSame: true},
		{name: "missing header gets a uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logBuf bytes.Buffer
			h := &Handler{logger: logger.New(&logBuf, "test", "debug")}

			var gotID string
			var gotOK bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotID, gotOK = utils.GetCorrelationIDFromContext(r.Context())
				logger.FromRequest(r).Info().Msg("inside")
			})

			req := httptest.NewRequest(http.MethodPost, CallbackPath, nil)
			if tt.requestHeader != "" {
				req.Header.Set(correlationIDHeader, tt.requestHeader)
			}
			rr := httptest.NewRecorder()
			h.withCorrelationID(next).ServeHTTP(rr, req)

			require.True(t, gotOK)
			header := rr.Header().Get(correlationIDHeader)
			assert.Equal(t, gotID, header)
			if tt.wantSame {
				assert.Equal(t, tt.requestHeader, header)
			} else {
				_, err := uuid.Parse(header)
				assert.NoError(t, err)
			}
			assert.Contains(t, logBuf.String(), `"correlation_id":"`+header+`"`)
		})
	}
}
