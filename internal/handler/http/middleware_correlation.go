package http

import (
	"net/http"

	"github.com/MKhiriev/go-consent-sdk/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const correlationIDHeader = "X-Correlation-ID"

// withCorrelationID tags the request context and its logger with the
// companion's correlation id, or a fresh one when the header is absent.
func (h *Handler) withCorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(correlationIDHeader)
		if correlationID == "" {
			correlationID = uuid.NewString()
		}

		l := h.logger.GetChildLogger()
		l.UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("correlation_id", correlationID)
		})
		ctx := utils.WithCorrelationID(r.Context(), correlationID)
		r = r.WithContext(l.WithContext(ctx))

		w.Header().Set(correlationIDHeader, correlationID)
		next.ServeHTTP(w, r)
	})
}
