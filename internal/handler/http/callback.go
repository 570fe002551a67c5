package http

import (
	"fmt"
	"net/http"

	"github.com/MKhiriev/go-consent-sdk/internal/logger"
	"github.com/MKhiriev/go-consent-sdk/internal/utils"
	"github.com/MKhiriev/go-consent-sdk/models"
)

// callback handles POST /v1/callback.
//
// 202 means the callback reached a waiting authorization. 404 means nobody
// was waiting for it (unknown, late or already answered). 400 means the body
// could not be used. A callback naming a waiting authorization is always
// delivered so the flow can fail on it, even when it is answered with 400.
func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var cb models.CallbackMessage
	if err := utils.DecodeJSON(r, &cb); err != nil {
		h.writeError(w, log, fmt.Errorf("%w: %v", ErrMalformedCallback, err))
		return
	}
	if cb.CorrelationID == "" {
		h.writeError(w, log, ErrNoCorrelationID)
		return
	}

	msg, err := models.NewInboundMessage(cb)
	if err != nil {
		h.writeError(w, log, fmt.Errorf("%w: %v", ErrMalformedCallback, err))
		return
	}

	if !h.comm.Deliver(msg) {
		h.writeError(w, log, fmt.Errorf("%w: %s", ErrNoPendingRequest, cb.CorrelationID))
		return
	}

	log.Info().
		Str("callback_correlation_id", cb.CorrelationID).
		Str("status", cb.Status).
		Msg("callback delivered")

	if err = validateCallback(cb); err != nil {
		h.writeError(w, log, err)
		return
	}
	_, _ = utils.WriteJSON(w, map[string]string{"status": "accepted"}, http.StatusAccepted)
}

// validateCallback reports what makes a delivered callback unusable. The
// authorization flow reaches the same verdict on its own.
func validateCallback(cb models.CallbackMessage) error {
	switch cb.Status {
	case models.CallbackGranted:
		if cb.SessionPayload == "" {
			return ErrNoSessionPayload
		}
	case models.CallbackDenied, models.CallbackError:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCallbackStatus, cb.Status)
	}
	return nil
}

func (h *Handler) writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	status, code := statusFromError(err)
	log.Warn().Err(err).Str("func", "Handler.callback").Int("status", status).Msg("callback rejected")
	_, _ = utils.WriteError(w, status, code, err.Error())
}
