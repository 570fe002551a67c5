package http

import (
	"github.com/MKhiriev/go-consent-sdk/internal/appcomm"
	"github.com/MKhiriev/go-consent-sdk/internal/logger"
)

// Handler serves companion callbacks and forwards them to the communicator
// that is waiting for them.
type Handler struct {
	comm appcomm.Communicator

	logger *logger.Logger
}

func NewHandler(comm appcomm.Communicator, logger *logger.Logger) *Handler {
	logger.Debug().Msg("callback handler created")
	return &Handler{
		comm:   comm,
		logger: logger,
	}
}
