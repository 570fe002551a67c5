package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// CallbackPath is the route companions POST their callback to.
const CallbackPath = "/v1/callback"

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withCorrelationID, withLogging)

	router.Post(CallbackPath, h.callback)

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
