package http

import (
	"errors"
	"net/http"
)

var errorStatusMap = map[error]int{
	ErrMalformedCallback:     http.StatusBadRequest,
	ErrNoCorrelationID:       http.StatusBadRequest,
	ErrUnknownCallbackStatus: http.StatusBadRequest,
	ErrNoSessionPayload:      http.StatusBadRequest,
	ErrNoPendingRequest:      http.StatusNotFound,
}

var errorCodeMap = map[error]string{
	ErrMalformedCallback:     "MalformedCallback",
	ErrNoCorrelationID:       "MissingCorrelationID",
	ErrUnknownCallbackStatus: "UnknownStatus",
	ErrNoSessionPayload:      "MissingSessionPayload",
	ErrNoPendingRequest:      "UnknownCorrelation",
}

func statusFromError(err error) (int, string) {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status, errorCodeMap[target]
		}
	}
	return http.StatusInternalServerError, "Internal"
}
