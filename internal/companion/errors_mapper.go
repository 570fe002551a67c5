package companion

import (
	"errors"
	"net/http"

	"github.com/MKhiriev/go-consent-sdk/internal/logger"
	"github.com/MKhiriev/go-consent-sdk/internal/utils"
)

var errorStatusMap = []struct {
	err    error
	status int
	code   string
}{
	{ErrMalformedLaunch, http.StatusBadRequest, "MalformedLaunch"},
	{ErrUnavailable, http.StatusServiceUnavailable, "Unavailable"},
	{ErrSDKVersion, http.StatusForbidden, "SDKVersionInvalid"},
	{ErrInvalidPayload, http.StatusBadRequest, "InvalidPayload"},
	{ErrSessionNotFound, http.StatusUnauthorized, "SessionNotFound"},
	{ErrSessionExpired, http.StatusUnauthorized, "SessionExpired"},
	{ErrScopeOutOfBounds, http.StatusBadRequest, "ScopeOutOfBounds"},
	{ErrFileNotFound, http.StatusNotFound, "FileNotFound"},
}

func statusFromError(err error) (int, string) {
	for _, e := range errorStatusMap {
		if errors.Is(err, e.err) {
			return e.status, e.code
		}
	}
	return http.StatusInternalServerError, "Internal"
}

func (c *Companion) writeError(w http.ResponseWriter, log *logger.Logger, err error) {
	status, code := statusFromError(err)
	log.Warn().Err(err).Int("status", status).Str("code", code).Msg("request rejected")
	_, _ = utils.WriteError(w, status, code, err.Error())
}
