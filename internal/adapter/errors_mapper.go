package adapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/MKhiriev/go-consent-sdk/models"
	"github.com/go-resty/resty/v2"
)

// mapHTTPError turns a non-2xx response into *models.ServerError. The
// structured error body is used when present, the raw body otherwise.
func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	serverErr := &models.ServerError{Status: resp.StatusCode()}

	var body models.APIErrorResponse
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Error.Code != "" {
		serverErr.Code = body.Error.Code
		serverErr.Message = body.Error.Message
		return serverErr
	}

	msg := strings.TrimSpace(string(resp.Body()))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode())
	}
	serverErr.Message = msg
	return serverErr
}
