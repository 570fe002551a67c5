package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidAction          = errors.New("invalid action")
	ErrEmptyAppID             = errors.New("app id is required")
	ErrEmptyContractID        = errors.New("contract id is required")
	ErrEmptyCorrelationID     = errors.New("correlation id is required")
	ErrEmptyReturnChannel     = errors.New("return channel is required")
	ErrInvalidClientPublicKey = errors.New("invalid client public key")
	ErrInvalidServiceType     = errors.New("invalid service type")
	ErrInvalidTimeRange       = errors.New("invalid time range")
	ErrEmptySessionKey        = errors.New("session key is required")
	ErrInvalidEncoding        = errors.New("invalid base64 encoding")

	errEmptyValue = errors.New("empty value")
)
