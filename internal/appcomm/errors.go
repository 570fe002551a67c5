package appcomm

import "errors"

var (
	ErrNotOutbound          = errors.New("message is not an outbound launch request")
	ErrNotInbound           = errors.New("message is not an inbound callback")
	ErrEmptyCorrelationID   = errors.New("empty correlation id")
	ErrDuplicateCorrelation = errors.New("correlation id is already awaiting a callback")
	ErrUnknownCorrelation   = errors.New("correlation id is not awaiting a callback")
)
