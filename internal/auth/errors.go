package auth

import "errors"

var (
	errContractMismatch    = errors.New("session payload is for another contract")
	errCorrelationMismatch = errors.New("callback correlation id does not match request")
	errUnknownStatus       = errors.New("unknown callback status")
	errEmptyContractID     = errors.New("empty contract id")
)
