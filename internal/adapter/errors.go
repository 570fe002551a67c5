package adapter

import "errors"

var (
	ErrEmptyFileID  = errors.New("empty file id")
	ErrNoSigningKey = errors.New("companion signing key is not configured")
)
