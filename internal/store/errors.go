package store

import "errors"

// ErrHintNotFound is returned by GetHint when no hint is stored for the
// contract.
var ErrHintNotFound = errors.New("consent hint not found")

// Low-level database errors. Repository methods wrap them with the failing
// operation.
var (
	ErrBuildingSQLQuery = errors.New("error building sql query")
	ErrExecutingQuery   = errors.New("error executing sql query")
	ErrScanningRow      = errors.New("failed to scan consent hint row")
	ErrScanningRows     = errors.New("failed to scan consent hint rows")
)
