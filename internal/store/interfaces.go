// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package store persists consent hints in a local SQLite database.
//
// A consent hint records the last time a contract was granted so a host
// application can decide whether to show its own consent explainer before
// starting an authorization. Hints are advisory; the SDK never skips an
// authorization because of one.
package store

import (
	"context"

	"github.com/MKhiriev/go-consent-sdk/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// ConsentHintRepository stores one hint per contract.
type ConsentHintRepository interface {
	// SaveHint inserts or replaces the hint for hint.ContractID.
	SaveHint(ctx context.Context, hint models.ConsentHint) error
	// GetHint returns ErrHintNotFound when the contract was never granted.
	GetHint(ctx context.Context, contractID string) (models.ConsentHint, error)
	// ListHints returns every hint ordered by contract id.
	ListHints(ctx context.Context) ([]models.ConsentHint, error)
	// DeleteHint removes the hint; deleting a missing hint is not an error.
	DeleteHint(ctx context.Context, contractID string) error
}
