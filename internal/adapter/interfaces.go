// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"time"

	"github.com/MKhiriev/go-consent-sdk/internal/crypto"
	"github.com/MKhiriev/go-consent-sdk/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/api_client_mock.go -package=mock

// APIClient is the session-scoped channel to the data service. Every call
// needs a valid session; without one it returns models.ErrSessionExpired and
// performs no I/O. Requests are encrypted with the session key and responses
// are verified against the companion signing key before decryption.
type APIClient interface {
	// FetchData runs q and returns the decrypted payload.
	FetchData(ctx context.Context, q models.Query) (models.Payload, error)

	// FetchAccounts lists the source accounts shared in the session.
	FetchAccounts(ctx context.Context) (models.Accounts, error)

	// ListFiles lists the data files available in the session.
	ListFiles(ctx context.Context) (models.FileList, error)

	// FetchFile downloads and decrypts one data file.
	FetchFile(ctx context.Context, fileID string) (models.File, error)
}

// SessionSource yields the current session and its key, or
// models.ErrSessionExpired.
type SessionSource interface {
	Active() (models.Session, *crypto.SessionKey, error)
}

// Observer is told about every finished exchange.
type Observer interface {
	ExchangeCompleted(endpoint string, attempts int, elapsed time.Duration, err error)
}
