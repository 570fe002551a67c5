package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-consent-sdk/internal/logger"
)

// Storages groups the local repositories with the connection they share.
type Storages struct {
	ConsentHints ConsentHintRepository

	db *DB
}

// NewStorages opens the SQLite database at dsn, creating the file if needed,
// and applies pending migrations.
func NewStorages(ctx context.Context, dsn string, logger *logger.Logger) (*Storages, error) {
	logger.Info().Msg("opening consent hint store...")

	db, err := NewConnectSQLite(ctx, dsn, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return &Storages{
		ConsentHints: NewConsentHintRepository(db, logger),
		db:           db,
	}, nil
}

// Close releases the database connection.
func (s *Storages) Close() error {
	return s.db.Close()
}
