// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/MKhiriev/go-consent-sdk/internal/logger"
	"github.com/MKhiriev/go-consent-sdk/models"
)

// TestStorages_SQLite runs the repository against a real database file. It
// is skipped when the sqlite3 driver was built without cgo.
func TestStorages_SQLite(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "hints.db")

	s, err := NewStorages(ctx, dsn, logger.Nop())
	if err != nil {
		t.Skipf("sqlite3 unavailable: %v", err)
	}
	defer s.Close()

	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(time.Hour)

	if err = s.ConsentHints.SaveHint(ctx, models.ConsentHint{ContractID: "c1", LastConsentAt: first}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err = s.ConsentHints.SaveHint(ctx, models.ConsentHint{ContractID: "c1", LastConsentAt: second}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.ConsentHints.GetHint(ctx, "c1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.LastConsentAt.Equal(second) {
		t.Errorf("expected upserted time %v, got %v", second, got.LastConsentAt)
	}

	if err = s.ConsentHints.DeleteHint(ctx, "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err = s.ConsentHints.GetHint(ctx, "c1"); !errors.Is(err, ErrHintNotFound) {
		t.Errorf("expected ErrHintNotFound, got %v", err)
	}
}

func TestFilePath(t *testing.T) {
	tests := map[string]string{
		"hints.db":                    "hints.db",
		"file:hints.db":               "hints.db",
		"file:/tmp/h.db?_journal=WAL": "/tmp/h.db",
	}
	for in, want := range tests {
		if got := filePath(in); got != want {
			t.Errorf("filePath(%q) = %q, want %q", in, got, want)
		}
	}
	if !isMemoryDSN(":memory:") || !isMemoryDSN("file:x?mode=memory") || isMemoryDSN("hints.db") {
		t.Error("isMemoryDSN misclassified a dsn")
	}
}
