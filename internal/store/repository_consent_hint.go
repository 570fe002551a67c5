package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-consent-sdk/internal/logger"
	"github.com/MKhiriev/go-consent-sdk/models"
)

type consentHintRepository struct {
	db     *DB
	logger *logger.Logger
}

func NewConsentHintRepository(db *DB, logger *logger.Logger) ConsentHintRepository {
	return &consentHintRepository{db: db, logger: logger}
}

func (r *consentHintRepository) SaveHint(ctx context.Context, hint models.ConsentHint) error {
	query, args, err := buildSaveHintQuery(hint)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).
			Str("func", "consentHintRepository.SaveHint").
			Str("contract_id", hint.ContractID).
			Msg("failed to upsert consent hint")
		return fmt.Errorf("%w: save consent hint: %v", ErrExecutingQuery, err)
	}
	return nil
}

func (r *consentHintRepository) GetHint(ctx context.Context, contractID string) (models.ConsentHint, error) {
	query, args, err := buildGetHintQuery(contractID)
	if err != nil {
		return models.ConsentHint{}, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	hint, err := scanHint(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.ConsentHint{}, ErrHintNotFound
	}
	if err != nil {
		r.logger.Err(err).
			Str("func", "consentHintRepository.GetHint").
			Str("contract_id", contractID).
			Msg("failed to read consent hint")
		return models.ConsentHint{}, fmt.Errorf("%w: %v", ErrScanningRow, err)
	}
	return hint, nil
}

func (r *consentHintRepository) ListHints(ctx context.Context) ([]models.ConsentHint, error) {
	query, args, err := buildListHintsQuery()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Err(err).Str("func", "consentHintRepository.ListHints").Msg("failed to query consent hints")
		return nil, fmt.Errorf("%w: %v", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var hints []models.ConsentHint
	for rows.Next() {
		hint, err := scanHint(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrScanningRows, err)
		}
		hints = append(hints, hint)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScanningRows, err)
	}
	return hints, nil
}

func (r *consentHintRepository) DeleteHint(ctx context.Context, contractID string) error {
	query, args, err := buildDeleteHintQuery(contractID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBuildingSQLQuery, err)
	}

	if _, err = r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Err(err).
			Str("func", "consentHintRepository.DeleteHint").
			Str("contract_id", contractID).
			Msg("failed to delete consent hint")
		return fmt.Errorf("%w: delete consent hint: %v", ErrExecutingQuery, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHint(s scanner) (models.ConsentHint, error) {
	var (
		hint   models.ConsentHint
		millis int64
	)
	if err := s.Scan(&hint.ContractID, &millis); err != nil {
		return models.ConsentHint{}, err
	}
	hint.LastConsentAt = time.UnixMilli(millis).UTC()
	return hint, nil
}
