// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-consent-sdk/models"
)

const consentHintsTable = "consent_hints"

// sqlite uses ? placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func buildSaveHintQuery(hint models.ConsentHint) (string, []any, error) {
	return psql.Insert(consentHintsTable).
		Columns("contract_id", "last_consent_at").
		Values(hint.ContractID, hint.LastConsentAt.UTC().UnixMilli()).
		Suffix("ON CONFLICT (contract_id) DO UPDATE SET last_consent_at = excluded.last_consent_at").
		ToSql()
}

func buildGetHintQuery(contractID string) (string, []any, error) {
	return psql.Select("contract_id", "last_consent_at").
		From(consentHintsTable).
		Where(sq.Eq{"contract_id": contractID}).
		ToSql()
}

func buildListHintsQuery() (string, []any, error) {
	return psql.Select("contract_id", "last_consent_at").
		From(consentHintsTable).
		OrderBy("contract_id").
		ToSql()
}

func buildDeleteHintQuery(contractID string) (string, []any, error) {
	return psql.Delete(consentHintsTable).
		Where(sq.Eq{"contract_id": contractID}).
		ToSql()
}
