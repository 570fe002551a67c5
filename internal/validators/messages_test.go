// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package validators

import (
	"context"
	"testing"
	"time"

	"github.com/MKhiriev/go-consent-sdk/internal/crypto"
	"github.com/MKhiriev/go-consent-sdk/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func validLaunchRequest(t *testing.T) models.LaunchRequest {
	t.Helper()
	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	return models.LaunchRequest{
		Action:          models.ActionAuthorize,
		AppID:           "app-1",
		ContractID:      "contract-1",
		CorrelationID:   "corr-1",
		ReturnChannel:   "http://127.0.0.1:8081/v1/callback",
		ClientPublicKey: kp.Public().Encode(),
		RequestedScope:  models.Scope{ServiceTypes: []models.ServiceType{{ID: 1}}},
	}
}

func validFetchRequest() models.FetchRequest {
	return models.FetchRequest{SessionKey: "s1", EncryptedPayload: "Y2lwaGVy", Signature: "c2ln"}
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

func TestValidate_Dispatch(t *testing.T) {
	v := NewMessageValidator()
	req := validLaunchRequest(t)
	fetch := validFetchRequest()

	assert.NoError(t, v.Validate(context.Background(), req))
	assert.NoError(t, v.Validate(context.Background(), &req))
	assert.NoError(t, v.Validate(context.Background(), fetch))
	assert.NoError(t, v.Validate(context.Background(), &fetch))
	assert.NoError(t, v.Validate(context.Background(), models.Scope{}))
	assert.ErrorIs(t, v.Validate(context.Background(), "text"), ErrUnsupportedType)
}

// ---------------------------------------------------------------------------
// LaunchRequest
// ---------------------------------------------------------------------------

func TestValidate_LaunchRequest(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(r *models.LaunchRequest)
		wantErr error
	}{
		{"wrong action", func(r *models.LaunchRequest) { r.Action = models.ActionCallback }, ErrInvalidAction},
		{"no app id", func(r *models.LaunchRequest) { r.AppID = "" }, ErrEmptyAppID},
		{"no contract", func(r *models.LaunchRequest) { r.ContractID = "" }, ErrEmptyContractID},
		{"no correlation id", func(r *models.LaunchRequest) { r.CorrelationID = "" }, ErrEmptyCorrelationID},
		{"bad public key", func(r *models.LaunchRequest) { r.ClientPublicKey = "not-a-key" }, ErrInvalidClientPublicKey},
		{"zero service id", func(r *models.LaunchRequest) {
			r.RequestedScope.ServiceTypes = []models.ServiceType{{ID: 0}}
		}, ErrInvalidServiceType},
		{"inverted time range", func(r *models.LaunchRequest) {
			r.RequestedScope.TimeRange = &models.TimeRange{From: from, To: from.Add(-time.Hour)}
		}, ErrInvalidTimeRange},
	}

	v := NewMessageValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validLaunchRequest(t)
			tt.mutate(&req)
			assert.ErrorIs(t, v.Validate(context.Background(), req), tt.wantErr)
		})
	}
}

func TestValidate_LaunchRequest_FieldScoping(t *testing.T) {
	v := NewMessageValidator()
	req := validLaunchRequest(t)
	req.ReturnChannel = ""
	req.AppID = ""

	// return channel is optional unless asked for
	assert.ErrorIs(t, v.Validate(context.Background(), req), ErrEmptyAppID)
	assert.NoError(t, v.Validate(context.Background(), req, FieldContractID, FieldCorrelationID))
	assert.ErrorIs(t, v.Validate(context.Background(), req, FieldReturnChannel), ErrEmptyReturnChannel)
	assert.ErrorIs(t, v.Validate(context.Background(), req, "nope"), ErrUnknownField)
}

// ---------------------------------------------------------------------------
// FetchRequest
// ---------------------------------------------------------------------------

func TestValidate_FetchRequest(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *models.FetchRequest)
		wantErr error
	}{
		{"no session key", func(r *models.FetchRequest) { r.SessionKey = "" }, ErrEmptySessionKey},
		{"empty payload", func(r *models.FetchRequest) { r.EncryptedPayload = "" }, ErrInvalidEncoding},
		{"payload not base64", func(r *models.FetchRequest) { r.EncryptedPayload = "%%%" }, ErrInvalidEncoding},
		{"signature not base64", func(r *models.FetchRequest) { r.Signature = "!" }, ErrInvalidEncoding},
	}

	v := NewMessageValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validFetchRequest()
			tt.mutate(&req)
			assert.ErrorIs(t, v.Validate(context.Background(), req), tt.wantErr)
		})
	}
}

// ---------------------------------------------------------------------------
// Scope
// ---------------------------------------------------------------------------

func TestValidate_Scope_OpenTimeRange(t *testing.T) {
	v := NewMessageValidator()
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, v.Validate(context.Background(), models.Scope{TimeRange: &models.TimeRange{From: from}}))
	assert.NoError(t, v.Validate(context.Background(), &models.Scope{TimeRange: &models.TimeRange{To: from}}))
}
