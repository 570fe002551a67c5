package validators

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/MKhiriev/go-consent-sdk/internal/crypto"
	"github.com/MKhiriev/go-consent-sdk/models"
)

// Field name constants used to restrict validation to a subset of fields.
const (
	// FieldAction targets the action of a launch request.
	FieldAction = "action"

	// FieldAppID targets the identifier of the host application.
	FieldAppID = "app_id"

	// FieldContractID targets the contract the consent is asked for.
	FieldContractID = "contract_id"

	// FieldCorrelationID targets the identifier pairing a launch with its callback.
	FieldCorrelationID = "correlation_id"

	// FieldReturnChannel targets the address the callback must be sent to.
	FieldReturnChannel = "return_channel"

	// FieldClientPublicKey targets the encoded key bundle of the SDK.
	FieldClientPublicKey = "client_public_key"

	// FieldScope targets the requested scope.
	FieldScope = "scope"

	// FieldSessionKey targets the session identifier of a fetch request.
	FieldSessionKey = "session_key"

	// FieldEncryptedPayload targets the base64 ciphertext of a fetch request.
	FieldEncryptedPayload = "encrypted_payload"

	// FieldSignature targets the base64 signature of a fetch request.
	FieldSignature = "signature"
)

var (
	launchFields = []string{FieldAction, FieldAppID, FieldContractID, FieldCorrelationID, FieldClientPublicKey, FieldScope}
	fetchFields  = []string{FieldSessionKey, FieldEncryptedPayload, FieldSignature}
)

// MessageValidator validates launch requests, fetch requests and scopes.
type MessageValidator struct {
}

// NewMessageValidator returns a [Validator] for the consent wire messages.
func NewMessageValidator() Validator {
	return &MessageValidator{}
}

// Validate implements [Validator]. Without fields every field of the value is
// checked.
func (v *MessageValidator) Validate(ctx context.Context, obj any, fields ...string) error {
	switch value := obj.(type) {
	case models.LaunchRequest:
		return v.validateLaunchRequest(ctx, value, fields...)
	case *models.LaunchRequest:
		return v.validateLaunchRequest(ctx, *value, fields...)

	case models.FetchRequest:
		return v.validateFetchRequest(ctx, value, fields...)
	case *models.FetchRequest:
		return v.validateFetchRequest(ctx, *value, fields...)

	case models.Scope:
		return validateScope(value)
	case *models.Scope:
		return validateScope(*value)

	default:
		return ErrUnsupportedType
	}
}

func (v *MessageValidator) validateLaunchRequest(_ context.Context, req models.LaunchRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = launchFields
	}

	for _, field := range fields {
		switch field {
		case FieldAction:
			if req.Action != models.ActionAuthorize {
				return fmt.Errorf("%w: %q", ErrInvalidAction, req.Action)
			}
		case FieldAppID:
			if req.AppID == "" {
				return ErrEmptyAppID
			}
		case FieldContractID:
			if req.ContractID == "" {
				return ErrEmptyContractID
			}
		case FieldCorrelationID:
			if req.CorrelationID == "" {
				return ErrEmptyCorrelationID
			}
		case FieldReturnChannel:
			if req.ReturnChannel == "" {
				return ErrEmptyReturnChannel
			}
		case FieldClientPublicKey:
			if _, err := crypto.ParsePublicKey(req.ClientPublicKey); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidClientPublicKey, err)
			}
		case FieldScope:
			if err := validateScope(req.RequestedScope); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
	}
	return nil
}

func (v *MessageValidator) validateFetchRequest(_ context.Context, req models.FetchRequest, fields ...string) error {
	if len(fields) == 0 {
		fields = fetchFields
	}

	for _, field := range fields {
		switch field {
		case FieldSessionKey:
			if req.SessionKey == "" {
				return ErrEmptySessionKey
			}
		case FieldEncryptedPayload:
			if err := isBase64(req.EncryptedPayload); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidEncoding, field, err)
			}
		case FieldSignature:
			if err := isBase64(req.Signature); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalidEncoding, field, err)
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
	}
	return nil
}

// validateScope rejects zero service ids and inverted time windows. A zero
// Scope is valid and means everything the contract allows.
func validateScope(s models.Scope) error {
	for _, st := range s.ServiceTypes {
		if st.ID == 0 {
			return fmt.Errorf("%w: id is required", ErrInvalidServiceType)
		}
	}
	if tr := s.TimeRange; tr != nil {
		if !tr.From.IsZero() && !tr.To.IsZero() && tr.To.Before(tr.From) {
			return fmt.Errorf("%w: to %s is before from %s", ErrInvalidTimeRange, tr.To, tr.From)
		}
	}
	return nil
}

func isBase64(s string) error {
	if s == "" {
		return errEmptyValue
	}
	_, err := base64.StdEncoding.DecodeString(s)
	return err
}
