package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/MKhiriev/go-consent-sdk/internal/crypto"
	"github.com/MKhiriev/go-consent-sdk/internal/logger"
	"github.com/MKhiriev/go-consent-sdk/internal/mock"
	"github.com/MKhiriev/go-consent-sdk/internal/utils"
	"github.com/MKhiriev/go-consent-sdk/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	testAppID   = "app-1"
	testCorrID  = "corr-1"
	testTimeout = 5 * time.Second
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

type fixture struct {
	mgr       *manager
	comm      *mock.MockCommunicator
	client    crypto.KeyPair
	companion crypto.KeyPair
	now       time.Time
	outcomes  []Outcome
}

func newFixture(t *testing.T, ctrl *gomock.Controller) *fixture {
	t.Helper()
	client, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	companion, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	f := &fixture{
		comm:      mock.NewMockCommunicator(ctrl),
		client:    client,
		companion: companion,
		now:       time.Now().Truncate(time.Second),
	}
	cfg := Config{
		AppID:               testAppID,
		ReturnChannel:       "http://127.0.0.1:9100/callback",
		Timeout:             testTimeout,
		CompanionSigningKey: companion.SigningPublic,
	}
	f.mgr = NewManager(cfg, f.comm, crypto.NewService(client), logger.Nop(),
		WithIDGenerator(fixedID(testCorrID)),
		WithClock(func() time.Time { return f.now }),
		OnComplete(func(o Outcome) { f.outcomes = append(f.outcomes, o) }),
	).(*manager)
	return f
}

func (f *fixture) grantedClaims(contractID string) utils.SessionClaims {
	return utils.SessionClaims{
		ContractID:   contractID,
		SessionKey:   "session-xyz",
		AgreementKey: base64.StdEncoding.EncodeToString(f.companion.AgreementPublic[:]),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   testCorrID,
			Audience:  jwt.ClaimStrings{testAppID},
			IssuedAt:  jwt.NewNumericDate(f.now),
			ExpiresAt: jwt.NewNumericDate(f.now.Add(time.Hour)),
		},
	}
}

func (f *fixture) callback(t *testing.T, cb models.CallbackMessage) models.AppMessage {
	t.Helper()
	msg, err := models.NewInboundMessage(cb)
	require.NoError(t, err)
	return msg
}

func (f *fixture) granted(t *testing.T, claims utils.SessionClaims, signer crypto.KeyPair) models.AppMessage {
	t.Helper()
	token, err := utils.SignSessionToken(claims, signer.SigningPrivate)
	require.NoError(t, err)
	return f.callback(t, models.CallbackMessage{CorrelationID: testCorrID, Status: models.CallbackGranted, SessionPayload: token})
}

func (f *fixture) expectSend() {
	f.comm.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, msg models.AppMessage) error {
			return nil
		},
	)
}

// Scenario A: the user approves within the window.
func TestAuthorize_Granted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl)
	ctx := context.Background()
	scope := models.Scope{ServiceTypes: []models.ServiceType{{ID: 1}, {ID: 2}}}

	gomock.InOrder(
		f.comm.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, msg models.AppMessage) error {
				assert.Equal(t, models.DirectionOutbound, msg.Direction)
				req, err := msg.LaunchRequest()
				require.NoError(t, err)
				assert.Equal(t, models.ActionAuthorize, req.Action)
				assert.Equal(t, testAppID, req.AppID)
				assert.Equal(t, "contract-123", req.ContractID)
				assert.Equal(t, testCorrID, req.CorrelationID)
				assert.Equal(t, scope, req.RequestedScope)
				assert.Equal(t, f.client.Public().Encode(), req.ClientPublicKey)

				id, ok := utils.GetCorrelationIDFromContext(ctx)
				assert.True(t, ok)
				assert.Equal(t, testCorrID, id)

				assert.Equal(t, models.StateAwaitingCompanionLaunch, f.mgr.State())
				return nil
			},
		),
		f.comm.EXPECT().AwaitCallback(gomock.Any(), testCorrID, testTimeout).DoAndReturn(
			func(context.Context, string, time.Duration) (models.AppMessage, error) {
				assert.Equal(t, models.StateAwaitingCallback, f.mgr.State())
				return f.granted(t, f.grantedClaims("contract-123"), f.companion), nil
			},
		),
	)

	outcome, err := f.mgr.Authorize(ctx, "contract-123", scope)
	require.NoError(t, err)

	assert.Equal(t, models.StateAuthorized, outcome.State)
	assert.Equal(t, "contract-123", outcome.Session.ContractID)
	assert.Equal(t, "session-xyz", outcome.Session.SessionKey)
	assert.Equal(t, f.now.Add(time.Hour).Unix(), outcome.Session.ExpiresAt.Unix())
	require.NotNil(t, outcome.Key)
	assert.Equal(t, models.StateAuthorized, f.mgr.State())
	_, live := f.mgr.Current()
	assert.False(t, live, "terminal request must be dropped")

	// the companion derives the same key from its side
	companionKey, err := crypto.DeriveSessionKey(f.companion.AgreementPrivate, f.client.AgreementPublic, "session-xyz", "contract-123")
	require.NoError(t, err)
	env, err := crypto.NewService(f.companion).Encrypt(ctx, []byte(`{"ok":true}`), companionKey)
	require.NoError(t, err)
	plain, err := crypto.NewService(f.client).Decrypt(ctx, env, outcome.Key, f.companion.SigningPublic)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(plain))

	require.Len(t, f.outcomes, 1)
	assert.Equal(t, models.StateAuthorized, f.outcomes[0].State)
}

// Scenario B: the companion is not installed.
func TestAuthorize_CompanionUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl)

	f.comm.EXPECT().Send(gomock.Any(), gomock.Any()).Return(models.ErrCompanionAppUnavailable)
	// AwaitCallback must not be called: gomock fails on unexpected calls.

	outcome, err := f.mgr.Authorize(context.Background(), "contract-123", models.Scope{})
	require.ErrorIs(t, err, models.ErrCompanionAppUnavailable)
	assert.Equal(t, models.StateFailed, outcome.State)
	assert.Nil(t, outcome.Key)
	assert.Equal(t, models.StateFailed, f.mgr.State())
}

func TestAuthorize_SendErrorIsUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl)

	f.comm.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("duplicate"))

	_, err := f.mgr.Authorize(context.Background(), "contract-123", models.Scope{})
	assert.ErrorIs(t, err, models.ErrCompanionAppUnavailable)
}

// Scenario C: no callback before the timeout.
func TestAuthorize_TimedOut(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl)

	f.expectSend()
	f.comm.EXPECT().AwaitCallback(gomock.Any(), testCorrID, testTimeout).Return(models.AppMessage{}, models.ErrAuthorizationTimedOut)

	outcome, err := f.mgr.Authorize(context.Background(), "contract-123", models.Scope{})
	require.ErrorIs(t, err, models.ErrAuthorizationTimedOut)
	assert.Equal(t, models.StateTimedOut, outcome.State)
	assert.Equal(t, models.Session{}, outcome.Session)
	assert.Nil(t, outcome.Key)
}

func TestAuthorize_CallbackOutcomes(t *testing.T) {
	tests := []struct {
		name      string
		build     func(t *testing.T, f *fixture) models.AppMessage
		wantState models.AuthorizationState
		wantErr   error
	}{
		{
			name: "denied",
			build: func(t *testing.T, f *fixture) models.AppMessage {
				return f.callback(t, models.CallbackMessage{CorrelationID: testCorrID, Status: models.CallbackDenied})
			},
			wantState: models.StateDenied,
			wantErr:   models.ErrUserDenied,
		},
		{
			name: "signed by another key",
			build: func(t *testing.T, f *fixture) models.AppMessage {
				other, err := crypto.GenerateKeyPair()
				require.NoError(t, err)
				return f.granted(t, f.grantedClaims("contract-123"), other)
			},
			wantState: models.StateFailed,
			wantErr:   models.ErrInvalidCallback,
		},
		{
			name: "other contract",
			build: func(t *testing.T, f *fixture) models.AppMessage {
				return f.granted(t, f.grantedClaims("contract-999"), f.companion)
			},
			wantState: models.StateFailed,
			wantErr:   models.ErrInvalidCallback,
		},
		{
			name: "expired token",
			build: func(t *testing.T, f *fixture) models.AppMessage {
				c := f.grantedClaims("contract-123")
				c.IssuedAt = jwt.NewNumericDate(f.now.Add(-2 * time.Hour))
				c.ExpiresAt = jwt.NewNumericDate(f.now.Add(-time.Hour))
				return f.granted(t, c, f.companion)
			},
			wantState: models.StateFailed,
			wantErr:   models.ErrInvalidCallback,
		},
		{
			name: "bad agreement key",
			build: func(t *testing.T, f *fixture) models.AppMessage {
				c := f.grantedClaims("contract-123")
				c.AgreementKey = "not-a-key"
				return f.granted(t, c, f.companion)
			},
			wantState: models.StateFailed,
			wantErr:   models.ErrInvalidCallback,
		},
		{
			name: "garbage payload",
			build: func(t *testing.T, f *fixture) models.AppMessage {
				return f.callback(t, models.CallbackMessage{CorrelationID: testCorrID, Status: models.CallbackGranted, SessionPayload: "garbage"})
			},
			wantState: models.StateFailed,
			wantErr:   models.ErrInvalidCallback,
		},
		{
			name: "unknown status",
			build: func(t *testing.T, f *fixture) models.AppMessage {
				return f.callback(t, models.CallbackMessage{CorrelationID: testCorrID, Status: "maybe"})
			},
			wantState: models.StateFailed,
			wantErr:   models.ErrInvalidCallback,
		},
		{
			name: "correlation mismatch",
			build: func(t *testing.T, f *fixture) models.AppMessage {
				return f.callback(t, models.CallbackMessage{CorrelationID: "corr-other", Status: models.CallbackDenied})
			},
			wantState: models.StateFailed,
			wantErr:   models.ErrInvalidCallback,
		},
		{
			name: "malformed payload",
			build: func(t *testing.T, f *fixture) models.AppMessage {
				return models.AppMessage{Action: models.ActionCallback, CorrelationID: testCorrID, Payload: []byte("{"), Direction: models.DirectionInbound}
			},
			wantState: models.StateFailed,
			wantErr:   models.ErrInvalidCallback,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()
			f := newFixture(t, ctrl)

			f.expectSend()
			f.comm.EXPECT().AwaitCallback(gomock.Any(), testCorrID, testTimeout).Return(tt.build(t, f), nil)

			outcome, err := f.mgr.Authorize(context.Background(), "contract-123", models.Scope{})
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantState, outcome.State)
			assert.Nil(t, outcome.Key)
		})
	}
}

func TestAuthorize_CompanionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl)

	f.expectSend()
	f.comm.EXPECT().AwaitCallback(gomock.Any(), testCorrID, testTimeout).Return(
		f.callback(t, models.CallbackMessage{CorrelationID: testCorrID, Status: models.CallbackError, ErrorCode: "ContractNotFound"}), nil)

	outcome, err := f.mgr.Authorize(context.Background(), "contract-123", models.Scope{})

	var companionErr *models.CompanionError
	require.ErrorAs(t, err, &companionErr)
	assert.Equal(t, "ContractNotFound", companionErr.Code)
	assert.Equal(t, models.StateFailed, outcome.State)
}

// A second Authorize while the first is live fails without touching state.
func TestAuthorize_SingleFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl)

	waiting := make(chan struct{})
	release := make(chan struct{})

	f.expectSend()
	f.comm.EXPECT().AwaitCallback(gomock.Any(), testCorrID, testTimeout).DoAndReturn(
		func(context.Context, string, time.Duration) (models.AppMessage, error) {
			close(waiting)
			<-release
			return f.callback(t, models.CallbackMessage{CorrelationID: testCorrID, Status: models.CallbackDenied}), nil
		},
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := f.mgr.Authorize(context.Background(), "contract-123", models.Scope{})
		assert.ErrorIs(t, err, models.ErrUserDenied)
	}()

	<-waiting
	_, err := f.mgr.Authorize(context.Background(), "contract-456", models.Scope{})
	require.ErrorIs(t, err, models.ErrConcurrentAuthorization)

	req, live := f.mgr.Current()
	require.True(t, live)
	assert.Equal(t, "contract-123", req.ContractID)
	assert.Equal(t, models.StateAwaitingCallback, f.mgr.State())

	close(release)
	wg.Wait()

	assert.Equal(t, models.StateDenied, f.mgr.State())
	assert.Len(t, f.outcomes, 1, "the rejected call must not report an outcome")
}

func TestAuthorize_Cancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl)

	waiting := make(chan struct{})
	cancelled := make(chan struct{})

	f.expectSend()
	f.comm.EXPECT().AwaitCallback(gomock.Any(), testCorrID, testTimeout).DoAndReturn(
		func(context.Context, string, time.Duration) (models.AppMessage, error) {
			close(waiting)
			<-cancelled
			return models.AppMessage{}, models.ErrAuthorizationCancelled
		},
	)
	f.comm.EXPECT().Cancel(testCorrID).Do(func(string) { close(cancelled) })

	done := make(chan Outcome)
	go func() {
		outcome, _ := f.mgr.Authorize(context.Background(), "contract-123", models.Scope{})
		done <- outcome
	}()

	<-waiting
	assert.True(t, f.mgr.Cancel())
	outcome := <-done

	assert.Equal(t, models.StateCancelled, outcome.State)
	assert.ErrorIs(t, outcome.Err, models.ErrAuthorizationCancelled)
	assert.False(t, f.mgr.Cancel(), "nothing left to cancel")
}

func TestAuthorize_ContextCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl)

	f.expectSend()
	f.comm.EXPECT().AwaitCallback(gomock.Any(), testCorrID, testTimeout).Return(models.AppMessage{}, context.Canceled)

	outcome, err := f.mgr.Authorize(context.Background(), "contract-123", models.Scope{})
	require.ErrorIs(t, err, models.ErrAuthorizationCancelled)
	assert.Equal(t, models.StateCancelled, outcome.State)
}

// A new flow may start once the previous one reached a terminal state.
func TestAuthorize_AfterTerminal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl)

	f.comm.EXPECT().Send(gomock.Any(), gomock.Any()).Return(models.ErrCompanionAppUnavailable)
	f.expectSend()
	f.comm.EXPECT().AwaitCallback(gomock.Any(), testCorrID, testTimeout).Return(
		f.granted(t, f.grantedClaims("contract-123"), f.companion), nil)

	_, err := f.mgr.Authorize(context.Background(), "contract-123", models.Scope{})
	require.ErrorIs(t, err, models.ErrCompanionAppUnavailable)

	outcome, err := f.mgr.Authorize(context.Background(), "contract-123", models.Scope{})
	require.NoError(t, err)
	assert.Equal(t, models.StateAuthorized, outcome.State)
	assert.Len(t, f.outcomes, 2)
}

func TestAuthorize_EmptyContract(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t, ctrl)

	_, err := f.mgr.Authorize(context.Background(), "", models.Scope{})
	assert.ErrorIs(t, err, errEmptyContractID)
	assert.Equal(t, models.StateIdle, f.mgr.State())
}
