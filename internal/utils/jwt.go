package utils

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the body of the signed session token the companion
// application returns with a granted callback.
//
//	sub = correlation ID of the authorization flow
//	aud = application ID of the requesting client
type SessionClaims struct {
	ContractID string `json:"contract_id"`
	// SessionKey is the opaque session identifier, not key material.
	SessionKey string `json:"session_key"`
	// AgreementKey is the companion's base64 X25519 public key for this
	// session.
	AgreementKey string `json:"agreement_key"`
	jwt.RegisteredClaims
}

var (
	errEmptyParams    = errors.New("invalid params for signing session token")
	errMissingClaim   = errors.New("session token is missing a required claim")
	errInvalidSignKey = errors.New("invalid ed25519 key")
)

// SignSessionToken signs claims with an Ed25519 key (JWS alg EdDSA).
//
// Example usage:
//
//	token, err := utils.SignSessionToken(claims, companionKey)
func SignSessionToken(claims SessionClaims, key ed25519.PrivateKey) (string, error) {
	if len(key) != ed25519.PrivateKeySize {
		return "", errInvalidSignKey
	}
	if claims.ContractID == "" || claims.SessionKey == "" || claims.ExpiresAt == nil {
		return "", errEmptyParams
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, &claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("error occurred during signing session token: %w", err)
	}
	return signed, nil
}

// ParseSessionToken validates tokenString and returns its claims.
//
// Validation includes:
//   - EdDSA signature against key (no other algorithm is accepted)
//   - exp present and in the future, iat not in the future
//   - aud contains audience, sub equals subject
//   - contract_id, session_key and agreement_key present
//
// now may be nil, in which case the wall clock is used.
func ParseSessionToken(tokenString string, key ed25519.PublicKey, audience, subject string, now func() time.Time) (*SessionClaims, error) {
	if len(key) != ed25519.PublicKeySize {
		return nil, errInvalidSignKey
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithAudience(audience),
		jwt.WithSubject(subject),
	}
	if now != nil {
		opts = append(opts, jwt.WithTimeFunc(now))
	}

	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error occurred validating and parsing session token: %w", err)
	}

	if claims.ContractID == "" || claims.SessionKey == "" || claims.AgreementKey == "" {
		return nil, errMissingClaim
	}

	return claims, nil
}
