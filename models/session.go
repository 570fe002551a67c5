package models

import "time"

// Session is the result of a successful authorization. It is immutable; a new
// authorization replaces it wholesale.
type Session struct {
	// SessionKey is the opaque session identifier issued by the companion.
	// It is sent with every data request and is not secret key material.
	SessionKey string    `json:"sessionKey"`
	ContractID string    `json:"contractId"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// ValidAt reports whether the session may be used at now.
func (s Session) ValidAt(now time.Time) bool {
	return s.SessionKey != "" && now.Before(s.ExpiresAt)
}
