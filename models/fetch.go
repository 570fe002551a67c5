package models

import "encoding/json"

// Query is a data request issued within a session.
type Query struct {
	// Kind names the data set (for example "fitness", "accounts").
	Kind string `json:"kind"`
	// Parameters are forwarded to the data service unchanged.
	Parameters map[string]any `json:"parameters,omitempty"`
	// SideEffects marks a query that is not safe to repeat. Such queries are
	// never retried after a network failure.
	SideEffects bool `json:"-"`
}

// FetchRequest is the wire body of a session-scoped request. Both byte fields
// are standard base64.
type FetchRequest struct {
	SessionKey       string `json:"sessionKey"`
	EncryptedPayload string `json:"encryptedPayload"`
	Signature        string `json:"signature"`
}

// FetchResponse is the wire body returned by the data service.
type FetchResponse struct {
	EncryptedPayload string `json:"encryptedPayload"`
	Signature        string `json:"signature"`
}

// APIErrorResponse is the error body returned with non-2xx statuses.
type APIErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Payload is decrypted response data.
type Payload []byte

// Unmarshal decodes a JSON payload into v.
func (p Payload) Unmarshal(v any) error {
	return json.Unmarshal(p, v)
}
