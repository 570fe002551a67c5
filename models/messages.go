// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "encoding/json"

// Direction tells whether an [AppMessage] leaves for or arrives from the
// companion application.
type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionInbound  Direction = "inbound"
)

// Actions carried by [AppMessage].
const (
	ActionAuthorize = "authorize"
	ActionCallback  = "callback"
)

// Callback statuses reported by the companion application.
const (
	CallbackGranted = "granted"
	CallbackDenied  = "denied"
	CallbackError   = "error"
)

// AppMessage is one leg of a round trip with the companion application. It
// lives only for the duration of that round trip.
type AppMessage struct {
	Action        string          `json:"action"`
	CorrelationID string          `json:"correlationId"`
	Payload       json.RawMessage `json:"payload,omitempty"`
	Direction     Direction       `json:"direction"`
}

// LaunchRequest is the outbound payload asking the companion to collect
// consent for a contract.
type LaunchRequest struct {
	Action         string `json:"action"`
	AppID          string `json:"appId"`
	ContractID     string `json:"contractId"`
	CorrelationID  string `json:"correlationId"`
	RequestedScope Scope  `json:"requestedScope"`
	ReturnChannel  string `json:"returnChannel"`
	// ClientPublicKey is the base64 public key bundle the companion uses for
	// key agreement and to verify request signatures.
	ClientPublicKey string `json:"clientPublicKey"`
}

// CallbackMessage is the inbound answer of the companion application.
type CallbackMessage struct {
	CorrelationID string `json:"correlationId"`
	Status        string `json:"status"`
	// SessionPayload is a compact JWS signed by the companion; present only
	// when Status is granted.
	SessionPayload string `json:"sessionPayload,omitempty"`
	ErrorCode      string `json:"errorCode,omitempty"`
}

// NewOutboundMessage wraps a launch request into an [AppMessage].
func NewOutboundMessage(req LaunchRequest) (AppMessage, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return AppMessage{}, err
	}
	return AppMessage{
		Action:        req.Action,
		CorrelationID: req.CorrelationID,
		Payload:       payload,
		Direction:     DirectionOutbound,
	}, nil
}

// NewInboundMessage wraps a callback into an [AppMessage].
func NewInboundMessage(cb CallbackMessage) (AppMessage, error) {
	payload, err := json.Marshal(cb)
	if err != nil {
		return AppMessage{}, err
	}
	return AppMessage{
		Action:        ActionCallback,
		CorrelationID: cb.CorrelationID,
		Payload:       payload,
		Direction:     DirectionInbound,
	}, nil
}

// Callback decodes the payload of an inbound message.
func (m AppMessage) Callback() (CallbackMessage, error) {
	var cb CallbackMessage
	if err := json.Unmarshal(m.Payload, &cb); err != nil {
		return CallbackMessage{}, err
	}
	return cb, nil
}

// LaunchRequest decodes the payload of an outbound message.
func (m AppMessage) LaunchRequest() (LaunchRequest, error) {
	var req LaunchRequest
	if err := json.Unmarshal(m.Payload, &req); err != nil {
		return LaunchRequest{}, err
	}
	return req, nil
}
