// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// AuthorizationState is the position of an authorization flow in its state
// machine.
type AuthorizationState int

const (
	StateIdle AuthorizationState = iota
	StateAwaitingCompanionLaunch
	StateAwaitingUserConsent
	StateAwaitingCallback
	StateAuthorized
	StateDenied
	StateFailed
	StateTimedOut
	StateCancelled
)

var stateNames = map[AuthorizationState]string{
	StateIdle:                    "idle",
	StateAwaitingCompanionLaunch: "awaiting_companion_launch",
	StateAwaitingUserConsent:     "awaiting_user_consent",
	StateAwaitingCallback:        "awaiting_callback",
	StateAuthorized:              "authorized",
	StateDenied:                  "denied",
	StateFailed:                  "failed",
	StateTimedOut:                "timed_out",
	StateCancelled:               "cancelled",
}

func (s AuthorizationState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition can leave s.
func (s AuthorizationState) Terminal() bool {
	return s >= StateAuthorized
}

// ServiceType selects one data source and, optionally, a subset of its object
// types.
type ServiceType struct {
	ID          uint   `json:"id"`
	ObjectTypes []uint `json:"serviceObjectTypes,omitempty"`
}

// TimeRange limits the requested data to a time window.
type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Scope is the subset of a contract the host application asks the user to
// consent to. A zero Scope requests everything the contract allows.
type Scope struct {
	ServiceTypes []ServiceType `json:"serviceTypes,omitempty"`
	TimeRange    *TimeRange    `json:"timeRange,omitempty"`
}

// AuthorizationRequest is the single live authorization flow of a client.
type AuthorizationRequest struct {
	ContractID    string
	Scope         Scope
	CorrelationID string
	State         AuthorizationState
}
