package models

import "time"

// ConsentHint remembers when the user last granted a contract. It is a hint
// for the host application only and never replaces an authorization.
type ConsentHint struct {
	ContractID    string    `json:"contractId"`
	LastConsentAt time.Time `json:"lastConsentTimestamp"`
}
