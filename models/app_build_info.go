// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// SDKInfo carries build-time metadata of the SDK.
//
// Values are injected by linker flags in release builds. Version is sent to
// the data service with every request so it can reject unsupported SDKs.
type SDKInfo struct {
	version string
	date    string
	commit  string
}

// NewSDKInfo constructs [SDKInfo]; empty values are reported as "N/A".
func NewSDKInfo(version, date, commit string) SDKInfo {
	return SDKInfo{
		version: orNA(version),
		date:    orNA(date),
		commit:  orNA(commit),
	}
}

// Version returns the semantic version of the build.
func (s SDKInfo) Version() string {
	return s.version
}

// Date returns the build timestamp.
func (s SDKInfo) Date() string {
	return s.date
}

// Commit returns the source-control commit of the build.
func (s SDKInfo) Commit() string {
	return s.commit
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}
