// Package http implements the HTTP callback receiver of the consent SDK.
//
// The companion application answers an authorization request by POSTing a
// callback to the host application's return channel. This package exposes
// the chi router for that endpoint, decodes and validates the callback and
// hands it to the app communicator. Correlation tagging and access logging
// are applied as middleware before the handler runs.
package http
