// Package server runs the HTTP endpoints of the sample binaries: the callback
// receiver and metrics of the host, and the companion simulator.
//
// It provides startup, signal-driven cancellation and graceful shutdown of
// every configured endpoint.
package server
