package server

import "context"

// Server defines the lifecycle contract of the endpoints managed by this
// package.
type Server interface {
	// Run serves every endpoint until ctx is done or one of them fails, then
	// shuts all of them down.
	Run(ctx context.Context) error

	// Addr returns the bound address of the named endpoint.
	Addr(name string) string
}
