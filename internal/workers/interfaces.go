// Package workers runs independent units of work with bounded concurrency.
// It is used to download the files of a session in parallel while reporting
// every failure instead of stopping at the first one.
package workers

import "context"

// Worker is one unit of work. Run should return promptly once ctx is done.
//
// Example implementation:
//
//	type download struct{ id string }
//
//	func (d download) Run(ctx context.Context) error {
//	    // fetch d.id
//	}
type Worker interface {
	Run(ctx context.Context) error
}

// WorkerFunc adapts a function to [Worker].
type WorkerFunc func(ctx context.Context) error

// Run implements [Worker].
func (f WorkerFunc) Run(ctx context.Context) error {
	return f(ctx)
}
