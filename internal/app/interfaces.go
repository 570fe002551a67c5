// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app wires the consent client into a runnable host process: the
// callback and metrics listeners plus an optional one-shot consent run.
package app

import "context"

// Runner defines the minimal lifecycle contract for runnable applications.
type Runner interface {
	// Run starts the application and blocks until ctx is done or a listener
	// fails.
	Run(ctx context.Context) error
}
