// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// countingWorker tracks how many times Run was called.
type countingWorker struct {
	runCount atomic.Int32
	err      error
}

func (m *countingWorker) Run(context.Context) error {
	m.runCount.Add(1)
	return m.err
}

func TestWorkers_Run_AllWorkersAreCalled(t *testing.T) {
	w1, w2, w3 := &countingWorker{}, &countingWorker{}, &countingWorker{}

	ws := New(2, w1, w2, w3)
	if err := ws.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, w := range []*countingWorker{w1, w2, w3} {
		if got := w.runCount.Load(); got != 1 {
			t.Errorf("worker[%d]: expected runCount=1, got %d", i, got)
		}
	}
}

func TestWorkers_Run_Empty(t *testing.T) {
	if err := New(0).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWorkers_Run_ErrorsAreJoined(t *testing.T) {
	errA := errors.New("a failed")
	errB := errors.New("b failed")
	ok := &countingWorker{}

	ws := New(1, &countingWorker{err: errA}, ok, &countingWorker{err: errB})
	err := ws.Run(context.Background())

	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected both errors, got %v", err)
	}
	if ok.runCount.Load() != 1 {
		t.Error("a failure must not stop the remaining workers")
	}
}

func TestWorkers_Run_RespectsLimit(t *testing.T) {
	const limit = 3
	var running, peak atomic.Int32

	ws := New(limit)
	for i := 0; i < 12; i++ {
		ws.Add(WorkerFunc(func(context.Context) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return nil
		}))
	}

	if ws.Len() != 12 {
		t.Fatalf("expected 12 workers, got %d", ws.Len())
	}
	if err := ws.Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := peak.Load(); got > limit {
		t.Errorf("expected at most %d concurrent workers, saw %d", limit, got)
	}
}

func TestWorkers_Run_CancelledSkipsPending(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var started atomic.Int32
	var once sync.Once

	ws := New(1)
	for i := 0; i < 5; i++ {
		ws.Add(WorkerFunc(func(context.Context) error {
			started.Add(1)
			once.Do(cancel)
			return nil
		}))
	}

	err := ws.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := started.Load(); got >= 5 {
		t.Errorf("expected pending workers to be skipped, %d started", got)
	}
}
