package appcomm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MKhiriev/go-consent-sdk/internal/logger"
	"github.com/MKhiriev/go-consent-sdk/models"
)

// abandonedTTL is how long a cancelled or timed-out correlation ID is
// remembered so its late callback is logged as such.
const abandonedTTL = 10 * time.Minute

type waiter struct {
	// ch has capacity 1 so Deliver never blocks.
	ch   chan models.AppMessage
	done chan struct{}
}

type communicator struct {
	launcher Launcher

	mu        sync.Mutex
	waiters   map[string]*waiter
	abandoned map[string]time.Time

	now    func() time.Time
	logger *logger.Logger
}

// NewCommunicator constructs a [Communicator] that launches the companion
// through launcher.
func NewCommunicator(launcher Launcher, log *logger.Logger) Communicator {
	return &communicator{
		launcher:  launcher,
		waiters:   make(map[string]*waiter),
		abandoned: make(map[string]time.Time),
		now:       time.Now,
		logger:    log,
	}
}

// Send implements [Communicator].
func (c *communicator) Send(ctx context.Context, msg models.AppMessage) error {
	if msg.Direction != models.DirectionOutbound {
		return ErrNotOutbound
	}
	if msg.CorrelationID == "" {
		return ErrEmptyCorrelationID
	}

	if err := c.register(msg.CorrelationID); err != nil {
		return err
	}

	if err := c.launcher.Launch(ctx, msg); err != nil {
		c.mu.Lock()
		delete(c.waiters, msg.CorrelationID)
		c.mu.Unlock()

		c.logger.Err(err).
			Str("func", "communicator.Send").
			Str("correlation_id", msg.CorrelationID).
			Msg("companion launch failed")
		return fmt.Errorf("%w: %v", models.ErrCompanionAppUnavailable, err)
	}

	c.logger.Debug().
		Str("correlation_id", msg.CorrelationID).
		Str("action", msg.Action).
		Msg("companion launched")
	return nil
}

func (c *communicator) register(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.waiters[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateCorrelation, id)
	}

	now := c.now()
	for abandonedID, at := range c.abandoned {
		if now.Sub(at) > abandonedTTL {
			delete(c.abandoned, abandonedID)
		}
	}

	c.waiters[id] = &waiter{
		ch:   make(chan models.AppMessage, 1),
		done: make(chan struct{}),
	}
	return nil
}

// AwaitCallback implements [Communicator].
func (c *communicator) AwaitCallback(ctx context.Context, correlationID string, timeout time.Duration) (models.AppMessage, error) {
	c.mu.Lock()
	w, ok := c.waiters[correlationID]
	_, wasAbandoned := c.abandoned[correlationID]
	c.mu.Unlock()
	if !ok {
		if wasAbandoned {
			return models.AppMessage{}, models.ErrAuthorizationCancelled
		}
		return models.AppMessage{}, fmt.Errorf("%w: %s", ErrUnknownCorrelation, correlationID)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-w.ch:
		return msg, nil
	case <-w.done:
		return models.AppMessage{}, models.ErrAuthorizationCancelled
	case <-timer.C:
		if msg, delivered := c.abandon(correlationID, w); delivered {
			return msg, nil
		}
		c.logger.Warn().
			Str("correlation_id", correlationID).
			Dur("timeout", timeout).
			Msg("no callback within timeout")
		return models.AppMessage{}, models.ErrAuthorizationTimedOut
	case <-ctx.Done():
		if msg, delivered := c.abandon(correlationID, w); delivered {
			return msg, nil
		}
		return models.AppMessage{}, ctx.Err()
	}
}

// abandon removes a waiter that stopped waiting. If Deliver won the race the
// buffered message is handed back instead.
func (c *communicator) abandon(id string, w *waiter) (models.AppMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if current, ok := c.waiters[id]; ok && current == w {
		delete(c.waiters, id)
		c.abandoned[id] = c.now()
		return models.AppMessage{}, false
	}

	select {
	case msg := <-w.ch:
		return msg, true
	default:
		return models.AppMessage{}, false
	}
}

// Cancel implements [Communicator].
func (c *communicator) Cancel(correlationID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.waiters[correlationID]
	if !ok {
		return
	}
	delete(c.waiters, correlationID)
	c.abandoned[correlationID] = c.now()
	close(w.done)
}

// Deliver implements [Communicator].
func (c *communicator) Deliver(msg models.AppMessage) bool {
	log := c.logger.With().
		Str("func", "communicator.Deliver").
		Str("correlation_id", msg.CorrelationID).
		Logger()

	if msg.Direction != models.DirectionInbound || msg.Action != models.ActionCallback {
		log.Warn().Str("action", msg.Action).Msg("discarding message that is not an inbound callback")
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.waiters[msg.CorrelationID]
	if !ok {
		if _, late := c.abandoned[msg.CorrelationID]; late {
			log.Info().Msg("discarding late callback for abandoned request")
		} else {
			log.Warn().Msg("discarding callback with unknown correlation id")
		}
		return false
	}

	delete(c.waiters, msg.CorrelationID)
	w.ch <- msg
	return true
}
