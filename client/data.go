package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-consent-sdk/internal/workers"
	"github.com/MKhiriev/go-consent-sdk/models"
)

// FetchData runs q against the data service within the current session.
//
// Without a valid session it fails with models.ErrSessionExpired before any
// network traffic; call Authorize or RefreshSession and retry. Queries with
// SideEffects are sent once; others are retried on network failures up to
// Config.MaxRetryAttempts times in total.
func (c *Client) FetchData(ctx context.Context, q models.Query) (models.Payload, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	return c.api.FetchData(ctx, q)
}

// FetchAccounts lists the source accounts shared in the current session.
func (c *Client) FetchAccounts(ctx context.Context) (models.Accounts, error) {
	if c.closed.Load() {
		return models.Accounts{}, ErrClosed
	}
	return c.api.FetchAccounts(ctx)
}

// ListFiles lists the data files available in the current session.
func (c *Client) ListFiles(ctx context.Context) (models.FileList, error) {
	if c.closed.Load() {
		return models.FileList{}, ErrClosed
	}
	return c.api.ListFiles(ctx)
}

// FetchFile downloads and decrypts one data file.
func (c *Client) FetchFile(ctx context.Context, fileID string) (models.File, error) {
	if c.closed.Load() {
		return models.File{}, ErrClosed
	}
	return c.api.FetchFile(ctx, fileID)
}

// FetchSessionData lists the session's files and downloads them with at most
// Config.FetchConcurrency requests in flight. handle is called exactly once
// per listed file, never concurrently, with either the file or the error
// that stopped it. Files skipped because ctx ended get ctx.Err().
//
// The returned error joins every per-file failure. A listing failure is
// returned directly and handle is not called.
func (c *Client) FetchSessionData(ctx context.Context, handle func(models.File, error)) error {
	list, err := c.ListFiles(ctx)
	if err != nil {
		return err
	}

	var mu sync.Mutex
	handled := make(map[string]bool, len(list.Files))
	report := func(file models.File, err error) {
		mu.Lock()
		defer mu.Unlock()
		handled[file.ID] = true
		handle(file, err)
	}

	pool := workers.New(c.cfg.FetchConcurrency)
	for _, info := range list.Files {
		id := info.ID
		pool.Add(workers.WorkerFunc(func(ctx context.Context) error {
			file, err := c.api.FetchFile(ctx, id)
			if err != nil {
				err = fmt.Errorf("file %s: %w", id, err)
				file = models.File{ID: id}
			}
			report(file, err)
			return err
		}))
	}

	err = pool.Run(ctx)

	// workers never started after cancellation
	for _, info := range list.Files {
		mu.Lock()
		done := handled[info.ID]
		mu.Unlock()
		if !done {
			report(models.File{ID: info.ID}, fmt.Errorf("file %s: %w", info.ID, ctx.Err()))
		}
	}

	if err != nil {
		c.logger.Warn().Err(err).
			Str("func", "Client.FetchSessionData").
			Int("files", len(list.Files)).
			Msg("some files could not be fetched")
		return err
	}
	return nil
}
