// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client is the entry point of the consent SDK.
//
// A [Client] asks a companion application for the user's consent to a
// contract, keeps the resulting session and its derived key, and fetches
// encrypted, signed data from the data service within that session.
//
//	c, err := client.New(cfg)
//	...
//	defer c.Close()
//
//	outcome, err := c.Authorize(ctx, "contract-123", models.Scope{})
//	...
//	payload, err := c.FetchData(ctx, models.Query{Kind: "fitness"})
//
// The companion answers on the host's return channel; mount
// [Client.CallbackHandler] there, or hand callbacks received some other way
// to [Client.DeliverCallback].
//
// An expired session is never refreshed behind the caller's back: data calls
// fail with models.ErrSessionExpired and the caller decides whether to call
// [Client.RefreshSession] or [Client.Authorize].
package client
