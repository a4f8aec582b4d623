/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

package client

import (
	"log/slog"

	"github.com/botobag/graphmux/cache"
	"github.com/botobag/graphmux/document"
	"github.com/botobag/graphmux/link"
)

// FetchPolicy decides whether a query is answered from the cache or the network.
type FetchPolicy int

// Enumeration of FetchPolicy
const (
	// Answer from the cache; Fetch from the network and cache the result on a miss.
	CacheFirst FetchPolicy = iota

	// Always fetch from the network and cache the result.
	NetworkOnly

	// Answer from the cache only. Data is nil on a miss.
	CacheOnly

	// Always fetch from the network without touching the cache.
	NoCache
)

func (policy FetchPolicy) String() string {
	switch policy {
	case CacheFirst:
		return "cache-first"
	case NetworkOnly:
		return "network-only"
	case CacheOnly:
		return "cache-only"
	case NoCache:
		return "no-cache"
	}
	return "unknown"
}

// QueryOptions specifies a query.
type QueryOptions struct {
	Document    *document.Document
	Variables   map[string]interface{}
	FetchPolicy FetchPolicy
}

// MutateOptions specifies a mutation.
type MutateOptions struct {
	Document  *document.Document
	Variables map[string]interface{}

	// Data written into an optimistic layer until the result of the mutation arrives
	OptimisticResponse map[string]interface{}

	// Update is called in the transaction that writes the result, to update other data in the cache.
	Update func(store cache.Store, result *link.Result) error
}

// FragmentOptions locates a fragment of an object in the cache.
type FragmentOptions struct {
	// ID of the cache record
	ID string

	Document     *document.Document
	FragmentName string
	Variables    map[string]interface{}
}

// WatchOptions specifies a query to be watched.
type WatchOptions struct {
	Document  *document.Document
	Variables map[string]interface{}
	Callback  cache.WatchCallback

	// Call Callback with the current data right away.
	Immediate bool
}

type options struct {
	logger *slog.Logger
}

// Option configures a Client.
type Option func(opts *options)

// WithLogger sets the logger; Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}
