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

// Package cache defines the contract of a normalized GraphQL cache store.
//
// A Store keeps query results in a normalized form: objects that can be identified are stored as
// records keyed by an id and referenced from elsewhere with {"__ref": id}. Both the concrete stores
// (see package inmemory) and the multiplexer that routes between several stores (see package
// cachemux) implement Store, so stores can be nested and composed.
package cache

import (
	"github.com/botobag/artemis/concurrent/future"
	"github.com/botobag/graphmux/document"
)

// Snapshot is the serializable content of a store as returned by Extract. Its shape is opaque to
// everything except the store that produced it, but it must survive a round trip through JSON.
type Snapshot map[string]interface{}

// Store is a normalized cache of GraphQL results.
type Store interface {
	// Read returns the data for the query, or nil if it's not completely available in the store.
	Read(query Query) (map[string]interface{}, error)

	// Write normalizes data shaped by query into the store and returns a reference to the record that
	// received it.
	Write(options WriteOptions) (*Reference, error)

	// Diff reads the query and reports what is missing.
	Diff(query Query) (DiffResult, error)

	// Watch calls options.Callback each time the result of options.Query changes. The returned
	// function cancels the watch.
	Watch(options WatchOptions) (func(), error)

	// Evict removes a record, or a field of a record, and returns true if anything was removed.
	Evict(options EvictOptions) bool

	// Reset clears the store. The returned future resolves with nil when the store is empty.
	Reset(options ResetOptions) future.Future

	// RemoveOptimistic drops the optimistic layer written by the transaction with the given id.
	RemoveOptimistic(id string)

	// GC removes records that are no longer reachable from root records and returns their ids.
	GC() []string

	// Modify rewrites fields of a record in place and returns true if anything changed.
	Modify(options ModifyOptions) bool

	// TransformDocument returns the document the store wants to use for reading and writing doc
	// (e.g., with __typename added to every selection set).
	TransformDocument(doc *document.Document) (*document.Document, error)

	// TransformForLink returns the document that should be sent over the network for doc.
	TransformForLink(doc *document.Document) (*document.Document, error)

	// PerformTransaction runs update as one transaction: change notifications are delivered once,
	// after update returns. If optimisticID is not empty, the writes performed by update are kept in
	// an optimistic layer with that id that can be dropped with RemoveOptimistic.
	//
	// update receives the store that callers should read and write through. Errors returned by
	// update are returned from PerformTransaction.
	PerformTransaction(update func(store Store) error, optimisticID string) error

	// Extract returns the content of the store. If optimistic is true, optimistic layers are
	// included.
	Extract(optimistic bool) Snapshot

	// Restore replaces the content of the store with a snapshot returned by Extract.
	Restore(snapshot Snapshot) (Store, error)
}
