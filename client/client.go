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

// Package client provides the facade an application talks to: one cache and one link, which may
// both be multiplexers routing to several endpoints.
package client

import (
	"context"
	"log/slog"
	"sync"

	"github.com/botobag/artemis/concurrent/future"
	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/cache"
	"github.com/botobag/graphmux/document"
	"github.com/botobag/graphmux/link"

	"github.com/google/uuid"
)

// Client executes operations through a link and keeps their results in a cache store.
type Client struct {
	store  cache.Store
	link   link.Link
	logger *slog.Logger

	// Queries watched with Watch, refetched by ResetStore
	mutex       sync.Mutex
	watches     map[uint64]QueryOptions
	nextWatchID uint64
}

// New creates a Client.
func New(store cache.Store, l link.Link, opts ...Option) (*Client, error) {
	const op = graphmux.Op("client.New")

	if store == nil {
		return nil, graphmux.NewError("missing cache store", op, graphmux.ErrKindInvalidArgument)
	}
	if l == nil {
		return nil, graphmux.NewError("missing link", op, graphmux.ErrKindInvalidArgument)
	}

	var options options
	for _, opt := range opts {
		opt(&options)
	}

	c := &Client{
		store:   store,
		link:    l,
		logger:  options.logger,
		watches: map[uint64]QueryOptions{},
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// Cache returns the cache store of the client.
func (c *Client) Cache() cache.Store {
	return c.store
}

// fetch sends doc to the network.
func (c *Client) fetch(ctx context.Context, doc *document.Document, variables map[string]interface{}) (*link.Result, error) {
	forLink, err := c.store.TransformForLink(doc)
	if err != nil {
		return nil, err
	}
	return link.Await(link.Execute(c.link, link.NewOperation(forLink, variables).WithContext(ctx)))
}

// Query executes a query according to its fetch policy.
func (c *Client) Query(ctx context.Context, options QueryOptions) (*link.Result, error) {
	const op = graphmux.Op("client.Query")

	if options.Document == nil {
		return nil, graphmux.NewError("missing document", op, graphmux.ErrKindInvalidArgument)
	}

	doc, err := c.store.TransformDocument(options.Document)
	if err != nil {
		return nil, err
	}
	query := cache.Query{
		Document:  doc,
		Variables: options.Variables,
	}

	switch options.FetchPolicy {
	case CacheFirst, CacheOnly:
		data, err := c.store.Read(query)
		if err != nil {
			return nil, err
		}
		if data != nil || options.FetchPolicy == CacheOnly {
			c.logger.Debug("answered from cache",
				"operation", doc.OperationName(),
				"policy", options.FetchPolicy.String(),
				"hit", data != nil)
			return &link.Result{Data: data}, nil
		}
	}

	result, err := c.fetch(ctx, doc, options.Variables)
	if err != nil {
		return nil, err
	}

	if result != nil && result.Data != nil && options.FetchPolicy != NoCache {
		if _, err := c.store.Write(cache.WriteOptions{Query: query, Data: result.Data}); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Mutate executes a mutation. If an optimistic response is given, it is visible to optimistic reads
// until the mutation completes. The result is written into the cache in one transaction together
// with the changes made by options.Update.
func (c *Client) Mutate(ctx context.Context, options MutateOptions) (*link.Result, error) {
	const op = graphmux.Op("client.Mutate")

	if options.Document == nil {
		return nil, graphmux.NewError("missing document", op, graphmux.ErrKindInvalidArgument)
	}

	doc, err := c.store.TransformDocument(options.Document)
	if err != nil {
		return nil, err
	}
	query := cache.Query{
		Document:  doc,
		Variables: options.Variables,
	}

	if options.OptimisticResponse != nil {
		optimisticID := uuid.New().String()
		err := c.store.PerformTransaction(func(tx cache.Store) error {
			_, err := tx.Write(cache.WriteOptions{Query: query, Data: options.OptimisticResponse})
			return err
		}, optimisticID)
		defer c.store.RemoveOptimistic(optimisticID)
		if err != nil {
			return nil, err
		}
	}

	result, err := c.fetch(ctx, doc, options.Variables)
	if err != nil {
		return nil, err
	}
	if result == nil || result.Data == nil {
		return result, nil
	}

	err = c.store.PerformTransaction(func(tx cache.Store) error {
		if _, err := tx.Write(cache.WriteOptions{Query: query, Data: result.Data}); err != nil {
			return err
		}
		if options.Update != nil {
			return options.Update(tx, result)
		}
		return nil
	}, "")
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReadQuery reads the data of a query from the cache, including optimistic data. Data is nil if
// the cache cannot fully answer the query.
func (c *Client) ReadQuery(options QueryOptions) (map[string]interface{}, error) {
	return c.store.Read(cache.Query{
		Document:   options.Document,
		Variables:  options.Variables,
		Optimistic: true,
	})
}

// WriteQuery writes the data of a query into the cache.
func (c *Client) WriteQuery(options QueryOptions, data map[string]interface{}) error {
	_, err := c.store.Write(cache.WriteOptions{
		Query: cache.Query{
			Document:  options.Document,
			Variables: options.Variables,
		},
		Data: data,
	})
	return err
}

// ReadFragment reads a fragment of the record options.ID from the cache.
func (c *Client) ReadFragment(options FragmentOptions) (map[string]interface{}, error) {
	return c.store.Read(cache.Query{
		Document:     options.Document,
		Variables:    options.Variables,
		ID:           options.ID,
		FragmentName: options.FragmentName,
		Optimistic:   true,
	})
}

// WriteFragment writes a fragment of the record options.ID into the cache.
func (c *Client) WriteFragment(options FragmentOptions, data map[string]interface{}) error {
	_, err := c.store.Write(cache.WriteOptions{
		Query: cache.Query{
			Document:     options.Document,
			Variables:    options.Variables,
			ID:           options.ID,
			FragmentName: options.FragmentName,
		},
		Data: data,
	})
	return err
}

// Watch calls options.Callback whenever the cached data of a query changes. The query is refetched
// by ResetStore until the returned function is called.
func (c *Client) Watch(options WatchOptions) (func(), error) {
	if options.Document == nil {
		return nil, graphmux.NewError("missing document", graphmux.Op("client.Watch"), graphmux.ErrKindInvalidArgument)
	}

	doc, err := c.store.TransformDocument(options.Document)
	if err != nil {
		return nil, err
	}

	cancel, err := c.store.Watch(cache.WatchOptions{
		Query: cache.Query{
			Document:   doc,
			Variables:  options.Variables,
			Optimistic: true,
		},
		Callback:  options.Callback,
		Immediate: options.Immediate,
	})
	if err != nil {
		return nil, err
	}

	c.mutex.Lock()
	id := c.nextWatchID
	c.nextWatchID++
	c.watches[id] = QueryOptions{
		Document:    options.Document,
		Variables:   options.Variables,
		FetchPolicy: NetworkOnly,
	}
	c.mutex.Unlock()

	return func() {
		cancel()
		c.mutex.Lock()
		delete(c.watches, id)
		c.mutex.Unlock()
	}, nil
}

// Extract returns a snapshot of the cache.
func (c *Client) Extract(optimistic bool) cache.Snapshot {
	return c.store.Extract(optimistic)
}

// Restore replaces the content of the cache with snapshot.
func (c *Client) Restore(snapshot cache.Snapshot) error {
	_, err := c.store.Restore(snapshot)
	return err
}

// ClearStore empties the cache.
func (c *Client) ClearStore() error {
	_, err := future.BlockOn(c.store.Reset(cache.ResetOptions{}))
	return err
}

// ResetStore empties the cache and refetches every watched query. The first failure is returned
// after all queries were refetched.
func (c *Client) ResetStore(ctx context.Context) error {
	if err := c.ClearStore(); err != nil {
		return err
	}

	c.mutex.Lock()
	queries := make([]QueryOptions, 0, len(c.watches))
	for _, query := range c.watches {
		queries = append(queries, query)
	}
	c.mutex.Unlock()

	var firstErr error
	for _, query := range queries {
		if _, err := c.Query(ctx, query); err != nil {
			c.logger.Warn("cannot refetch watched query",
				"operation", query.Document.OperationName(),
				"error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
