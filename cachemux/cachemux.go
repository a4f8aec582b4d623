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

// Package cachemux routes cache operations to one store per namespace.
//
// A Cache holds a default store plus one store per named namespace and implements cache.Store
// itself. Operations that concern a single document (Read, Write, Diff, Watch, TransformDocument
// and TransformForLink) are delegated to the store of the document's namespace. Operations that
// concern the whole cache are applied to every store.
package cachemux

import (
	"log/slog"
	"sort"

	"github.com/botobag/artemis/concurrent/future"
	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/cache"
	"github.com/botobag/graphmux/directive"
	"github.com/botobag/graphmux/document"
	"github.com/botobag/graphmux/internal/metrics"
)

// entry is a store with the namespace it serves.
type entry struct {
	namespace graphmux.Namespace
	store     cache.Store
}

// Cache is a cache.Store that multiplexes several stores. The registry of stores is fixed at
// construction.
type Cache struct {
	defaultStore cache.Store
	caches       map[graphmux.Namespace]cache.Store

	// All stores, the default one first followed by the others in namespace order. This is the order
	// of fan-out operations.
	entries []entry

	resolver *directive.Resolver
	logger   *slog.Logger
	metrics  *metrics.Cache
}

var _ cache.Store = (*Cache)(nil)

// New creates a Cache from a default store and stores keyed by namespace name.
func New(defaultStore cache.Store, caches map[string]cache.Store, opts ...Option) (*Cache, error) {
	const op = graphmux.Op("cachemux.New")

	var options options
	for _, opt := range opts {
		opt(&options)
	}

	config := options.directive.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, graphmux.WrapError(err, "invalid directive config", op)
	}

	if defaultStore == nil {
		return nil, graphmux.NewError("missing default store", op, graphmux.ErrKindInvalidArgument)
	}

	c := &Cache{
		defaultStore: defaultStore,
		caches:       make(map[graphmux.Namespace]cache.Store, len(caches)),
		entries:      []entry{{graphmux.DefaultNamespace, defaultStore}},
		resolver:     directive.NewResolver(config),
		logger:       options.logger,
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	names := make([]string, 0, len(caches))
	for name, store := range caches {
		if len(name) == 0 {
			return nil, graphmux.NewError("namespace name must not be empty", op, graphmux.ErrKindInvalidArgument)
		}
		if store == nil {
			return nil, graphmux.NewError("missing store", op, graphmux.Namespace(name), graphmux.ErrKindInvalidArgument)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		namespace := graphmux.Namespace(name)
		c.caches[namespace] = caches[name]
		c.entries = append(c.entries, entry{namespace, caches[name]})
	}

	if options.registerer != nil {
		m, err := metrics.NewCache(options.registerer)
		if err != nil {
			return nil, graphmux.WrapError(err, "cannot register metrics", op)
		}
		c.metrics = m
	}

	return c, nil
}

// Namespace returns the namespace doc is routed to.
func (c *Cache) Namespace(doc *document.Document) (graphmux.Namespace, error) {
	return c.resolver.Resolve(doc)
}

// Store returns the store serving namespace.
func (c *Cache) Store(namespace graphmux.Namespace) (cache.Store, bool) {
	if namespace.IsDefault() {
		return c.defaultStore, true
	}
	store, exists := c.caches[namespace]
	return store, exists
}

// Namespaces returns the names of the namespaced stores in order.
func (c *Cache) Namespaces() []graphmux.Namespace {
	namespaces := make([]graphmux.Namespace, 0, len(c.entries)-1)
	for _, e := range c.entries[1:] {
		namespaces = append(namespaces, e.namespace)
	}
	return namespaces
}

// DirectiveConfig returns the routing directive in use.
func (c *Cache) DirectiveConfig() graphmux.DirectiveConfig {
	return c.resolver.Config()
}

// route finds the store for doc.
func (c *Cache) route(op graphmux.Op, operation string, doc *document.Document) (cache.Store, error) {
	namespace, err := c.resolver.Resolve(doc)
	if err != nil {
		return nil, graphmux.WrapError(err, "cannot determine namespace", op)
	}

	store, exists := c.Store(namespace)
	if !exists {
		return nil, graphmux.NewError("no store for namespace", op, namespace, graphmux.ErrKindUnknownNamespace)
	}

	c.metrics.RecordOperation(namespace, operation)
	c.logger.Debug("route cache operation",
		"operation", operation,
		"namespace", namespace.String(),
		"document", doc.ID())

	return store, nil
}

// Read implements cache.Store.
func (c *Cache) Read(query cache.Query) (map[string]interface{}, error) {
	store, err := c.route("cachemux.Read", "read", query.Document)
	if err != nil {
		return nil, err
	}
	return store.Read(query)
}

// Write implements cache.Store.
func (c *Cache) Write(options cache.WriteOptions) (*cache.Reference, error) {
	store, err := c.route("cachemux.Write", "write", options.Document)
	if err != nil {
		return nil, err
	}
	return store.Write(options)
}

// Diff implements cache.Store.
func (c *Cache) Diff(query cache.Query) (cache.DiffResult, error) {
	store, err := c.route("cachemux.Diff", "diff", query.Document)
	if err != nil {
		return cache.DiffResult{}, err
	}
	return store.Diff(query)
}

// Watch implements cache.Store.
func (c *Cache) Watch(options cache.WatchOptions) (func(), error) {
	store, err := c.route("cachemux.Watch", "watch", options.Document)
	if err != nil {
		return nil, err
	}
	return store.Watch(options)
}

// TransformDocument implements cache.Store.
func (c *Cache) TransformDocument(doc *document.Document) (*document.Document, error) {
	store, err := c.route("cachemux.TransformDocument", "transform_document", doc)
	if err != nil {
		return nil, err
	}
	return store.TransformDocument(doc)
}

// TransformForLink implements cache.Store.
func (c *Cache) TransformForLink(doc *document.Document) (*document.Document, error) {
	store, err := c.route("cachemux.TransformForLink", "transform_for_link", doc)
	if err != nil {
		return nil, err
	}
	return store.TransformForLink(doc)
}

// Evict implements cache.Store. Every store is asked to evict; the result is true if any of them
// evicted something.
func (c *Cache) Evict(options cache.EvictOptions) bool {
	evicted := false
	for _, e := range c.entries {
		c.metrics.RecordOperation(e.namespace, "evict")
		if e.store.Evict(options) {
			evicted = true
		}
	}
	return evicted
}

// Modify implements cache.Store. Every store is asked to modify; the result is true if any of them
// modified something.
func (c *Cache) Modify(options cache.ModifyOptions) bool {
	modified := false
	for _, e := range c.entries {
		c.metrics.RecordOperation(e.namespace, "modify")
		if e.store.Modify(options) {
			modified = true
		}
	}
	return modified
}

// RemoveOptimistic implements cache.Store.
func (c *Cache) RemoveOptimistic(id string) {
	for _, e := range c.entries {
		c.metrics.RecordOperation(e.namespace, "remove_optimistic")
		e.store.RemoveOptimistic(id)
	}
}

// GC implements cache.Store. The ids collected by every store are concatenated in store order.
func (c *Cache) GC() []string {
	var collected []string
	for _, e := range c.entries {
		c.metrics.RecordOperation(e.namespace, "gc")
		collected = append(collected, e.store.GC()...)
	}
	return collected
}

// Reset implements cache.Store. Resets of all stores are started at once; the returned future
// resolves after every one of them completed. If some failed, the failure of the first store in
// order is reported.
func (c *Cache) Reset(options cache.ResetOptions) future.Future {
	futures := make([]future.Future, len(c.entries))
	for i, e := range c.entries {
		c.metrics.RecordOperation(e.namespace, "reset")
		f := e.store.Reset(options)
		if f == nil {
			f = future.Ready(nil)
		}
		futures[i] = settled{f}
	}
	return &resetFuture{
		entries: c.entries,
		join:    future.Join(futures...),
	}
}

// PerformTransaction implements cache.Store.
//
// The transaction of every store is entered, the default store outermost and the others nested in
// order, and update runs once in the innermost one with the multiplexer itself as argument so it
// can route reads and writes. Each store therefore sees one transaction and delivers its
// notifications when the call returns.
func (c *Cache) PerformTransaction(update func(store cache.Store) error, optimisticID string) error {
	body := func() error {
		return update(c)
	}

	for i := len(c.entries) - 1; i >= 0; i-- {
		var (
			e     = c.entries[i]
			inner = body
		)
		body = func() error {
			c.metrics.RecordOperation(e.namespace, "transaction")
			return e.store.PerformTransaction(func(cache.Store) error {
				return inner()
			}, optimisticID)
		}
	}

	return body()
}

// Extract implements cache.Store. The result is a composite snapshot (see Composite).
func (c *Cache) Extract(optimistic bool) cache.Snapshot {
	composite := &Composite{
		Default:    c.defaultStore.Extract(optimistic),
		Namespaced: make(map[string]cache.Snapshot, len(c.caches)),
	}
	for _, e := range c.entries[1:] {
		c.metrics.RecordOperation(e.namespace, "extract")
		composite.Namespaced[string(e.namespace)] = e.store.Extract(optimistic)
	}
	return composite.Snapshot()
}

// Restore implements cache.Store. snapshot must be a composite snapshot whose namespaces all have a
// store. The stores are restored in place and c itself is returned; stores whose namespace is absent
// from the snapshot keep their content.
//
// Restore is all or nothing: the snapshot is validated before any store is touched and, if a store
// fails to restore, the stores restored before it are put back to their previous content.
func (c *Cache) Restore(snapshot cache.Snapshot) (cache.Store, error) {
	const op = graphmux.Op("cachemux.Restore")

	composite, err := ParseComposite(snapshot)
	if err != nil {
		return nil, graphmux.WrapError(err, "cannot restore", op)
	}

	targets := []entry{{graphmux.DefaultNamespace, c.defaultStore}}
	snapshots := []cache.Snapshot{composite.Default}
	for _, name := range composite.Names() {
		namespace := graphmux.Namespace(name)
		store, exists := c.caches[namespace]
		if !exists {
			return nil, graphmux.NewError("no store for namespace in snapshot", op, namespace,
				graphmux.ErrKindMissingSnapshotNamespace)
		}
		targets = append(targets, entry{namespace, store})
		snapshots = append(snapshots, composite.Namespaced[name])
	}

	previous := make([]cache.Snapshot, len(targets))
	for i, target := range targets {
		previous[i] = target.store.Extract(false)
	}

	for i, target := range targets {
		c.metrics.RecordOperation(target.namespace, "restore")
		if _, err := target.store.Restore(snapshots[i]); err != nil {
			c.rollback(targets[:i], previous[:i])
			return nil, graphmux.WrapError(err, "cannot restore store", op, target.namespace)
		}
	}

	return c, nil
}

func (c *Cache) rollback(targets []entry, previous []cache.Snapshot) {
	for i, target := range targets {
		if _, err := target.store.Restore(previous[i]); err != nil {
			c.logger.Error("cannot roll back store after failed restore",
				"namespace", target.namespace.String(),
				"error", err)
			continue
		}
		c.logger.Warn("rolled back store after failed restore", "namespace", target.namespace.String())
	}
}

// settled completes with the outcome of the wrapped future instead of failing so that a join waits
// for every future.
type settled struct {
	f future.Future
}

type outcome struct {
	err error
}

func (s settled) Poll(waker future.Waker) (future.PollResult, error) {
	result, err := s.f.Poll(waker)
	if err != nil {
		return outcome{err}, nil
	}
	if result == future.PollResultPending {
		return result, nil
	}
	return outcome{}, nil
}

type resetFuture struct {
	entries []entry
	join    future.Future
}

func (f *resetFuture) Poll(waker future.Waker) (future.PollResult, error) {
	result, err := f.join.Poll(waker)
	if err != nil || result == future.PollResultPending {
		return result, err
	}

	for i, value := range result.([]interface{}) {
		if o := value.(outcome); o.err != nil {
			return nil, graphmux.WrapError(o.err, "cannot reset store",
				graphmux.Op("cachemux.Reset"), f.entries[i].namespace)
		}
	}
	return nil, nil
}
