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

// Package linkmux routes operations to one transport link per namespace.
//
// The namespace of an operation is resolved from its document before anything else. The routing
// directive is then removed so that servers never see it, and the stripped operation is forwarded
// to exactly one link.
package linkmux

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/botobag/artemis/concurrent/future"
	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/directive"
	"github.com/botobag/graphmux/document"
	"github.com/botobag/graphmux/internal/metrics"
	"github.com/botobag/graphmux/link"
)

// Link is a link.Link that multiplexes several links.
type Link struct {
	defaultLink link.Link
	links       map[graphmux.Namespace]link.Link
	fallback    bool

	// Split chain dispatching on the namespace stored in the operation
	chain link.Link

	resolver *directive.Resolver
	logger   *slog.Logger
	metrics  *metrics.Link

	// Stripped documents by their original
	mutex    sync.RWMutex
	stripped map[*document.Document]*document.Document
}

var _ link.Link = (*Link)(nil)

// New creates a Link from an optional default link and links keyed by namespace name. At least one
// link must be given.
func New(defaultLink link.Link, links map[string]link.Link, opts ...Option) (*Link, error) {
	const op = graphmux.Op("linkmux.New")

	var options options
	for _, opt := range opts {
		opt(&options)
	}

	config := options.directive.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, graphmux.WrapError(err, "invalid directive config", op)
	}

	if defaultLink == nil && len(links) == 0 {
		return nil, graphmux.NewError("at least one link is required", op,
			graphmux.ErrKindNoTransportConfigured)
	}

	l := &Link{
		defaultLink: defaultLink,
		links:       make(map[graphmux.Namespace]link.Link, len(links)),
		fallback:    options.fallback,
		resolver:    directive.NewResolver(config),
		logger:      options.logger,
		stripped:    map[*document.Document]*document.Document{},
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}

	for name, target := range links {
		if len(name) == 0 {
			return nil, graphmux.NewError("namespace name must not be empty", op, graphmux.ErrKindInvalidArgument)
		}
		if target == nil {
			return nil, graphmux.NewError("missing link", op, graphmux.Namespace(name), graphmux.ErrKindInvalidArgument)
		}
		l.links[graphmux.Namespace(name)] = target
	}

	if options.registerer != nil {
		m, err := metrics.NewLink(options.registerer)
		if err != nil {
			return nil, graphmux.WrapError(err, "cannot register metrics", op)
		}
		l.metrics = m
	}

	l.chain = l.buildChain()

	return l, nil
}

// namespaceKey is the key of the resolved namespace in a forwarded operation.
type namespaceKey struct{}

func namespaceOf(op *link.Operation) graphmux.Namespace {
	namespace, _ := op.Get(namespaceKey{}).(graphmux.Namespace)
	return namespace
}

func isNamespace(namespace graphmux.Namespace) func(op *link.Operation) bool {
	return func(op *link.Operation) bool {
		return namespaceOf(op) == namespace
	}
}

// buildChain splits on the default namespace first, then on each namespace in name order, and ends
// with unrouted.
func (l *Link) buildChain() link.Link {
	names := make([]string, 0, len(l.links))
	for namespace := range l.links {
		names = append(names, string(namespace))
	}
	sort.Strings(names)

	var chain link.Link = link.LinkFunc(l.unrouted)
	for i := len(names) - 1; i >= 0; i-- {
		namespace := graphmux.Namespace(names[i])
		chain = link.Split(isNamespace(namespace), l.links[namespace], chain)
	}
	if l.defaultLink != nil {
		chain = link.Split(isNamespace(graphmux.DefaultNamespace), l.defaultLink, chain)
	}
	return chain
}

// unrouted receives the operations whose namespace has no link of its own.
func (l *Link) unrouted(op *link.Operation, forward link.NextLink) future.Future {
	const errOp = graphmux.Op("linkmux.Request")

	namespace := namespaceOf(op)
	if namespace.IsDefault() {
		return future.Err(graphmux.NewError("no default link", errOp, graphmux.ErrKindNoTransportConfigured))
	}

	if l.fallback && l.defaultLink != nil {
		l.logger.Debug("falling back to default link", "namespace", namespace.String())
		return l.defaultLink.Request(op, forward)
	}

	return future.Err(graphmux.NewError("no link for namespace", errOp, namespace, graphmux.ErrKindUnknownNamespace))
}

// strip returns doc without the routing directive. Results are memoized so that an operation
// executed repeatedly reaches the transport with the same document.
func (l *Link) strip(doc *document.Document) *document.Document {
	l.mutex.RLock()
	stripped, exists := l.stripped[doc]
	l.mutex.RUnlock()
	if exists {
		return stripped
	}

	stripped = directive.Strip(doc, l.resolver.Config())

	l.mutex.Lock()
	if s, exists := l.stripped[doc]; exists {
		stripped = s
	} else {
		l.stripped[doc] = stripped
	}
	l.mutex.Unlock()

	return stripped
}

// Request implements link.Link.
func (l *Link) Request(op *link.Operation, forward link.NextLink) future.Future {
	namespace, err := l.resolver.Resolve(op.Document)
	if err != nil {
		return future.Err(graphmux.WrapError(err, "cannot determine namespace", graphmux.Op("linkmux.Request")))
	}

	// The copy keeps the operation of the caller untouched.
	op = op.WithDocument(l.strip(op.Document))
	op.Set(namespaceKey{}, namespace)

	l.logger.Debug("routing operation", "operation", op.OperationName, "namespace", namespace.String())
	l.metrics.RecordRequest(namespace)

	return &observed{
		l:         l,
		namespace: namespace,
		operation: op.OperationName,
		f:         l.chain.Request(op, forward),
	}
}

// observed reports the failure of a forwarded request.
type observed struct {
	l         *Link
	namespace graphmux.Namespace
	operation string
	f         future.Future
}

func (o *observed) Poll(waker future.Waker) (future.PollResult, error) {
	result, err := o.f.Poll(waker)
	if err != nil {
		o.l.metrics.RecordFailure(o.namespace)
		o.l.logger.Error("request failed",
			"operation", o.operation,
			"namespace", o.namespace.String(),
			"error", err)
	}
	return result, err
}

// Namespace returns the namespace doc is routed to.
func (l *Link) Namespace(doc *document.Document) (graphmux.Namespace, error) {
	return l.resolver.Resolve(doc)
}
