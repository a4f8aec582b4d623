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

// Package metrics defines the Prometheus instrumentation of the multiplexers.
package metrics

import (
	"errors"

	"github.com/botobag/graphmux"

	"github.com/prometheus/client_golang/prometheus"
)

// namespaceLabel renders a namespace as a label value.
func namespaceLabel(namespace graphmux.Namespace) string {
	if namespace.IsDefault() {
		return "default"
	}
	return string(namespace)
}

// register registers c and returns the collector already registered under the same descriptor if
// there's one, so several multiplexers can share a registry.
func register(registerer prometheus.Registerer, c *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := registerer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return c, nil
}

// Cache counts cache operations per namespace. A nil *Cache records nothing.
type Cache struct {
	operations *prometheus.CounterVec
}

// NewCache creates and registers the cache metrics.
func NewCache(registerer prometheus.Registerer) (*Cache, error) {
	operations, err := register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "graphmux",
		Subsystem: "cache",
		Name:      "operations_total",
		Help:      "Total number of cache operations by namespace and operation",
	}, []string{"namespace", "operation"}))
	if err != nil {
		return nil, err
	}
	return &Cache{operations: operations}, nil
}

// RecordOperation increments the operation counter.
func (m *Cache) RecordOperation(namespace graphmux.Namespace, operation string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(namespaceLabel(namespace), operation).Inc()
}

// Link counts requests dispatched to transports. A nil *Link records nothing.
type Link struct {
	requests *prometheus.CounterVec
	failures *prometheus.CounterVec
}

// NewLink creates and registers the link metrics.
func NewLink(registerer prometheus.Registerer) (*Link, error) {
	requests, err := register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "graphmux",
		Subsystem: "link",
		Name:      "requests_total",
		Help:      "Total number of operations received by namespace",
	}, []string{"namespace"}))
	if err != nil {
		return nil, err
	}

	failures, err := register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "graphmux",
		Subsystem: "link",
		Name:      "failures_total",
		Help:      "Total number of operations that could not be dispatched or failed in transport",
	}, []string{"namespace"}))
	if err != nil {
		return nil, err
	}

	return &Link{
		requests: requests,
		failures: failures,
	}, nil
}

// RecordRequest increments the request counter.
func (m *Link) RecordRequest(namespace graphmux.Namespace) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(namespaceLabel(namespace)).Inc()
}

// RecordFailure increments the failure counter.
func (m *Link) RecordFailure(namespace graphmux.Namespace) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(namespaceLabel(namespace)).Inc()
}
