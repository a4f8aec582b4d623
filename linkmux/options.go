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

package linkmux

import (
	"log/slog"

	"github.com/botobag/graphmux"

	"github.com/prometheus/client_golang/prometheus"
)

type options struct {
	directive  graphmux.DirectiveConfig
	fallback   bool
	logger     *slog.Logger
	registerer prometheus.Registerer
}

// Option configures a Link.
type Option func(opts *options)

// WithDirective sets the routing directive; Defaults to @endpoint(name: "...").
func WithDirective(config graphmux.DirectiveConfig) Option {
	return func(opts *options) {
		opts.directive = config
	}
}

// FallbackToDefault forwards operations routed to a namespace without link to the default link
// instead of failing with ErrKindUnknownNamespace.
func FallbackToDefault() Option {
	return func(opts *options) {
		opts.fallback = true
	}
}

// WithLogger sets the logger; Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

// WithMetrics registers request and failure counters with registerer.
func WithMetrics(registerer prometheus.Registerer) Option {
	return func(opts *options) {
		opts.registerer = registerer
	}
}
