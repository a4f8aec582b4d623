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

package directive

import (
	"sync"

	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/document"
)

// classify is the resolution routine used by Resolver.
var classify = Resolve

// Resolver resolves namespaces with a fixed DirectiveConfig and memoizes the result per document.
// Documents are keyed by identity. The table only grows: parsed documents are expected to be
// long-lived literals.
//
// A Resolver is safe for concurrent use.
type Resolver struct {
	config graphmux.DirectiveConfig

	mutex sync.RWMutex
	memo  map[*document.Document]graphmux.Namespace
}

// NewResolver creates a Resolver. Empty names in config are replaced by the defaults.
func NewResolver(config graphmux.DirectiveConfig) *Resolver {
	return &Resolver{
		config: config.WithDefaults(),
		memo:   map[*document.Document]graphmux.Namespace{},
	}
}

// Config returns the directive config in use.
func (r *Resolver) Config() graphmux.DirectiveConfig {
	return r.config
}

// Resolve returns the namespace of doc. Errors are not memoized.
func (r *Resolver) Resolve(doc *document.Document) (graphmux.Namespace, error) {
	r.mutex.RLock()
	namespace, exists := r.memo[doc]
	r.mutex.RUnlock()
	if exists {
		return namespace, nil
	}

	namespace, err := classify(doc, r.config)
	if err != nil {
		return namespace, err
	}

	// Classification is a pure function of the document so a concurrent store of the same key is
	// harmless.
	r.mutex.Lock()
	r.memo[doc] = namespace
	r.mutex.Unlock()

	return namespace, nil
}

// Len returns the number of memoized documents.
func (r *Resolver) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.memo)
}
