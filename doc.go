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

// Package graphmux multiplexes a single GraphQL client over several GraphQL endpoints.
//
// Each endpoint is represented by a namespace. A document is tagged with a routing directive
// (@endpoint(name: "graph2") by default) on its top-level definitions and is classified once into
// the namespace named by the directive, or into DefaultNamespace when no directive is present.
// The classification selects both the backing cache store (see package cachemux) and the backing
// transport link (see package linkmux). The routing directive is stripped before an operation
// leaves the process so downstream servers never observe it.
//
// This package holds the vocabulary shared by the multiplexing components: Namespace,
// DirectiveConfig and the Error type every component reports failures with.
package graphmux
