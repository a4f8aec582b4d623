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

// Package httplink implements a terminating link that sends operations to a GraphQL endpoint over
// HTTP.
package httplink

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/botobag/artemis/concurrent/future"
	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/document"
	"github.com/botobag/graphmux/link"

	jsoniter "github.com/json-iterator/go"
	cache "github.com/patrickmn/go-cache"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultPrintTTL        = 10 * time.Minute
	defaultCleanupInterval = 20 * time.Minute
	maxErrorBodySize       = 1024
)

// HeadersKey is the key of a map[string]string value set on an Operation with Set whose entries
// are added to the HTTP request of that operation.
type HeadersKey struct{}

// Link sends each operation as a JSON POST request.
type Link struct {
	endpoint string
	client   *http.Client
	headers  map[string]string

	// Printed query text by document ID
	printed *cache.Cache
}

var _ link.Link = (*Link)(nil)

// Option configures a Link.
type Option func(l *Link)

// WithHTTPClient sets the client sending the requests; Defaults to http.DefaultClient.
func WithHTTPClient(client *http.Client) Option {
	return func(l *Link) {
		l.client = client
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(l *Link) {
		l.headers[key] = value
	}
}

// WithPrintCacheTTL sets how long the printed text of a document is kept; Defaults to 10 minutes.
func WithPrintCacheTTL(ttl time.Duration) Option {
	return func(l *Link) {
		l.printed = cache.New(ttl, 2*ttl)
	}
}

// New creates a Link posting to endpoint.
func New(endpoint string, opts ...Option) *Link {
	l := &Link{
		endpoint: endpoint,
		client:   http.DefaultClient,
		headers:  map[string]string{},
		printed:  cache.New(defaultPrintTTL, defaultCleanupInterval),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// request is the body of a request in the GraphQL-over-HTTP format.
type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	Extensions    map[string]interface{} `json:"extensions,omitempty"`
}

// Request implements link.Link. The request is performed in a new goroutine.
func (l *Link) Request(op *link.Operation, forward link.NextLink) future.Future {
	if op.Document == nil {
		return future.Err(graphmux.NewError("operation has no document",
			graphmux.Op("httplink.Request"), graphmux.ErrKindInvalidArgument))
	}
	return link.Go(func() (*link.Result, error) {
		return l.do(op)
	})
}

// print returns the query text of doc.
func (l *Link) print(doc *document.Document) string {
	if text, found := l.printed.Get(doc.ID()); found {
		return text.(string)
	}
	text := doc.String()
	l.printed.Set(doc.ID(), text, cache.DefaultExpiration)
	return text
}

// PrintCacheSize returns the number of documents whose printed text is cached.
func (l *Link) PrintCacheSize() int {
	return l.printed.ItemCount()
}

func (l *Link) do(op *link.Operation) (*link.Result, error) {
	const errOp = graphmux.Op("httplink.Request")

	data, err := json.Marshal(&request{
		Query:         l.print(op.Document),
		OperationName: op.OperationName,
		Variables:     op.Variables,
		Extensions:    op.Extensions,
	})
	if err != nil {
		return nil, graphmux.WrapError(err, "cannot encode request", errOp, graphmux.ErrKindInvalidArgument)
	}

	req, err := http.NewRequestWithContext(op.Context(), http.MethodPost, l.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, graphmux.WrapError(err, "cannot create request", errOp, graphmux.ErrKindInvalidArgument)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for key, value := range l.headers {
		req.Header.Set(key, value)
	}
	if headers, ok := op.Get(HeadersKey{}).(map[string]string); ok {
		for key, value := range headers {
			req.Header.Set(key, value)
		}
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, graphmux.WrapError(err, "request failed", errOp, graphmux.ErrKindTransport)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, graphmux.NewError(fmt.Sprintf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(body)),
			errOp, graphmux.ErrKindTransport)
	}

	var result link.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, graphmux.WrapError(err, "cannot decode response", errOp, graphmux.ErrKindTransport)
	}
	return &result, nil
}
