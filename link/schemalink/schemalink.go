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

// Package schemalink implements a terminating link that executes operations against a GraphQL
// schema in the same process. It is useful for tests and for serving local-only state.
package schemalink

import (
	"time"

	"github.com/botobag/artemis/concurrent/future"
	"github.com/botobag/artemis/graphql"
	"github.com/botobag/artemis/graphql/executor"
	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/link"

	jsoniter "github.com/json-iterator/go"
	cache "github.com/patrickmn/go-cache"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	preparedTTL             = 10 * time.Minute
	preparedCleanupInterval = 20 * time.Minute
)

// Link executes operations with the artemis executor.
type Link struct {
	schema      graphql.Schema
	rootValue   interface{}
	appContext  func(op *link.Operation) interface{}
	prepareOpts []executor.PrepareOption

	// Prepared operations by document ID and operation name
	prepared *cache.Cache
}

var _ link.Link = (*Link)(nil)

// Option configures a Link.
type Option func(l *Link)

// WithRootValue sets the value passed as source to the resolvers of root fields.
func WithRootValue(value interface{}) Option {
	return func(l *Link) {
		l.rootValue = value
	}
}

// WithAppContext sets a function that builds the application context of each execution from the
// operation.
func WithAppContext(f func(op *link.Operation) interface{}) Option {
	return func(l *Link) {
		l.appContext = f
	}
}

// WithPrepareOptions adds options to executor.Prepare (e.g., executor.WithoutValidation()).
func WithPrepareOptions(opts ...executor.PrepareOption) Option {
	return func(l *Link) {
		l.prepareOpts = append(l.prepareOpts, opts...)
	}
}

// New creates a Link executing operations against schema.
func New(schema graphql.Schema, opts ...Option) *Link {
	l := &Link{
		schema:   schema,
		prepared: cache.New(preparedTTL, preparedCleanupInterval),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Request implements link.Link.
func (l *Link) Request(op *link.Operation, forward link.NextLink) future.Future {
	if op.Document == nil {
		return future.Err(graphmux.NewError("operation has no document",
			graphmux.Op("schemalink.Request"), graphmux.ErrKindInvalidArgument))
	}
	return link.Go(func() (*link.Result, error) {
		return l.execute(op)
	})
}

// prepare validates the document of op and finds the operation to execute. Validation errors are
// returned as a result without data.
func (l *Link) prepare(op *link.Operation) (*executor.PreparedOperation, *executor.ExecutionResult) {
	key := op.Document.ID() + "/" + op.OperationName
	if prepared, found := l.prepared.Get(key); found {
		return prepared.(*executor.PreparedOperation), nil
	}

	opts := append([]executor.PrepareOption{executor.OperationName(op.OperationName)}, l.prepareOpts...)
	prepared, errs := executor.Prepare(l.schema, op.Document.AST(), opts...)
	if errs.HaveOccurred() {
		return nil, &executor.ExecutionResult{Errors: errs}
	}

	l.prepared.Set(key, prepared, cache.DefaultExpiration)
	return prepared, nil
}

func (l *Link) execute(op *link.Operation) (*link.Result, error) {
	prepared, result := l.prepare(op)
	if prepared != nil {
		opts := []executor.ExecuteOption{
			executor.VariableValues(op.Variables),
			executor.RootValue(l.rootValue),
		}
		if l.appContext != nil {
			opts = append(opts, executor.AppContext(l.appContext(op)))
		}
		result = prepared.Execute(op.Context(), opts...)
	}

	// Convert the result into the response format.
	data, err := result.MarshalJSON()
	if err != nil {
		return nil, graphmux.WrapError(err, "cannot encode execution result", graphmux.Op("schemalink.Request"))
	}

	var response link.Result
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, graphmux.WrapError(err, "cannot decode execution result", graphmux.Op("schemalink.Request"))
	}
	return &response, nil
}

// PreparedCount returns the number of prepared operations kept for reuse.
func (l *Link) PreparedCount() int {
	return l.prepared.ItemCount()
}
