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

package link

import (
	"context"

	"github.com/botobag/graphmux/document"
)

// Operation is a GraphQL request travelling down a link chain.
type Operation struct {
	// Document to be executed
	Document *document.Document

	// Values for the variables defined by the operation
	Variables map[string]interface{}

	// Name of the operation to execute in Document; Empty if the document has one anonymous
	// operation.
	OperationName string

	// Extensions sent along with the request (e.g., persisted query hashes)
	Extensions map[string]interface{}

	ctx    context.Context
	values map[interface{}]interface{}
}

// NewOperation creates an Operation that executes doc with the given variables. OperationName is
// taken from the first operation in doc.
func NewOperation(doc *document.Document, variables map[string]interface{}) *Operation {
	op := &Operation{
		Document:  doc,
		Variables: variables,
	}
	if doc != nil {
		op.OperationName = doc.OperationName()
	}
	return op
}

// Context returns the context of the request. It defaults to context.Background.
func (op *Operation) Context() context.Context {
	if op.ctx != nil {
		return op.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of op with its context changed to ctx.
func (op *Operation) WithContext(ctx context.Context) *Operation {
	if ctx == nil {
		panic("nil context")
	}
	op2 := op.clone()
	op2.ctx = ctx
	return op2
}

// WithDocument returns a shallow copy of op that executes doc instead. Values set with Set are
// carried over.
func (op *Operation) WithDocument(doc *document.Document) *Operation {
	op2 := op.clone()
	op2.Document = doc
	return op2
}

func (op *Operation) clone() *Operation {
	op2 := new(Operation)
	*op2 = *op
	if op.values != nil {
		op2.values = make(map[interface{}]interface{}, len(op.values))
		for key, value := range op.values {
			op2.values[key] = value
		}
	}
	return op2
}

// Set attaches a value to the operation for the links further down the chain. An Operation is not
// safe for concurrent use by multiple goroutines.
func (op *Operation) Set(key, value interface{}) {
	if op.values == nil {
		op.values = map[interface{}]interface{}{}
	}
	op.values[key] = value
}

// Get returns the value attached with Set, or nil.
func (op *Operation) Get(key interface{}) interface{} {
	return op.values[key]
}
