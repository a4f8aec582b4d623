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

// Package document wraps parsed GraphQL documents with an identity.
//
// The multiplexing components memoize per-document decisions (e.g., the namespace a document is
// routed to). An ast.Document is a plain value and cannot serve as a map key, so graphmux works
// with *Document: the pointer is the identity and ID returns a stable handle assigned when the
// Document is constructed. Callers are expected to parse each document literal once and reuse the
// resulting *Document; two structurally identical documents with different identities are
// classified separately.
package document

import (
	"github.com/botobag/artemis/graphql/ast"
	"github.com/botobag/artemis/graphql/parser"
	"github.com/botobag/artemis/graphql/token"

	"github.com/google/uuid"
)

// Document is an immutable parsed GraphQL document.
type Document struct {
	id  string
	ast ast.Document
}

// New wraps an AST into a Document with a fresh identity. The AST must not be modified afterward.
func New(doc ast.Document) *Document {
	return &Document{
		id:  uuid.New().String(),
		ast: doc,
	}
}

// Parse parses the given GraphQL source into a Document.
func Parse(body string, opts ...parser.ParseOption) (*Document, error) {
	doc, err := parser.Parse(token.NewSource(body), opts...)
	if err != nil {
		return nil, err
	}
	return New(doc), nil
}

// MustParse parses the given GraphQL source into a Document and panics on errors.
func MustParse(body string, opts ...parser.ParseOption) *Document {
	doc, err := Parse(body, opts...)
	if err != nil {
		panic(err)
	}
	return doc
}

// ID returns the identity handle of the document.
func (doc *Document) ID() string {
	return doc.id
}

// AST returns the underlying syntax tree.
func (doc *Document) AST() ast.Document {
	return doc.ast
}

// Definitions returns the top-level definitions in declaration order.
func (doc *Document) Definitions() ast.Definitions {
	return doc.ast.Definitions
}

// String prints the document.
func (doc *Document) String() string {
	return ast.Print(doc.ast)
}

// Operation returns the first operation definition in the document, or nil if the document
// contains only fragments.
func (doc *Document) Operation() *ast.OperationDefinition {
	for _, definition := range doc.ast.Definitions {
		if operation, ok := definition.(*ast.OperationDefinition); ok {
			return operation
		}
	}
	return nil
}

// OperationName returns the name of the first operation, or an empty string when the operation is
// anonymous or absent.
func (doc *Document) OperationName() string {
	operation := doc.Operation()
	if operation == nil || operation.Name.IsNil() {
		return ""
	}
	return operation.Name.Value()
}

// Fragments maps fragment names to their definitions.
func (doc *Document) Fragments() map[string]*ast.FragmentDefinition {
	fragments := map[string]*ast.FragmentDefinition{}
	for _, definition := range doc.ast.Definitions {
		if fragment, ok := definition.(*ast.FragmentDefinition); ok {
			fragments[fragment.Name.Value()] = fragment
		}
	}
	return fragments
}

// Fragment finds the fragment definition with the given name. If name is empty, it returns the
// first fragment when the document defines exactly one.
func (doc *Document) Fragment(name string) *ast.FragmentDefinition {
	var found *ast.FragmentDefinition
	for _, definition := range doc.ast.Definitions {
		fragment, ok := definition.(*ast.FragmentDefinition)
		if !ok {
			continue
		}
		if len(name) == 0 {
			if found != nil {
				// Ambiguous.
				return nil
			}
			found = fragment
		} else if fragment.Name.Value() == name {
			return fragment
		}
	}
	return found
}
