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

// Package directive reads and rewrites the routing directive (@endpoint(name: "...") by default)
// carried by the top-level definitions of a GraphQL document.
package directive

import (
	"github.com/botobag/artemis/graphql/ast"
	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/document"
)

// Resolve determines the namespace of a document.
//
// Top-level definitions are scanned in declaration order and the first fragment definition or
// operation definition is selected, except that an anonymous query whose selection set is exactly
// one fragment spread is skipped: such a query only wraps a fragment and must not shadow the
// fragment's own namespace. The namespace is the string literal given to the routing directive of
// the selected definition. DefaultNamespace is returned when the directive or its argument is absent
// or when the argument is not a non-empty string literal.
//
// An error with ErrKindMalformedDocument is returned when there's no definition to select.
func Resolve(doc *document.Document, config graphmux.DirectiveConfig) (graphmux.Namespace, error) {
	definition := routingDefinition(doc)
	if definition == nil {
		return graphmux.DefaultNamespace, graphmux.NewError("no operation or fragment found",
			graphmux.Op("directive.Resolve"), graphmux.ErrKindMalformedDocument)
	}
	return namespaceOf(definition.GetDirectives(), config.WithDefaults()), nil
}

func routingDefinition(doc *document.Document) ast.Definition {
	if doc == nil {
		return nil
	}

	for _, definition := range doc.Definitions() {
		switch definition := definition.(type) {
		case *ast.OperationDefinition:
			if isFragmentWrapper(definition) {
				continue
			}
			return definition

		case *ast.FragmentDefinition:
			return definition
		}
	}

	return nil
}

// isFragmentWrapper returns true for "query { ...Fragment }" and "{ ...Fragment }".
func isFragmentWrapper(operation *ast.OperationDefinition) bool {
	if operation.OperationType() != ast.OperationTypeQuery || !operation.Name.IsNil() {
		return false
	}
	if len(operation.SelectionSet) != 1 {
		return false
	}
	_, ok := operation.SelectionSet[0].(*ast.FragmentSpread)
	return ok
}

func namespaceOf(directives ast.Directives, config graphmux.DirectiveConfig) graphmux.Namespace {
	for _, directive := range directives {
		if directive.Name.Value() != config.DirectiveName {
			continue
		}
		for _, arg := range directive.Arguments {
			if arg.Name.Value() != config.DirectiveArgName {
				continue
			}
			if value, ok := arg.Value.(ast.StringValue); ok {
				return graphmux.Namespace(value.Value())
			}
			return graphmux.DefaultNamespace
		}
		// Only the first matching directive is consulted.
		return graphmux.DefaultNamespace
	}
	return graphmux.DefaultNamespace
}
