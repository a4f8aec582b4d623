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

package inmemory

import (
	"github.com/botobag/artemis/graphql/ast"
	"github.com/botobag/artemis/graphql/parser"
	"github.com/botobag/artemis/graphql/token"
	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/document"
)

// typenameField is a "__typename" selection parsed from source so it has valid tokens.
var typenameField = parser.MustParse(token.NewSource("{ __typename }")).
	Definitions[0].(*ast.OperationDefinition).SelectionSet[0].(*ast.Field)

// TransformDocument implements cache.Store. It adds __typename to every selection set except the
// root selection sets of operations. Results are memoized per document.
func (s *Store) TransformDocument(doc *document.Document) (*document.Document, error) {
	if doc == nil {
		return nil, graphmux.NewError("missing document",
			graphmux.Op("inmemory.TransformDocument"), graphmux.ErrKindInvalidArgument)
	}
	if !s.addTypename {
		return doc, nil
	}

	s.mutex.Lock()
	result, exists := s.transformed[doc]
	s.mutex.Unlock()
	if exists {
		return result, nil
	}

	definitions := doc.Definitions()
	rewritten := make(ast.Definitions, len(definitions))
	changed := false
	for i, definition := range definitions {
		switch definition := definition.(type) {
		case *ast.OperationDefinition:
			selectionSet, selectionSetChanged := addTypenameToFields(definition.SelectionSet)
			if selectionSetChanged {
				copied := *definition
				copied.SelectionSet = selectionSet
				rewritten[i] = &copied
				changed = true
				continue
			}

		case *ast.FragmentDefinition:
			selectionSet, selectionSetChanged := addTypename(definition.SelectionSet)
			if selectionSetChanged {
				copied := *definition
				copied.SelectionSet = selectionSet
				rewritten[i] = &copied
				changed = true
				continue
			}
		}
		rewritten[i] = definition
	}

	result = doc
	if changed {
		result = document.New(ast.Document{Definitions: rewritten})
	}

	s.mutex.Lock()
	s.transformed[doc] = result
	// Transforming the result again is a no-op.
	s.transformed[result] = result
	s.mutex.Unlock()

	return result, nil
}

// addTypename adds __typename to selectionSet and to the selection sets nested in it.
func addTypename(selectionSet ast.SelectionSet) (ast.SelectionSet, bool) {
	result, changed := addTypenameToFields(selectionSet)
	if hasTypename(result) {
		return result, changed
	}
	withTypename := make(ast.SelectionSet, 0, len(result)+1)
	withTypename = append(withTypename, result...)
	return append(withTypename, typenameField), true
}

// addTypenameToFields adds __typename to the selection sets nested in selectionSet.
func addTypenameToFields(selectionSet ast.SelectionSet) (ast.SelectionSet, bool) {
	var result ast.SelectionSet
	for i, selection := range selectionSet {
		var replacement ast.Selection

		switch selection := selection.(type) {
		case *ast.Field:
			if len(selection.SelectionSet) > 0 {
				if nested, changed := addTypename(selection.SelectionSet); changed {
					copied := *selection
					copied.SelectionSet = nested
					replacement = &copied
				}
			}

		case *ast.InlineFragment:
			if nested, changed := addTypenameToFields(selection.SelectionSet); changed {
				copied := *selection
				copied.SelectionSet = nested
				replacement = &copied
			}
		}

		if replacement == nil {
			if result != nil {
				result[i] = selection
			}
			continue
		}
		if result == nil {
			result = make(ast.SelectionSet, len(selectionSet))
			copy(result, selectionSet[:i])
		}
		result[i] = replacement
	}

	if result == nil {
		return selectionSet, false
	}
	return result, true
}

func hasTypename(selectionSet ast.SelectionSet) bool {
	for _, selection := range selectionSet {
		if field, ok := selection.(*ast.Field); ok && field.Alias.IsNil() && field.Name.Value() == "__typename" {
			return true
		}
	}
	return false
}
