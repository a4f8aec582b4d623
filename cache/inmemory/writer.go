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
	"fmt"

	"github.com/botobag/artemis/graphql/ast"
	"github.com/botobag/graphmux/cache"
)

// writer normalizes a result into records.
type writer struct {
	store     *Store
	records   records
	variables map[string]interface{}
	fragments map[string]*ast.FragmentDefinition
}

// record returns the record with the given id in the target records, creating it if necessary.
func (w *writer) record(id string) map[string]interface{} {
	record := w.records[id]
	if record == nil {
		record = map[string]interface{}{}
		w.records[id] = record
	}
	return record
}

func (w *writer) writeSelectionSet(
	target map[string]interface{},
	selectionSet ast.SelectionSet,
	data map[string]interface{}) error {

	if typename, ok := data["__typename"].(string); ok {
		target["__typename"] = typename
	}

	for _, selection := range selectionSet {
		if !cache.ShouldInclude(selection.GetDirectives(), w.variables) {
			continue
		}

		switch selection := selection.(type) {
		case *ast.Field:
			value, exists := data[selection.ResponseKey()]
			if !exists {
				// Fields absent from the data (e.g., deferred or not requested from the server) are left
				// unchanged.
				continue
			}
			normalized, err := w.normalize(selection, value)
			if err != nil {
				return err
			}
			target[cache.StoreFieldName(selection, w.variables)] = normalized

		case *ast.FragmentSpread:
			fragment := w.fragments[selection.Name.Value()]
			if fragment == nil {
				return fmt.Errorf("fragment %q is not defined", selection.Name.Value())
			}
			if !w.store.typeMatches(fragment.TypeCondition.Name.Value(), data) {
				continue
			}
			if err := w.writeSelectionSet(target, fragment.SelectionSet, data); err != nil {
				return err
			}

		case *ast.InlineFragment:
			if selection.HasTypeCondition() &&
				!w.store.typeMatches(selection.TypeCondition.Name.Value(), data) {
				continue
			}
			if err := w.writeSelectionSet(target, selection.SelectionSet, data); err != nil {
				return err
			}
		}
	}

	return nil
}

// normalize converts a field value into its stored form. Identifiable objects are written to their
// own records and replaced by references.
func (w *writer) normalize(field *ast.Field, value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}

	if list, ok := asList(value); ok {
		result := make([]interface{}, len(list))
		for i, item := range list {
			normalized, err := w.normalize(field, item)
			if err != nil {
				return nil, err
			}
			result[i] = normalized
		}
		return result, nil
	}

	object, ok := value.(map[string]interface{})
	if !ok || len(field.SelectionSet) == 0 {
		// Scalars and custom scalars holding objects are stored as given.
		return deepCopy(value), nil
	}

	if id, ok := w.store.dataID(object); ok {
		if err := w.writeSelectionSet(w.record(id), field.SelectionSet, object); err != nil {
			return nil, err
		}
		return cache.MakeReference(id), nil
	}

	embedded := map[string]interface{}{}
	if err := w.writeSelectionSet(embedded, field.SelectionSet, object); err != nil {
		return nil, err
	}
	return embedded, nil
}

// asList accepts the list types decoded from JSON and those commonly built by hand.
func asList(value interface{}) ([]interface{}, bool) {
	switch value := value.(type) {
	case []interface{}:
		return value, true

	case []map[string]interface{}:
		list := make([]interface{}, len(value))
		for i := range value {
			list[i] = value[i]
		}
		return list, true
	}
	return nil, false
}

// typeMatches returns true if an object with the __typename in data satisfies the type condition.
// Objects without __typename match any condition.
func (s *Store) typeMatches(typeCondition string, data map[string]interface{}) bool {
	typename, ok := data["__typename"].(string)
	if !ok || typename == typeCondition {
		return true
	}
	return s.possibleTypes[typeCondition][typename]
}
