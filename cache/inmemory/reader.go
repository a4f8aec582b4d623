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
	"strconv"

	"github.com/botobag/artemis/graphql/ast"
	"github.com/botobag/graphmux/cache"
)

// reader denormalizes records into a result shaped by a selection set.
type reader struct {
	store      *Store
	optimistic bool
	variables  map[string]interface{}
	fragments  map[string]*ast.FragmentDefinition
	missing    []cache.MissingField
}

func (r *reader) miss(path []string, format string, args ...interface{}) {
	r.missing = append(r.missing, cache.MissingField{
		Path:    append([]string(nil), path...),
		Message: fmt.Sprintf(format, args...),
	})
}

func (r *reader) readSelectionSet(
	result map[string]interface{},
	object map[string]interface{},
	selectionSet ast.SelectionSet,
	path []string) error {

	for _, selection := range selectionSet {
		if !cache.ShouldInclude(selection.GetDirectives(), r.variables) {
			continue
		}

		switch selection := selection.(type) {
		case *ast.Field:
			responseKey := selection.ResponseKey()
			fieldPath := append(path, responseKey)

			if selection.Name.Value() == "__typename" {
				if typename, exists := object["__typename"]; exists {
					result[responseKey] = typename
				}
				continue
			}

			storeFieldName := cache.StoreFieldName(selection, r.variables)
			value, exists := object[storeFieldName]
			if !exists {
				r.miss(fieldPath, "can't find field %q on object", storeFieldName)
				continue
			}

			value, err := r.readValue(selection, value, fieldPath)
			if err != nil {
				return err
			}
			if existing, ok := result[responseKey].(map[string]interface{}); ok {
				if value, ok := value.(map[string]interface{}); ok {
					merge(existing, value)
					continue
				}
			}
			result[responseKey] = value

		case *ast.FragmentSpread:
			fragment := r.fragments[selection.Name.Value()]
			if fragment == nil {
				return fmt.Errorf("fragment %q is not defined", selection.Name.Value())
			}
			if !r.store.typeMatches(fragment.TypeCondition.Name.Value(), object) {
				continue
			}
			if err := r.readSelectionSet(result, object, fragment.SelectionSet, path); err != nil {
				return err
			}

		case *ast.InlineFragment:
			if selection.HasTypeCondition() &&
				!r.store.typeMatches(selection.TypeCondition.Name.Value(), object) {
				continue
			}
			if err := r.readSelectionSet(result, object, selection.SelectionSet, path); err != nil {
				return err
			}
		}
	}

	return nil
}

func (r *reader) readValue(field *ast.Field, value interface{}, path []string) (interface{}, error) {
	if value == nil {
		return nil, nil
	}

	if list, ok := value.([]interface{}); ok {
		result := make([]interface{}, 0, len(list))
		for i, item := range list {
			// Dangling references are dropped from lists.
			if id, ok := cache.IsReference(item); ok && r.store.lookup(id, r.optimistic) == nil {
				continue
			}
			v, err := r.readValue(field, item, append(path, strconv.Itoa(i)))
			if err != nil {
				return nil, err
			}
			result = append(result, v)
		}
		return result, nil
	}

	object, ok := value.(map[string]interface{})
	if !ok || len(field.SelectionSet) == 0 {
		return deepCopy(value), nil
	}

	if id, ok := cache.IsReference(object); ok {
		object = r.store.lookup(id, r.optimistic)
		if object == nil {
			r.miss(path, "dangling reference to missing object %q", id)
			return nil, nil
		}
	}

	result := map[string]interface{}{}
	if err := r.readSelectionSet(result, object, field.SelectionSet, path); err != nil {
		return nil, err
	}
	return result, nil
}

// merge copies src into dst, merging nested objects.
func merge(dst, src map[string]interface{}) {
	for key, value := range src {
		if existing, ok := dst[key].(map[string]interface{}); ok {
			if value, ok := value.(map[string]interface{}); ok {
				merge(existing, value)
				continue
			}
		}
		dst[key] = value
	}
}
