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
	"reflect"
	"sort"

	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/cache"
)

// lookup returns the record with the given id. With optimistic, the optimistic layers are applied
// on top of the base record in a fresh map. The result must not be modified.
func (s *Store) lookup(id string, optimistic bool) map[string]interface{} {
	base := s.base[id]
	if !optimistic || len(s.layers) == 0 {
		return base
	}

	var merged map[string]interface{}
	if base != nil {
		merged = make(map[string]interface{}, len(base))
		for key, value := range base {
			merged[key] = value
		}
	}

	for _, l := range s.layers {
		record, exists := l.records[id]
		if !exists {
			continue
		}
		if merged == nil {
			merged = make(map[string]interface{}, len(record))
		}
		for key, value := range record {
			if value == cache.DeleteField {
				delete(merged, key)
			} else {
				merged[key] = value
			}
		}
	}

	return merged
}

// Evict implements cache.Store. Evictions apply to the base data and to every optimistic layer.
func (s *Store) Evict(options cache.EvictOptions) bool {
	id := options.ID
	if len(id) == 0 {
		id = cache.RootQuery
	}

	s.mutex.Lock()
	evicted := evictFrom(s.base, id, options)
	for _, l := range s.layers {
		evicted = evictFrom(l.records, id, options) || evicted
	}
	s.mutex.Unlock()

	if evicted {
		s.broadcast()
	}
	return evicted
}

func evictFrom(recs records, id string, options cache.EvictOptions) bool {
	record, exists := recs[id]
	if !exists {
		return false
	}

	if len(options.FieldName) == 0 {
		delete(recs, id)
		return true
	}

	evicted := false
	if options.Args != nil {
		key := cache.FieldKey(options.FieldName, options.Args)
		if _, exists := record[key]; exists {
			delete(record, key)
			evicted = true
		}
		return evicted
	}

	for key := range record {
		if cache.FieldName(key) == options.FieldName {
			delete(record, key)
			evicted = true
		}
	}
	return evicted
}

// Modify implements cache.Store.
func (s *Store) Modify(options cache.ModifyOptions) bool {
	id := options.ID
	if len(id) == 0 {
		id = cache.RootQuery
	}

	s.mutex.Lock()

	optimistic := options.Optimistic && len(s.layers) > 0
	view := s.lookup(id, optimistic)
	if view == nil {
		s.mutex.Unlock()
		return false
	}

	// Changes are written to the topmost layer when modifying optimistically.
	var target map[string]interface{}
	if optimistic {
		top := s.layers[len(s.layers)-1]
		target = top.records[id]
		if target == nil {
			target = map[string]interface{}{}
			top.records[id] = target
		}
	} else {
		target = view
	}

	keys := make([]string, 0, len(view))
	for key := range view {
		if key != "__typename" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	modified := false
	for _, key := range keys {
		name := cache.FieldName(key)
		modifier := options.Fields[name]
		if modifier == nil {
			modifier = options.AllFields
		}
		if modifier == nil {
			continue
		}

		value := view[key]
		newValue := modifier(value, cache.ModifierDetails{
			FieldName:      name,
			StoreFieldName: key,
			DeleteField:    cache.DeleteField,
		})

		if newValue == cache.DeleteField {
			if optimistic {
				target[key] = cache.DeleteField
			} else {
				delete(target, key)
			}
			modified = true
		} else if !reflect.DeepEqual(newValue, value) {
			target[key] = newValue
			modified = true
		}
	}

	s.mutex.Unlock()

	if modified {
		s.broadcast()
	}
	return modified
}

// GC implements cache.Store. Records are retained when they are reachable from a root record or
// from an optimistic layer. The ids of removed records are returned in ascending order.
func (s *Store) GC() []string {
	s.mutex.Lock()

	reachable := map[string]bool{}
	var queue []string
	mark := func(id string) {
		if !reachable[id] {
			reachable[id] = true
			queue = append(queue, id)
		}
	}

	for id := range s.base {
		if cache.IsRootID(id) {
			mark(id)
		}
	}
	for _, l := range s.layers {
		for id, record := range l.records {
			mark(id)
			collectReferences(record, mark)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if record, exists := s.base[id]; exists {
			collectReferences(record, mark)
		}
	}

	var collected []string
	for id := range s.base {
		if !reachable[id] {
			collected = append(collected, id)
			delete(s.base, id)
		}
	}

	s.mutex.Unlock()

	sort.Strings(collected)
	return collected
}

func collectReferences(value interface{}, visit func(id string)) {
	switch value := value.(type) {
	case map[string]interface{}:
		if id, ok := cache.IsReference(value); ok {
			visit(id)
			return
		}
		for _, v := range value {
			collectReferences(v, visit)
		}

	case []interface{}:
		for _, v := range value {
			collectReferences(v, visit)
		}
	}
}

// Extract implements cache.Store.
func (s *Store) Extract(optimistic bool) cache.Snapshot {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	snapshot := make(cache.Snapshot, len(s.base))
	for id := range s.base {
		snapshot[id] = deepCopy(s.base[id])
	}

	if optimistic {
		for _, l := range s.layers {
			for id := range l.records {
				if merged := s.lookup(id, true); merged != nil {
					snapshot[id] = deepCopy(merged)
				}
			}
		}
	}

	return snapshot
}

// Restore implements cache.Store. The base data is replaced in place and s itself is returned.
func (s *Store) Restore(snapshot cache.Snapshot) (cache.Store, error) {
	restored := make(records, len(snapshot))
	for id, record := range snapshot {
		object, ok := record.(map[string]interface{})
		if !ok {
			return nil, graphmux.NewError(fmt.Sprintf("record %q is a %T, not an object", id, record),
				graphmux.Op("inmemory.Restore"), graphmux.ErrKindInvalidSnapshot)
		}
		restored[id] = deepCopy(object).(map[string]interface{})
	}

	s.mutex.Lock()
	s.base = restored
	s.mutex.Unlock()

	s.broadcast()
	return s, nil
}

// deepCopy copies JSON-like values.
func deepCopy(value interface{}) interface{} {
	switch value := value.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(value))
		for k, v := range value {
			result[k] = deepCopy(v)
		}
		return result

	case []interface{}:
		result := make([]interface{}, len(value))
		for i, v := range value {
			result[i] = deepCopy(v)
		}
		return result
	}
	return value
}
