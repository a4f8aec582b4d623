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

// Package inmemory provides a normalized GraphQL cache that keeps records in memory.
package inmemory

import (
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/botobag/artemis/concurrent/future"
	"github.com/botobag/artemis/graphql/ast"
	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/cache"
	"github.com/botobag/graphmux/document"
)

// records maps record ids to records.
type records map[string]map[string]interface{}

// layer holds the writes of an optimistic transaction. A field set to cache.DeleteField is deleted
// by the layer.
type layer struct {
	id      string
	records records
}

type watch struct {
	options cache.WatchOptions
	last    cache.DiffResult
	hasLast bool
}

// Store is an in-memory cache.Store.
//
// Store is safe for concurrent use. Modifiers given to Modify run with the store locked and must
// not call back into the store.
type Store struct {
	addTypename   bool
	dataID        func(object map[string]interface{}) (string, bool)
	possibleTypes map[string]map[string]bool

	mutex  sync.Mutex
	base   records
	layers []*layer

	watches     map[int]*watch
	nextWatchID int

	// Transaction state
	txDepth          int
	txLayer          *layer
	pendingBroadcast bool

	// Documents with __typename added, keyed by the original document
	transformed map[*document.Document]*document.Document
}

var _ cache.Store = (*Store)(nil)

// Option configures a Store.
type Option func(store *Store)

// AddTypename controls whether TransformDocument adds __typename to selection sets. Enabled by
// default.
func AddTypename(enabled bool) Option {
	return func(store *Store) {
		store.addTypename = enabled
	}
}

// DataIDFromObject overrides how records are identified. The function returns false for objects
// that should be embedded in their parent instead of being normalized.
func DataIDFromObject(dataID func(object map[string]interface{}) (string, bool)) Option {
	return func(store *Store) {
		store.dataID = dataID
	}
}

// PossibleTypes declares the object types that implement an abstract type so that fragments on
// interfaces and unions match their objects.
func PossibleTypes(possibleTypes map[string][]string) Option {
	return func(store *Store) {
		for supertype, subtypes := range possibleTypes {
			set := store.possibleTypes[supertype]
			if set == nil {
				set = map[string]bool{}
				store.possibleTypes[supertype] = set
			}
			for _, subtype := range subtypes {
				set[subtype] = true
			}
		}
	}
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	store := &Store{
		addTypename:   true,
		dataID:        DefaultDataID,
		possibleTypes: map[string]map[string]bool{},
		base:          records{},
		watches:       map[int]*watch{},
		transformed:   map[*document.Document]*document.Document{},
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// DefaultDataID identifies objects by "<__typename>:<id>", using "_id" when "id" is absent.
func DefaultDataID(object map[string]interface{}) (string, bool) {
	typename, ok := object["__typename"].(string)
	if !ok || len(typename) == 0 {
		return "", false
	}
	id, exists := object["id"]
	if !exists || id == nil {
		id, exists = object["_id"]
		if !exists || id == nil {
			return "", false
		}
	}
	return fmt.Sprintf("%s:%v", typename, id), true
}

// Read implements cache.Store.
func (s *Store) Read(query cache.Query) (map[string]interface{}, error) {
	diff, err := s.Diff(query)
	if err != nil {
		return nil, err
	}
	if !diff.Complete && !query.ReturnPartialData {
		return nil, nil
	}
	return diff.Result, nil
}

// Diff implements cache.Store.
func (s *Store) Diff(query cache.Query) (cache.DiffResult, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.diffLocked(query)
}

func (s *Store) diffLocked(query cache.Query) (cache.DiffResult, error) {
	root, err := rootSelection(graphmux.Op("inmemory.Diff"), query)
	if err != nil {
		return cache.DiffResult{}, err
	}

	r := &reader{
		store:      s,
		optimistic: query.Optimistic,
		variables:  query.Variables,
		fragments:  query.Document.Fragments(),
	}

	result := map[string]interface{}{}
	if object := s.lookup(root.id, query.Optimistic); object != nil {
		if err := r.readSelectionSet(result, object, root.selectionSet, nil); err != nil {
			return cache.DiffResult{}, graphmux.WrapError(err, "cannot read data", graphmux.Op("inmemory.Diff"))
		}
	} else {
		r.missing = append(r.missing, cache.MissingField{
			Message: fmt.Sprintf("record %q not found", root.id),
		})
	}

	return cache.DiffResult{
		Result:   result,
		Complete: len(r.missing) == 0,
		Missing:  r.missing,
	}, nil
}

// Write implements cache.Store.
func (s *Store) Write(options cache.WriteOptions) (*cache.Reference, error) {
	const op = graphmux.Op("inmemory.Write")

	root, err := rootSelection(op, options.Query)
	if err != nil {
		return nil, err
	}

	s.mutex.Lock()
	target := s.base
	if s.txLayer != nil {
		target = s.txLayer.records
	}
	w := &writer{
		store:     s,
		records:   target,
		variables: options.Variables,
		fragments: options.Document.Fragments(),
	}
	err = w.writeSelectionSet(w.record(root.id), root.selectionSet, options.Data)
	s.mutex.Unlock()

	if err != nil {
		return nil, graphmux.WrapError(err, "cannot write data", op)
	}

	if !options.SkipBroadcast {
		s.broadcast()
	}

	return &cache.Reference{ID: root.id}, nil
}

// Watch implements cache.Store.
func (s *Store) Watch(options cache.WatchOptions) (func(), error) {
	if options.Callback == nil {
		return nil, graphmux.NewError("watch requires a callback",
			graphmux.Op("inmemory.Watch"), graphmux.ErrKindInvalidArgument)
	}

	s.mutex.Lock()
	diff, err := s.diffLocked(options.Query)
	if err != nil {
		s.mutex.Unlock()
		return nil, err
	}
	id := s.nextWatchID
	s.nextWatchID++
	s.watches[id] = &watch{
		options: options,
		last:    diff,
		hasLast: true,
	}
	s.mutex.Unlock()

	if options.Immediate {
		options.Callback(diff)
	}

	return func() {
		s.mutex.Lock()
		delete(s.watches, id)
		s.mutex.Unlock()
	}, nil
}

// broadcast notifies the watches whose result changed. Inside transactions notifications are
// deferred until the outermost transaction ends.
func (s *Store) broadcast() {
	type notification struct {
		callback cache.WatchCallback
		diff     cache.DiffResult
	}

	s.mutex.Lock()
	if s.txDepth > 0 {
		s.pendingBroadcast = true
		s.mutex.Unlock()
		return
	}

	ids := make([]int, 0, len(s.watches))
	for id := range s.watches {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var notifications []notification
	for _, id := range ids {
		w := s.watches[id]
		diff, err := s.diffLocked(w.options.Query)
		if err != nil {
			continue
		}
		if w.hasLast && reflect.DeepEqual(diff, w.last) {
			continue
		}
		w.last, w.hasLast = diff, true
		notifications = append(notifications, notification{w.options.Callback, diff})
	}
	s.mutex.Unlock()

	for _, n := range notifications {
		n.callback(n.diff)
	}
}

// PerformTransaction implements cache.Store.
func (s *Store) PerformTransaction(update func(store cache.Store) error, optimisticID string) error {
	s.mutex.Lock()
	s.txDepth++
	prevLayer := s.txLayer
	if len(optimisticID) > 0 {
		s.txLayer = &layer{
			id:      optimisticID,
			records: records{},
		}
		s.layers = append(s.layers, s.txLayer)
	}
	s.mutex.Unlock()

	// Close the scope on every exit path, including panics.
	defer func() {
		s.mutex.Lock()
		s.txDepth--
		s.txLayer = prevLayer
		flush := s.txDepth == 0 && s.pendingBroadcast
		if flush {
			s.pendingBroadcast = false
		}
		s.mutex.Unlock()

		if flush {
			s.broadcast()
		}
	}()

	return update(s)
}

// RemoveOptimistic implements cache.Store.
func (s *Store) RemoveOptimistic(id string) {
	s.mutex.Lock()
	layers := s.layers[:0]
	removed := false
	for _, l := range s.layers {
		if l.id == id {
			removed = true
			continue
		}
		layers = append(layers, l)
	}
	for i := len(layers); i < len(s.layers); i++ {
		s.layers[i] = nil
	}
	s.layers = layers
	s.mutex.Unlock()

	if removed {
		s.broadcast()
	}
}

// Reset implements cache.Store. The store is cleared synchronously; the returned future is ready.
func (s *Store) Reset(options cache.ResetOptions) future.Future {
	s.mutex.Lock()
	s.base = records{}
	s.layers = nil
	if options.DiscardWatches {
		s.watches = map[int]*watch{}
	}
	s.mutex.Unlock()

	s.broadcast()
	return future.Ready(nil)
}

// TransformForLink implements cache.Store.
func (s *Store) TransformForLink(doc *document.Document) (*document.Document, error) {
	return doc, nil
}

// rootSelection describes where a query starts.
type root struct {
	id           string
	selectionSet ast.SelectionSet
}

func rootSelection(op graphmux.Op, query cache.Query) (root, error) {
	doc := query.Document
	if doc == nil {
		return root{}, graphmux.NewError("missing document", op, graphmux.ErrKindInvalidArgument)
	}

	if operation := doc.Operation(); operation != nil && len(query.FragmentName) == 0 {
		id := query.ID
		if len(id) == 0 {
			id = cache.RootQuery
			if operation.OperationType() == ast.OperationTypeMutation {
				id = cache.RootMutation
			}
		}
		return root{id, operation.SelectionSet}, nil
	}

	fragment := doc.Fragment(query.FragmentName)
	if fragment == nil {
		if len(query.FragmentName) > 0 {
			return root{}, graphmux.NewError(fmt.Sprintf("fragment %q not found", query.FragmentName),
				op, graphmux.ErrKindInvalidArgument)
		}
		return root{}, graphmux.NewError("document must contain exactly one fragment or give FragmentName",
			op, graphmux.ErrKindInvalidArgument)
	}
	if len(query.ID) == 0 {
		return root{}, graphmux.NewError("reading or writing a fragment requires an ID",
			op, graphmux.ErrKindInvalidArgument)
	}
	return root{query.ID, fragment.SelectionSet}, nil
}
