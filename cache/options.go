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

package cache

import (
	"github.com/botobag/graphmux/document"
)

// Query selects data in a store.
type Query struct {
	// Document is the query or fragment document.
	Document *document.Document

	// Variables for the operation
	Variables map[string]interface{}

	// ID of the record to start reading from; Defaults to RootQuery when empty. It must be given
	// when reading fragments.
	ID string

	// FragmentName selects the fragment to use when Document contains more than one fragment.
	FragmentName string

	// Optimistic includes data in optimistic layers.
	Optimistic bool

	// ReturnPartialData makes Read return incomplete data instead of nil.
	ReturnPartialData bool
}

// WriteOptions specifies data to be written into a store.
type WriteOptions struct {
	Query

	// Data is the result shaped by Query.
	Data map[string]interface{}

	// SkipBroadcast suppresses watch notifications for this write.
	SkipBroadcast bool
}

// Reference refers to a normalized record.
type Reference struct {
	ID string
}

// MissingField describes a field of a Diff that cannot be satisfied by a store.
type MissingField struct {
	// Path from the root of the result to the missing field
	Path []string

	// Message describes the reason.
	Message string
}

// DiffResult is the result of a Diff.
type DiffResult struct {
	// Result contains whatever data could be read.
	Result map[string]interface{}

	// Complete is true if nothing is missing.
	Complete bool

	// Missing lists the fields that couldn't be read.
	Missing []MissingField
}

// WatchCallback receives the new result of a watched query.
type WatchCallback func(diff DiffResult)

// WatchOptions specifies a watch.
type WatchOptions struct {
	Query

	// Callback is called with the new diff when the result of the query changes.
	Callback WatchCallback

	// Immediate calls Callback with the current result on registration.
	Immediate bool
}

// EvictOptions specifies what to evict.
type EvictOptions struct {
	// ID of the record; Defaults to RootQuery when empty.
	ID string

	// FieldName limits the eviction to a field of the record. All stored variants of the field are
	// removed unless Args is not nil.
	FieldName string

	// Args selects a variant of FieldName.
	Args map[string]interface{}
}

// ResetOptions controls Reset.
type ResetOptions struct {
	// DiscardWatches removes all watches in addition to data.
	DiscardWatches bool
}

// ModifierDetails provides context to a Modifier.
type ModifierDetails struct {
	// FieldName is the name of the field without arguments.
	FieldName string

	// StoreFieldName is the key the field is stored under (with arguments).
	StoreFieldName string

	// DeleteField is the sentinel to return for deleting the field.
	DeleteField interface{}
}

// Modifier computes the new value of a field. Returning the value unchanged leaves the field alone
// and returning DeleteField removes it.
type Modifier func(value interface{}, details ModifierDetails) interface{}

type deleteField struct {
	name string
}

// DeleteField is the value a Modifier returns to remove the field.
var DeleteField interface{} = &deleteField{"DELETE"}

// ModifyOptions specifies a Modify.
type ModifyOptions struct {
	// ID of the record; Defaults to RootQuery when empty.
	ID string

	// Fields maps field names (without arguments) to their modifiers.
	Fields map[string]Modifier

	// AllFields is applied to every field that has no entry in Fields.
	AllFields Modifier

	// Optimistic modifies the topmost optimistic layer instead of the base data.
	Optimistic bool
}
