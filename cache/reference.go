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

// Ids of the root records
const (
	RootQuery    = "ROOT_QUERY"
	RootMutation = "ROOT_MUTATION"
)

// ReferenceKey is the key of the only entry of a reference object.
const ReferenceKey = "__ref"

// MakeReference returns the reference object to the record with the given id.
func MakeReference(id string) map[string]interface{} {
	return map[string]interface{}{
		ReferenceKey: id,
	}
}

// IsReference returns the id of the referred record if value is a reference object.
func IsReference(value interface{}) (string, bool) {
	object, ok := value.(map[string]interface{})
	if !ok || len(object) != 1 {
		return "", false
	}
	id, ok := object[ReferenceKey].(string)
	return id, ok
}

// IsRootID returns true for the ids of root records.
func IsRootID(id string) bool {
	return id == RootQuery || id == RootMutation
}
