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

package cachemux

import (
	"fmt"
	"sort"

	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/cache"

	jsoniter "github.com/json-iterator/go"
)

// Keys of a composite snapshot
const (
	DefaultKey    = "default"
	NamespacedKey = "namespaced"
)

// Composite is the typed view of the snapshot extracted from a Cache:
//
//	{
//	  "default": <snapshot of the default store>,
//	  "namespaced": {
//	    "<namespace>": <snapshot of the store of the namespace>,
//	    ...
//	  }
//	}
type Composite struct {
	Default    cache.Snapshot
	Namespaced map[string]cache.Snapshot
}

// Snapshot returns the composite as a cache.Snapshot.
func (c *Composite) Snapshot() cache.Snapshot {
	namespaced := make(map[string]interface{}, len(c.Namespaced))
	for name, snapshot := range c.Namespaced {
		namespaced[name] = snapshot
	}

	defaultSnapshot := c.Default
	if defaultSnapshot == nil {
		defaultSnapshot = cache.Snapshot{}
	}

	return cache.Snapshot{
		DefaultKey:    defaultSnapshot,
		NamespacedKey: namespaced,
	}
}

// Names returns the namespaces in the composite in order.
func (c *Composite) Names() []string {
	names := make([]string, 0, len(c.Namespaced))
	for name := range c.Namespaced {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseComposite checks the shape of a composite snapshot and returns its typed view. It accepts
// both snapshots returned by Extract and their JSON-decoded form.
func ParseComposite(snapshot cache.Snapshot) (*Composite, error) {
	const op = graphmux.Op("cachemux.ParseComposite")

	invalid := func(format string, args ...interface{}) error {
		return graphmux.NewError(fmt.Sprintf(format, args...), op, graphmux.ErrKindInvalidSnapshot)
	}

	if snapshot == nil {
		return nil, invalid("snapshot is nil")
	}

	for key := range snapshot {
		if key != DefaultKey && key != NamespacedKey {
			return nil, invalid("unexpected key %q in composite snapshot", key)
		}
	}

	defaultSnapshot, ok := asSnapshot(snapshot[DefaultKey])
	if !ok {
		return nil, invalid("%q must be an object", DefaultKey)
	}

	composite := &Composite{
		Default:    defaultSnapshot,
		Namespaced: map[string]cache.Snapshot{},
	}

	value, exists := snapshot[NamespacedKey]
	if !exists || value == nil {
		return composite, nil
	}

	var namespaced map[string]interface{}
	switch value := value.(type) {
	case map[string]interface{}:
		namespaced = value
	case cache.Snapshot:
		namespaced = value
	case map[string]cache.Snapshot:
		namespaced = make(map[string]interface{}, len(value))
		for name, s := range value {
			namespaced[name] = s
		}
	default:
		return nil, invalid("%q must be an object", NamespacedKey)
	}
	for name, value := range namespaced {
		if len(name) == 0 {
			return nil, invalid("namespace name must not be empty")
		}
		s, ok := asSnapshot(value)
		if !ok {
			return nil, invalid("snapshot of namespace %q must be an object", name)
		}
		composite.Namespaced[name] = s
	}

	return composite, nil
}

func asSnapshot(value interface{}) (cache.Snapshot, bool) {
	switch value := value.(type) {
	case cache.Snapshot:
		return value, value != nil
	case map[string]interface{}:
		return cache.Snapshot(value), value != nil
	}
	return nil, false
}

// Sorted keys make the encoding of a snapshot deterministic.
var compositeJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// MarshalComposite encodes a composite snapshot into JSON for transfer to another process.
func MarshalComposite(snapshot cache.Snapshot) ([]byte, error) {
	composite, err := ParseComposite(snapshot)
	if err != nil {
		return nil, err
	}
	return compositeJSON.Marshal(composite.Snapshot())
}

// UnmarshalComposite decodes a composite snapshot encoded by MarshalComposite.
func UnmarshalComposite(data []byte) (cache.Snapshot, error) {
	var decoded map[string]interface{}
	if err := compositeJSON.Unmarshal(data, &decoded); err != nil {
		return nil, graphmux.WrapError(err, "cannot decode composite snapshot",
			graphmux.Op("cachemux.UnmarshalComposite"), graphmux.ErrKindInvalidSnapshot)
	}

	composite, err := ParseComposite(decoded)
	if err != nil {
		return nil, err
	}
	return composite.Snapshot(), nil
}
