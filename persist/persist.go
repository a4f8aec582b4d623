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

// Package persist stores cache snapshots in a LevelDB database so that a cache can be hydrated
// across process restarts.
//
// A composite snapshot is saved as one entry per store under
//
//	snapshot/<key>/default
//	snapshot/<key>/namespaced/<name>
//
// and any other snapshot as a single entry snapshot/<key>/whole. Entries of a key are replaced
// atomically.
package persist

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/cache"
	"github.com/botobag/graphmux/cachemux"

	jsoniter "github.com/json-iterator/go"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNotFound is the cause of the error returned when loading a key that has no snapshot.
var ErrNotFound = leveldb.ErrNotFound

const (
	keyPrefix     = "snapshot/"
	wholeEntry    = "whole"
	defaultEntry  = "default"
	namespacedDir = "namespaced/"
)

// DB is a database of snapshots.
type DB struct {
	db *leveldb.DB
}

// Open opens (or creates) the database at path.
func Open(path string) (*DB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, graphmux.WrapErrorf(err, "cannot open database %s", path)
	}
	return &DB{db}, nil
}

// OpenMemory opens a database that lives in memory.
func OpenMemory() (*DB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, graphmux.WrapError(err, "cannot open database in memory")
	}
	return &DB{db}, nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

func checkKey(op graphmux.Op, key string) error {
	if len(key) == 0 || strings.Contains(key, "/") {
		return graphmux.NewError("snapshot key must be non-empty and must not contain '/'", op,
			graphmux.ErrKindInvalidArgument)
	}
	return nil
}

func prefixOf(key string) []byte {
	return []byte(keyPrefix + key + "/")
}

// deleteEntries adds deletion of all entries of key to batch.
func (d *DB) deleteEntries(batch *leveldb.Batch, key string) error {
	iter := d.db.NewIterator(util.BytesPrefix(prefixOf(key)), nil)
	for iter.Next() {
		batch.Delete(append([]byte{}, iter.Key()...))
	}
	iter.Release()
	return iter.Error()
}

// Save stores snapshot under key, replacing the previous one.
func (d *DB) Save(key string, snapshot cache.Snapshot) error {
	const op = graphmux.Op("persist.Save")

	if err := checkKey(op, key); err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	if err := d.deleteEntries(batch, key); err != nil {
		return graphmux.WrapError(err, "cannot read database", op)
	}

	put := func(entry string, value interface{}) error {
		data, err := json.Marshal(value)
		if err != nil {
			return graphmux.WrapError(err, "cannot encode snapshot", op, graphmux.ErrKindInvalidSnapshot)
		}
		batch.Put(append(prefixOf(key), entry...), data)
		return nil
	}

	if composite, err := cachemux.ParseComposite(snapshot); err == nil {
		if err := put(defaultEntry, composite.Default); err != nil {
			return err
		}
		for _, name := range composite.Names() {
			if strings.Contains(name, "/") {
				return graphmux.NewError("namespace name must not contain '/'", op,
					graphmux.Namespace(name), graphmux.ErrKindInvalidSnapshot)
			}
			if err := put(namespacedDir+name, composite.Namespaced[name]); err != nil {
				return err
			}
		}
	} else if err := put(wholeEntry, snapshot); err != nil {
		return err
	}

	if err := d.db.Write(batch, nil); err != nil {
		return graphmux.WrapError(err, "cannot write database", op)
	}
	return nil
}

// Load returns the snapshot saved under key. A missing snapshot fails with an error caused by
// ErrNotFound.
func (d *DB) Load(key string) (cache.Snapshot, error) {
	const op = graphmux.Op("persist.Load")

	if err := checkKey(op, key); err != nil {
		return nil, err
	}

	var (
		prefix    = prefixOf(key)
		whole     cache.Snapshot
		composite = &cachemux.Composite{Namespaced: map[string]cache.Snapshot{}}
		found     bool
		isWhole   bool
	)

	iter := d.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	for iter.Next() {
		entry := string(bytes.TrimPrefix(iter.Key(), prefix))

		var snapshot cache.Snapshot
		if err := json.Unmarshal(iter.Value(), &snapshot); err != nil {
			return nil, graphmux.NewError(fmt.Sprintf("cannot decode entry %s of snapshot %s", entry, key),
				err, op, graphmux.ErrKindInvalidSnapshot)
		}
		found = true

		switch {
		case entry == wholeEntry:
			whole, isWhole = snapshot, true
		case entry == defaultEntry:
			composite.Default = snapshot
		case strings.HasPrefix(entry, namespacedDir):
			composite.Namespaced[strings.TrimPrefix(entry, namespacedDir)] = snapshot
		}
	}
	if err := iter.Error(); err != nil {
		return nil, graphmux.WrapError(err, "cannot read database", op)
	}

	if !found {
		return nil, graphmux.NewError("snapshot "+key+" not found", op, ErrNotFound)
	}
	if isWhole {
		return whole, nil
	}
	return composite.Snapshot(), nil
}

// Delete removes the snapshot saved under key.
func (d *DB) Delete(key string) error {
	const op = graphmux.Op("persist.Delete")

	if err := checkKey(op, key); err != nil {
		return err
	}

	batch := new(leveldb.Batch)
	if err := d.deleteEntries(batch, key); err != nil {
		return graphmux.WrapError(err, "cannot read database", op)
	}
	if err := d.db.Write(batch, nil); err != nil {
		return graphmux.WrapError(err, "cannot write database", op)
	}
	return nil
}

// Keys returns the keys of all saved snapshots in order.
func (d *DB) Keys() ([]string, error) {
	seen := map[string]bool{}

	iter := d.db.NewIterator(util.BytesPrefix([]byte(keyPrefix)), nil)
	for iter.Next() {
		rest := strings.TrimPrefix(string(iter.Key()), keyPrefix)
		if i := strings.IndexByte(rest, '/'); i > 0 {
			seen[rest[:i]] = true
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, graphmux.WrapError(err, "cannot read database", graphmux.Op("persist.Keys"))
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Hydrate restores the snapshot saved under key into store.
func Hydrate(db *DB, key string, store cache.Store) error {
	snapshot, err := db.Load(key)
	if err != nil {
		return err
	}
	if _, err := store.Restore(snapshot); err != nil {
		return graphmux.WrapErrorf(err, "cannot hydrate from snapshot %s", key)
	}
	return nil
}
