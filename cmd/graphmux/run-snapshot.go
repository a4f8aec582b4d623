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

package main

import (
	"fmt"

	"github.com/botobag/graphmux/persist"

	jsoniter "github.com/json-iterator/go"
	"github.com/urfave/cli"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func openDB(c *cli.Context) (*persist.DB, error) {
	path := c.String("db")
	if len(path) == 0 {
		return nil, fmt.Errorf("database path is required")
	}
	return persist.Open(path)
}

func runSnapshotKeys(c *cli.Context) error {
	m := getMetadata(c)

	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	keys, err := db.Keys()
	if err != nil {
		return err
	}
	for _, key := range keys {
		fmt.Fprintln(m.w, key)
	}
	return nil
}

func runSnapshotDump(c *cli.Context) error {
	m := getMetadata(c)

	key := c.String("key")
	if len(key) == 0 {
		return fmt.Errorf("snapshot key is required")
	}

	db, err := openDB(c)
	if err != nil {
		return err
	}
	defer db.Close()

	snapshot, err := db.Load(key)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(m.w, string(data))
	return nil
}
