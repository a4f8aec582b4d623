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

package cachemux_test

import (
	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/cache"
	"github.com/botobag/graphmux/cachemux"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Composite", func() {
	It("accepts the typed form of namespaced snapshots", func() {
		composite, err := cachemux.ParseComposite(cache.Snapshot{
			"default": map[string]interface{}{},
			"namespaced": map[string]cache.Snapshot{
				"graph3": {"User:1": map[string]interface{}{"id": "1"}},
				"graph2": {},
			},
		})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(composite.Default).Should(Equal(cache.Snapshot{}))
		Expect(composite.Names()).Should(Equal([]string{"graph2", "graph3"}))
		Expect(composite.Namespaced["graph3"]).Should(HaveKey("User:1"))
	})

	It("treats a missing namespaced part as empty", func() {
		composite, err := cachemux.ParseComposite(cache.Snapshot{"default": cache.Snapshot{}})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(composite.Namespaced).Should(BeEmpty())
		Expect(composite.Snapshot()).Should(Equal(cache.Snapshot{
			"default":    cache.Snapshot{},
			"namespaced": map[string]interface{}{},
		}))
	})

	It("rejects empty namespace names", func() {
		_, err := cachemux.ParseComposite(cache.Snapshot{
			"default":    cache.Snapshot{},
			"namespaced": map[string]interface{}{"": cache.Snapshot{}},
		})
		Expect(graphmux.KindOf(err)).Should(Equal(graphmux.ErrKindInvalidSnapshot))
	})

	It("encodes into JSON with sorted keys", func() {
		encoded, err := cachemux.MarshalComposite(cache.Snapshot{
			"default": cache.Snapshot{"ROOT_QUERY": map[string]interface{}{"b": 1, "a": 2}},
			"namespaced": map[string]interface{}{
				"graph2": cache.Snapshot{},
			},
		})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(string(encoded)).Should(Equal(
			`{"default":{"ROOT_QUERY":{"a":2,"b":1}},"namespaced":{"graph2":{}}}`))

		decoded, err := cachemux.UnmarshalComposite(encoded)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(decoded["default"]).Should(HaveKey("ROOT_QUERY"))
	})
})
