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

package cache_test

import (
	"github.com/botobag/artemis/graphql/ast"
	"github.com/botobag/graphmux/cache"
	"github.com/botobag/graphmux/document"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// firstField returns the first field selected by the operation in body.
func firstField(body string) *ast.Field {
	doc := document.MustParse(body)
	return doc.Operation().SelectionSet[0].(*ast.Field)
}

var _ = Describe("References", func() {
	It("makes and recognizes references", func() {
		ref := cache.MakeReference("User:1")
		Expect(ref).Should(Equal(map[string]interface{}{"__ref": "User:1"}))

		id, ok := cache.IsReference(ref)
		Expect(ok).Should(BeTrue())
		Expect(id).Should(Equal("User:1"))

		_, ok = cache.IsReference(map[string]interface{}{"__ref": "User:1", "name": "Alice"})
		Expect(ok).Should(BeFalse())
		_, ok = cache.IsReference("User:1")
		Expect(ok).Should(BeFalse())

		Expect(cache.IsRootID(cache.RootQuery)).Should(BeTrue())
		Expect(cache.IsRootID("User:1")).Should(BeFalse())
	})
})

var _ = Describe("StoreFieldName", func() {
	It("uses the field name when there's no argument", func() {
		Expect(cache.StoreFieldName(firstField(`{ users { id } }`), nil)).Should(Equal("users"))
	})

	It("appends arguments with sorted keys", func() {
		field := firstField(`{ users(last: 2, first: $first, filter: {name: "A", active: true}) { id } }`)
		Expect(cache.StoreFieldName(field, map[string]interface{}{"first": 10})).Should(Equal(
			`users({"filter":{"active":true,"name":"A"},"first":10,"last":2})`))
	})

	It("canonicalizes numbers from literals and variables", func() {
		literal := cache.StoreFieldName(firstField(`{ user(id: 1) { id } }`), nil)
		variable := cache.StoreFieldName(firstField(`{ user(id: $id) { id } }`),
			map[string]interface{}{"id": float64(1)})
		Expect(literal).Should(Equal(`user({"id":1})`))
		Expect(variable).Should(Equal(literal))
	})

	It("omits undefined variables", func() {
		Expect(cache.StoreFieldName(firstField(`{ users(first: $first) { id } }`), nil)).Should(Equal("users"))
	})

	It("splits keys back into names", func() {
		Expect(cache.FieldName(`user({"id":1})`)).Should(Equal("user"))
		Expect(cache.FieldName("users")).Should(Equal("users"))
		Expect(cache.FieldKey("user", map[string]interface{}{"id": "1"})).Should(Equal(`user({"id":"1"})`))
	})
})

var _ = Describe("ShouldInclude", func() {
	It("evaluates @skip and @include", func() {
		field := firstField(`{ a @skip(if: true) @client }`)
		Expect(cache.ShouldInclude(field.Directives, nil)).Should(BeFalse())

		field = firstField(`{ a @include(if: $on) }`)
		Expect(cache.ShouldInclude(field.Directives, map[string]interface{}{"on": true})).Should(BeTrue())
		Expect(cache.ShouldInclude(field.Directives, map[string]interface{}{"on": false})).Should(BeFalse())

		field = firstField(`{ a @skip(if: false) @include(if: true) }`)
		Expect(cache.ShouldInclude(field.Directives, nil)).Should(BeTrue())
	})
})
