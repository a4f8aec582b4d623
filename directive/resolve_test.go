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

package directive_test

import (
	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/directive"
	"github.com/botobag/graphmux/document"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("Resolve", func() {
	config := graphmux.DefaultDirectiveConfig()

	DescribeTable("namespace of a document",
		func(body string, expected graphmux.Namespace) {
			namespace, err := directive.Resolve(document.MustParse(body), config)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(namespace).Should(Equal(expected))
		},

		Entry("operation without directive",
			`query Users { users { id } }`,
			graphmux.DefaultNamespace),

		Entry("query shorthand",
			`{ users { id } }`,
			graphmux.DefaultNamespace),

		Entry("operation with directive",
			`query Users @endpoint(name: "graph2") { users { id } }`,
			graphmux.Namespace("graph2")),

		Entry("mutation with directive",
			`mutation AddUser @endpoint(name: "graph2") { addUser { id } }`,
			graphmux.Namespace("graph2")),

		Entry("fragment with directive",
			`fragment User on User @endpoint(name: "graph2") { id }`,
			graphmux.Namespace("graph2")),

		Entry("other directives are ignored",
			`query Users @cached(ttl: 10) @endpoint(name: "graph2") { users { id } }`,
			graphmux.Namespace("graph2")),

		Entry("directive without the argument",
			`query Users @endpoint { users { id } }`,
			graphmux.DefaultNamespace),

		Entry("argument with another name",
			`query Users @endpoint(id: "graph2") { users { id } }`,
			graphmux.DefaultNamespace),

		Entry("argument is not a string literal",
			`query Users($name: String) @endpoint(name: $name) { users { id } }`,
			graphmux.DefaultNamespace),

		Entry("argument is an enum value",
			`query Users @endpoint(name: graph2) { users { id } }`,
			graphmux.DefaultNamespace),

		Entry("argument is an empty string",
			`query Users @endpoint(name: "") { users { id } }`,
			graphmux.DefaultNamespace),

		Entry("nested directives are irrelevant",
			`query Users { users @endpoint(name: "graph2") { ... on User @endpoint(name: "graph3") { id } } }`,
			graphmux.DefaultNamespace),

		Entry("first definition wins",
			`
			query Users @endpoint(name: "graph1") { users { ...User } }
			fragment User on User @endpoint(name: "graph2") { id }
			`,
			graphmux.Namespace("graph1")),

		Entry("anonymous query wrapping a fragment is skipped",
			`
			query { ...User }
			fragment User on User @endpoint(name: "graph2") { id }
			`,
			graphmux.Namespace("graph2")),

		Entry("query shorthand wrapping a fragment is skipped",
			`
			{ ...User }
			fragment User on User @endpoint(name: "graph2") { id }
			`,
			graphmux.Namespace("graph2")),

		Entry("named query wrapping a fragment is not skipped",
			`
			query Wrapper { ...User }
			fragment User on User @endpoint(name: "graph2") { id }
			`,
			graphmux.DefaultNamespace),

		Entry("anonymous query with more selections is not skipped",
			`
			query { ...User id }
			fragment User on User @endpoint(name: "graph2") { id }
			`,
			graphmux.DefaultNamespace),

		Entry("anonymous mutation wrapping a fragment is not skipped",
			`
			mutation { ...User }
			fragment User on Mutation @endpoint(name: "graph2") { id }
			`,
			graphmux.DefaultNamespace),
	)

	It("uses the configured directive and argument names", func() {
		doc := document.MustParse(`query Users @graph(endpoint: "graph2") @endpoint(name: "graph3") { users { id } }`)

		namespace, err := directive.Resolve(doc, graphmux.DirectiveConfig{
			DirectiveName:    "graph",
			DirectiveArgName: "endpoint",
		})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(namespace).Should(Equal(graphmux.Namespace("graph2")))

		// Empty names fall back to the defaults.
		namespace, err = directive.Resolve(doc, graphmux.DirectiveConfig{})
		Expect(err).ShouldNot(HaveOccurred())
		Expect(namespace).Should(Equal(graphmux.Namespace("graph3")))
	})

	It("rejects documents without operation or fragment to classify", func() {
		doc := document.MustParse(`{ ...User }`)
		_, err := directive.Resolve(doc, config)
		Expect(err).Should(HaveOccurred())
		Expect(graphmux.KindOf(err)).Should(Equal(graphmux.ErrKindMalformedDocument))
		Expect(err.Error()).Should(ContainSubstring("no operation or fragment found"))

		_, err = directive.Resolve(nil, config)
		Expect(graphmux.KindOf(err)).Should(Equal(graphmux.ErrKindMalformedDocument))
	})
})
