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

package linkmux_test

import (
	"errors"

	"github.com/botobag/artemis/concurrent/future"
	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/document"
	"github.com/botobag/graphmux/internal/testutil"
	"github.com/botobag/graphmux/link"
	"github.com/botobag/graphmux/linkmux"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// recorder is a terminating link that records the operations it receives.
type recorder struct {
	name       string
	operations []*link.Operation
	err        error
}

func (r *recorder) Request(op *link.Operation, forward link.NextLink) future.Future {
	r.operations = append(r.operations, op)
	if r.err != nil {
		return future.Err(r.err)
	}
	return future.Ready(&link.Result{Data: map[string]interface{}{"from": r.name}})
}

func execute(l link.Link, doc *document.Document) (*link.Result, error) {
	return link.Await(link.Execute(l, link.NewOperation(doc, nil)))
}

var _ = Describe("Link", func() {
	var (
		defaultLink, graph2 *recorder
		mux                 *linkmux.Link
	)

	plain := document.MustParse(`query Me { me { id } }`)
	routed := document.MustParse(`query Me @endpoint(name: "graph2") { me { id login } }`)
	unknown := document.MustParse(`query Me @endpoint(name: "graph3") { me { id } }`)

	BeforeEach(func() {
		defaultLink = &recorder{name: "default"}
		graph2 = &recorder{name: "graph2"}

		var err error
		mux, err = linkmux.New(defaultLink, map[string]link.Link{"graph2": graph2})
		Expect(err).ShouldNot(HaveOccurred())
	})

	It("requires at least one link", func() {
		_, err := linkmux.New(nil, nil)
		Expect(err).Should(testutil.MatchMuxError(testutil.KindIs(graphmux.ErrKindNoTransportConfigured)))

		_, err = linkmux.New(nil, map[string]link.Link{"graph2": nil})
		Expect(err).Should(testutil.MatchMuxError(
			testutil.KindIs(graphmux.ErrKindInvalidArgument),
			testutil.NamespaceIs("graph2"),
		))
	})

	It("forwards operations without directive to the default link", func() {
		result, err := execute(mux, plain)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(result.Data).Should(HaveKeyWithValue("from", "default"))

		Expect(defaultLink.operations).Should(HaveLen(1))
		Expect(defaultLink.operations[0].Document).Should(BeIdenticalTo(plain))
		Expect(graph2.operations).Should(BeEmpty())
	})

	It("forwards stripped operations to the link of their namespace", func() {
		op := link.NewOperation(routed, map[string]interface{}{"id": "1"})
		op.Set("auth", "token")

		result, err := link.Await(link.Execute(mux, op))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(result.Data).Should(HaveKeyWithValue("from", "graph2"))

		Expect(defaultLink.operations).Should(BeEmpty())
		Expect(graph2.operations).Should(HaveLen(1))

		forwarded := graph2.operations[0]
		Expect(forwarded.Document.String()).Should(Equal(document.MustParse(`query Me { me { id login } }`).String()))
		Expect(forwarded.Document.String()).ShouldNot(ContainSubstring("@endpoint"))
		Expect(forwarded.Variables).Should(Equal(op.Variables))
		Expect(forwarded.OperationName).Should(Equal("Me"))
		Expect(forwarded.Get("auth")).Should(Equal("token"))

		// The operation of the caller is untouched.
		Expect(op.Document).Should(BeIdenticalTo(routed))
	})

	It("reuses the stripped document across requests", func() {
		_, err := execute(mux, routed)
		Expect(err).ShouldNot(HaveOccurred())
		_, err = execute(mux, routed)
		Expect(err).ShouldNot(HaveOccurred())

		Expect(graph2.operations).Should(HaveLen(2))
		Expect(graph2.operations[1].Document).Should(BeIdenticalTo(graph2.operations[0].Document))
	})

	It("never forwards nested routing directives", func() {
		doc := document.MustParse(`
			query Me @endpoint(name: "graph2") {
				me {
					... on User @endpoint(name: "graph2") { id }
					...UserParts @endpoint(name: "graph2")
				}
			}
			fragment UserParts on User { login @endpoint(name: "graph2") }
		`)

		_, err := execute(mux, doc)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(graph2.operations).Should(HaveLen(1))

		forwarded := graph2.operations[0].Document.String()
		Expect(forwarded).ShouldNot(ContainSubstring("@endpoint"))
		Expect(forwarded).Should(ContainSubstring("... on User {"))
		Expect(forwarded).Should(ContainSubstring("...UserParts\n"))
	})

	It("dispatches each namespace to its own link", func() {
		graph3 := &recorder{name: "graph3"}
		graph4 := &recorder{name: "graph4"}
		mux, err := linkmux.New(defaultLink, map[string]link.Link{
			"graph2": graph2,
			"graph3": graph3,
			"graph4": graph4,
		})
		Expect(err).ShouldNot(HaveOccurred())

		for _, name := range []string{"graph4", "graph2", "graph3"} {
			doc := document.MustParse(`query Me @endpoint(name: "` + name + `") { me { id } }`)
			result, err := execute(mux, doc)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(result.Data).Should(HaveKeyWithValue("from", name))
		}
		result, err := execute(mux, plain)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(result.Data).Should(HaveKeyWithValue("from", "default"))

		Expect(graph2.operations).Should(HaveLen(1))
		Expect(graph3.operations).Should(HaveLen(1))
		Expect(graph4.operations).Should(HaveLen(1))
		Expect(defaultLink.operations).Should(HaveLen(1))
	})

	It("fails for namespaces without link", func() {
		_, err := execute(mux, unknown)
		Expect(err).Should(testutil.MatchMuxError(
			testutil.KindIs(graphmux.ErrKindUnknownNamespace),
			testutil.NamespaceIs("graph3"),
		))
		Expect(defaultLink.operations).Should(BeEmpty())
	})

	It("falls back to the default link when asked to", func() {
		mux, err := linkmux.New(defaultLink, map[string]link.Link{"graph2": graph2}, linkmux.FallbackToDefault())
		Expect(err).ShouldNot(HaveOccurred())

		result, err := execute(mux, unknown)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(result.Data).Should(HaveKeyWithValue("from", "default"))
		Expect(defaultLink.operations[0].Document.String()).ShouldNot(ContainSubstring("@endpoint"))
	})

	It("fails for the default namespace without default link", func() {
		mux, err := linkmux.New(nil, map[string]link.Link{"graph2": graph2}, linkmux.FallbackToDefault())
		Expect(err).ShouldNot(HaveOccurred())

		_, err = execute(mux, plain)
		Expect(err).Should(testutil.MatchMuxError(testutil.KindIs(graphmux.ErrKindNoTransportConfigured)))

		_, err = execute(mux, unknown)
		Expect(graphmux.KindOf(err)).Should(Equal(graphmux.ErrKindUnknownNamespace))

		_, err = execute(mux, routed)
		Expect(err).ShouldNot(HaveOccurred())
	})

	It("fails for documents without operation or fragment", func() {
		_, err := execute(mux, document.MustParse(`{ ...Me }`))
		Expect(err).Should(testutil.MatchMuxError(
			testutil.KindIs(graphmux.ErrKindMalformedDocument),
			testutil.OpIs("linkmux.Request"),
		))
	})

	It("resolves the namespace from fragment-only wrappers", func() {
		doc := document.MustParse(`
			{ ...Me }
			fragment Me on User @endpoint(name: "graph2") { id login }
		`)
		_, err := execute(mux, doc)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(graph2.operations).Should(HaveLen(1))
		Expect(graph2.operations[0].Document.String()).ShouldNot(ContainSubstring("@endpoint"))
	})

	It("honours the configured directive", func() {
		mux, err := linkmux.New(defaultLink, map[string]link.Link{"graph2": graph2},
			linkmux.WithDirective(graphmux.DirectiveConfig{DirectiveName: "graph", DirectiveArgName: "id"}))
		Expect(err).ShouldNot(HaveOccurred())

		doc := document.MustParse(`query Me @graph(id: "graph2") @endpoint(name: "graph3") { me { id } }`)
		_, err = execute(mux, doc)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(graph2.operations[0].Document.String()).Should(ContainSubstring(`@endpoint(name: "graph3")`))
		Expect(graph2.operations[0].Document.String()).ShouldNot(ContainSubstring("@graph"))
	})

	It("propagates transport failures", func() {
		graph2.err = errors.New("connection refused")
		_, err := execute(mux, routed)
		Expect(err).Should(MatchError("connection refused"))
	})

	It("counts requests and failures", func() {
		registry := prometheus.NewRegistry()
		mux, err := linkmux.New(defaultLink, map[string]link.Link{"graph2": graph2}, linkmux.WithMetrics(registry))
		Expect(err).ShouldNot(HaveOccurred())

		_, err = execute(mux, plain)
		Expect(err).ShouldNot(HaveOccurred())

		graph2.err = errors.New("connection refused")
		_, err = execute(mux, routed)
		Expect(err).Should(HaveOccurred())

		count, err := promtest.GatherAndCount(registry, "graphmux_link_requests_total")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(count).Should(Equal(2))

		count, err = promtest.GatherAndCount(registry, "graphmux_link_failures_total")
		Expect(err).ShouldNot(HaveOccurred())
		Expect(count).Should(Equal(1))
	})
})
