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
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/internal/testutil"
	"github.com/botobag/graphmux/link/httplink"
	"github.com/botobag/graphmux/link/schemalink"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("gateway", func() {
	var (
		graph1, graph2 *httptest.Server
		server         *httptest.Server
		g              *gateway
	)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	BeforeEach(func() {
		graph1 = httptest.NewServer(httplink.Handler(schemalink.New(
			testutil.NewUserDirectory("email", "alice@example.com", "bob@example.com").Schema())))
		graph2 = httptest.NewServer(httplink.Handler(schemalink.New(
			testutil.NewUserDirectory("login", "alice", "bob").Schema())))

		config := &Gateway{
			Default: &Upstream{URL: graph1.URL},
			Endpoints: map[string]Upstream{
				"graph2": {URL: graph2.URL},
			},
		}
		Expect(config.Validate()).Should(Succeed())

		var err error
		g, err = newGateway(config, graphmux.DefaultDirectiveConfig(), logger)
		Expect(err).ShouldNot(HaveOccurred())
		server = httptest.NewServer(g.handler)
	})

	AfterEach(func() {
		server.Close()
		g.Close()
		graph1.Close()
		graph2.Close()
	})

	post := func(query string) (int, string) {
		body, err := json.MarshalToString(map[string]interface{}{"query": query})
		Expect(err).ShouldNot(HaveOccurred())

		resp, err := http.Post(server.URL+"/graphql", "application/json", strings.NewReader(body))
		Expect(err).ShouldNot(HaveOccurred())
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		Expect(err).ShouldNot(HaveOccurred())
		return resp.StatusCode, string(data)
	}

	It("routes operations by endpoint", func() {
		status, body := post(`{ users { email } }`)
		Expect(status).Should(Equal(http.StatusOK))
		Expect(body).Should(MatchJSON(`{"data":{"users":[{"email":"alice@example.com"},{"email":"bob@example.com"}]}}`))

		// The upstream schema does not know the routing directive.
		status, body = post(`query @endpoint(name: "graph2") { users { login } }`)
		Expect(status).Should(Equal(http.StatusOK))
		Expect(body).Should(MatchJSON(`{"data":{"users":[{"login":"alice"},{"login":"bob"}]}}`))
	})

	It("rejects unknown endpoints", func() {
		status, body := post(`query @endpoint(name: "graph3") { users { id } }`)
		Expect(status).Should(Equal(http.StatusInternalServerError))
		Expect(body).Should(ContainSubstring("graph3"))
	})

	It("exposes metrics", func() {
		post(`query @endpoint(name: "graph2") { users { login } }`)

		resp, err := http.Get(server.URL + "/metrics")
		Expect(err).ShouldNot(HaveOccurred())
		defer resp.Body.Close()
		data, err := io.ReadAll(resp.Body)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(string(data)).Should(ContainSubstring(`graphmux_link_requests_total{namespace="graph2"} 1`))
	})

	It("validates upstreams", func() {
		Expect((&Gateway{}).Validate()).Should(MatchError("gateway has no upstream"))
		Expect((&Gateway{Default: &Upstream{}}).Validate()).Should(
			MatchError("upstream default: either url or nats is required"))
		Expect((&Gateway{Endpoints: map[string]Upstream{"graph2": {NATS: "nats://localhost:4222"}}}).Validate()).Should(
			MatchError("upstream graph2: nats requires a subject"))
		Expect((&Gateway{Default: &Upstream{URL: "http://a", NATS: "nats://b"}}).Validate()).Should(
			MatchError("upstream default: url and nats are exclusive"))

		config := &Gateway{Default: &Upstream{URL: "http://a"}}
		Expect(config.Validate()).Should(Succeed())
		Expect(config.Listen).Should(Equal(":8080"))
		Expect(config.Path).Should(Equal("/graphql"))
		Expect(config.MetricsPath).Should(Equal("/metrics"))
	})

	It("requires a gateway config to serve", func() {
		Expect(newApp(io.Discard, io.Discard).Run([]string{"graphmux", "serve"})).Should(
			MatchError(ContainSubstring("no gateway configured")))
	})
})
