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
	"log/slog"
	"net/http"

	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/link"
	"github.com/botobag/graphmux/link/httplink"
	"github.com/botobag/graphmux/link/natslink"
	"github.com/botobag/graphmux/linkmux"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// gateway serves GraphQL requests by routing them to the upstream of their endpoint.
type gateway struct {
	handler http.Handler
	conns   map[string]*nats.Conn
}

// Close disconnects from NATS servers.
func (g *gateway) Close() {
	for _, conn := range g.conns {
		conn.Close()
	}
}

func newGateway(config *Gateway, directive graphmux.DirectiveConfig, logger *slog.Logger) (*gateway, error) {
	g := &gateway{
		conns: map[string]*nats.Conn{},
	}

	upstream := func(u *Upstream) (link.Link, error) {
		if len(u.URL) > 0 {
			return httplink.New(u.URL), nil
		}

		conn, exists := g.conns[u.NATS]
		if !exists {
			var err error
			conn, err = nats.Connect(u.NATS, nats.Name("graphmux gateway"))
			if err != nil {
				return nil, fmt.Errorf("connect %s: %w", u.NATS, err)
			}
			g.conns[u.NATS] = conn
		}

		var opts []natslink.Option
		if u.Timeout > 0 {
			opts = append(opts, natslink.WithTimeout(u.Timeout))
		}
		return natslink.New(conn, u.Subject, opts...), nil
	}

	var defaultLink link.Link
	if config.Default != nil {
		l, err := upstream(config.Default)
		if err != nil {
			g.Close()
			return nil, err
		}
		defaultLink = l
	}

	links := make(map[string]link.Link, len(config.Endpoints))
	for name, u := range config.Endpoints {
		u := u
		l, err := upstream(&u)
		if err != nil {
			g.Close()
			return nil, err
		}
		links[name] = l
	}

	registry := prometheus.NewRegistry()
	opts := []linkmux.Option{
		linkmux.WithDirective(directive),
		linkmux.WithLogger(logger),
		linkmux.WithMetrics(registry),
	}
	if config.Fallback {
		opts = append(opts, linkmux.FallbackToDefault())
	}

	mux, err := linkmux.New(defaultLink, links, opts...)
	if err != nil {
		g.Close()
		return nil, err
	}

	serveMux := http.NewServeMux()
	serveMux.Handle(config.Path, httplink.Handler(mux))
	serveMux.Handle(config.MetricsPath, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	g.handler = serveMux

	return g, nil
}
