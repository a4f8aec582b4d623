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

package natslink

import (
	"context"
	"log/slog"

	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/document"
	"github.com/botobag/graphmux/link"

	"github.com/nats-io/nats.go"
)

// ServeOption configures Serve.
type ServeOption func(s *server)

// WithLogger sets the logger reporting replies that cannot be sent; Defaults to slog.Default().
func WithLogger(logger *slog.Logger) ServeOption {
	return func(s *server) {
		s.logger = logger
	}
}

type server struct {
	link   link.Link
	logger *slog.Logger
}

// Serve subscribes to subject and answers each request by executing it through l. The returned
// subscription stops serving when unsubscribed.
func Serve(conn *nats.Conn, subject string, l link.Link, opts ...ServeOption) (*nats.Subscription, error) {
	s := &server{link: l}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	sub, err := conn.Subscribe(subject, s.handle)
	if err != nil {
		return nil, graphmux.WrapError(err, "cannot subscribe", graphmux.Op("natslink.Serve"), graphmux.ErrKindTransport)
	}
	return sub, nil
}

func (s *server) handle(msg *nats.Msg) {
	if err := msg.Respond(Handle(context.Background(), s.link, msg.Data)); err != nil {
		s.logger.Warn("cannot send reply", "subject", msg.Subject, "error", err)
	}
}

// Handle executes the request encoded in data through l and returns the encoded reply. Failures are
// reported in the "errors" entry of the reply.
func Handle(ctx context.Context, l link.Link, data []byte) []byte {
	result, err := handle(ctx, l, data)
	if err != nil {
		result = &link.Result{
			Errors: link.ResultErrors{{Message: err.Error()}},
		}
	}

	reply, err := json.Marshal(result)
	if err != nil {
		reply, _ = json.Marshal(&link.Result{
			Errors: link.ResultErrors{{Message: err.Error()}},
		})
	}
	return reply
}

func handle(ctx context.Context, l link.Link, data []byte) (*link.Result, error) {
	var req request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, graphmux.WrapError(err, "cannot decode request", graphmux.Op("natslink.Handle"),
			graphmux.ErrKindInvalidArgument)
	}

	doc, err := document.Parse(req.Query)
	if err != nil {
		return nil, err
	}

	op := link.NewOperation(doc, req.Variables).WithContext(ctx)
	op.OperationName = req.OperationName
	op.Extensions = req.Extensions

	result, err := link.Await(link.Execute(l, op))
	if err != nil {
		return nil, err
	}
	if result == nil {
		result = &link.Result{}
	}
	return result, nil
}
