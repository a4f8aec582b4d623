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

// Package natslink sends operations to a GraphQL service over NATS request/reply and serves links
// to NATS clients.
//
// Requests and replies carry the same JSON bodies as GraphQL over HTTP.
package natslink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/botobag/artemis/concurrent/future"
	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/link"

	jsoniter "github.com/json-iterator/go"
	"github.com/nats-io/nats.go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultTimeout bounds a request whose context has no deadline.
const DefaultTimeout = 5 * time.Second

// Requester sends a request and waits for the reply. *nats.Conn implements it.
type Requester interface {
	RequestWithContext(ctx context.Context, subject string, data []byte) (*nats.Msg, error)
}

// request is the body of a request message.
type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	Extensions    map[string]interface{} `json:"extensions,omitempty"`
}

// Link publishes each operation as a request on a subject.
type Link struct {
	conn    Requester
	subject string
	timeout time.Duration
}

var _ link.Link = (*Link)(nil)

// Option configures a Link.
type Option func(l *Link)

// WithTimeout sets the timeout of requests whose context has no deadline; Defaults to
// DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(l *Link) {
		l.timeout = timeout
	}
}

// New creates a Link sending requests on subject through conn.
func New(conn Requester, subject string, opts ...Option) *Link {
	l := &Link{
		conn:    conn,
		subject: subject,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Request implements link.Link.
func (l *Link) Request(op *link.Operation, forward link.NextLink) future.Future {
	if op.Document == nil {
		return future.Err(graphmux.NewError("operation has no document",
			graphmux.Op("natslink.Request"), graphmux.ErrKindInvalidArgument))
	}
	return link.Go(func() (*link.Result, error) {
		return l.do(op)
	})
}

func (l *Link) do(op *link.Operation) (*link.Result, error) {
	const errOp = graphmux.Op("natslink.Request")

	data, err := json.Marshal(&request{
		Query:         op.Document.String(),
		OperationName: op.OperationName,
		Variables:     op.Variables,
		Extensions:    op.Extensions,
	})
	if err != nil {
		return nil, graphmux.WrapError(err, "cannot encode request", errOp, graphmux.ErrKindInvalidArgument)
	}

	ctx := op.Context()
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	msg, err := l.conn.RequestWithContext(ctx, l.subject, data)
	if err != nil {
		message := "request failed"
		switch {
		case errors.Is(err, nats.ErrNoResponders):
			message = "no responders"
		case errors.Is(err, nats.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
			message = "request timed out"
		}
		return nil, graphmux.NewError(fmt.Sprintf("%s on subject %s", message, l.subject),
			err, errOp, graphmux.ErrKindTransport)
	}

	var result link.Result
	if err := json.Unmarshal(msg.Data, &result); err != nil {
		return nil, graphmux.WrapError(err, "cannot decode reply", errOp, graphmux.ErrKindTransport)
	}
	return &result, nil
}
