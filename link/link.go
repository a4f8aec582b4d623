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

// Package link defines the transport abstraction: a chain of links through which an operation is
// sent to a GraphQL endpoint.
//
// A Link receives an Operation and a function to forward it to the next link in the chain. A link
// that talks to the network (a terminating link) ignores forward. Every link returns a
// future.Future whose value is a *Result.
package link

import (
	"github.com/botobag/artemis/concurrent/future"
	"github.com/botobag/graphmux"
)

// NextLink forwards an operation to the rest of the chain.
type NextLink func(op *Operation) future.Future

// Link processes operations.
type Link interface {
	Request(op *Operation, forward NextLink) future.Future
}

// LinkFunc is an adapter to allow the use of ordinary functions as Link.
type LinkFunc func(op *Operation, forward NextLink) future.Future

// Request implements Link by calling f(op, forward).
func (f LinkFunc) Request(op *Operation, forward NextLink) future.Future {
	return f(op, forward)
}

// end is forwarded to when an operation passes the last link of a chain.
func end(op *Operation) future.Future {
	return future.Err(graphmux.NewError("operation reached the end of the link chain",
		graphmux.Op("link.Execute"), graphmux.ErrKindNoTransportConfigured))
}

type chain struct {
	links []Link
}

// From concatenates links into one. Operations flow through the links in the given order.
func From(links ...Link) Link {
	switch len(links) {
	case 0:
		return LinkFunc(func(op *Operation, forward NextLink) future.Future {
			return forward(op)
		})
	case 1:
		return links[0]
	}
	return &chain{links}
}

func (c *chain) Request(op *Operation, forward NextLink) future.Future {
	return c.next(0, forward)(op)
}

func (c *chain) next(i int, forward NextLink) NextLink {
	if i == len(c.links) {
		return forward
	}
	return func(op *Operation) future.Future {
		return c.links[i].Request(op, c.next(i+1, forward))
	}
}

// Split sends operations for which test returns true to left and the others to right.
func Split(test func(op *Operation) bool, left Link, right Link) Link {
	return LinkFunc(func(op *Operation, forward NextLink) future.Future {
		if test(op) {
			return left.Request(op, forward)
		}
		return right.Request(op, forward)
	})
}

// Execute sends op through l. Forwarding past the end of l fails with
// ErrKindNoTransportConfigured.
func Execute(l Link, op *Operation) future.Future {
	return l.Request(op, end)
}

// Await blocks the current goroutine until f completes and returns its result.
func Await(f future.Future) (*Result, error) {
	value, err := future.BlockOn(f)
	if err != nil {
		return nil, err
	}
	result, _ := value.(*Result)
	return result, nil
}
