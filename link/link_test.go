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

package link_test

import (
	"context"
	"errors"
	"time"

	"github.com/botobag/artemis/concurrent/future"
	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/document"
	"github.com/botobag/graphmux/internal/testutil"
	"github.com/botobag/graphmux/link"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// respond is a terminating link that answers with the name of the operation.
var respond = link.LinkFunc(func(op *link.Operation, forward link.NextLink) future.Future {
	return future.Ready(&link.Result{
		Data: map[string]interface{}{"operation": op.OperationName},
	})
})

// tag returns a link that records its name into the operation before forwarding.
func tag(name string, trace *[]string) link.Link {
	return link.LinkFunc(func(op *link.Operation, forward link.NextLink) future.Future {
		*trace = append(*trace, name)
		op.Set(name, true)
		return forward(op)
	})
}

var _ = Describe("Operation", func() {
	doc := document.MustParse(`query Users { users { id } }`)

	It("takes the operation name from the document", func() {
		op := link.NewOperation(doc, map[string]interface{}{"first": 1})
		Expect(op.OperationName).Should(Equal("Users"))
		Expect(op.Document).Should(BeIdenticalTo(doc))
		Expect(op.Context()).Should(Equal(context.Background()))

		Expect(link.NewOperation(document.MustParse(`{ users { id } }`), nil).OperationName).Should(BeEmpty())
	})

	It("copies on WithContext and WithDocument", func() {
		type key struct{}

		op := link.NewOperation(doc, nil)
		op.Set("auth", "token")

		ctx := context.WithValue(context.Background(), key{}, "value")
		op2 := op.WithContext(ctx)
		Expect(op2.Context()).Should(Equal(ctx))
		Expect(op.Context()).Should(Equal(context.Background()))
		Expect(op2.Get("auth")).Should(Equal("token"))

		other := document.MustParse(`{ me { id } }`)
		op3 := op2.WithDocument(other)
		Expect(op3.Document).Should(BeIdenticalTo(other))
		Expect(op3.Context()).Should(Equal(ctx))
		Expect(op2.Document).Should(BeIdenticalTo(doc))

		op3.Set("auth", "other")
		Expect(op2.Get("auth")).Should(Equal("token"))
		Expect(op3.Get("missing")).Should(BeNil())
	})
})

var _ = Describe("Link", func() {
	op := func() *link.Operation {
		return link.NewOperation(document.MustParse(`query Me { me { id } }`), nil)
	}

	It("chains links in order", func() {
		var trace []string
		result, err := link.Await(link.Execute(link.From(tag("a", &trace), tag("b", &trace), respond), op()))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(result.Data).Should(HaveKeyWithValue("operation", "Me"))
		Expect(trace).Should(Equal([]string{"a", "b"}))
	})

	It("fails when an operation passes the end of the chain", func() {
		var trace []string
		_, err := link.Await(link.Execute(link.From(tag("a", &trace)), op()))
		Expect(err).Should(testutil.MatchMuxError(
			testutil.KindIs(graphmux.ErrKindNoTransportConfigured),
		))

		_, err = link.Await(link.Execute(link.From(), op()))
		Expect(graphmux.KindOf(err)).Should(Equal(graphmux.ErrKindNoTransportConfigured))
	})

	It("splits operations by a test", func() {
		var trace []string
		split := link.Split(
			func(op *link.Operation) bool { return op.OperationName == "Me" },
			link.From(tag("left", &trace), respond),
			link.From(tag("right", &trace), respond),
		)

		_, err := link.Await(link.Execute(split, op()))
		Expect(err).ShouldNot(HaveOccurred())
		_, err = link.Await(link.Execute(split, link.NewOperation(document.MustParse(`{ me { id } }`), nil)))
		Expect(err).ShouldNot(HaveOccurred())

		Expect(trace).Should(Equal([]string{"left", "right"}))
	})

	It("passes values set by earlier links", func() {
		var trace []string
		check := link.LinkFunc(func(op *link.Operation, forward link.NextLink) future.Future {
			Expect(op.Get("a")).Should(Equal(true))
			return respond(op, forward)
		})
		_, err := link.Await(link.Execute(link.From(tag("a", &trace), check), op()))
		Expect(err).ShouldNot(HaveOccurred())
	})
})

var _ = Describe("Go", func() {
	It("completes with the result of the function", func() {
		release := make(chan struct{})
		f := link.Go(func() (*link.Result, error) {
			<-release
			return &link.Result{Data: map[string]interface{}{"ok": true}}, nil
		})

		result, err := f.Poll(future.NopWaker)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(result).Should(Equal(future.PollResultPending))

		close(release)
		r, err := link.Await(f)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(r.Data).Should(HaveKeyWithValue("ok", true))
	})

	It("completes with the error of the function", func() {
		f := link.Go(func() (*link.Result, error) {
			time.Sleep(time.Millisecond)
			return nil, errors.New("unreachable")
		})
		_, err := link.Await(f)
		Expect(err).Should(MatchError("unreachable"))
	})

	It("joins with other futures", func() {
		values, err := future.BlockOn(future.Join(
			link.Go(func() (*link.Result, error) { return &link.Result{}, nil }),
			future.Ready(&link.Result{}),
		))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(values).Should(HaveLen(2))
	})
})

var _ = Describe("Result", func() {
	It("reports errors", func() {
		result := &link.Result{
			Errors: link.ResultErrors{{Message: "a"}, {Message: "b"}},
		}
		Expect(result.HasErrors()).Should(BeTrue())
		Expect(result.Errors.Error()).Should(Equal("a; b"))
		Expect((&link.Result{}).HasErrors()).Should(BeFalse())
	})

	It("serializes into the response format", func() {
		Expect(&link.Result{
			Data: map[string]interface{}{"me": nil},
			Errors: link.ResultErrors{{
				Message:   "denied",
				Locations: []link.ResultErrorLocation{{Line: 1, Column: 3}},
				Path:      []interface{}{"me"},
			}},
		}).Should(testutil.SerializeToJSONAs(map[string]interface{}{
			"data": map[string]interface{}{"me": nil},
			"errors": []interface{}{
				map[string]interface{}{
					"message":   "denied",
					"locations": []interface{}{map[string]interface{}{"line": 1, "column": 3}},
					"path":      []interface{}{"me"},
				},
			},
		}))
	})
})
