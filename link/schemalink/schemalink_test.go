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

package schemalink_test

import (
	"github.com/botobag/artemis/graphql/executor"
	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/document"
	"github.com/botobag/graphmux/internal/testutil"
	"github.com/botobag/graphmux/link"
	"github.com/botobag/graphmux/link/schemalink"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Link", func() {
	var (
		directory *testutil.UserDirectory
		l         *schemalink.Link
	)

	BeforeEach(func() {
		directory = testutil.NewUserDirectory("login", "alice", "bob", "charlie")
		l = schemalink.New(directory.Schema())
	})

	execute := func(op *link.Operation) *link.Result {
		result, err := link.Await(link.Execute(l, op))
		Expect(err).ShouldNot(HaveOccurred())
		return result
	}

	It("executes queries", func() {
		result := execute(link.NewOperation(document.MustParse(`{ users { __typename id login } }`), nil))
		Expect(result.HasErrors()).Should(BeFalse())
		Expect(result.Data).Should(Equal(map[string]interface{}{
			"users": []interface{}{
				map[string]interface{}{"__typename": "User", "id": "1", "login": "alice"},
				map[string]interface{}{"__typename": "User", "id": "2", "login": "bob"},
				map[string]interface{}{"__typename": "User", "id": "3", "login": "charlie"},
			},
		}))
	})

	It("serves one user per distinguishing value", func() {
		small := schemalink.New(testutil.NewUserDirectory("email", "alice@example.com", "bob@example.com").Schema())
		result, err := link.Await(link.Execute(small,
			link.NewOperation(document.MustParse(`{ users { name email } }`), nil)))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(result.HasErrors()).Should(BeFalse())
		Expect(result.Data).Should(Equal(map[string]interface{}{
			"users": []interface{}{
				map[string]interface{}{"name": "Alice", "email": "alice@example.com"},
				map[string]interface{}{"name": "Bob", "email": "bob@example.com"},
			},
		}))
	})

	It("passes variables", func() {
		doc := document.MustParse(`query User($id: ID!) { user(id: $id) { name } }`)
		result := execute(link.NewOperation(doc, map[string]interface{}{"id": "2"}))
		Expect(result.Data).Should(Equal(map[string]interface{}{
			"user": map[string]interface{}{"name": "Bob"},
		}))
	})

	It("executes the named operation", func() {
		doc := document.MustParse(`
			query Users { users { id } }
			mutation Rename { rename(id: "1", name: "Alicia") { id name } }
		`)
		op := link.NewOperation(doc, nil)
		op.OperationName = "Rename"

		result := execute(op)
		Expect(result.Data).Should(Equal(map[string]interface{}{
			"rename": map[string]interface{}{"id": "1", "name": "Alicia"},
		}))

		result = execute(link.NewOperation(document.MustParse(`{ user(id: "1") { name } }`), nil))
		Expect(result.Data).Should(Equal(map[string]interface{}{
			"user": map[string]interface{}{"name": "Alicia"},
		}))
	})

	It("reports validation errors in the result", func() {
		// Servers know nothing about the routing directive.
		result := execute(link.NewOperation(document.MustParse(`query @endpoint(name: "graph2") { users { id } }`), nil))
		Expect(result.HasErrors()).Should(BeTrue())
		Expect(result.Data).Should(BeNil())

		result = execute(link.NewOperation(document.MustParse(`{ users { email } }`), nil))
		Expect(result.HasErrors()).Should(BeTrue())
		Expect(directory.Hits()).Should(BeZero())
	})

	It("reports resolver errors in the result", func() {
		result := execute(link.NewOperation(document.MustParse(`mutation { rename(id: "9", name: "Nobody") { id } }`), nil))
		Expect(result.Errors).Should(HaveLen(1))
		Expect(result.Errors[0].Message).Should(Equal("user 9 not found"))
		Expect(result.Errors[0].Path).Should(Equal([]interface{}{"rename"}))
		Expect(result.Data).Should(Equal(map[string]interface{}{"rename": nil}))
	})

	It("reuses prepared operations", func() {
		doc := document.MustParse(`query User($id: ID!) { user(id: $id) { name } }`)
		for _, id := range []string{"1", "2", "3"} {
			execute(link.NewOperation(doc, map[string]interface{}{"id": id}))
		}
		Expect(l.PreparedCount()).Should(Equal(1))
		Expect(directory.Hits()).Should(Equal(3))
	})

	It("accepts prepare options", func() {
		l = schemalink.New(directory.Schema(), schemalink.WithPrepareOptions(executor.WithoutValidation()))
		result := execute(link.NewOperation(document.MustParse(`query @endpoint(name: "graph2") { users { id } }`), nil))
		Expect(result.HasErrors()).Should(BeFalse())
		Expect(result.Data["users"]).Should(HaveLen(3))
	})

	It("rejects operations without document", func() {
		_, err := link.Await(link.Execute(l, &link.Operation{}))
		Expect(graphmux.KindOf(err)).Should(Equal(graphmux.ErrKindInvalidArgument))
	})
})
