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
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/cache"
	"github.com/botobag/graphmux/directive"
	"github.com/botobag/graphmux/document"
	"github.com/botobag/graphmux/persist"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("graphmux", func() {
	var (
		dir    string
		stdout *bytes.Buffer
		stderr *bytes.Buffer
	)

	BeforeEach(func() {
		var err error
		dir, err = ioutil.TempDir("", "graphmux-cmd")
		Expect(err).ShouldNot(HaveOccurred())
		stdout = new(bytes.Buffer)
		stderr = new(bytes.Buffer)
	})

	AfterEach(func() {
		Expect(os.RemoveAll(dir)).Should(Succeed())
	})

	run := func(args ...string) error {
		return newApp(stdout, stderr).Run(append([]string{"graphmux"}, args...))
	}

	writeFile := func(name string, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.MkdirAll(filepath.Dir(path), 0755)).Should(Succeed())
		Expect(ioutil.WriteFile(path, []byte(content), 0644)).Should(Succeed())
		return path
	}

	resolveFile := func(path string, config graphmux.DirectiveConfig) graphmux.Namespace {
		data, err := ioutil.ReadFile(path)
		Expect(err).ShouldNot(HaveOccurred())
		doc, err := document.Parse(string(data))
		Expect(err).ShouldNot(HaveOccurred())
		ns, err := directive.Resolve(doc, config)
		Expect(err).ShouldNot(HaveOccurred())
		return ns
	}

	Describe("tag", func() {
		It("prints tagged documents", func() {
			users := writeFile("users.graphql", `query Users { users { id login } }`)

			Expect(run("tag", "--endpoint", "graph2", users)).Should(Succeed())
			Expect(stdout.String()).Should(HavePrefix("# " + users + "\n"))

			printed := strings.TrimPrefix(stdout.String(), "# "+users+"\n")
			doc, err := document.Parse(printed)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(directive.Resolve(doc, graphmux.DefaultDirectiveConfig())).Should(Equal(graphmux.Namespace("graph2")))
		})

		It("writes tagged documents into the output directory", func() {
			users := writeFile("src/users.graphql", `
				query Users { users { ...UserParts } }
				fragment UserParts on User { id login }
			`)
			empty := writeFile("src/empty.graphql", "\n  \n")
			out := filepath.Join(dir, "out")

			Expect(run("tag", "-e", "graph2", "-o", out, users, empty)).Should(Succeed())
			Expect(stdout.String()).Should(BeEmpty())

			config := graphmux.DefaultDirectiveConfig()
			Expect(resolveFile(filepath.Join(out, "users.graphql"), config)).Should(Equal(graphmux.Namespace("graph2")))

			data, err := ioutil.ReadFile(filepath.Join(out, "empty.graphql"))
			Expect(err).ShouldNot(HaveOccurred())
			Expect(data).Should(BeEmpty())
		})

		It("requires an endpoint and files", func() {
			users := writeFile("users.graphql", `{ users { id } }`)
			Expect(run("tag", users)).Should(MatchError("endpoint name is required"))
			Expect(run("tag", "--endpoint", "graph2")).Should(MatchError("no document files"))
		})

		It("reports syntax errors with the file name", func() {
			broken := writeFile("broken.graphql", `query { users `)
			err := run("tag", "--endpoint", "graph2", broken)
			Expect(err).Should(HaveOccurred())
			Expect(err.Error()).Should(HavePrefix(broken + ": "))
		})
	})

	Describe("route", func() {
		It("prints the namespace of each document", func() {
			a := writeFile("a.graphql", `{ users { id } }`)
			b := writeFile("b.graphql", `query @endpoint(name: "graph2") { users { id } }`)
			c := writeFile("c.graphql", ``)

			Expect(run("route", a, b, c)).Should(Succeed())
			Expect(stdout.String()).Should(Equal(
				a + "\t<default>\n" +
					b + "\tgraph2\n" +
					c + "\t(empty)\n"))
		})

		It("logs verbosely with -v", func() {
			config := writeFile("graphmux.yml", "projects: []\n")
			a := writeFile("a.graphql", `{ users { id } }`)

			Expect(run("-v", "-c", config, "route", a)).Should(Succeed())
			Expect(stdout.String()).Should(Equal(a + "\t<default>\n"))
			Expect(stderr.String()).Should(ContainSubstring("loaded config"))

			stderr.Reset()
			stdout.Reset()
			Expect(run("--verbose", "route", a)).Should(Succeed())
			Expect(stdout.String()).Should(Equal(a + "\t<default>\n"))
		})

		It("uses the directive of the config file", func() {
			config := writeFile("graphmux.yml", `
directive:
  name: graph
  arg: id
`)
			a := writeFile("a.graphql", `query @graph(id: "graph3") @endpoint(name: "graph2") { users { id } }`)

			Expect(run("--config", config, "route", a)).Should(Succeed())
			Expect(stdout.String()).Should(Equal(a + "\tgraph3\n"))
		})
	})

	Describe("generate", func() {
		It("tags the documents of every project", func() {
			writeFile("graph1/users.graphql", `query Users { users { id email } }`)
			writeFile("graph2/users.graphql", `query Users { users { id login } }`)
			writeFile("graph2/user.graphql", `query User($id: ID!) { user(id: $id) { login } }`)
			config := writeFile("graphmux.yml", `
projects:
  - name: accounts
    documents: ["graph1/*.graphql"]
    output: out/graph1
  - name: logins
    endpoint: graph2
    documents: ["graph2/*.graphql", "graph2/users.graphql"]
`)

			Expect(run("-c", config, "generate")).Should(Succeed())
			Expect(stdout.String()).Should(Equal("accounts: 1 document(s)\nlogins: 2 document(s)\n"))

			directiveConfig := graphmux.DefaultDirectiveConfig()
			Expect(resolveFile(filepath.Join(dir, "out/graph1/users.graphql"), directiveConfig)).Should(Equal(graphmux.DefaultNamespace))
			Expect(resolveFile(filepath.Join(dir, DefaultOutput, "users.graphql"), directiveConfig)).Should(Equal(graphmux.Namespace("graph2")))
			Expect(resolveFile(filepath.Join(dir, DefaultOutput, "user.graphql"), directiveConfig)).Should(Equal(graphmux.Namespace("graph2")))
		})

		It("requires projects", func() {
			Expect(run("generate")).Should(MatchError(ContainSubstring("no projects configured")))
		})
	})

	Describe("config", func() {
		It("fills defaults", func() {
			config := Config{Projects: []Project{{Name: "a", Documents: []string{"*.graphql"}}}}
			Expect(config.Validate()).Should(Succeed())
			Expect(config.Directive).Should(Equal(graphmux.DefaultDirectiveConfig()))
			Expect(config.Projects[0].Output).Should(Equal(DefaultOutput))
		})

		It("rejects invalid projects", func() {
			Expect((&Config{Projects: []Project{{Documents: []string{"*"}}}}).Validate()).Should(
				MatchError("project #1 has no name"))
			Expect((&Config{Projects: []Project{{Name: "a"}}}).Validate()).Should(
				MatchError(`project "a" has no documents`))
			Expect((&Config{Projects: []Project{
				{Name: "a", Documents: []string{"*"}},
				{Name: "a", Documents: []string{"*"}},
			}}).Validate()).Should(MatchError(`duplicate project "a"`))
			Expect((&Config{Directive: graphmux.DirectiveConfig{DirectiveName: "end point"}}).Validate()).Should(HaveOccurred())
		})

		It("fails on unreadable config files", func() {
			Expect(run("--config", filepath.Join(dir, "missing.yml"), "route")).Should(MatchError(HavePrefix("read config: ")))

			config := writeFile("bad.yml", "projects: {")
			Expect(run("--config", config, "route")).Should(MatchError(ContainSubstring("parse config")))
		})
	})

	Describe("snapshot", func() {
		var path string

		BeforeEach(func() {
			path = filepath.Join(dir, "db")
			db, err := persist.Open(path)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(db.Save("session", cache.Snapshot{
				"default": map[string]interface{}{
					"ROOT_QUERY": map[string]interface{}{"a": 1.0},
				},
				"namespaced": map[string]interface{}{},
			})).Should(Succeed())
			Expect(db.Save("backup", cache.Snapshot{"ROOT_QUERY": map[string]interface{}{}})).Should(Succeed())
			Expect(db.Close()).Should(Succeed())
		})

		It("lists keys", func() {
			Expect(run("snapshot", "keys", "--db", path)).Should(Succeed())
			Expect(stdout.String()).Should(Equal("backup\nsession\n"))
		})

		It("dumps a snapshot", func() {
			Expect(run("snapshot", "dump", "--db", path, "--key", "session")).Should(Succeed())
			Expect(stdout.String()).Should(MatchJSON(`{
				"default": {"ROOT_QUERY": {"a": 1}},
				"namespaced": {}
			}`))
		})

		It("requires arguments", func() {
			Expect(run("snapshot", "keys")).Should(MatchError("database path is required"))
			Expect(run("snapshot", "dump", "--db", path)).Should(MatchError("snapshot key is required"))
			Expect(run("snapshot", "dump", "--db", path, "--key", "missing")).Should(MatchError(ContainSubstring("not found")))
		})
	})
})
