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

// Command graphmux is the build-time tool of graphmux. It tags GraphQL documents with the routing
// directive, shows where documents are routed, serves a routing gateway and inspects persisted
// cache snapshots.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/botobag/graphmux"

	"github.com/urfave/cli"
)

type metadata struct {
	config  *Config
	logger  *slog.Logger
	verbose bool
	e       io.Writer
	w       io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero"

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", app.Name, err)
		os.Exit(1)
	}
}

func newApp(w io.Writer, e io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "graphmux"
	app.Usage = "route GraphQL documents to endpoints"
	app.Version = version
	app.HideVersion = true
	app.Writer = w
	app.ErrWriter = e

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose logging",
		},
		cli.StringFlag{
			Name:  "config, c",
			Value: "",
			Usage: " project `FILE` (YAML)",
		},
	}

	app.Commands = []cli.Command{
		{
			Name:      "tag",
			Usage:     "attach the routing directive to the documents in FILE...",
			ArgsUsage: "FILE...\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "endpoint, e",
					Value: "",
					Usage: "*endpoint `NAME`",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "",
					Usage: " output `DIR` (default: print to stdout)",
				},
			},
			Action: runTag,
		},
		{
			Name:   "generate",
			Usage:  "tag the documents of every project in the config file",
			Action: runGenerate,
		},
		{
			Name:      "route",
			Usage:     "print the namespace each document is routed to",
			ArgsUsage: "FILE...",
			Action:    runRoute,
		},
		{
			Name:  "serve",
			Usage: "serve a GraphQL gateway routing operations to the configured upstreams",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "listen, l",
					Value: "",
					Usage: " listen `ADDRESS` (default: gateway.listen of the config file)",
				},
			},
			Action: runServe,
		},
		{
			Name:  "snapshot",
			Usage: "inspect persisted cache snapshots",
			Subcommands: []cli.Command{
				{
					Name:  "keys",
					Usage: "list the keys of saved snapshots",
					Flags: []cli.Flag{
						cli.StringFlag{
							Name:  "db, d",
							Usage: "*database `PATH`",
						},
					},
					Action: runSnapshotKeys,
				},
				{
					Name:  "dump",
					Usage: "print a saved snapshot as JSON",
					Flags: []cli.Flag{
						cli.StringFlag{
							Name:  "db, d",
							Usage: "*database `PATH`",
						},
						cli.StringFlag{
							Name:  "key, k",
							Usage: "*snapshot `KEY`",
						},
					},
					Action: runSnapshotDump,
				},
			},
		},
	}

	app.Before = func(c *cli.Context) error {
		verbose := c.GlobalBool("verbose")

		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{Level: level}))

		m := &metadata{
			logger:  logger,
			verbose: verbose,
			e:       c.App.ErrWriter,
			w:       c.App.Writer,
		}

		if file := c.GlobalString("config"); len(file) > 0 {
			config, err := LoadConfig(file)
			if err != nil {
				return err
			}
			logger.Debug("loaded config", "file", file, "projects", len(config.Projects))
			m.config = config
		} else {
			m.config = &Config{}
			if err := m.config.Validate(); err != nil {
				return err
			}
		}

		c.App.Metadata = map[string]interface{}{"config": m}
		return nil
	}

	return app
}

// getMetadata finds the metadata stored by app.Before. Subcommands run in an app of their own.
func getMetadata(c *cli.Context) *metadata {
	for ctx := c; ctx != nil; ctx = ctx.Parent() {
		if m, ok := ctx.App.Metadata["config"].(*metadata); ok {
			return m
		}
	}
	panic("graphmux: metadata is not initialized")
}

func directiveConfig(m *metadata) graphmux.DirectiveConfig {
	return m.config.Directive
}
