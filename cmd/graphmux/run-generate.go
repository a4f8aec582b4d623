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

	"github.com/botobag/graphmux/directive"

	"github.com/urfave/cli"
)

func runGenerate(c *cli.Context) error {
	m := getMetadata(c)

	if len(m.config.Projects) == 0 {
		return fmt.Errorf("no projects configured (use --config)")
	}

	for _, project := range m.config.Projects {
		paths, err := expandPatterns(project.Documents, m.config.resolve)
		if err != nil {
			return fmt.Errorf("project %s: %w", project.Name, err)
		}
		if len(paths) == 0 {
			m.logger.Warn("no documents matched", "project", project.Name)
			continue
		}

		files, err := readDocuments(paths)
		if err != nil {
			return fmt.Errorf("project %s: %w", project.Name, err)
		}

		// Documents of the default endpoint carry no directive.
		if len(project.Endpoint) > 0 {
			files, err = directive.ForCodegen(directive.Transform{
				EndpointName: project.Endpoint,
				Config:       m.config.Directive,
			})(files)
			if err != nil {
				return fmt.Errorf("project %s: %w", project.Name, err)
			}
		}

		if err := writeDocuments(m, m.config.resolve(project.Output), files); err != nil {
			return fmt.Errorf("project %s: %w", project.Name, err)
		}
		fmt.Fprintf(m.w, "%s: %d document(s)\n", project.Name, len(files))
	}
	return nil
}
