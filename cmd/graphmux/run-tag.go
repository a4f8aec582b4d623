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

func runTag(c *cli.Context) error {
	m := getMetadata(c)

	endpoint := c.String("endpoint")
	if len(endpoint) == 0 {
		return fmt.Errorf("endpoint name is required")
	}
	if c.NArg() == 0 {
		return fmt.Errorf("no document files")
	}

	files, err := readDocuments(c.Args())
	if err != nil {
		return err
	}

	tagged, err := directive.ForCodegen(directive.Transform{
		EndpointName: endpoint,
		Config:       directiveConfig(m),
	})(files)
	if err != nil {
		return err
	}

	if out := c.String("out"); len(out) > 0 {
		return writeDocuments(m, out, tagged)
	}

	for _, file := range tagged {
		fmt.Fprintf(m.w, "# %s\n", file.Location)
		if file.Document != nil {
			fmt.Fprint(m.w, file.Document.String())
		}
	}
	return nil
}
