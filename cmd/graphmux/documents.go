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
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/botobag/graphmux/directive"
	"github.com/botobag/graphmux/document"
)

// readDocuments loads the GraphQL files at paths. Files containing only whitespace yield a nil
// Document.
func readDocuments(paths []string) ([]directive.DocumentFile, error) {
	files := make([]directive.DocumentFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		file := directive.DocumentFile{Location: path}
		if len(strings.TrimSpace(string(data))) > 0 {
			doc, err := document.Parse(string(data))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			file.Document = doc
		}
		files = append(files, file)
	}
	return files, nil
}

// expandPatterns resolves the glob patterns into a sorted list of unique paths.
func expandPatterns(patterns []string, resolve func(string) string) ([]string, error) {
	seen := map[string]bool{}
	var paths []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(resolve(pattern))
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			if !seen[match] {
				seen[match] = true
				paths = append(paths, match)
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// writeDocuments writes each tagged document into dir under the base name of its source file.
func writeDocuments(m *metadata, dir string, files []directive.DocumentFile) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, file := range files {
		var content string
		if file.Document != nil {
			content = file.Document.String()
		}
		target := filepath.Join(dir, filepath.Base(file.Location))
		if err := os.WriteFile(target, []byte(content), 0644); err != nil {
			return err
		}
		m.logger.Debug("wrote document", "source", file.Location, "target", target)
	}
	return nil
}
