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

package link

import (
	"strings"
)

// Result is the response of an executed operation, shaped as the GraphQL response format.
type Result struct {
	Data       map[string]interface{} `json:"data,omitempty"`
	Errors     ResultErrors           `json:"errors,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

// HasErrors returns true if the result contains errors.
func (result *Result) HasErrors() bool {
	return len(result.Errors) > 0
}

// ResultErrorLocation locates an error in the request document.
type ResultErrorLocation struct {
	Line   uint `json:"line"`
	Column uint `json:"column"`
}

// ResultError is an error reported by the GraphQL server in the "errors" entry of a response.
type ResultError struct {
	Message    string                 `json:"message"`
	Locations  []ResultErrorLocation  `json:"locations,omitempty"`
	Path       []interface{}          `json:"path,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

// Error implements Go's error interface.
func (e ResultError) Error() string {
	return e.Message
}

// ResultErrors is the list of errors in a Result. It implements error so a response with errors
// can be reported as a failure.
type ResultErrors []ResultError

// Error implements Go's error interface.
func (errs ResultErrors) Error() string {
	messages := make([]string, len(errs))
	for i, e := range errs {
		messages[i] = e.Message
	}
	return strings.Join(messages, "; ")
}
