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

package graphmux

import (
	"fmt"
)

// Namespace identifies a logical endpoint. It selects one backing cache store and one backing
// transport link.
type Namespace string

// DefaultNamespace is the namespace of documents that carry no routing directive (or whose
// directive argument is not a string literal).
const DefaultNamespace Namespace = ""

// IsDefault returns true if ns is the DefaultNamespace.
func (ns Namespace) IsDefault() bool {
	return ns == DefaultNamespace
}

// String implements fmt.Stringer.
func (ns Namespace) String() string {
	if ns.IsDefault() {
		return "<default>"
	}
	return string(ns)
}

// Default names of the routing directive and its argument.
const (
	DefaultDirectiveName    = "endpoint"
	DefaultDirectiveArgName = "name"
)

// DirectiveConfig names the routing directive, e.g., @endpoint(name: "graph2"). The same config
// must be shared by the directive transform, the namespace resolver and the transport multiplexer.
type DirectiveConfig struct {
	// DirectiveName is the name of the directive without "@"; Defaults to "endpoint".
	DirectiveName string `yaml:"name" json:"name"`

	// DirectiveArgName is the argument carrying the namespace; Defaults to "name".
	DirectiveArgName string `yaml:"arg" json:"arg"`
}

// DefaultDirectiveConfig returns the config for @endpoint(name: "...").
func DefaultDirectiveConfig() DirectiveConfig {
	return DirectiveConfig{
		DirectiveName:    DefaultDirectiveName,
		DirectiveArgName: DefaultDirectiveArgName,
	}
}

// WithDefaults returns a copy of config with empty names replaced by the default ones.
func (config DirectiveConfig) WithDefaults() DirectiveConfig {
	if len(config.DirectiveName) == 0 {
		config.DirectiveName = DefaultDirectiveName
	}
	if len(config.DirectiveArgName) == 0 {
		config.DirectiveArgName = DefaultDirectiveArgName
	}
	return config
}

// Validate checks that both names are valid GraphQL names (/[_A-Za-z][_0-9A-Za-z]*/).
func (config DirectiveConfig) Validate() error {
	if !isName(config.DirectiveName) {
		return NewError(fmt.Sprintf("invalid directive name %q", config.DirectiveName),
			Op("graphmux.DirectiveConfig.Validate"), ErrKindInvalidArgument)
	}
	if !isName(config.DirectiveArgName) {
		return NewError(fmt.Sprintf("invalid directive argument name %q", config.DirectiveArgName),
			Op("graphmux.DirectiveConfig.Validate"), ErrKindInvalidArgument)
	}
	return nil
}

// Reference: https://graphql.github.io/graphql-spec/June2018/#Name
func isName(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
