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

package directive

import (
	"fmt"

	"github.com/botobag/artemis/graphql/ast"
	"github.com/botobag/artemis/graphql/parser"
	"github.com/botobag/artemis/graphql/token"
	"github.com/botobag/graphmux"
	"github.com/botobag/graphmux/document"

	jsoniter "github.com/json-iterator/go"
)

// Attach returns a new document in which every top-level operation definition and fragment
// definition carries one extra routing directive, @<DirectiveName>(<DirectiveArgName>: "endpoint").
// Existing directives are kept in front of the new one. The input document is not modified.
//
// Attach is not idempotent: attaching twice appends two directives.
func Attach(doc *document.Document, endpoint string, config graphmux.DirectiveConfig) (*document.Document, error) {
	if doc == nil {
		return nil, graphmux.NewError("nil document", graphmux.Op("directive.Attach"), graphmux.ErrKindInvalidArgument)
	}

	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, graphmux.WrapError(err, "invalid directive config", graphmux.Op("directive.Attach"))
	}

	directive, err := newDirective(endpoint, config)
	if err != nil {
		return nil, err
	}

	source := doc.Definitions()
	definitions := make(ast.Definitions, len(source))
	for i, definition := range source {
		switch definition := definition.(type) {
		case *ast.OperationDefinition:
			copied := *definition
			copied.Directives = appendDirective(definition.Directives, directive)
			definitions[i] = &copied

		case *ast.FragmentDefinition:
			copied := *definition
			copied.Directives = appendDirective(definition.Directives, directive)
			definitions[i] = &copied

		default:
			definitions[i] = definition
		}
	}

	return document.New(ast.Document{Definitions: definitions}), nil
}

// MustAttach is like Attach but panics on errors.
func MustAttach(doc *document.Document, endpoint string, config graphmux.DirectiveConfig) *document.Document {
	result, err := Attach(doc, endpoint, config)
	if err != nil {
		panic(err)
	}
	return result
}

func appendDirective(directives ast.Directives, directive *ast.Directive) ast.Directives {
	result := make(ast.Directives, 0, len(directives)+1)
	result = append(result, directives...)
	return append(result, directive)
}

// newDirective builds the directive node by parsing it from text so its tokens are linked into a
// real source and can be used to locate errors.
func newDirective(endpoint string, config graphmux.DirectiveConfig) (*ast.Directive, error) {
	value, err := jsoniter.ConfigCompatibleWithStandardLibrary.MarshalToString(endpoint)
	if err != nil {
		return nil, graphmux.WrapError(err, "cannot quote endpoint name",
			graphmux.Op("directive.Attach"), graphmux.ErrKindInvalidArgument)
	}

	body := fmt.Sprintf("query @%s(%s: %s) { __typename }",
		config.DirectiveName, config.DirectiveArgName, value)
	doc, err := parser.Parse(token.NewSource(body))
	if err != nil {
		return nil, graphmux.WrapError(err, "cannot build routing directive",
			graphmux.Op("directive.Attach"), graphmux.ErrKindInvalidArgument)
	}

	return doc.Definitions[0].(*ast.OperationDefinition).Directives[0], nil
}

// Strip removes every directive named config.DirectiveName from the document: on top-level
// definitions and on the fields, inline fragments and fragment spreads nested in their selection
// sets. All other directives are left alone. When nothing carries the directive, doc itself is
// returned.
func Strip(doc *document.Document, config graphmux.DirectiveConfig) *document.Document {
	if doc == nil {
		return nil
	}

	name := config.WithDefaults().DirectiveName
	source := doc.Definitions()

	var definitions ast.Definitions
	for i, definition := range source {
		var replacement ast.Definition

		switch definition := definition.(type) {
		case *ast.OperationDefinition:
			directives, stripped := removeDirective(definition.Directives, name)
			selectionSet, nestedStripped := stripSelectionSet(definition.SelectionSet, name)
			if stripped || nestedStripped {
				copied := *definition
				copied.Directives = directives
				copied.SelectionSet = selectionSet
				replacement = &copied
			}

		case *ast.FragmentDefinition:
			directives, stripped := removeDirective(definition.Directives, name)
			selectionSet, nestedStripped := stripSelectionSet(definition.SelectionSet, name)
			if stripped || nestedStripped {
				copied := *definition
				copied.Directives = directives
				copied.SelectionSet = selectionSet
				replacement = &copied
			}
		}

		if replacement == nil {
			if definitions != nil {
				definitions[i] = definition
			}
			continue
		}

		if definitions == nil {
			definitions = make(ast.Definitions, len(source))
			copy(definitions, source[:i])
		}
		definitions[i] = replacement
	}

	if definitions == nil {
		return doc
	}
	return document.New(ast.Document{Definitions: definitions})
}

// stripSelectionSet removes the directive from the selections in selectionSet at any depth.
// Unchanged selections are shared with the input.
func stripSelectionSet(selectionSet ast.SelectionSet, name string) (ast.SelectionSet, bool) {
	var result ast.SelectionSet
	for i, selection := range selectionSet {
		var replacement ast.Selection

		switch selection := selection.(type) {
		case *ast.Field:
			directives, stripped := removeDirective(selection.Directives, name)
			nested, nestedStripped := stripSelectionSet(selection.SelectionSet, name)
			if stripped || nestedStripped {
				copied := *selection
				copied.Directives = directives
				copied.SelectionSet = nested
				replacement = &copied
			}

		case *ast.InlineFragment:
			directives, stripped := removeDirective(selection.Directives, name)
			nested, nestedStripped := stripSelectionSet(selection.SelectionSet, name)
			if stripped || nestedStripped {
				copied := *selection
				copied.Directives = directives
				copied.SelectionSet = nested
				replacement = &copied
			}

		case *ast.FragmentSpread:
			if directives, stripped := removeDirective(selection.Directives, name); stripped {
				copied := *selection
				copied.Directives = directives
				replacement = &copied
			}
		}

		if replacement == nil {
			if result != nil {
				result[i] = selection
			}
			continue
		}
		if result == nil {
			result = make(ast.SelectionSet, len(selectionSet))
			copy(result, selectionSet[:i])
		}
		result[i] = replacement
	}

	if result == nil {
		return selectionSet, false
	}
	return result, true
}

func removeDirective(directives ast.Directives, name string) (ast.Directives, bool) {
	var result ast.Directives
	stripped := false
	for _, directive := range directives {
		if directive.Name.Value() == name {
			stripped = true
			continue
		}
		result = append(result, directive)
	}
	if !stripped {
		return directives, false
	}
	return result, true
}

// Transform attaches the routing directive of a fixed endpoint to documents. It is the runtime
// counterpart of the codegen hook for documents that are built ad hoc.
type Transform struct {
	EndpointName string
	Config       graphmux.DirectiveConfig
}

// TransformDocument attaches the directive to doc.
func (t Transform) TransformDocument(doc *document.Document) (*document.Document, error) {
	return Attach(doc, t.EndpointName, t.Config)
}

// DocumentFile is a document collected by code generation together with where it was found.
// Document is nil for files that contain no GraphQL.
type DocumentFile struct {
	Location string
	Document *document.Document
}

// CodegenHook transforms a batch of collected documents before code is generated from them.
type CodegenHook func(files []DocumentFile) ([]DocumentFile, error)

// ForCodegen returns a CodegenHook that attaches the directive of t to every document in the batch.
// Files without document are passed through. The returned slice is newly allocated.
func ForCodegen(t Transform) CodegenHook {
	return func(files []DocumentFile) ([]DocumentFile, error) {
		result := make([]DocumentFile, len(files))
		for i, file := range files {
			result[i] = file
			if file.Document == nil {
				continue
			}
			doc, err := t.TransformDocument(file.Document)
			if err != nil {
				return nil, graphmux.WrapErrorf(err, "transform %s", file.Location)
			}
			result[i].Document = doc
		}
		return result, nil
	}
}
