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

package cache

import (
	"fmt"

	"github.com/botobag/artemis/graphql/ast"

	jsoniter "github.com/json-iterator/go"
)

// Map keys are sorted to have a canonical key for the same arguments.
var fieldKeyJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// FieldKey returns the key under which a field with the given arguments is stored, e.g.,
// `user({"id":"1"})`. Fields without arguments are stored under their names.
func FieldKey(name string, args map[string]interface{}) string {
	if len(args) == 0 {
		return name
	}
	encoded, err := fieldKeyJSON.MarshalToString(args)
	if err != nil {
		encoded = fmt.Sprint(args)
	}
	return name + "(" + encoded + ")"
}

// FieldName returns the field name part of a key returned by FieldKey.
func FieldName(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == '(' {
			return key[:i]
		}
	}
	return key
}

// StoreFieldName returns the key under which the value of field is stored.
func StoreFieldName(field *ast.Field, variables map[string]interface{}) string {
	return FieldKey(field.Name.Value(), ArgumentValues(field.Arguments, variables))
}

// ArgumentValues coerces arguments into Go values with variables substituted. Arguments referring to
// an undefined variable are omitted.
func ArgumentValues(args ast.Arguments, variables map[string]interface{}) map[string]interface{} {
	if len(args) == 0 {
		return nil
	}
	values := make(map[string]interface{}, len(args))
	for _, arg := range args {
		if value, ok := ValueFromAST(arg.Value, variables); ok {
			values[arg.Name.Value()] = value
		}
	}
	return values
}

// ValueFromAST converts a value node into a Go value. The returned bool is false when the value
// refers to a variable that has no value.
func ValueFromAST(value ast.Value, variables map[string]interface{}) (interface{}, bool) {
	switch value := value.(type) {
	case ast.Variable:
		v, exists := variables[value.Name.Value()]
		return v, exists

	case ast.IntValue:
		if v, err := value.Int64Value(); err == nil {
			return v, true
		}
		return value.String(), true

	case ast.ListValue:
		values := value.Values()
		result := make([]interface{}, 0, len(values))
		for _, item := range values {
			v, _ := ValueFromAST(item, variables)
			result = append(result, v)
		}
		return result, true

	case ast.ObjectValue:
		fields := value.Fields()
		result := make(map[string]interface{}, len(fields))
		for _, field := range fields {
			if v, ok := ValueFromAST(field.Value, variables); ok {
				result[field.Name.Value()] = v
			}
		}
		return result, true
	}

	return value.Interface(), true
}

// ShouldInclude evaluates @skip and @include on a selection.
func ShouldInclude(directives ast.Directives, variables map[string]interface{}) bool {
	for _, directive := range directives {
		var skipIf bool
		switch directive.Name.Value() {
		case "skip":
			skipIf = true
		case "include":
			skipIf = false
		default:
			continue
		}

		for _, arg := range directive.Arguments {
			if arg.Name.Value() != "if" {
				continue
			}
			value, _ := ValueFromAST(arg.Value, variables)
			condition, _ := value.(bool)
			if condition == skipIf {
				return false
			}
		}
	}
	return true
}
