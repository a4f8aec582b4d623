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
	"errors"
	"fmt"
	"log"
	"runtime"
	"strings"
)

// Op describes an operation, usually as the package and method, such as "cachemux.Read".
type Op string

// ErrKind defines the kind of error this is.
type ErrKind uint8

// Enumeration of ErrKind
const (
	ErrKindOther                    ErrKind = iota // Unclassified error. This value is not printed in the error message.
	ErrKindMalformedDocument                       // Document has no operation or fragment definition to classify.
	ErrKindUnknownNamespace                        // Document classified to a namespace without store or transport.
	ErrKindMissingSnapshotNamespace                // Snapshot references a namespace absent from the registry.
	ErrKindNoTransportConfigured                   // No transport is available for the operation.
	ErrKindInvalidSnapshot                         // Snapshot does not have the expected shape.
	ErrKindTransport                               // Transport failed to deliver an operation.
	ErrKindInvalidArgument                         // Caller supplied an invalid argument or configuration.
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindOther:
		return "other error"
	case ErrKindMalformedDocument:
		return "malformed document"
	case ErrKindUnknownNamespace:
		return "unknown namespace"
	case ErrKindMissingSnapshotNamespace:
		return "missing snapshot namespace"
	case ErrKindNoTransportConfigured:
		return "no transport configured"
	case ErrKindInvalidSnapshot:
		return "invalid snapshot"
	case ErrKindTransport:
		return "transport error"
	case ErrKindInvalidArgument:
		return "invalid argument"
	}
	return "unknown error kind"
}

// An Error describes a failure raised by one of the multiplexing components. Like the errors in
// the GraphQL layer, an Error can wrap an underlying error, and information that is not given
// explicitly (Kind and Namespace) is pulled from the wrapped one when it is also an *Error.
type Error struct {
	// Message describes the error for debugging purposes.
	Message string

	// Namespace the failing operation was routed to, if known.
	Namespace Namespace

	// The underlying error that triggered this one
	Err error

	// Op is the operation being performed, usually the name of the method being invoked.
	Op Op

	// Kind is the class of error
	Kind ErrKind
}

var _ error = (*Error)(nil)

// NewError builds an error value from arguments. Each argument is interpreted by its type:
//
//	Op:        the operation being performed
//	ErrKind:   the class of error
//	Namespace: the namespace in effect
//	error:     the underlying error
//
// Inspired by the design of upspin.io/errors [0].
//
// [0]: https://commandcenter.blogspot.com/2017/12/error-handling-in-upspin.html.
func NewError(message string, args ...interface{}) error {
	e := &Error{
		Message: message,
	}

	for _, arg := range args {
		switch arg := arg.(type) {
		case Op:
			e.Op = arg

		case ErrKind:
			e.Kind = arg

		case Namespace:
			e.Namespace = arg

		case error:
			e.Err = arg

		default:
			_, file, line, _ := runtime.Caller(1)
			log.Printf("NewError: bad call from %s:%d: %v", file, line, args)
			return fmt.Errorf("unknown type %T, value %v in error call", arg, arg)
		}
	}

	if prev, ok := e.Err.(*Error); ok {
		if e.Kind == ErrKindOther {
			e.Kind = prev.Kind
		}
		if e.Namespace.IsDefault() {
			e.Namespace = prev.Namespace
		}
	}

	return e
}

// WrapError is a convenient wrapper to build an Error value from an underlying error with a
// message.
func WrapError(err error, message string, args ...interface{}) error {
	return NewError(message, append([]interface{}{err}, args...)...)
}

// WrapErrorf is similar to WrapError but with the format specifier.
func WrapErrorf(err error, format string, args ...interface{}) error {
	return NewError(fmt.Sprintf(format, args...), err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Error implements Go's error interface.
func (e *Error) Error() string {
	var b strings.Builder
	e.printError(&b, nil)
	return b.String()
}

func (e *Error) printError(b *strings.Builder, nextErr *Error) {
	initialLen := b.Len()

	// pad appends str to the buffer if the buffer already has some data.
	pad := func(str string) {
		if b.Len() == initialLen {
			return
		}
		b.WriteString(str)
	}

	if len(e.Op) > 0 {
		b.WriteString(string(e.Op))
	}

	if len(e.Message) > 0 {
		pad(": ")
		b.WriteString(e.Message)
	}

	if !e.Namespace.IsDefault() {
		// Don't print namespace if the next error already did.
		if nextErr == nil || nextErr.Namespace != e.Namespace {
			pad(": ")
			fmt.Fprintf(b, "namespace %q", string(e.Namespace))
		}
	}

	if e.Kind != ErrKindOther {
		// Don't print kind if the next error has the same kind as ours.
		if nextErr == nil || nextErr.Kind != e.Kind {
			pad(": ")
			b.WriteString(e.Kind.String())
		}
	}

	if e.Err != nil {
		if prev, ok := e.Err.(*Error); ok {
			// Indent on new line if we are cascading non-empty Error.
			pad(":\n  ")
			prev.printError(b, e)
		} else {
			pad(": ")
			b.WriteString(e.Err.Error())
		}
	}
}

// KindOf returns the kind of the outermost *Error in err's chain, or ErrKindOther if there's none.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindOther
}

// IsKind reports whether any *Error in err's chain has the given kind.
func IsKind(err error, kind ErrKind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}
