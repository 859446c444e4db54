// Copyright 2023 The Cockroach Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package xerrors collects the error taxonomy shared by every Source,
// Destination, and the orchestration engine, per spec.md section 7. It
// is a leaf package (no internal imports) so that it can be imported
// from typesystem, source, destination, and engine without cycles.
package xerrors

import (
	stderrors "errors"

	"github.com/pkg/errors"
)

// Sentinel values for errors.Is, one per Kind named in spec.md section
// 7, so callers that only care whether an error is e.g.
// UnsupportedType can write errors.Is(err, xerrors.ErrUnsupportedType)
// instead of errors.As-ing into the concrete struct and switching on
// Kind themselves.
var (
	ErrSchemaUnavailable    = stderrors.New("xerrors: schema unavailable")
	ErrUnsupportedType      = stderrors.New("xerrors: unsupported type")
	ErrUnsupportedDataOrder = stderrors.New("xerrors: unsupported data order")
	ErrDialectError         = stderrors.New("xerrors: dialect error")
	ErrTypeMismatch         = stderrors.New("xerrors: type mismatch")
	ErrUnexpectedNull       = stderrors.New("xerrors: unexpected null")
	ErrWritersOutstanding   = stderrors.New("xerrors: writers outstanding")
	ErrMutexPoisoned        = stderrors.New("xerrors: mutex poisoned")
	ErrShapeMismatch        = stderrors.New("xerrors: shape mismatch")
)

// SchemaErrorKind enumerates the SchemaError taxonomy.
type SchemaErrorKind int

// The SchemaError kinds named in spec.md section 7.
const (
	SchemaUnavailable SchemaErrorKind = iota
	UnsupportedType
	UnsupportedDataOrder
	DialectError
)

func (k SchemaErrorKind) String() string {
	switch k {
	case SchemaUnavailable:
		return "SchemaUnavailable"
	case UnsupportedType:
		return "UnsupportedType"
	case UnsupportedDataOrder:
		return "UnsupportedDataOrder"
	case DialectError:
		return "DialectError"
	default:
		return "SchemaError"
	}
}

// SchemaError reports a failure to obtain or realize a Schema.
type SchemaError struct {
	Kind   SchemaErrorKind
	Detail string
	Cause  error
}

func (e *SchemaError) Error() string {
	if e.Cause != nil {
		return e.Kind.String() + ": " + e.Detail + ": " + e.Cause.Error()
	}
	return e.Kind.String() + ": " + e.Detail
}

func (e *SchemaError) Unwrap() error { return e.Cause }

// Is reports whether target is the sentinel for e's Kind, so
// errors.Is(err, xerrors.ErrUnsupportedType) works without the caller
// having to errors.As into SchemaError first.
func (e *SchemaError) Is(target error) bool {
	switch e.Kind {
	case SchemaUnavailable:
		return target == ErrSchemaUnavailable
	case UnsupportedType:
		return target == ErrUnsupportedType
	case UnsupportedDataOrder:
		return target == ErrUnsupportedDataOrder
	case DialectError:
		return target == ErrDialectError
	default:
		return false
	}
}

// NewSchemaError constructs a SchemaError, wrapping cause with a stack
// trace the way the rest of the codebase wraps transport errors.
func NewSchemaError(kind SchemaErrorKind, detail string, cause error) *SchemaError {
	if cause != nil {
		cause = errors.WithStack(cause)
	}
	return &SchemaError{Kind: kind, Detail: detail, Cause: cause}
}

// UnexpectedNull reports that a non-nullable column's typed Produce
// call received a null cell.
type UnexpectedNull struct {
	Column string
}

func (e *UnexpectedNull) Error() string {
	return "typesystem: unexpected null in non-nullable column " + e.Column
}

// Is reports whether target is ErrUnexpectedNull.
func (e *UnexpectedNull) Is(target error) bool { return target == ErrUnexpectedNull }

// CannotProduce reports that a source cell could not be parsed as the
// statically requested type T, e.g. a non-numeric string scanned into
// an int64 producer.
type CannotProduce struct {
	Column string
	Raw    any
	Cause  error
}

func (e *CannotProduce) Error() string {
	return "typesystem: cannot produce value for column " + e.Column + ": " + e.Cause.Error()
}

func (e *CannotProduce) Unwrap() error { return e.Cause }

// TransportError wraps a backend-specific error (authentication,
// network, query execution, paging).
type TransportError struct {
	Op    string
	Cause error
}

func (e *TransportError) Error() string {
	return "transport: " + e.Op + ": " + e.Cause.Error()
}

func (e *TransportError) Unwrap() error { return e.Cause }

// WrapTransport constructs a TransportError, attaching a stack trace to
// causes that don't already carry one.
func WrapTransport(op string, cause error) error {
	if cause == nil {
		return nil
	}
	return &TransportError{Op: op, Cause: errors.WithStack(cause)}
}

// EndOfPartition is returned by Parser.Produce* when called beyond the
// declared row count of a partition.
var EndOfPartition = errors.New("typesystem: produce called beyond end of partition")

// StateErrorKind enumerates the StateError taxonomy: internal invariant
// violations that are bugs, not recoverable runtime conditions.
type StateErrorKind int

// The StateError kinds named in spec.md section 7.
const (
	WritersOutstanding StateErrorKind = iota
	MutexPoisoned
	ShapeMismatch
)

func (k StateErrorKind) String() string {
	switch k {
	case WritersOutstanding:
		return "WritersOutstanding"
	case MutexPoisoned:
		return "MutexPoisoned"
	case ShapeMismatch:
		return "ShapeMismatch"
	default:
		return "StateError"
	}
}

// StateError reports a violation of an internal invariant. None of
// these are retried; per spec.md section 7 they abort the extraction.
type StateError struct {
	Kind   StateErrorKind
	Detail string
}

func (e *StateError) Error() string {
	if e.Detail == "" {
		return "state: " + e.Kind.String()
	}
	return "state: " + e.Kind.String() + ": " + e.Detail
}

// NewStateError constructs a StateError.
func NewStateError(kind StateErrorKind, detail string) *StateError {
	return &StateError{Kind: kind, Detail: detail}
}

// Is reports whether target is the sentinel for e's Kind.
func (e *StateError) Is(target error) bool {
	switch e.Kind {
	case WritersOutstanding:
		return target == ErrWritersOutstanding
	case MutexPoisoned:
		return target == ErrMutexPoisoned
	case ShapeMismatch:
		return target == ErrShapeMismatch
	default:
		return false
	}
}

// IOError wraps a failure specific to file-backed sources (credentials,
// Parquet, and similar I/O concerns out of the core's scope but still
// part of the shared taxonomy per spec.md section 7).
type IOError struct {
	Path  string
	Cause error
}

func (e *IOError) Error() string {
	return "io: " + e.Path + ": " + e.Cause.Error()
}

func (e *IOError) Unwrap() error { return e.Cause }
