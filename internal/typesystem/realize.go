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

package typesystem

import (
	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/decimal128"
	"github.com/apache/arrow/go/v18/arrow/float16"
	"github.com/pkg/errors"

	"github.com/gopinathjcs/connector-arrow/internal/xerrors"
)

// TagFor reports the canonical Tag statically associated with the Go
// type T. It is the compile-time half of Check: T is fixed by the
// calling generic function's instantiation, so this switch is resolved
// once per (Tag, operation) trampoline rather than once per cell - see
// the package doc and spec.md section 9's "Realize" discussion.
//
// TagFor returns Invalid for any T this package does not realize; this
// is never reached from the exhaustive trampolines in
// internal/destination/arrow and internal/engine, only from
// programmer error, which is caught by Check.
func TagFor[T any]() Tag {
	var zero T
	switch any(zero).(type) {
	case bool:
		return Bool
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case int64:
		return Int64
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case uint64:
		return Uint64
	case float16.Num:
		return Float16
	case float32:
		return Float32
	case float64:
		return Float64
	case string:
		return Utf8
	case []byte:
		return Binary
	case arrow.Date32:
		return Date32
	case arrow.Time64:
		return Time64
	case arrow.Timestamp:
		return Timestamp
	case decimal128.Num:
		return Decimal128
	case struct{}:
		return Null
	default:
		return Invalid
	}
}

// Check verifies that the static type T is compatible with the
// canonical type of f, the way the source pattern's check::<T> does
// before any builder append. Utf8 and LargeUtf8 (respectively Binary
// and LargeBinary) share a Go representation but not a Tag: a caller
// that knows it is producing/consuming the "large" variant passes the
// field it actually holds, and this function compares against that
// field's Tag, not against TagFor[T] alone - see CheckTag.
func Check[T any](f Field) error {
	return CheckTag[T](f.Tag)
}

// CheckTag is Check without requiring a full Field, used where only the
// Tag is in hand (e.g. comparing a builder's declared Tag against the
// schema's Tag at the same position).
func CheckTag[T any](tag Tag) error {
	want := TagFor[T]()
	if want == Invalid {
		return errors.Errorf("typesystem: no canonical tag for Go type used at dispatch site")
	}
	if large, ok := largeVariant(want, tag); ok && large {
		return nil
	}
	if want != tag {
		return &MismatchError{Expected: tag, Got: want}
	}
	return nil
}

// largeVariant reports whether got is the "large" sibling of a Tag that
// shares representation want would normally imply, e.g. a caller
// statically producing a string is compatible with both Utf8 and
// LargeUtf8 columns. ok is false when want/got is not such a pair, in
// which case the caller falls back to strict equality.
func largeVariant(want, got Tag) (isLarge, ok bool) {
	switch want {
	case Utf8:
		if got == LargeUtf8 {
			return true, true
		}
		return false, true
	case Binary:
		if got == LargeBinary {
			return true, true
		}
		return false, true
	default:
		return false, false
	}
}

// MismatchError is returned by Check/CheckTag when the statically
// chosen type does not match the column's declared canonical Tag. It
// satisfies the TypeError taxonomy kind TypeMismatch from spec.md
// section 7.
type MismatchError struct {
	Expected Tag
	Got      Tag
}

func (e *MismatchError) Error() string {
	return "typesystem: type mismatch: expected " + e.Expected.String() + ", got " + e.Got.String()
}

// Is reports whether target is xerrors.ErrTypeMismatch, so callers can
// errors.Is(err, xerrors.ErrTypeMismatch) without importing this
// package's concrete MismatchError type.
func (e *MismatchError) Is(target error) bool { return target == xerrors.ErrTypeMismatch }
