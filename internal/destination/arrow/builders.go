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

// Package arrow is the Arrow realization of internal/destination: it
// turns a canonical typesystem.Schema into an *arrow.Schema, a
// typesystem.Tag into the matching array.Builder, and a finished
// builder into an arrow.Array, exactly the three operations spec.md
// section 4.1 calls "Realize<F>(tag)". It is a direct Go port of
// _examples/original_source/connector_arrow/src/destinations/arrow/
// mod.rs (ArrowDestination / ArrowPartitionWriter).
package arrow

import (
	arrowgo "github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/decimal128"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/gopinathjcs/connector-arrow/internal/typesystem"
	"github.com/gopinathjcs/connector-arrow/internal/xerrors"
)

// dataType is the Tag -> arrow.DataType trampoline: every other
// realization (NewField, NewBuilder) goes through it so that the
// mapping table in spec.md section 6 has exactly one home.
func dataType(f typesystem.Field) (arrowgo.DataType, error) {
	switch f.Tag {
	case typesystem.Bool:
		return arrowgo.FixedWidthTypes.Boolean, nil
	case typesystem.Int8:
		return arrowgo.PrimitiveTypes.Int8, nil
	case typesystem.Int16:
		return arrowgo.PrimitiveTypes.Int16, nil
	case typesystem.Int32:
		return arrowgo.PrimitiveTypes.Int32, nil
	case typesystem.Int64:
		return arrowgo.PrimitiveTypes.Int64, nil
	case typesystem.Uint8:
		return arrowgo.PrimitiveTypes.Uint8, nil
	case typesystem.Uint16:
		return arrowgo.PrimitiveTypes.Uint16, nil
	case typesystem.Uint32:
		return arrowgo.PrimitiveTypes.Uint32, nil
	case typesystem.Uint64:
		return arrowgo.PrimitiveTypes.Uint64, nil
	case typesystem.Float16:
		return arrowgo.FixedWidthTypes.Float16, nil
	case typesystem.Float32:
		return arrowgo.PrimitiveTypes.Float32, nil
	case typesystem.Float64:
		return arrowgo.PrimitiveTypes.Float64, nil
	case typesystem.Utf8:
		return arrowgo.BinaryTypes.String, nil
	case typesystem.LargeUtf8:
		return arrowgo.BinaryTypes.LargeString, nil
	case typesystem.Binary:
		return arrowgo.BinaryTypes.Binary, nil
	case typesystem.LargeBinary:
		return arrowgo.BinaryTypes.LargeBinary, nil
	case typesystem.Date32:
		return arrowgo.FixedWidthTypes.Date32, nil
	case typesystem.Time64:
		return time64Type(f.TimeUnit)
	case typesystem.Timestamp:
		return &arrowgo.TimestampType{Unit: toArrowUnit(f.TimeUnit), TimeZone: f.TZ}, nil
	case typesystem.Decimal128:
		return &arrowgo.Decimal128Type{Precision: f.Precision, Scale: f.Scale}, nil
	case typesystem.Null:
		return arrowgo.Null, nil
	default:
		return nil, xerrors.NewSchemaError(xerrors.UnsupportedType,
			"no Arrow realization for tag "+f.Tag.String(), nil)
	}
}

func toArrowUnit(u typesystem.TimeUnit) arrowgo.TimeUnit {
	switch u {
	case typesystem.Second:
		return arrowgo.Second
	case typesystem.Millisecond:
		return arrowgo.Millisecond
	case typesystem.Microsecond:
		return arrowgo.Microsecond
	case typesystem.Nanosecond:
		return arrowgo.Nanosecond
	default:
		return arrowgo.Microsecond
	}
}

// time64Type realizes a Time64 field's Arrow type. Arrow's Time32 and
// Time64 are distinct physical widths, not interchangeable resolutions
// of one type: Time32 only holds Second/Millisecond and Time64 only
// holds Microsecond/Nanosecond. ConsumeTime64/appendScalar in writer.go
// always type-assert the builder as *array.Time64Builder, so a Time64
// field declared with a Second or Millisecond TimeUnit can never be
// realized as a Time32Builder without that assertion panicking;
// rejecting it here instead turns a schema authoring mistake into a
// SchemaError at allocation time.
func time64Type(u typesystem.TimeUnit) (arrowgo.DataType, error) {
	switch u {
	case typesystem.Microsecond, typesystem.Nanosecond:
		return &arrowgo.Time64Type{Unit: toArrowUnit(u)}, nil
	default:
		return nil, xerrors.NewSchemaError(xerrors.UnsupportedType,
			"Time64 fields require a Microsecond or Nanosecond TimeUnit, got "+u.String(), nil)
	}
}

// newField is the Realize<FNewField> trampoline.
func newField(f typesystem.Field) (arrowgo.Field, error) {
	dt, err := dataType(f)
	if err != nil {
		return arrowgo.Field{}, err
	}
	return arrowgo.Field{Name: f.Name, Type: dt, Nullable: f.Nullable}, nil
}

// newBuilder is the Realize<FNewBuilder> trampoline. capacity is a
// hint only - array.Builder grows on demand - matching the source
// pattern's batch_size-sized capacity hint.
func newBuilder(mem memory.Allocator, f typesystem.Field, capacity int) (array.Builder, error) {
	dt, err := dataType(f)
	if err != nil {
		return nil, err
	}
	b := array.NewBuilder(mem, dt)
	if capacity > 0 {
		b.Reserve(capacity)
	}
	return b, nil
}

// finishBuilder is the Realize<FFinishBuilder> trampoline. It releases
// the builder's own reference; the returned Array keeps the data alive
// until the caller releases it (RecordBatch construction takes
// ownership via array.NewRecord, which does not need an extra
// reference here).
func finishBuilder(b array.Builder) (arrowgo.Array, error) {
	arr := b.NewArray()
	b.Release()
	return arr, nil
}

// decimalFromBig is a convenience used by adapters that produce
// Decimal128 values from a database-native big-decimal representation
// rather than directly as decimal128.Num.
func decimalFromBig(hi, lo uint64) decimal128.Num {
	return decimal128.New(int64(hi), lo)
}
