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

// Package destination defines the contracts a columnar sink must
// satisfy: a Destination realizes a canonical Schema into its own
// typed column builders and allocates one PartitionWriter per
// concurrent partition, all sharing one mutex-guarded output buffer.
package destination

import (
	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/decimal128"
	"github.com/apache/arrow/go/v18/arrow/float16"

	"github.com/gopinathjcs/connector-arrow/internal/dataorder"
	"github.com/gopinathjcs/connector-arrow/internal/typesystem"
)

// RecordBatch is the sealed output unit: a rectangular set of typed
// columns sharing one schema, of length at most the Destination's
// configured batch size. The concrete column representation is left to
// the Destination implementation (internal/destination/arrow uses
// arrow.Record); this package only names the shape.
type RecordBatch interface {
	NumRows() int64
	NumCols() int64
}

// Destination is set up once with a canonical Schema, then asked for
// one PartitionWriter per concurrent partition. All PartitionWriters
// share one destination-owned output buffer.
type Destination interface {
	// SupportedDataOrders returns the non-empty, static set of data
	// orders this Destination can consume.
	SupportedDataOrders() dataorder.Set

	// SetSchema realizes the destination-native schema by invoking
	// the Tag-indexed NewField trampoline per column. Returns
	// *xerrors.SchemaError{Kind: UnsupportedType} for any column whose
	// Tag this Destination cannot realize.
	SetSchema(schema typesystem.Schema) error

	// AllocWriter constructs a writer sharing the destination's output
	// buffer. Returns *xerrors.SchemaError{Kind: UnsupportedDataOrder}
	// if order is not in SupportedDataOrders().
	AllocWriter(order dataorder.Order) (PartitionWriter, error)

	// Finish requires that every writer returned by AllocWriter has
	// been Finalized and dropped; otherwise it returns
	// *xerrors.StateError{Kind: WritersOutstanding}. On success it
	// returns the accumulated batches in push order.
	Finish() ([]RecordBatch, error)

	// GetOne pops one batch for streaming consumers. Per the Open
	// Question preserved from the source pattern (spec.md section 9),
	// this pops in LIFO order, NOT the push order Finish returns -
	// callers that need ordering must use Finish instead.
	GetOne() (RecordBatch, bool, error)
}

// PartitionWriter consumes typed cells in the same row-major,
// column-by-column order a Parser produces them, buffering into
// per-column builders and flushing complete batches into the shared
// Destination output.
//
// As with source.Parser, there is one Consume method per canonical Tag
// in both non-nullable and nullable form; internal/engine holds the
// Tag-indexed dispatch table pairing each Consume method with its
// Parser counterpart.
type PartitionWriter interface {
	ConsumeBool(v bool) error
	ConsumeNullableBool(v typesystem.Null[bool]) error

	ConsumeInt8(v int8) error
	ConsumeNullableInt8(v typesystem.Null[int8]) error
	ConsumeInt16(v int16) error
	ConsumeNullableInt16(v typesystem.Null[int16]) error
	ConsumeInt32(v int32) error
	ConsumeNullableInt32(v typesystem.Null[int32]) error
	ConsumeInt64(v int64) error
	ConsumeNullableInt64(v typesystem.Null[int64]) error

	ConsumeUint8(v uint8) error
	ConsumeNullableUint8(v typesystem.Null[uint8]) error
	ConsumeUint16(v uint16) error
	ConsumeNullableUint16(v typesystem.Null[uint16]) error
	ConsumeUint32(v uint32) error
	ConsumeNullableUint32(v typesystem.Null[uint32]) error
	ConsumeUint64(v uint64) error
	ConsumeNullableUint64(v typesystem.Null[uint64]) error

	ConsumeFloat16(v float16.Num) error
	ConsumeNullableFloat16(v typesystem.Null[float16.Num]) error
	ConsumeFloat32(v float32) error
	ConsumeNullableFloat32(v typesystem.Null[float32]) error
	ConsumeFloat64(v float64) error
	ConsumeNullableFloat64(v typesystem.Null[float64]) error

	ConsumeUtf8(v string) error
	ConsumeNullableUtf8(v typesystem.Null[string]) error
	ConsumeLargeUtf8(v string) error
	ConsumeNullableLargeUtf8(v typesystem.Null[string]) error

	ConsumeBinary(v []byte) error
	ConsumeNullableBinary(v typesystem.Null[[]byte]) error
	ConsumeLargeBinary(v []byte) error
	ConsumeNullableLargeBinary(v typesystem.Null[[]byte]) error

	ConsumeDate32(v arrow.Date32) error
	ConsumeNullableDate32(v typesystem.Null[arrow.Date32]) error
	ConsumeTime64(v arrow.Time64) error
	ConsumeNullableTime64(v typesystem.Null[arrow.Time64]) error
	ConsumeTimestamp(v arrow.Timestamp) error
	ConsumeNullableTimestamp(v typesystem.Null[arrow.Timestamp]) error

	ConsumeDecimal128(v decimal128.Num) error
	ConsumeNullableDecimal128(v typesystem.Null[decimal128.Num]) error

	// ConsumeNull advances past a Null-typed column.
	ConsumeNull() error

	// Finalize flushes any in-progress batch, even if under-full, and
	// releases builders. Finalizing an already-finalized writer is a
	// no-op and does not push an empty batch.
	Finalize() error

	// ColumnCount returns the number of columns this writer was
	// allocated for.
	ColumnCount() int
}
