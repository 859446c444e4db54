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

package arrow

import (
	"sync/atomic"
	"time"

	arrowgo "github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/decimal128"
	"github.com/apache/arrow/go/v18/arrow/float16"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/gopinathjcs/connector-arrow/internal/destination"
	"github.com/gopinathjcs/connector-arrow/internal/typesystem"
	"github.com/gopinathjcs/connector-arrow/internal/util/metrics"
	"github.com/gopinathjcs/connector-arrow/internal/xerrors"
)

// PartitionWriter is the Arrow realization of destination.
// PartitionWriter, a direct port of ArrowPartitionWriter in
// _examples/original_source/connector_arrow/src/destinations/arrow/
// mod.rs: lazy builder allocation, the current_row/current_col cursor,
// and flush-on-row-boundary.
type PartitionWriter struct {
	mem         memory.Allocator
	schema      typesystem.Schema
	arrowSchema *arrowgo.Schema
	batchSize   int

	builders []array.Builder // nil until the first Consume call

	currentRow int
	currentCol int

	out *sharedOutput

	finalized bool
}

var _ destination.PartitionWriter = (*PartitionWriter)(nil)

// ColumnCount implements destination.PartitionWriter.
func (w *PartitionWriter) ColumnCount() int { return w.schema.NCols() }

// allocate lazily creates one builder per column on the first Consume
// call. A partition that yields zero rows never allocates, preserving
// exact batch boundaries and allocation counts - see spec.md section
// 4.3's "why lazy allocation".
func (w *PartitionWriter) allocate() error {
	if w.builders != nil {
		return nil
	}
	builders := make([]array.Builder, len(w.schema.Fields))
	for i, f := range w.schema.Fields {
		b, err := newBuilder(w.mem, f, w.batchSize)
		if err != nil {
			return err
		}
		builders[i] = b
	}
	w.builders = builders
	return nil
}

// step advances the cursor after appending one value, per the
// batching algorithm in spec.md section 4.3. It reports whether the
// row just completed should trigger a flush.
func (w *PartitionWriter) step() (shouldFlush bool) {
	w.currentCol++
	if w.currentCol == w.schema.NCols() {
		w.currentCol = 0
		w.currentRow++
	}
	return w.currentRow >= w.batchSize && w.currentCol == 0
}

// checkColumn verifies the column at current_col is compatible with T
// before any builder append, per spec.md section 4.3's Consume
// precondition.
func checkColumn[T any](w *PartitionWriter, col int) error {
	return typesystem.Check[T](w.schema.Fields[col])
}

// flush implements the algorithm in spec.md section 4.3: take
// ownership of the builder slice, finish each builder into a Column,
// construct a RecordBatch, push it under the output mutex, then reset
// the cursor. flush on a writer with no in-progress builders is a
// no-op, matching "finalizing an already-finalized writer does not
// push an empty batch" (spec.md section 8).
func (w *PartitionWriter) flush() (err error) {
	if w.builders == nil {
		return nil
	}
	start := time.Now()
	builders := w.builders
	w.builders = nil

	cols := make([]arrowgo.Array, len(builders))
	for i, b := range builders {
		arr, ferr := finishBuilder(b)
		if ferr != nil {
			err = ferr
			continue
		}
		cols[i] = arr
	}
	if err != nil {
		return err
	}

	numRows := int64(w.currentRow)
	if w.currentCol != 0 {
		// A partial row was buffered across a panic or caller error;
		// this should be unreachable under the documented Consume
		// precondition, so it is reported as the internal-invariant
		// StateError rather than silently truncated.
		return xerrors.NewStateError(xerrors.ShapeMismatch,
			"flush invoked mid-row: current_col != 0")
	}
	for i, c := range cols {
		if int64(c.Len()) != numRows && numRows != 0 {
			return xerrors.NewStateError(xerrors.ShapeMismatch,
				"column lengths disagree at flush: column "+w.schema.Fields[i].Name)
		}
	}

	rb := array.NewRecord(w.arrowSchema, cols, numRows)
	for _, c := range cols {
		c.Release()
	}

	if perr := w.out.push(rb); perr != nil {
		return perr
	}

	metrics.FlushDuration.WithLabelValues().Observe(time.Since(start).Seconds())
	metrics.RowsFlushed.WithLabelValues().Add(float64(numRows))

	w.currentRow = 0
	w.currentCol = 0
	return nil
}

// Finalize implements destination.PartitionWriter.
func (w *PartitionWriter) Finalize() error {
	if w.finalized {
		return nil
	}
	if err := w.flush(); err != nil {
		return err
	}
	w.finalized = true
	atomic.AddInt32(&w.out.writers, -1)
	return nil
}

// consume is the shared tail of every Consume* method: advance the
// cursor, flush if the batch is now full.
func (w *PartitionWriter) consume() error {
	if w.step() {
		return w.flush()
	}
	return nil
}

func (w *PartitionWriter) ConsumeBool(v bool) error {
	if err := checkColumn[bool](w, w.currentCol); err != nil {
		return err
	}
	if err := w.allocate(); err != nil {
		return err
	}
	w.builders[w.currentCol].(*array.BooleanBuilder).Append(v)
	return w.consume()
}

func (w *PartitionWriter) ConsumeNullableBool(v typesystem.Null[bool]) error {
	if err := checkColumn[bool](w, w.currentCol); err != nil {
		return err
	}
	if err := w.allocate(); err != nil {
		return err
	}
	b := w.builders[w.currentCol].(*array.BooleanBuilder)
	if v.Valid {
		b.Append(v.Value)
	} else {
		b.AppendNull()
	}
	return w.consume()
}

func (w *PartitionWriter) ConsumeInt8(v int8) error {
	return appendScalar(w, func(b *array.Int8Builder) { b.Append(v) })
}
func (w *PartitionWriter) ConsumeNullableInt8(v typesystem.Null[int8]) error {
	return appendNullable(w, v, func(b *array.Int8Builder, x int8) { b.Append(x) })
}
func (w *PartitionWriter) ConsumeInt16(v int16) error {
	return appendScalar(w, func(b *array.Int16Builder) { b.Append(v) })
}
func (w *PartitionWriter) ConsumeNullableInt16(v typesystem.Null[int16]) error {
	return appendNullable(w, v, func(b *array.Int16Builder, x int16) { b.Append(x) })
}
func (w *PartitionWriter) ConsumeInt32(v int32) error {
	return appendScalar(w, func(b *array.Int32Builder) { b.Append(v) })
}
func (w *PartitionWriter) ConsumeNullableInt32(v typesystem.Null[int32]) error {
	return appendNullable(w, v, func(b *array.Int32Builder, x int32) { b.Append(x) })
}
func (w *PartitionWriter) ConsumeInt64(v int64) error {
	return appendScalar(w, func(b *array.Int64Builder) { b.Append(v) })
}
func (w *PartitionWriter) ConsumeNullableInt64(v typesystem.Null[int64]) error {
	return appendNullable(w, v, func(b *array.Int64Builder, x int64) { b.Append(x) })
}

func (w *PartitionWriter) ConsumeUint8(v uint8) error {
	return appendScalar(w, func(b *array.Uint8Builder) { b.Append(v) })
}
func (w *PartitionWriter) ConsumeNullableUint8(v typesystem.Null[uint8]) error {
	return appendNullable(w, v, func(b *array.Uint8Builder, x uint8) { b.Append(x) })
}
func (w *PartitionWriter) ConsumeUint16(v uint16) error {
	return appendScalar(w, func(b *array.Uint16Builder) { b.Append(v) })
}
func (w *PartitionWriter) ConsumeNullableUint16(v typesystem.Null[uint16]) error {
	return appendNullable(w, v, func(b *array.Uint16Builder, x uint16) { b.Append(x) })
}
func (w *PartitionWriter) ConsumeUint32(v uint32) error {
	return appendScalar(w, func(b *array.Uint32Builder) { b.Append(v) })
}
func (w *PartitionWriter) ConsumeNullableUint32(v typesystem.Null[uint32]) error {
	return appendNullable(w, v, func(b *array.Uint32Builder, x uint32) { b.Append(x) })
}
func (w *PartitionWriter) ConsumeUint64(v uint64) error {
	return appendScalar(w, func(b *array.Uint64Builder) { b.Append(v) })
}
func (w *PartitionWriter) ConsumeNullableUint64(v typesystem.Null[uint64]) error {
	return appendNullable(w, v, func(b *array.Uint64Builder, x uint64) { b.Append(x) })
}

func (w *PartitionWriter) ConsumeFloat16(v float16.Num) error {
	return appendScalar(w, func(b *array.Float16Builder) { b.Append(v) })
}
func (w *PartitionWriter) ConsumeNullableFloat16(v typesystem.Null[float16.Num]) error {
	return appendNullable(w, v, func(b *array.Float16Builder, x float16.Num) { b.Append(x) })
}
func (w *PartitionWriter) ConsumeFloat32(v float32) error {
	return appendScalar(w, func(b *array.Float32Builder) { b.Append(v) })
}
func (w *PartitionWriter) ConsumeNullableFloat32(v typesystem.Null[float32]) error {
	return appendNullable(w, v, func(b *array.Float32Builder, x float32) { b.Append(x) })
}
func (w *PartitionWriter) ConsumeFloat64(v float64) error {
	return appendScalar(w, func(b *array.Float64Builder) { b.Append(v) })
}
func (w *PartitionWriter) ConsumeNullableFloat64(v typesystem.Null[float64]) error {
	return appendNullable(w, v, func(b *array.Float64Builder, x float64) { b.Append(x) })
}

func (w *PartitionWriter) ConsumeUtf8(v string) error {
	return appendScalar(w, func(b *array.StringBuilder) { b.Append(v) })
}
func (w *PartitionWriter) ConsumeNullableUtf8(v typesystem.Null[string]) error {
	return appendNullable(w, v, func(b *array.StringBuilder, x string) { b.Append(x) })
}
func (w *PartitionWriter) ConsumeLargeUtf8(v string) error {
	return appendScalar(w, func(b *array.LargeStringBuilder) { b.Append(v) })
}
func (w *PartitionWriter) ConsumeNullableLargeUtf8(v typesystem.Null[string]) error {
	return appendNullable(w, v, func(b *array.LargeStringBuilder, x string) { b.Append(x) })
}

func (w *PartitionWriter) ConsumeBinary(v []byte) error {
	return appendScalar(w, func(b *array.BinaryBuilder) { b.Append(v) })
}
func (w *PartitionWriter) ConsumeNullableBinary(v typesystem.Null[[]byte]) error {
	return appendNullable(w, v, func(b *array.BinaryBuilder, x []byte) { b.Append(x) })
}
func (w *PartitionWriter) ConsumeLargeBinary(v []byte) error {
	return appendScalar(w, func(b *array.LargeBinaryBuilder) { b.Append(v) })
}
func (w *PartitionWriter) ConsumeNullableLargeBinary(v typesystem.Null[[]byte]) error {
	return appendNullable(w, v, func(b *array.LargeBinaryBuilder, x []byte) { b.Append(x) })
}

func (w *PartitionWriter) ConsumeDate32(v arrowgo.Date32) error {
	return appendScalar(w, func(b *array.Date32Builder) { b.Append(v) })
}
func (w *PartitionWriter) ConsumeNullableDate32(v typesystem.Null[arrowgo.Date32]) error {
	return appendNullable(w, v, func(b *array.Date32Builder, x arrowgo.Date32) { b.Append(x) })
}

func (w *PartitionWriter) ConsumeTime64(v arrowgo.Time64) error {
	return appendScalar(w, func(b *array.Time64Builder) { b.Append(v) })
}
func (w *PartitionWriter) ConsumeNullableTime64(v typesystem.Null[arrowgo.Time64]) error {
	return appendNullable(w, v, func(b *array.Time64Builder, x arrowgo.Time64) { b.Append(x) })
}

func (w *PartitionWriter) ConsumeTimestamp(v arrowgo.Timestamp) error {
	return appendScalar(w, func(b *array.TimestampBuilder) { b.Append(v) })
}
func (w *PartitionWriter) ConsumeNullableTimestamp(v typesystem.Null[arrowgo.Timestamp]) error {
	return appendNullable(w, v, func(b *array.TimestampBuilder, x arrowgo.Timestamp) { b.Append(x) })
}

func (w *PartitionWriter) ConsumeDecimal128(v decimal128.Num) error {
	return appendScalar(w, func(b *array.Decimal128Builder) { b.Append(v) })
}
func (w *PartitionWriter) ConsumeNullableDecimal128(v typesystem.Null[decimal128.Num]) error {
	return appendNullable(w, v, func(b *array.Decimal128Builder, x decimal128.Num) { b.Append(x) })
}

// ConsumeNull implements destination.PartitionWriter. A Null column
// carries no payload, so there is nothing to type-check or append
// beyond advancing the cursor.
func (w *PartitionWriter) ConsumeNull() error {
	if err := w.allocate(); err != nil {
		return err
	}
	w.builders[w.currentCol].(*array.NullBuilder).AppendNull()
	return w.consume()
}

// appendScalar is the non-nullable Consume tail shared by every
// fixed-representation Tag: check the column's declared type against
// T, lazily allocate, downcast the builder, append.
func appendScalar[T any, B array.Builder](w *PartitionWriter, append func(B)) error {
	if err := checkColumn[T](w, w.currentCol); err != nil {
		return err
	}
	if err := w.allocate(); err != nil {
		return err
	}
	b := w.builders[w.currentCol].(B)
	append(b)
	return w.consume()
}

// appendNullable is appendScalar's nullable counterpart.
func appendNullable[T any, B array.Builder](
	w *PartitionWriter, v typesystem.Null[T], append func(B, T),
) error {
	if err := checkColumn[T](w, w.currentCol); err != nil {
		return err
	}
	if err := w.allocate(); err != nil {
		return err
	}
	b := w.builders[w.currentCol].(B)
	if v.Valid {
		append(b, v.Value)
	} else {
		b.AppendNull()
	}
	return w.consume()
}
