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
	"sync"
	"sync/atomic"

	arrowgo "github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/memory"

	"github.com/gopinathjcs/connector-arrow/internal/dataorder"
	"github.com/gopinathjcs/connector-arrow/internal/destination"
	"github.com/gopinathjcs/connector-arrow/internal/typesystem"
	"github.com/gopinathjcs/connector-arrow/internal/xerrors"
)

// DefaultBatchSize is the row-count capacity hint used when a caller
// does not specify one, matching the RECORD_BATCH_SIZE constant in
// _examples/original_source/connector_arrow/src/destinations/arrow/
// mod.rs.
const DefaultBatchSize = 1024

// sharedOutput is the destination-exclusively-owned accumulator that
// every PartitionWriter holds a reference to for the duration of
// extraction. Mutation is serialized by mu, held only across push, per
// spec.md section 5. writers counts live PartitionWriters in place of
// the source pattern's Arc<Mutex<..>> reference-count check; finish
// requires it to be zero, the neutral "atomic writer counter" strategy
// from spec.md section 9.
type sharedOutput struct {
	mu        sync.Mutex
	batches   []arrowgo.Record
	writers   int32
	poisoned  atomic.Bool
}

func (s *sharedOutput) push(rb arrowgo.Record) error {
	if s.poisoned.Load() {
		return xerrors.NewStateError(xerrors.MutexPoisoned, "a partition writer panicked while holding the output lock")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, rb)
	return nil
}

// poison is called by a recover() in the partition worker when a
// PartitionWriter method panics; Go has no poisoned-mutex primitive of
// its own, so this flag is the explicit substitute spec.md section 5
// requires.
func (s *sharedOutput) poison() {
	s.poisoned.Store(true)
}

// Poison marks the destination's shared output as failed, causing
// every subsequent Finish/GetOne call to return MutexPoisoned.
// internal/engine calls this from a recover() in the partition worker
// goroutine.
func (d *Destination) Poison() {
	d.out.poison()
}

// Destination is the Arrow realization of destination.Destination.
type Destination struct {
	mem       memory.Allocator
	batchSize int

	schema      typesystem.Schema
	arrowSchema *arrowgo.Schema

	out *sharedOutput
}

var _ destination.Destination = (*Destination)(nil)

// Option configures a Destination.
type Option func(*Destination)

// WithAllocator overrides the memory.Allocator used for every builder;
// the default is memory.NewGoAllocator().
func WithAllocator(mem memory.Allocator) Option {
	return func(d *Destination) { d.mem = mem }
}

// WithBatchSize overrides DefaultBatchSize.
func WithBatchSize(n int) Option {
	return func(d *Destination) { d.batchSize = n }
}

// New constructs an empty Destination. Call SetSchema before
// AllocWriter.
func New(opts ...Option) *Destination {
	d := &Destination{
		mem:       memory.NewGoAllocator(),
		batchSize: DefaultBatchSize,
		out:       &sharedOutput{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SupportedDataOrders implements destination.Destination. The baseline
// profile is row-major only, per spec.md section 4.3.
func (d *Destination) SupportedDataOrders() dataorder.Set {
	return dataorder.Set{dataorder.RowMajor}
}

// SetSchema implements destination.Destination.
func (d *Destination) SetSchema(schema typesystem.Schema) error {
	if schema.NCols() == 0 {
		return xerrors.NewSchemaError(xerrors.UnsupportedType, "schema has zero columns", nil)
	}
	fields := make([]arrowgo.Field, len(schema.Fields))
	for i, f := range schema.Fields {
		af, err := newField(f)
		if err != nil {
			return err
		}
		fields[i] = af
	}
	d.schema = schema.Clone()
	d.arrowSchema = arrowgo.NewSchema(fields, nil)
	return nil
}

// ArrowSchema exposes the realized *arrow.Schema, e.g. for a caller
// that wants to write the accumulated batches out as Arrow IPC/Parquet
// without re-deriving the schema.
func (d *Destination) ArrowSchema() *arrowgo.Schema {
	return d.arrowSchema
}

// AllocWriter implements destination.Destination.
func (d *Destination) AllocWriter(order dataorder.Order) (destination.PartitionWriter, error) {
	if !d.SupportedDataOrders().Contains(order) {
		return nil, xerrors.NewSchemaError(xerrors.UnsupportedDataOrder,
			"arrow destination only supports RowMajor", nil)
	}
	if d.arrowSchema == nil {
		return nil, xerrors.NewSchemaError(xerrors.SchemaUnavailable, "SetSchema was not called", nil)
	}
	atomic.AddInt32(&d.out.writers, 1)
	return &PartitionWriter{
		mem:         d.mem,
		schema:      d.schema,
		arrowSchema: d.arrowSchema,
		batchSize:   d.batchSize,
		out:         d.out,
	}, nil
}

// Finish implements destination.Destination.
func (d *Destination) Finish() ([]destination.RecordBatch, error) {
	if d.out.poisoned.Load() {
		return nil, xerrors.NewStateError(xerrors.MutexPoisoned, "output buffer poisoned by a panicking writer")
	}
	if atomic.LoadInt32(&d.out.writers) != 0 {
		return nil, xerrors.NewStateError(xerrors.WritersOutstanding,
			"Finish called while PartitionWriters are still live")
	}
	d.out.mu.Lock()
	defer d.out.mu.Unlock()
	out := make([]destination.RecordBatch, len(d.out.batches))
	for i, b := range d.out.batches {
		out[i] = recordBatch{b}
	}
	return out, nil
}

// GetOne implements destination.Destination. It pops in LIFO order -
// see the Open Question preserved from
// _examples/original_source/connector_arrow/src/destinations/arrow/
// mod.rs's get_one ("this will return a batch from the end and mess up
// the order"). SPEC_FULL.md section 9 documents the decision to keep
// this behavior rather than silently switch to FIFO.
func (d *Destination) GetOne() (destination.RecordBatch, bool, error) {
	if d.out.poisoned.Load() {
		return nil, false, xerrors.NewStateError(xerrors.MutexPoisoned, "output buffer poisoned by a panicking writer")
	}
	d.out.mu.Lock()
	defer d.out.mu.Unlock()
	n := len(d.out.batches)
	if n == 0 {
		return nil, false, nil
	}
	rb := d.out.batches[n-1]
	d.out.batches = d.out.batches[:n-1]
	return recordBatch{rb}, true, nil
}

// recordBatch adapts arrow.Record to destination.RecordBatch.
type recordBatch struct {
	arrowgo.Record
}

func (r recordBatch) NumRows() int64 { return r.Record.NumRows() }
func (r recordBatch) NumCols() int64 { return r.Record.NumCols() }

// Unwrap returns the underlying arrow.Record for callers that need the
// concrete Arrow type (e.g. to write Parquet/IPC).
func Unwrap(rb destination.RecordBatch) (arrowgo.Record, bool) {
	r, ok := rb.(recordBatch)
	return r.Record, ok
}
