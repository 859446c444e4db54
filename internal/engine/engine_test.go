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

package engine

import (
	"context"
	"testing"

	arrowgo "github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/decimal128"
	"github.com/apache/arrow/go/v18/arrow/float16"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	arrowdest "github.com/gopinathjcs/connector-arrow/internal/destination/arrow"
	"github.com/gopinathjcs/connector-arrow/internal/dataorder"
	"github.com/gopinathjcs/connector-arrow/internal/source"
	"github.com/gopinathjcs/connector-arrow/internal/typesystem"
	"github.com/gopinathjcs/connector-arrow/internal/xerrors"
)

// unsupportedParser is the zero-value base every fakeParser embeds, so
// only the columns a test actually exercises need a real body.
type unsupportedParser struct{}

func (unsupportedParser) FetchNext() (int, bool, error) { return 0, true, nil }

func (unsupportedParser) ProduceBool() (bool, error) { return false, errNotImplemented }
func (unsupportedParser) ProduceNullableBool() (typesystem.Null[bool], error) {
	return typesystem.Null[bool]{}, errNotImplemented
}
func (unsupportedParser) ProduceInt8() (int8, error) { return 0, errNotImplemented }
func (unsupportedParser) ProduceNullableInt8() (typesystem.Null[int8], error) {
	return typesystem.Null[int8]{}, errNotImplemented
}
func (unsupportedParser) ProduceInt16() (int16, error) { return 0, errNotImplemented }
func (unsupportedParser) ProduceNullableInt16() (typesystem.Null[int16], error) {
	return typesystem.Null[int16]{}, errNotImplemented
}
func (unsupportedParser) ProduceInt32() (int32, error) { return 0, errNotImplemented }
func (unsupportedParser) ProduceNullableInt32() (typesystem.Null[int32], error) {
	return typesystem.Null[int32]{}, errNotImplemented
}
func (unsupportedParser) ProduceInt64() (int64, error) { return 0, errNotImplemented }
func (unsupportedParser) ProduceNullableInt64() (typesystem.Null[int64], error) {
	return typesystem.Null[int64]{}, errNotImplemented
}
func (unsupportedParser) ProduceUint8() (uint8, error) { return 0, errNotImplemented }
func (unsupportedParser) ProduceNullableUint8() (typesystem.Null[uint8], error) {
	return typesystem.Null[uint8]{}, errNotImplemented
}
func (unsupportedParser) ProduceUint16() (uint16, error) { return 0, errNotImplemented }
func (unsupportedParser) ProduceNullableUint16() (typesystem.Null[uint16], error) {
	return typesystem.Null[uint16]{}, errNotImplemented
}
func (unsupportedParser) ProduceUint32() (uint32, error) { return 0, errNotImplemented }
func (unsupportedParser) ProduceNullableUint32() (typesystem.Null[uint32], error) {
	return typesystem.Null[uint32]{}, errNotImplemented
}
func (unsupportedParser) ProduceUint64() (uint64, error) { return 0, errNotImplemented }
func (unsupportedParser) ProduceNullableUint64() (typesystem.Null[uint64], error) {
	return typesystem.Null[uint64]{}, errNotImplemented
}
func (unsupportedParser) ProduceFloat16() (float16.Num, error) { return float16.Num{}, errNotImplemented }
func (unsupportedParser) ProduceNullableFloat16() (typesystem.Null[float16.Num], error) {
	return typesystem.Null[float16.Num]{}, errNotImplemented
}
func (unsupportedParser) ProduceFloat32() (float32, error) { return 0, errNotImplemented }
func (unsupportedParser) ProduceNullableFloat32() (typesystem.Null[float32], error) {
	return typesystem.Null[float32]{}, errNotImplemented
}
func (unsupportedParser) ProduceFloat64() (float64, error) { return 0, errNotImplemented }
func (unsupportedParser) ProduceNullableFloat64() (typesystem.Null[float64], error) {
	return typesystem.Null[float64]{}, errNotImplemented
}
func (unsupportedParser) ProduceUtf8() (string, error) { return "", errNotImplemented }
func (unsupportedParser) ProduceNullableUtf8() (typesystem.Null[string], error) {
	return typesystem.Null[string]{}, errNotImplemented
}
func (unsupportedParser) ProduceLargeUtf8() (string, error) { return "", errNotImplemented }
func (unsupportedParser) ProduceNullableLargeUtf8() (typesystem.Null[string], error) {
	return typesystem.Null[string]{}, errNotImplemented
}
func (unsupportedParser) ProduceBinary() ([]byte, error) { return nil, errNotImplemented }
func (unsupportedParser) ProduceNullableBinary() (typesystem.Null[[]byte], error) {
	return typesystem.Null[[]byte]{}, errNotImplemented
}
func (unsupportedParser) ProduceLargeBinary() ([]byte, error) { return nil, errNotImplemented }
func (unsupportedParser) ProduceNullableLargeBinary() (typesystem.Null[[]byte], error) {
	return typesystem.Null[[]byte]{}, errNotImplemented
}
func (unsupportedParser) ProduceDate32() (arrowgo.Date32, error) { return 0, errNotImplemented }
func (unsupportedParser) ProduceNullableDate32() (typesystem.Null[arrowgo.Date32], error) {
	return typesystem.Null[arrowgo.Date32]{}, errNotImplemented
}
func (unsupportedParser) ProduceTime64() (arrowgo.Time64, error) { return 0, errNotImplemented }
func (unsupportedParser) ProduceNullableTime64() (typesystem.Null[arrowgo.Time64], error) {
	return typesystem.Null[arrowgo.Time64]{}, errNotImplemented
}
func (unsupportedParser) ProduceTimestamp() (arrowgo.Timestamp, error) { return 0, errNotImplemented }
func (unsupportedParser) ProduceNullableTimestamp() (typesystem.Null[arrowgo.Timestamp], error) {
	return typesystem.Null[arrowgo.Timestamp]{}, errNotImplemented
}
func (unsupportedParser) ProduceDecimal128() (decimal128.Num, error) {
	return decimal128.Num{}, errNotImplemented
}
func (unsupportedParser) ProduceNullableDecimal128() (typesystem.Null[decimal128.Num], error) {
	return typesystem.Null[decimal128.Num]{}, errNotImplemented
}
func (unsupportedParser) ProduceNull() error { return errNotImplemented }

var errNotImplemented = errors.New("fake parser: column not exercised by this test")

// row is one (id, name) pair a fakeParser streams out.
type row struct {
	id   int32
	name typesystem.Null[string]
}

// fakeParser streams a fixed slice of rows as (Int32, Utf8) column
// pairs, advancing its row cursor after the second column of each row
// is produced, matching the schema {id Int32, name Utf8} used by every
// test in this file.
type fakeParser struct {
	unsupportedParser
	rows      []row
	delivered bool
	cur       int
	failNext  error
}

func (p *fakeParser) FetchNext() (int, bool, error) {
	if p.failNext != nil {
		return 0, true, p.failNext
	}
	if p.delivered {
		return 0, true, nil
	}
	p.delivered = true
	return len(p.rows), true, nil
}

func (p *fakeParser) ProduceInt32() (int32, error) {
	return p.rows[p.cur].id, nil
}

func (p *fakeParser) ProduceNullableUtf8() (typesystem.Null[string], error) {
	v := p.rows[p.cur].name
	p.cur++
	return v, nil
}

// panicParser panics on the first ProduceInt32 call, exercising the
// recover()-and-poison path in runPartition.
type panicParser struct {
	unsupportedParser
}

func (panicParser) FetchNext() (int, bool, error) { return 1, true, nil }
func (panicParser) ProduceInt32() (int32, error)   { panic("simulated builder corruption") }
func (panicParser) ProduceNullableUtf8() (typesystem.Null[string], error) {
	return typesystem.Null[string]{}, nil
}

type fakeReader struct {
	parser source.Parser
}

func (r *fakeReader) Parser(ctx context.Context) (source.Parser, error) { return r.parser, nil }
func (r *fakeReader) Close() error                                      { return nil }

// fakeSource hands back one fakeReader per partition index from
// partitions, reporting the fixed schema {id Int32, name Utf8}.
type fakeSource struct {
	orders     dataorder.Set
	partitions []source.Parser
	queries    []source.Query
}

func newFakeSource(partitions ...source.Parser) *fakeSource {
	return &fakeSource{orders: dataorder.Set{dataorder.RowMajor}, partitions: partitions}
}

func (s *fakeSource) SupportedDataOrders() dataorder.Set { return s.orders }
func (s *fakeSource) SetQueries(queries []source.Query)  { s.queries = queries }

func (s *fakeSource) FetchMetadata(ctx context.Context) (typesystem.Schema, error) {
	return typesystem.Schema{Fields: []typesystem.Field{
		typesystem.NewField("id", typesystem.Int32, false),
		typesystem.NewField("name", typesystem.Utf8, true),
	}}, nil
}

func (s *fakeSource) Reader(ctx context.Context, index int, order dataorder.Order) (source.Reader, error) {
	if !s.orders.Contains(order) {
		return nil, xerrors.NewSchemaError(xerrors.UnsupportedDataOrder, "fake source order mismatch", nil)
	}
	return &fakeReader{parser: s.partitions[index]}, nil
}

func testQueries(n int) []source.Query {
	qs := make([]source.Query, n)
	for i := range qs {
		qs[i] = source.Query{SQL: "select 1"}
	}
	return qs
}

func TestRunEndToEnd(t *testing.T) {
	p0 := &fakeParser{rows: []row{
		{id: 1, name: typesystem.Some("a")},
		{id: 2, name: typesystem.None[string]()},
	}}
	p1 := &fakeParser{rows: []row{
		{id: 3, name: typesystem.Some("c")},
	}}
	src := newFakeSource(p0, p1)
	dst := arrowdest.New(arrowdest.WithBatchSize(10))

	require.NoError(t, Run(context.Background(), src, dst, testQueries(2)))

	batches, err := dst.Finish()
	require.NoError(t, err)

	var totalRows int64
	for _, b := range batches {
		totalRows += b.NumRows()
	}
	assert.EqualValues(t, 3, totalRows)
}

func TestRunNoCommonDataOrder(t *testing.T) {
	src := &fakeSource{orders: dataorder.Set{dataorder.ColumnMajor}}
	dst := arrowdest.New()

	err := Run(context.Background(), src, dst, testQueries(1))
	var schemaErr *xerrors.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestRunPropagatesParserError(t *testing.T) {
	wantErr := errors.New("boom")
	p := &fakeParser{failNext: wantErr}
	src := newFakeSource(p)
	dst := arrowdest.New()

	err := Run(context.Background(), src, dst, testQueries(1))
	assert.ErrorIs(t, err, wantErr)
}

func TestRunPanicPoisonsDestination(t *testing.T) {
	src := newFakeSource(panicParser{})
	dst := arrowdest.New()

	err := Run(context.Background(), src, dst, testQueries(1))
	var stateErr *xerrors.StateError
	assert.ErrorAs(t, err, &stateErr)

	_, finishErr := dst.Finish()
	assert.ErrorAs(t, finishErr, &stateErr)
}
