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

package source

import (
	"context"
	"errors"
	"testing"

	arrowgo "github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/decimal128"
	"github.com/apache/arrow/go/v18/arrow/float16"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopinathjcs/connector-arrow/internal/dataorder"
	"github.com/gopinathjcs/connector-arrow/internal/typesystem"
	"github.com/gopinathjcs/connector-arrow/internal/xerrors"
)

// countingParser counts how many times ProduceInt32 is called, so a
// test can assert Produce calls were never perturbed even when the
// chaos probability is 1.
type countingParser struct {
	produceInt32Calls int
}

func (p *countingParser) FetchNext() (int, bool, error) { return 1, true, nil }

func (p *countingParser) ProduceBool() (bool, error) { return false, nil }
func (p *countingParser) ProduceNullableBool() (typesystem.Null[bool], error) {
	return typesystem.Null[bool]{}, nil
}
func (p *countingParser) ProduceInt8() (int8, error) { return 0, nil }
func (p *countingParser) ProduceNullableInt8() (typesystem.Null[int8], error) {
	return typesystem.Null[int8]{}, nil
}
func (p *countingParser) ProduceInt16() (int16, error) { return 0, nil }
func (p *countingParser) ProduceNullableInt16() (typesystem.Null[int16], error) {
	return typesystem.Null[int16]{}, nil
}
func (p *countingParser) ProduceInt32() (int32, error) {
	p.produceInt32Calls++
	return 7, nil
}
func (p *countingParser) ProduceNullableInt32() (typesystem.Null[int32], error) {
	return typesystem.Null[int32]{}, nil
}
func (p *countingParser) ProduceInt64() (int64, error) { return 0, nil }
func (p *countingParser) ProduceNullableInt64() (typesystem.Null[int64], error) {
	return typesystem.Null[int64]{}, nil
}
func (p *countingParser) ProduceUint8() (uint8, error) { return 0, nil }
func (p *countingParser) ProduceNullableUint8() (typesystem.Null[uint8], error) {
	return typesystem.Null[uint8]{}, nil
}
func (p *countingParser) ProduceUint16() (uint16, error) { return 0, nil }
func (p *countingParser) ProduceNullableUint16() (typesystem.Null[uint16], error) {
	return typesystem.Null[uint16]{}, nil
}
func (p *countingParser) ProduceUint32() (uint32, error) { return 0, nil }
func (p *countingParser) ProduceNullableUint32() (typesystem.Null[uint32], error) {
	return typesystem.Null[uint32]{}, nil
}
func (p *countingParser) ProduceUint64() (uint64, error) { return 0, nil }
func (p *countingParser) ProduceNullableUint64() (typesystem.Null[uint64], error) {
	return typesystem.Null[uint64]{}, nil
}
func (p *countingParser) ProduceFloat16() (float16.Num, error) { return float16.Num{}, nil }
func (p *countingParser) ProduceNullableFloat16() (typesystem.Null[float16.Num], error) {
	return typesystem.Null[float16.Num]{}, nil
}
func (p *countingParser) ProduceFloat32() (float32, error) { return 0, nil }
func (p *countingParser) ProduceNullableFloat32() (typesystem.Null[float32], error) {
	return typesystem.Null[float32]{}, nil
}
func (p *countingParser) ProduceFloat64() (float64, error) { return 0, nil }
func (p *countingParser) ProduceNullableFloat64() (typesystem.Null[float64], error) {
	return typesystem.Null[float64]{}, nil
}
func (p *countingParser) ProduceUtf8() (string, error) { return "", nil }
func (p *countingParser) ProduceNullableUtf8() (typesystem.Null[string], error) {
	return typesystem.Null[string]{}, nil
}
func (p *countingParser) ProduceLargeUtf8() (string, error) { return "", nil }
func (p *countingParser) ProduceNullableLargeUtf8() (typesystem.Null[string], error) {
	return typesystem.Null[string]{}, nil
}
func (p *countingParser) ProduceBinary() ([]byte, error) { return nil, nil }
func (p *countingParser) ProduceNullableBinary() (typesystem.Null[[]byte], error) {
	return typesystem.Null[[]byte]{}, nil
}
func (p *countingParser) ProduceLargeBinary() ([]byte, error) { return nil, nil }
func (p *countingParser) ProduceNullableLargeBinary() (typesystem.Null[[]byte], error) {
	return typesystem.Null[[]byte]{}, nil
}
func (p *countingParser) ProduceDate32() (arrowgo.Date32, error) { return 0, nil }
func (p *countingParser) ProduceNullableDate32() (typesystem.Null[arrowgo.Date32], error) {
	return typesystem.Null[arrowgo.Date32]{}, nil
}
func (p *countingParser) ProduceTime64() (arrowgo.Time64, error) { return 0, nil }
func (p *countingParser) ProduceNullableTime64() (typesystem.Null[arrowgo.Time64], error) {
	return typesystem.Null[arrowgo.Time64]{}, nil
}
func (p *countingParser) ProduceTimestamp() (arrowgo.Timestamp, error) { return 0, nil }
func (p *countingParser) ProduceNullableTimestamp() (typesystem.Null[arrowgo.Timestamp], error) {
	return typesystem.Null[arrowgo.Timestamp]{}, nil
}
func (p *countingParser) ProduceDecimal128() (decimal128.Num, error) { return decimal128.Num{}, nil }
func (p *countingParser) ProduceNullableDecimal128() (typesystem.Null[decimal128.Num], error) {
	return typesystem.Null[decimal128.Num]{}, nil
}
func (p *countingParser) ProduceNull() error { return nil }

type fakeReader struct{ parser Parser }

func (r *fakeReader) Parser(ctx context.Context) (Parser, error) { return r.parser, nil }
func (r *fakeReader) Close() error                               { return nil }

type fakeSource struct {
	reader Reader
	schema typesystem.Schema
}

func (s *fakeSource) SupportedDataOrders() dataorder.Set { return dataorder.Set{dataorder.RowMajor} }
func (s *fakeSource) SetQueries(queries []Query)          {}
func (s *fakeSource) FetchMetadata(ctx context.Context) (typesystem.Schema, error) {
	return s.schema, nil
}
func (s *fakeSource) Reader(ctx context.Context, index int, order dataorder.Order) (Reader, error) {
	return s.reader, nil
}

func TestWithChaosZeroProbabilityReturnsDelegateUnchanged(t *testing.T) {
	delegate := &fakeSource{}
	got := WithChaos(delegate, 0)
	assert.Same(t, delegate, got)
}

func TestWithChaosAlwaysInjectsOnFetchMetadata(t *testing.T) {
	delegate := &fakeSource{}
	wrapped := WithChaos(delegate, 1)

	_, err := wrapped.FetchMetadata(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrChaos))
	var transportErr *xerrors.TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestWithChaosAlwaysInjectsOnReader(t *testing.T) {
	delegate := &fakeSource{reader: &fakeReader{parser: &countingParser{}}}
	wrapped := WithChaos(delegate, 1)

	_, err := wrapped.Reader(context.Background(), 0, dataorder.RowMajor)
	assert.True(t, errors.Is(err, ErrChaos))
}

func TestWithChaosNeverPerturbsProduceCalls(t *testing.T) {
	counting := &countingParser{}
	delegate := &fakeSource{reader: &fakeReader{parser: counting}}
	wrapped := WithChaos(delegate, 1)

	reader, err := wrapped.Reader(context.Background(), 0, dataorder.RowMajor)
	// prob is 1, so Reader itself always fails chaos; to reach the
	// Parser/Produce layer directly, bypass Source.Reader and exercise
	// chaosReader/chaosParser in isolation instead.
	_ = reader
	_ = err

	cr := &chaosReader{delegate: &fakeReader{parser: counting}, prob: 1}
	p, perr := cr.Parser(context.Background())
	require.Error(t, perr)
	assert.True(t, errors.Is(perr, ErrChaos))
	assert.Nil(t, p)

	// FetchNext is the only gated Parser method; Produce* always
	// passes straight through regardless of probability.
	cp := &chaosParser{delegate: counting, prob: 1}
	for i := 0; i < 5; i++ {
		v, err := cp.ProduceInt32()
		require.NoError(t, err)
		assert.EqualValues(t, 7, v)
	}
	assert.Equal(t, 5, counting.produceInt32Calls)
}

func TestWithChaosFetchNextIsGated(t *testing.T) {
	cp := &chaosParser{delegate: &countingParser{}, prob: 1}
	_, _, err := cp.FetchNext()
	assert.True(t, errors.Is(err, ErrChaos))
}
