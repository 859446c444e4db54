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
	"math/rand"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/decimal128"
	"github.com/apache/arrow/go/v18/arrow/float16"
	"github.com/pkg/errors"

	"github.com/gopinathjcs/connector-arrow/internal/dataorder"
	"github.com/gopinathjcs/connector-arrow/internal/typesystem"
	"github.com/gopinathjcs/connector-arrow/internal/xerrors"
)

// ErrChaos is the error WithChaos injects, adapted from the source
// repository's internal/source/logical package of the same name and
// purpose.
var ErrChaos = errors.New("chaos")

// WithChaos wraps delegate in a Source that injects a
// *xerrors.TransportError at the given probability on every
// I/O-shaped call (FetchMetadata, Reader, Parser, FetchNext), the same
// decorator shape as the source repository's WithChaos for Dialect.
// Returns delegate unchanged if prob <= 0.
func WithChaos(delegate Source, prob float32) Source {
	if prob <= 0 {
		return delegate
	}
	return &chaosSource{delegate: delegate, prob: prob}
}

func doChaos(op string) error {
	return xerrors.WrapTransport(op, errors.WithMessage(ErrChaos, op))
}

type chaosSource struct {
	delegate Source
	prob     float32
}

var _ Source = (*chaosSource)(nil)

func (s *chaosSource) SupportedDataOrders() dataorder.Set { return s.delegate.SupportedDataOrders() }
func (s *chaosSource) SetQueries(queries []Query)          { s.delegate.SetQueries(queries) }

func (s *chaosSource) FetchMetadata(ctx context.Context) (typesystem.Schema, error) {
	if rand.Float32() < s.prob {
		return typesystem.Schema{}, doChaos("FetchMetadata")
	}
	return s.delegate.FetchMetadata(ctx)
}

func (s *chaosSource) Reader(ctx context.Context, index int, order dataorder.Order) (Reader, error) {
	if rand.Float32() < s.prob {
		return nil, doChaos("Reader")
	}
	r, err := s.delegate.Reader(ctx, index, order)
	if err != nil {
		return nil, err
	}
	return &chaosReader{delegate: r, prob: s.prob}, nil
}

type chaosReader struct {
	delegate Reader
	prob     float32
}

var _ Reader = (*chaosReader)(nil)

func (r *chaosReader) Parser(ctx context.Context) (Parser, error) {
	if rand.Float32() < r.prob {
		return nil, doChaos("Parser")
	}
	p, err := r.delegate.Parser(ctx)
	if err != nil {
		return nil, err
	}
	return &chaosParser{delegate: p, prob: r.prob}, nil
}

func (r *chaosReader) Close() error { return r.delegate.Close() }

// chaosParser only perturbs FetchNext: injecting a fault in the middle
// of a Produce* call would violate the column-at-a-time cursor
// invariant every other Parser implementation upholds.
type chaosParser struct {
	delegate Parser
	prob     float32
}

var _ Parser = (*chaosParser)(nil)

func (p *chaosParser) FetchNext() (int, bool, error) {
	if rand.Float32() < p.prob {
		return 0, true, doChaos("FetchNext")
	}
	return p.delegate.FetchNext()
}

func (p *chaosParser) ProduceBool() (bool, error) { return p.delegate.ProduceBool() }
func (p *chaosParser) ProduceNullableBool() (typesystem.Null[bool], error) {
	return p.delegate.ProduceNullableBool()
}
func (p *chaosParser) ProduceInt8() (int8, error) { return p.delegate.ProduceInt8() }
func (p *chaosParser) ProduceNullableInt8() (typesystem.Null[int8], error) {
	return p.delegate.ProduceNullableInt8()
}
func (p *chaosParser) ProduceInt16() (int16, error) { return p.delegate.ProduceInt16() }
func (p *chaosParser) ProduceNullableInt16() (typesystem.Null[int16], error) {
	return p.delegate.ProduceNullableInt16()
}
func (p *chaosParser) ProduceInt32() (int32, error) { return p.delegate.ProduceInt32() }
func (p *chaosParser) ProduceNullableInt32() (typesystem.Null[int32], error) {
	return p.delegate.ProduceNullableInt32()
}
func (p *chaosParser) ProduceInt64() (int64, error) { return p.delegate.ProduceInt64() }
func (p *chaosParser) ProduceNullableInt64() (typesystem.Null[int64], error) {
	return p.delegate.ProduceNullableInt64()
}
func (p *chaosParser) ProduceUint8() (uint8, error) { return p.delegate.ProduceUint8() }
func (p *chaosParser) ProduceNullableUint8() (typesystem.Null[uint8], error) {
	return p.delegate.ProduceNullableUint8()
}
func (p *chaosParser) ProduceUint16() (uint16, error) { return p.delegate.ProduceUint16() }
func (p *chaosParser) ProduceNullableUint16() (typesystem.Null[uint16], error) {
	return p.delegate.ProduceNullableUint16()
}
func (p *chaosParser) ProduceUint32() (uint32, error) { return p.delegate.ProduceUint32() }
func (p *chaosParser) ProduceNullableUint32() (typesystem.Null[uint32], error) {
	return p.delegate.ProduceNullableUint32()
}
func (p *chaosParser) ProduceUint64() (uint64, error) { return p.delegate.ProduceUint64() }
func (p *chaosParser) ProduceNullableUint64() (typesystem.Null[uint64], error) {
	return p.delegate.ProduceNullableUint64()
}
func (p *chaosParser) ProduceFloat16() (float16.Num, error) { return p.delegate.ProduceFloat16() }
func (p *chaosParser) ProduceNullableFloat16() (typesystem.Null[float16.Num], error) {
	return p.delegate.ProduceNullableFloat16()
}
func (p *chaosParser) ProduceFloat32() (float32, error) { return p.delegate.ProduceFloat32() }
func (p *chaosParser) ProduceNullableFloat32() (typesystem.Null[float32], error) {
	return p.delegate.ProduceNullableFloat32()
}
func (p *chaosParser) ProduceFloat64() (float64, error) { return p.delegate.ProduceFloat64() }
func (p *chaosParser) ProduceNullableFloat64() (typesystem.Null[float64], error) {
	return p.delegate.ProduceNullableFloat64()
}
func (p *chaosParser) ProduceUtf8() (string, error) { return p.delegate.ProduceUtf8() }
func (p *chaosParser) ProduceNullableUtf8() (typesystem.Null[string], error) {
	return p.delegate.ProduceNullableUtf8()
}
func (p *chaosParser) ProduceLargeUtf8() (string, error) { return p.delegate.ProduceLargeUtf8() }
func (p *chaosParser) ProduceNullableLargeUtf8() (typesystem.Null[string], error) {
	return p.delegate.ProduceNullableLargeUtf8()
}
func (p *chaosParser) ProduceBinary() ([]byte, error) { return p.delegate.ProduceBinary() }
func (p *chaosParser) ProduceNullableBinary() (typesystem.Null[[]byte], error) {
	return p.delegate.ProduceNullableBinary()
}
func (p *chaosParser) ProduceLargeBinary() ([]byte, error) { return p.delegate.ProduceLargeBinary() }
func (p *chaosParser) ProduceNullableLargeBinary() (typesystem.Null[[]byte], error) {
	return p.delegate.ProduceNullableLargeBinary()
}
func (p *chaosParser) ProduceDate32() (arrow.Date32, error) { return p.delegate.ProduceDate32() }
func (p *chaosParser) ProduceNullableDate32() (typesystem.Null[arrow.Date32], error) {
	return p.delegate.ProduceNullableDate32()
}
func (p *chaosParser) ProduceTime64() (arrow.Time64, error) { return p.delegate.ProduceTime64() }
func (p *chaosParser) ProduceNullableTime64() (typesystem.Null[arrow.Time64], error) {
	return p.delegate.ProduceNullableTime64()
}
func (p *chaosParser) ProduceTimestamp() (arrow.Timestamp, error) { return p.delegate.ProduceTimestamp() }
func (p *chaosParser) ProduceNullableTimestamp() (typesystem.Null[arrow.Timestamp], error) {
	return p.delegate.ProduceNullableTimestamp()
}
func (p *chaosParser) ProduceDecimal128() (decimal128.Num, error) {
	return p.delegate.ProduceDecimal128()
}
func (p *chaosParser) ProduceNullableDecimal128() (typesystem.Null[decimal128.Num], error) {
	return p.delegate.ProduceNullableDecimal128()
}
func (p *chaosParser) ProduceNull() error { return p.delegate.ProduceNull() }
