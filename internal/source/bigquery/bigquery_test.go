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

package bigquery

import (
	"math/big"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopinathjcs/connector-arrow/internal/typesystem"
	"github.com/gopinathjcs/connector-arrow/internal/xerrors"
)

func TestTagFromBQ(t *testing.T) {
	cases := map[bigquery.FieldType]typesystem.Tag{
		bigquery.BooleanFieldType:    typesystem.Bool,
		bigquery.IntegerFieldType:    typesystem.Int64,
		bigquery.FloatFieldType:      typesystem.Float64,
		bigquery.StringFieldType:     typesystem.Utf8,
		bigquery.BytesFieldType:      typesystem.Binary,
		bigquery.TimestampFieldType:  typesystem.Timestamp,
		bigquery.NumericFieldType:    typesystem.Decimal128,
		bigquery.BigNumericFieldType: typesystem.Decimal128,
		bigquery.DateFieldType:       typesystem.Date32,
	}
	for ft, want := range cases {
		got, err := tagFromBQ(ft)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestTagFromBQUnsupported(t *testing.T) {
	_, err := tagFromBQ(bigquery.RecordFieldType)
	var schemaErr *xerrors.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestSchemaFromBQSetsNullableAndDecimalDefaults(t *testing.T) {
	schema := bigquery.Schema{
		{Name: "id", Type: bigquery.IntegerFieldType, Required: true},
		{Name: "amount", Type: bigquery.NumericFieldType, Required: false},
		{Name: "seen_at", Type: bigquery.TimestampFieldType, Required: false},
	}
	got, err := schemaFromBQ(schema)
	require.NoError(t, err)
	require.Len(t, got.Fields, 3)

	assert.False(t, got.Fields[0].Nullable)
	assert.Equal(t, typesystem.Int64, got.Fields[0].Tag)

	assert.True(t, got.Fields[1].Nullable)
	assert.EqualValues(t, 38, got.Fields[1].Precision)

	assert.Equal(t, typesystem.Microsecond, got.Fields[2].TimeUnit)
}

func TestSchemaFromBQPropagatesExplicitPrecision(t *testing.T) {
	schema := bigquery.Schema{
		{Name: "amount", Type: bigquery.NumericFieldType, Precision: 10, Scale: 2},
	}
	got, err := schemaFromBQ(schema)
	require.NoError(t, err)
	assert.EqualValues(t, 10, got.Fields[0].Precision)
	assert.EqualValues(t, 2, got.Fields[0].Scale)
}

func TestBqFloat64AcceptsIntegerValues(t *testing.T) {
	f, ok := bqFloat64(int64(7))
	assert.True(t, ok)
	assert.Equal(t, 7.0, f)

	f, ok = bqFloat64(3.5)
	assert.True(t, ok)
	assert.Equal(t, 3.5, f)

	_, ok = bqFloat64("nope")
	assert.False(t, ok)
}

func TestBqDate32ConvertsCivilDateToEpochDays(t *testing.T) {
	d, ok := bqDate32(civil.Date{Year: 1970, Month: 1, Day: 2})
	assert.True(t, ok)
	assert.EqualValues(t, 1, d)
}

func TestBqTimestampConvertsToMicroseconds(t *testing.T) {
	tm := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ts, ok := bqTimestamp(tm)
	assert.True(t, ok)
	assert.Equal(t, tm.UnixMicro(), int64(ts))
}

func TestBqDecimalFromBigRat(t *testing.T) {
	r := big.NewRat(1, 2)
	n, ok := bqDecimal(r)
	assert.True(t, ok)
	assert.InDelta(t, 0.5, n.ToFloat64(9), 1e-9)
}

func TestBqDecimalPreservesRepeatingFractionToScale(t *testing.T) {
	// 1/3 has no exact binary float64 or terminating decimal
	// representation; bqDecimal must still round to exactly
	// bqDecimalScale digits rather than whatever float64 happens to
	// carry through an intermediate r.Float64() conversion.
	r := big.NewRat(1, 3)
	n, ok := bqDecimal(r)
	assert.True(t, ok)
	assert.InDelta(t, 1.0/3.0, n.ToFloat64(9), 1e-9)
}

func TestBqDecimalRejectsUnconvertibleType(t *testing.T) {
	_, ok := bqDecimal("not a decimal")
	assert.False(t, ok)
}

func TestNarrowNullablePropagatesErrorAndValidity(t *testing.T) {
	some, err := narrowNullable[int64, int32](typesystem.Some(int64(9)), nil)
	assert.NoError(t, err)
	assert.True(t, some.Valid)
	assert.EqualValues(t, 9, some.Value)

	none, err := narrowNullable[int64, int32](typesystem.None[int64](), nil)
	assert.NoError(t, err)
	assert.False(t, none.Valid)
}
