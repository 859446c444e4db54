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

package duckdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopinathjcs/connector-arrow/internal/typesystem"
	"github.com/gopinathjcs/connector-arrow/internal/xerrors"
)

func TestTagFromNativeKnownTypes(t *testing.T) {
	cases := map[string]typesystem.Tag{
		"BOOLEAN":   typesystem.Bool,
		"bool":      typesystem.Bool,
		"TINYINT":   typesystem.Int8,
		"SMALLINT":  typesystem.Int16,
		"INTEGER":   typesystem.Int32,
		"INT4":      typesystem.Int32,
		"BIGINT":    typesystem.Int64,
		"UTINYINT":  typesystem.Uint8,
		"USMALLINT": typesystem.Uint16,
		"UINTEGER":  typesystem.Uint32,
		"UBIGINT":   typesystem.Uint64,
		"REAL":      typesystem.Float32,
		"DOUBLE":    typesystem.Float64,
		"TIMESTAMP": typesystem.Timestamp,
		"VARCHAR":   typesystem.Utf8,
		"BLOB":      typesystem.Binary,
	}
	for native, want := range cases {
		got, err := tagFromNative(native)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestTagFromNativeUnsupported(t *testing.T) {
	_, err := tagFromNative("DECIMAL(18,4)")
	var schemaErr *xerrors.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestAsInt64AcceptsNarrowerIntegerKinds(t *testing.T) {
	v, ok := asInt64(int32(5))
	assert.True(t, ok)
	assert.EqualValues(t, 5, v)

	v, ok = asInt64(int(-3))
	assert.True(t, ok)
	assert.EqualValues(t, -3, v)

	_, ok = asInt64("nope")
	assert.False(t, ok)
}

func TestAsStringAcceptsBytes(t *testing.T) {
	s, ok := asString([]byte("hello"))
	assert.True(t, ok)
	assert.Equal(t, "hello", s)
}

func TestAsBytesAcceptsString(t *testing.T) {
	b, ok := asBytes("hello")
	assert.True(t, ok)
	assert.Equal(t, []byte("hello"), b)
}

func TestAsFloat64AcceptsFloat32(t *testing.T) {
	v, ok := asFloat64(float32(1.5))
	assert.True(t, ok)
	assert.Equal(t, 1.5, v)
}

func newTestParser(vals []any, fields ...typesystem.Field) *Parser {
	return &Parser{schema: typesystem.Schema{Fields: fields}, vals: vals}
}

func TestParserProduceInt32(t *testing.T) {
	p := newTestParser([]any{int32(42)}, typesystem.NewField("a", typesystem.Int32, false))
	v, err := p.ProduceInt32()
	require.NoError(t, err)
	assert.EqualValues(t, 42, v)
}

func TestParserProduceNullableInt32NullCell(t *testing.T) {
	p := newTestParser([]any{nil}, typesystem.NewField("a", typesystem.Int32, true))
	v, err := p.ProduceNullableInt32()
	require.NoError(t, err)
	assert.False(t, v.Valid)
}

func TestParserProduceUnexpectedNullOnNonNullable(t *testing.T) {
	p := newTestParser([]any{nil}, typesystem.NewField("a", typesystem.Int32, false))
	_, err := p.ProduceInt32()
	var unexpected *xerrors.UnexpectedNull
	assert.ErrorAs(t, err, &unexpected)
}

func TestParserProduceCannotConvert(t *testing.T) {
	p := newTestParser([]any{"not an int"}, typesystem.NewField("a", typesystem.Int32, false))
	_, err := p.ProduceInt32()
	var cannot *xerrors.CannotProduce
	assert.ErrorAs(t, err, &cannot)
}

func TestParserProduceUtf8FromBytes(t *testing.T) {
	p := newTestParser([]any{[]byte("row")}, typesystem.NewField("a", typesystem.Utf8, false))
	v, err := p.ProduceUtf8()
	require.NoError(t, err)
	assert.Equal(t, "row", v)
}

func TestParserProduceDate32IsUnsupported(t *testing.T) {
	p := newTestParser([]any{nil}, typesystem.NewField("a", typesystem.Date32, true))
	_, err := p.ProduceDate32()
	var schemaErr *xerrors.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestParserProduceTimestampFromTimeTime(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	p := newTestParser([]any{ts}, typesystem.NewField("a", typesystem.Timestamp, false))
	v, err := p.ProduceTimestamp()
	require.NoError(t, err)
	assert.EqualValues(t, ts.UnixMicro(), v)
}

func TestParserProduceNullableTimestampNullCell(t *testing.T) {
	p := newTestParser([]any{nil}, typesystem.NewField("a", typesystem.Timestamp, true))
	v, err := p.ProduceNullableTimestamp()
	require.NoError(t, err)
	assert.False(t, v.Valid)
}

func TestParserProduceNullableTimestampFromTimeTime(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	p := newTestParser([]any{ts}, typesystem.NewField("a", typesystem.Timestamp, true))
	v, err := p.ProduceNullableTimestamp()
	require.NoError(t, err)
	require.True(t, v.Valid)
	assert.EqualValues(t, ts.UnixMicro(), v.Value)
}

func TestAsTimestampMicrosRejectsUnconvertibleType(t *testing.T) {
	_, ok := asTimestampMicros("not a timestamp")
	assert.False(t, ok)
}
