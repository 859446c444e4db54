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
	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/decimal128"
	"github.com/apache/arrow/go/v18/arrow/float16"

	"github.com/gopinathjcs/connector-arrow/internal/typesystem"
)

// Parser is opened once per Reader and produces every cell of its
// partition in row-major, column-by-column order. current_row and
// current_col (spec.md section 4.2) are tracked internally by the
// implementation, not exposed here; callers only observe the contract
// that FetchNext is called exactly when the implicit current_col is 0.
//
// There is one Produce method per canonical Tag, in both non-nullable
// and nullable form, rather than a single generic Produce[T any]
// method - Go interfaces cannot carry generic methods, so this is the
// "one trampoline per (tag, op) pair" strategy spec.md section 9
// recommends for languages without monomorphized runtime dispatch. The
// orchestration engine (internal/engine) holds a Tag-indexed table
// mapping each Tag to the matching pair of methods; that table, not
// this interface, is where "Realize" actually happens.
//
// Every method may return *xerrors.TransportError (paging or network
// failure), *xerrors.CannotProduce (value present but not parseable as
// the requested type), *xerrors.UnexpectedNull (non-nullable method
// called but the cell was null), or xerrors.EndOfPartition (called
// beyond the declared row count).
type Parser interface {
	// FetchNext must be called only when the implicit current_col is
	// 0. It returns the number of rows guaranteed producible before
	// the next FetchNext call and whether this is the final such
	// window for the partition. Implementations may page the
	// underlying cursor transparently; pagination occurs between rows
	// only, never mid-row.
	FetchNext() (availableRows int, isLast bool, err error)

	ProduceBool() (bool, error)
	ProduceNullableBool() (typesystem.Null[bool], error)

	ProduceInt8() (int8, error)
	ProduceNullableInt8() (typesystem.Null[int8], error)
	ProduceInt16() (int16, error)
	ProduceNullableInt16() (typesystem.Null[int16], error)
	ProduceInt32() (int32, error)
	ProduceNullableInt32() (typesystem.Null[int32], error)
	ProduceInt64() (int64, error)
	ProduceNullableInt64() (typesystem.Null[int64], error)

	ProduceUint8() (uint8, error)
	ProduceNullableUint8() (typesystem.Null[uint8], error)
	ProduceUint16() (uint16, error)
	ProduceNullableUint16() (typesystem.Null[uint16], error)
	ProduceUint32() (uint32, error)
	ProduceNullableUint32() (typesystem.Null[uint32], error)
	ProduceUint64() (uint64, error)
	ProduceNullableUint64() (typesystem.Null[uint64], error)

	ProduceFloat16() (float16.Num, error)
	ProduceNullableFloat16() (typesystem.Null[float16.Num], error)
	ProduceFloat32() (float32, error)
	ProduceNullableFloat32() (typesystem.Null[float32], error)
	ProduceFloat64() (float64, error)
	ProduceNullableFloat64() (typesystem.Null[float64], error)

	ProduceUtf8() (string, error)
	ProduceNullableUtf8() (typesystem.Null[string], error)
	ProduceLargeUtf8() (string, error)
	ProduceNullableLargeUtf8() (typesystem.Null[string], error)

	ProduceBinary() ([]byte, error)
	ProduceNullableBinary() (typesystem.Null[[]byte], error)
	ProduceLargeBinary() ([]byte, error)
	ProduceNullableLargeBinary() (typesystem.Null[[]byte], error)

	ProduceDate32() (arrow.Date32, error)
	ProduceNullableDate32() (typesystem.Null[arrow.Date32], error)
	ProduceTime64() (arrow.Time64, error)
	ProduceNullableTime64() (typesystem.Null[arrow.Time64], error)
	ProduceTimestamp() (arrow.Timestamp, error)
	ProduceNullableTimestamp() (typesystem.Null[arrow.Timestamp], error)

	ProduceDecimal128() (decimal128.Num, error)
	ProduceNullableDecimal128() (typesystem.Null[decimal128.Num], error)

	// ProduceNull advances past a Null-typed column; Null columns
	// carry no payload, only presence, so there is no non-nullable
	// form.
	ProduceNull() error
}
