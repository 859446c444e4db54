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

// Package source defines the contracts a SQL-speaking backend must
// satisfy to feed the extraction pipeline: a Source opens partitioned
// Readers, each of which yields exactly one Parser that produces typed
// cell values in row-major, column-by-column order.
package source

import (
	"context"

	"github.com/gopinathjcs/connector-arrow/internal/dataorder"
	"github.com/gopinathjcs/connector-arrow/internal/typesystem"
)

// A Query identifies one partition's worth of work: the SQL text to run
// and, where the backend supports it, the partition bounds that make
// concurrent partitions disjoint. Dialect-specific rewriting (e.g.
// injecting the bounds into a WHERE clause) is the caller's
// responsibility - see internal/dialect - and is explicitly out of
// scope for this package.
type Query struct {
	// SQL is the statement text to execute for this partition.
	SQL string
	// Args are positional bind parameters for SQL.
	Args []any
}

// Source is created, configured with a set of partition Queries, asked
// once for its Schema, and then asked to open a Reader per partition.
// All partitions of a single Source must agree on the Schema returned
// by FetchMetadata.
type Source interface {
	// SupportedDataOrders returns the non-empty, static set of data
	// orders this Source can produce into.
	SupportedDataOrders() dataorder.Set

	// SetQueries records the ordered list of partition queries. It
	// performs no I/O; FetchMetadata and Reader are responsible for
	// that.
	SetQueries(queries []Query)

	// FetchMetadata executes a metadata-only probe against the first
	// query - all partitions must agree on the resulting Schema - and
	// returns the canonical schema. Returns a *xerrors.SchemaError on
	// failure (SchemaUnavailable, DialectError) or a
	// *xerrors.TransportError for a failed connection.
	FetchMetadata(ctx context.Context) (typesystem.Schema, error)

	// Reader opens a partition reader bound to queries[index]. Returns
	// a *xerrors.SchemaError{Kind: UnsupportedDataOrder} if order is
	// not in SupportedDataOrders().
	Reader(ctx context.Context, index int, order dataorder.Order) (Reader, error)
}

// Reader owns one partition's underlying cursor. It yields exactly one
// Parser; calling Parser more than once on the same Reader is a
// programming error and returns a *xerrors.StateError.
type Reader interface {
	// Parser opens the underlying cursor and returns a streaming
	// parser bound to the Reader's lifetime.
	Parser(ctx context.Context) (Parser, error)

	// Close releases the partition's cursor/connection. Safe to call
	// after the Parser has been fully drained, or to abandon a Reader
	// whose Parser was never requested.
	Close() error
}
