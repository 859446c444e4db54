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

// Package dialect supplies the one piece of SQL text each Source needs
// to inject a metadata-only probe around an arbitrary query: the
// source repository's BigQueryDialect in
// _examples/original_source/connector_arrow/src/sources/bigquery/
// mod.rs plays the same role for identifier quoting rules. Full query
// rewriting (predicate pushdown, partition-bound injection) is
// explicitly out of scope - see spec.md's Non-goals - so this package
// stays intentionally thin.
package dialect

import (
	"fmt"

	"github.com/gopinathjcs/connector-arrow/internal/util/ident"
)

// probeAlias is the identifier the WHERE-FALSE/LIMIT-1 rewrites bind
// the caller's query to. It is quoted via internal/util/ident rather
// than interpolated as a bare literal, the same way the teacher's
// ident.Table/ident.Ident types keep identifiers out of raw SQL
// concatenation.
var probeAlias = ident.New("probe_").Quoted()

// Dialect names the probe strategy a Source uses to ask a backend for
// a query's result schema without executing the full query.
type Dialect interface {
	// Name identifies the dialect for logging/metrics labels.
	Name() string

	// LimitZeroQuery wraps sql in a metadata-only probe that is
	// guaranteed to return zero rows while still reporting the result
	// schema, e.g. internal/source/duckdb's "SELECT * FROM (...) AS
	// "probe_" WHERE FALSE".
	LimitZeroQuery(sql string) string

	// LimitOneQuery wraps sql in a probe that returns at most one row,
	// for backends whose metadata API is cheaper to drive from a real
	// result than from a WHERE FALSE rewrite or a dry-run plan.
	LimitOneQuery(sql string) string
}

// ansiDialect is the WHERE-FALSE/LIMIT-1 dialect shared by any backend
// whose SQL accepts both standard rewrites unmodified;
// internal/source/duckdb uses it for its metadata probe.
// internal/source/bigquery uses no Dialect and probes with a dry run.
type ansiDialect struct{ name string }

// NewANSI constructs a Dialect using the two standard-SQL rewrites,
// labeled name for logging.
func NewANSI(name string) Dialect { return ansiDialect{name: name} }

func (d ansiDialect) Name() string { return d.name }

func (d ansiDialect) LimitZeroQuery(sql string) string {
	return fmt.Sprintf("SELECT * FROM (%s) AS %s WHERE FALSE", sql, probeAlias)
}

func (d ansiDialect) LimitOneQuery(sql string) string {
	return fmt.Sprintf("SELECT * FROM (%s) AS %s LIMIT 1", sql, probeAlias)
}
