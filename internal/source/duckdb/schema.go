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
	"database/sql"
	"strings"

	"github.com/gopinathjcs/connector-arrow/internal/typesystem"
	"github.com/gopinathjcs/connector-arrow/internal/xerrors"
)

// tagFromNative is the reverse of the source repository's
// ty_from_arrow table in
// _examples/original_source/connector_arrow/src/duckdb/schema.rs: it
// maps a DuckDB DatabaseTypeName back to a canonical Tag. Types the
// original marks unimplemented!() going canonical->native (Date, Time,
// Decimal, Interval, nested) are unmapped here too, reported as
// UnsupportedType per spec.md section 6's canonical-to-native mapping
// table rather than silently coerced.
func tagFromNative(dbType string) (typesystem.Tag, error) {
	switch strings.ToUpper(dbType) {
	case "BOOLEAN", "BOOL":
		return typesystem.Bool, nil
	case "TINYINT":
		return typesystem.Int8, nil
	case "SMALLINT":
		return typesystem.Int16, nil
	case "INTEGER", "INT", "INT4":
		return typesystem.Int32, nil
	case "BIGINT":
		return typesystem.Int64, nil
	case "UTINYINT":
		return typesystem.Uint8, nil
	case "USMALLINT":
		return typesystem.Uint16, nil
	case "UINTEGER":
		return typesystem.Uint32, nil
	case "UBIGINT":
		return typesystem.Uint64, nil
	case "REAL", "FLOAT", "FLOAT4":
		return typesystem.Float32, nil
	case "DOUBLE", "FLOAT8":
		return typesystem.Float64, nil
	case "TIMESTAMP":
		return typesystem.Timestamp, nil
	case "VARCHAR", "STRING", "TEXT":
		return typesystem.Utf8, nil
	case "BLOB", "BYTEA", "BINARY", "VARBINARY":
		return typesystem.Binary, nil
	default:
		return typesystem.Invalid, xerrors.NewSchemaError(xerrors.UnsupportedType,
			"duckdb: no canonical tag for native type "+dbType, nil)
	}
}

// schemaFromColumnTypes builds a Schema from the result of a
// metadata-only probe query's sql.Rows.ColumnTypes.
func schemaFromColumnTypes(cols []*sql.ColumnType) (typesystem.Schema, error) {
	fields := make([]typesystem.Field, len(cols))
	for i, c := range cols {
		tag, err := tagFromNative(c.DatabaseTypeName())
		if err != nil {
			return typesystem.Schema{}, err
		}
		nullable, _ := c.Nullable()
		f := typesystem.NewField(c.Name(), tag, nullable)
		if tag == typesystem.Timestamp {
			f.TimeUnit = typesystem.Microsecond
		}
		fields[i] = f
	}
	return typesystem.Schema{Fields: fields}, nil
}
