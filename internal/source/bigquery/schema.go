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
	"cloud.google.com/go/bigquery"

	"github.com/gopinathjcs/connector-arrow/internal/typesystem"
	"github.com/gopinathjcs/connector-arrow/internal/xerrors"
)

// tagFromBQ is this module's analogue of BigQueryTypeSystem::from in
// the source repository's
// _examples/original_source/connector_arrow/src/sources/bigquery/
// mod.rs typesystem submodule, mapping bigquery.FieldType to a
// canonical Tag.
func tagFromBQ(t bigquery.FieldType) (typesystem.Tag, error) {
	switch t {
	case bigquery.BooleanFieldType:
		return typesystem.Bool, nil
	case bigquery.IntegerFieldType:
		return typesystem.Int64, nil
	case bigquery.FloatFieldType:
		return typesystem.Float64, nil
	case bigquery.StringFieldType:
		return typesystem.Utf8, nil
	case bigquery.BytesFieldType:
		return typesystem.Binary, nil
	case bigquery.TimestampFieldType:
		return typesystem.Timestamp, nil
	case bigquery.NumericFieldType, bigquery.BigNumericFieldType:
		return typesystem.Decimal128, nil
	case bigquery.DateFieldType:
		return typesystem.Date32, nil
	default:
		return typesystem.Invalid, xerrors.NewSchemaError(xerrors.UnsupportedType,
			"bigquery: no canonical tag for field type "+string(t), nil)
	}
}

func schemaFromBQ(schema bigquery.Schema) (typesystem.Schema, error) {
	fields := make([]typesystem.Field, len(schema))
	for i, f := range schema {
		tag, err := tagFromBQ(f.Type)
		if err != nil {
			return typesystem.Schema{}, err
		}
		field := typesystem.NewField(f.Name, tag, !f.Required)
		switch tag {
		case typesystem.Timestamp:
			field.TimeUnit = typesystem.Microsecond
		case typesystem.Decimal128:
			field.Precision = int32(f.Precision)
			field.Scale = int32(f.Scale)
			if field.Precision == 0 {
				field.Precision = 38
				field.Scale = bqDecimalScale
			}
		}
		fields[i] = field
	}
	return typesystem.Schema{Fields: fields}, nil
}
