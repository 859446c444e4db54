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

package typesystem

// Field describes one column of a Schema: its name, its canonical Tag,
// and any parameters the Tag requires (time unit/zone, decimal
// precision/scale).
type Field struct {
	Name     string
	Tag      Tag
	Nullable bool

	// TimeUnit applies to Time64 and Timestamp.
	TimeUnit TimeUnit
	// TZ applies to Timestamp; empty means no zone (naive/local).
	TZ string

	// Precision and Scale apply to Decimal128.
	Precision int32
	Scale     int32
}

// NewField returns a Field with the given nullability and no type
// parameters; adapters
// that need TimeUnit/TZ/Precision/Scale set those fields directly.
func NewField(name string, tag Tag, nullable bool) Field {
	return Field{Name: name, Tag: tag, Nullable: nullable}
}

// Schema is an ordered, immutable sequence of Fields. A Schema is set
// once per source before any Reader is allocated (see the Source
// lifecycle) and is shared, read-only, across every partition.
type Schema struct {
	Fields []Field
}

// NCols returns the column count.
func (s Schema) NCols() int { return len(s.Fields) }

// Clone returns a defensive copy of the Schema's Fields so that callers
// cannot mutate a shared Schema through an aliased slice.
func (s Schema) Clone() Schema {
	out := make([]Field, len(s.Fields))
	copy(out, s.Fields)
	return Schema{Fields: out}
}
