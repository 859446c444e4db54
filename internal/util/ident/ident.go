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

// Package ident supplies the minimal quoted-identifier vocabulary the
// source repository's internal/types.go implies through its
// ident.Ident/ident.Table/ident.Schema field types: a comparable,
// case-preserving wrapper around a raw SQL name plus quoting logic, so
// a dialect probe never interpolates a caller-supplied alias or column
// name into generated SQL unescaped.
package ident

import "strings"

// Ident is a single, case-preserving SQL identifier. It is comparable
// so it can be used as a map key the way the teacher's
// Deadlines map[ident.Ident]time.Duration does.
type Ident struct {
	raw string
}

// New wraps raw as an Ident without validating or case-folding it;
// backends differ on identifier case rules and this package takes no
// position beyond quoting.
func New(raw string) Ident { return Ident{raw: raw} }

// Raw returns the identifier's unquoted text.
func (i Ident) Raw() string { return i.raw }

// Empty reports whether i was never assigned a name.
func (i Ident) Empty() bool { return i.raw == "" }

func (i Ident) String() string { return i.raw }

// Quoted double-quotes i for interpolation into ANSI-family SQL,
// doubling any embedded quote character per the standard escaping
// rule. In this repository it quotes internal/dialect's probe alias,
// used by the duckdb adapter; the bigquery adapter quotes no
// identifiers.
func (i Ident) Quoted() string {
	return `"` + strings.ReplaceAll(i.raw, `"`, `""`) + `"`
}

// Schema is an ordered catalog/schema path, e.g. {"db", "public"}.
type Schema struct {
	idents []Ident
}

// NewSchema builds a Schema from an ordered path of Idents.
func NewSchema(idents ...Ident) Schema {
	return Schema{idents: append([]Ident(nil), idents...)}
}

// Idents returns the schema's path components.
func (s Schema) Idents() []Ident { return s.idents }

// Empty reports whether s names no path components.
func (s Schema) Empty() bool { return len(s.idents) == 0 }

func (s Schema) String() string {
	parts := make([]string, len(s.idents))
	for i, id := range s.idents {
		parts[i] = id.String()
	}
	return strings.Join(parts, ".")
}

// Quoted renders the schema path as dot-separated quoted identifiers.
func (s Schema) Quoted() string {
	parts := make([]string, len(s.idents))
	for i, id := range s.idents {
		parts[i] = id.Quoted()
	}
	return strings.Join(parts, ".")
}

// Table is a Schema-qualified table name.
type Table struct {
	schema Schema
	table  Ident
}

// NewTable qualifies table with schema, mirroring the teacher's
// ident.NewTable(schema, name) constructor shape.
func NewTable(schema Schema, table Ident) Table {
	return Table{schema: schema, table: table}
}

// Schema returns t's enclosing Schema.
func (t Table) Schema() Schema { return t.schema }

// Table returns t's unqualified table name.
func (t Table) Table() Ident { return t.table }

func (t Table) String() string {
	if t.schema.Empty() {
		return t.table.String()
	}
	return t.schema.String() + "." + t.table.String()
}

// Quoted renders t as a fully schema-qualified, quoted SQL reference.
func (t Table) Quoted() string {
	if t.schema.Empty() {
		return t.table.Quoted()
	}
	return t.schema.Quoted() + "." + t.table.Quoted()
}
