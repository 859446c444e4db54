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

package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentQuotedEscapesEmbeddedQuote(t *testing.T) {
	id := New(`weird"name`)
	assert.Equal(t, `"weird""name"`, id.Quoted())
}

func TestIdentIsComparable(t *testing.T) {
	m := map[Ident]int{New("a"): 1}
	m[New("b")] = 2
	assert.Equal(t, 1, m[New("a")])
	assert.Equal(t, 2, len(m))
}

func TestSchemaQuotedJoinsPath(t *testing.T) {
	s := NewSchema(New("db"), New("public"))
	assert.Equal(t, `"db"."public"`, s.Quoted())
	assert.Equal(t, "db.public", s.String())
}

func TestTableQuotedWithSchema(t *testing.T) {
	tbl := NewTable(NewSchema(New("db")), New("orders"))
	assert.Equal(t, `"db"."orders"`, tbl.Quoted())
	assert.Equal(t, "db.orders", tbl.String())
}

func TestTableQuotedWithoutSchema(t *testing.T) {
	tbl := NewTable(Schema{}, New("orders"))
	assert.True(t, tbl.Schema().Empty())
	assert.Equal(t, `"orders"`, tbl.Quoted())
	assert.Equal(t, "orders", tbl.String())
}
