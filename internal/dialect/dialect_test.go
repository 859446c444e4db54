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

package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestANSILimitZeroQueryQuotesAlias(t *testing.T) {
	d := NewANSI("duckdb")
	got := d.LimitZeroQuery("SELECT 1")
	assert.Equal(t, `SELECT * FROM (SELECT 1) AS "probe_" WHERE FALSE`, got)
}

func TestANSILimitOneQueryQuotesAlias(t *testing.T) {
	d := NewANSI("bigquery")
	got := d.LimitOneQuery("SELECT 1")
	assert.Equal(t, `SELECT * FROM (SELECT 1) AS "probe_" LIMIT 1`, got)
}

func TestANSIName(t *testing.T) {
	assert.Equal(t, "duckdb", NewANSI("duckdb").Name())
}
