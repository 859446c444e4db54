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

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gopinathjcs/connector-arrow/internal/xerrors"
)

func TestTagString(t *testing.T) {
	assert.Equal(t, "Bool", Bool.String())
	assert.Equal(t, "Decimal128", Decimal128.String())
	assert.Contains(t, Tag(999).String(), "Tag(999)")
}

func TestTagValid(t *testing.T) {
	assert.False(t, Invalid.Valid())
	assert.True(t, Bool.Valid())
	assert.True(t, Null.Valid())
	assert.False(t, Tag(999).Valid())
}

func TestTimeUnitString(t *testing.T) {
	cases := map[TimeUnit]string{
		Second:      "s",
		Millisecond: "ms",
		Microsecond: "us",
		Nanosecond:  "ns",
	}
	for unit, want := range cases {
		assert.Equal(t, want, unit.String())
	}
}

func TestNullSomeNone(t *testing.T) {
	some := Some(42)
	assert.True(t, some.Valid)
	assert.Equal(t, 42, some.Value)

	none := None[int]()
	assert.False(t, none.Valid)
	assert.Zero(t, none.Value)
}

func TestSchemaCloneIsIndependent(t *testing.T) {
	s := Schema{Fields: []Field{NewField("a", Int32, false)}}
	clone := s.Clone()
	clone.Fields[0].Name = "mutated"

	assert.Equal(t, "a", s.Fields[0].Name)
	assert.Equal(t, "mutated", clone.Fields[0].Name)
	assert.Equal(t, 1, s.NCols())
}

func TestTagForKnownTypes(t *testing.T) {
	assert.Equal(t, Bool, TagFor[bool]())
	assert.Equal(t, Int32, TagFor[int32]())
	assert.Equal(t, Utf8, TagFor[string]())
	assert.Equal(t, Binary, TagFor[[]byte]())
	assert.Equal(t, Invalid, TagFor[struct{ X int }]())
}

func TestCheckTagExactMatch(t *testing.T) {
	assert.NoError(t, CheckTag[int32](Int32))

	err := CheckTag[int32](Int64)
	var mismatch *MismatchError
	assert.ErrorAs(t, err, &mismatch)
	assert.Equal(t, Int64, mismatch.Expected)
	assert.Equal(t, Int32, mismatch.Got)
	assert.ErrorIs(t, err, xerrors.ErrTypeMismatch)
}

func TestCheckTagLargeVariant(t *testing.T) {
	// A caller statically producing a Go string is compatible with both
	// the Utf8 and LargeUtf8 declared column tags.
	assert.NoError(t, CheckTag[string](Utf8))
	assert.NoError(t, CheckTag[string](LargeUtf8))
	assert.NoError(t, CheckTag[[]byte](Binary))
	assert.NoError(t, CheckTag[[]byte](LargeBinary))
}

func TestCheckUsesFieldTag(t *testing.T) {
	f := NewField("col", Timestamp, true)
	err := Check[int64](f)
	var mismatch *MismatchError
	assert.ErrorAs(t, err, &mismatch)
}
