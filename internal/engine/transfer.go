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

package engine

import (
	"github.com/gopinathjcs/connector-arrow/internal/destination"
	"github.com/gopinathjcs/connector-arrow/internal/source"
	"github.com/gopinathjcs/connector-arrow/internal/typesystem"
	"github.com/gopinathjcs/connector-arrow/internal/xerrors"
)

// transferOp is Realize<TransferOp>(tag): the single point of typed
// dispatch per cell. Each entry reads one value of the Tag's static Go
// representation from the Parser and writes it to the matching
// PartitionWriter method, per spec.md section 4.4's
// "TransferOp<T>(parser, writer) = writer.consume::<T>(parser.produce::<T>())".
type transferOp func(nullable bool, p source.Parser, w destination.PartitionWriter) error

// transferTable is the Tag-indexed dispatch table built once at
// package init and shared by every partition's orchestration loop; it
// is read-only after init so no synchronization is needed to use it
// concurrently.
var transferTable = buildTransferTable()

func buildTransferTable() map[typesystem.Tag]transferOp {
	return map[typesystem.Tag]transferOp{
		typesystem.Bool: func(nullable bool, p source.Parser, w destination.PartitionWriter) error {
			if nullable {
				v, err := p.ProduceNullableBool()
				if err != nil {
					return err
				}
				return w.ConsumeNullableBool(v)
			}
			v, err := p.ProduceBool()
			if err != nil {
				return err
			}
			return w.ConsumeBool(v)
		},
		typesystem.Int8: func(nullable bool, p source.Parser, w destination.PartitionWriter) error {
			if nullable {
				v, err := p.ProduceNullableInt8()
				if err != nil {
					return err
				}
				return w.ConsumeNullableInt8(v)
			}
			v, err := p.ProduceInt8()
			if err != nil {
				return err
			}
			return w.ConsumeInt8(v)
		},
		typesystem.Int16: func(nullable bool, p source.Parser, w destination.PartitionWriter) error {
			if nullable {
				v, err := p.ProduceNullableInt16()
				if err != nil {
					return err
				}
				return w.ConsumeNullableInt16(v)
			}
			v, err := p.ProduceInt16()
			if err != nil {
				return err
			}
			return w.ConsumeInt16(v)
		},
		typesystem.Int32: func(nullable bool, p source.Parser, w destination.PartitionWriter) error {
			if nullable {
				v, err := p.ProduceNullableInt32()
				if err != nil {
					return err
				}
				return w.ConsumeNullableInt32(v)
			}
			v, err := p.ProduceInt32()
			if err != nil {
				return err
			}
			return w.ConsumeInt32(v)
		},
		typesystem.Int64: func(nullable bool, p source.Parser, w destination.PartitionWriter) error {
			if nullable {
				v, err := p.ProduceNullableInt64()
				if err != nil {
					return err
				}
				return w.ConsumeNullableInt64(v)
			}
			v, err := p.ProduceInt64()
			if err != nil {
				return err
			}
			return w.ConsumeInt64(v)
		},
		typesystem.Uint8: func(nullable bool, p source.Parser, w destination.PartitionWriter) error {
			if nullable {
				v, err := p.ProduceNullableUint8()
				if err != nil {
					return err
				}
				return w.ConsumeNullableUint8(v)
			}
			v, err := p.ProduceUint8()
			if err != nil {
				return err
			}
			return w.ConsumeUint8(v)
		},
		typesystem.Uint16: func(nullable bool, p source.Parser, w destination.PartitionWriter) error {
			if nullable {
				v, err := p.ProduceNullableUint16()
				if err != nil {
					return err
				}
				return w.ConsumeNullableUint16(v)
			}
			v, err := p.ProduceUint16()
			if err != nil {
				return err
			}
			return w.ConsumeUint16(v)
		},
		typesystem.Uint32: func(nullable bool, p source.Parser, w destination.PartitionWriter) error {
			if nullable {
				v, err := p.ProduceNullableUint32()
				if err != nil {
					return err
				}
				return w.ConsumeNullableUint32(v)
			}
			v, err := p.ProduceUint32()
			if err != nil {
				return err
			}
			return w.ConsumeUint32(v)
		},
		typesystem.Uint64: func(nullable bool, p source.Parser, w destination.PartitionWriter) error {
			if nullable {
				v, err := p.ProduceNullableUint64()
				if err != nil {
					return err
				}
				return w.ConsumeNullableUint64(v)
			}
			v, err := p.ProduceUint64()
			if err != nil {
				return err
			}
			return w.ConsumeUint64(v)
		},
		typesystem.Float16: func(nullable bool, p source.Parser, w destination.PartitionWriter) error {
			if nullable {
				v, err := p.ProduceNullableFloat16()
				if err != nil {
					return err
				}
				return w.ConsumeNullableFloat16(v)
			}
			v, err := p.ProduceFloat16()
			if err != nil {
				return err
			}
			return w.ConsumeFloat16(v)
		},
		typesystem.Float32: func(nullable bool, p source.Parser, w destination.PartitionWriter) error {
			if nullable {
				v, err := p.ProduceNullableFloat32()
				if err != nil {
					return err
				}
				return w.ConsumeNullableFloat32(v)
			}
			v, err := p.ProduceFloat32()
			if err != nil {
				return err
			}
			return w.ConsumeFloat32(v)
		},
		typesystem.Float64: func(nullable bool, p source.Parser, w destination.PartitionWriter) error {
			if nullable {
				v, err := p.ProduceNullableFloat64()
				if err != nil {
					return err
				}
				return w.ConsumeNullableFloat64(v)
			}
			v, err := p.ProduceFloat64()
			if err != nil {
				return err
			}
			return w.ConsumeFloat64(v)
		},
		typesystem.Utf8: func(nullable bool, p source.Parser, w destination.PartitionWriter) error {
			if nullable {
				v, err := p.ProduceNullableUtf8()
				if err != nil {
					return err
				}
				return w.ConsumeNullableUtf8(v)
			}
			v, err := p.ProduceUtf8()
			if err != nil {
				return err
			}
			return w.ConsumeUtf8(v)
		},
		typesystem.LargeUtf8: func(nullable bool, p source.Parser, w destination.PartitionWriter) error {
			if nullable {
				v, err := p.ProduceNullableLargeUtf8()
				if err != nil {
					return err
				}
				return w.ConsumeNullableLargeUtf8(v)
			}
			v, err := p.ProduceLargeUtf8()
			if err != nil {
				return err
			}
			return w.ConsumeLargeUtf8(v)
		},
		typesystem.Binary: func(nullable bool, p source.Parser, w destination.PartitionWriter) error {
			if nullable {
				v, err := p.ProduceNullableBinary()
				if err != nil {
					return err
				}
				return w.ConsumeNullableBinary(v)
			}
			v, err := p.ProduceBinary()
			if err != nil {
				return err
			}
			return w.ConsumeBinary(v)
		},
		typesystem.LargeBinary: func(nullable bool, p source.Parser, w destination.PartitionWriter) error {
			if nullable {
				v, err := p.ProduceNullableLargeBinary()
				if err != nil {
					return err
				}
				return w.ConsumeNullableLargeBinary(v)
			}
			v, err := p.ProduceLargeBinary()
			if err != nil {
				return err
			}
			return w.ConsumeLargeBinary(v)
		},
		typesystem.Date32: func(nullable bool, p source.Parser, w destination.PartitionWriter) error {
			if nullable {
				v, err := p.ProduceNullableDate32()
				if err != nil {
					return err
				}
				return w.ConsumeNullableDate32(v)
			}
			v, err := p.ProduceDate32()
			if err != nil {
				return err
			}
			return w.ConsumeDate32(v)
		},
		typesystem.Time64: func(nullable bool, p source.Parser, w destination.PartitionWriter) error {
			if nullable {
				v, err := p.ProduceNullableTime64()
				if err != nil {
					return err
				}
				return w.ConsumeNullableTime64(v)
			}
			v, err := p.ProduceTime64()
			if err != nil {
				return err
			}
			return w.ConsumeTime64(v)
		},
		typesystem.Timestamp: func(nullable bool, p source.Parser, w destination.PartitionWriter) error {
			if nullable {
				v, err := p.ProduceNullableTimestamp()
				if err != nil {
					return err
				}
				return w.ConsumeNullableTimestamp(v)
			}
			v, err := p.ProduceTimestamp()
			if err != nil {
				return err
			}
			return w.ConsumeTimestamp(v)
		},
		typesystem.Decimal128: func(nullable bool, p source.Parser, w destination.PartitionWriter) error {
			if nullable {
				v, err := p.ProduceNullableDecimal128()
				if err != nil {
					return err
				}
				return w.ConsumeNullableDecimal128(v)
			}
			v, err := p.ProduceDecimal128()
			if err != nil {
				return err
			}
			return w.ConsumeDecimal128(v)
		},
		typesystem.Null: func(_ bool, p source.Parser, w destination.PartitionWriter) error {
			if err := p.ProduceNull(); err != nil {
				return err
			}
			return w.ConsumeNull()
		},
	}
}

// transferCell runs Realize<TransferOp>(tag) for one cell.
func transferCell(tag typesystem.Tag, nullable bool, p source.Parser, w destination.PartitionWriter) error {
	op, ok := transferTable[tag]
	if !ok {
		return xerrors.NewSchemaError(xerrors.UnsupportedType, "no TransferOp for tag "+tag.String(), nil)
	}
	return op(nullable, p, w)
}
