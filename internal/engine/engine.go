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

// Package engine binds a Source's partitions to a Destination's
// writers and drives the per-cell dispatch loop described in spec.md
// section 4.4. It is the only package that imports both
// internal/source and internal/destination.
package engine

import (
	"context"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/gopinathjcs/connector-arrow/internal/dataorder"
	"github.com/gopinathjcs/connector-arrow/internal/destination"
	"github.com/gopinathjcs/connector-arrow/internal/source"
	"github.com/gopinathjcs/connector-arrow/internal/typesystem"
	"github.com/gopinathjcs/connector-arrow/internal/util/metrics"
	"github.com/gopinathjcs/connector-arrow/internal/util/stopper"
	"github.com/gopinathjcs/connector-arrow/internal/xerrors"
)

// Run extracts every query in queries from src into dst, one goroutine
// per partition, and blocks until all partitions have finished or one
// has failed. On success every PartitionWriter has been Finalized and
// dst.Finish can be called. On failure, some partitions may have been
// canceled mid-flight. A partition whose failure leaves its writer at a
// row boundary still finalizes that writer; one that fails partway
// through a row, or panics, leaves its writer outstanding, so a later
// dst.Finish fails with a StateError. The returned error should be
// treated as fatal to the whole extraction per spec.md section 7.
func Run(ctx context.Context, src source.Source, dst destination.Destination, queries []source.Query) error {
	order := pickOrder(src, dst)
	if order < 0 {
		return xerrors.NewSchemaError(xerrors.UnsupportedDataOrder,
			"source and destination share no common data order", nil)
	}

	src.SetQueries(queries)
	schema, err := src.FetchMetadata(ctx)
	if err != nil {
		return err
	}
	if err := dst.SetSchema(schema); err != nil {
		return err
	}

	sctx := stopper.WithContext(ctx)
	for i := range queries {
		i := i
		sctx.Go(func() error {
			return runPartition(sctx, i, schema, src, dst, order)
		})
	}
	return sctx.Wait()
}

// pickOrder returns the first data order supported by both src and
// dst, or -1 if they share none.
func pickOrder(src source.Source, dst destination.Destination) dataorder.Order {
	supported := dst.SupportedDataOrders()
	for _, o := range src.SupportedDataOrders() {
		if supported.Contains(o) {
			return o
		}
	}
	return -1
}

// runPartition implements the per-partition loop from spec.md section
// 4.4. A panic anywhere in the partition's loop poisons the
// destination's shared output through its Poison method, if the
// destination has one, and is returned as a MutexPoisoned StateError
// rather than crashing the whole process.
func runPartition(
	ctx context.Context,
	index int,
	schema typesystem.Schema,
	src source.Source,
	dst destination.Destination,
	order dataorder.Order,
) (err error) {
	start := time.Now()
	label := partitionLabel(index)
	defer func() {
		metrics.PartitionDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			if p, ok := dst.(interface{ Poison() }); ok {
				p.Poison()
			}
			log.WithField("partition", index).Errorf("panic in partition: %v", r)
			err = xerrors.NewStateError(xerrors.MutexPoisoned, "partition worker panicked")
		}
	}()

	reader, err := src.Reader(ctx, index, order)
	if err != nil {
		return err
	}
	defer reader.Close()

	parser, err := reader.Parser(ctx)
	if err != nil {
		return err
	}

	writer, err := dst.AllocWriter(order)
	if err != nil {
		return err
	}

	for {
		n, last, ferr := parser.FetchNext()
		if ferr != nil {
			_ = writer.Finalize()
			return ferr
		}
		for row := 0; row < n; row++ {
			for _, f := range schema.Fields {
				if terr := transferCell(f.Tag, f.Nullable, parser, writer); terr != nil {
					_ = writer.Finalize()
					return terr
				}
			}
		}
		metrics.RowsRead.WithLabelValues(label).Add(float64(n))
		if last {
			break
		}
	}

	return writer.Finalize()
}

func partitionLabel(index int) string {
	return strconv.Itoa(index)
}
