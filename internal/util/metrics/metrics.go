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

// Package metrics holds the Prometheus vectors shared across the
// engine and destination packages, following the same
// promauto-at-package-scope pattern as the source repository's
// internal/staging/stage package.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// LatencyBuckets is the shared histogram bucket set for every
// duration metric in this module, copied from the source repository's
// internal/util/metrics package so that dashboards built against one
// line up with the other.
var LatencyBuckets = []float64{
	.001, .002, .005, .01, .02, .05, .1, .2, .5, 1, 2, 5, 10, 20, 50, 100,
}

// PartitionLabels tags a metric with the partition index it was
// observed on.
var PartitionLabels = []string{"partition"}

var (
	// FlushDuration observes the wall-clock time to finish a batch's
	// builders and push it into the shared output.
	FlushDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "connector_arrow_flush_duration_seconds",
		Help:    "time taken to finish a record batch and push it to the shared output",
		Buckets: LatencyBuckets,
	}, []string{})

	// RowsFlushed counts rows successfully flushed into RecordBatches.
	RowsFlushed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connector_arrow_rows_flushed_total",
		Help: "rows flushed into record batches",
	}, []string{})

	// RowsRead counts rows fetched from a Source partition, regardless
	// of whether they are later flushed.
	RowsRead = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connector_arrow_rows_read_total",
		Help: "rows read from a source partition",
	}, PartitionLabels)

	// PartitionDuration observes the wall-clock time for one partition's
	// transfer loop, from Reader open to PartitionWriter Finalize.
	PartitionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "connector_arrow_partition_duration_seconds",
		Help:    "time taken to fully transfer one partition",
		Buckets: LatencyBuckets,
	}, PartitionLabels)

	// TransferErrors is a counter of fatal transfer errors, labeled by
	// kind. No package in this module increments it.
	TransferErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "connector_arrow_transfer_errors_total",
		Help: "fatal errors encountered while transferring partitions",
	}, []string{"kind"})
)
