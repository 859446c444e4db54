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

// Package bigquery is the cloud-warehouse Source, backed by
// cloud.google.com/go/bigquery. It is a Go port of the source
// repository's BigQuerySource/BigQueryPartitionReader/
// BigQuerySourceParser in
// _examples/original_source/connector_arrow/src/sources/bigquery/
// mod.rs: fetch_metadata runs the first query as a dry run, which
// BigQuery plans and type-checks without scanning any table data or
// incurring the query's billed bytes, and each partition's parser
// pages through its job's results - the concrete instance of the
// paged-source scenario spec.md section 4.2 describes, here realized
// as bigquery.RowIterator's page-token-driven fetches instead of the
// source pattern's explicit GetQueryResultsParameters.
package bigquery

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/gopinathjcs/connector-arrow/internal/dataorder"
	"github.com/gopinathjcs/connector-arrow/internal/source"
	"github.com/gopinathjcs/connector-arrow/internal/typesystem"
	"github.com/gopinathjcs/connector-arrow/internal/xerrors"
)

// Source is the BigQuery realization of source.Source.
type Source struct {
	client    *bigquery.Client
	projectID string
	queries   []source.Query
}

var _ source.Source = (*Source)(nil)

// Open constructs a Source from a pre-authenticated *bigquery.Client,
// mirroring the source repository's pattern of receiving a pre-built
// concurrency/client handle at construction (spec.md section 6,
// "Asynchronous backends receive a pre-built concurrency runtime
// handle at construction") rather than parsing credentials itself.
func Open(client *bigquery.Client, projectID string) *Source {
	return &Source{client: client, projectID: projectID}
}

// SupportedDataOrders implements source.Source.
func (s *Source) SupportedDataOrders() dataorder.Set {
	return dataorder.Set{dataorder.RowMajor}
}

// SetQueries implements source.Source.
func (s *Source) SetQueries(queries []source.Query) {
	s.queries = queries
}

// FetchMetadata implements source.Source by running the first query as
// a dry run: BigQuery validates and plans the query and reports the
// resulting schema in the job's statistics without scanning any table
// data, matching dry_run_query in the source repository.
func (s *Source) FetchMetadata(ctx context.Context) (typesystem.Schema, error) {
	if len(s.queries) == 0 {
		return typesystem.Schema{}, xerrors.NewSchemaError(xerrors.SchemaUnavailable, "no queries set", nil)
	}
	q := s.client.Query(s.queries[0].SQL)
	q.DryRun = true
	job, err := q.Run(ctx)
	if err != nil {
		return typesystem.Schema{}, xerrors.WrapTransport("fetch_metadata", err)
	}
	status := job.LastStatus()
	if status == nil || status.Statistics == nil {
		return typesystem.Schema{}, xerrors.NewSchemaError(xerrors.SchemaUnavailable, "dry run returned no statistics", nil)
	}
	qStats, ok := status.Statistics.Details.(*bigquery.QueryStatistics)
	if !ok {
		return typesystem.Schema{}, xerrors.NewSchemaError(xerrors.SchemaUnavailable, "dry run statistics carried no query details", nil)
	}
	return schemaFromBQ(qStats.Schema)
}

// Reader implements source.Source.
func (s *Source) Reader(ctx context.Context, index int, order dataorder.Order) (source.Reader, error) {
	if !s.SupportedDataOrders().Contains(order) {
		return nil, xerrors.NewSchemaError(xerrors.UnsupportedDataOrder, "bigquery source is row-major only", nil)
	}
	if index < 0 || index >= len(s.queries) {
		return nil, errors.Errorf("bigquery: partition index %d out of range [0,%d)", index, len(s.queries))
	}
	return &Reader{client: s.client, query: s.queries[index]}, nil
}

// Reader is the BigQuery realization of source.Reader: one query job
// per partition.
type Reader struct {
	client *bigquery.Client
	query  source.Query
	opened bool
}

var _ source.Reader = (*Reader)(nil)

// Parser implements source.Reader by submitting the partition's query
// and wrapping the resulting job's RowIterator.
func (r *Reader) Parser(ctx context.Context) (source.Parser, error) {
	if r.opened {
		return nil, xerrors.NewStateError(xerrors.ShapeMismatch, "Parser called more than once on this Reader")
	}
	r.opened = true
	q := r.client.Query(r.query.SQL)
	for _, a := range r.query.Args {
		q.Parameters = append(q.Parameters, bigquery.QueryParameter{Value: a})
	}
	it, err := q.Read(ctx)
	if err != nil {
		return nil, xerrors.WrapTransport("parser: query", err)
	}
	schema, err := schemaFromBQ(it.Schema)
	if err != nil {
		return nil, err
	}
	log.WithField("total_rows", it.TotalRows).Debug("bigquery partition opened")
	return &Parser{it: it, schema: schema}, nil
}

// Close implements source.Reader. BigQuery query jobs hold no
// partition-local connection to release; this is a no-op kept to
// satisfy the contract symmetrically with the duckdb adapter.
func (r *Reader) Close() error { return nil }
