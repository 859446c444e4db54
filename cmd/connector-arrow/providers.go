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

package main

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/google/wire"
	"github.com/pkg/errors"

	"github.com/gopinathjcs/connector-arrow/internal/destination"
	arrowdest "github.com/gopinathjcs/connector-arrow/internal/destination/arrow"
	"github.com/gopinathjcs/connector-arrow/internal/source"
	bqsource "github.com/gopinathjcs/connector-arrow/internal/source/bigquery"
	"github.com/gopinathjcs/connector-arrow/internal/source/duckdb"
	"github.com/gopinathjcs/connector-arrow/internal/util/diag"
)

// ProviderSet is consumed by wire.Build in wire.go; wire_gen.go is its
// hand-expanded equivalent, following the source repository's
// internal/source/cdc wire_gen.go pattern of a flat call sequence with
// explicit cleanup-on-error unwinding.
var ProviderSet = wire.NewSet(
	ProvideDiagnostics,
	ProvideSource,
	ProvideDestination,
	ProvideQueries,
)

// ProvideDiagnostics constructs the process-wide health-check registry.
func ProvideDiagnostics(ctx context.Context) (*diag.Diagnostics, func()) {
	return diag.New(ctx)
}

// ProvideQueries turns the flat --query list into source.Query values.
// Positional bind args are not exposed on the command line; callers
// needing them should drive internal/engine directly.
func ProvideQueries(cfg *Config) []source.Query {
	queries := make([]source.Query, len(cfg.Queries))
	for i, q := range cfg.Queries {
		queries[i] = source.Query{SQL: q}
	}
	return queries
}

// ProvideSource opens the backend named by cfg.Backend, wrapping it in
// source.WithChaos when cfg.ChaosProb is set.
func ProvideSource(
	ctx context.Context, cfg *Config, diags *diag.Diagnostics,
) (source.Source, func(), error) {
	var (
		base source.Source
		err  error
	)
	switch cfg.Backend {
	case "duckdb":
		var s *duckdb.Source
		s, err = duckdb.Open(ctx, cfg.DSN, diags, "duckdb-source")
		if err == nil {
			base = s
		}
	case "bigquery":
		var client *bigquery.Client
		client, err = bigquery.NewClient(ctx, cfg.BigQueryProject)
		if err == nil {
			base = bqsource.Open(client, cfg.BigQueryProject)
		}
	default:
		err = errors.Errorf("unknown backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, func() {}, err
	}
	cleanup := func() {
		if closer, ok := base.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}
	return source.WithChaos(base, cfg.ChaosProb), cleanup, nil
}

// ProvideDestination constructs the Arrow destination sized to
// cfg.BatchSize.
func ProvideDestination(cfg *Config) destination.Destination {
	return arrowdest.New(arrowdest.WithBatchSize(cfg.BatchSize))
}
