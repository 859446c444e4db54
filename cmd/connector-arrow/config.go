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
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Config is the user-visible configuration for a connector-arrow
// extraction run, adapted from the source repository's
// internal/source/server.Config (itself a Bind/Preflight pair) and
// scoped to the data-movement engine rather than a CDC changefeed
// server.
type Config struct {
	// Backend selects the Source implementation: "duckdb" or
	// "bigquery".
	Backend string
	// DSN is the duckdb data source name (a file path, or ":memory:").
	// Ignored when Backend is "bigquery".
	DSN string
	// BigQueryProject is the GCP project id. Required when Backend is
	// "bigquery".
	BigQueryProject string
	// Queries is the ordered list of per-partition SQL statements;
	// every partition runs concurrently against the same Backend and
	// must agree on result schema.
	Queries []string
	// BatchSize bounds the row count of each destination.RecordBatch.
	BatchSize int
	// ChaosProb injects transport faults at this probability per
	// source call, for exercising failure handling; 0 disables it.
	ChaosProb float32
	// MetricsAddr is the bind address for the /metrics endpoint.
	MetricsAddr string
}

// Bind registers flags on flags.
func (c *Config) Bind(flags *pflag.FlagSet) {
	flags.StringVar(&c.Backend, "backend", "duckdb",
		"source backend to extract from: duckdb or bigquery")
	flags.StringVar(&c.DSN, "dsn", ":memory:",
		"duckdb data source name (file path or :memory:)")
	flags.StringVar(&c.BigQueryProject, "bigqueryProject", "",
		"GCP project id, required when backend is bigquery")
	flags.StringArrayVar(&c.Queries, "query", nil,
		"a partition's SQL statement; repeat for multiple partitions")
	flags.IntVar(&c.BatchSize, "batchSize", 1024,
		"row count per destination record batch")
	flags.Float32Var(&c.ChaosProb, "chaosProbability", 0,
		"inject a transport fault at this probability per source call, for testing")
	flags.StringVar(&c.MetricsAddr, "metricsAddr", ":9090",
		"bind address for the Prometheus /metrics endpoint")
}

// Preflight validates Config after flags are parsed.
func (c *Config) Preflight() error {
	switch c.Backend {
	case "duckdb":
		if c.DSN == "" {
			return errors.New("dsn unset")
		}
	case "bigquery":
		if c.BigQueryProject == "" {
			return errors.New("bigqueryProject unset")
		}
	default:
		return errors.Errorf("unknown backend %q, want duckdb or bigquery", c.Backend)
	}
	if len(c.Queries) == 0 {
		return errors.New("at least one --query is required")
	}
	if c.BatchSize <= 0 {
		return errors.New("batchSize must be positive")
	}
	if c.ChaosProb < 0 || c.ChaosProb > 1 {
		return errors.New("chaosProbability must be in [0,1]")
	}
	if c.MetricsAddr == "" {
		return errors.New("metricsAddr unset")
	}
	return nil
}
