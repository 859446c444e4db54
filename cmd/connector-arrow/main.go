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

// Command connector-arrow runs a one-shot, multi-partition SQL-to-Arrow
// extraction: it opens the backend named by --backend, fans one
// goroutine out per --query, and reports progress through the
// Prometheus metrics this module's packages register via promauto.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/gopinathjcs/connector-arrow/internal/engine"
)

func main() {
	if err := run(); err != nil {
		log.WithError(err).Error("connector-arrow exiting with error")
		os.Exit(1)
	}
}

func run() error {
	cfg := &Config{}
	cfg.Bind(pflag.CommandLine)
	pflag.Parse()
	if err := cfg.Preflight(); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	srv, cleanup, err := newServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if errs := srv.Diagnostics.RunChecks(r.Context()); len(errs) > 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Warn("metrics server stopped")
		}
	}()
	defer metricsSrv.Close()

	log.WithFields(log.Fields{
		"backend":    cfg.Backend,
		"partitions": len(srv.Queries),
	}).Info("starting extraction")

	return engine.Run(ctx, srv.Source, srv.Destination, srv.Queries)
}
