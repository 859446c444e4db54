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

// Package diag is a lightweight health-check registry: components such
// as a connection pool or statement cache Register themselves under a
// name, and a /healthz-style handler calls RunChecks to collect a
// report. This mirrors the diag.Diagnostics type threaded through the
// source repository's Wire providers (see
// internal/source/logical/provider.go's diags.Register calls),
// generalized here to name-keyed registration of an arbitrary
// Diagnostic.
package diag

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Diagnostic reports its own health. Implementations must be safe for
// concurrent use; RunChecks may call Report from multiple goroutines.
type Diagnostic interface {
	Report(ctx context.Context) error
}

// DiagnosticFunc adapts a plain function to the Diagnostic interface.
type DiagnosticFunc func(ctx context.Context) error

// Report implements Diagnostic.
func (f DiagnosticFunc) Report(ctx context.Context) error { return f(ctx) }

// Diagnostics is a name-keyed registry of components to health-check.
type Diagnostics struct {
	mu    sync.Mutex
	items map[string]Diagnostic
}

// New constructs an empty Diagnostics registry. The returned cleanup
// function is a no-op; it exists so callers that construct this via a
// Wire provider (as the source repository does for other resources)
// can use the same (value, cleanup, error) provider shape uniformly.
func New(ctx context.Context) (*Diagnostics, func()) {
	d := &Diagnostics{items: make(map[string]Diagnostic)}
	return d, func() {}
}

// Register adds a Diagnostic under name. It returns an error if name
// is already registered, matching the source repository's
// fail-fast-on-duplicate-registration behavior.
func (d *Diagnostics) Register(name string, diagnostic Diagnostic) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, dup := d.items[name]; dup {
		return errors.Errorf("diagnostic already registered: %s", name)
	}
	d.items[name] = diagnostic
	return nil
}

// RunChecks calls Report on every registered Diagnostic and returns a
// map of name to error, omitting names whose Report returned nil.
func (d *Diagnostics) RunChecks(ctx context.Context) map[string]error {
	d.mu.Lock()
	items := make(map[string]Diagnostic, len(d.items))
	for k, v := range d.items {
		items[k] = v
	}
	d.mu.Unlock()

	out := make(map[string]error)
	for name, diagnostic := range items {
		if err := diagnostic.Report(ctx); err != nil {
			out[name] = err
		}
	}
	return out
}
