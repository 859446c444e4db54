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
	"github.com/gopinathjcs/connector-arrow/internal/destination"
	"github.com/gopinathjcs/connector-arrow/internal/source"
	"github.com/gopinathjcs/connector-arrow/internal/util/diag"
)

// server bundles the wired-up components a single extraction run
// needs.
type server struct {
	Diagnostics *diag.Diagnostics
	Source      source.Source
	Destination destination.Destination
	Queries     []source.Query
}
