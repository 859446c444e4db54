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

// Package stmtcache is a generic, size-bounded cache of prepared
// statements, keyed by an arbitrary comparable key (typically the SQL
// text itself). It mirrors the stmtcache.New[string](pool.DB, size)
// call in the source repository's
// internal/source/logical/provider.go, generalized so every partition
// Reader opened against the same *sql.DB can share one cache instead
// of re-preparing its probe/fetch statement per partition.
package stmtcache

import (
	"container/list"
	"context"
	"database/sql"
	"sync"

	"github.com/pkg/errors"
)

// Cache is a size-bounded LRU cache of *sql.Stmt, keyed by K.
type Cache[K comparable] struct {
	db       *sql.DB
	maxSize  int
	diag     string
	mu       sync.Mutex
	ll       *list.List // of *entry[K]
	elements map[K]*list.Element
}

type entry[K comparable] struct {
	key  K
	stmt *sql.Stmt
}

// New constructs a Cache bound to db, evicting the least-recently-used
// statement once more than size keys have been prepared. A size of
// zero or less disables eviction entirely.
func New[K comparable](db *sql.DB, size int) *Cache[K] {
	return &Cache[K]{
		db:       db,
		maxSize:  size,
		ll:       list.New(),
		elements: make(map[K]*list.Element),
	}
}

// Prepare returns a cached *sql.Stmt for key, preparing query and
// inserting it into the cache if this is the first use of key.
func (c *Cache[K]) Prepare(ctx context.Context, key K, query string) (*sql.Stmt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.elements[key]; ok {
		c.ll.MoveToFront(el)
		return el.Value.(*entry[K]).stmt, nil
	}

	stmt, err := c.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	el := c.ll.PushFront(&entry[K]{key: key, stmt: stmt})
	c.elements[key] = el

	if c.maxSize > 0 {
		for len(c.elements) > c.maxSize {
			oldest := c.ll.Back()
			if oldest == nil {
				break
			}
			c.evictLocked(oldest)
		}
	}
	return stmt, nil
}

func (c *Cache[K]) evictLocked(el *list.Element) {
	e := el.Value.(*entry[K])
	delete(c.elements, e.key)
	c.ll.Remove(el)
	_ = e.stmt.Close()
}

// Close closes every cached statement and empties the cache. It takes
// no arguments and returns nothing, so it fits the cleanup slot of a
// Wire provider, matching ProvideTargetStatements's (ret, ret.Close,
// nil) provider shape in the source repository.
func (c *Cache[K]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, el := range c.elements {
		_ = el.Value.(*entry[K]).stmt.Close()
	}
	c.elements = make(map[K]*list.Element)
	c.ll.Init()
}

// Len reports the number of statements currently cached.
func (c *Cache[K]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.elements)
}
