// Copyright 2021 The Token-BulkSender Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package memdb

import (
	"fmt"
	"strings"
	"sync"

	"github.com/WhiteAngel2/Token-BulkSender/db"
)

type memdb struct {
	db map[string][]byte
	sync.RWMutex
}

// New creates a memory-based key-value store
// which is mainly used for testing.
func New() db.Database {
	return &memdb{db: make(map[string][]byte)}
}

// Buckets are emulated by prefixing the key with the bucket name.
func memKey(bucket string, key []byte) string {
	return bucket + "/" + string(key)
}

func (m *memdb) NewBucket(name string) error {
	return nil
}

// Put writes the key/value pair to database.
func (m *memdb) Put(bucket string, key, value []byte) error {
	m.Lock()
	defer m.Unlock()

	if m.db == nil {
		return fmt.Errorf("memdb is closed")
	}

	m.db[memKey(bucket, key)] = value
	return nil
}

// Delete deletes the key from the database.
func (m *memdb) Delete(bucket string, key []byte) error {
	m.Lock()
	defer m.Unlock()

	if m.db == nil {
		return fmt.Errorf("memdb is closed")
	}

	delete(m.db, memKey(bucket, key))
	return nil
}

// Get retrieves the value of the key from database. A missing
// key yields a nil value without error which is the same
// behavior as the boltdb backend.
func (m *memdb) Get(bucket string, key []byte) ([]byte, error) {
	m.RLock()
	defer m.RUnlock()

	if m.db == nil {
		return nil, fmt.Errorf("memdb is closed")
	}

	if val, ok := m.db[memKey(bucket, key)]; ok {
		return val, nil
	}
	return nil, nil
}

// GetAll retrieves the values of the keys with prefix from database.
func (m *memdb) GetAll(bucket string, keyPrefix []byte) ([][]byte, error) {
	m.RLock()
	defer m.RUnlock()

	if m.db == nil {
		return nil, fmt.Errorf("memdb is closed")
	}

	var vals [][]byte
	for k, v := range m.db {
		if strings.HasPrefix(k, memKey(bucket, keyPrefix)) {
			vals = append(vals, v)
		}
	}
	return vals, nil
}

// Close closes the underlying database.
func (m *memdb) Close() error {
	m.Lock()
	defer m.Unlock()

	m.db = nil
	return nil
}

// Begin returns a buffered transaction, the staged updates are
// only visible through the transaction until it commits.
func (m *memdb) Begin() (db.Tx, error) {
	mtx := &memdbTx{
		db:      m,
		staged:  make(map[string][]byte),
		deleted: make(map[string]bool),
	}
	return mtx, nil
}

// memdbTx buffers updates until commit so that a rollback
// leaves the underlying store untouched.
type memdbTx struct {
	db      *memdb
	staged  map[string][]byte
	deleted map[string]bool
	done    bool
}

func (mtx *memdbTx) Get(bucket string, key []byte) ([]byte, error) {
	if mtx.done {
		return nil, fmt.Errorf("memdb tx is finished")
	}

	k := memKey(bucket, key)
	if mtx.deleted[k] {
		return nil, nil
	}
	if val, ok := mtx.staged[k]; ok {
		return val, nil
	}
	return mtx.db.Get(bucket, key)
}

func (mtx *memdbTx) GetAll(bucket string, keyPrefix []byte) ([][]byte, error) {
	if mtx.done {
		return nil, fmt.Errorf("memdb tx is finished")
	}

	prefix := memKey(bucket, keyPrefix)
	seen := make(map[string]bool)

	var vals [][]byte
	for k, v := range mtx.staged {
		if strings.HasPrefix(k, prefix) {
			vals = append(vals, v)
			seen[k] = true
		}
	}

	mtx.db.RLock()
	defer mtx.db.RUnlock()
	for k, v := range mtx.db.db {
		if strings.HasPrefix(k, prefix) && !seen[k] && !mtx.deleted[k] {
			vals = append(vals, v)
		}
	}
	return vals, nil
}

func (mtx *memdbTx) Put(bucket string, key, value []byte) error {
	if mtx.done {
		return fmt.Errorf("memdb tx is finished")
	}

	k := memKey(bucket, key)
	delete(mtx.deleted, k)
	mtx.staged[k] = value
	return nil
}

func (mtx *memdbTx) Delete(bucket string, key []byte) error {
	if mtx.done {
		return fmt.Errorf("memdb tx is finished")
	}

	k := memKey(bucket, key)
	delete(mtx.staged, k)
	mtx.deleted[k] = true
	return nil
}

func (mtx *memdbTx) Rollback() error {
	mtx.staged = nil
	mtx.deleted = nil
	mtx.done = true
	return nil
}

func (mtx *memdbTx) Commit() error {
	if mtx.done {
		return fmt.Errorf("memdb tx is finished")
	}

	mtx.db.Lock()
	defer mtx.db.Unlock()

	if mtx.db.db == nil {
		return fmt.Errorf("memdb is closed")
	}

	for k := range mtx.deleted {
		delete(mtx.db.db, k)
	}
	for k, v := range mtx.staged {
		mtx.db.db[k] = v
	}

	mtx.staged = nil
	mtx.deleted = nil
	mtx.done = true
	return nil
}
