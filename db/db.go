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

package db

// Getter wraps the read methods of the underlying database.
type Getter interface {
	// Get the value of the key in the specified bucket.
	Get(bucket string, key []byte) ([]byte, error)
	// Get the values of the keys with the prefix in the specified bucket.
	GetAll(bucket string, keyPrefix []byte) ([][]byte, error)
}

// Putter wraps the write methods of the underlying database.
type Putter interface {
	// Put the key/value pair in the specified bucket.
	Put(bucket string, key []byte, value []byte) error
}

// Deleter wraps the delete methods of the underlying database.
type Deleter interface {
	// Delete the key in the specified bucket.
	Delete(bucket string, key []byte) error
}

// Tx is a writable database transaction which is manually
// managed by the caller. A batch of updates applied through
// a Tx either commits as a whole or leaves the database
// untouched after a rollback.
type Tx interface {
	Getter
	Putter
	Deleter
	// Rollback the operations applied through the transaction.
	Rollback() error
	// Commit the operations applied through the transaction.
	Commit() error
}

// Database is the generic interface of the backend key-value store.
type Database interface {
	Getter
	Putter
	Deleter
	// Create a new bucket for storing a group of related key/value pairs.
	NewBucket(name string) error
	// Begin a writable transaction.
	Begin() (Tx, error)
	// Close the underlying database.
	Close() error
}
