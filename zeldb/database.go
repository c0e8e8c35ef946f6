// Copyright 2024 The gzel Authors
// This file is part of the gzel library.
//
// The gzel library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The gzel library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the gzel library. If not, see <http://www.gnu.org/licenses/>.

// Package zeldb defines the key-value database interfaces the account store
// is built on. Two backends exist: a goleveldb-backed persistent database
// and an in-memory database for tests and tooling.
package zeldb

import (
	"errors"
	"io"
)

// ErrNotFound is returned by Get when the key is absent. Backends translate
// their native miss errors to this one.
var ErrNotFound = errors.New("zeldb: not found")

// KeyValueReader wraps the Has and Get methods of a backing data store.
type KeyValueReader interface {
	// Has retrieves if a key is present in the key-value data store.
	Has(key []byte) (bool, error)

	// Get retrieves the given key if it's present in the key-value data store.
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter wraps the Put and Delete methods of a backing data store.
type KeyValueWriter interface {
	// Put inserts the given value into the key-value data store.
	Put(key []byte, value []byte) error

	// Delete removes the key from the key-value data store.
	Delete(key []byte) error
}

// KeyValueStore contains all the methods required to allow handling
// different key-value data stores backing the account state.
type KeyValueStore interface {
	KeyValueReader
	KeyValueWriter
	io.Closer
}
