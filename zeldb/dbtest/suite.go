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

// Package dbtest provides a behavioural test suite shared by every zeldb
// backend, so the persistent and in-memory databases stay observationally
// equivalent.
package dbtest

import (
	"bytes"
	"errors"
	"testing"

	"github.com/zelana-network/gzel/zeldb"
)

// TestDatabaseSuite runs a suite of tests against a KeyValueStore database
// implementation.
func TestDatabaseSuite(t *testing.T, New func() zeldb.KeyValueStore) {
	t.Run("GetMissing", func(t *testing.T) {
		db := New()
		defer db.Close()

		if _, err := db.Get([]byte("absent")); !errors.Is(err, zeldb.ErrNotFound) {
			t.Fatalf("have %v want %v", err, zeldb.ErrNotFound)
		}
		if ok, err := db.Has([]byte("absent")); err != nil || ok {
			t.Fatalf("unexpected presence: ok=%v err=%v", ok, err)
		}
	})

	t.Run("PutGet", func(t *testing.T) {
		db := New()
		defer db.Close()

		if err := db.Put([]byte("key"), []byte("value")); err != nil {
			t.Fatalf("put failed: %v", err)
		}
		got, err := db.Get([]byte("key"))
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if !bytes.Equal(got, []byte("value")) {
			t.Fatalf("value mismatch: have %x want %x", got, []byte("value"))
		}
		if ok, err := db.Has([]byte("key")); err != nil || !ok {
			t.Fatalf("expected key present: ok=%v err=%v", ok, err)
		}
	})

	t.Run("Overwrite", func(t *testing.T) {
		db := New()
		defer db.Close()

		if err := db.Put([]byte("key"), []byte("first")); err != nil {
			t.Fatalf("put failed: %v", err)
		}
		if err := db.Put([]byte("key"), []byte("second")); err != nil {
			t.Fatalf("overwrite failed: %v", err)
		}
		got, err := db.Get([]byte("key"))
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if !bytes.Equal(got, []byte("second")) {
			t.Fatalf("overwrite not visible: have %x", got)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		db := New()
		defer db.Close()

		if err := db.Put([]byte("key"), []byte("value")); err != nil {
			t.Fatalf("put failed: %v", err)
		}
		if err := db.Delete([]byte("key")); err != nil {
			t.Fatalf("delete failed: %v", err)
		}
		if _, err := db.Get([]byte("key")); !errors.Is(err, zeldb.ErrNotFound) {
			t.Fatalf("have %v want %v", err, zeldb.ErrNotFound)
		}
		// Deleting an absent key is not an error.
		if err := db.Delete([]byte("key")); err != nil {
			t.Fatalf("second delete failed: %v", err)
		}
	})

	t.Run("ValueIsolation", func(t *testing.T) {
		db := New()
		defer db.Close()

		value := []byte{1, 2, 3}
		if err := db.Put([]byte("key"), value); err != nil {
			t.Fatalf("put failed: %v", err)
		}
		value[0] = 0xff // mutate the caller's buffer after Put

		got, err := db.Get([]byte("key"))
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		got[1] = 0xff // mutate the returned buffer

		again, err := db.Get([]byte("key"))
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if !bytes.Equal(again, []byte{1, 2, 3}) {
			t.Fatalf("stored value not isolated from caller buffers: have %x", again)
		}
	})
}
