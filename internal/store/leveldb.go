// Copyright (C) 2019-2026, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"github.com/luxfi/ids"
	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDBBackend persists artifacts to disk, for the standalone
// connector daemon (cmd/holond). Grounded on the teacher's
// crypto/database persistence idiom, generalized from key material to
// content-addressed artifact bytes.
type LevelDBBackend struct {
	db *leveldb.DB
}

// OpenLevelDB opens (creating if necessary) a goleveldb database at
// path for use as a content-store backend.
func OpenLevelDB(path string) (*LevelDBBackend, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBBackend{db: db}, nil
}

func (l *LevelDBBackend) Get(cid ids.ID) ([]byte, bool, error) {
	data, err := l.db.Get(cid[:], nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (l *LevelDBBackend) Put(cid ids.ID, data []byte) error {
	has, err := l.db.Has(cid[:], nil)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	return l.db.Put(cid[:], data, nil)
}

// Close releases the underlying database handle.
func (l *LevelDBBackend) Close() error {
	return l.db.Close()
}
