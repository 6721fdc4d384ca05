package state

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB is a persistent Store backed by a goleveldb database, the backend
// used for finalized chain state.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (creating if needed) the database at path.
func OpenLevelDB(path string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb at %q: %w", path, err)
	}
	return &LevelDB{db: db}, nil
}

func (l *LevelDB) Get(key []byte) ([]byte, error) {
	v, err := l.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leveldb get: %w", err)
	}
	return v, nil
}

func (l *LevelDB) Put(key, value []byte) error {
	if err := l.db.Put(key, value, nil); err != nil {
		return fmt.Errorf("leveldb put: %w", err)
	}
	return nil
}

func (l *LevelDB) Delete(key []byte) error {
	if err := l.db.Delete(key, nil); err != nil {
		return fmt.Errorf("leveldb delete: %w", err)
	}
	return nil
}

// Snapshot returns an immutable view of the current database contents.
// The caller keeps reading from it while later blocks mutate the store.
func (l *LevelDB) Snapshot() (Store, error) {
	snap, err := l.db.GetSnapshot()
	if err != nil {
		return nil, fmt.Errorf("leveldb snapshot: %w", err)
	}
	return readOnly{levelDBSnapshot{snap}}, nil
}

// IteratePrefix calls fn for every key with the given prefix, in key order.
// Iteration stops at the first error from fn.
func (l *LevelDB) IteratePrefix(prefix []byte, fn func(key, value []byte) error) error {
	it := l.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer it.Release()

	for it.Next() {
		key := make([]byte, len(it.Key()))
		copy(key, it.Key())
		value := make([]byte, len(it.Value()))
		copy(value, it.Value())
		if err := fn(key, value); err != nil {
			return err
		}
	}
	if err := it.Error(); err != nil {
		return fmt.Errorf("leveldb iterate: %w", err)
	}
	return nil
}

// commitBatch writes a whole overlay write set in one atomic leveldb batch.
func (l *LevelDB) commitBatch(keys []string, writes map[string]overlayEntry) error {
	batch := new(leveldb.Batch)
	for _, k := range keys {
		e := writes[k]
		if e.deleted {
			batch.Delete([]byte(k))
			continue
		}
		batch.Put([]byte(k), e.value)
	}
	if err := l.db.Write(batch, nil); err != nil {
		return fmt.Errorf("leveldb batch write: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

type levelDBSnapshot struct {
	snap *leveldb.Snapshot
}

func (s levelDBSnapshot) Get(key []byte) ([]byte, error) {
	v, err := s.snap.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("leveldb snapshot get: %w", err)
	}
	return v, nil
}

func (s levelDBSnapshot) Put([]byte, []byte) error { return ErrReadOnly }
func (s levelDBSnapshot) Delete([]byte) error      { return ErrReadOnly }
