package state

import (
	"errors"
	"sort"
)

// Store is an opaque transactional key-value map. Get returns (nil, nil)
// when the key is absent; an empty stored value is returned as an empty
// non-nil slice. Errors indicate infrastructure failures, never "not found".
type Store interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
}

// ErrReadOnly is returned on mutation attempts against snapshot state.
var ErrReadOnly = errors.New("state: store is read-only")

// MemStore is an in-memory Store. It is not safe for concurrent mutation;
// the execution model applies transactions sequentially.
type MemStore struct {
	data map[string][]byte
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (m *MemStore) Get(key []byte) ([]byte, error) {
	v, ok := m.data[string(key)]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemStore) Put(key, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	m.data[string(key)] = v
	return nil
}

func (m *MemStore) Delete(key []byte) error {
	delete(m.data, string(key))
	return nil
}

// Snapshot returns an immutable copy of the current contents, isolated from
// subsequent writes to the store.
func (m *MemStore) Snapshot() Store {
	data := make(map[string][]byte, len(m.data))
	for k, v := range m.data {
		c := make([]byte, len(v))
		copy(c, v)
		data[k] = c
	}
	return readOnly{&MemStore{data: data}}
}

type readOnly struct {
	inner Store
}

func (r readOnly) Get(key []byte) ([]byte, error) { return r.inner.Get(key) }
func (r readOnly) Put([]byte, []byte) error       { return ErrReadOnly }
func (r readOnly) Delete([]byte) error            { return ErrReadOnly }

// Overlay is a write buffer stacked on a parent Store. Reads fall through to
// the parent for keys the overlay has not touched; writes and deletes stay
// in the overlay until Commit. Overlays nest: a transaction overlay commits
// into a block overlay, which commits into the backing store.
type Overlay struct {
	parent Store
	writes map[string]overlayEntry
}

type overlayEntry struct {
	value   []byte
	deleted bool
}

// NewOverlay stacks a fresh write buffer on parent.
func NewOverlay(parent Store) *Overlay {
	return &Overlay{
		parent: parent,
		writes: make(map[string]overlayEntry),
	}
}

func (o *Overlay) Get(key []byte) ([]byte, error) {
	if e, ok := o.writes[string(key)]; ok {
		if e.deleted {
			return nil, nil
		}
		out := make([]byte, len(e.value))
		copy(out, e.value)
		return out, nil
	}
	return o.parent.Get(key)
}

func (o *Overlay) Put(key, value []byte) error {
	v := make([]byte, len(value))
	copy(v, value)
	o.writes[string(key)] = overlayEntry{value: v}
	return nil
}

func (o *Overlay) Delete(key []byte) error {
	o.writes[string(key)] = overlayEntry{deleted: true}
	return nil
}

// batchStore is a parent that can apply a whole write set atomically.
type batchStore interface {
	commitBatch(keys []string, writes map[string]overlayEntry) error
}

// Commit flushes buffered writes into the parent in lexicographic key order,
// so replay produces identical parent mutation sequences on every node.
// A parent that supports atomic batches (LevelDB) receives the whole write
// set in one batch; a failed commit then leaves it untouched.
func (o *Overlay) Commit() error {
	keys := make([]string, 0, len(o.writes))
	for k := range o.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if b, ok := o.parent.(batchStore); ok {
		if err := b.commitBatch(keys, o.writes); err != nil {
			return err
		}
		o.writes = make(map[string]overlayEntry)
		return nil
	}

	for _, k := range keys {
		e := o.writes[k]
		if e.deleted {
			if err := o.parent.Delete([]byte(k)); err != nil {
				return err
			}
			continue
		}
		if err := o.parent.Put([]byte(k), e.value); err != nil {
			return err
		}
	}

	o.writes = make(map[string]overlayEntry)
	return nil
}

// Discard drops all buffered writes, leaving the parent untouched.
func (o *Overlay) Discard() {
	o.writes = make(map[string]overlayEntry)
}

// Dirty reports whether the overlay holds uncommitted writes.
func (o *Overlay) Dirty() bool {
	return len(o.writes) > 0
}
