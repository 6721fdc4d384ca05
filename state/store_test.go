package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stjordanis/icon-service/common"
)

func TestMemStore(t *testing.T) {
	m := NewMemStore()

	v, err := m.Get([]byte("missing"))
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, m.Put([]byte("k"), []byte("v1")))
	v, err = m.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), v)

	// stored value is isolated from later mutation of the returned slice
	v[0] = 'X'
	v, err = m.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), v)

	require.NoError(t, m.Delete([]byte("k")))
	v, err = m.Get([]byte("k"))
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestMemStoreSnapshotIsolation(t *testing.T) {
	m := NewMemStore()
	require.NoError(t, m.Put([]byte("k"), []byte("old")))

	snap := m.Snapshot()
	require.NoError(t, m.Put([]byte("k"), []byte("new")))
	require.NoError(t, m.Put([]byte("k2"), []byte("v2")))

	v, err := snap.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("old"), v)

	v, err = snap.Get([]byte("k2"))
	require.NoError(t, err)
	require.Nil(t, v)

	require.ErrorIs(t, snap.Put([]byte("k"), []byte("x")), ErrReadOnly)
	require.ErrorIs(t, snap.Delete([]byte("k")), ErrReadOnly)
}

func TestOverlayCommitAndDiscard(t *testing.T) {
	m := NewMemStore()
	require.NoError(t, m.Put([]byte("base"), []byte("b")))
	require.NoError(t, m.Put([]byte("gone"), []byte("g")))

	o := NewOverlay(m)
	require.False(t, o.Dirty())

	// reads fall through to the parent
	v, err := o.Get([]byte("base"))
	require.NoError(t, err)
	require.Equal(t, []byte("b"), v)

	require.NoError(t, o.Put([]byte("new"), []byte("n")))
	require.NoError(t, o.Delete([]byte("gone")))
	require.True(t, o.Dirty())

	// deletes shadow the parent before commit
	v, err = o.Get([]byte("gone"))
	require.NoError(t, err)
	require.Nil(t, v)

	// parent untouched until commit
	v, err = m.Get([]byte("new"))
	require.NoError(t, err)
	require.Nil(t, v)
	v, err = m.Get([]byte("gone"))
	require.NoError(t, err)
	require.Equal(t, []byte("g"), v)

	require.NoError(t, o.Commit())
	require.False(t, o.Dirty())

	v, err = m.Get([]byte("new"))
	require.NoError(t, err)
	require.Equal(t, []byte("n"), v)
	v, err = m.Get([]byte("gone"))
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestOverlayDiscard(t *testing.T) {
	m := NewMemStore()
	o := NewOverlay(m)

	require.NoError(t, o.Put([]byte("k"), []byte("v")))
	o.Discard()
	require.False(t, o.Dirty())

	require.NoError(t, o.Commit())
	v, err := m.Get([]byte("k"))
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestOverlayNesting(t *testing.T) {
	m := NewMemStore()
	block := NewOverlay(m)
	tx := NewOverlay(block)

	require.NoError(t, tx.Put([]byte("k"), []byte("v")))
	require.NoError(t, tx.Commit())

	// committed into the block overlay, not yet into the store
	v, err := block.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), v)
	v, err = m.Get([]byte("k"))
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, block.Commit())
	v, err = m.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), v)
}

func TestContext(t *testing.T) {
	m := NewMemStore()
	origin, err := common.ParseAddress("hx1234567890abcdef1234567890abcdef12345678")
	require.NoError(t, err)
	txHash, err := common.ParseTxHash("0xa3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2")
	require.NoError(t, err)

	ctx := NewContext(m, 7, txHash, origin)
	require.EqualValues(t, 7, ctx.Height())
	require.Equal(t, txHash, ctx.TxHash())
	require.True(t, origin.Equals(ctx.Origin()))
	require.False(t, ctx.ReadOnly())

	require.NoError(t, ctx.Put([]byte("k"), []byte("v")))
	require.NoError(t, ctx.Notify("Happened", "a", "b"))
	require.NoError(t, ctx.Notify("HappenedAgain"))

	events := ctx.Events()
	require.Len(t, events, 2)
	require.Equal(t, Event{Name: "Happened", Args: []string{"a", "b"}}, events[0])

	ctx.DropEvents()
	require.Empty(t, ctx.Events())
}

func TestReadOnlyContext(t *testing.T) {
	m := NewMemStore()
	require.NoError(t, m.Put([]byte("k"), []byte("v")))

	ctx := NewReadOnlyContext(m.Snapshot(), 9)
	require.True(t, ctx.ReadOnly())

	v, err := ctx.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), v)

	require.ErrorIs(t, ctx.Put([]byte("k"), []byte("x")), ErrReadOnly)
	require.ErrorIs(t, ctx.Delete([]byte("k")), ErrReadOnly)
	require.ErrorIs(t, ctx.Notify("Happened"), ErrReadOnly)
}
