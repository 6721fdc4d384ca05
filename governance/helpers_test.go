package governance

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stjordanis/icon-service/common"
	"github.com/stjordanis/icon-service/state"
)

func eoa(tail byte) common.Address {
	var body [common.AddressBodyLen]byte
	body[common.AddressBodyLen-1] = tail
	return common.NewEOAAddress(body)
}

func score(tail byte) common.Address {
	var body [common.AddressBodyLen]byte
	body[0] = 0xc0
	body[common.AddressBodyLen-1] = tail
	return common.NewContractAddress(body)
}

func hash(tail byte) common.TxHash {
	var h common.TxHash
	h[common.TxHashLen-1] = tail
	return h
}

var (
	genesisAddr = eoa(0x01)
	alice       = eoa(0xaa)
	bob         = eoa(0xbb)
)

// newChain returns a store with the governance contract initialized under
// genesisAddr.
func newChain(t *testing.T) *state.MemStore {
	t.Helper()
	m := state.NewMemStore()
	ctx := state.NewContext(m, 0, common.TxHash{}, genesisAddr)
	require.NoError(t, Init(ctx, genesisAddr))
	return m
}

// mutCtx builds a mutating context writing directly into store.
func mutCtx(store state.Store, height int64, tx common.TxHash, origin common.Address) *state.Context {
	return state.NewContext(store, height, tx, origin)
}

// addAuditor inserts addr into the auditor set as genesis.
func addAuditor(t *testing.T, store state.Store, addr common.Address) {
	t.Helper()
	require.NoError(t, AddAuditor(mutCtx(store, 1, hash(0xf0), genesisAddr), addr))
}

// acceptAs resolves the proposal identified by deployTx as origin.
func acceptAs(t *testing.T, store state.Store, origin common.Address, deployTx, auditTx common.TxHash, height int64) {
	t.Helper()
	require.NoError(t, AcceptScore(mutCtx(store, height, auditTx, origin), deployTx))
}

// rejectAs refuses the proposal identified by deployTx as origin.
func rejectAs(t *testing.T, store state.Store, origin common.Address, deployTx, auditTx common.TxHash, height int64, reason string) {
	t.Helper()
	require.NoError(t, RejectScore(mutCtx(store, height, auditTx, origin), deployTx, reason))
}

// propose parks a pending proposal for target: an install when no record
// exists yet, an update otherwise.
func propose(t *testing.T, store state.Store, owner common.Address, deployTx common.TxHash, target common.Address) {
	t.Helper()
	typ := DeployInstall
	if raw, err := store.Get(RecordKey(target)); err == nil && raw != nil {
		typ = DeployUpdate
	}
	ctx := mutCtx(store, 1, deployTx, owner)
	require.NoError(t, ProposeDeployment(ctx, target, typ, []byte("code")))
}
