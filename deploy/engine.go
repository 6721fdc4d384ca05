package deploy

import (
	"crypto/sha256"
	"fmt"

	"go.uber.org/zap"

	"github.com/stjordanis/icon-service/common"
	"github.com/stjordanis/icon-service/governance"
	"github.com/stjordanis/icon-service/state"
)

// Prm groups construction parameters of the deployment engine.
type Prm struct {
	// Writes submission progress into the log. Optional.
	Logger *zap.Logger
}

// Engine handles install and update transactions, feeding the governance
// contract's deployment record store. It holds no chain state of its own;
// every Submit call is a pure function of (prior state, transaction).
type Engine struct {
	log *zap.Logger
}

// NewEngine constructs an Engine from its parameters.
func NewEngine(prm Prm) *Engine {
	log := prm.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{log: log}
}

// Tx is a deploy transaction as authenticated and sequenced by the
// execution engine.
type Tx struct {
	// Hash identifies the transaction; it becomes the proposal's deployTxHash.
	Hash common.TxHash
	// Height of the block the transaction executes in.
	Height int64
	// From is the authenticated sender.
	From common.Address
	// To is the zero SCORE address on install, the target SCORE on update.
	To common.Address
	// Payload is the opaque deploy data (code archive and parameters).
	Payload []byte
}

// Submit applies the deploy transaction on an overlay over store and
// commits it only on success. It returns the SCORE address the proposal
// targets and the events emitted during execution.
//
// While one proposal for a SCORE is unresolved, a second Submit for the
// same address fails with AlreadyPending; a pending record is never
// silently overwritten.
func (e *Engine) Submit(store state.Store, tx Tx) (common.Address, []state.Event, error) {
	if !tx.From.IsEOA() {
		return common.Address{}, nil, fmt.Errorf("%w: deploy sender %s is not an EOA address",
			common.ErrInvalidParameter, tx.From)
	}
	if !tx.To.IsContract() {
		return common.Address{}, nil, fmt.Errorf("%w: deploy target %s is not a contract address",
			common.ErrInvalidParameter, tx.To)
	}
	if tx.Hash.IsZero() {
		return common.Address{}, nil, fmt.Errorf("%w: deploy tx hash is zero", common.ErrInvalidParameter)
	}

	typ := governance.DeployUpdate
	score := tx.To
	if tx.To.Equals(common.ZeroScoreAddress) {
		typ = governance.DeployInstall
		score = DeriveScoreAddress(tx.Hash)
	}

	overlay := state.NewOverlay(store)
	ctx := state.NewContext(overlay, tx.Height, tx.Hash, tx.From)

	if err := governance.ProposeDeployment(ctx, score, typ, tx.Payload); err != nil {
		overlay.Discard()
		return common.Address{}, nil, err
	}

	if governance.AuditBypassed(score) {
		// The governance SCORE is the trust anchor; its updates activate
		// upon submission instead of awaiting auditor approval.
		if err := governance.DeployWithoutAudit(ctx, tx.Hash); err != nil {
			overlay.Discard()
			return common.Address{}, nil, err
		}
		e.log.Info("governance self-update activated without audit",
			zap.Stringer("tx", tx.Hash))
	}

	if err := overlay.Commit(); err != nil {
		return common.Address{}, nil, err
	}

	e.log.Info("deployment proposed",
		zap.Stringer("score", score),
		zap.Stringer("tx", tx.Hash),
		zap.Int64("height", tx.Height))

	return score, ctx.Events(), nil
}

// scoreAddressSalt domain-separates contract address derivation from other
// uses of the transaction hash.
var scoreAddressSalt = []byte("score-address|")

// DeriveScoreAddress computes the contract address assigned to the SCORE
// installed by deployTx. The derivation depends only on the transaction
// hash, so every validating node assigns the same address.
func DeriveScoreAddress(deployTx common.TxHash) common.Address {
	h := sha256.New()
	h.Write(scoreAddressSalt)
	h.Write(deployTx.Bytes())
	sum := h.Sum(nil)

	var body [common.AddressBodyLen]byte
	copy(body[:], sum[len(sum)-common.AddressBodyLen:])
	return common.NewContractAddress(body)
}
