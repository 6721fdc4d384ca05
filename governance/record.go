package governance

import (
	"encoding/binary"
	"fmt"

	"github.com/stjordanis/icon-service/common"
	"github.com/stjordanis/icon-service/state"
)

// CurrentStatus is the status of a deployed (current) code revision.
type CurrentStatus byte

const (
	// CurrentActive marks the revision as executable.
	CurrentActive CurrentStatus = 0x01
	// CurrentInactive marks a deployed revision administratively suspended.
	CurrentInactive CurrentStatus = 0x02
)

// NextStatus is the status of a proposed (next) code revision.
type NextStatus byte

const (
	// NextPending marks a proposal awaiting audit.
	NextPending NextStatus = 0x11
	// NextRejected marks a proposal refused by an auditor.
	NextRejected NextStatus = 0x12
)

// DeployType distinguishes first installation from update of deployed code.
type DeployType byte

const (
	DeployInstall DeployType = 0x00
	DeployUpdate  DeployType = 0x01
)

// CurrentSlot is the deployed revision of a SCORE. AuditHeight is the height
// of the block whose transaction activated the revision; the code is
// routable only at strictly greater heights. AuditTxHash is zero for
// revisions that activated without audit (builtin registration and the
// governance self-update bypass).
type CurrentSlot struct {
	Status       CurrentStatus
	DeployTxHash common.TxHash
	AuditTxHash  common.TxHash
	AuditHeight  int64
}

// NextSlot is a proposed revision of a SCORE. AuditTxHash is zero while the
// proposal is pending and stamped by the resolving transaction.
type NextSlot struct {
	Status       NextStatus
	DeployTxHash common.TxHash
	AuditTxHash  common.TxHash
}

// DeploymentRecord is the per-SCORE-address deployment state. A record with
// neither slot does not exist in storage.
type DeploymentRecord struct {
	Owner   common.Address
	Current *CurrentSlot
	Next    *NextSlot
}

// TxParams ties a deploy transaction hash to the SCORE address it targets.
// The deploy payload is kept opaque; its format belongs to the execution
// engine.
type TxParams struct {
	Type    DeployType
	Score   common.Address
	Payload []byte
}

const (
	recordVersion byte = 0

	flagHasCurrent  byte = 1 << 0
	flagHasNext     byte = 1 << 1
	flagNextAudited byte = 1 << 2
)

// EncodeRecord serializes r into its fixed-layout binary storage form.
func EncodeRecord(r *DeploymentRecord) []byte {
	var flags byte
	if r.Current != nil {
		flags |= flagHasCurrent
	}
	if r.Next != nil {
		flags |= flagHasNext
		if !r.Next.AuditTxHash.IsZero() {
			flags |= flagNextAudited
		}
	}

	out := make([]byte, 0, 2+common.AddressLen+1+8+2*common.TxHashLen+1+2*common.TxHashLen)
	out = append(out, recordVersion, flags)
	out = append(out, r.Owner.Bytes()...)

	if r.Current != nil {
		out = append(out, byte(r.Current.Status))
		out = binary.BigEndian.AppendUint64(out, uint64(r.Current.AuditHeight))
		out = append(out, r.Current.DeployTxHash.Bytes()...)
		out = append(out, r.Current.AuditTxHash.Bytes()...)
	}
	if r.Next != nil {
		out = append(out, byte(r.Next.Status))
		out = append(out, r.Next.DeployTxHash.Bytes()...)
		if flags&flagNextAudited != 0 {
			out = append(out, r.Next.AuditTxHash.Bytes()...)
		}
	}
	return out
}

// DecodeRecord parses the binary storage form produced by EncodeRecord.
func DecodeRecord(raw []byte) (*DeploymentRecord, error) {
	if len(raw) < 2+common.AddressLen {
		return nil, fmt.Errorf("deployment record too short: %d bytes", len(raw))
	}
	if raw[0] != recordVersion {
		return nil, fmt.Errorf("unsupported deployment record version %d", raw[0])
	}
	flags := raw[1]
	rest := raw[2:]

	owner, err := common.AddressFromBytes(rest[:common.AddressLen])
	if err != nil {
		return nil, fmt.Errorf("deployment record owner: %w", err)
	}
	rest = rest[common.AddressLen:]

	r := &DeploymentRecord{Owner: owner}

	if flags&flagHasCurrent != 0 {
		if len(rest) < 1+8+2*common.TxHashLen {
			return nil, fmt.Errorf("deployment record current slot truncated")
		}
		cur := &CurrentSlot{Status: CurrentStatus(rest[0])}
		if cur.Status != CurrentActive && cur.Status != CurrentInactive {
			return nil, fmt.Errorf("invalid current slot status %#x", rest[0])
		}
		cur.AuditHeight = int64(binary.BigEndian.Uint64(rest[1:9]))
		rest = rest[9:]
		if cur.DeployTxHash, err = common.TxHashFromBytes(rest[:common.TxHashLen]); err != nil {
			return nil, err
		}
		rest = rest[common.TxHashLen:]
		if cur.AuditTxHash, err = common.TxHashFromBytes(rest[:common.TxHashLen]); err != nil {
			return nil, err
		}
		rest = rest[common.TxHashLen:]
		r.Current = cur
	}

	if flags&flagHasNext != 0 {
		if len(rest) < 1+common.TxHashLen {
			return nil, fmt.Errorf("deployment record next slot truncated")
		}
		next := &NextSlot{Status: NextStatus(rest[0])}
		if next.Status != NextPending && next.Status != NextRejected {
			return nil, fmt.Errorf("invalid next slot status %#x", rest[0])
		}
		rest = rest[1:]
		if next.DeployTxHash, err = common.TxHashFromBytes(rest[:common.TxHashLen]); err != nil {
			return nil, err
		}
		rest = rest[common.TxHashLen:]
		if flags&flagNextAudited != 0 {
			if len(rest) < common.TxHashLen {
				return nil, fmt.Errorf("deployment record audit hash truncated")
			}
			if next.AuditTxHash, err = common.TxHashFromBytes(rest[:common.TxHashLen]); err != nil {
				return nil, err
			}
			rest = rest[common.TxHashLen:]
		}
		r.Next = next
	}

	if len(rest) != 0 {
		return nil, fmt.Errorf("deployment record has %d trailing bytes", len(rest))
	}
	if r.Current == nil && r.Next == nil {
		return nil, fmt.Errorf("deployment record with no slots")
	}
	return r, nil
}

// RecordKey returns the storage key of the deployment record of score.
func RecordKey(score common.Address) []byte {
	return append([]byte(deployInfoPrefix), score.Bytes()...)
}

// RecordKeyPrefix returns the storage key prefix shared by all deployment
// records, for state inspection tooling.
func RecordKeyPrefix() []byte {
	return []byte(deployInfoPrefix)
}

// ScoreFromRecordKey extracts the SCORE address from a deployment record
// storage key.
func ScoreFromRecordKey(key []byte) (common.Address, error) {
	if len(key) != len(deployInfoPrefix)+common.AddressLen || string(key[:len(deployInfoPrefix)]) != deployInfoPrefix {
		return common.Address{}, fmt.Errorf("%w: not a deployment record key", common.ErrInvalidParameter)
	}
	return common.AddressFromBytes(key[len(deployInfoPrefix):])
}

// TxParamsKey returns the storage key of the deploy transaction parameters
// stored under txHash.
func TxParamsKey(txHash common.TxHash) []byte {
	return append([]byte(txParamsPrefix), txHash.Bytes()...)
}

func getRecord(ctx *state.Context, score common.Address) (*DeploymentRecord, error) {
	raw, err := ctx.Get(RecordKey(score))
	if err != nil {
		return nil, fmt.Errorf("read deployment record of %s: %w", score, err)
	}
	if raw == nil {
		return nil, nil
	}
	return DecodeRecord(raw)
}

func putRecord(ctx *state.Context, score common.Address, r *DeploymentRecord) error {
	return ctx.Put(RecordKey(score), EncodeRecord(r))
}

func encodeTxParams(p *TxParams) []byte {
	out := make([]byte, 0, 2+common.AddressLen+len(p.Payload))
	out = append(out, recordVersion, byte(p.Type))
	out = append(out, p.Score.Bytes()...)
	out = append(out, p.Payload...)
	return out
}

func decodeTxParams(raw []byte) (*TxParams, error) {
	if len(raw) < 2+common.AddressLen {
		return nil, fmt.Errorf("deploy tx params too short: %d bytes", len(raw))
	}
	if raw[0] != recordVersion {
		return nil, fmt.Errorf("unsupported deploy tx params version %d", raw[0])
	}
	typ := DeployType(raw[1])
	if typ != DeployInstall && typ != DeployUpdate {
		return nil, fmt.Errorf("invalid deploy type %#x", raw[1])
	}
	score, err := common.AddressFromBytes(raw[2 : 2+common.AddressLen])
	if err != nil {
		return nil, fmt.Errorf("deploy tx params address: %w", err)
	}

	p := &TxParams{Type: typ, Score: score}
	if rest := raw[2+common.AddressLen:]; len(rest) > 0 {
		p.Payload = make([]byte, len(rest))
		copy(p.Payload, rest)
	}
	return p, nil
}

func getTxParams(ctx *state.Context, txHash common.TxHash) (*TxParams, error) {
	raw, err := ctx.Get(TxParamsKey(txHash))
	if err != nil {
		return nil, fmt.Errorf("read deploy tx params of %s: %w", txHash, err)
	}
	if raw == nil {
		return nil, nil
	}
	return decodeTxParams(raw)
}

// ProposeDeployment parks a new code revision in the next slot of the
// record keyed by score. The proposing transaction is ctx's transaction;
// its sender becomes (or must match) the record owner.
//
// A proposal is refused while another one is unresolved: a pending next slot
// is never silently overwritten. A rejected next slot, on the contrary, is
// replaced by the fresh proposal.
func ProposeDeployment(ctx *state.Context, score common.Address, typ DeployType, payload []byte) error {
	if !score.IsContract() {
		return fmt.Errorf("%w: deployment target %s is not a contract address", common.ErrInvalidParameter, score)
	}
	if score.Equals(common.ZeroScoreAddress) {
		return fmt.Errorf("%w: deployment target is the zero SCORE address", common.ErrInvalidParameter)
	}

	deployTx := ctx.TxHash()
	if prev, err := getTxParams(ctx, deployTx); err != nil {
		return err
	} else if prev != nil {
		return fmt.Errorf("%w: deploy tx %s was already applied", common.ErrInvalidState, deployTx)
	}

	record, err := getRecord(ctx, score)
	if err != nil {
		return err
	}

	switch {
	case record == nil:
		if typ == DeployUpdate {
			return fmt.Errorf("%w: no SCORE deployed at %s", common.ErrNotFound, score)
		}
		record = &DeploymentRecord{Owner: ctx.Origin()}
	default:
		if typ == DeployInstall {
			return fmt.Errorf("%w: SCORE already exists at %s", common.ErrInvalidState, score)
		}
		if !record.Owner.Equals(ctx.Origin()) {
			return fmt.Errorf("%w: %s does not own SCORE %s", common.ErrForbidden, ctx.Origin(), score)
		}
		if record.Next != nil && record.Next.Status == NextPending {
			return fmt.Errorf("%w: SCORE %s has an unresolved proposal %s",
				common.ErrAlreadyPending, score, record.Next.DeployTxHash)
		}
	}

	if record.Next != nil {
		// drop the parameters of the rejected proposal being replaced
		if err := ctx.Delete(TxParamsKey(record.Next.DeployTxHash)); err != nil {
			return err
		}
	}
	record.Next = &NextSlot{Status: NextPending, DeployTxHash: deployTx}

	if err := ctx.Put(TxParamsKey(deployTx), encodeTxParams(&TxParams{
		Type:    typ,
		Score:   score,
		Payload: payload,
	})); err != nil {
		return err
	}
	return putRecord(ctx, score, record)
}

// RegisterBuiltin records a chain built-in SCORE as deployed and active
// from genesis, without any deploy transaction or audit.
func RegisterBuiltin(ctx *state.Context, score, owner common.Address) error {
	if !score.IsContract() {
		return fmt.Errorf("%w: builtin %s is not a contract address", common.ErrInvalidParameter, score)
	}
	record, err := getRecord(ctx, score)
	if err != nil {
		return err
	}
	if record != nil {
		return fmt.Errorf("%w: SCORE already exists at %s", common.ErrInvalidState, score)
	}
	return putRecord(ctx, score, &DeploymentRecord{
		Owner: owner,
		Current: &CurrentSlot{
			Status:      CurrentActive,
			AuditHeight: -1,
		},
	})
}

// resolvePending locates the record whose next slot is the pending proposal
// identified by deployTx. An unknown or superseded hash yields NotFound; a
// known hash that was already resolved yields InvalidState.
func resolvePending(ctx *state.Context, deployTx common.TxHash) (common.Address, *DeploymentRecord, error) {
	params, err := getTxParams(ctx, deployTx)
	if err != nil {
		return common.Address{}, nil, err
	}
	if params == nil {
		return common.Address{}, nil, fmt.Errorf("%w: no deployment proposed by tx %s", common.ErrNotFound, deployTx)
	}

	record, err := getRecord(ctx, params.Score)
	if err != nil {
		return common.Address{}, nil, err
	}
	if record == nil || record.Next == nil || record.Next.DeployTxHash != deployTx || record.Next.Status != NextPending {
		return common.Address{}, nil, fmt.Errorf("%w: deployment %s is not pending audit", common.ErrInvalidState, deployTx)
	}
	return params.Score, record, nil
}

// completeDeployment promotes the pending proposal identified by deployTx
// into the active current revision. auditTx is zero on the audit-bypass
// path. Activation is effective from the block after ctx's height.
func completeDeployment(ctx *state.Context, deployTx common.TxHash, auditTx common.TxHash) (common.Address, error) {
	score, record, err := resolvePending(ctx, deployTx)
	if err != nil {
		return common.Address{}, err
	}

	record.Current = &CurrentSlot{
		Status:       CurrentActive,
		DeployTxHash: deployTx,
		AuditTxHash:  auditTx,
		AuditHeight:  ctx.Height(),
	}
	record.Next = nil

	if err := putRecord(ctx, score, record); err != nil {
		return common.Address{}, err
	}
	return score, nil
}

// rejectDeployment marks the pending proposal identified by deployTx as
// rejected, stamping the resolving transaction. The slot is retained so
// queries keep showing the outcome until a fresh proposal replaces it.
func rejectDeployment(ctx *state.Context, deployTx common.TxHash, auditTx common.TxHash) (common.Address, error) {
	score, record, err := resolvePending(ctx, deployTx)
	if err != nil {
		return common.Address{}, err
	}

	record.Next.Status = NextRejected
	record.Next.AuditTxHash = auditTx

	if err := putRecord(ctx, score, record); err != nil {
		return common.Address{}, err
	}
	return score, nil
}
