package governance

import (
	"fmt"

	"github.com/stjordanis/icon-service/common"
	"github.com/stjordanis/icon-service/state"
)

// AuditBypassed reports whether deployments targeting score skip the audit
// step and activate upon submission. This is the single place deciding the
// bypass: it holds exactly for the well-known governance SCORE address,
// which is the trust anchor and cannot await its own approval.
func AuditBypassed(score common.Address) bool {
	return score.Equals(common.GovernanceAddress)
}

// AcceptScore resolves the pending deployment proposed by deployTx,
// promoting it into the active current revision. The caller must be an
// authorized auditor or the genesis identity. The accepted code becomes
// routable starting with the block after the accepting one.
func AcceptScore(ctx *state.Context, deployTx common.TxHash) error {
	caller, err := ClassifyCaller(ctx, ctx.Origin())
	if err != nil {
		return err
	}
	if !caller.Authorized() {
		return fmt.Errorf("%w: %s is not an auditor", common.ErrForbidden, ctx.Origin())
	}

	score, err := completeDeployment(ctx, deployTx, ctx.TxHash())
	if err != nil {
		return err
	}
	return ctx.Notify("ScoreAccepted", score.String(), deployTx.String())
}

// RejectScore resolves the pending deployment proposed by deployTx as
// rejected. The caller constraint matches AcceptScore; reason must be
// non-empty and travels only on the emitted notification.
func RejectScore(ctx *state.Context, deployTx common.TxHash, reason string) error {
	caller, err := ClassifyCaller(ctx, ctx.Origin())
	if err != nil {
		return err
	}
	if !caller.Authorized() {
		return fmt.Errorf("%w: %s is not an auditor", common.ErrForbidden, ctx.Origin())
	}
	if reason == "" {
		return fmt.Errorf("%w: rejection reason must not be empty", common.ErrInvalidParameter)
	}

	score, err := rejectDeployment(ctx, deployTx, ctx.TxHash())
	if err != nil {
		return err
	}
	return ctx.Notify("ScoreRejected", score.String(), deployTx.String(), reason)
}

// DeployWithoutAudit promotes the pending deployment proposed by deployTx
// on the audit-bypass path, without any caller authorization. It refuses
// targets for which AuditBypassed does not hold.
func DeployWithoutAudit(ctx *state.Context, deployTx common.TxHash) error {
	params, err := getTxParams(ctx, deployTx)
	if err != nil {
		return err
	}
	if params == nil {
		return fmt.Errorf("%w: no deployment proposed by tx %s", common.ErrNotFound, deployTx)
	}
	if !AuditBypassed(params.Score) {
		return fmt.Errorf("%w: SCORE %s requires audit", common.ErrForbidden, params.Score)
	}

	score, err := completeDeployment(ctx, deployTx, common.TxHash{})
	if err != nil {
		return err
	}
	return ctx.Notify("ScoreAccepted", score.String(), deployTx.String())
}

// SuspendScore flips the deployed revision of score to inactive, taking its
// code out of routing without touching any pending proposal. Genesis only.
func SuspendScore(ctx *state.Context, score common.Address) error {
	if err := setCurrentStatus(ctx, score, CurrentActive, CurrentInactive); err != nil {
		return err
	}
	return ctx.Notify("ScoreSuspended", score.String())
}

// ResumeScore reverts an administrative suspension. Genesis only.
func ResumeScore(ctx *state.Context, score common.Address) error {
	if err := setCurrentStatus(ctx, score, CurrentInactive, CurrentActive); err != nil {
		return err
	}
	return ctx.Notify("ScoreResumed", score.String())
}

func setCurrentStatus(ctx *state.Context, score common.Address, from, to CurrentStatus) error {
	caller, err := ClassifyCaller(ctx, ctx.Origin())
	if err != nil {
		return err
	}
	if caller.Kind != CallerGenesis {
		return fmt.Errorf("%w: suspension requires the genesis identity", common.ErrForbidden)
	}
	if AuditBypassed(score) {
		return fmt.Errorf("%w: the governance SCORE cannot be suspended", common.ErrInvalidParameter)
	}

	record, err := getRecord(ctx, score)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("%w: no SCORE deployed at %s", common.ErrNotFound, score)
	}
	if record.Current == nil || record.Current.Status != from {
		return fmt.Errorf("%w: SCORE %s has no %s revision", common.ErrInvalidState, score, from)
	}

	record.Current.Status = to
	return putRecord(ctx, score, record)
}

// String renders the status for error messages and query responses.
func (s CurrentStatus) String() string {
	switch s {
	case CurrentActive:
		return "active"
	case CurrentInactive:
		return "inactive"
	default:
		return fmt.Sprintf("current(%#x)", byte(s))
	}
}

// String renders the status for error messages and query responses.
func (s NextStatus) String() string {
	switch s {
	case NextPending:
		return "pending"
	case NextRejected:
		return "rejected"
	default:
		return fmt.Sprintf("next(%#x)", byte(s))
	}
}
