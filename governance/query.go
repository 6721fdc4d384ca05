package governance

import (
	"fmt"

	"github.com/stjordanis/icon-service/common"
	"github.com/stjordanis/icon-service/state"
)

// ScoreStatus is the read-only projection of a deployment record returned
// by getScoreStatus. Slots are copies; mutating them does not touch state.
type ScoreStatus struct {
	Current *CurrentSlot
	Next    *NextSlot
}

// GetScoreStatus returns the deployment status of score as of the queried
// state. It never mutates; a SCORE with no deployment record yields
// NotFound.
func GetScoreStatus(ctx *state.Context, score common.Address) (*ScoreStatus, error) {
	if !score.IsContract() {
		return nil, fmt.Errorf("%w: %s is not a contract address", common.ErrInvalidParameter, score)
	}

	record, err := getRecord(ctx, score)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, fmt.Errorf("%w: no SCORE deployed at %s", common.ErrNotFound, score)
	}

	status := &ScoreStatus{}
	if record.Current != nil {
		cur := *record.Current
		status.Current = &cur
	}
	if record.Next != nil {
		next := *record.Next
		status.Next = &next
	}
	return status, nil
}

// IsScoreActive reports whether the code of score is routable in the block
// ctx executes in. A revision accepted in block N is routable from N+1 on:
// the accepting block itself never invokes code not yet consistently
// available to every node validating it.
func IsScoreActive(ctx *state.Context, score common.Address) (bool, error) {
	record, err := getRecord(ctx, score)
	if err != nil {
		return false, err
	}
	if record == nil || record.Current == nil {
		return false, nil
	}
	cur := record.Current
	return cur.Status == CurrentActive && ctx.Height() > cur.AuditHeight, nil
}

// GetScoreOwner returns the identity that deployed score.
func GetScoreOwner(ctx *state.Context, score common.Address) (common.Address, error) {
	record, err := getRecord(ctx, score)
	if err != nil {
		return common.Address{}, err
	}
	if record == nil {
		return common.Address{}, fmt.Errorf("%w: no SCORE deployed at %s", common.ErrNotFound, score)
	}
	return record.Owner, nil
}
