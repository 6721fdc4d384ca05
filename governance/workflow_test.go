package governance

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stjordanis/icon-service/common"
	"github.com/stjordanis/icon-service/state"
)

func TestAcceptScore(t *testing.T) {
	m := newChain(t)
	addAuditor(t, m, alice)
	target := score(1)
	propose(t, m, alice, hash(1), target)

	ctx := mutCtx(m, 5, hash(2), alice)
	require.NoError(t, AcceptScore(ctx, hash(1)))

	record, err := getRecord(ctx, target)
	require.NoError(t, err)
	require.Nil(t, record.Next)
	require.Equal(t, CurrentActive, record.Current.Status)
	require.Equal(t, hash(1), record.Current.DeployTxHash)
	require.Equal(t, hash(2), record.Current.AuditTxHash)
	require.EqualValues(t, 5, record.Current.AuditHeight)

	events := ctx.Events()
	require.Len(t, events, 1)
	require.Equal(t, "ScoreAccepted", events[0].Name)
	require.Equal(t, []string{target.String(), hash(1).String()}, events[0].Args)
}

func TestAcceptScoreByGenesis(t *testing.T) {
	m := newChain(t)
	propose(t, m, alice, hash(1), score(1))

	require.NoError(t, AcceptScore(mutCtx(m, 2, hash(2), genesisAddr), hash(1)))
}

func TestAcceptScoreUnauthorized(t *testing.T) {
	m := newChain(t)
	addAuditor(t, m, alice)
	target := score(1)
	propose(t, m, alice, hash(1), target)

	err := AcceptScore(mutCtx(m, 2, hash(2), bob), hash(1))
	require.ErrorIs(t, err, common.ErrForbidden)
	err = RejectScore(mutCtx(m, 2, hash(3), bob), hash(1), "nope")
	require.ErrorIs(t, err, common.ErrForbidden)

	// record still pending, untouched
	record, err := getRecord(mutCtx(m, 2, hash(4), bob), target)
	require.NoError(t, err)
	require.Nil(t, record.Current)
	require.Equal(t, NextPending, record.Next.Status)
}

func TestAcceptScoreUnknownTx(t *testing.T) {
	m := newChain(t)
	addAuditor(t, m, alice)

	err := AcceptScore(mutCtx(m, 2, hash(2), alice), hash(0x99))
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestSecondResolutionFails(t *testing.T) {
	m := newChain(t)
	addAuditor(t, m, alice)
	propose(t, m, alice, hash(1), score(1))
	acceptAs(t, m, alice, hash(1), hash(2), 2)

	// accepted proposals cannot be resolved again, either way
	err := AcceptScore(mutCtx(m, 3, hash(3), alice), hash(1))
	require.ErrorIs(t, err, common.ErrInvalidState)
	err = RejectScore(mutCtx(m, 3, hash(4), alice), hash(1), "late")
	require.ErrorIs(t, err, common.ErrInvalidState)

	// same for rejected proposals
	propose(t, m, bob, hash(5), score(2))
	rejectAs(t, m, alice, hash(5), hash(6), 3, "bad code")

	err = AcceptScore(mutCtx(m, 4, hash(7), alice), hash(5))
	require.ErrorIs(t, err, common.ErrInvalidState)
	err = RejectScore(mutCtx(m, 4, hash(8), alice), hash(5), "again")
	require.ErrorIs(t, err, common.ErrInvalidState)
}

func TestRejectScore(t *testing.T) {
	m := newChain(t)
	addAuditor(t, m, alice)
	target := score(1)
	propose(t, m, alice, hash(1), target)

	ctx := mutCtx(m, 2, hash(2), alice)
	require.NoError(t, RejectScore(ctx, hash(1), "bad code"))

	// the rejected slot is retained for inspection
	record, err := getRecord(ctx, target)
	require.NoError(t, err)
	require.Nil(t, record.Current)
	require.Equal(t, NextRejected, record.Next.Status)
	require.Equal(t, hash(1), record.Next.DeployTxHash)
	require.Equal(t, hash(2), record.Next.AuditTxHash)

	// the reason travels only on the event
	events := ctx.Events()
	require.Len(t, events, 1)
	require.Equal(t, "ScoreRejected", events[0].Name)
	require.Equal(t, []string{target.String(), hash(1).String(), "bad code"}, events[0].Args)
}

func TestRejectScoreRequiresReason(t *testing.T) {
	m := newChain(t)
	addAuditor(t, m, alice)
	propose(t, m, alice, hash(1), score(1))

	err := RejectScore(mutCtx(m, 2, hash(2), alice), hash(1), "")
	require.ErrorIs(t, err, common.ErrInvalidParameter)
}

func TestUpdateKeepsCurrentUntilResolution(t *testing.T) {
	m := newChain(t)
	addAuditor(t, m, alice)
	target := score(1)
	propose(t, m, alice, hash(1), target)
	acceptAs(t, m, alice, hash(1), hash(2), 2)

	// update proposal parks while the current revision stays active
	propose(t, m, alice, hash(3), target)

	record, err := getRecord(mutCtx(m, 3, hash(4), alice), target)
	require.NoError(t, err)
	require.Equal(t, CurrentActive, record.Current.Status)
	require.Equal(t, hash(1), record.Current.DeployTxHash)
	require.Equal(t, NextPending, record.Next.Status)

	// acceptance promotes the update, replacing the old revision
	acceptAs(t, m, alice, hash(3), hash(5), 5)
	record, err = getRecord(mutCtx(m, 5, hash(6), alice), target)
	require.NoError(t, err)
	require.Nil(t, record.Next)
	require.Equal(t, hash(3), record.Current.DeployTxHash)
	require.EqualValues(t, 5, record.Current.AuditHeight)
}

func TestActivationTiming(t *testing.T) {
	m := newChain(t)
	addAuditor(t, m, alice)
	target := score(1)
	propose(t, m, alice, hash(1), target)

	const acceptHeight = 10
	acceptAs(t, m, alice, hash(1), hash(2), acceptHeight)

	// not callable within the accepting block
	active, err := IsScoreActive(mutCtx(m, acceptHeight, hash(3), bob), target)
	require.NoError(t, err)
	require.False(t, active)

	// callable starting with the next block
	active, err = IsScoreActive(mutCtx(m, acceptHeight+1, hash(4), bob), target)
	require.NoError(t, err)
	require.True(t, active)
}

func TestIsScoreActiveWithoutRecord(t *testing.T) {
	m := newChain(t)

	active, err := IsScoreActive(mutCtx(m, 1, hash(1), bob), score(9))
	require.NoError(t, err)
	require.False(t, active)

	// pending install is not active either
	propose(t, m, alice, hash(1), score(9))
	active, err = IsScoreActive(mutCtx(m, 2, hash(2), bob), score(9))
	require.NoError(t, err)
	require.False(t, active)
}

func TestAuditBypassed(t *testing.T) {
	require.True(t, AuditBypassed(common.GovernanceAddress))
	require.False(t, AuditBypassed(common.ZeroScoreAddress))
	require.False(t, AuditBypassed(score(1)))
}

func TestDeployWithoutAuditRefusesOrdinaryScore(t *testing.T) {
	m := newChain(t)
	propose(t, m, alice, hash(1), score(1))

	err := DeployWithoutAudit(mutCtx(m, 2, hash(1), alice), hash(1))
	require.ErrorIs(t, err, common.ErrForbidden)

	err = DeployWithoutAudit(mutCtx(m, 2, hash(2), alice), hash(0x99))
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGovernanceSelfUpdateBypass(t *testing.T) {
	m := newChain(t)

	// genesis owns the governance SCORE; its update parks and is promoted
	// in the same transaction, no acceptScore involved
	ctx := mutCtx(m, 4, hash(1), genesisAddr)
	require.NoError(t, ProposeDeployment(ctx, common.GovernanceAddress, DeployUpdate, []byte("v2")))
	require.NoError(t, DeployWithoutAudit(ctx, hash(1)))

	record, err := getRecord(ctx, common.GovernanceAddress)
	require.NoError(t, err)
	require.Nil(t, record.Next)
	require.Equal(t, CurrentActive, record.Current.Status)
	require.Equal(t, hash(1), record.Current.DeployTxHash)
	require.True(t, record.Current.AuditTxHash.IsZero())
	require.EqualValues(t, 4, record.Current.AuditHeight)
}

func TestSuspendResumeScore(t *testing.T) {
	m := newChain(t)
	addAuditor(t, m, alice)
	target := score(1)
	propose(t, m, alice, hash(1), target)
	acceptAs(t, m, alice, hash(1), hash(2), 2)

	// only genesis may suspend
	err := SuspendScore(mutCtx(m, 3, hash(3), alice), target)
	require.ErrorIs(t, err, common.ErrForbidden)

	require.NoError(t, SuspendScore(mutCtx(m, 3, hash(4), genesisAddr), target))

	record, err := getRecord(mutCtx(m, 3, hash(5), genesisAddr), target)
	require.NoError(t, err)
	require.Equal(t, CurrentInactive, record.Current.Status)

	active, err := IsScoreActive(mutCtx(m, 4, hash(6), bob), target)
	require.NoError(t, err)
	require.False(t, active)

	// suspending twice is an invalid transition
	err = SuspendScore(mutCtx(m, 4, hash(7), genesisAddr), target)
	require.ErrorIs(t, err, common.ErrInvalidState)

	require.NoError(t, ResumeScore(mutCtx(m, 4, hash(8), genesisAddr), target))
	active, err = IsScoreActive(mutCtx(m, 5, hash(9), bob), target)
	require.NoError(t, err)
	require.True(t, active)
}

func TestSuspendScoreGuards(t *testing.T) {
	m := newChain(t)

	// the governance SCORE itself cannot be suspended
	err := SuspendScore(mutCtx(m, 1, hash(1), genesisAddr), common.GovernanceAddress)
	require.ErrorIs(t, err, common.ErrInvalidParameter)

	// no record
	err = SuspendScore(mutCtx(m, 1, hash(2), genesisAddr), score(9))
	require.ErrorIs(t, err, common.ErrNotFound)

	// record with no deployed revision
	propose(t, m, alice, hash(3), score(9))
	err = SuspendScore(mutCtx(m, 2, hash(4), genesisAddr), score(9))
	require.ErrorIs(t, err, common.ErrInvalidState)
}

func TestQueryFacade(t *testing.T) {
	m := newChain(t)
	addAuditor(t, m, alice)
	target := score(1)

	// unknown SCORE yields NotFound
	_, err := GetScoreStatus(state.NewReadOnlyContext(m.Snapshot(), 1), target)
	require.ErrorIs(t, err, common.ErrNotFound)

	// EOA address is not a valid query target
	_, err = GetScoreStatus(state.NewReadOnlyContext(m.Snapshot(), 1), alice)
	require.ErrorIs(t, err, common.ErrInvalidParameter)

	propose(t, m, alice, hash(1), target)
	status, err := GetScoreStatus(state.NewReadOnlyContext(m.Snapshot(), 1), target)
	require.NoError(t, err)
	require.Nil(t, status.Current)
	require.Equal(t, NextPending, status.Next.Status)

	rejectAs(t, m, alice, hash(1), hash(2), 2, "bad code")
	status, err = GetScoreStatus(state.NewReadOnlyContext(m.Snapshot(), 2), target)
	require.NoError(t, err)
	require.Nil(t, status.Current)
	require.Equal(t, NextRejected, status.Next.Status)
	require.Equal(t, hash(2), status.Next.AuditTxHash)

	// the projection is a copy; mutating it does not touch state
	status.Next.Status = NextPending
	again, err := GetScoreStatus(state.NewReadOnlyContext(m.Snapshot(), 2), target)
	require.NoError(t, err)
	require.Equal(t, NextRejected, again.Next.Status)
}

func TestGetScoreOwner(t *testing.T) {
	m := newChain(t)
	propose(t, m, alice, hash(1), score(1))

	owner, err := GetScoreOwner(mutCtx(m, 1, hash(2), bob), score(1))
	require.NoError(t, err)
	require.True(t, owner.Equals(alice))

	_, err = GetScoreOwner(mutCtx(m, 1, hash(3), bob), score(9))
	require.ErrorIs(t, err, common.ErrNotFound)
}
