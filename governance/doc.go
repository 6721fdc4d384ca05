/*
Package governance contains the implementation of the built-in governance
SCORE that regulates deployment of user-submitted SCOREs onto the chain.

Every install or update transaction accepted by the deployment-submission
path parks the proposed code revision in the "next" slot of the target
SCORE's deployment record. A permissioned set of auditors, managed by the
genesis identity, then resolves the proposal: acceptScore promotes the next
slot into the active current revision, rejectScore marks it rejected and
keeps it around for inspection. A SCORE accepted in block N becomes callable
starting with block N+1, never within the accepting block itself.

Updates targeting the governance SCORE's own address bypass the audit step
entirely and activate upon submission: the governance contract is the trust
anchor and cannot await its own approval.

# Contract notifications

AuditorAdded(address), AuditorRemoved(address), AuditorRevoked(address)
on auditor set changes; ScoreAccepted(score, deployTxHash),
ScoreRejected(score, deployTxHash, reason) on audit resolutions;
ScoreSuspended(score), ScoreResumed(score) on administrative suspension.
Rejection reasons travel only on the notification, never as queryable state.
*/
package governance
