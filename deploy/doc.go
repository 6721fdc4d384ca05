/*
Package deploy implements the deployment-submission path: the engine-facing
entry point that turns install and update transactions into pending
deployment proposals in the governance contract's record store.

An install transaction targets the zero SCORE address and deterministically
derives a fresh contract address from its own hash; an update targets the
deployed SCORE's address and must come from the record owner. Proposals for
the governance SCORE itself bypass audit and activate upon submission.
*/
package deploy
