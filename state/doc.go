/*
Package state provides the transactional chain-state abstraction used by the
built-in contracts.

Chain state is an opaque key-value map. Transactions within a block execute
sequentially against a write overlay stacked on the finalized state; the
overlay of a transaction is committed into the block overlay only when the
transaction succeeds, and the block overlay is committed into the backing
store only when the block is finalized. Read-only queries run against an
immutable snapshot of the last finalized state and never observe in-progress
block execution.

Two backing stores are provided: MemStore for tests and simulation, and a
LevelDB-backed store for persistent deployments.
*/
package state
