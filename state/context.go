package state

import (
	"github.com/stjordanis/icon-service/common"
)

// Event is an informational notification emitted during transaction
// execution. Events become part of the transaction result; they are not
// queryable chain state.
type Event struct {
	Name string
	Args []string
}

// Context is the execution context of a single contract invocation. It
// carries the state view the invocation reads and writes, the block height
// and transaction hash it executes under, and the authenticated origin
// address supplied by the execution engine.
//
// Wall-clock time is deliberately absent: everything an invocation may
// observe must replay identically on every validating node.
type Context struct {
	store    Store
	height   int64
	txHash   common.TxHash
	origin   common.Address
	readOnly bool
	events   []Event
}

// NewContext builds the context of a mutating invocation.
func NewContext(store Store, height int64, txHash common.TxHash, origin common.Address) *Context {
	return &Context{
		store:  store,
		height: height,
		txHash: txHash,
		origin: origin,
	}
}

// NewReadOnlyContext builds a query context over a snapshot taken at height.
// Mutation and event emission through it fail with ErrReadOnly.
func NewReadOnlyContext(store Store, height int64) *Context {
	return &Context{
		store:    store,
		height:   height,
		readOnly: true,
	}
}

// Height returns the height of the block the invocation executes in.
func (c *Context) Height() int64 { return c.height }

// TxHash returns the hash of the enclosing transaction.
func (c *Context) TxHash() common.TxHash { return c.txHash }

// Origin returns the authenticated sender of the enclosing transaction.
func (c *Context) Origin() common.Address { return c.origin }

// ReadOnly reports whether the context forbids mutation.
func (c *Context) ReadOnly() bool { return c.readOnly }

// Get reads a raw state value; (nil, nil) when absent.
func (c *Context) Get(key []byte) ([]byte, error) {
	return c.store.Get(key)
}

// Put writes a raw state value.
func (c *Context) Put(key, value []byte) error {
	if c.readOnly {
		return ErrReadOnly
	}
	return c.store.Put(key, value)
}

// Delete removes a raw state value.
func (c *Context) Delete(key []byte) error {
	if c.readOnly {
		return ErrReadOnly
	}
	return c.store.Delete(key)
}

// Notify records an informational event on the transaction result.
func (c *Context) Notify(name string, args ...string) error {
	if c.readOnly {
		return ErrReadOnly
	}
	c.events = append(c.events, Event{Name: name, Args: args})
	return nil
}

// Events returns the events emitted so far, in emission order.
func (c *Context) Events() []Event { return c.events }

// DropEvents discards events emitted by a failed invocation so they never
// leak into the transaction result alongside the discarded writes.
func (c *Context) DropEvents() { c.events = nil }
