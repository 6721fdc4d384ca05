package governance

import (
	"fmt"

	"github.com/stjordanis/icon-service/common"
	"github.com/stjordanis/icon-service/state"
)

// Storage keys of the governance contract.
const (
	genesisKey  = "genesis"
	auditorsKey = "auditors"

	deployInfoPrefix = "di|"
	txParamsPrefix   = "dtp|"
)

// CallerKind classifies the identity invoking a governance method.
type CallerKind int

const (
	// CallerGenesis is the privileged bootstrap identity.
	CallerGenesis CallerKind = iota
	// CallerAuditor is a member of the auditor set.
	CallerAuditor
	// CallerOther is any other identity.
	CallerOther
)

// Caller pairs an invoking address with its authorization classification.
// Authorization decisions pattern-match on Kind instead of re-deriving
// membership at every check site.
type Caller struct {
	Kind    CallerKind
	Address common.Address
}

// Authorized reports whether the caller may resolve audits.
func (c Caller) Authorized() bool {
	return c.Kind == CallerGenesis || c.Kind == CallerAuditor
}

// Genesis returns the privileged bootstrap address registered at contract
// initialization.
func Genesis(ctx *state.Context) (common.Address, error) {
	raw, err := ctx.Get([]byte(genesisKey))
	if err != nil {
		return common.Address{}, fmt.Errorf("read genesis address: %w", err)
	}
	if raw == nil {
		return common.Address{}, fmt.Errorf("%w: governance contract is not initialized", common.ErrInvalidState)
	}
	return common.AddressFromBytes(raw)
}

// ClassifyCaller resolves addr into its Caller classification. The genesis
// identity is special-cased and never consulted against the auditor set.
func ClassifyCaller(ctx *state.Context, addr common.Address) (Caller, error) {
	genesis, err := Genesis(ctx)
	if err != nil {
		return Caller{}, err
	}
	if addr.Equals(genesis) {
		return Caller{Kind: CallerGenesis, Address: addr}, nil
	}

	auditors, err := Auditors(ctx)
	if err != nil {
		return Caller{}, err
	}
	for _, a := range auditors {
		if a.Equals(addr) {
			return Caller{Kind: CallerAuditor, Address: addr}, nil
		}
	}
	return Caller{Kind: CallerOther, Address: addr}, nil
}

// Auditors returns the current auditor set in insertion order. The genesis
// identity is implicitly authorized and never appears in the list.
func Auditors(ctx *state.Context) ([]common.Address, error) {
	raw, err := ctx.Get([]byte(auditorsKey))
	if err != nil {
		return nil, fmt.Errorf("read auditor set: %w", err)
	}
	if len(raw)%common.AddressLen != 0 {
		return nil, fmt.Errorf("malformed auditor set of %d bytes", len(raw))
	}

	out := make([]common.Address, 0, len(raw)/common.AddressLen)
	for off := 0; off < len(raw); off += common.AddressLen {
		a, err := common.AddressFromBytes(raw[off : off+common.AddressLen])
		if err != nil {
			return nil, fmt.Errorf("malformed auditor set entry: %w", err)
		}
		out = append(out, a)
	}
	return out, nil
}

func putAuditors(ctx *state.Context, auditors []common.Address) error {
	if len(auditors) == 0 {
		return ctx.Delete([]byte(auditorsKey))
	}
	raw := make([]byte, 0, len(auditors)*common.AddressLen)
	for _, a := range auditors {
		raw = append(raw, a.Bytes()...)
	}
	return ctx.Put([]byte(auditorsKey), raw)
}

// AddAuditor inserts target into the auditor set. Only the genesis identity
// may call it; target must be a well-formed EOA address not yet present.
func AddAuditor(ctx *state.Context, target common.Address) error {
	caller, err := ClassifyCaller(ctx, ctx.Origin())
	if err != nil {
		return err
	}
	if caller.Kind != CallerGenesis {
		return fmt.Errorf("%w: addAuditor requires the genesis identity", common.ErrForbidden)
	}
	if !target.IsEOA() {
		return fmt.Errorf("%w: auditor %s is not an EOA address", common.ErrInvalidParameter, target)
	}

	genesis, err := Genesis(ctx)
	if err != nil {
		return err
	}
	if target.Equals(genesis) {
		// Genesis is implicitly authorized and never stored as a removable member.
		return fmt.Errorf("%w: genesis identity cannot be an auditor", common.ErrInvalidParameter)
	}

	auditors, err := Auditors(ctx)
	if err != nil {
		return err
	}
	for _, a := range auditors {
		if a.Equals(target) {
			return fmt.Errorf("%w: auditor %s is already present", common.ErrInvalidParameter, target)
		}
	}

	if err := putAuditors(ctx, append(auditors, target)); err != nil {
		return err
	}
	return ctx.Notify("AuditorAdded", target.String())
}

// RemoveAuditor removes target from the auditor set. Only the genesis
// identity may call it.
func RemoveAuditor(ctx *state.Context, target common.Address) error {
	caller, err := ClassifyCaller(ctx, ctx.Origin())
	if err != nil {
		return err
	}
	if caller.Kind != CallerGenesis {
		return fmt.Errorf("%w: removeAuditor requires the genesis identity", common.ErrForbidden)
	}

	if err := removeMember(ctx, target); err != nil {
		return err
	}
	return ctx.Notify("AuditorRemoved", target.String())
}

// SelfRevoke removes the calling identity from the auditor set. No genesis
// privilege is required: an auditor can unilaterally neutralize a
// compromised key without depending on genesis availability.
func SelfRevoke(ctx *state.Context) error {
	if err := removeMember(ctx, ctx.Origin()); err != nil {
		return err
	}
	return ctx.Notify("AuditorRevoked", ctx.Origin().String())
}

func removeMember(ctx *state.Context, target common.Address) error {
	auditors, err := Auditors(ctx)
	if err != nil {
		return err
	}
	for i, a := range auditors {
		if a.Equals(target) {
			return putAuditors(ctx, append(auditors[:i:i], auditors[i+1:]...))
		}
	}
	return fmt.Errorf("%w: %s is not an auditor", common.ErrNotFound, target)
}
