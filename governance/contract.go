package governance

import (
	"fmt"

	"github.com/stjordanis/icon-service/common"
	"github.com/stjordanis/icon-service/state"
)

// External method names of the governance contract.
const (
	MethodGetScoreStatus = "getScoreStatus"
	MethodAcceptScore    = "acceptScore"
	MethodRejectScore    = "rejectScore"
	MethodAddAuditor     = "addAuditor"
	MethodRemoveAuditor  = "removeAuditor"
	MethodSelfRevoke     = "selfRevoke"
	MethodSuspendScore   = "suspendScore"
	MethodResumeScore    = "resumeScore"
)

// Call is a governance method invocation with named textual parameters, as
// delivered by the transaction envelope of the execution engine.
type Call struct {
	Method string
	Params map[string]string
}

// Receipt is the outcome of a successful invocation: the method result (nil
// for mutating methods) and the events emitted during execution.
type Receipt struct {
	Result any
	Events []state.Event
}

type handler func(ctx *state.Context, params map[string]string) (any, error)

type methodDesc struct {
	handler  handler
	params   []string
	readOnly bool
}

var methods = map[string]methodDesc{
	MethodGetScoreStatus: {handler: handleGetScoreStatus, params: []string{"address"}, readOnly: true},
	MethodAcceptScore:    {handler: handleAcceptScore, params: []string{"txHash"}},
	MethodRejectScore:    {handler: handleRejectScore, params: []string{"txHash", "reason"}},
	MethodAddAuditor:     {handler: handleAddAuditor, params: []string{"address"}},
	MethodRemoveAuditor:  {handler: handleRemoveAuditor, params: []string{"address"}},
	MethodSelfRevoke:     {handler: handleSelfRevoke},
	MethodSuspendScore:   {handler: handleSuspendScore, params: []string{"address"}},
	MethodResumeScore:    {handler: handleResumeScore, params: []string{"address"}},
}

// Init registers the governance contract in chain state: it stores the
// genesis identity and records the governance SCORE itself as a deployed
// builtin owned by genesis. Init runs once during chain bootstrap.
func Init(ctx *state.Context, genesis common.Address) error {
	if !genesis.IsEOA() {
		return fmt.Errorf("%w: genesis %s is not an EOA address", common.ErrInvalidParameter, genesis)
	}

	existing, err := ctx.Get([]byte(genesisKey))
	if err != nil {
		return fmt.Errorf("read genesis address: %w", err)
	}
	if existing != nil {
		return fmt.Errorf("%w: governance contract is already initialized", common.ErrInvalidState)
	}

	if err := ctx.Put([]byte(genesisKey), genesis.Bytes()); err != nil {
		return err
	}
	return RegisterBuiltin(ctx, common.GovernanceAddress, genesis)
}

// Invoke executes a mutating governance call inside the transaction
// identified by txHash, sent by origin, in the block at height. Writes are
// buffered on an overlay over store and committed only if the call
// succeeds: a failed call leaves store untouched and produces no events.
func Invoke(store state.Store, height int64, txHash common.TxHash, origin common.Address, call Call) (*Receipt, error) {
	desc, ok := methods[call.Method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrMethodNotFound, call.Method)
	}

	overlay := state.NewOverlay(store)
	ctx := state.NewContext(overlay, height, txHash, origin)

	result, err := dispatch(ctx, desc, call)
	if err != nil {
		overlay.Discard()
		ctx.DropEvents()
		return nil, err
	}
	if err := overlay.Commit(); err != nil {
		return nil, err
	}
	return &Receipt{Result: result, Events: ctx.Events()}, nil
}

// Query executes a read-only governance call against a state snapshot taken
// at height. Mutating methods are refused.
func Query(snapshot state.Store, height int64, call Call) (any, error) {
	desc, ok := methods[call.Method]
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrMethodNotFound, call.Method)
	}
	if !desc.readOnly {
		return nil, fmt.Errorf("%w: %q is not a read-only method", common.ErrInvalidParameter, call.Method)
	}

	ctx := state.NewReadOnlyContext(snapshot, height)
	return dispatch(ctx, desc, call)
}

func dispatch(ctx *state.Context, desc methodDesc, call Call) (any, error) {
	if err := checkParams(call.Params, desc.params); err != nil {
		return nil, fmt.Errorf("%s: %w", call.Method, err)
	}
	return desc.handler(ctx, call.Params)
}

// checkParams verifies that exactly the declared parameter names are
// present. Field encodings are validated by the individual handlers.
func checkParams(params map[string]string, want []string) error {
	for _, name := range want {
		if _, ok := params[name]; !ok {
			return fmt.Errorf("%w: missing parameter %q", common.ErrInvalidParameter, name)
		}
	}
	if len(params) != len(want) {
		for name := range params {
			known := false
			for _, w := range want {
				if name == w {
					known = true
					break
				}
			}
			if !known {
				return fmt.Errorf("%w: unexpected parameter %q", common.ErrInvalidParameter, name)
			}
		}
	}
	return nil
}

func handleGetScoreStatus(ctx *state.Context, params map[string]string) (any, error) {
	score, err := common.ParseContractAddress(params["address"])
	if err != nil {
		return nil, err
	}
	return GetScoreStatus(ctx, score)
}

func handleAcceptScore(ctx *state.Context, params map[string]string) (any, error) {
	deployTx, err := common.ParseTxHash(params["txHash"])
	if err != nil {
		return nil, err
	}
	return nil, AcceptScore(ctx, deployTx)
}

func handleRejectScore(ctx *state.Context, params map[string]string) (any, error) {
	deployTx, err := common.ParseTxHash(params["txHash"])
	if err != nil {
		return nil, err
	}
	return nil, RejectScore(ctx, deployTx, params["reason"])
}

func handleAddAuditor(ctx *state.Context, params map[string]string) (any, error) {
	auditor, err := common.ParseEOAAddress(params["address"])
	if err != nil {
		return nil, err
	}
	return nil, AddAuditor(ctx, auditor)
}

func handleRemoveAuditor(ctx *state.Context, params map[string]string) (any, error) {
	auditor, err := common.ParseEOAAddress(params["address"])
	if err != nil {
		return nil, err
	}
	return nil, RemoveAuditor(ctx, auditor)
}

func handleSelfRevoke(ctx *state.Context, _ map[string]string) (any, error) {
	return nil, SelfRevoke(ctx)
}

func handleSuspendScore(ctx *state.Context, params map[string]string) (any, error) {
	score, err := common.ParseContractAddress(params["address"])
	if err != nil {
		return nil, err
	}
	return nil, SuspendScore(ctx, score)
}

func handleResumeScore(ctx *state.Context, params map[string]string) (any, error) {
	score, err := common.ParseContractAddress(params["address"])
	if err != nil {
		return nil, err
	}
	return nil, ResumeScore(ctx, score)
}
