// Package governance provides the client-side binding of the on-chain
// governance contract: call-envelope construction for its methods and
// wire models of its results.
package governance

import (
	"encoding/json"
	"fmt"

	"github.com/stjordanis/icon-service/common"
	"github.com/stjordanis/icon-service/governance"
)

// CurrentSlot is the wire form of a deployed revision.
type CurrentSlot struct {
	Status       string `json:"status"`
	DeployTxHash string `json:"deployTxHash,omitempty"`
	AuditTxHash  string `json:"auditTxHash,omitempty"`
	AuditHeight  string `json:"auditHeight"`
}

// NextSlot is the wire form of a proposed revision.
type NextSlot struct {
	Status       string `json:"status"`
	DeployTxHash string `json:"deployTxHash"`
	AuditTxHash  string `json:"auditTxHash,omitempty"`
}

// ScoreStatus is the wire form of the getScoreStatus result.
type ScoreStatus struct {
	Current *CurrentSlot `json:"current,omitempty"`
	Next    *NextSlot    `json:"next,omitempty"`
}

// StatusFromContract converts the contract-side projection into its wire
// form. Optional hashes render as absent fields, not zero hashes.
func StatusFromContract(s *governance.ScoreStatus) *ScoreStatus {
	out := &ScoreStatus{}
	if s.Current != nil {
		cur := &CurrentSlot{
			Status:      s.Current.Status.String(),
			AuditHeight: common.FormatInt(s.Current.AuditHeight),
		}
		if !s.Current.DeployTxHash.IsZero() {
			cur.DeployTxHash = s.Current.DeployTxHash.String()
		}
		if !s.Current.AuditTxHash.IsZero() {
			cur.AuditTxHash = s.Current.AuditTxHash.String()
		}
		out.Current = cur
	}
	if s.Next != nil {
		next := &NextSlot{
			Status:       s.Next.Status.String(),
			DeployTxHash: s.Next.DeployTxHash.String(),
		}
		if !s.Next.AuditTxHash.IsZero() {
			next.AuditTxHash = s.Next.AuditTxHash.String()
		}
		out.Next = next
	}
	return out
}

// Error is the {code, message} pair surfaced at the transport boundary.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

// Unwrap maps known stable codes back into the governance error taxonomy,
// so clients can match transport errors with errors.Is.
func (e *Error) Unwrap() error {
	for _, kind := range []*common.Error{
		common.ErrForbidden,
		common.ErrNotFound,
		common.ErrInvalidState,
		common.ErrInvalidParameter,
		common.ErrAlreadyPending,
		common.ErrMethodNotFound,
	} {
		if int(kind.Code) == e.Code {
			return kind
		}
	}
	return nil
}

func decodeError(raw json.RawMessage) error {
	var e Error
	if err := json.Unmarshal(raw, &e); err != nil {
		return fmt.Errorf("malformed error object: %w", err)
	}
	return &e
}
