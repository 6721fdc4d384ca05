package common

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable numeric error identifier understood by all clients.
// Codes never change between releases; transports surface them verbatim.
type ErrorCode int

const (
	// CodeForbidden: caller lacks the required privilege.
	CodeForbidden ErrorCode = 33001
	// CodeNotFound: referenced SCORE address or transaction hash has no record.
	CodeNotFound ErrorCode = 33002
	// CodeInvalidState: requested transition is not legal from the current state.
	CodeInvalidState ErrorCode = 33003
	// CodeInvalidParameter: malformed or missing field.
	CodeInvalidParameter ErrorCode = 33004
	// CodeAlreadyPending: a deployment proposal is already awaiting audit.
	CodeAlreadyPending ErrorCode = 33005
	// CodeMethodNotFound: dispatch cannot resolve the requested method name.
	CodeMethodNotFound ErrorCode = 33006
)

// Error is a coded error surfaced at the transport boundary as a
// {code, message} pair. Sentinel instances below are matched with errors.Is;
// wrap them with fmt.Errorf("...: %w", err) to attach call-site context.
type Error struct {
	Code    ErrorCode
	Message string
}

// Sentinel errors of the governance subsystem.
var (
	ErrForbidden        = &Error{CodeForbidden, "forbidden"}
	ErrNotFound         = &Error{CodeNotFound, "not found"}
	ErrInvalidState     = &Error{CodeInvalidState, "invalid state"}
	ErrInvalidParameter = &Error{CodeInvalidParameter, "invalid parameter"}
	ErrAlreadyPending   = &Error{CodeAlreadyPending, "already pending"}
	ErrMethodNotFound   = &Error{CodeMethodNotFound, "method not found"}
)

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

// Is matches any *Error carrying the same code, so wrapped call-site errors
// compare equal to the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// CodeOf extracts the stable code from err, unwrapping as needed. It returns
// ok=false for errors originating outside the governance taxonomy.
func CodeOf(err error) (ErrorCode, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

// NewError builds a coded error with a specific message, keeping the stable
// code of kind. Used when the message must carry client-visible detail.
func NewError(kind *Error, message string) *Error {
	return &Error{Code: kind.Code, Message: message}
}
