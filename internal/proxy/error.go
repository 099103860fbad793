// ABOUTME: Normalized error model for specialist calls.
// ABOUTME: Classifies failures as unreachable, timeout, or remote fault.

package proxy

import (
	"context"
	"errors"
	"fmt"

	"github.com/2389/triage-gateway/internal/a2a"
	"github.com/2389/triage-gateway/internal/jsonrpc"
)

// Kind classifies a specialist call failure.
type Kind string

const (
	// KindUnreachable means the specialist endpoint could not be reached
	// or answered with garbage.
	KindUnreachable Kind = "unreachable"

	// KindTimeout means the call's deadline expired before an answer.
	KindTimeout Kind = "timeout"

	// KindRemoteFault means the specialist answered with a structured
	// fault; Code carries the fault's code.
	KindRemoteFault Kind = "remote_fault"
)

// Error is the only error type Invoke returns.
type Error struct {
	Kind    Kind
	Code    int
	Message string
}

func (e *Error) Error() string {
	if e.Kind == KindRemoteFault {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// badRequest builds the fault used for validation failures caught before
// any remote call is made.
func badRequest(format string, args ...any) *Error {
	return &Error{Kind: KindRemoteFault, Code: a2a.CodeBadRequest, Message: fmt.Sprintf(format, args...)}
}

// normalizeError maps a transport-layer failure onto the closed error
// model. Structured faults are checked first; a fault is never also a
// deadline error.
func normalizeError(err error) *Error {
	var fault *jsonrpc.Error
	if errors.As(err, &fault) {
		return &Error{Kind: KindRemoteFault, Code: fault.Code, Message: fault.Message}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: "specialist call timed out"}
	}
	return &Error{Kind: KindUnreachable, Message: err.Error()}
}
