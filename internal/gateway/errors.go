package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies how a webhook call went wrong.
type Kind string

const (
	// KindRemoteRejected: the endpoint answered with a non-2xx status.
	KindRemoteRejected Kind = "remote_rejected"
	// KindUnreachable: no response was received at all.
	KindUnreachable Kind = "unreachable"
	// KindMalformedReply: the endpoint answered 2xx but the body was not JSON.
	KindMalformedReply Kind = "malformed_reply"
)

var (
	ErrNotConfigured = errors.New("gateway: webhook url is not configured")
	ErrEmptyMessage  = errors.New("gateway: message must not be empty")
)

// Error carries the classification plus operator-facing detail. The detail is
// for logs only; callers render their own user-facing text.
type Error struct {
	Kind   Kind
	Detail string
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("gateway: %s", e.Kind)
	}
	return fmt.Sprintf("gateway: %s: %s", e.Kind, e.Detail)
}

// KindOf extracts the failure kind from err, ok=false when err is not a
// gateway classification.
func KindOf(err error) (Kind, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind, true
	}
	return "", false
}
