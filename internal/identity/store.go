package identity

import "context"

// Store is the durable key-value home of identity data. Session tokens
// persist forever; the email key may come and go with capture and logout.
//
// LoadEmail returns "" with a nil error when no email is saved. Absence is a
// normal state (the gate is shown), not a failure.
type Store interface {
	SaveSession(ctx context.Context, sessionID string) error
	SessionExists(ctx context.Context, sessionID string) (bool, error)
	SaveEmail(ctx context.Context, sessionID, email string) error
	LoadEmail(ctx context.Context, sessionID string) (string, error)
	DeleteEmail(ctx context.Context, sessionID string) error
}
