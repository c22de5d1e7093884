package identity

import (
	"context"

	"github.com/google/uuid"
)

// EmailLogger is the remote capture-logging collaborator; gateway.Client
// satisfies it. SetEmail only commits after the logger reports success.
type EmailLogger interface {
	LogEmail(ctx context.Context, email, sessionID string) error
}

// Service is the identity store proper: it issues session tokens and runs the
// email gate. Constructed once at startup and passed explicitly to whoever
// needs it.
type Service struct {
	store  Store
	logger EmailLogger
}

func NewService(store Store, logger EmailLogger) *Service {
	return &Service{store: store, logger: logger}
}

// GetOrCreateSessionID returns candidate when it names a known session,
// otherwise mints a fresh token and persists it. Only the durable store is
// touched, never the network.
func (s *Service) GetOrCreateSessionID(ctx context.Context, candidate string) (string, error) {
	if candidate != "" {
		known, err := s.store.SessionExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if known {
			return candidate, nil
		}
	}

	id := uuid.NewString()
	if err := s.store.SaveSession(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

// SetEmail validates the candidate address, logs the capture remotely, and
// only then persists it. Validation failures never reach the network; remote
// failures leave state untouched and are the caller's to surface. Nothing is
// retried here; a retry is the user re-submitting the form.
func (s *Service) SetEmail(ctx context.Context, sessionID, candidate string) error {
	if !ValidEmail(candidate) {
		return ErrInvalidEmail
	}

	known, err := s.store.SessionExists(ctx, sessionID)
	if err != nil {
		return err
	}
	if !known {
		return ErrSessionNotFound
	}

	if err := s.logger.LogEmail(ctx, candidate, sessionID); err != nil {
		return err
	}

	return s.store.SaveEmail(ctx, sessionID, candidate)
}

// Logout clears the email only; the session token is kept so a returning
// user keeps continuity.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.store.DeleteEmail(ctx, sessionID)
}

// Get loads the current identity for a session.
func (s *Service) Get(ctx context.Context, sessionID string) (Identity, error) {
	known, err := s.store.SessionExists(ctx, sessionID)
	if err != nil {
		return Identity{}, err
	}
	if !known {
		return Identity{}, ErrSessionNotFound
	}

	email, err := s.store.LoadEmail(ctx, sessionID)
	if err != nil {
		return Identity{}, err
	}
	return Identity{SessionID: sessionID, Email: email}, nil
}
