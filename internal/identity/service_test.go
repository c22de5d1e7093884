package identity

import (
	"context"
	"errors"
	"testing"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	sessions map[string]bool
	emails   map[string]string
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[string]bool), emails: make(map[string]string)}
}

func (s *memStore) SaveSession(_ context.Context, id string) error {
	s.sessions[id] = true
	return nil
}

func (s *memStore) SessionExists(_ context.Context, id string) (bool, error) {
	return s.sessions[id], nil
}

func (s *memStore) SaveEmail(_ context.Context, id, email string) error {
	s.emails[id] = email
	return nil
}

func (s *memStore) LoadEmail(_ context.Context, id string) (string, error) {
	return s.emails[id], nil
}

func (s *memStore) DeleteEmail(_ context.Context, id string) error {
	delete(s.emails, id)
	return nil
}

type countingLogger struct {
	calls int
	err   error
}

func (l *countingLogger) LogEmail(_ context.Context, email, sessionID string) error {
	l.calls++
	return l.err
}

func TestGetOrCreateSessionID(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, &countingLogger{})
	ctx := context.Background()

	id, err := svc.GetOrCreateSessionID(ctx, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatalf("expected a token")
	}
	if !store.sessions[id] {
		t.Fatalf("token was not persisted")
	}

	// A known candidate is restored unchanged.
	same, err := svc.GetOrCreateSessionID(ctx, id)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if same != id {
		t.Fatalf("restored id = %q, want %q", same, id)
	}

	// An unknown candidate is replaced, never adopted.
	fresh, err := svc.GetOrCreateSessionID(ctx, "made-up-by-the-client")
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if fresh == "made-up-by-the-client" {
		t.Fatalf("unknown candidate must not be adopted")
	}
}

func TestSetEmail_InvalidInputNeverReachesNetwork(t *testing.T) {
	store := newMemStore()
	logger := &countingLogger{}
	svc := NewService(store, logger)
	ctx := context.Background()

	id, _ := svc.GetOrCreateSessionID(ctx, "")

	for _, bad := range []string{"not-an-email", "a@b", "a b@c.co", "@c.co", "a@", ""} {
		if err := svc.SetEmail(ctx, id, bad); !errors.Is(err, ErrInvalidEmail) {
			t.Fatalf("SetEmail(%q) err = %v, want ErrInvalidEmail", bad, err)
		}
	}
	if logger.calls != 0 {
		t.Fatalf("logger calls = %d, want 0", logger.calls)
	}
}

func TestSetEmail_RemoteFailureLeavesStateUnchanged(t *testing.T) {
	store := newMemStore()
	logger := &countingLogger{err: errors.New("sink is down")}
	svc := NewService(store, logger)
	ctx := context.Background()

	id, _ := svc.GetOrCreateSessionID(ctx, "")

	if err := svc.SetEmail(ctx, id, "a@b.co"); err == nil {
		t.Fatalf("expected the remote failure to surface")
	}
	if logger.calls != 1 {
		t.Fatalf("logger calls = %d, want 1", logger.calls)
	}

	ident, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ident.IsAuthenticated() || ident.Email != "" {
		t.Fatalf("identity = %+v, want unauthenticated with no email", ident)
	}
}

func TestSetEmail_SuccessCommitsAfterRemoteLog(t *testing.T) {
	store := newMemStore()
	logger := &countingLogger{}
	svc := NewService(store, logger)
	ctx := context.Background()

	id, _ := svc.GetOrCreateSessionID(ctx, "")

	if err := svc.SetEmail(ctx, id, "a@b.co"); err != nil {
		t.Fatalf("set email: %v", err)
	}
	if logger.calls != 1 {
		t.Fatalf("logger calls = %d, want 1", logger.calls)
	}

	ident, _ := svc.Get(ctx, id)
	if !ident.IsAuthenticated() || ident.Email != "a@b.co" {
		t.Fatalf("identity = %+v, want authenticated as a@b.co", ident)
	}
}

func TestSetEmail_UnknownSession(t *testing.T) {
	svc := NewService(newMemStore(), &countingLogger{})
	if err := svc.SetEmail(context.Background(), "ghost", "a@b.co"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestLogout_KeepsSessionDropsEmail(t *testing.T) {
	store := newMemStore()
	svc := NewService(store, &countingLogger{})
	ctx := context.Background()

	id, _ := svc.GetOrCreateSessionID(ctx, "")
	if err := svc.SetEmail(ctx, id, "a@b.co"); err != nil {
		t.Fatalf("set email: %v", err)
	}

	if err := svc.Logout(ctx, id); err != nil {
		t.Fatalf("logout: %v", err)
	}

	ident, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("session must survive logout: %v", err)
	}
	if ident.IsAuthenticated() {
		t.Fatalf("email must be cleared on logout")
	}

	// A returning user keeps continuity.
	same, _ := svc.GetOrCreateSessionID(ctx, id)
	if same != id {
		t.Fatalf("session id changed across logout: %q vs %q", same, id)
	}
}

func TestValidEmail(t *testing.T) {
	valid := []string{"a@b.co", "first.last@sub.example.com", "x+tag@y.io"}
	for _, v := range valid {
		if !ValidEmail(v) {
			t.Errorf("ValidEmail(%q) = false, want true", v)
		}
	}
	invalid := []string{"a@b", "a b@c.co", "a@b .co", "plain", "a@@b.co"}
	for _, v := range invalid {
		if ValidEmail(v) {
			t.Errorf("ValidEmail(%q) = true, want false", v)
		}
	}
}
