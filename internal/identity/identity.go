package identity

import (
	"errors"
	"regexp"
)

// Identity is a session plus its optional verified email. The email is the
// gate: the chat surface is only reachable once it is set.
type Identity struct {
	SessionID string `json:"session_id"`
	Email     string `json:"email,omitempty"`
}

func (i Identity) IsAuthenticated() bool { return i.Email != "" }

var (
	ErrInvalidEmail    = errors.New("identity: invalid email address")
	ErrSessionNotFound = errors.New("identity: session not found")
)

// Address shape only: local part, "@", domain containing a dot, no whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func ValidEmail(candidate string) bool {
	return emailPattern.MatchString(candidate)
}
