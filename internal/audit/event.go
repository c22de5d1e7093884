package audit

import "time"

type EventKind string

const (
	KindEmailCapture EventKind = "email-capture"
	KindChatTurn     EventKind = "chat-turn"
)

// Event is one audit record bound for the logging sink. Email captures carry
// Email; chat turns carry Message.
type Event struct {
	Kind      EventKind `json:"kind"`
	SessionID string    `json:"session_id"`
	Email     string    `json:"email,omitempty"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
