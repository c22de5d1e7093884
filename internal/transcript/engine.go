package transcript

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"
)

// Sender delivers one outbound message; gateway.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, message, sessionID, email string) (string, error)
}

// connectionTroubleText is the only failure wording the transcript ever shows;
// gateway detail stays in the logs.
const connectionTroubleText = "Sorry, I'm having trouble connecting right now. Please try again."

// Notice is a transient user-facing notification, separate from the
// transcript (the toast channel).
type Notice struct {
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

var (
	ErrBlankMessage  = errors.New("transcript: message is blank")
	ErrBusy          = errors.New("transcript: a message is already in flight")
	ErrSuperseded    = errors.New("transcript: turn was superseded by a reset")
	ErrNotConfigured = errors.New("transcript: no webhook endpoint is configured")
)

// Engine owns one conversation. It appends the user's message synchronously,
// delegates to the Sender, and appends exactly one assistant message per
// accepted submission. At most one send is in flight; submissions while
// awaiting are rejected without side effects.
//
// Each in-flight send captures the turn counter; Reset bumps it, so a reply
// that resolves after a reset is discarded instead of repopulating the
// cleared transcript.
type Engine struct {
	sessionID string
	sender    Sender

	mu       sync.Mutex
	messages []Message
	awaiting bool
	turn     uint64

	notices chan Notice
}

func NewEngine(sessionID string, sender Sender) *Engine {
	return &Engine{
		sessionID: sessionID,
		sender:    sender,
		messages:  make([]Message, 0, 16),
		notices:   make(chan Notice, 16),
	}
}

// Submit runs one conversation turn and returns the assistant message that
// was appended. Blank text returns ErrBlankMessage, an in-flight turn returns
// ErrBusy, and a sender with no endpoint returns ErrNotConfigured; none of
// these touches the transcript or the network. A missing endpoint is not a
// transient fault, so it is refused outright rather than rendered as the
// connection-trouble bubble.
func (e *Engine) Submit(ctx context.Context, text, email string) (Message, error) {
	if strings.TrimSpace(text) == "" {
		return Message{}, ErrBlankMessage
	}
	if c, ok := e.sender.(interface{ Configured() bool }); ok && !c.Configured() {
		return Message{}, ErrNotConfigured
	}

	e.mu.Lock()
	if e.awaiting {
		e.mu.Unlock()
		return Message{}, ErrBusy
	}
	e.append(Message{Text: text, Origin: OriginUser})
	e.awaiting = true
	turn := e.turn
	e.mu.Unlock()

	reply, err := e.sender.Send(ctx, text, e.sessionID, email)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.turn != turn {
		// Reset happened while the call was outstanding; the transcript this
		// turn belonged to no longer exists.
		return Message{}, ErrSuperseded
	}
	e.awaiting = false

	msg := Message{Text: reply, Origin: OriginAssistant}
	if err != nil {
		log.Printf("transcript session=%s send failed: %v", e.sessionID, err)
		msg.Text = connectionTroubleText
		e.notify(Notice{Text: "Failed to send message. Please try again.", At: time.Now().UTC()})
	}
	e.append(msg)
	return e.messages[len(e.messages)-1], nil
}

// Reset clears the transcript and returns to idle from any state. Identity is
// untouched.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.messages = e.messages[:0]
	e.awaiting = false
	e.turn++
}

// Snapshot returns the ordered transcript as a copy.
func (e *Engine) Snapshot() []Message {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Message, len(e.messages))
	copy(out, e.messages)
	return out
}

func (e *Engine) Awaiting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.awaiting
}

// Notices exposes the toast channel for streaming to the client.
func (e *Engine) Notices() <-chan Notice {
	return e.notices
}

// append stamps and stores a message. Caller holds e.mu.
func (e *Engine) append(m Message) {
	now := time.Now().UTC()
	m.ID = newMessageID(now)
	m.Timestamp = now
	e.messages = append(e.messages, m)
}

// notify never blocks a turn; when nobody is draining the channel the notice
// is dropped.
func (e *Engine) notify(n Notice) {
	select {
	case e.notices <- n:
	default:
	}
}
