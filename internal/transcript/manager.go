package transcript

import "sync"

// Manager hands out one Engine per session. Transcripts live in process
// memory only; a restart starts everyone from an empty transcript while
// identity survives in its own store.
type Manager struct {
	sender Sender

	mu      sync.Mutex
	engines map[string]*Engine
}

func NewManager(sender Sender) *Manager {
	return &Manager{
		sender:  sender,
		engines: make(map[string]*Engine),
	}
}

// Engine returns the session's engine, creating it on first use.
func (m *Manager) Engine(sessionID string) *Engine {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.engines[sessionID]
	if !ok {
		e = NewEngine(sessionID, m.sender)
		m.engines[sessionID] = e
	}
	return e
}

// Drop forgets a session's engine, discarding its transcript. Used on logout.
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.engines, sessionID)
}
