package history

import (
	"sync"

	"aiden/internal/llm"
)

// Manager keeps the recent conversational turns per speaker so the AI backend
// sees a short chat memory. Only the newest limit messages are kept.
type Manager struct {
	mu       sync.RWMutex
	limit    int
	sessions map[string][]llm.Message
}

func NewManager(limit int) *Manager {
	if limit <= 0 {
		limit = 10
	}
	return &Manager{limit: limit, sessions: make(map[string][]llm.Message)}
}

func (m *Manager) Reset(speaker string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, speaker)
}

func (m *Manager) AppendUser(speaker, content string) {
	m.append(speaker, llm.Message{Role: llm.RoleUser, Content: content})
}

func (m *Manager) AppendAssistant(speaker, content string) {
	m.append(speaker, llm.Message{Role: llm.RoleAssistant, Content: content})
}

func (m *Manager) append(speaker string, msg llm.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msgs := append(m.sessions[speaker], msg)
	if over := len(msgs) - m.limit; over > 0 {
		msgs = append([]llm.Message(nil), msgs[over:]...)
	}
	m.sessions[speaker] = msgs
}

// Get returns a copy of the speaker's messages, oldest first.
func (m *Manager) Get(speaker string) []llm.Message {
	m.mu.RLock()
	defer m.mu.RUnlock()
	msgs := m.sessions[speaker]
	out := make([]llm.Message, len(msgs))
	copy(out, msgs)
	return out
}
