// Package mchat implements per-task chat sessions that live only while open.
//
// A session is a local echo: messages are appended to the session that sent
// them and nobody else receives them. Closing discards the log, and reopening a
// task starts from an empty one.
package mchat

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"kyri56xcaesar/pms-collab/internal/apperr"
	"kyri56xcaesar/pms-collab/internal/mtask"
)

type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type Session struct {
	ID        string
	TaskID    string
	TaskTitle string

	mu       sync.Mutex
	closed   bool
	messages []Message

	now   func() time.Time
	newID func() string
}

// Send appends a message with trimmed content and returns it.
func (s *Session) Send(userID, content string) (Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Message{}, apperr.Invalid("content", "is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Message{}, apperr.NotFound("session", s.ID)
	}
	m := Message{
		ID:        s.newID(),
		UserID:    userID,
		Content:   content,
		Timestamp: s.now(),
	}
	s.messages = append(s.messages, m)
	return m, nil
}

// Messages returns the log in send order.
func (s *Session) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Close discards every message. Further sends fail.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.messages = nil
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Manager tracks the sessions currently open so a handle can be resolved by id.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	now   func() time.Time
	newID func() string
}

func NewManager() *Manager {
	return &Manager{
		sessions: map[string]*Session{},
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// Open starts an empty session for task. Opening the same task twice yields two
// independent sessions.
func (m *Manager) Open(task mtask.Task) *Session {
	s := &Session{
		ID:        m.newID(),
		TaskID:    task.ID,
		TaskTitle: task.Title,
		messages:  []Message{},
		now:       m.now,
		newID:     m.newID,
	}
	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close discards the session and its messages.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return apperr.NotFound("session", id)
	}
	s.Close()
	return nil
}

// Len reports how many sessions are currently open.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
