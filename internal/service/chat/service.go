package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ebarney/aibarney/internal/model/chat"
)

var (
	ErrSessionRequired = errors.New("session id is required")
	ErrSessionNotFound = errors.New("session not found")
	ErrUnknownSource   = errors.New("unknown message source")
)

// Service keeps the conversation log: every user message and every full
// assistant reply, grouped by session id.
type Service struct {
	mu       sync.RWMutex
	sessions map[string]chat.Session
	entries  map[string][]chat.LogEntry
	now      func() time.Time
}

// NewService returns an empty in-memory log.
func NewService() *Service {
	return &Service{
		sessions: make(map[string]chat.Session),
		entries:  make(map[string][]chat.LogEntry),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// LogMessage appends one entry. The session is created on first use; session
// ids are minted by the widget, not the backend.
func (s *Service) LogMessage(_ context.Context, sessionID string, source chat.Role, message string) (chat.LogEntry, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return chat.LogEntry{}, ErrSessionRequired
	}
	if source != chat.RoleUser && source != chat.RoleAssistant {
		return chat.LogEntry{}, ErrUnknownSource
	}

	entry := chat.LogEntry{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Source:    source,
		Message:   message,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	if _, ok := s.sessions[sessionID]; !ok {
		s.sessions[sessionID] = chat.Session{ID: sessionID, CreatedAt: entry.CreatedAt}
		s.entries[sessionID] = make([]chat.LogEntry, 0, 16)
	}
	s.entries[sessionID] = append(s.entries[sessionID], entry)
	s.mu.Unlock()

	return entry, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Transcript returns the logged entries of a session in insertion order.
func (s *Service) Transcript(_ context.Context, sessionID string) ([]chat.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, ok := s.entries[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.LogEntry, len(entries))
	copy(copied, entries)
	return copied, nil
}
