package widget

import "github.com/google/uuid"

// Session holds the identity attached to every request of one widget instance.
type Session struct {
	id string
}

// NewSession generates a random session id.
func NewSession() *Session {
	return &Session{id: uuid.NewString()}
}

// ID returns the session id. It never changes for the lifetime of the widget.
func (s *Session) ID() string {
	return s.id
}
