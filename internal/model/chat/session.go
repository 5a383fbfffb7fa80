package chat

import "time"

// Session captures a transient anonymous conversation.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// LogEntry is one line of the backend conversation log.
type LogEntry struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Source    Role      `json:"source"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}
