package chat

import "time"

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "ai"
)

// WireRoleModel is the backend's name for model-authored turns.
const WireRoleModel = "assistant"

// Message is one entry of the widget transcript.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// HistoryEntry is a message as it travels on the wire.
type HistoryEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// WireRole renames an internal role to the backend vocabulary.
func (r Role) WireRole() string {
	if r == RoleAssistant {
		return WireRoleModel
	}
	return string(r)
}

// RoleFromWire is the inverse of Role.WireRole. ok is false for roles the
// widget never produces (system, tool, ...).
func RoleFromWire(role string) (Role, bool) {
	switch role {
	case WireRoleModel:
		return RoleAssistant, true
	case string(RoleUser):
		return RoleUser, true
	default:
		return "", false
	}
}

// ToHistory maps messages to wire entries, preserving order.
func ToHistory(messages []Message) []HistoryEntry {
	history := make([]HistoryEntry, 0, len(messages))
	for _, msg := range messages {
		history = append(history, HistoryEntry{Role: msg.Role.WireRole(), Content: msg.Content})
	}
	return history
}
