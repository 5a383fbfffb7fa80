package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireRoleRoundTrip(t *testing.T) {
	for _, role := range []Role{RoleUser, RoleAssistant} {
		back, ok := RoleFromWire(role.WireRole())
		require.True(t, ok, "role %s", role)
		assert.Equal(t, role, back)
	}

	assert.Equal(t, "assistant", RoleAssistant.WireRole())
	assert.Equal(t, "user", RoleUser.WireRole())
}

func TestRoleFromWireRejectsUnknown(t *testing.T) {
	_, ok := RoleFromWire("system")
	assert.False(t, ok)

	_, ok = RoleFromWire("ai")
	assert.False(t, ok, "internal name must not be accepted on the wire")
}

func TestToHistoryKeepsOrder(t *testing.T) {
	messages := []Message{
		{ID: "1", Role: RoleAssistant, Content: "Hello!"},
		{ID: "2", Role: RoleUser, Content: "Do you teach A-Level?"},
		{ID: "3", Role: RoleAssistant, Content: "Yes."},
	}

	history := ToHistory(messages)
	require.Len(t, history, 3)
	for i, entry := range history {
		role, ok := RoleFromWire(entry.Role)
		require.True(t, ok)
		assert.Equal(t, messages[i].Role, role)
		assert.Equal(t, messages[i].Content, entry.Content)
	}
}
