package chat_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/ebarney/aibarney/internal/model/chat"
	chat "github.com/ebarney/aibarney/internal/service/chat"
)

func TestServiceLogAndTranscript(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	_, err := svc.LogMessage(ctx, "s-1", model.RoleUser, "Do you teach A-Level?")
	require.NoError(t, err)
	_, err = svc.LogMessage(ctx, "s-1", model.RoleAssistant, "Yes.")
	require.NoError(t, err)

	entries, err := svc.Transcript(ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.RoleUser, entries[0].Source)
	assert.Equal(t, "Yes.", entries[1].Message)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)

	session, err := svc.GetSession(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "s-1", session.ID)
	assert.Equal(t, entries[0].CreatedAt, session.CreatedAt)
}

func TestServiceRejectsMissingSession(t *testing.T) {
	svc := chat.NewService()

	_, err := svc.LogMessage(context.Background(), "  ", model.RoleUser, "hi")
	assert.ErrorIs(t, err, chat.ErrSessionRequired)
}

func TestServiceRejectsUnknownSource(t *testing.T) {
	svc := chat.NewService()

	_, err := svc.LogMessage(context.Background(), "s-1", model.Role("system"), "hi")
	assert.ErrorIs(t, err, chat.ErrUnknownSource)
}

func TestServiceGetSessionNotFound(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	_, err := svc.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, chat.ErrSessionNotFound)
	_, err = svc.Transcript(ctx, "missing")
	assert.ErrorIs(t, err, chat.ErrSessionNotFound)
}

func TestServiceTranscriptIsCopy(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()
	_, err := svc.LogMessage(ctx, "s-1", model.RoleUser, "hi")
	require.NoError(t, err)

	entries, err := svc.Transcript(ctx, "s-1")
	require.NoError(t, err)
	entries[0].Message = "changed"

	again, err := svc.Transcript(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "hi", again[0].Message)
}

func TestServiceConcurrentLogging(t *testing.T) {
	svc := chat.NewService()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.LogMessage(ctx, fmt.Sprintf("s-%d", i%4), model.RoleUser, "hi")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 4; i++ {
		entries, err := svc.Transcript(ctx, fmt.Sprintf("s-%d", i))
		require.NoError(t, err)
		assert.Len(t, entries, 5)
	}
}
