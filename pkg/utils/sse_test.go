package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebarney/aibarney/pkg/sse"
)

func TestSendSSEChunkRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()

	require.NoError(t, SendSSEChunk(rec, rec, ContentChunk{Content: "line one\n\nline two"}))
	require.NoError(t, SendSSEChunk(rec, rec, ContentChunk{Content: "£38"}))
	require.NoError(t, SendSSEDone(rec, rec))

	assert.True(t, rec.Flushed)

	reader := sse.NewReader(strings.NewReader(rec.Body.String()))
	var got []string
	for {
		fragment, err := reader.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, fragment)
	}

	assert.Equal(t, []string{"line one\n\nline two", "£38"}, got)
}

func TestRespondErrorUsesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusTooManyRequests, "rate limited")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "rate limited", body["detail"])
}
