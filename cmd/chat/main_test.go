package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ebarney/aibarney/internal/model/chat"
	"github.com/ebarney/aibarney/internal/widget"
)

func replyServer(records ...string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, rec := range records {
			fmt.Fprint(w, rec)
			w.(http.Flusher).Flush()
		}
	}))
}

func newTestSetup(t *testing.T, endpoint string) (*widget.Widget, *widget.Bus, *console, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	ui := newConsole(&out, "AI-Barney")
	bus := widget.NewBus()
	w := widget.New(widget.Options{
		Endpoint: endpoint,
		Greeting: "Hello!",
		Bus:      bus,
		OnChange: ui.change,
		OnStatus: ui.status,
	})
	t.Cleanup(w.Close)
	return w, bus, ui, &out
}

func TestRunStreamsReplyAndCodeFooter(t *testing.T) {
	srv := replyServer(
		`data: {"content":"Try:\n\n`+"```"+`python\n"}`+"\n\n",
		`data: {"content":"print(1)\n`+"```"+`"}`+"\n\n",
		"data: [DONE]\n\n",
	)
	defer srv.Close()

	w, bus, ui, out := newTestSetup(t, srv.URL)
	in := strings.NewReader("Show me python\n/copy 1\n/quit\nignored\n")

	require.NoError(t, run(context.Background(), w, bus, ui, in))

	text := out.String()
	assert.Contains(t, text, "AI-Barney: Hello!\n")
	assert.Contains(t, text, "* Thinking...\n")
	assert.Contains(t, text, "AI-Barney: Try:")
	assert.Contains(t, text, "[code 1: python, 8 bytes, /copy 1]")
	assert.True(t, strings.HasSuffix(text, "print(1)\n"))
	assert.True(t, w.IsOpen())

	messages := w.Messages()
	require.Len(t, messages, 3)
	assert.Equal(t, chat.RoleUser, messages[1].Role)
}

func TestRunReportsTooLongInput(t *testing.T) {
	w, bus, ui, out := newTestSetup(t, "http://127.0.0.1:0")

	in := strings.NewReader(strings.Repeat("a", 251) + "\n")
	require.NoError(t, run(context.Background(), w, bus, ui, in))

	assert.Contains(t, out.String(), "! Max 250 characters\n")
	assert.Len(t, w.Messages(), 1)
}

func TestRunShowsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"detail":"AI service unavailable"}`)
	}))
	defer srv.Close()

	w, bus, ui, out := newTestSetup(t, srv.URL)
	require.NoError(t, run(context.Background(), w, bus, ui, strings.NewReader("hi\n")))

	assert.Contains(t, out.String(), "* AI service unavailable\n")
	assert.Equal(t, widget.PhaseErrored, w.Phase())
}

func TestOpenCommandUsesBus(t *testing.T) {
	w, bus, ui, out := newTestSetup(t, "http://127.0.0.1:0")

	require.NoError(t, run(context.Background(), w, bus, ui, strings.NewReader("/open\n/info\n")))

	assert.True(t, w.IsOpen())
	assert.Contains(t, out.String(), "session "+w.SessionID()+", 1 messages, idle")
}

func TestCopyWithoutBlocks(t *testing.T) {
	w, bus, ui, out := newTestSetup(t, "http://127.0.0.1:0")

	require.NoError(t, run(context.Background(), w, bus, ui, strings.NewReader("/copy 2\n/copy x\n")))

	assert.Contains(t, out.String(), "! no code block 2\n")
	assert.Contains(t, out.String(), "! usage: /copy N\n")
}
