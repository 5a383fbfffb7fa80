package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ebarney/aibarney/internal/model/chat"
)

// maxErrorBody caps how much of a failed response is read for its detail.
const maxErrorBody = 64 << 10

// ChatRequest is the body of the outbound POST.
type ChatRequest struct {
	Message   []chat.HistoryEntry `json:"message"`
	SessionID string              `json:"session_id"`
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// Dispatcher issues one chat request per turn. It never retries.
type Dispatcher struct {
	endpoint string
	hc       *http.Client
}

// NewDispatcher posts to endpoint using hc, or a client without timeout when
// hc is nil. Streams may legitimately run for a long time.
func NewDispatcher(endpoint string, hc *http.Client) *Dispatcher {
	if hc == nil {
		hc = &http.Client{}
	}
	return &Dispatcher{endpoint: endpoint, hc: hc}
}

// Send posts the full history and returns the streaming response body. The
// caller must close it. Failures are *TransportError.
func (d *Dispatcher) Send(ctx context.Context, history []chat.HistoryEntry, sessionID string) (io.ReadCloser, error) {
	body, err := json.Marshal(ChatRequest{Message: history, SessionID: sessionID})
	if err != nil {
		return nil, fmt.Errorf("marshaling chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := d.hc.Do(req)
	if err != nil {
		return nil, &TransportError{Message: MsgRequestFailed, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, &TransportError{
			StatusCode: resp.StatusCode,
			Message:    errorDetail(resp.Body),
		}
	}

	if resp.Body == nil || resp.Body == http.NoBody {
		if resp.Body != nil {
			resp.Body.Close()
		}
		return nil, &TransportError{Message: MsgNoReader, Err: ErrNoReader}
	}

	return resp.Body, nil
}

// errorDetail extracts a string "detail" field, falling back to the generic
// server error for anything else.
func errorDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return MsgServerError
	}

	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return MsgServerError
	}

	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err != nil || detail == "" {
		return MsgServerError
	}
	return detail
}
