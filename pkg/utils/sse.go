package utils

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ebarney/aibarney/pkg/logger"
	"github.com/ebarney/aibarney/pkg/sse"
)

// ContentChunk is the payload of one streamed fragment.
type ContentChunk struct {
	Content string `json:"content"`
}

// SendSSEChunk writes one data record and flushes it to the client.
func SendSSEChunk(w http.ResponseWriter, flusher http.Flusher, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Errorf("failed to marshal sse payload: %v", err)
		return err
	}

	if _, err := fmt.Fprintf(w, "%s %s\n\n", sse.DataPrefix, data); err != nil {
		return fmt.Errorf("write sse record: %w", err)
	}
	flusher.Flush()
	return nil
}

// SendSSEDone writes the terminal marker.
func SendSSEDone(w http.ResponseWriter, flusher http.Flusher) error {
	if _, err := fmt.Fprintf(w, "%s %s\n\n", sse.DataPrefix, sse.DoneMarker); err != nil {
		return fmt.Errorf("write sse terminator: %w", err)
	}
	flusher.Flush()
	return nil
}

// SetupSSEHeaders sets the Server-Sent Events response headers.
func SetupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}
