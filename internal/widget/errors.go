package widget

import (
	"errors"
	"fmt"

	"github.com/ebarney/aibarney/internal/guard"
)

// Status texts shown to the user.
const (
	StatusThinking      = "Thinking..."
	MsgServerError      = "Server error!"
	MsgNoReader         = "No reader available"
	MsgRequestFailed    = "Failed to get response"
	msgTooLongSubstring = "message too long"
)

var (
	ErrBusy         = errors.New("a message is already being answered")
	ErrClosed       = errors.New("chat widget closed")
	ErrNoReader     = errors.New("response has no readable body")
	ErrNotOpen      = errors.New("message is not the open assistant message")
	ErrTurnOpen     = errors.New("an assistant message is already open")
	ErrEmptyMessage = errors.New("user message must not be blank")
)

// TransportError is a failed request: a non-2xx answer, a connection that
// could not be established, or a response without a body.
type TransportError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("chat backend returned %d: %s", e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StreamReadError is a failure while the reply was streaming. Fragments
// applied before it stay in the transcript.
type StreamReadError struct {
	Err error
}

func (e *StreamReadError) Error() string {
	return fmt.Sprintf("reading reply stream: %v", e.Err)
}

func (e *StreamReadError) Unwrap() error {
	return e.Err
}

// StatusText maps a failure to the single status line.
func StatusText(err error) string {
	var verr *guard.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}

	var terr *TransportError
	if errors.As(err, &terr) && terr.Message != "" {
		return terr.Message
	}

	return MsgRequestFailed
}
