// Package widget is the chat client behind the floating "Ask AI-Barney"
// widget: it validates input, posts the conversation to the backend and
// grows the assistant reply as the stream arrives.
package widget

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebarney/aibarney/internal/guard"
	"github.com/ebarney/aibarney/internal/model/chat"
	"github.com/ebarney/aibarney/pkg/logger"
	"github.com/ebarney/aibarney/pkg/sse"
)

// Options configures a Widget. Endpoint is required.
type Options struct {
	Endpoint         string
	HTTPClient       *http.Client
	MaxMessageLength int
	Greeting         string

	Bus        *Bus
	Nudge      NudgeStore
	NudgeDelay time.Duration

	// OnChange is the render hook, called once per transcript mutation.
	OnChange func(Change)
	// OnStatus receives the status line; "" means idle.
	OnStatus func(string)
	// OnNudge is called when the first-visit hint appears or goes away.
	OnNudge func(visible bool)
}

// Widget is one mounted chat widget.
type Widget struct {
	session    *Session
	transcript *Transcript
	guard      guard.Guard
	status     *StatusProjector
	dispatcher *Dispatcher

	mu           sync.Mutex
	open         bool
	input        string
	inputErr     string
	nudgeVisible bool
	nudgeTimer   *time.Timer
	nudge        NudgeStore
	onNudge      func(bool)

	ctx      context.Context
	cancel   context.CancelFunc
	closed   atomic.Bool
	inFlight atomic.Bool
	cleanup  []func()
}

// New mounts a widget: it creates the session, seeds the transcript and, on
// a first visit, schedules the nudge.
func New(opts Options) *Widget {
	ctx, cancel := context.WithCancel(context.Background())

	w := &Widget{
		session:    NewSession(),
		transcript: NewTranscript(opts.Greeting),
		guard:      guard.New(opts.MaxMessageLength),
		dispatcher: NewDispatcher(opts.Endpoint, opts.HTTPClient),
		nudge:      opts.Nudge,
		onNudge:    opts.OnNudge,
		ctx:        ctx,
		cancel:     cancel,
	}

	onStatus := opts.OnStatus
	w.status = NewStatusProjector(func(s string) {
		if onStatus != nil && !w.closed.Load() {
			onStatus(s)
		}
	})

	if opts.OnChange != nil {
		onChange := opts.OnChange
		w.cleanup = append(w.cleanup, w.transcript.Subscribe(func(c Change) {
			if !w.closed.Load() {
				onChange(c)
			}
		}))
	}

	if opts.Bus != nil {
		w.cleanup = append(w.cleanup, opts.Bus.Subscribe(SignalOpenChat, w.Open))
	}

	w.scheduleNudge(opts.NudgeDelay)

	logger.Infow("[widget] mounted", "session", w.session.ID())
	return w
}

// SessionID returns the id sent with every request.
func (w *Widget) SessionID() string {
	return w.session.ID()
}

// Messages returns a snapshot of the transcript.
func (w *Widget) Messages() []chat.Message {
	return w.transcript.Messages()
}

// Transcript exposes the store for views that want to subscribe directly.
func (w *Widget) Transcript() *Transcript {
	return w.transcript
}

// Guard returns the input guard, used by views to draw the length counter.
func (w *Widget) Guard() guard.Guard {
	return w.guard
}

// Status returns the status line; "" means idle.
func (w *Widget) Status() string {
	return w.status.Status()
}

// Phase returns the lifecycle stage of the current turn.
func (w *Widget) Phase() Phase {
	return w.status.Phase()
}

// Input returns the pending input text.
func (w *Widget) Input() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.input
}

// InputError returns the inline validation message, "" when there is none.
func (w *Widget) InputError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.inputErr
}

// SetInput records an edit of the input field. A stale error status is
// cleared unless a turn is in flight.
func (w *Widget) SetInput(text string) {
	if w.closed.Load() {
		return
	}
	w.status.InputEdited()

	w.mu.Lock()
	w.input = text
	if w.guard.OverLimit(text) {
		w.inputErr = guard.TooLongMessage(w.guard.Max())
	} else {
		w.inputErr = ""
	}
	w.mu.Unlock()
}

// CanSend reports whether the send button is enabled.
func (w *Widget) CanSend() bool {
	if w.closed.Load() || w.inFlight.Load() {
		return false
	}
	text := w.Input()
	return strings.TrimSpace(text) != "" && !w.guard.OverLimit(text)
}

// Submit sends the pending input, like pressing the send button.
func (w *Widget) Submit(ctx context.Context) error {
	return w.Send(ctx, w.Input())
}

// Send runs one turn: validate, append, post, then stream the reply into the
// transcript. It blocks until the reply is complete or the turn fails, and
// returns the failure that was projected to the status line.
func (w *Widget) Send(ctx context.Context, text string) error {
	if w.closed.Load() {
		return ErrClosed
	}
	if !w.inFlight.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer w.inFlight.Store(false)

	trimmed, err := w.guard.Validate(text)
	if err != nil {
		var verr *guard.ValidationError
		if errors.As(err, &verr) && verr.Reason == guard.ReasonTooLong {
			w.setInputError(verr.Error())
		}
		return err
	}

	if _, err := w.transcript.AppendUser(trimmed); err != nil {
		return err
	}
	w.mu.Lock()
	w.input = ""
	w.inputErr = ""
	w.mu.Unlock()
	w.status.Begin()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(w.ctx, cancel)
	defer stop()

	body, err := w.dispatcher.Send(ctx, w.transcript.HistoryPayload(), w.session.ID())
	if err != nil {
		return w.fail(err)
	}
	defer body.Close()

	return w.consume(body)
}

// consume applies fragments in arrival order until the stream ends.
func (w *Widget) consume(body io.Reader) error {
	reader := sse.NewReader(body)
	openID := ""
	defer func() {
		if openID != "" && !w.closed.Load() {
			_ = w.transcript.EndAssistant(openID)
		}
	}()

	for {
		fragment, err := reader.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if w.closed.Load() {
			return ErrClosed
		}
		if err != nil {
			return w.fail(&StreamReadError{Err: err})
		}

		if openID == "" {
			msg, err := w.transcript.BeginAssistant(fragment)
			if err != nil {
				return err
			}
			openID = msg.ID
			w.status.FirstFragment()
			continue
		}
		if err := w.transcript.GrowAssistant(openID, fragment); err != nil {
			return err
		}
	}

	if w.closed.Load() {
		return ErrClosed
	}
	if reader.Skipped() > 0 {
		logger.Warnw("[widget] reply had malformed events", "session", w.session.ID(), "skipped", reader.Skipped())
	}
	w.status.Finish()
	return nil
}

func (w *Widget) fail(err error) error {
	if w.closed.Load() {
		return ErrClosed
	}
	logger.Warnw("[widget] turn failed", "session", w.session.ID(), "error", err)

	w.status.Fail(err)
	if msg := StatusText(err); strings.Contains(strings.ToLower(msg), msgTooLongSubstring) {
		w.setInputError(msg)
	}
	return err
}

func (w *Widget) setInputError(msg string) {
	w.mu.Lock()
	w.inputErr = msg
	w.mu.Unlock()
}

// IsOpen reports whether the chat panel is shown.
func (w *Widget) IsOpen() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.open
}

// Open shows the panel; it is what the open-chat signal triggers.
func (w *Widget) Open() {
	if w.closed.Load() {
		return
	}
	w.mu.Lock()
	w.open = true
	w.mu.Unlock()
}

// Toggle flips the panel. Toggling while the nudge is showing dismisses it for good.
func (w *Widget) Toggle() {
	if w.closed.Load() {
		return
	}
	w.mu.Lock()
	w.open = !w.open
	dismiss := w.nudgeVisible
	w.mu.Unlock()

	if dismiss {
		w.DismissNudge()
	}
}

// NudgeVisible reports whether the first-visit hint is on screen.
func (w *Widget) NudgeVisible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.nudgeVisible && !w.open
}

// DismissNudge hides the hint and remembers it.
func (w *Widget) DismissNudge() {
	w.mu.Lock()
	wasVisible := w.nudgeVisible
	w.nudgeVisible = false
	if w.nudgeTimer != nil {
		w.nudgeTimer.Stop()
	}
	w.mu.Unlock()

	if w.nudge != nil {
		if err := w.nudge.MarkSeen(); err != nil {
			logger.Error("[widget] failed to persist nudge flag", err)
		}
	}
	if wasVisible && w.onNudge != nil && !w.closed.Load() {
		w.onNudge(false)
	}
}

func (w *Widget) scheduleNudge(delay time.Duration) {
	if w.nudge == nil {
		return
	}
	seen, err := w.nudge.Seen()
	if err != nil {
		logger.Error("[widget] failed to read nudge flag", err)
		return
	}
	if seen {
		return
	}

	w.mu.Lock()
	w.nudgeTimer = time.AfterFunc(delay, w.showNudge)
	w.mu.Unlock()
}

func (w *Widget) showNudge() {
	if w.closed.Load() {
		return
	}
	w.mu.Lock()
	w.nudgeVisible = true
	visible := !w.open
	w.mu.Unlock()

	if visible && w.onNudge != nil {
		w.onNudge(true)
	}
}

// Close unmounts the widget. An in-flight turn is cancelled and no callback
// fires afterwards.
func (w *Widget) Close() {
	if w.closed.Swap(true) {
		return
	}
	w.cancel()

	w.mu.Lock()
	if w.nudgeTimer != nil {
		w.nudgeTimer.Stop()
	}
	w.mu.Unlock()

	for _, fn := range w.cleanup {
		fn()
	}
	logger.Infow("[widget] closed", "session", w.session.ID())
}
