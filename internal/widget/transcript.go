package widget

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ebarney/aibarney/internal/model/chat"
)

// ChangeKind tells the view what happened to the transcript.
type ChangeKind int

const (
	// ChangeAppended means a new message was added at the end.
	ChangeAppended ChangeKind = iota
	// ChangeGrown means a fragment was appended to the open assistant message.
	ChangeGrown
	// ChangeFrozen means the open assistant message stopped streaming.
	ChangeFrozen
)

// Change is delivered to observers after every mutation. Message is a copy
// taken right after the mutation.
type Change struct {
	Kind     ChangeKind
	Message  chat.Message
	Fragment string
}

// Transcript is the ordered, append-only conversation. Only the most recent
// assistant message may still be growing.
type Transcript struct {
	mu        sync.RWMutex
	messages  []chat.Message
	openID    string
	observers map[int]func(Change)
	nextObs   int

	now func() time.Time
}

// NewTranscript returns a transcript seeded with the introductory assistant message.
func NewTranscript(greeting string) *Transcript {
	t := &Transcript{
		messages:  make([]chat.Message, 0, 16),
		observers: make(map[int]func(Change)),
		now:       time.Now,
	}
	if greeting != "" {
		t.messages = append(t.messages, chat.Message{
			ID:        uuid.NewString(),
			Role:      chat.RoleAssistant,
			Content:   greeting,
			CreatedAt: t.now(),
		})
	}
	return t
}

// Subscribe registers fn for every future change and returns an unsubscribe func.
func (t *Transcript) Subscribe(fn func(Change)) func() {
	t.mu.Lock()
	id := t.nextObs
	t.nextObs++
	t.observers[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.observers, id)
		t.mu.Unlock()
	}
}

// AppendUser adds a user message. Blank text is a caller bug; the input
// guard rejects it earlier.
func (t *Transcript) AppendUser(text string) (chat.Message, error) {
	if strings.TrimSpace(text) == "" {
		return chat.Message{}, ErrEmptyMessage
	}

	t.mu.Lock()
	if t.openID != "" {
		t.mu.Unlock()
		return chat.Message{}, ErrTurnOpen
	}
	msg := chat.Message{
		ID:        uuid.NewString(),
		Role:      chat.RoleUser,
		Content:   text,
		CreatedAt: t.now(),
	}
	t.messages = append(t.messages, msg)
	observers := t.snapshotObservers()
	t.mu.Unlock()

	notify(observers, Change{Kind: ChangeAppended, Message: msg})
	return msg, nil
}

// BeginAssistant opens a new assistant message seeded with the first fragment.
func (t *Transcript) BeginAssistant(fragment string) (chat.Message, error) {
	t.mu.Lock()
	if t.openID != "" {
		t.mu.Unlock()
		return chat.Message{}, ErrTurnOpen
	}
	msg := chat.Message{
		ID:        uuid.NewString(),
		Role:      chat.RoleAssistant,
		Content:   fragment,
		CreatedAt: t.now(),
	}
	t.messages = append(t.messages, msg)
	t.openID = msg.ID
	observers := t.snapshotObservers()
	t.mu.Unlock()

	notify(observers, Change{Kind: ChangeAppended, Message: msg, Fragment: fragment})
	return msg, nil
}

// GrowAssistant appends fragment to the open assistant message identified by id.
func (t *Transcript) GrowAssistant(id, fragment string) error {
	t.mu.Lock()
	if id == "" || id != t.openID {
		t.mu.Unlock()
		return ErrNotOpen
	}
	last := len(t.messages) - 1
	t.messages[last].Content += fragment
	msg := t.messages[last]
	observers := t.snapshotObservers()
	t.mu.Unlock()

	notify(observers, Change{Kind: ChangeGrown, Message: msg, Fragment: fragment})
	return nil
}

// EndAssistant freezes the open assistant message.
func (t *Transcript) EndAssistant(id string) error {
	t.mu.Lock()
	if id == "" || id != t.openID {
		t.mu.Unlock()
		return ErrNotOpen
	}
	t.openID = ""
	msg := t.messages[len(t.messages)-1]
	observers := t.snapshotObservers()
	t.mu.Unlock()

	notify(observers, Change{Kind: ChangeFrozen, Message: msg})
	return nil
}

// OpenID returns the id of the streaming assistant message, or "".
func (t *Transcript) OpenID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.openID
}

// Messages returns a copy of the transcript in display order.
func (t *Transcript) Messages() []chat.Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	copied := make([]chat.Message, len(t.messages))
	copy(copied, t.messages)
	return copied
}

// Len returns the number of messages.
func (t *Transcript) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.messages)
}

// HistoryPayload is the transcript in wire vocabulary, ready to send.
func (t *Transcript) HistoryPayload() []chat.HistoryEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return chat.ToHistory(t.messages)
}

func (t *Transcript) snapshotObservers() []func(Change) {
	observers := make([]func(Change), 0, len(t.observers))
	for id := 0; id < t.nextObs; id++ {
		if fn, ok := t.observers[id]; ok {
			observers = append(observers, fn)
		}
	}
	return observers
}

func notify(observers []func(Change), change Change) {
	for _, fn := range observers {
		fn(change)
	}
}
