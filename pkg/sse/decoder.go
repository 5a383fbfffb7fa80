// Package sse decodes the chat backend's server-sent-event stream.
//
// Records are separated by a blank line. A record that starts with "data:"
// carries either the terminal marker [DONE] or a JSON object whose "content"
// string is one fragment of the assistant reply.
package sse

import (
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"
)

const (
	DataPrefix = "data:"
	DoneMarker = "[DONE]"

	delimiter = "\n\n"
)

// Kind tags a decoded Event.
type Kind int

const (
	KindFragment Kind = iota
	KindTerminal
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindFragment:
		return "fragment"
	case KindTerminal:
		return "terminal"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// ErrMissingContent is reported for payloads that are valid JSON but carry no
// string "content" field.
var ErrMissingContent = errors.New("payload has no content field")

// Event is one record parsed out of the stream.
type Event struct {
	Kind    Kind
	Content string
	Raw     string
	Err     error
}

type fragmentPayload struct {
	Content *string `json:"content"`
}

// ParsePayload classifies a data payload with the record prefix already removed.
func ParsePayload(payload string) Event {
	if strings.TrimSpace(payload) == DoneMarker {
		return Event{Kind: KindTerminal, Raw: payload}
	}

	var p fragmentPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return Event{Kind: KindMalformed, Raw: payload, Err: err}
	}
	if p.Content == nil {
		return Event{Kind: KindMalformed, Raw: payload, Err: ErrMissingContent}
	}
	return Event{Kind: KindFragment, Content: *p.Content, Raw: payload}
}

// Decoder is the incremental state machine behind Reader. It keeps the bytes
// of a multi-byte character cut by a chunk boundary and the text after the
// last delimiter until the next Feed.
type Decoder struct {
	pending []byte
	residue string
	done    bool
}

// Done reports whether the terminal marker has been seen.
func (d *Decoder) Done() bool {
	return d.done
}

// Feed consumes one chunk and returns the complete records it closed, in
// arrival order. Nothing is returned once the terminal marker was seen.
func (d *Decoder) Feed(chunk []byte) []Event {
	if d.done {
		return nil
	}

	text := d.decode(chunk)
	buf := strings.ReplaceAll(d.residue+text, "\r\n", "\n")

	records := strings.Split(buf, delimiter)
	d.residue = records[len(records)-1]

	return d.process(records[:len(records)-1])
}

// Flush ends the stream. Leftover bytes are decoded with replacement
// characters and a trailing record without a closing delimiter is parsed
// like any other.
func (d *Decoder) Flush() []Event {
	if d.done {
		return nil
	}

	tail := d.residue
	if len(d.pending) > 0 {
		tail += strings.ToValidUTF8(string(d.pending), string(utf8.RuneError))
		d.pending = nil
	}
	d.residue = ""

	tail = strings.ReplaceAll(tail, "\r\n", "\n")
	return d.process(strings.Split(tail, delimiter))
}

func (d *Decoder) process(records []string) []Event {
	var events []Event
	for _, record := range records {
		payload, ok := dataPayload(record)
		if !ok {
			continue
		}

		ev := ParsePayload(payload)
		if ev.Kind == KindTerminal {
			d.done = true
			d.residue = ""
			d.pending = nil
			events = append(events, ev)
			return events
		}
		events = append(events, ev)
	}
	return events
}

// dataPayload strips the data prefix. Records without it (comments, other
// fields, blank padding) carry nothing for the transcript.
func dataPayload(record string) (string, bool) {
	record = strings.TrimLeft(record, "\n")
	if !strings.HasPrefix(record, DataPrefix) {
		return "", false
	}
	payload := strings.TrimPrefix(record, DataPrefix)
	payload = strings.TrimPrefix(payload, " ")
	return payload, true
}

// decode converts pending+chunk to text, holding back an incomplete trailing
// UTF-8 sequence for the next call.
func (d *Decoder) decode(chunk []byte) string {
	buf := append(d.pending, chunk...)
	cut := incompleteTail(buf)

	d.pending = append([]byte(nil), buf[cut:]...)
	return strings.ToValidUTF8(string(buf[:cut]), string(utf8.RuneError))
}

// incompleteTail returns the index where a truncated trailing rune starts,
// or len(b) when the buffer ends on a rune boundary.
func incompleteTail(b []byte) int {
	start := len(b) - (utf8.UTFMax - 1)
	if start < 0 {
		start = 0
	}
	for i := len(b) - 1; i >= start; i-- {
		if !utf8.RuneStart(b[i]) {
			continue
		}
		if utf8.FullRune(b[i:]) {
			return len(b)
		}
		return i
	}
	return len(b)
}
