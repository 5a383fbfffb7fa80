package sse

import (
	"errors"
	"fmt"
	"io"

	"github.com/ebarney/aibarney/pkg/logger"
)

const defaultReadSize = 4096

// Reader yields assistant fragments from a streamed response body, one Recv
// at a time. Malformed records are logged and skipped.
type Reader struct {
	src   io.Reader
	dec   Decoder
	buf   []byte
	queue []Event
	eof   bool
	err   error

	skipped int
}

// NewReader wraps a response body.
func NewReader(r io.Reader) *Reader {
	return &Reader{src: r, buf: make([]byte, defaultReadSize)}
}

// Recv returns the next fragment. It returns io.EOF after the terminal marker
// or when the body ends; any other error comes from reading the body.
func (r *Reader) Recv() (string, error) {
	for {
		for len(r.queue) > 0 {
			ev := r.queue[0]
			r.queue = r.queue[1:]

			switch ev.Kind {
			case KindFragment:
				return ev.Content, nil
			case KindTerminal:
				r.queue = nil
				return "", io.EOF
			case KindMalformed:
				r.skipped++
				logger.Warnw("[stream] dropping malformed event", "payload", ev.Raw, "error", ev.Err)
			}
		}

		if r.err != nil {
			return "", r.err
		}
		if r.eof || r.dec.Done() {
			return "", io.EOF
		}

		n, err := r.src.Read(r.buf)
		if n > 0 {
			r.queue = append(r.queue, r.dec.Feed(r.buf[:n])...)
		}
		if errors.Is(err, io.EOF) {
			r.eof = true
			r.queue = append(r.queue, r.dec.Flush()...)
			continue
		}
		if err != nil {
			// fragments decoded from this read are still delivered first
			r.err = fmt.Errorf("read stream: %w", err)
		}
	}
}

// Skipped counts the malformed records dropped so far.
func (r *Reader) Skipped() int {
	return r.skipped
}
