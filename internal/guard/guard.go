// Package guard enforces the chat message length limit on both sides of the wire.
package guard

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// DefaultMaxLength is the widget's character limit.
const DefaultMaxLength = 250

// nearLimitMargin is how close to the limit the counter starts warning.
const nearLimitMargin = 30

// Reason tells why a message was rejected.
type Reason int

const (
	ReasonEmpty Reason = iota
	ReasonTooLong
)

// ValidationError rejects a message before it reaches the network.
type ValidationError struct {
	Reason Reason
	Limit  int
	Length int
}

func (e *ValidationError) Error() string {
	if e.Reason == ReasonTooLong {
		return TooLongMessage(e.Limit)
	}
	return "message is empty"
}

// TooLongMessage is the inline error shown next to the input.
func TooLongMessage(limit int) string {
	return fmt.Sprintf("Max %d characters", limit)
}

// Guard validates user input against a fixed maximum.
type Guard struct {
	max int
}

// New returns a Guard for max characters; non-positive values use DefaultMaxLength.
func New(max int) Guard {
	if max < 1 {
		max = DefaultMaxLength
	}
	return Guard{max: max}
}

// Max returns the configured limit.
func (g Guard) Max() int {
	return g.max
}

// Length counts the characters of the trimmed text.
func (g Guard) Length(text string) int {
	return utf8.RuneCountInString(strings.TrimSpace(text))
}

// Validate returns the trimmed text that should be sent, or a *ValidationError.
func (g Guard) Validate(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	n := utf8.RuneCountInString(trimmed)
	if n == 0 {
		return "", &ValidationError{Reason: ReasonEmpty, Limit: g.max}
	}
	if n > g.max {
		return "", &ValidationError{Reason: ReasonTooLong, Limit: g.max, Length: n}
	}
	return trimmed, nil
}

// OverLimit reports whether text is too long to send.
func (g Guard) OverLimit(text string) bool {
	return g.Length(text) > g.max
}

// NearLimit reports whether the counter should warn.
func (g Guard) NearLimit(text string) bool {
	return g.Length(text) > g.max-nearLimitMargin
}

// Progress is the fill percentage of the length counter, capped at 100.
func (g Guard) Progress(text string) float64 {
	p := float64(g.Length(text)) / float64(g.max) * 100
	if p > 100 {
		return 100
	}
	return p
}
