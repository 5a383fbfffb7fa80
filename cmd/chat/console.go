package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebarney/aibarney/internal/model/chat"
	"github.com/ebarney/aibarney/internal/render"
	"github.com/ebarney/aibarney/internal/widget"
)

const nudgeText = "Questions? Ask AI-Barney."

// console draws the widget on a terminal. Callbacks arrive from the send
// loop and from the nudge timer, so writes are serialized.
type console struct {
	mu       sync.Mutex
	out      io.Writer
	name     string
	renderer *render.Renderer
}

func newConsole(out io.Writer, name string) *console {
	return &console{out: out, name: name, renderer: render.New()}
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) message(msg chat.Message) {
	if msg.Role == chat.RoleAssistant {
		c.printf("%s: %s\n", c.name, msg.Content)
		return
	}
	c.printf("you: %s\n", msg.Content)
}

// change is the transcript render hook.
func (c *console) change(ch widget.Change) {
	if ch.Message.Role != chat.RoleAssistant {
		return
	}
	switch ch.Kind {
	case widget.ChangeAppended:
		c.printf("%s: %s", c.name, ch.Fragment)
	case widget.ChangeGrown:
		c.printf("%s", ch.Fragment)
	case widget.ChangeFrozen:
		c.printf("\n")
		c.codeBlocks(ch.Message.Content)
	}
}

func (c *console) codeBlocks(content string) {
	for i, block := range c.renderer.CodeBlocks(content) {
		lang := block.Language
		if lang == "" {
			lang = "text"
		}
		c.printf("  [code %d: %s, %d bytes, /copy %d]\n", i+1, lang, len(block.Code), i+1)
	}
}

func (c *console) status(s string) {
	if s == "" {
		return
	}
	c.printf("* %s\n", s)
}

func (c *console) nudge(visible bool) {
	if visible {
		c.printf("%s\n", nudgeText)
	}
}
