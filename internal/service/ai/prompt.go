package ai

import (
	"fmt"
	"strings"

	"github.com/ebarney/aibarney/internal/model/persona"
)

// BuildSystemPrompt renders the persona into the system message. The
// knowledge block is the only context the model may answer from.
func BuildSystemPrompt(p persona.Persona) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a %s.\n\n", p.Name, p.Title)
	b.WriteString("YOUR GOAL:\nAnswer the user's question using ONLY the provided context.\n\n")
	b.WriteString("PERSONA & TONE:\n")
	b.WriteString("- Helpful and direct, like a text message from a surprisingly efficient assistant.\n")
	b.WriteString("- No emojis. Short sentences. Not overly formal.\n")
	b.WriteString("- Bold key numbers so they stand out.\n")

	if len(p.Rules) > 0 {
		b.WriteString("\nRULES (STRICT):\n")
		for i, rule := range p.Rules {
			fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
		}
	}

	if len(p.Knowledge) > 0 {
		b.WriteString("\nCONTEXT DATA:\n")
		for _, fact := range p.Knowledge {
			b.WriteString("- ")
			b.WriteString(fact)
			b.WriteString("\n")
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
