// Package render turns assistant replies into HTML and pulls out the fenced
// code blocks that get a copy button.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// CodeBlock is one fenced block. Language is "" when the fence has no info string.
type CodeBlock struct {
	Language string
	Code     string
}

// Renderer converts GitHub-flavoured markdown. Raw HTML in replies is not
// passed through.
type Renderer struct {
	md goldmark.Markdown
}

func New() *Renderer {
	return &Renderer{
		md: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// HTML renders content. It is safe to call on a partial reply.
func (r *Renderer) HTML(content string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// CodeBlocks returns fenced blocks in document order with the trailing
// newline removed.
func (r *Renderer) CodeBlocks(content string) []CodeBlock {
	src := []byte(content)
	doc := r.md.Parser().Parse(text.NewReader(src))

	var blocks []CodeBlock
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var code strings.Builder
		lines := fenced.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			code.Write(seg.Value(src))
		}
		blocks = append(blocks, CodeBlock{
			Language: string(fenced.Language(src)),
			Code:     strings.TrimSuffix(code.String(), "\n"),
		})
		return ast.WalkSkipChildren, nil
	})
	return blocks
}
