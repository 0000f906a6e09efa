package parser

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/frherrer/vtc2tavern/internal/domain"
)

// MarkdownParser extracts VTC scripts from fenced code blocks in Markdown
// documents. Every block whose info string starts with one of the tags is
// one script.
type MarkdownParser struct {
	tags       map[string]bool
	extensions []string
}

// NewMarkdownParser creates a MarkdownParser. Blocks are tagged "vtc" when
// no tags are given.
func NewMarkdownParser(extensions []string, tags ...string) *MarkdownParser {
	if len(extensions) == 0 {
		extensions = []string{".md", ".markdown"}
	}
	if len(tags) == 0 {
		tags = []string{"vtc"}
	}
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	return &MarkdownParser{tags: set, extensions: extensions}
}

// SupportedExtensions returns the file extensions this parser handles.
func (p *MarkdownParser) SupportedExtensions() []string {
	return p.extensions
}

// Parse walks the Markdown AST and parses each tagged fenced block as a VTC
// script. A document without tagged blocks yields no scripts.
func (p *MarkdownParser) Parse(filePath string, content []byte) ([]domain.ScriptDocument, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(content))

	var scripts []domain.ScriptDocument
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := n.(*ast.FencedCodeBlock)
		if !ok || !p.tags[string(fence.Language(content))] {
			return ast.WalkContinue, nil
		}

		lines := fence.Lines()
		if lines.Len() == 0 {
			return ast.WalkSkipChildren, nil
		}
		var buf bytes.Buffer
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(content))
		}

		script, err := ParseScript(filePath, buf.String())
		if err != nil {
			return ast.WalkStop, shiftLine(err, lineNumber(content, lines.At(0).Start)-1)
		}
		script.BodyLine += lineNumber(content, lines.At(0).Start) - 1
		scripts = append(scripts, *script)
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}

	return scripts, nil
}

// lineNumber converts a byte offset into a 1-based line number.
func lineNumber(content []byte, offset int) int {
	return bytes.Count(content[:offset], []byte("\n")) + 1
}

// shiftLine moves the line of a domain error by delta lines.
func shiftLine(err error, delta int) error {
	if de, ok := err.(*domain.Error); ok && de.LineNumber > 0 {
		cp := *de
		cp.LineNumber += delta
		return &cp
	}
	return err
}
