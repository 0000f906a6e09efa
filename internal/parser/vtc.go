package parser

import (
	"fmt"
	"iter"
	"regexp"
	"strings"

	"github.com/frherrer/vtc2tavern/internal/domain"
)

var (
	// declarationRe matches the leading `varnishtest "<name>"` line.
	declarationRe = regexp.MustCompile(`\A\s*varnishtest[ \t]*"([^"\n]*)"[ \t]*(?:\r?\n|\z)`)

	// blockRe matches one client block. Groups: 1 label above, 2 client id,
	// 3 label inside, 4 body. The closing brace must start its own line.
	blockRe = regexp.MustCompile(`(?m)^(?:[ \t]*#[ \t]*([^\n]*?)[ \t]*\r?\n)?[ \t]*client[ \t]+(\S+?)[ \t]*\{\s*(?:#[ \t]*([^\n]*?)[ \t]*(?:\r?\n|$))?((?s:.*?))^[ \t]*\}`)

	// caseRe matches one txreq ... rxresp interaction. Groups: 1 method,
	// 2 url, 3 header attachments, 4 expect lines.
	caseRe = regexp.MustCompile(`(?m)txreq[ \t]+-req[ \t]+"?([A-Z]+)"?[ \t]+-url[ \t]+"?([A-Za-z0-9/_.\-]+)"?` +
		`((?:[ \t]*(?:\\[ \t]*\r?\n[ \t]*)?-hdr[ \t]*"(?:[^"\\\n]|\\.)*")*)` +
		`\s*rxresp[ \t]*\r?\n` +
		`((?:^\s*expect[^\n]*\n)*)`)

	// headerRe matches a single -hdr "..." attachment.
	headerRe = regexp.MustCompile(`-hdr[ \t]*"((?:[^"\\\n]|\\.)*)"`)

	vtcUnescaper = strings.NewReplacer(`\\`, `\`, `\"`, `"`)
)

// ParseScript splits a VTC file into its test name and body.
func ParseScript(filePath string, content string) (*domain.ScriptDocument, error) {
	m := declarationRe.FindStringSubmatchIndex(content)
	if m == nil {
		return nil, domain.NewErrorWithSuggestion("parse", filePath, 1,
			"file does not start with a varnishtest declaration",
			`the first statement must be: varnishtest "<test name>"`,
			domain.ErrMissingDeclaration)
	}

	return &domain.ScriptDocument{
		SourcePath: filePath,
		TestName:   content[m[2]:m[3]],
		Body:       content[m[1]:],
		BodyLine:   lineAt(content, m[1]),
	}, nil
}

// Blocks yields the client blocks of a script in source order. A block
// labelled both above and inside its braces stops the sequence with
// domain.ErrAmbiguousLabel.
func Blocks(script *domain.ScriptDocument) iter.Seq2[domain.Block, error] {
	return func(yield func(domain.Block, error) bool) {
		body := script.Body
		for _, m := range blockRe.FindAllStringSubmatchIndex(body, -1) {
			above := group(body, m, 1)
			inside := group(body, m, 3)
			block := domain.Block{
				ID:       group(body, m, 2),
				Body:     group(body, m, 4),
				Line:     script.BodyLine + lineAt(body, m[4]) - 1,
				BodyLine: script.BodyLine + lineAt(body, m[8]) - 1,
			}

			if above != "" && inside != "" {
				yield(domain.Block{}, domain.NewErrorWithSuggestion("parse", script.SourcePath, block.Line,
					fmt.Sprintf("client %s is labelled both above (%q) and inside (%q) its braces", block.ID, above, inside),
					"keep only one of the two comments",
					domain.ErrAmbiguousLabel))
				return
			}
			block.Label = above
			if block.Label == "" {
				block.Label = inside
			}

			if !yield(block, nil) {
				return
			}
		}
	}
}

// Cases yields the txreq/rxresp interactions of a block in source order.
// A block without any case yields a single domain.ErrNoCases error.
func Cases(block domain.Block) iter.Seq2[domain.Case, error] {
	return func(yield func(domain.Case, error) bool) {
		matches := caseRe.FindAllStringSubmatchIndex(block.Body, -1)
		if len(matches) == 0 {
			yield(domain.Case{}, domain.NewError("parse", "", block.Line,
				fmt.Sprintf("client %s has no txreq/rxresp case", block.ID),
				domain.ErrNoCases))
			return
		}

		base := block.BodyLine
		if base == 0 {
			base = block.Line
		}
		for _, m := range matches {
			c := domain.Case{
				Method:   group(block.Body, m, 1),
				URL:      group(block.Body, m, 2),
				Headers:  group(block.Body, m, 3),
				Response: group(block.Body, m, 4),
				Line:     base + lineAt(block.Body, m[0]) - 1,
			}
			if !yield(c, nil) {
				return
			}
		}
	}
}

// Headers splits a case's raw header attachments into key/value pairs.
// VTC string escapes are decoded; values keep their leading whitespace.
// Attachments without a "Key:" prefix are returned in skipped, verbatim.
func Headers(raw string) (headers []domain.HeaderEntry, skipped []string) {
	for _, m := range headerRe.FindAllStringSubmatch(raw, -1) {
		key, value, ok := strings.Cut(m[1], ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			skipped = append(skipped, m[1])
			continue
		}
		headers = append(headers, domain.HeaderEntry{
			Key:   key,
			Value: vtcUnescaper.Replace(value),
		})
	}
	return headers, skipped
}

// group returns submatch i of m in s, or "" when it did not participate.
func group(s string, m []int, i int) string {
	if m[2*i] < 0 {
		return ""
	}
	return s[m[2*i]:m[2*i+1]]
}

// lineAt returns the 1-based line number of byte offset off in s.
func lineAt(s string, off int) int {
	return strings.Count(s[:off], "\n") + 1
}
