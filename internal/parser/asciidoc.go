package parser

import (
	"regexp"
	"strings"

	"github.com/frherrer/vtc2tavern/internal/domain"
)

// AsciiDocParser extracts VTC scripts from [source,vtc] listing blocks in
// AsciiDoc documents.
type AsciiDocParser struct {
	tags       map[string]bool
	extensions []string
}

// NewAsciiDocParser creates an AsciiDocParser. Blocks are tagged "vtc" when
// no tags are given.
func NewAsciiDocParser(extensions []string, tags ...string) *AsciiDocParser {
	if len(extensions) == 0 {
		extensions = []string{".adoc", ".asciidoc"}
	}
	if len(tags) == 0 {
		tags = []string{"vtc"}
	}
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	return &AsciiDocParser{tags: set, extensions: extensions}
}

// SupportedExtensions returns the file extensions this parser handles.
func (p *AsciiDocParser) SupportedExtensions() []string {
	return p.extensions
}

var (
	// Matches [source,tag] and [source,tag,attr=...]
	asciidocSourceRe = regexp.MustCompile(`^\[source,\s*([^,\]\s]+)[^\]]*\]\s*$`)
	asciidocDelimRe  = regexp.MustCompile(`^----+\s*$`)
)

// Parse scans the document line by line. A tagged source directive must be
// followed by a ---- delimited listing; anything else is ignored. An
// unterminated listing runs to the end of the file.
func (p *AsciiDocParser) Parse(filePath string, content []byte) ([]domain.ScriptDocument, error) {
	lines := strings.Split(string(content), "\n")

	var scripts []domain.ScriptDocument
	for i := 0; i < len(lines); i++ {
		m := asciidocSourceRe.FindStringSubmatch(strings.TrimRight(lines[i], "\r"))
		if m == nil || !p.tags[m[1]] {
			continue
		}
		if i+1 >= len(lines) || !asciidocDelimRe.MatchString(lines[i+1]) {
			continue
		}

		i += 2
		start := i
		for i < len(lines) && !asciidocDelimRe.MatchString(lines[i]) {
			i++
		}

		// start is 0-based, so the listing begins on line start+1.
		script, err := ParseScript(filePath, strings.Join(lines[start:i], "\n")+"\n")
		if err != nil {
			return nil, shiftLine(err, start)
		}
		script.BodyLine += start
		scripts = append(scripts, *script)
	}

	return scripts, nil
}
