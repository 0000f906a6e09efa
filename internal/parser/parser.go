package parser

import (
	"fmt"
	"strings"
	"sync"

	"github.com/frherrer/vtc2tavern/internal/domain"
)

// Parser extracts VTC scripts from a source file.
type Parser interface {
	Parse(filePath string, content []byte) ([]domain.ScriptDocument, error)
	SupportedExtensions() []string
}

// ParserRegistry maps file extensions to parsers.
type ParserRegistry interface {
	Register(parser Parser)
	ParserFor(extension string) (Parser, error)
}

// DefaultRegistry is a thread-safe parser registry.
type DefaultRegistry struct {
	mu      sync.RWMutex
	parsers map[string]Parser
}

// NewRegistry creates a new DefaultRegistry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		parsers: make(map[string]Parser),
	}
}

// Register adds a parser to the registry for each of its supported extensions.
func (r *DefaultRegistry) Register(p Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range p.SupportedExtensions() {
		r.parsers[normalizeExt(ext)] = p
	}
}

// ParserFor returns the parser registered for the given file extension.
func (r *DefaultRegistry) ParserFor(extension string) (Parser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if p, ok := r.parsers[normalizeExt(extension)]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("no parser registered for extension %q", extension)
}

// Extensions lists every registered extension with its leading dot.
func (r *DefaultRegistry) Extensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.parsers))
	for ext := range r.parsers {
		out = append(out, "."+ext)
	}
	return out
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// VTCParser reads plain VTC files holding exactly one script.
type VTCParser struct {
	extensions []string
}

// NewVTCParser creates a VTCParser for the given extensions (".vtc" when none).
func NewVTCParser(extensions ...string) *VTCParser {
	if len(extensions) == 0 {
		extensions = []string{".vtc"}
	}
	return &VTCParser{extensions: extensions}
}

// SupportedExtensions returns the file extensions this parser handles.
func (p *VTCParser) SupportedExtensions() []string {
	return p.extensions
}

// Parse parses the file as a single VTC script.
func (p *VTCParser) Parse(filePath string, content []byte) ([]domain.ScriptDocument, error) {
	script, err := ParseScript(filePath, string(content))
	if err != nil {
		return nil, err
	}
	return []domain.ScriptDocument{*script}, nil
}
