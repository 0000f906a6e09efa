package converter

import (
	"strings"

	"github.com/frherrer/vtc2tavern/internal/config"
	"github.com/frherrer/vtc2tavern/internal/domain"
)

// HeaderRules holds the sentinel substitutions applied to request headers.
type HeaderRules struct {
	Sentinel             string
	SourceIDHeader       string
	AccountIDHeader      string
	SourceIDPlaceholder  string
	AccountIDPlaceholder string
}

// HeaderRulesFrom builds HeaderRules from the convert configuration.
func HeaderRulesFrom(cfg *config.ConvertConfig) HeaderRules {
	return HeaderRules{
		Sentinel:             cfg.Sentinel,
		SourceIDHeader:       cfg.SourceIDHeader,
		AccountIDHeader:      cfg.AccountIDHeader,
		SourceIDPlaceholder:  cfg.SourceIDPlaceholder,
		AccountIDPlaceholder: cfg.AccountIDPlaceholder,
	}
}

// NormalizeHeader rewrites one request header. Sentinel ids under the
// source/account id headers become placeholders; every other value has its
// lone braces doubled.
func NormalizeHeader(key, value string, rules HeaderRules) domain.HeaderEntry {
	value = strings.TrimLeft(value, " \t")

	switch {
	case key == rules.SourceIDHeader && value == rules.Sentinel:
		return domain.HeaderEntry{Key: key, Value: rules.SourceIDPlaceholder}
	case key == rules.AccountIDHeader && value == rules.Sentinel:
		return domain.HeaderEntry{Key: key, Value: rules.AccountIDPlaceholder}
	}

	return domain.HeaderEntry{Key: key, Value: EscapeBraces(value)}
}

// EscapeBraces doubles unpaired '{' and '}' so the value survives Python
// str.format style templating. Each run of identical braces is padded to an
// even length, which leaves "{{" and "}}" untouched and makes the function
// idempotent.
func EscapeBraces(s string) string {
	if !strings.ContainsAny(s, "{}") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); {
		c := s[i]
		if c != '{' && c != '}' {
			b.WriteByte(c)
			i++
			continue
		}
		j := i
		for j < len(s) && s[j] == c {
			j++
		}
		b.WriteString(s[i:j])
		if (j-i)%2 == 1 {
			b.WriteByte(c)
		}
		i = j
	}
	return b.String()
}
