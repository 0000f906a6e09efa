package config

import (
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/frherrer/vtc2tavern/internal/domain"
)

// Config is the top-level configuration struct.
type Config struct {
	Input   InputConfig   `yaml:"input" toml:"input"`
	Output  OutputConfig  `yaml:"output" toml:"output"`
	Convert ConvertConfig `yaml:"convert" toml:"convert"`
	Batch   BatchConfig   `yaml:"batch" toml:"batch"`
	Stub    StubConfig    `yaml:"stub" toml:"stub"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
	DryRun  bool          `yaml:"dry_run" toml:"dry_run"`
}

type InputConfig struct {
	Extensions         []string `yaml:"extensions" toml:"extensions"`
	MarkdownExtensions []string `yaml:"markdown_extensions" toml:"markdown_extensions"`
	AsciiDocExtensions []string `yaml:"asciidoc_extensions" toml:"asciidoc_extensions"`
	Exclude            []string `yaml:"exclude" toml:"exclude"`
	Recursive          *bool    `yaml:"recursive" toml:"recursive"` // pointer to distinguish unset from false
}

type OutputConfig struct {
	Extension      string `yaml:"extension" toml:"extension"`
	Overwrite      bool   `yaml:"overwrite" toml:"overwrite"`
	ValidateSchema bool   `yaml:"validate_schema" toml:"validate_schema"`
}

type ConvertConfig struct {
	URLPrefix            string              `yaml:"url_prefix" toml:"url_prefix"`
	Sentinel             string              `yaml:"sentinel" toml:"sentinel"`
	SourceIDHeader       string              `yaml:"source_id_header" toml:"source_id_header"`
	AccountIDHeader      string              `yaml:"account_id_header" toml:"account_id_header"`
	SourceIDPlaceholder  string              `yaml:"source_id_placeholder" toml:"source_id_placeholder"`
	AccountIDPlaceholder string              `yaml:"account_id_placeholder" toml:"account_id_placeholder"`
	AllowEmptyBlocks     bool                `yaml:"allow_empty_blocks" toml:"allow_empty_blocks"`
	Expectations         []ExpectationConfig `yaml:"expectations" toml:"expectations"`
}

// ExpectationConfig maps one "expect resp.<param>" parameter to a response
// field. Exactly one of Field (flat) or Path (nested) is set.
type ExpectationConfig struct {
	Param string   `yaml:"param" toml:"param"`
	Field string   `yaml:"field,omitempty" toml:"field,omitempty"`
	Path  []string `yaml:"path,omitempty" toml:"path,omitempty"`
	Type  string   `yaml:"type" toml:"type"` // "string", "int" or "unquoted"
}

type BatchConfig struct {
	Workers int `yaml:"workers" toml:"workers"` // 0 means one per CPU
}

type StubConfig struct {
	InputExtension string `yaml:"input_extension" toml:"input_extension"`
	Extension      string `yaml:"extension" toml:"extension"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	File   string `yaml:"file" toml:"file"`
	Format string `yaml:"format" toml:"format"` // "text" or "json"
}

// Load reads a YAML or TOML configuration file and returns a Config.
// The format is chosen by file extension; anything but .toml is YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewError("config", path, 0, "failed to read config file", err)
	}

	cfg := DefaultConfig()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, domain.NewError("config", path, 0, "failed to parse config file", err)
	}

	return cfg, nil
}

// SourceExtensions lists every extension the scanner picks up: plain
// scripts first, then Markdown and AsciiDoc containers.
func (c *InputConfig) SourceExtensions() []string {
	out := make([]string, 0, len(c.Extensions)+len(c.MarkdownExtensions)+len(c.AsciiDocExtensions))
	out = append(out, c.Extensions...)
	out = append(out, c.MarkdownExtensions...)
	return append(out, c.AsciiDocExtensions...)
}

// IsRecursive reports the effective recursive setting.
func (c *InputConfig) IsRecursive() bool {
	return c.Recursive != nil && *c.Recursive
}

// FieldMappings turns the configured expectation table into tagged domain
// mappings.
func (c *ConvertConfig) FieldMappings() ([]domain.FieldMapping, error) {
	out := make([]domain.FieldMapping, 0, len(c.Expectations))
	for _, e := range c.Expectations {
		m := domain.FieldMapping{Param: e.Param}
		switch {
		case e.Field != "" && len(e.Path) == 0:
			m.Kind = domain.FieldFlat
			m.Path = []string{e.Field}
		case e.Field == "" && len(e.Path) > 1:
			m.Kind = domain.FieldNested
			m.Path = append([]string(nil), e.Path...)
		case e.Field == "" && len(e.Path) == 1:
			m.Kind = domain.FieldFlat
			m.Path = append([]string(nil), e.Path...)
		default:
			return nil, domain.NewError("config", "", 0,
				"expectation "+e.Param+" must set exactly one of field or path", nil)
		}

		t, err := parseValueType(e.Type)
		if err != nil {
			return nil, domain.NewError("config", "", 0, "expectation "+e.Param, err)
		}
		m.Type = t
		out = append(out, m)
	}
	return out, nil
}

func parseValueType(s string) (domain.ValueType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "string":
		return domain.ValueString, nil
	case "int", "integer":
		return domain.ValueInt, nil
	case "unquoted":
		return domain.ValueUnquoted, nil
	}
	return 0, &domain.Error{Phase: "config", Message: "unknown value type " + s}
}
