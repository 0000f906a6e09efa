package config

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	recursive := false
	return &Config{
		Input: InputConfig{
			Extensions:         []string{".vtc"},
			MarkdownExtensions: []string{".md", ".markdown"},
			AsciiDocExtensions: []string{".adoc", ".asciidoc"},
			Exclude:            []string{".git/**"},
			Recursive:          &recursive,
		},
		Output: OutputConfig{
			Extension:      ".tavern.yaml",
			Overwrite:      true,
			ValidateSchema: true,
		},
		Convert: ConvertConfig{
			URLPrefix:            "{protocol:s}://{deployed_domain:s}:{port:s}",
			Sentinel:             "000000000000000000000000",
			SourceIDHeader:       "X-IXSource-SourceID",
			AccountIDHeader:      "X-IXSource-AccountID",
			SourceIDPlaceholder:  "{source_id:s}",
			AccountIDPlaceholder: "{account_id:s}",
			AllowEmptyBlocks:     false,
			Expectations: []ExpectationConfig{
				{Param: "status", Field: "status_code", Type: "int"},
				{Param: "body", Path: []string{"json", "body"}, Type: "unquoted"},
			},
		},
		Batch: BatchConfig{
			Workers: 1,
		},
		Stub: StubConfig{
			InputExtension: ".vtc",
			Extension:      ".tavern.yaml.pre",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		DryRun: false,
	}
}
