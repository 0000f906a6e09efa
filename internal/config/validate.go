package config

import (
	"fmt"
	"strings"

	"github.com/frherrer/vtc2tavern/internal/domain"
)

// Validate checks the Config for required fields and valid values.
func Validate(cfg *Config) error {
	var errs []string

	// Input validation
	if len(cfg.Input.Extensions) == 0 {
		errs = append(errs, "input.extensions must not be empty")
	}
	for _, ext := range cfg.Input.SourceExtensions() {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Sprintf("input extension %q must start with a dot", ext))
		}
	}

	// Output validation
	if cfg.Output.Extension == "" {
		errs = append(errs, "output.extension must not be empty")
	} else if !strings.HasPrefix(cfg.Output.Extension, ".") {
		errs = append(errs, "output.extension must start with a dot")
	}
	for _, ext := range cfg.Input.SourceExtensions() {
		if ext == cfg.Output.Extension {
			errs = append(errs, fmt.Sprintf("output.extension %q collides with an input extension", ext))
		}
	}

	// Convert validation
	if cfg.Convert.Sentinel == "" {
		errs = append(errs, "convert.sentinel must not be empty")
	}
	if cfg.Convert.SourceIDHeader == "" || cfg.Convert.AccountIDHeader == "" {
		errs = append(errs, "convert.source_id_header and convert.account_id_header must be set")
	}
	seen := make(map[string]bool)
	for _, e := range cfg.Convert.Expectations {
		if e.Param == "" {
			errs = append(errs, "convert.expectations entries need a param")
			continue
		}
		if seen[e.Param] {
			errs = append(errs, fmt.Sprintf("convert.expectations lists %q twice", e.Param))
		}
		seen[e.Param] = true
	}
	if _, err := cfg.Convert.FieldMappings(); err != nil {
		errs = append(errs, err.Error())
	}

	if cfg.Batch.Workers < 0 {
		errs = append(errs, "batch.workers must not be negative")
	}

	if cfg.Stub.Extension == "" || cfg.Stub.InputExtension == "" {
		errs = append(errs, "stub.extension and stub.input_extension must be set")
	}

	// Validate logging level
	if cfg.Logging.Level != "" {
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[cfg.Logging.Level] {
			errs = append(errs, fmt.Sprintf("logging.level must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level))
		}
	}
	if cfg.Logging.Format != "" && cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		errs = append(errs, fmt.Sprintf("logging.format must be text or json (got %q)", cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return domain.NewError("config", "", 0, fmt.Sprintf("validation failed: %s", strings.Join(errs, "; ")), nil)
	}

	return nil
}
