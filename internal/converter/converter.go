package converter

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/frherrer/vtc2tavern/internal/config"
	"github.com/frherrer/vtc2tavern/internal/domain"
	"github.com/frherrer/vtc2tavern/internal/parser"
)

// Converter transforms parsed VTC scripts into Tavern documents.
type Converter interface {
	Convert(script *domain.ScriptDocument) (*domain.OutputDocument, error)
}

// DefaultConverter implements Converter.
type DefaultConverter struct {
	cfg    *config.ConvertConfig
	rules  HeaderRules
	mapper *ExpectationMapper
	log    *logrus.Logger
}

// NewConverter creates a new DefaultConverter.
func NewConverter(cfg *config.ConvertConfig, log *logrus.Logger) (*DefaultConverter, error) {
	mappings, err := cfg.FieldMappings()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &DefaultConverter{
		cfg:    cfg,
		rules:  HeaderRulesFrom(cfg),
		mapper: NewExpectationMapper(mappings),
		log:    log,
	}, nil
}

// Convert builds one stage per case, blocks first then cases, in source
// order. Blocks without cases and scripts without stages are errors.
func (c *DefaultConverter) Convert(script *domain.ScriptDocument) (*domain.OutputDocument, error) {
	doc := &domain.OutputDocument{
		SourcePath: script.SourcePath,
		TestName:   script.TestName,
	}

	for block, err := range parser.Blocks(script) {
		if err != nil {
			return nil, domain.WithFile(err, "parse", script.SourcePath)
		}

		baseName := block.Label
		if baseName == "" {
			baseName = fmt.Sprintf("%s-%s", script.TestName, block.ID)
		}

		n := 0
		for cs, err := range parser.Cases(block) {
			if err != nil {
				if errors.Is(err, domain.ErrNoCases) && c.cfg.AllowEmptyBlocks {
					c.log.WithFields(logrus.Fields{"file": script.SourcePath, "line": block.Line}).
						Warnf("client %s has no cases, skipping", block.ID)
					break
				}
				return nil, domain.WithFile(err, "parse", script.SourcePath)
			}

			name := baseName
			if n > 0 {
				name = fmt.Sprintf("%s-%d", baseName, n)
			}

			stage, err := c.buildStage(script.SourcePath, name, cs)
			if err != nil {
				return nil, err
			}
			doc.Stages = append(doc.Stages, stage)
			n++
		}
	}

	if len(doc.Stages) == 0 {
		return nil, domain.NewErrorWithSuggestion("convert", script.SourcePath, 0,
			"no client txreq/rxresp cases were recognized",
			"check that the script uses client blocks with txreq -req/-url and rxresp",
			domain.ErrNoStages)
	}

	return doc, nil
}

// buildStage converts a single case into a Stage.
func (c *DefaultConverter) buildStage(file, name string, cs domain.Case) (domain.Stage, error) {
	headers := domain.NewFields()
	entries, malformed := parser.Headers(cs.Headers)
	for _, h := range entries {
		entry := NormalizeHeader(h.Key, h.Value, c.rules)
		headers.Set(entry.Key, entry.Value)
	}
	for _, raw := range malformed {
		c.log.WithFields(logrus.Fields{"file": file, "line": cs.Line, "stage": name}).
			Warnf("ignoring malformed header: %q", raw)
	}

	response, skipped, err := c.mapper.Map(cs.Response)
	if err != nil {
		return domain.Stage{}, atLine(err, file, cs.Line)
	}
	for _, line := range skipped {
		c.log.WithFields(logrus.Fields{"file": file, "line": cs.Line, "stage": name}).
			Warnf("ignoring unrecognized assertion: %s", line)
	}

	return domain.Stage{
		Name: name,
		Request: domain.Request{
			URL:     c.cfg.URLPrefix + cs.URL,
			Method:  cs.Method,
			Headers: headers,
		},
		Response: response,
	}, nil
}

// atLine fills in file and line of a domain error that lacks them.
func atLine(err error, file string, line int) error {
	var de *domain.Error
	if !errors.As(err, &de) {
		return domain.NewError("convert", file, line, "failed", err)
	}
	cp := *de
	if cp.File == "" {
		cp.File = file
	}
	if cp.LineNumber == 0 {
		cp.LineNumber = line
	}
	return &cp
}
