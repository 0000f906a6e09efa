// Package generator drives batch conversion of VTC sources into Tavern files.
package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/frherrer/vtc2tavern/internal/config"
	"github.com/frherrer/vtc2tavern/internal/converter"
	"github.com/frherrer/vtc2tavern/internal/domain"
	"github.com/frherrer/vtc2tavern/internal/parser"
	"github.com/frherrer/vtc2tavern/internal/scanner"
	"github.com/frherrer/vtc2tavern/internal/tavern"
)

// Request names what to convert. Dest is optional.
type Request struct {
	Source    string
	Dest      string
	Recursive bool
}

// Summary reports the outcome of one Generate call.
type Summary struct {
	Files   int
	Stages  int
	Written []string
	Failed  []string
}

// Generator is the top-level orchestrator.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Summary, error)
}

// DefaultGenerator implements Generator by wiring all components together.
type DefaultGenerator struct {
	scanner   scanner.Scanner
	registry  parser.ParserRegistry
	converter converter.Converter
	cfg       *config.Config
	log       *logrus.Logger
}

// NewGenerator creates a new DefaultGenerator with all dependencies.
func NewGenerator(
	s scanner.Scanner,
	r parser.ParserRegistry,
	c converter.Converter,
	cfg *config.Config,
	log *logrus.Logger,
) *DefaultGenerator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &DefaultGenerator{
		scanner:   s,
		registry:  r,
		converter: c,
		cfg:       cfg,
		log:       log,
	}
}

// job pairs one source file with the base destination of its first script.
type job struct {
	source string
	dest   string
}

// Generate runs the full pipeline: resolve → scan → parse → convert → write.
func (g *DefaultGenerator) Generate(ctx context.Context, req Request) (*Summary, error) {
	jobs, err := g.plan(req)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		g.log.WithField("source", req.Source).Warn("No VTC files found")
		return &Summary{}, nil
	}
	g.log.Infof("Found %d source file(s)", len(jobs))

	var (
		mu      sync.Mutex
		summary = &Summary{Files: len(jobs)}
		errs    []error
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers())
	for _, j := range jobs {
		if ctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			written, stages, err := g.convertFile(j)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				g.log.WithField("file", j.source).Error(err)
				summary.Failed = append(summary.Failed, j.source)
				errs = append(errs, err)
				return nil
			}
			summary.Written = append(summary.Written, written...)
			summary.Stages += stages
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return summary, err
	}

	slices.Sort(summary.Written)
	slices.Sort(summary.Failed)

	if len(errs) > 0 {
		return summary, domain.NewError("convert", "", 0,
			fmt.Sprintf("%d of %d file(s) failed", len(errs), len(jobs)),
			errors.Join(errs...))
	}

	g.log.WithFields(logrus.Fields{
		"files":  summary.Files,
		"stages": summary.Stages,
	}).Info("Conversion complete")
	return summary, nil
}

func (g *DefaultGenerator) workers() int {
	if g.cfg.Batch.Workers > 0 {
		return g.cfg.Batch.Workers
	}
	return runtime.NumCPU()
}

// plan resolves the request into jobs. All usage errors surface here,
// before any file is read.
func (g *DefaultGenerator) plan(req Request) ([]job, error) {
	if req.Source == "" {
		return nil, usageError("", "no source path given", "pass a VTC file or a directory")
	}
	info, err := os.Stat(req.Source)
	if err != nil {
		return nil, usageError(req.Source, "source path does not exist", "check the path")
	}

	var jobs []job
	if info.IsDir() {
		jobs, err = g.planDir(req)
	} else {
		jobs, err = g.planFile(req)
	}
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string, len(jobs))
	for _, j := range jobs {
		key := filepath.Clean(j.dest)
		if prev, ok := seen[key]; ok {
			return nil, domain.NewErrorWithSuggestion("usage", j.source, 0,
				fmt.Sprintf("output %s is also produced by %s", j.dest, prev),
				"rename one of the sources",
				domain.ErrDestinationConflict)
		}
		seen[key] = j.source
	}
	return jobs, nil
}

func (g *DefaultGenerator) planDir(req Request) ([]job, error) {
	dest := req.Dest
	if dest == "" {
		dest = req.Source
	}
	if info, err := os.Stat(dest); err != nil || !info.IsDir() {
		return nil, usageError(dest, "destination must be an existing directory when the source is a directory",
			"create the directory or pass a directory as destination")
	}

	in := g.cfg.Input
	files, err := g.scanner.Scan(req.Source, scanner.Options{
		Extensions: in.SourceExtensions(),
		Excludes:   in.Exclude,
		Recursive:  req.Recursive || in.IsRecursive(),
	})
	if err != nil {
		return nil, err
	}

	jobs := make([]job, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(req.Source, f)
		if err != nil {
			return nil, domain.NewError("scan", f, 0, "failed to resolve relative path", err)
		}
		jobs = append(jobs, job{
			source: f,
			dest:   filepath.Join(dest, g.outputName(rel)),
		})
	}
	return jobs, nil
}

func (g *DefaultGenerator) planFile(req Request) ([]job, error) {
	dest := req.Dest
	switch {
	case dest == "":
		dest = g.outputName(req.Source)
	default:
		if info, err := os.Stat(dest); err == nil && info.IsDir() {
			dest = filepath.Join(dest, g.outputName(filepath.Base(req.Source)))
		}
	}
	return []job{{source: req.Source, dest: dest}}, nil
}

// outputName replaces the source extension with the output extension.
func (g *DefaultGenerator) outputName(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + g.cfg.Output.Extension
}

// numbered inserts -n before the output extension for the n-th extra script
// of a container file.
func (g *DefaultGenerator) numbered(dest string, n int) string {
	if n == 0 {
		return dest
	}
	ext := g.cfg.Output.Extension
	if !strings.HasSuffix(dest, ext) {
		ext = filepath.Ext(dest)
	}
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(dest, ext), n, ext)
}

// convertFile converts every script of one source. Nothing is written
// unless all of its scripts convert.
func (g *DefaultGenerator) convertFile(j job) ([]string, int, error) {
	log := g.log.WithField("file", j.source)
	log.Debug("Processing")

	content, err := os.ReadFile(j.source)
	if err != nil {
		return nil, 0, domain.NewErrorWithSuggestion("parse", j.source, 0,
			"failed to read file",
			"check that the file exists and has read permissions",
			err)
	}

	p, err := g.registry.ParserFor(filepath.Ext(j.source))
	if err != nil {
		return nil, 0, domain.NewError("parse", j.source, 0, "unsupported file type", err)
	}
	scripts, err := p.Parse(j.source, content)
	if err != nil {
		return nil, 0, err
	}
	if len(scripts) == 0 {
		log.Warn("No VTC scripts found, skipping")
		return nil, 0, nil
	}

	type output struct {
		path string
		data []byte
	}
	outputs := make([]output, 0, len(scripts))
	stages := 0
	for i := range scripts {
		doc, err := g.converter.Convert(&scripts[i])
		if err != nil {
			return nil, 0, err
		}
		if g.cfg.Output.ValidateSchema {
			if err := tavern.Validate(doc); err != nil {
				return nil, 0, err
			}
		}
		data, err := tavern.Marshal(doc)
		if err != nil {
			return nil, 0, err
		}
		outputs = append(outputs, output{path: g.numbered(j.dest, i), data: data})
		stages += len(doc.Stages)
	}

	written := make([]string, 0, len(outputs))
	for _, out := range outputs {
		if g.cfg.DryRun {
			log.Infof("[DRY-RUN] Would write: %s", out.path)
			log.Debugf("[DRY-RUN] Content:\n%s", out.data)
			continue
		}
		log.Infof("Writing: %s", out.path)
		if err := tavern.WriteFile(out.path, out.data, g.cfg.Output.Overwrite); err != nil {
			return written, stages, err
		}
		written = append(written, out.path)
	}
	return written, stages, nil
}

func usageError(path, msg, hint string) error {
	return domain.NewErrorWithSuggestion("usage", path, 0, msg, hint, domain.ErrUsage)
}
