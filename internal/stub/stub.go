// Package stub writes commented-out Tavern stubs for VTC scripts that still
// need a hand-written conversion.
package stub

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/frherrer/vtc2tavern/internal/config"
	"github.com/frherrer/vtc2tavern/internal/domain"
	"github.com/frherrer/vtc2tavern/internal/scanner"
	"github.com/frherrer/vtc2tavern/internal/tavern"
)

var serverBlockRe = regexp.MustCompile(`(?m)^\s*server\s+\w+.*\{`)

// Request names the source directory and the stub destinations. Scripts
// declaring a server block go to ServerDest, or to Dest when it is empty.
type Request struct {
	Source     string
	Dest       string
	ServerDest string
}

// Result lists what happened to each script.
type Result struct {
	Written   []string
	Existing  []string
	Ambiguous []string
}

// Writer creates stub files.
type Writer struct {
	scanner scanner.Scanner
	cfg     *config.Config
	log     *logrus.Logger
}

// NewWriter creates a Writer.
func NewWriter(s scanner.Scanner, cfg *config.Config, log *logrus.Logger) *Writer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Writer{scanner: s, cfg: cfg, log: log}
}

// Render comments out every line of a script.
func Render(content string) string {
	lines := strings.Split(strings.TrimRight(content, "\r\n"), "\n")
	var b strings.Builder
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			b.WriteString("#\n")
			continue
		}
		b.WriteString("# " + line + "\n")
	}
	return b.String()
}

// NeedsServer reports whether the script declares a server block. A script
// that mentions "server" anywhere else is ambiguous.
func NeedsServer(content string) (bool, error) {
	if serverBlockRe.MatchString(content) {
		return true, nil
	}
	if strings.Contains(content, "server") {
		return false, domain.ErrAmbiguousServer
	}
	return false, nil
}

// Write stubs every script directly inside req.Source. Existing stubs are
// left alone. Ambiguous scripts are skipped and reported in the returned error.
func (w *Writer) Write(req Request) (*Result, error) {
	if info, err := os.Stat(req.Source); err != nil || !info.IsDir() {
		return nil, domain.NewErrorWithSuggestion("usage", req.Source, 0,
			"source must be an existing directory", "pass the directory holding the VTC files",
			domain.ErrUsage)
	}
	if req.Dest == "" {
		return nil, domain.NewError("usage", "", 0, "no destination directory given", domain.ErrUsage)
	}
	serverDest := req.ServerDest
	if serverDest == "" {
		serverDest = req.Dest
	}

	files, err := w.scanner.Scan(req.Source, scanner.Options{
		Extensions: []string{w.cfg.Stub.InputExtension},
	})
	if err != nil {
		return nil, err
	}

	result := &Result{}
	var errs []error
	for _, f := range files {
		log := w.log.WithField("file", f)

		content, err := os.ReadFile(f)
		if err != nil {
			errs = append(errs, domain.NewError("parse", f, 0, "failed to read file", err))
			continue
		}

		dest := req.Dest
		needsServer, err := NeedsServer(string(content))
		switch {
		case errors.Is(err, domain.ErrAmbiguousServer):
			log.Warn("Mentions server without a server block, skipping")
			result.Ambiguous = append(result.Ambiguous, f)
			errs = append(errs, domain.NewErrorWithSuggestion("convert", f, 0,
				"cannot tell whether the script needs a server",
				"convert it by hand", err))
			continue
		case needsServer:
			dest = serverDest
		}

		name := strings.TrimSuffix(filepath.Base(f), filepath.Ext(f)) + w.cfg.Stub.Extension
		target := filepath.Join(dest, name)
		if _, err := os.Stat(target); err == nil {
			log.WithField("stub", target).Debug("Stub exists, skipping")
			result.Existing = append(result.Existing, target)
			continue
		}

		if w.cfg.DryRun {
			log.Infof("[DRY-RUN] Would write: %s", target)
			continue
		}
		log.Infof("Writing: %s", target)
		if err := tavern.WriteFile(target, []byte(Render(string(content))), false); err != nil {
			errs = append(errs, err)
			continue
		}
		result.Written = append(result.Written, target)
	}

	if len(errs) > 0 {
		return result, domain.NewError("convert", req.Source, 0,
			fmt.Sprintf("%d script(s) not stubbed", len(errs)), errors.Join(errs...))
	}
	return result, nil
}
