// Package logging builds the logrus logger shared by all commands.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	lj "gopkg.in/natefinch/lumberjack.v2"

	"github.com/frherrer/vtc2tavern/internal/config"
	"github.com/frherrer/vtc2tavern/internal/domain"
)

// New creates a logger writing to out, and additionally to a rotated file
// when cfg.File is set. verbose forces debug level. The returned closer
// releases the log file and is never nil.
func New(cfg config.LoggingConfig, verbose bool, out io.Writer) (*logrus.Logger, io.Closer, error) {
	if out == nil {
		out = os.Stderr
	}

	level := logrus.InfoLevel
	if cfg.Level != "" {
		parsed, err := logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, nil, domain.NewError("config", "", 0, "invalid logging.level", err)
		}
		level = parsed
	}
	if verbose {
		level = logrus.DebugLevel
	}

	log := logrus.New()
	log.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	var closer io.Closer = nopCloser{}
	if strings.TrimSpace(cfg.File) != "" {
		w := &lj.Logger{Filename: cfg.File, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		out = io.MultiWriter(out, w)
		closer = w
	}
	log.SetOutput(out)

	return log, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
