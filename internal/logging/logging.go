// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	DefaultLevel = "info"

	maxFileSizeMB = 10
	maxBackups    = 3
	maxAgeDays    = 28
)

type Options struct {
	Level string
	// File mirrors log output to a size-rotated file when set.
	File   string
	Output io.Writer
	JSON   bool
}

// New returns a logger and a close function releasing the rotated file.
func New(opts Options) (*logrus.Logger, func() error, error) {
	level, err := logrus.ParseLevel(strings.TrimSpace(orDefault(opts.Level, DefaultLevel)))
	if err != nil {
		return nil, nil, fmt.Errorf("parse log level: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	if opts.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	closeFn := func() error { return nil }
	if opts.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxFileSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		}
		out = io.MultiWriter(out, rotated)
		closeFn = rotated.Close
	}
	logger.SetOutput(out)

	return logger, closeFn, nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
