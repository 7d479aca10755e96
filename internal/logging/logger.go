package logging

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

type Options struct {
	Debug    bool
	LogsFile string
}

// New builds a tint logger writing to stdout and, when configured, to a logs
// file as well. Colours are off whenever a file is in the chain. The returned
// closer releases the file.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	return newLogger(os.Stdout, opts)
}

func newLogger(stdout io.Writer, opts Options) (*slog.Logger, io.Closer, error) {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}

	var out io.Writer = stdout
	var closer io.Closer = nopCloser{}
	noColor := false
	if opts.LogsFile != "" {
		logsFile, err := os.OpenFile(opts.LogsFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, err
		}
		out = io.MultiWriter(logsFile, stdout)
		closer = logsFile
		noColor = true
	}

	handler := tint.NewHandler(out, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		AddSource:  opts.Debug,
		NoColor:    noColor,
	})

	return slog.New(handler), closer, nil
}

// Init installs the logger as the slog default
func Init(opts Options) (io.Closer, error) {
	logger, closer, err := New(opts)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(logger)
	return closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
