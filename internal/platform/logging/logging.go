package logging

import (
	"io"
	"os"

	"github.com/hashicorp/go-hclog"
)

type Options struct {
	Level  string
	JSON   bool
	Output io.Writer
}

// New builds the root logger. Components derive their own with Named.
func New(opts Options) hclog.Logger {
	level := hclog.LevelFromString(opts.Level)
	if level == hclog.NoLevel {
		level = hclog.Info
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:       "usagetrail",
		Level:      level,
		Output:     out,
		JSONFormat: opts.JSON,
	})
}

// OrNull returns logger, or a discarding logger when it is nil.
func OrNull(logger hclog.Logger) hclog.Logger {
	if logger == nil {
		return hclog.NewNullLogger()
	}
	return logger
}
