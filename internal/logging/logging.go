// Package logging configures the process-wide logrus logger.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Options controls Setup.
type Options struct {
	Level  string
	Colors bool
	Output io.Writer
}

// Setup configures the standard logger and returns it.
func Setup(opts Options) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if opts.Level != "" {
		l, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = l
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	log := logrus.StandardLogger()
	log.SetFormatter(&prefixed.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
		ForceFormatting: true,
		ForceColors:     opts.Colors,
	})
	log.SetOutput(out)
	log.SetLevel(level)
	return log, nil
}

// Component returns a logger tagged with a prefix, rendered by the prefixed
// formatter as "[component]".
func Component(log logrus.FieldLogger, name string) logrus.FieldLogger {
	return log.WithField("prefix", name)
}
