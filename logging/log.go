/*
Package logging initializes the application log. The engine logs
through logrus; hosts that embed the engine call Init once to direct
output and select verbosity.
*/
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Options for logging initialization.
type Options struct {

	// Prefix for application log entries, used to tell engine
	// entries apart from the host's own log.
	Prefix string

	// Output for log entries, os.Stderr when nil.
	Output io.Writer

	// When set, entries are written as JSON.
	JSONEnabled bool

	// Log level name as understood by logrus ("debug", "info",
	// ...); "info" when empty.
	Level string
}

type prefixFormatter struct {
	prefix    string
	formatter logrus.Formatter
}

func (f *prefixFormatter) Format(e *logrus.Entry) ([]byte, error) {
	b, err := f.formatter.Format(e)
	if err != nil {
		return nil, err
	}

	return append([]byte(f.prefix), b...), nil
}

// Init configures the standard logrus logger from the options.
func Init(o Options) error {
	if o.JSONEnabled {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	if o.Prefix != "" {
		logrus.SetFormatter(&prefixFormatter{o.Prefix, logrus.StandardLogger().Formatter})
	}

	if o.Output != nil {
		logrus.SetOutput(o.Output)
	}

	if o.Level != "" {
		l, err := logrus.ParseLevel(o.Level)
		if err != nil {
			return err
		}

		logrus.SetLevel(l)
	}

	return nil
}
