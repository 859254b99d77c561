// Package logger configures the process-wide logrus logger.
package logger

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

const (
	componentKey = "component"
	runKey       = "run"
)

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// DefaultLogConfig logs warnings and errors as text.
func DefaultLogConfig() LogConfig {
	return LogConfig{Level: "warn", Format: "text"}
}

// Validate checks the level and format names.
func (c LogConfig) Validate() error {
	if _, err := logrus.ParseLevel(c.level()); err != nil {
		return fmt.Errorf("invalid log level %q", c.Level)
	}
	switch c.Format {
	case "", "text", "json":
		return nil
	default:
		return fmt.Errorf("invalid log format %q (expected text or json)", c.Format)
	}
}

// Init applies the configuration to the standard logger and directs it to w.
func (c LogConfig) Init(w io.Writer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	level, _ := logrus.ParseLevel(c.level())

	logrus.SetOutput(w)
	logrus.SetLevel(level)
	logrus.SetFormatter(c.formatter())
	return nil
}

func (c LogConfig) level() string {
	if c.Level == "" {
		return "warn"
	}
	return c.Level
}

func (c LogConfig) formatter() logrus.Formatter {
	switch c.Format {
	case "json":
		return &logrus.JSONFormatter{}
	default:
		return &logrus.TextFormatter{FullTimestamp: true}
	}
}

func Get() *logrus.Logger {
	return logrus.StandardLogger()
}

func WithComponent(component string) *logrus.Entry {
	return Get().WithField(componentKey, component)
}

// WithRun scopes an entry to a single rewrite run.
func WithRun(component, runID string) *logrus.Entry {
	return WithComponent(component).WithField(runKey, runID)
}
