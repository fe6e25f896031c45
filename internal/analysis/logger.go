// Package analysis holds plumbing shared by every solver: the logger.
package analysis

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the shared logger for all analyses.
var Logger = logrus.New()

func init() {
	Logger.SetOutput(os.Stderr)
	Logger.SetLevel(logrus.InfoLevel)
	Logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	// Can be overridden by SetVerbose() when using --verbose flag.
	if os.Getenv("PINPOINT_VERBOSE") == "1" {
		Logger.SetLevel(logrus.DebugLevel)
	}
}

// SetVerbose enables or disables debug logging at runtime.
func SetVerbose(enabled bool) {
	if enabled {
		Logger.SetLevel(logrus.DebugLevel)
	} else {
		Logger.SetLevel(logrus.InfoLevel)
	}
}

// SetOutput redirects logger output (useful for testing).
func SetOutput(w io.Writer) {
	Logger.SetOutput(w)
}

// Debugf prints a debug message if verbose mode is enabled.
func Debugf(format string, args ...interface{}) {
	Logger.Debugf(format, args...)
}

// Infof prints an informational message.
func Infof(format string, args ...interface{}) {
	Logger.Infof(format, args...)
}

// Warnf prints a warning message.
func Warnf(format string, args ...interface{}) {
	Logger.Warnf(format, args...)
}

// Errorf prints an error message.
func Errorf(format string, args ...interface{}) {
	Logger.Errorf(format, args...)
}
