// Package logging holds the shared structured logger.
package logging

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. Commands configure it once from the
// --log-level flag; everything user-facing still goes through stdout.
var Log = logrus.New()

// SetLevel configures the log level from a string.
func SetLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug":
		Log.SetLevel(logrus.DebugLevel)
	case "info":
		Log.SetLevel(logrus.InfoLevel)
	case "warning", "warn":
		Log.SetLevel(logrus.WarnLevel)
	case "error":
		Log.SetLevel(logrus.ErrorLevel)
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
	return nil
}
