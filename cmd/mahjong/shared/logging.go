package shared

import (
	"io"

	"github.com/charmbracelet/log"
)

// SetupLogger configures a charm logger writing to w. debug overrides level.
func SetupLogger(w io.Writer, level log.Level, debug bool) *log.Logger {
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
}
