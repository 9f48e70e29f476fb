// Package logging builds the diagnostic logger. Chat output is written to
// the terminal directly and never goes through it.
package logging

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// New returns a console logger writing to w at the named level. Unknown
// level names fall back to info.
func New(w io.Writer, level string, color bool) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    !color,
		TimeFormat: time.Kitchen,
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}
