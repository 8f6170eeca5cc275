package abundle

import (
	"io"

	"github.com/rs/zerolog"
)

// NewLogger returns a zerolog.Logger writing structured, leveled
// records to w at the given level. Pass zerolog.Nop() where silence is
// wanted (the zero Options.Logger defaults to it).
func NewLogger(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
