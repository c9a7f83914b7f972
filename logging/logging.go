// ABOUTME: Configures the global zerolog logger used by every swarmbase package.
// ABOUTME: Supports console output for terminals and JSON lines for services.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Output formats accepted by Setup.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Setup points the global logger at w with the given level and format. An
// empty level means info; an empty format means console. A nil writer
// means stderr.
func Setup(level, format string, w io.Writer) error {
	if w == nil {
		w = os.Stderr
	}
	if level == "" {
		level = zerolog.LevelInfoValue
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}

	var out io.Writer
	switch strings.ToLower(format) {
	case "", FormatConsole:
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: !isTerminal(w)}
	case FormatJSON:
		out = w
	default:
		return fmt.Errorf("unknown log format %q (want %s or %s)", format, FormatConsole, FormatJSON)
	}

	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
