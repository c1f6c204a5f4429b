package cli

import (
	"context"
	"iter"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/chef/log"
)

// logFormat is a custom type that configures the logger format as a side
// effect of parsing via encoding.TextUnmarshaler.
type logFormat string

// UnmarshalText implements encoding.TextUnmarshaler.
// As Kong parses the --log-format flag, this method is called, allowing us
// to configure the logger early enough to affect error messages during
// parsing.
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

// logLevel is a custom type that configures the logger level as a side
// effect of parsing via encoding.TextUnmarshaler.
type logLevel string

// UnmarshalText implements encoding.TextUnmarshaler.
// As Kong parses the --log-level flag, this method is called, allowing us
// to configure the logger early enough to affect error messages during
// parsing.
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

type logConfig struct {
	Level  logLevel  `default:"warn" enum:"${logLevelEnum}"  help:"Set log level."`
	Format logFormat `default:"text" enum:"${logFormatEnum}" help:"Set log format."`
}

func (*logConfig) vars() kong.Vars {
	return kong.Vars{
		"logLevelEnum":  joinSeq(log.Levels()),
		"logFormatEnum": joinSeq(log.Formats()),
	}
}

func (*logConfig) group() kong.Group {
	var group kong.Group

	group.Key = "log"
	group.Title = "Logging options"

	return group
}

// start applies the parsed flag values. Both flags configure the logger
// through TextUnmarshaler during parsing; this pass also covers values
// resolved from defaults, which never reach UnmarshalText.
func (f *logConfig) start(ctx context.Context) {
	log.Config(
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
	)

	log.Default().DebugContext(ctx, "logger initialized",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
	)
}

// joinSeq joins a sequence into the comma-separated form Kong enum
// variables expect.
func joinSeq(seq iter.Seq[string]) string {
	var sb strings.Builder

	for s := range seq {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}

		sb.WriteString(s)
	}

	return sb.String()
}
