package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/triptrop/client/internal/core"
)

var DefaultLoggerOpts = &LoggerOpts{
	Environment: core.Development,
}

type LoggerOpts struct {
	Environment core.Environment
	// Output overrides the destination; nil means stderr.
	Output io.Writer
}

func safe(opts ...LoggerOpts) *LoggerOpts {
	if len(opts) == 0 {
		return DefaultLoggerOpts
	}
	return &opts[0]
}

func Init(opts ...LoggerOpts) {
	o := safe(opts...)
	switch {
	case o.Environment.IsTesting():
		log.Logger = zerolog.New(writer(o, io.Discard)).Level(zerolog.Disabled)
	case o.Environment.IsProduction():
		log.Logger = zerolog.New(writer(o, nil)).With().Timestamp().Logger().Level(zerolog.InfoLevel)
	default:
		cw := zerolog.NewConsoleWriter()
		if o.Output != nil {
			cw.Out = o.Output
		}
		level := zerolog.InfoLevel
		if o.Environment.Verbose() {
			level = zerolog.DebugLevel
		}
		log.Logger = zerolog.New(cw).With().Timestamp().Caller().Logger().Level(level)
	}
}

func writer(o *LoggerOpts, fallback io.Writer) io.Writer {
	if o.Output != nil {
		return o.Output
	}
	if fallback != nil {
		return fallback
	}
	return os.Stderr
}

func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
