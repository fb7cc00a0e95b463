package log

import (
	stdlog "log"
	"strings"

	"go.uber.org/zap"
)

// ToStdLogger returns a standard library logger that writes through l at level.
func ToStdLogger(l Logger, level Level) *stdlog.Logger {
	if zl, ok := l.(*zapLogger); ok {
		if std, err := zap.NewStdLogAt(zl.z, toZapLevel(level)); err == nil {
			return std
		}
	}
	return stdlog.New(stdWriter{l: l, level: level}, "", 0)
}

// RedirectStdLog routes the standard library's global logger through l at
// info level. The returned func restores the previous output.
func RedirectStdLog(l Logger) func() {
	if zl, ok := l.(*zapLogger); ok {
		return zap.RedirectStdLog(zl.z)
	}
	prevFlags, prevPrefix, prevOut := stdlog.Flags(), stdlog.Prefix(), stdlog.Writer()
	stdlog.SetFlags(0)
	stdlog.SetPrefix("")
	stdlog.SetOutput(stdWriter{l: l, level: InfoLevel})
	return func() {
		stdlog.SetFlags(prevFlags)
		stdlog.SetPrefix(prevPrefix)
		stdlog.SetOutput(prevOut)
	}
}

type stdWriter struct {
	l     Logger
	level Level
}

func (w stdWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	switch w.level {
	case DebugLevel:
		w.l.Debug(msg)
	case WarnLevel:
		w.l.Warn(msg)
	case ErrorLevel:
		w.l.Error(msg)
	default:
		w.l.Info(msg)
	}
	return len(p), nil
}
