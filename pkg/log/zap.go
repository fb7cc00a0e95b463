package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pkg/errors"
)

type zapLogger struct {
	z     *zap.Logger
	level Level
}

// ApplyConfig builds a Logger from cfg. Level defaults to info, format to text.
func ApplyConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	switch cfg.Format {
	case "", "text", "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, errors.Errorf("unknown log format %q", cfg.Format)
	}

	out := cfg.Output
	if out == "" {
		out = "stderr"
	}
	sink, _, err := zap.Open(out)
	if err != nil {
		return nil, errors.Wrapf(err, "open log output %q", out)
	}

	core := zapcore.NewCore(enc, sink, toZapLevel(level))
	return &zapLogger{z: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)), level: level}, nil
}

// NewNop returns a Logger that discards everything.
func NewNop() Logger { return &zapLogger{z: zap.NewNop(), level: ErrorLevel} }

// FromZap wraps an existing zap logger.
func FromZap(z *zap.Logger, level Level) Logger { return &zapLogger{z: z, level: level} }

func (l *zapLogger) Debug(msg string, fields ...Field) { l.z.Debug(msg, toZapFields(fields)...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.z.Info(msg, toZapFields(fields)...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, toZapFields(fields)...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.z.Error(msg, toZapFields(fields)...) }

func (l *zapLogger) Debugf(format string, args ...any) { l.z.Debug(sprintf(format, args)) }
func (l *zapLogger) Infof(format string, args ...any)  { l.z.Info(sprintf(format, args)) }
func (l *zapLogger) Warnf(format string, args ...any)  { l.z.Warn(sprintf(format, args)) }
func (l *zapLogger) Errorf(format string, args ...any) { l.z.Error(sprintf(format, args)) }

func (l *zapLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	return &zapLogger{z: l.z.With(toZapFields(fields)...), level: l.level}
}

func (l *zapLogger) WithComponent(name string) Logger { return l.With(Component(name)) }

func (l *zapLogger) WithError(err error) Logger { return l.With(Err(err)) }

func (l *zapLogger) Sync() error { return l.z.Sync() }

func (l *zapLogger) GetLevel() Level { return l.level }

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func toZapFields(fields []Field) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		out = append(out, zap.Any(f.Key, f.Value))
	}
	return out
}
