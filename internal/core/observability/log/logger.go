package log

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Log = (*Logger)(nil)

type Logger struct {
	zapLogger *zap.Logger
	zapLevel  zap.AtomicLevel
}

type options struct {
	encoding string
	outputs  []string
}

// Option customizes the logger built by New.
type Option func(*options)

// WithEncoding selects the zap encoder, "json" or "console".
func WithEncoding(encoding string) Option {
	return func(o *options) {
		if encoding != "" {
			o.encoding = encoding
		}
	}
}

// WithOutputPaths overrides the default stderr sink.
func WithOutputPaths(paths ...string) Option {
	return func(o *options) {
		if len(paths) > 0 {
			o.outputs = paths
		}
	}
}

// New is Build that panics on an invalid sink or encoding.
func New(level Level, opts ...Option) *Logger {
	l, err := Build(level, opts...)
	if err != nil {
		panic(err)
	}
	return l
}

// Build creates a zap-backed logger. Output defaults to stderr in JSON.
func Build(level Level, opts ...Option) (*Logger, error) {
	o := options{encoding: "json", outputs: []string{"stderr"}}
	for _, opt := range opts {
		opt(&o)
	}

	atomicLevel := zap.NewAtomicLevelAt(toZapLevel(level))
	config := zap.Config{
		Level:       atomicLevel,
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding:         o.encoding,
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      o.outputs,
		ErrorOutputPaths: []string{"stderr"},
		DisableCaller:    true,
	}

	zapLogger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return &Logger{
		zapLogger: zapLogger,
		zapLevel:  atomicLevel,
	}, nil
}

// NewFromZap wraps an existing zap logger, e.g. one backed by zaptest/observer.
func NewFromZap(zapLogger *zap.Logger, level Level) *Logger {
	return &Logger{
		zapLogger: zapLogger,
		zapLevel:  zap.NewAtomicLevelAt(toZapLevel(level)),
	}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return NewFromZap(zap.NewNop(), LevelError)
}

func (l *Logger) Log(level Level, msg string, fields ...Field) {
	if !l.zapLevel.Enabled(toZapLevel(level)) {
		return
	}
	l.zapLogger.Log(toZapLevel(level), msg, toZapFields(fields...)...)
}

func (l *Logger) Debug(msg string, fields ...Field) { l.Log(LevelDebug, msg, fields...) }

func (l *Logger) Info(msg string, fields ...Field) { l.Log(LevelInfo, msg, fields...) }

func (l *Logger) Warn(msg string, fields ...Field) { l.Log(LevelWarn, msg, fields...) }

func (l *Logger) Error(msg string, fields ...Field) { l.Log(LevelError, msg, fields...) }

func (l *Logger) With(fields ...Field) Log {
	return &Logger{
		zapLogger: l.zapLogger.With(toZapFields(fields...)...),
		zapLevel:  l.zapLevel,
	}
}

func (l *Logger) WithContext(_ context.Context) Log {
	return l
}

func (l *Logger) SetLevel(level Level) {
	l.zapLevel.SetLevel(toZapLevel(level))
}

func (l *Logger) GetLevel() Level {
	return fromZapLevel(l.zapLevel.Level())
}

func (l *Logger) Sync() error {
	return l.zapLogger.Sync()
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelDebug:
		return zap.DebugLevel
	case LevelInfo:
		return zap.InfoLevel
	case LevelWarn:
		return zap.WarnLevel
	case LevelError:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func fromZapLevel(level zapcore.Level) Level {
	switch level {
	case zap.DebugLevel:
		return LevelDebug
	case zap.InfoLevel:
		return LevelInfo
	case zap.WarnLevel:
		return LevelWarn
	case zap.ErrorLevel:
		return LevelError
	default:
		return LevelInfo
	}
}

func toZapFields(fields ...Field) []zap.Field {
	zapFields := make([]zap.Field, len(fields))
	for i, f := range fields {
		switch f.Type {
		case BoolType:
			zapFields[i] = zap.Bool(f.Key, f.Value.(bool))
		case DurationType:
			zapFields[i] = zap.Duration(f.Key, f.Value.(time.Duration))
		case Float64Type:
			zapFields[i] = zap.Float64(f.Key, f.Value.(float64))
		case IntType:
			zapFields[i] = zap.Int(f.Key, f.Value.(int))
		case Int64Type:
			zapFields[i] = zap.Int64(f.Key, f.Value.(int64))
		case StringType:
			zapFields[i] = zap.String(f.Key, f.Value.(string))
		case Uint64Type:
			zapFields[i] = zap.Uint64(f.Key, f.Value.(uint64))
		case ErrorType:
			err, _ := f.Value.(error)
			zapFields[i] = zap.NamedError(f.Key, err)
		default:
			zapFields[i] = zap.Any(f.Key, f.Value)
		}
	}
	return zapFields
}
