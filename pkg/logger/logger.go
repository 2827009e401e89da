package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level string

const (
	Debug Level = "debug"
	Info  Level = "info"
	Warn  Level = "warn"
	Error Level = "error"
)

// Logger writes one JSON object per line with ts, level and msg keys plus
// the key/value pairs passed to each call.
type Logger struct {
	z *zap.SugaredLogger
}

func New(levelStr string) *Logger {
	return NewWithWriter(levelStr, os.Stdout)
}

func NewWithWriter(levelStr string, w io.Writer) *Logger {
	lvl := zapcore.InfoLevel
	switch Level(levelStr) {
	case Debug:
		lvl = zapcore.DebugLevel
	case Info:
		lvl = zapcore.InfoLevel
	case Warn:
		lvl = zapcore.WarnLevel
	case Error:
		lvl = zapcore.ErrorLevel
	}
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "ts"
	enc.MessageKey = "msg"
	enc.LevelKey = "level"
	enc.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.Lock(zapcore.AddSync(w)), lvl)
	return &Logger{z: zap.New(core).Sugar()}
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{z: zap.NewNop().Sugar()}
}

func (l *Logger) Debug(msg string, fields ...any) { l.z.Debugw(msg, fields...) }
func (l *Logger) Info(msg string, fields ...any)  { l.z.Infow(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...any)  { l.z.Warnw(msg, fields...) }
func (l *Logger) Error(msg string, fields ...any) { l.z.Errorw(msg, fields...) }

// Sync flushes buffered entries.
func (l *Logger) Sync() error { return l.z.Sync() }
