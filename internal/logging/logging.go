// Package logging builds the zap loggers used for debug output.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var levelMap = map[string]zapcore.Level{
	"debug": zap.DebugLevel,
	"info":  zap.InfoLevel,
	"warn":  zap.WarnLevel,
	"error": zap.ErrorLevel,
}

// ParseLevel maps a level name to a zap level.
func ParseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zap.InfoLevel, nil
	}
	lvl, ok := levelMap[strings.ToLower(level)]
	if !ok {
		return zap.InfoLevel, errors.Errorf("unknown log level: %s", level)
	}
	return lvl, nil
}

// New returns a console logger writing to stderr at the given level.
func New(level string) (*zap.Logger, zap.AtomicLevel, error) {
	return NewWithWriter(level, os.Stderr)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(level string, w io.Writer) (*zap.Logger, zap.AtomicLevel, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	logEncoder := zapcore.NewConsoleEncoder(encoderConfig)

	atomLevel := zap.NewAtomicLevelAt(lvl)
	logger := zap.New(zapcore.NewCore(
		logEncoder,
		zapcore.Lock(zapcore.AddSync(w)),
		atomLevel,
	))
	return logger.Named("marshalkit"), atomLevel, nil
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}
