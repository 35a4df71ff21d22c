// Package log provides the structured logger shared by the export pipeline.
//
// Analyzers run under go vet and similar drivers whose output is parsed by
// tools, so logging is silent unless FACTEXPORT_LOG_LEVEL is set.
package log

import (
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LevelEnv is the environment variable that enables logging.
const LevelEnv = "FACTEXPORT_LOG_LEVEL"

// FromEnv returns a JSON logger writing to os.Stderr at the level named by
// FACTEXPORT_LOG_LEVEL, or a no-op logger when it is unset or invalid.
func FromEnv() *zap.Logger {
	raw := strings.TrimSpace(os.Getenv(LevelEnv))
	if raw == "" {
		return zap.NewNop()
	}

	level, err := zapcore.ParseLevel(raw)
	if err != nil {
		return zap.NewNop()
	}

	return New(os.Stderr, level)
}

// New creates a JSON logger writing to w at the given minimum level.
func New(w io.Writer, level zapcore.Level) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		NameKey:     "logger",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)

	return zap.New(core).Named("factexport")
}
