// Package logging builds the process-wide structured logger, the Go
// analogue of the original implementation's tracing_subscriber setup in
// logger.rs: JSON output, line numbers, and a level parsed from the
// level name the caller passes in (info when it does not parse).
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON-encoded, leveled *zap.SugaredLogger. level is parsed
// as a zapcore.Level name ("debug", "info", "warn", ...); an unparsable
// value falls back to info, matching the original's
// EnvFilter::try_new(level).unwrap_or_else(|_| EnvFilter::new("info")).
func New(level string) *zap.SugaredLogger {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.AddCaller())
	if err != nil {
		// Fall back to a basic logger rather than leaving the process
		// unable to report why structured logging itself failed.
		logger = zap.NewExample()
	}
	return logger.Sugar()
}
