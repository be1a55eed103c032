// Package logger provides the process-wide zap logger.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/xerrors"
)

// Logger is safe to use before Init; it discards everything until then.
var Logger = zap.NewNop().Sugar()

// Init sets up the zap logger to log to stderr in a human readable format.
func Init(debug bool) error {
	conf := zap.NewProductionConfig()
	conf.Encoding = "console"
	conf.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	conf.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	conf.OutputPaths = []string{"stderr"}
	conf.DisableStacktrace = true
	if debug {
		conf.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		conf.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	l, err := conf.Build()
	if err != nil {
		return xerrors.Errorf("failed to build logger: %w", err)
	}
	Logger = l.Sugar()
	return nil
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Logger.Sync()
}
