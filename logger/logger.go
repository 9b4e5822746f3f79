package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log discards everything until Init is called.
var Log = zap.NewNop().Sugar()

// Init installs the process logger. Development mode logs human-readable
// lines to stderr; otherwise JSON.
func Init(level string, development bool) {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = logger.Sugar()
}

// Sync flushes buffered log entries.
func Sync() {
	_ = Log.Sync()
}
