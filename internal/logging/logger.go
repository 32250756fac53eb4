package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New opens (or creates) the log file at path and returns a logger that
// appends console-encoded, timestamped lines to it. The returned func closes
// the file. The terminal is owned by the UI, so nothing is written to stderr.
func New(path, level string) (*zap.Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	lvl := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: %w", err)
		}
		lvl = parsed
	}
	sink, closeFn, err := zap.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: open log file: %w", err)
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), sink, lvl)
	return zap.New(core), closeFn, nil
}
