// Package logger builds the process-wide zap logger.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/finrl-desk/internal/config"
)

// New creates a logger writing to stdout and, when cfg.File is set, to a
// rotating log file.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch cfg.Encoding {
	case "", "json":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	case "console":
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	default:
		return nil, fmt.Errorf("invalid log encoding %q", cfg.Encoding)
	}

	sink := zapcore.AddSync(os.Stdout)
	if cfg.File != "" {
		fileSink, err := fileWriter(cfg)
		if err != nil {
			return nil, err
		}
		sink = zapcore.NewMultiWriteSyncer(sink, fileSink)
	}

	core := zapcore.NewCore(encoder, sink, level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func fileWriter(cfg config.LogConfig) (zapcore.WriteSyncer, error) {
	dir := filepath.Dir(cfg.File)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
		LocalTime:  true,
	}), nil
}
