package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/AlexStarov/escpos-netprint/config"
)

// Level names accepted in logging.level.
const (
	DEBUG = "debug"
	INFO  = "info"
	WARN  = "warn"
	ERROR = "error"
)

// New builds the process logger: console or JSON on stderr, and a rotated
// copy in cfg.File when set.
func New(cfg config.LoggingConfig) (*zap.Logger, error) {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput is New with the console stream replaced by console.
func NewWithOutput(cfg config.LoggingConfig, console io.Writer) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	cores := []zapcore.Core{
		zapcore.NewCore(encoder(cfg.Format, true), zapcore.AddSync(console), level),
	}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		rotated := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize, // MB
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge, // days
			Compress:   cfg.Compress,
		}
		// the file always gets JSON, colors would only garble it
		cores = append(cores, zapcore.NewCore(encoder("json", false), zapcore.AddSync(rotated), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func parseLevel(name string) (zapcore.Level, error) {
	switch strings.ToLower(name) {
	case DEBUG:
		return zapcore.DebugLevel, nil
	case INFO, "":
		return zapcore.InfoLevel, nil
	case WARN, "warning":
		return zapcore.WarnLevel, nil
	case ERROR:
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s", name)
	}
}

func encoder(format string, color bool) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	ec.EncodeLevel = zapcore.LowercaseLevelEncoder
	ec.EncodeCaller = zapcore.ShortCallerEncoder
	ec.MessageKey = "message"

	if format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}

	ec.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	if color {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return zapcore.NewConsoleEncoder(ec)
}

// PrintIfErr logs *err at error level when it is set. Meant for defer.
func PrintIfErr(logger *zap.Logger, msg string, err *error) {
	if err != nil && *err != nil {
		logger.Error(msg, zap.Error(*err))
	}
}
