package util

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logging holds the process loggers. Logger honours the configured level while
// Verbose writes debug entries to the same sinks.
type Logging struct {
	Logger  *zap.Logger
	Verbose *zap.Logger

	files []*os.File
}

func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewLogging writes to stdout and, when logDir is set, to logDir/latest.log
// (truncated on start) plus a file named after the start time.
func NewLogging(level, logDir string) (*Logging, error) {
	return newLogging(level, logDir, time.Now())
}

func newLogging(level, logDir string, startedAt time.Time) (*Logging, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.ConsoleSeparator = " | "

	consoleConfig := encoderConfig
	consoleConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleConfig), zapcore.AddSync(os.Stdout), zapcore.DebugLevel),
	}

	l := &Logging{}
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create log dir: %w", err)
		}

		names := []string{"latest.log", startedAt.Format("02-01-2006_15-04-05") + ".log"}
		for _, name := range names {
			file, err := os.OpenFile(filepath.Join(logDir, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
			if err != nil {
				l.Close()
				return nil, fmt.Errorf("failed to open log file %s: %w", name, err)
			}
			l.files = append(l.files, file)
			cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(file), zapcore.DebugLevel))
		}
	}

	l.Verbose = zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	l.Logger = l.Verbose.WithOptions(zap.IncreaseLevel(ParseLevel(level)))
	return l, nil
}

// Sync flushes buffered entries.
func (l *Logging) Sync() {
	if l == nil || l.Verbose == nil {
		return
	}
	_ = l.Verbose.Sync()
}

// Close flushes and closes log files.
func (l *Logging) Close() {
	if l == nil {
		return
	}
	l.Sync()
	for _, file := range l.files {
		_ = file.Close()
	}
	l.files = nil
}
