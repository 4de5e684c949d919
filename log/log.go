// Copyright 2021 fdb2xml Authors. Licensed under Apache-2.0.

package log

import (
	"sync/atomic"
	"unsafe"

	pclog "github.com/pingcap/log"
	"go.uber.org/zap"
)

// Config serializes log related config in yaml/json.
type Config struct {
	// Level is the log level, one of "debug", "info", "warn", "error".
	Level string `json:"level"`
	// File is the log file path, stderr when empty.
	File string `json:"file"`
	// Format is the log format, one of "text" or "json".
	Format string `json:"format"`
}

var appLogger = unsafe.Pointer(zap.NewNop())

// InitAppLogger initializes the global logger used across the exporter.
func InitAppLogger(cfg *Config) error {
	logger, _, err := pclog.InitLogger(&pclog.Config{
		Level:  cfg.Level,
		Format: cfg.Format,
		File:   pclog.FileLogConfig{Filename: cfg.File},
	})
	if err != nil {
		return err
	}
	SetAppLogger(logger)
	return nil
}

// SetAppLogger replaces the global logger. Safe for concurrent use.
func SetAppLogger(logger *zap.Logger) {
	atomic.StorePointer(&appLogger, unsafe.Pointer(logger))
}

// Zap returns the global logger.
func Zap() *zap.Logger {
	return (*zap.Logger)(atomic.LoadPointer(&appLogger))
}

// Debug logs a message at DebugLevel.
func Debug(msg string, fields ...zap.Field) {
	Zap().Debug(msg, fields...)
}

// Info logs a message at InfoLevel.
func Info(msg string, fields ...zap.Field) {
	Zap().Info(msg, fields...)
}

// Warn logs a message at WarnLevel.
func Warn(msg string, fields ...zap.Field) {
	Zap().Warn(msg, fields...)
}

// Error logs a message at ErrorLevel.
func Error(msg string, fields ...zap.Field) {
	Zap().Error(msg, fields...)
}
