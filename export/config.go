// Copyright 2021 fdb2xml Authors. Licensed under Apache-2.0.

package export

import (
	"path/filepath"
	"strings"
)

const (
	// DefaultBatchSize bounds how many rows are serialized between two
	// flushes of the output stream. It is the only memory tunable.
	DefaultBatchSize = 256

	defaultUser     = "sysdba"
	defaultPassword = "masterkey"
	defaultHost     = "127.0.0.1"
	defaultPort     = 3050
)

// Config carries everything one export run needs.
type Config struct {
	// DatabasePath is the .fdb file to read.
	DatabasePath string
	// OutputPath is the XML file to produce. Derived from DatabasePath
	// when empty.
	OutputPath string

	Host     string
	Port     int
	User     string
	Password string
	// Charset is the connection character set. NONE hands raw bytes to
	// the type mapper so column character sets are decoded exactly.
	Charset string

	BatchSize     int
	IncludeSchema bool
	// Deterministic suppresses run-dependent output (the exported-at
	// attribute) so identical databases produce identical documents.
	Deterministic bool

	LogLevel  string
	LogFile   string
	LogFormat string
}

// DefaultConfig returns the config used when no flags are given.
func DefaultConfig() *Config {
	return &Config{
		Host:          defaultHost,
		Port:          defaultPort,
		User:          defaultUser,
		Password:      defaultPassword,
		Charset:       "NONE",
		BatchSize:     DefaultBatchSize,
		IncludeSchema: true,
		LogLevel:      "info",
		LogFormat:     "text",
	}
}

// ActualOutputPath resolves the output file: explicit path if set,
// otherwise <database>.xml next to the database file.
func (conf *Config) ActualOutputPath() string {
	if conf.OutputPath != "" {
		return conf.OutputPath
	}
	base := conf.DatabasePath
	if ext := filepath.Ext(base); strings.EqualFold(ext, ".fdb") || strings.EqualFold(ext, ".gdb") {
		base = base[:len(base)-len(ext)]
	}
	return base + ".xml"
}

func adjustConfig(conf *Config) {
	if conf.BatchSize <= 0 {
		conf.BatchSize = DefaultBatchSize
	}
	if conf.User == "" {
		conf.User = defaultUser
	}
	if conf.Charset == "" {
		conf.Charset = "NONE"
	}
}
