// Copyright 2021 fdb2xml Authors. Licensed under Apache-2.0.

package main

import (
	"fmt"
	"os"

	"github.com/docker/go-units"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/fdbtools/fdb2xml/export"
	"github.com/fdbtools/fdb2xml/log"
)

// Exit codes are part of the tool's contract:
//
//	0 - full success, every table exported cleanly
//	1 - total failure, no output file produced
//	2 - partial success, some tables skipped or truncated (see log)
const (
	exitFailure = 1
	exitPartial = 2
)

var (
	// Set at build time.
	Version   = "0.3.0-dev"
	GitCommit = "unknown"
)

func main() {
	conf := export.DefaultConfig()

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "fdb2xml - convert a Firebird database file into an XML document\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] <database.fdb>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Exit codes: 0 full success, 2 partial success, 1 failure.\n\nFlags:\n")
		pflag.PrintDefaults()
	}
	pflag.StringVarP(&conf.OutputPath, "output", "o", "", "Output XML file (default: <database>.xml)")
	pflag.StringVarP(&conf.User, "user", "u", conf.User, "Database user")
	pflag.StringVarP(&conf.Password, "password", "p", conf.Password, "Database password")
	pflag.StringVar(&conf.Host, "host", conf.Host, "Engine host")
	pflag.IntVar(&conf.Port, "port", conf.Port, "Engine port")
	pflag.StringVar(&conf.Charset, "charset", conf.Charset, "Connection character set")
	pflag.IntVar(&conf.BatchSize, "batch-size", conf.BatchSize, "Rows serialized between output flushes")
	noSchema := pflag.Bool("no-schema", false, "Omit the schema section from the document")
	pflag.BoolVar(&conf.Deterministic, "deterministic", false, "Omit run-dependent attributes for reproducible output")
	pflag.StringVar(&conf.LogLevel, "log-level", conf.LogLevel, "Log level: debug, info, warn, error")
	pflag.StringVar(&conf.LogFile, "log-file", "", "Log file (default: stderr)")
	printVersion := pflag.BoolP("version", "V", false, "Print version and exit")
	pflag.Parse()

	if *printVersion {
		fmt.Printf("fdb2xml %s (%s)\n", Version, GitCommit)
		return
	}

	if pflag.NArg() != 1 {
		pflag.Usage()
		os.Exit(exitFailure)
	}
	conf.DatabasePath = pflag.Arg(0)
	conf.IncludeSchema = !*noSchema

	err := log.InitAppLogger(&log.Config{
		Level:  conf.LogLevel,
		File:   conf.LogFile,
		Format: conf.LogFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "initialize logger failed: %s\n", err.Error())
		os.Exit(exitFailure)
	}

	registry := prometheus.NewRegistry()
	export.RegisterMetrics(registry)

	summary, err := export.Dump(conf)
	if err != nil {
		log.Error("export failed", zap.Error(err))
		os.Exit(exitFailure)
	}

	for _, issue := range summary.Skipped {
		log.Warn("table skipped", zap.String("detail", issue.String()))
	}
	for _, issue := range summary.Truncated {
		log.Warn("table truncated", zap.String("detail", issue.String()))
	}

	if fi, statErr := os.Stat(conf.ActualOutputPath()); statErr == nil {
		log.Info("done", zap.String("path", conf.ActualOutputPath()),
			zap.String("size", units.HumanSize(float64(fi.Size()))))
	}

	os.Exit(summary.Status().ExitCode())
}
