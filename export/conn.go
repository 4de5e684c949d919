// Copyright 2021 fdb2xml Authors. Licensed under Apache-2.0.

package export

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/coreos/go-semver/semver"
	_ "github.com/nakagami/firebirdsql"
	"go.uber.org/zap"

	"github.com/fdbtools/fdb2xml/log"
)

// The native client boundary. database/sql is the capability interface
// {connect, query, fetch, close}; the firebirdsql driver is the one
// concrete adapter behind it, so no raw engine handles leak past this file.

const driverName = "firebirdsql"

// Connect opens the database file and verifies it answers catalog queries.
// The handle must be released exactly once by the caller, on success and
// on failure alike.
func Connect(conf *Config) (*sql.DB, error) {
	fi, err := os.Stat(conf.DatabasePath)
	if err != nil {
		return nil, tagErr(ErrConnection, err)
	}
	if fi.IsDir() {
		return nil, tagErrf(ErrConnection, "%s is a directory, not a database file", conf.DatabasePath)
	}

	db, err := sql.Open(driverName, buildDSN(conf))
	if err != nil {
		return nil, tagErr(ErrConnection, err)
	}
	// One connection, one statement at a time: the run owns the handle
	// exclusively and the engine sees a single attachment.
	db.SetMaxOpenConns(1)

	// A cheap catalog probe surfaces a missing client library, a corrupt
	// file or a foreign lock as a connection failure instead of a late
	// query failure.
	var one int
	if err := db.QueryRow("SELECT 1 FROM RDB$DATABASE").Scan(&one); err != nil {
		_ = db.Close()
		return nil, tagErr(ErrConnection, err)
	}
	return db, nil
}

func buildDSN(conf *Config) string {
	return fmt.Sprintf("%s:%s@%s:%d/%s?charset=%s",
		conf.User, conf.Password, conf.Host, conf.Port, conf.DatabasePath, conf.Charset)
}

// EngineInfo describes the engine hosting the database.
type EngineInfo struct {
	Raw     string
	Version *semver.Version
}

// DetectEngineInfo asks the engine for its version. Failure is not fatal;
// the exporter only uses the version for logging and capability hints.
func DetectEngineInfo(db *sql.DB) EngineInfo {
	var raw string
	err := db.QueryRow(
		"SELECT RDB$GET_CONTEXT('SYSTEM', 'ENGINE_VERSION') FROM RDB$DATABASE").Scan(&raw)
	if err != nil {
		log.Warn("cannot detect engine version", zap.Error(err))
		return EngineInfo{}
	}
	info := EngineInfo{Raw: raw}
	if v, err := parseEngineVersion(raw); err == nil {
		info.Version = v
	} else {
		log.Warn("unparsable engine version", zap.String("version", raw), zap.Error(err))
	}
	return info
}

func parseEngineVersion(raw string) (*semver.Version, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), ".", 3)
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	return semver.NewVersion(strings.Join(parts[:3], "."))
}
