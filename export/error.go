// Copyright 2021 fdb2xml Authors. Licensed under Apache-2.0.

package export

import (
	stderrors "errors"
	"fmt"

	"github.com/pingcap/errors"
)

// Failure kinds the exporter distinguishes. ErrConnection and ErrOutputIO
// abort the whole run; ErrMetadata, ErrQuery and ErrRowFetch are scoped to
// one table; ErrEncoding is scoped to one cell and only ever recorded as a
// warning.
var (
	ErrConnection = stderrors.New("cannot open database")
	ErrMetadata   = stderrors.New("inconsistent catalog metadata")
	ErrQuery      = stderrors.New("query rejected by engine")
	ErrRowFetch   = stderrors.New("row fetch failed")
	ErrEncoding   = stderrors.New("untranslatable character data")
	ErrOutputIO   = stderrors.New("cannot write output")
)

type taggedError struct {
	kind  error
	cause error
}

func (e *taggedError) Error() string {
	return fmt.Sprintf("%s: %s", e.kind.Error(), e.cause.Error())
}

func (e *taggedError) Unwrap() error {
	return e.cause
}

func (e *taggedError) Cause() error {
	return e.cause
}

func (e *taggedError) Is(target error) bool {
	return target == e.kind
}

// tagErr attaches one of the failure kinds to err. The tag is the
// outermost layer so stderrors.Is reaches it without relying on the
// wrapping below; the stack trace rides on the cause side.
func tagErr(kind error, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, kind) {
		return err
	}
	return &taggedError{kind: kind, cause: errors.Trace(err)}
}

func tagErrf(kind error, format string, args ...interface{}) error {
	return &taggedError{kind: kind, cause: errors.Errorf(format, args...)}
}

// isFatal reports whether err must abort the whole run instead of being
// scoped to a single table or cell.
func isFatal(err error) bool {
	return stderrors.Is(err, ErrConnection) || stderrors.Is(err, ErrOutputIO)
}

// Status is the overall outcome of one export run.
type Status int

const (
	// StatusSuccess means every table was exported cleanly.
	StatusSuccess Status = iota
	// StatusPartial means some tables were skipped or truncated.
	StatusPartial
	// StatusFailure means the run produced no usable document.
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusPartial:
		return "partial success"
	case StatusFailure:
		return "failure"
	default:
		return fmt.Sprintf("unknown status %d", int(s))
	}
}

// ExitCode maps a status to the stable process exit code: 0 on success,
// 2 on partial success, 1 on failure.
func (s Status) ExitCode() int {
	switch s {
	case StatusSuccess:
		return 0
	case StatusPartial:
		return 2
	default:
		return 1
	}
}

// TableIssue records a table-scoped failure kept out of the output document.
type TableIssue struct {
	Table string
	Err   error
}

func (t TableIssue) String() string {
	return fmt.Sprintf("%s: %s", t.Table, t.Err.Error())
}

// Summary accumulates per-run counters and table-scoped issues. It is owned
// by Dump and must not be shared while a run is in progress.
type Summary struct {
	Tables    int
	Rows      uint64
	Skipped   []TableIssue
	Truncated []TableIssue
	Warnings  []string
}

func (s *Summary) recordSkipped(table string, err error) {
	s.Skipped = append(s.Skipped, TableIssue{Table: table, Err: err})
}

func (s *Summary) recordTruncated(table string, err error) {
	s.Truncated = append(s.Truncated, TableIssue{Table: table, Err: err})
}

func (s *Summary) recordWarning(warning string) {
	s.Warnings = append(s.Warnings, warning)
}

// Status derives the overall outcome from what was recorded.
func (s *Summary) Status() Status {
	if len(s.Skipped) == 0 && len(s.Truncated) == 0 {
		return StatusSuccess
	}
	return StatusPartial
}
