// Copyright 2021 fdb2xml Authors. Licensed under Apache-2.0.

package export

import (
	"database/sql"
	"strings"
	"time"

	"github.com/pingcap/errors"
)

const (
	openCursorRetryTime       = 3
	openCursorWaitInterval    = 50 * time.Millisecond
	openCursorMaxWaitInterval = 200 * time.Millisecond
)

type openCursorBackoffer struct {
	attempt      int
	delayTime    time.Duration
	maxDelayTime time.Duration
}

func newOpenCursorBackoffer() *openCursorBackoffer {
	return &openCursorBackoffer{
		attempt:      openCursorRetryTime,
		delayTime:    openCursorWaitInterval,
		maxDelayTime: openCursorMaxWaitInterval,
	}
}

func (b *openCursorBackoffer) NextBackoff(err error) time.Duration {
	if !isRetryableError(errors.Cause(err)) {
		b.attempt = 0
		return 0
	}
	b.delayTime = 2 * b.delayTime
	b.attempt--
	if b.delayTime > b.maxDelayTime {
		return b.maxDelayTime
	}
	return b.delayTime
}

func (b *openCursorBackoffer) Attempt() int {
	return b.attempt
}

// isRetryableError recognizes the engine's transient concurrency failures.
// Everything else fails fast.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "lock conflict") ||
		strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "update conflicts")
}

func queryWithRetry(db *sql.DB, query string, args ...interface{}) (*sql.Rows, error) {
	bo := newOpenCursorBackoffer()
	var lastErr error
	for bo.Attempt() > 0 {
		rows, err := db.Query(query, args...)
		if err == nil {
			return rows, nil
		}
		lastErr = err
		delay := bo.NextBackoff(err)
		if delay > 0 {
			time.Sleep(delay)
		}
	}
	return nil, errors.Trace(lastErr)
}
