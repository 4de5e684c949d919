// Copyright 2021 fdb2xml Authors. Licensed under Apache-2.0.

package export

import (
	"bufio"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/fdbtools/fdb2xml/log"
)

// FileSink is the buffered byte stream behind the serializer. It is either
// finalized (flushed, synced, closed) or discarded (closed and removed);
// a finalized file is the single proof of a complete export.
type FileSink struct {
	path string
	file *os.File
	buf  *bufio.Writer
	done bool
}

// NewFileSink creates (or truncates) the output file.
func NewFileSink(path string) (*FileSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		log.Error("open output file failed", zap.String("path", path), zap.Error(err))
		return nil, tagErr(ErrOutputIO, err)
	}
	log.Debug("opened output file", zap.String("path", path))
	return &FileSink{
		path: path,
		file: file,
		buf:  bufio.NewWriter(file),
	}, nil
}

// Write implements io.Writer for the XML encoder.
func (fs *FileSink) Write(p []byte) (int, error) {
	start := time.Now()
	n, err := fs.buf.Write(p)
	writeTimeHistogram.WithLabelValues().Observe(time.Since(start).Seconds())
	if err != nil {
		log.Error("writing output failed", zap.String("path", fs.path), zap.Error(err))
		return n, tagErr(ErrOutputIO, err)
	}
	finishedSizeCounter.WithLabelValues().Add(float64(n))
	return n, nil
}

// Path returns the destination file path.
func (fs *FileSink) Path() string {
	return fs.path
}

// Size reports the bytes written so far, including unflushed ones.
func (fs *FileSink) Size() (int64, error) {
	fi, err := fs.file.Stat()
	if err != nil {
		return 0, tagErr(ErrOutputIO, err)
	}
	return fi.Size() + int64(fs.buf.Buffered()), nil
}

// Finalize flushes and closes the file, marking the export complete.
func (fs *FileSink) Finalize() error {
	if fs.done {
		return nil
	}
	fs.done = true
	if err := fs.buf.Flush(); err != nil {
		return tagErr(ErrOutputIO, err)
	}
	if err := fs.file.Sync(); err != nil {
		return tagErr(ErrOutputIO, err)
	}
	if err := fs.file.Close(); err != nil {
		return tagErr(ErrOutputIO, err)
	}
	return nil
}

// Discard closes and removes the partial file so a failed run never leaves
// behind something that looks like a valid export.
func (fs *FileSink) Discard() {
	if fs.done {
		return
	}
	fs.done = true
	if err := fs.file.Close(); err != nil {
		log.Warn("close partial output failed", zap.String("path", fs.path), zap.Error(err))
	}
	if err := os.Remove(fs.path); err != nil {
		log.Warn("remove partial output failed", zap.String("path", fs.path), zap.Error(err))
	}
}
