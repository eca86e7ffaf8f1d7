// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package log

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// StdoutAppender writes formatted events to os.Stdout.
type StdoutAppender struct {
	mu sync.Mutex
}

// NewStdoutAppender constructs a StdoutAppender.
func NewStdoutAppender() *StdoutAppender {
	return &StdoutAppender{}
}

// Log writes event to stdout under the given formatter.
func (a *StdoutAppender) Log(loggerName string, event Event, formatter *Formatter) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprint(os.Stdout, formatter.Format(loggerName, event))
}

// Close is a no-op; stdout is not owned by the appender.
func (a *StdoutAppender) Close() error {
	return nil
}

// FileAppender writes formatted events to a file opened for append.
type FileAppender struct {
	mu   sync.Mutex
	path string
	file io.WriteCloser
}

// NewFileAppender opens (creating if necessary) path for append.
func NewFileAppender(path string) (*FileAppender, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("log: opening %s: %w", path, err)
	}
	return &FileAppender{path: path, file: f}, nil
}

// Log writes event to the backing file under the given formatter.
func (a *FileAppender) Log(loggerName string, event Event, formatter *Formatter) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fmt.Fprint(a.file, formatter.Format(loggerName, event))
}

// Close closes the backing file.
func (a *FileAppender) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.file.Close()
}
