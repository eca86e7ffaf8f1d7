// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package mmap wraps a read-only memory mapping of a file, used by the
// response builder to serve static assets without copying file bytes
// into a connection's write buffer.
package mmap

import (
	"os"

	"golang.org/x/sys/unix"

	"github.com/momentics/reactord/errors"
)

// File is a read-only memory mapping. The zero value is not usable;
// construct with Open. A File owns its mapping and must be released
// with Close.
type File struct {
	path   string
	data   []byte
	closed bool
}

// Open maps path read-only. Failures are classified by errno into
// errors.ErrNotFound/ErrForbidden/ErrInvalidInput for logging purposes;
// callers building an HTTP response collapse all three to BadRequest,
// matching the original implementation's catch-all behavior.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, classify(path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, classify(path, err)
	}
	if info.IsDir() {
		return nil, classify(path, os.ErrInvalid)
	}

	size := info.Size()
	if size == 0 {
		return &File{path: path, data: nil}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, classify(path, err)
	}
	return &File{path: path, data: data}, nil
}

func classify(path string, err error) error {
	switch {
	case os.IsNotExist(err):
		return errors.ErrNotFound
	case os.IsPermission(err), err == unix.EACCES:
		return errors.ErrForbidden
	default:
		return errors.ErrInvalidInput
	}
}

// Path returns the mapped file's path.
func (f *File) Path() string {
	return f.path
}

// Size returns the mapped region's length in bytes.
func (f *File) Size() int {
	return len(f.data)
}

// Data returns the mapped bytes. The slice is only valid until Close.
func (f *File) Data() []byte {
	return f.data
}

// Close releases the mapping. Safe to call more than once.
func (f *File) Close() error {
	if f.closed || f.data == nil {
		f.closed = true
		return nil
	}
	f.closed = true
	return unix.Munmap(f.data)
}
