// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package errors defines the error kinds shared across the reactor core,
// following the sentinel-plus-structured-context convention the corpus
// uses in its own api/errors.go.
package errors

import "fmt"

// Sentinel error kinds. Components wrap these with fmt.Errorf("...: %w", ErrX)
// so callers can classify failures with errors.Is while still carrying a
// human-readable message.
var (
	// ErrInvalidInput covers malformed HTTP, unsupported methods, bad
	// URL-encoding and invalid configuration fields.
	ErrInvalidInput = fmt.Errorf("invalid input")

	// ErrNotFound covers filesystem lookups for a missing file.
	ErrNotFound = fmt.Errorf("not found")

	// ErrForbidden covers filesystem lookups blocked by permissions.
	ErrForbidden = fmt.Errorf("forbidden")

	// ErrSystem names the kernel-level failure kind: bind, listen,
	// accept, read/write, epoll, mmap, open. The packages that make those
	// calls return the wrapped unix errno and do not wrap ErrSystem, so
	// errors.Is(err, ErrSystem) does not match their failures.
	ErrSystem = fmt.Errorf("system error")

	// ErrKeyAbsent is raised by timer operations on an unknown key. It is
	// always a programming error and is never recovered locally.
	ErrKeyAbsent = fmt.Errorf("key absent")

	// ErrClosed names the closed-queue or closed-pool kind. No component
	// returns it: workerpool.Pool discards work pushed after Close, and
	// an asynchronous logger drops events logged after Close.
	ErrClosed = fmt.Errorf("closed")
)
