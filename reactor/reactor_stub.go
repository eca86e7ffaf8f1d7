//go:build !linux

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub for platforms other than Linux. spec.md's kernel facility is
// epoll specifically; this module does not implement a kqueue or
// IOCP-poll backend.

package reactor

import "fmt"

// New returns an error on every non-Linux platform.
func New() (Reactor, error) {
	return nil, fmt.Errorf("reactor: epoll is only supported on linux")
}
