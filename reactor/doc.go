// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the readiness multiplexer abstraction the
// server's event loop polls, and its Linux epoll(7) implementation.
package reactor
