// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral readiness multiplexer interface. spec.md §4.4 names
// epoll/kqueue/IOCP-poll as interchangeable kernel facilities behind
// this contract; this module ships the Linux epoll implementation
// only, matching the corpus's own single-address-family, single-OS
// deployment target.

package reactor

import "time"

// Interest is a bitmask of the readiness conditions a descriptor is
// registered for.
type Interest uint32

const (
	// Readable requests notification when the descriptor has data to
	// read (or, for the listener, a pending connection).
	Readable Interest = 1 << iota
	// Writable requests notification when a write would not block.
	Writable
	// PeerClose requests notification when the peer has shut down its
	// write half (a half-close).
	PeerClose
	// EdgeTriggered selects edge- rather than level-triggered delivery:
	// the descriptor must be drained until the kernel reports
	// "would block" before it will fire again.
	EdgeTriggered
	// OneShot disables further events for a descriptor until the
	// reactor explicitly calls Modify to rearm it. This is the
	// discipline that lets a worker-pool task and the main loop share
	// a connection without racing, per spec.md §4.4 and §5.
	OneShot
)

// Event describes one ready descriptor returned by Wait.
type Event struct {
	Fd     int
	Events Interest
}

// Reactor is the readiness multiplexer the server loop polls.
type Reactor interface {
	// Add registers fd with the given interest mask.
	Add(fd int, interest Interest) error
	// Modify changes fd's interest mask (used to rearm a ONE_SHOT
	// descriptor or flip it between Readable and Writable).
	Modify(fd int, interest Interest) error
	// Remove unregisters fd. It is not an error to remove an fd that
	// was never added or was already removed.
	Remove(fd int) error
	// Wait blocks for up to timeout for at least one ready event,
	// populating the returned slice. A zero-length, nil-error result
	// means the wait timed out or was interrupted by a benign signal.
	Wait(timeout time.Duration) ([]Event, error)
	// Close releases the underlying kernel resource. Safe to call more
	// than once.
	Close() error
}
