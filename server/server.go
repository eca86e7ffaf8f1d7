// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package server implements the reactor event loop: it owns the
// listening socket, the connection table, the idle-timeout wheel, and
// the worker pool, and decides how each readiness event is dispatched.
package server

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/reactord/internal/connection"
	"github.com/momentics/reactord/internal/timer"
	"github.com/momentics/reactord/internal/workerpool"
	"github.com/momentics/reactord/log"
	"github.com/momentics/reactord/reactor"
	"github.com/momentics/reactord/transport/tcp"
)

// Config configures one Reactor.
type Config struct {
	Port        uint16
	AliveTime   time.Duration
	AssetFolder string
	WorkerCount int
}

const connectionInterest = reactor.EdgeTriggered | reactor.OneShot | reactor.PeerClose

// Reactor is the single-threaded event dispatcher described in
// spec.md §4.8.
type Reactor struct {
	cfg        Config
	listenerFd int
	mux        reactor.Reactor
	pool       *workerpool.Pool
	logger     *log.Logger

	mu          sync.Mutex
	timers      *timer.Wheel
	connections map[int]*connection.Connection

	closed bool
}

// New constructs a Reactor bound to cfg.Port. It does not start
// listening; call Start for that.
func New(cfg Config, logger *log.Logger) (*Reactor, error) {
	if logger == nil {
		logger = log.New("server", log.Info, 0)
	}

	mux, err := reactor.New()
	if err != nil {
		return nil, fmt.Errorf("constructing reactor: %w", err)
	}

	r := &Reactor{
		cfg:         cfg,
		mux:         mux,
		pool:        workerpool.New(cfg.WorkerCount, logger.Errorf),
		logger:      logger,
		connections: make(map[int]*connection.Connection),
	}
	r.timers = timer.New(logger.Errorf)
	return r, nil
}

// Start opens the listening socket, registers it with the multiplexer,
// starts the worker pool, and runs the event loop until Close is
// called. It returns when the loop exits.
func (r *Reactor) Start() error {
	fd, err := tcp.Listen(r.cfg.Port)
	if err != nil {
		return fmt.Errorf("starting listener: %w", err)
	}
	r.listenerFd = fd

	if err := r.mux.Add(r.listenerFd, reactor.Readable|reactor.EdgeTriggered|reactor.PeerClose); err != nil {
		return fmt.Errorf("registering listener: %w", err)
	}

	r.pool.Start()
	r.logger.Infof("listening on port %d", r.cfg.Port)

	for {
		r.mu.Lock()
		waitTime := r.timers.ToNextTick()
		r.mu.Unlock()

		if r.isClosed() {
			return nil
		}

		events, err := r.mux.Wait(waitTimeOrDefault(waitTime))
		if err != nil {
			return fmt.Errorf("reactor wait: %w", err)
		}
		if r.isClosed() {
			return nil
		}

		for _, ev := range events {
			r.dispatch(ev)
		}
	}
}

func waitTimeOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Second
	}
	return d
}

func (r *Reactor) isClosed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Reactor) dispatch(ev reactor.Event) {
	if ev.Fd == r.listenerFd {
		r.acceptAll()
		return
	}

	switch {
	case ev.Events&reactor.PeerClose != 0:
		r.closeConnection(ev.Fd)
	case ev.Events&reactor.Readable != 0:
		r.extendTimer(ev.Fd)
		r.pool.Push(func() { r.handleReadable(ev.Fd) })
	case ev.Events&reactor.Writable != 0:
		r.extendTimer(ev.Fd)
		r.pool.Push(func() { r.handleWritable(ev.Fd) })
	default:
		r.logger.Warnf("reactor: unexpected event mask %d for fd %d", ev.Events, ev.Fd)
	}
}

func (r *Reactor) acceptAll() {
	if err := tcp.AcceptAll(r.listenerFd, r.acceptOne); err != nil {
		r.logger.Errorf("accept: %v", err)
	}
}

func (r *Reactor) acceptOne(fd int, addr unix.Sockaddr) error {
	conn := connection.New(fd, tcp.IPAddress(addr), tcp.Port(addr), r.cfg.AssetFolder)

	r.mu.Lock()
	r.connections[fd] = conn
	r.timers.Push(fd, time.Now().Add(r.cfg.AliveTime), func(key int) {
		r.closeConnectionLocked(key)
	})
	r.mu.Unlock()

	if err := r.mux.Add(fd, connectionInterest|reactor.Readable); err != nil {
		r.closeConnection(fd)
		return err
	}
	return nil
}

// closeConnectionLocked is the timer callback invoked by Tick/ToNextTick
// while the reactor mutex is already held; it must not try to
// re-acquire it.
func (r *Reactor) closeConnectionLocked(fd int) {
	conn, ok := r.connections[fd]
	if ok {
		delete(r.connections, fd)
	}
	r.mux.Remove(fd)
	if ok {
		conn.Close()
	}
}

func (r *Reactor) closeConnection(fd int) {
	r.mu.Lock()
	conn, ok := r.connections[fd]
	if ok {
		delete(r.connections, fd)
	}
	r.timers.Remove(fd)
	r.mu.Unlock()

	r.mux.Remove(fd)
	if ok {
		conn.Close()
	}
}

func (r *Reactor) extendTimer(fd int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timers.Adjust(fd, time.Now().Add(r.cfg.AliveTime))
}

func (r *Reactor) handleReadable(fd int) {
	conn := r.lookup(fd)
	if conn == nil {
		return
	}
	if _, err := conn.Receive(); err != nil {
		r.logger.Errorf("receive on fd %d: %v", fd, err)
		r.closeConnection(fd)
		return
	}
	wantWrite, err := conn.Process()
	if err != nil {
		r.logger.Errorf("process on fd %d: %v", fd, err)
		r.closeConnection(fd)
		return
	}
	r.rearm(fd, wantWrite)
}

func (r *Reactor) handleWritable(fd int) {
	conn := r.lookup(fd)
	if conn == nil {
		return
	}
	done, err := conn.Send()
	if err != nil {
		r.logger.Errorf("send on fd %d: %v", fd, err)
		r.closeConnection(fd)
		return
	}
	if !done {
		r.rearm(fd, true)
		return
	}
	if !conn.KeepAlive() {
		r.closeConnection(fd)
		return
	}

	// Keep-alive: attempt to process a pipelined request already
	// buffered; an empty read buffer makes Process report false, which
	// rearms for READ exactly as a fresh connection would.
	wantWrite, err := conn.Process()
	if err != nil {
		r.logger.Errorf("process on fd %d: %v", fd, err)
		r.closeConnection(fd)
		return
	}
	r.rearm(fd, wantWrite)
}

func (r *Reactor) lookup(fd int) *connection.Connection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.connections[fd]
}

func (r *Reactor) rearm(fd int, forWrite bool) {
	interest := connectionInterest
	if forWrite {
		interest |= reactor.Writable
	} else {
		interest |= reactor.Readable
	}
	if err := r.mux.Modify(fd, interest); err != nil {
		r.logger.Errorf("rearm fd %d: %v", fd, err)
		r.closeConnection(fd)
	}
}

// Close shuts the reactor down: closes the listener, stops the worker
// pool (discarding pending tasks), clears the timer wheel, and closes
// every open connection. Safe to call more than once.
func (r *Reactor) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	conns := r.connections
	r.connections = make(map[int]*connection.Connection)
	r.timers.Clear()
	r.mu.Unlock()

	r.mux.Remove(r.listenerFd)
	if r.listenerFd > 0 {
		unix.Close(r.listenerFd)
	}
	r.mux.Close()
	r.pool.Close()

	for _, conn := range conns {
		conn.Close()
	}
	return nil
}
