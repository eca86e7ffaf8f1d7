// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package workerpool implements the bounded-concurrency task executor
// described in spec.md §4.3: a fixed-size set of goroutines draining a
// FIFO queue, signaled by a condition variable, with at-least-once-
// assigned delivery (every pushed task is executed or dropped at Close,
// never both).
//
// The FIFO queue is backed by github.com/eapache/queue, a ring-buffer
// queue the corpus's go.mod already requires but never imports — this
// is its first use.
package workerpool

import (
	"runtime"
	"sync"

	"github.com/eapache/queue"
)

// Task is an opaque, zero-argument unit of work.
type Task func()

// Pool is a fixed-size FIFO worker pool. The zero value is not usable;
// construct with New.
type Pool struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  *queue.Queue
	closed bool
	count  int
	wg     sync.WaitGroup
	logf   func(format string, args ...any)
}

// New creates a pool with the given thread count. A count of 0 uses
// runtime.NumCPU(). The pool starts in the closed state; call Start to
// spawn its goroutines, matching the lifecycle spec.md §4.3 specifies.
func New(count int, logf func(format string, args ...any)) *Pool {
	if count <= 0 {
		count = runtime.NumCPU()
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}
	p := &Pool{tasks: queue.New(), closed: true, count: count, logf: logf}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Start transitions the pool to running and spawns its worker
// goroutines. Calling Start more than once is a no-op.
func (p *Pool) Start() {
	p.mu.Lock()
	if !p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = false
	p.mu.Unlock()

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.loop()
	}
}

// Push enqueues a task for execution by some worker. It is safe to call
// from any goroutine, including from inside a task running on this
// pool.
func (p *Pool) Push(t Task) {
	p.mu.Lock()
	p.tasks.Add(t)
	p.mu.Unlock()
	p.cond.Signal()
}

// Close stops accepting new work and wakes every idle worker. Tasks
// still in the queue when Close is called are discarded without
// running — a documented, user-visible property of this pool, per
// spec.md §4.3.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
	p.wg.Wait()
}

func (p *Pool) loop() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for p.tasks.Length() == 0 && !p.closed {
			p.cond.Wait()
		}
		if p.closed {
			p.mu.Unlock()
			return
		}
		t := p.tasks.Remove().(Task)
		p.mu.Unlock()

		p.safeExecute(t)
	}
}

func (p *Pool) safeExecute(t Task) {
	defer func() {
		if r := recover(); r != nil {
			p.logf("workerpool: task panicked: %v", r)
		}
	}()
	t()
}
