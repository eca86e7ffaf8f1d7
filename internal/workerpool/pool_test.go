// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package workerpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPushExecutesAllTasks(t *testing.T) {
	p := New(4, nil)
	p.Start()
	defer p.Close()

	var n int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		p.Push(func() {
			atomic.AddInt32(&n, 1)
			wg.Done()
		})
	}
	wg.Wait()
	if got := atomic.LoadInt32(&n); got != 100 {
		t.Fatalf("executed %d tasks, want 100", got)
	}
}

func TestPanicInTaskDoesNotKillWorker(t *testing.T) {
	p := New(1, nil)
	p.Start()
	defer p.Close()

	done := make(chan struct{})
	p.Push(func() { panic("boom") })
	p.Push(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("worker did not recover from panic and continue")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	p := New(2, nil)
	p.Start()
	p.Close()
	p.Close() // must not block or panic.
}

func TestCloseDiscardsPendingTasks(t *testing.T) {
	p := New(0, nil) // count<=0 uses NumCPU, still a fixed size.
	p.Start()

	var ran atomic.Bool
	p.Close()
	p.Push(func() { ran.Store(true) })
	time.Sleep(10 * time.Millisecond)
	if ran.Load() {
		t.Fatalf("task pushed after Close should not run")
	}
}
