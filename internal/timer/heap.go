// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package timer implements the reactor's idle-timeout wheel: a min-heap
// of (key, expiration, callback) nodes ordered by expiration, with a
// side map from key to heap index for O(1) membership tests and O(log n)
// adjust/remove. It is built on the standard library's container/heap,
// matching the one heap-based timer precedent already in the corpus
// (internal/concurrency/scheduler.go's taskHeap).
//
// The wheel is not internally synchronized; spec.md §4.2 and §5 require
// it to be mutated only under the reactor's own mutex.
package timer

import (
	"container/heap"
	"time"

	"github.com/momentics/reactord/errors"
)

// Callback is invoked with a node's key when its timer fires or is
// explicitly invoked. Panics raised inside a callback are recovered and
// must never propagate out of Tick/Invoke.
type Callback func(key int)

type node struct {
	key        int
	expiration time.Time
	callback   Callback
}

// store is the container/heap.Interface implementation ordered by
// expiration ascending. Ties are broken only by heap shape, per
// spec.md §3. It also keeps a key->index side map in sync on every
// Swap/Push/Pop, which is the invariant spec.md §8 tests.
type store struct {
	nodes   []*node
	indices map[int]int
}

func (s *store) Len() int           { return len(s.nodes) }
func (s *store) Less(i, j int) bool { return s.nodes[i].expiration.Before(s.nodes[j].expiration) }
func (s *store) Swap(i, j int) {
	s.nodes[i], s.nodes[j] = s.nodes[j], s.nodes[i]
	s.indices[s.nodes[i].key] = i
	s.indices[s.nodes[j].key] = j
}
func (s *store) Push(x interface{}) {
	n := x.(*node)
	s.indices[n.key] = len(s.nodes)
	s.nodes = append(s.nodes, n)
}
func (s *store) Pop() interface{} {
	last := len(s.nodes) - 1
	n := s.nodes[last]
	s.nodes = s.nodes[:last]
	delete(s.indices, n.key)
	return n
}

// Wheel is a min-heap timer queue keyed by connection identifier.
type Wheel struct {
	s    store
	logf func(format string, args ...any)
}

// New creates an empty timer wheel. logf, if non-nil, receives a
// formatted message whenever a callback panics; Tick/Invoke never
// propagate those panics.
func New(logf func(format string, args ...any)) *Wheel {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Wheel{s: store{indices: make(map[int]int)}, logf: logf}
}

// Size reports the number of nodes currently tracked.
func (w *Wheel) Size() int { return w.s.Len() }

// Empty reports whether the wheel has no nodes.
func (w *Wheel) Empty() bool { return w.s.Len() == 0 }

// Contains reports whether key is currently tracked.
func (w *Wheel) Contains(key int) bool {
	_, ok := w.s.indices[key]
	return ok
}

// Push inserts a new node, or adjusts an existing one with the same
// key, per spec.md §4.2.
func (w *Wheel) Push(key int, expiration time.Time, cb Callback) {
	if idx, ok := w.s.indices[key]; ok {
		w.s.nodes[idx].expiration = expiration
		w.s.nodes[idx].callback = cb
		heap.Fix(&w.s, idx)
		return
	}
	heap.Push(&w.s, &node{key: key, expiration: expiration, callback: cb})
}

// Adjust updates an existing node's expiration. It returns
// errors.ErrKeyAbsent if the key is unknown.
func (w *Wheel) Adjust(key int, expiration time.Time) error {
	idx, ok := w.s.indices[key]
	if !ok {
		return errors.ErrKeyAbsent
	}
	w.s.nodes[idx].expiration = expiration
	heap.Fix(&w.s, idx)
	return nil
}

// Remove deletes key if present, returning whether it was found. It
// does not sift the node to the root before popping; it uses
// container/heap's heap.Remove, which swaps the node with the last one,
// pops it, and fixes the moved node up or down.
func (w *Wheel) Remove(key int) bool {
	idx, ok := w.s.indices[key]
	if !ok {
		return false
	}
	heap.Remove(&w.s, idx)
	return true
}

// Invoke removes key and runs its callback synchronously, recovering
// any panic. It returns errors.ErrKeyAbsent if the key is unknown.
func (w *Wheel) Invoke(key int) error {
	idx, ok := w.s.indices[key]
	if !ok {
		return errors.ErrKeyAbsent
	}
	n := w.s.nodes[idx]
	heap.Remove(&w.s, idx)
	w.safeCall(n)
	return nil
}

// Tick pops and invokes every node whose expiration has already
// passed, in non-decreasing expiration order.
func (w *Wheel) Tick() {
	now := time.Now()
	for w.s.Len() > 0 && !w.s.nodes[0].expiration.After(now) {
		n := heap.Pop(&w.s).(*node)
		w.safeCall(n)
	}
}

// ToNextTick runs Tick and then returns the non-negative duration until
// the next node expires, or zero if the wheel is empty.
func (w *Wheel) ToNextTick() time.Duration {
	w.Tick()
	if w.s.Len() == 0 {
		return 0
	}
	if d := time.Until(w.s.nodes[0].expiration); d > 0 {
		return d
	}
	return 0
}

// Clear removes every tracked node without invoking callbacks.
func (w *Wheel) Clear() {
	w.s.nodes = nil
	w.s.indices = make(map[int]int)
}

func (w *Wheel) safeCall(n *node) {
	defer func() {
		if r := recover(); r != nil {
			w.logf("timer: callback for key %d panicked: %v", n.key, r)
		}
	}()
	if n.callback != nil {
		n.callback(n.key)
	}
}
