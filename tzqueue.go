// Copyright 2026 The Coldforge Labs Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Slot states for TZQueue. tzFree0/tzFree1 are the two alternating "empty"
// markers; a slot flips between them each time it is drained, which is what
// lets the helping protocol tell a freshly-emptied slot apart from one that
// was never filled this lap, without a separate round counter.
const (
	tzFree0 = iota
	tzFree1
	tzBusy // claimed by an enqueuer, value not yet published
	tzOcc0 // holds a value; was tzFree0 before being claimed
	tzOcc1 // holds a value; was tzFree1 before being claimed
)

type tzSlot[T any] struct {
	state atomix.Uint64
	data  T
	_     padShort
}

// TZQueue is a bounded multi-producer multi-consumer queue using a dual-null
// sentinel scheme and a helping protocol, after Tsigas & Zhang, "A Simple,
// Fast and Scalable Non-Blocking Concurrent FIFO Queue for Shared Memory
// Multiprocessor Systems".
//
// The backing array holds capacity+2 slots; the two extra slots give the
// head/tail cursors room to always have a free slot ahead of them, which is
// what lets Enqueue and Dequeue tell "full" apart from "someone else is
// mid-operation" without locking.
//
// The original algorithm packs a slot's occupied/free state into the low
// tag bit of the stored pointer itself, so one CAS both claims a slot and
// publishes its value. Go's generic T is not necessarily pointer-shaped and
// a real Go pointer cannot be bit-tagged without making it invisible to the
// garbage collector, so here the state lives in its own atomic word: an
// enqueuer CASes tzFree0/tzFree1 to tzBusy to claim the slot, writes data,
// then publishes with a release store to tzOcc0/tzOcc1. A dequeuer treats
// tzBusy as "not yet ready" and spins on it rather than skipping the slot.
// This preserves the algorithm's two-state free/occupied alternation and its
// full helping protocol; only the single-CAS publish becomes a claim-then-
// publish pair.
//
// Memory: capacity+2 slots.
type TZQueue[T any] struct {
	_        pad
	tail     atomix.Uint64
	_        pad
	head     atomix.Uint64
	_        pad
	nodes    []tzSlot[T]
	capacity uint64
}

// NewTZQueue creates a new bounded TZQueue holding up to capacity elements.
func NewTZQueue[T any](capacity int) *TZQueue[T] {
	if capacity < 1 {
		panic("lfq: capacity must be >= 1")
	}

	maxnum := uint64(capacity) + 2
	q := &TZQueue[T]{
		nodes:    make([]tzSlot[T], maxnum),
		capacity: uint64(capacity),
	}
	for i := range q.nodes {
		q.nodes[i].state.StoreRelaxed(tzFree0)
	}
	q.nodes[0].state.StoreRelaxed(tzFree1)
	q.tail.StoreRelaxed(1)
	q.head.StoreRelaxed(0)
	return q
}

func (q *TZQueue[T]) maxnum() uint64 {
	return uint64(len(q.nodes))
}

func isTZFree(s uint64) bool {
	return s == tzFree0 || s == tzFree1
}

// Enqueue adds an element to the queue.
// Returns ErrWouldBlock if the queue is full.
func (q *TZQueue[T]) Enqueue(elem *T) error {
	sw := spin.Wait{}
enqueueRetry:
	for {
		te := q.tail.LoadAcquire()
		ate := te
		tt := q.nodes[ate].state.LoadRelaxed()
		temp := (ate + 1) % q.maxnum()

		for !isTZFree(tt) {
			if te != q.tail.LoadRelaxed() {
				sw.Once()
				continue enqueueRetry
			}
			if temp == q.head.LoadAcquire() {
				break
			}
			tt = q.nodes[temp].state.LoadRelaxed()
			ate = temp
			temp = (temp + 1) % q.maxnum()
		}

		if te != q.tail.LoadRelaxed() {
			sw.Once()
			continue
		}

		if temp == q.head.LoadAcquire() {
			ate = (temp + 1) % q.maxnum()
			tt = q.nodes[ate].state.LoadRelaxed()
			if !isTZFree(tt) {
				return ErrWouldBlock
			}
			// The cell right after head is free but head hasn't advanced:
			// a dequeuer is stalled. Help it along before retrying.
			q.head.CompareAndSwapAcqRel(temp, ate)
			sw.Once()
			continue
		}

		if te != q.tail.LoadRelaxed() {
			sw.Once()
			continue
		}

		if !q.nodes[ate].state.CompareAndSwapAcqRel(tt, tzBusy) {
			sw.Once()
			continue
		}

		q.nodes[ate].data = *elem
		final := uint64(tzOcc0)
		if tt == tzFree1 {
			final = tzOcc1
		}
		q.nodes[ate].state.StoreRelease(final)

		if temp%2 == 0 {
			q.tail.CompareAndSwapAcqRel(te, temp)
		}
		return nil
	}
}

// Dequeue removes and returns an element from the queue.
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *TZQueue[T]) Dequeue() (T, error) {
	sw := spin.Wait{}
dequeueRetry:
	for {
		th := q.head.LoadAcquire()
		temp := (th + 1) % q.maxnum()
		tt := q.nodes[temp].state.LoadRelaxed()

		for isTZFree(tt) {
			if th != q.head.LoadRelaxed() {
				sw.Once()
				continue dequeueRetry
			}
			if temp == q.tail.LoadAcquire() {
				var zero T
				return zero, ErrWouldBlock
			}
			temp = (temp + 1) % q.maxnum()
			tt = q.nodes[temp].state.LoadRelaxed()
		}

		if th != q.head.LoadRelaxed() {
			sw.Once()
			continue
		}

		if temp == q.tail.LoadAcquire() {
			// Tail hasn't advanced past a slot an enqueuer already claimed;
			// help it along before retrying.
			q.tail.CompareAndSwapAcqRel(temp, (temp+1)%q.maxnum())
			continue
		}

		if tt == tzBusy {
			sw.Once()
			continue
		}

		tt = q.nodes[temp].state.LoadAcquire()
		if tt == tzBusy {
			sw.Once()
			continue
		}
		if isTZFree(tt) {
			continue
		}

		value := q.nodes[temp].data
		tnull := uint64(tzFree1)
		if tt == tzOcc1 {
			tnull = tzFree0
		}

		if th != q.head.LoadRelaxed() {
			sw.Once()
			continue
		}

		if q.nodes[temp].state.CompareAndSwapAcqRel(tt, tnull) {
			var zero T
			q.nodes[temp].data = zero
			if temp%2 == 0 {
				q.head.CompareAndSwapAcqRel(th, temp)
			}
			return value, nil
		}
		sw.Once()
	}
}

// Cap returns the queue's usable capacity (excludes the two helper slots).
func (q *TZQueue[T]) Cap() int {
	return int(q.capacity)
}
