// Copyright 2026 The Coldforge Labs Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// WSDeque is a Chase–Lev work-stealing double-ended queue.
//
// One owner goroutine pushes and takes from the bottom; any number of thief
// goroutines steal from the top. The backing array grows on demand and is
// never shrunk. Based on Chase & Lev, "Dynamic Circular Work-Stealing
// Deque", and the corrected formulation in Lê et al., "Correct and
// Efficient Work-Stealing for Weak Memory Models".
//
// Thread safety: Push and Take must only be called by a single owner
// goroutine. Steal may be called by any number of goroutines concurrently
// with each other and with the owner.
type WSDeque[T any] struct {
	_      pad
	top    atomix.Uint64 // Next steal position
	_      pad
	bottom atomix.Uint64 // One past the owner's last push
	_      pad
	array  atomic.Pointer[wsArray[T]]
}

// wsArray is the circular backing array for a WSDeque. Its capacity is
// always a power of two so indices can be masked instead of modulo'd.
type wsArray[T any] struct {
	buf  []T
	mask uint64
}

func newWSArray[T any](capacity uint64) *wsArray[T] {
	return &wsArray[T]{
		buf:  make([]T, capacity),
		mask: capacity - 1,
	}
}

func (a *wsArray[T]) cap() uint64 {
	return a.mask + 1
}

func (a *wsArray[T]) get(i uint64) T {
	return a.buf[i&a.mask]
}

func (a *wsArray[T]) put(i uint64, v T) {
	a.buf[i&a.mask] = v
}

// grow returns a new array of double the capacity, containing the live
// range [t, b) copied at the same logical indices. The old array is left
// untouched; any thief still reading through it keeps it alive via its own
// local reference, so the garbage collector reclaims it once every such
// reader has moved on — no epoch or hazard-pointer bookkeeping is needed.
func (a *wsArray[T]) grow(t, b uint64) *wsArray[T] {
	grown := newWSArray[T](a.cap() * 2)
	for i := t; i != b; i++ {
		grown.put(i, a.get(i))
	}
	return grown
}

// minWSLogCapacity is log2 of the smallest backing-array capacity a WSDeque
// starts with (256), regardless of the hint passed to NewWSDeque.
const minWSLogCapacity = 8

// NewWSDeque creates a new work-stealing deque.
// capacityHint is rounded up to the next power of two, with a minimum of
// 2^minWSLogCapacity; the array grows automatically beyond that as needed.
func NewWSDeque[T any](capacityHint int) *WSDeque[T] {
	n := uint64(roundToPow2(capacityHint))
	if n < 1<<minWSLogCapacity {
		n = 1 << minWSLogCapacity
	}
	q := &WSDeque[T]{}
	q.array.Store(newWSArray[T](n))
	return q
}

// Push appends x to the bottom of the deque (owner only).
// Never fails; grows the backing array if it is full.
func (q *WSDeque[T]) Push(x T) {
	b := q.bottom.LoadRelaxed()
	t := q.top.LoadAcquire()
	a := q.array.Load()

	if b-t > a.cap()-1 {
		a = a.grow(t, b)
		q.array.Store(a)
	}

	a.put(b, x)
	q.bottom.StoreRelease(b + 1)
}

// Take removes and returns the most recently pushed element (owner only).
// Returns (zero-value, false) if the deque is empty.
func (q *WSDeque[T]) Take() (T, bool) {
	b := q.bottom.LoadRelaxed() - 1
	a := q.array.Load()
	// Publish the tentative new bottom with a release store, then read top
	// with an acquire load. atomix exposes no standalone full-fence
	// primitive; this release/acquire pair on the two ends of the race is
	// the strongest ordering available and is the idiom the underlying
	// Dekker-style exchange needs on every architecture atomix targets.
	q.bottom.StoreRelease(b)
	t := q.top.LoadAcquire()

	if int64(b-t) < 0 {
		// Empty: restore bottom to the one-past-end position.
		q.bottom.StoreRelease(t)
		var zero T
		return zero, false
	}

	x := a.get(b)
	if t == b {
		// Single element left: race a thief for it via the top CAS.
		if !q.top.CompareAndSwapAcqRel(t, t+1) {
			// Lost the race; thief took it.
			q.bottom.StoreRelaxed(t + 1)
			var zero T
			return zero, false
		}
		q.bottom.StoreRelaxed(t + 1)
		return x, true
	}
	return x, true
}

// Steal removes and returns the oldest element (any thread).
// Returns (x, nil) on success, (zero-value, ErrWouldBlock) if the deque
// appears empty, or (zero-value, ErrAbort) if a concurrent operation won a
// race for the same slot — the caller should retry.
func (q *WSDeque[T]) Steal() (T, error) {
	t := q.top.LoadAcquire()
	oldArray := q.array.Load()
	b := q.bottom.LoadAcquire()

	var zero T
	size := int64(b - t)
	if size <= 0 {
		return zero, ErrWouldBlock
	}

	a := q.array.Load()
	if a != oldArray {
		// The array changed mid-read: the slot we would read may belong
		// to a stale generation. Treat as a transient race and let the
		// caller retry against the fresh array/top.
		return zero, ErrAbort
	}

	x := a.get(t)
	if !q.top.CompareAndSwapAcqRel(t, t+1) {
		return zero, ErrAbort
	}
	return x, nil
}

// Cap returns the current backing-array capacity.
func (q *WSDeque[T]) Cap() int {
	return int(q.array.Load().cap())
}
