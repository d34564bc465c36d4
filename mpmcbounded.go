// Copyright 2026 The Coldforge Labs Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// MPMCBounded is a CAS-based multi-producer multi-consumer bounded queue.
//
// Based on Dmitry Vyukov's bounded MPMC queue. Each slot carries a sequence
// counter that classifies it as empty, ready, or stale relative to the
// reader's/writer's expected position, giving full ABA safety with a single
// CAS per successful operation and n physical slots for capacity n.
//
// Memory: n slots (64+ bytes per slot: sequence word, data, cache-line padding)
type MPMCBounded[T any] struct {
	_        pad
	tail     atomix.Uint64 // Producer index
	_        pad
	head     atomix.Uint64 // Consumer index
	_        pad
	buffer   []mpmcBoundedSlot[T]
	mask     uint64
	capacity uint64
}

type mpmcBoundedSlot[T any] struct {
	seq  atomix.Uint64
	data T
	_    padShort // Pad to cache line
}

// NewMPMCBounded creates a new bounded MPMC queue.
// Capacity rounds up to the next power of 2.
func NewMPMCBounded[T any](capacity int) *MPMCBounded[T] {
	if capacity < 2 {
		panic("lfq: capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	q := &MPMCBounded[T]{
		buffer:   make([]mpmcBoundedSlot[T], n),
		mask:     n - 1,
		capacity: n,
	}

	for i := uint64(0); i < n; i++ {
		q.buffer[i].seq.StoreRelaxed(i)
	}

	return q
}

// Enqueue adds an element to the queue.
// Returns ErrWouldBlock if the queue is full.
func (q *MPMCBounded[T]) Enqueue(elem *T) error {
	sw := spin.Wait{}
	for {
		tail := q.tail.LoadAcquire()
		slot := &q.buffer[tail&q.mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(tail)

		if diff == 0 {
			if q.tail.CompareAndSwapAcqRel(tail, tail+1) {
				slot.data = *elem
				slot.seq.StoreRelease(tail + 1)
				return nil
			}
		} else if diff < 0 {
			return ErrWouldBlock
		}
		sw.Once()
	}
}

// Dequeue removes and returns an element from the queue.
// Returns (zero-value, ErrWouldBlock) if the queue is empty.
func (q *MPMCBounded[T]) Dequeue() (T, error) {
	sw := spin.Wait{}
	for {
		head := q.head.LoadAcquire()
		slot := &q.buffer[head&q.mask]
		seq := slot.seq.LoadAcquire()
		diff := int64(seq) - int64(head+1)

		if diff == 0 {
			if q.head.CompareAndSwapAcqRel(head, head+1) {
				elem := slot.data
				var zero T
				slot.data = zero
				slot.seq.StoreRelease(head + q.capacity)
				return elem, nil
			}
		} else if diff < 0 {
			var zero T
			return zero, ErrWouldBlock
		}
		sw.Once()
	}
}

// Cap returns the queue capacity.
func (q *MPMCBounded[T]) Cap() int {
	return int(q.capacity)
}
