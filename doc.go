// Copyright 2026 The Coldforge Labs Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lfq provides lock-free and mostly-lock-free concurrent queue
// primitives for work distribution and producer/consumer pipelines.
//
// # Core Algorithms
//
// Five algorithms cover the core access patterns:
//
//	WSDeque[T]        - owner push/take, any number of thieves steal
//	MPMCBounded[T]    - bounded multi-producer multi-consumer, Vyukov CAS algorithm
//	SPSCLifo[T]       - single-producer single-consumer, drains LIFO
//	TZQueue[T]        - bounded multi-producer multi-consumer, dual-null sentinel
//	LockedWSDeque[T]  - resizable work-stealing deque, mutex-protected slow path
//
// WSDeque and LockedWSDeque solve the same problem (one owner goroutine
// feeding a pool of thieves) with different tradeoffs: both grow their
// backing array on overflow, but WSDeque's steal path is fully lock-free,
// while LockedWSDeque serializes steals and growth behind a mutex and
// exposes Len and IsEmpty. MPMCBounded and
// TZQueue both give bounded MPMC semantics from different algorithms —
// MPMCBounded's slot sequence numbers scale better under heavy contention,
// TZQueue's helping protocol avoids slot starvation when a producer or
// consumer stalls mid-operation.
//
//	owner := lfq.NewWSDeque[Task](256)
//	for t := range incoming {
//	    owner.Push(t)
//	}
//	go func() { // thief
//	    for {
//	        t, err := owner.Steal()
//	        if err == nil {
//	            t.Run()
//	        }
//	    }
//	}()
//
//	mb := lfq.NewMPMCBounded[Event](4096)
//	_ = mb.Enqueue(&ev)
//	ev, err := mb.Dequeue()
//
// # Quick Start
//
//	deque := lfq.NewWSDeque[Task](256)            // work-stealing, lock-free steal path
//	locked := lfq.NewLockedWSDeque[Task](256)      // work-stealing, grows on overflow
//	mb := lfq.NewMPMCBounded[Event](4096)          // bounded MPMC, Vyukov CAS
//	tz := lfq.NewTZQueue[Event](4096)              // bounded MPMC, helping protocol
//	lifo := lfq.NewSPSCLifo[Frame]()               // single producer/consumer, LIFO drain
//
// # Basic Usage
//
// The two bounded MPMC queues share the [Queue] interface for enqueueing
// and dequeueing:
//
//	q := lfq.NewMPMCBounded[int](1024)
//
//	value := 42
//	if err := q.Enqueue(&value); lfq.IsWouldBlock(err) {
//	    // queue full, apply backpressure
//	}
//
//	elem, err := q.Dequeue()
//	if lfq.IsWouldBlock(err) {
//	    // queue empty, try again later
//	}
//
// WSDeque and LockedWSDeque instead expose an owner-side Push/Take (Push/Pop
// on LockedWSDeque) and a thief-side Steal, since only the owning goroutine
// may push or take:
//
//	owner := lfq.NewWSDeque[Task](256)
//	owner.Push(task)
//	t, ok := owner.Take() // owner goroutine only
//	s, err := owner.Steal() // any goroutine
//
// SPSCLifo exposes Push/Pop for its single producer and single consumer:
//
//	q := lfq.NewSPSCLifo[int]()
//	q.Push(1)
//	v, ok := q.Pop() // drains most-recently-pushed first
//
// # Common Patterns
//
// Work Stealing (WSDeque / LockedWSDeque):
//
//	owner := lfq.NewWSDeque[Task](1024)
//
//	go func() { // owner goroutine
//	    for task := range incoming {
//	        owner.Push(task)
//	    }
//	}()
//
//	for range numThieves { // thief goroutines
//	    go func() {
//	        backoff := iox.Backoff{}
//	        for {
//	            task, err := owner.Steal()
//	            if err == nil {
//	                backoff.Reset()
//	                task.Run()
//	                continue
//	            }
//	            backoff.Wait()
//	        }
//	    }()
//	}
//
// Worker Pool (MPMCBounded or TZQueue):
//
//	q := lfq.NewMPMCBounded[Job](4096)
//
//	for range numWorkers {
//	    go func() {
//	        backoff := iox.Backoff{}
//	        for {
//	            job, err := q.Dequeue()
//	            if err == nil {
//	                backoff.Reset()
//	                job.Run()
//	                continue
//	            }
//	            backoff.Wait()
//	        }
//	    }()
//	}
//
//	func Submit(j Job) error {
//	    return q.Enqueue(&j)
//	}
//
// Pipeline Stage (SPSCLifo), e.g. an undo stack between one writer and one
// reader:
//
//	stack := lfq.NewSPSCLifo[Edit]()
//	go func() { // writer
//	    for e := range edits {
//	        stack.Push(e)
//	    }
//	}()
//	go func() { // reader
//	    for {
//	        e, ok := stack.Pop()
//	        if ok {
//	            undo(e)
//	        }
//	    }
//	}()
//
// # Algorithm Selection
//
//	Need ownership + steal semantics, lock-free steal?  → WSDeque
//	Need ownership + steal semantics, Len/IsEmpty?      → LockedWSDeque
//	Need bounded MPMC, best scaling under contention?   → MPMCBounded
//	Need bounded MPMC, resilient to a stalled peer?     → TZQueue
//	Need single producer/consumer, LIFO drain order?    → SPSCLifo
//
// # Error Handling
//
// MPMCBounded and TZQueue return [ErrWouldBlock] when Enqueue/Dequeue
// cannot proceed immediately. This error is sourced from
// [code.hybscloud.com/iox] for ecosystem consistency.
//
//	backoff := iox.Backoff{}
//	for {
//	    err := q.Enqueue(&item)
//	    if err == nil {
//	        backoff.Reset()
//	        break
//	    }
//	    if !lfq.IsWouldBlock(err) {
//	        return err // unexpected error
//	    }
//	    backoff.Wait()
//	}
//
// WSDeque.Steal and LockedWSDeque.Steal return [ErrWouldBlock] when the
// deque is empty (LockedWSDeque.Steal also when its lock is busy).
// WSDeque.Steal additionally returns [ErrAbort] when a racing owner or thief
// claimed the slot first; LockedWSDeque.Steal never returns ErrAbort. Both
// are control-flow signals a thief should retry on.
//
// For semantic error classification (delegates to iox where applicable):
//
//	lfq.IsWouldBlock(err)  // true if queue/deque empty or full
//	lfq.IsSemantic(err)    // true if iox control flow signal (false for ErrAbort)
//	lfq.IsNonFailure(err)  // true if nil or ErrWouldBlock
//
// # Capacity and Length
//
// MPMCBounded capacity rounds up to the next power of 2:
//
//	q := lfq.NewMPMCBounded[int](3)     // actual capacity: 4
//	q := lfq.NewMPMCBounded[int](1000)  // actual capacity: 1024
//
// NewMPMCBounded panics if capacity < 2. NewTZQueue uses the capacity as
// given, without rounding, and panics if capacity < 1. NewWSDeque and
// NewLockedWSDeque treat their argument as a hint, round it up to a power
// of 2 (minimum 256 and 2 respectively) and never panic; both grow on
// demand. SPSCLifo has no fixed capacity; it grows with each Push.
//
// MPMCBounded and TZQueue intentionally omit a length query because
// accurate counts in lock-free algorithms require expensive cross-core
// synchronization. LockedWSDeque, holding a mutex on the slow path anyway,
// does expose Len and IsEmpty.
//
// # Thread Safety
//
//   - WSDeque / LockedWSDeque: one owner goroutine calls Push and Take
//     (Pop on LockedWSDeque);
//     any number of goroutines call Steal concurrently with the owner and
//     each other.
//   - MPMCBounded / TZQueue: any number of goroutines call Enqueue and
//     Dequeue concurrently.
//   - SPSCLifo: exactly one producer goroutine calls Push, exactly one
//     consumer goroutine calls Pop, concurrently with each other.
//
// Violating these constraints causes undefined behavior including data
// corruption and races.
//
// # Race Detection
//
// Go's race detector is not designed for lock-free algorithm verification.
// It tracks explicit synchronization primitives (mutex, channels,
// WaitGroup) but cannot observe happens-before relationships established
// purely through atomic memory orderings (acquire-release semantics).
//
// MPMCBounded, TZQueue, and WSDeque's steal path use acquire-release
// atomics to protect non-atomic data fields. These algorithms are correct,
// but the race detector may report false positives because it cannot
// track synchronization provided by atomic operations on separate
// variables. Stress tests that rely on this ordering are skipped under
// -race via [RaceEnabled].
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors and
// backoff, [code.hybscloud.com/atomix] for atomic primitives with
// explicit memory ordering, and [code.hybscloud.com/spin] for CPU pause
// instructions on the MPMCBounded CAS retry path.
package lfq
