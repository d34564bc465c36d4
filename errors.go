// Copyright 2026 The Coldforge Labs Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For Enqueue: the queue is full (backpressure)
// For Dequeue: the queue is empty (no data available)
//
// ErrWouldBlock is a control flow signal, not a failure. The caller should
// retry the operation later (with backoff or yield) rather than propagating
// the error.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := q.Enqueue(&item)
//	    if err == nil {
//	        backoff.Reset()
//	        break
//	    }
//	    if lfq.IsWouldBlock(err) {
//	        backoff.Wait()  // Adaptive backpressure
//	        continue
//	    }
//	    return err  // Unexpected error
//	}
var ErrWouldBlock = iox.ErrWouldBlock

// ErrAbort indicates a concurrent operation won a race for the same slot.
//
// Returned only by [WSDeque.Steal] when a racing owner Take or another
// thief's Steal claimed the slot first, or the backing array was resized
// mid-steal. Like ErrWouldBlock this is a control flow signal: the caller
// should retry rather than treat it as a failure. iox has no equivalent
// sentinel (its vocabulary covers blocking, not lost races), so this is a
// local error value rather than a re-exported one.
var ErrAbort = errors.New("lfq: lost race for slot")

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is one of iox's control flow signals, such
// as ErrWouldBlock. Delegates to [iox.IsSemantic]; the package-local
// [ErrAbort] is not among them, so IsSemantic(ErrAbort) is false.
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil, ErrWouldBlock, or ErrMore.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
