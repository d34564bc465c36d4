// Copyright 2026 The Coldforge Labs Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfq_test

import (
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"github.com/coldforge-labs/lfq"
)

// TestWSDequeOwnerAndStealersConserveElements pushes a large number of
// items from the owner goroutine while several thieves steal concurrently,
// and confirms every pushed value is observed exactly once across the
// owner's own Take calls and every thief's Steal calls combined.
func TestWSDequeOwnerAndStealersConserveElements(t *testing.T) {
	if lfq.RaceEnabled {
		t.Skip("skip: lock-free algorithm uses cross-variable memory ordering")
	}

	const (
		numStealers = 7
		numItems    = 1_000_000
		timeout     = 20 * time.Second
	)

	q := lfq.NewWSDeque[int](1024)
	seen := make([]atomix.Int32, numItems)
	var stolen atomix.Int64
	var done atomix.Bool
	deadline := time.Now().Add(timeout)

	var wg sync.WaitGroup
	for range numStealers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			backoff := iox.Backoff{}
			for {
				v, err := q.Steal()
				if err == nil {
					seen[v].Add(1)
					stolen.Add(1)
					backoff.Reset()
					continue
				}
				if lfq.IsWouldBlock(err) && done.Load() {
					return
				}
				if time.Now().After(deadline) {
					return
				}
				backoff.Wait()
			}
		}()
	}

	taken := 0
	backoff := iox.Backoff{}
	for i := range numItems {
		q.Push(i)
		if i%4 == 0 {
			if v, ok := q.Take(); ok {
				seen[v].Add(1)
				taken++
			}
		}
		backoff.Reset()
	}
	done.Store(true)

	deadlineWait := time.Now().Add(timeout)
	for {
		for v, ok := q.Take(); ok; v, ok = q.Take() {
			seen[v].Add(1)
			taken++
		}
		if stolen.Load()+int64(taken) >= numItems || time.Now().After(deadlineWait) {
			break
		}
		backoff.Wait()
	}
	wg.Wait()

	if int64(taken)+stolen.Load() != numItems {
		t.Fatalf("taken(%d) + stolen(%d) = %d, want %d", taken, stolen.Load(), int64(taken)+stolen.Load(), numItems)
	}
	for i := range numItems {
		if c := seen[i].Load(); c != 1 {
			t.Fatalf("value %d observed %d times, want 1", i, c)
		}
	}
}
