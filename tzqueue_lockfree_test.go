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

// TestTZQueueStressConcurrent exercises the helping protocol under
// contention: multiple producers and consumers racing for a small backing
// array, forcing frequent full/empty boundary conditions where a stalled
// peer needs to be helped along by another goroutine.
func TestTZQueueStressConcurrent(t *testing.T) {
	if lfq.RaceEnabled {
		t.Skip("skip: lock-free algorithm uses cross-variable memory ordering")
	}

	const (
		numProducers = 8
		numConsumers = 8
		itemsPerProd = 20000
		timeout      = 15 * time.Second
	)

	q := lfq.NewTZQueue[int](64)
	expectedTotal := numProducers * itemsPerProd
	seen := make([]atomix.Int32, expectedTotal)

	var wg sync.WaitGroup
	var produced, consumed atomix.Int64
	deadline := time.Now().Add(timeout)

	for p := range numProducers {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			backoff := iox.Backoff{}
			for i := range itemsPerProd {
				v := id*itemsPerProd + i
				for q.Enqueue(&v) != nil {
					if time.Now().After(deadline) {
						return
					}
					backoff.Wait()
				}
				produced.Add(1)
				backoff.Reset()
			}
		}(p)
	}

	for range numConsumers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			backoff := iox.Backoff{}
			for consumed.Load() < int64(expectedTotal) {
				if time.Now().After(deadline) {
					return
				}
				v, err := q.Dequeue()
				if err == nil {
					seen[v].Add(1)
					consumed.Add(1)
					backoff.Reset()
					continue
				}
				backoff.Wait()
			}
		}()
	}

	wg.Wait()

	if produced.Load() != int64(expectedTotal) {
		t.Fatalf("produced %d, want %d", produced.Load(), expectedTotal)
	}
	if consumed.Load() != int64(expectedTotal) {
		t.Fatalf("consumed %d, want %d", consumed.Load(), expectedTotal)
	}
	for i := range expectedTotal {
		if c := seen[i].Load(); c != 1 {
			t.Fatalf("value %d observed %d times, want 1", i, c)
		}
	}
}
