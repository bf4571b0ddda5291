// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rwq_test

import (
	"sync"
	"testing"
	"unsafe"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/rwq"
)

// =============================================================================
// Single-Op Baselines
// =============================================================================

func BenchmarkQueue_SingleOp(b *testing.B) {
	q := rwq.NewQueue[int](1024)

	b.ResetTimer()
	for i := range b.N {
		v := i
		q.Enqueue(&v)
		q.Dequeue()
	}
}

func BenchmarkQueuePtr_SingleOp(b *testing.B) {
	q := rwq.NewQueuePtr(1024)
	val := 42

	b.ResetTimer()
	for range b.N {
		q.Enqueue(unsafe.Pointer(&val))
		q.Dequeue()
	}
}

func BenchmarkBlocking_SingleOp(b *testing.B) {
	q := rwq.NewBlocking[int](1024)

	b.ResetTimer()
	for i := range b.N {
		v := i
		q.Enqueue(&v)
		q.Dequeue()
	}
}

// BenchmarkQueue_GrowthCold measures first-fill cost including block
// allocation.
func BenchmarkQueue_GrowthCold(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		q := rwq.NewQueue[int](4)
		for i := range 4096 {
			v := i
			q.Enqueue(&v)
		}
	}
}

// =============================================================================
// Producer/Consumer Throughput
// =============================================================================

func BenchmarkQueue_PingPong(b *testing.B) {
	if rwq.RaceEnabled {
		b.Skip("skip: lock-free algorithm uses cross-variable memory ordering")
	}
	q := rwq.NewQueue[int](1024)
	n := b.N

	var wg sync.WaitGroup
	wg.Add(1)
	b.ResetTimer()
	go func() {
		defer wg.Done()
		for i := range n {
			v := i
			q.Enqueue(&v)
		}
	}()

	backoff := iox.Backoff{}
	for got := 0; got < n; {
		if _, err := q.Dequeue(); err != nil {
			backoff.Wait()
			continue
		}
		backoff.Reset()
		got++
	}
	wg.Wait()
}

func BenchmarkBlocking_PingPong(b *testing.B) {
	if rwq.RaceEnabled {
		b.Skip("skip: lock-free algorithm uses cross-variable memory ordering")
	}
	q := rwq.NewBlocking[int](1024)
	n := b.N

	var wg sync.WaitGroup
	wg.Add(1)
	b.ResetTimer()
	go func() {
		defer wg.Done()
		for i := range n {
			v := i
			q.Enqueue(&v)
		}
	}()

	for got := 0; got < n; got++ {
		q.WaitDequeue(-1)
	}
	wg.Wait()
}
