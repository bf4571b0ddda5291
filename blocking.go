// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rwq

import (
	"time"

	"code.hybscloud.com/spin"
)

// BlockingQueue wraps Queue with a consumer-side blocking wait.
//
// The lock-free core stays untouched: the wrapper adds a lightweight
// semaphore whose count mirrors the number of enqueued elements. Enqueue
// signals it, WaitDequeue waits on it with a timeout, and the inner wake
// primitive is touched only when the consumer is actually parked.
//
// Same producer/consumer contract as Queue: exactly one goroutine
// enqueues and exactly one dequeues.
type BlockingQueue[T any] struct {
	q    *Queue[T]
	sema *semaphore
}

// NewBlocking creates an unbounded blocking queue with the given initial
// capacity. Capacity rounds up to the next power of 2. Panics if
// capacity < 2.
func NewBlocking[T any](capacity int) *BlockingQueue[T] {
	return &BlockingQueue[T]{
		q:    NewQueue[T](capacity),
		sema: newSemaphore(),
	}
}

// NewBlockingBounded creates a bounded blocking queue. Enqueue fails with
// ErrWouldBlock once maxCapacity slots are allocated and full. Panics if
// capacity < 2 or maxCapacity < capacity.
func NewBlockingBounded[T any](capacity, maxCapacity int) *BlockingQueue[T] {
	return &BlockingQueue[T]{
		q:    NewBounded[T](capacity, maxCapacity),
		sema: newSemaphore(),
	}
}

// Enqueue adds an element and wakes the consumer if it is parked
// (producer only). Error semantics follow Queue.Enqueue.
func (b *BlockingQueue[T]) Enqueue(elem *T) error {
	if err := b.q.Enqueue(elem); err != nil {
		return err
	}
	b.sema.signal()
	return nil
}

// TryEnqueue adds an element only if room already exists (producer only).
// It never allocates.
func (b *BlockingQueue[T]) TryEnqueue(elem *T) error {
	if err := b.q.TryEnqueue(elem); err != nil {
		return err
	}
	b.sema.signal()
	return nil
}

// Dequeue removes and returns the front element (consumer only).
// Returns (zero-value, ErrWouldBlock) if the queue is empty; never blocks.
func (b *BlockingQueue[T]) Dequeue() (T, error) {
	if !b.sema.tryWait() {
		var zero T
		return zero, ErrWouldBlock
	}
	return b.take(), nil
}

// WaitDequeue removes and returns the front element, blocking until an
// element arrives or timeout elapses (consumer only). A negative timeout
// blocks indefinitely. Returns (zero-value, ErrTimedOut) on timeout.
//
// WaitDequeue returns once the timeout elapses even if the producer never
// enqueues again.
func (b *BlockingQueue[T]) WaitDequeue(timeout time.Duration) (T, error) {
	if !b.sema.wait(timeout) {
		var zero T
		return zero, ErrTimedOut
	}
	return b.take(), nil
}

// take dequeues after a successful semaphore acquisition. The acquisition
// established the happens-before edge with the matching enqueue, so the
// element is already visible; the loop resolves the window between the
// count update and the slot read.
func (b *BlockingQueue[T]) take() T {
	sw := spin.Wait{}
	for {
		elem, err := b.q.Dequeue()
		if err == nil {
			return elem
		}
		sw.Once()
	}
}

// Peek returns the front element without removing it (consumer only).
// Returns nil if the queue is empty; valid only until the next successful
// dequeue.
func (b *BlockingQueue[T]) Peek() *T {
	return b.q.Peek()
}

// SizeApprox returns the number of enqueued-but-not-dequeued elements.
// Safe to call from either thread; approximate under concurrency.
func (b *BlockingQueue[T]) SizeApprox() int {
	return b.sema.availableApprox()
}

// IsEmpty reports whether the queue had no elements at some instant during
// the call.
func (b *BlockingQueue[T]) IsEmpty() bool {
	return b.SizeApprox() == 0
}

// Cap returns the currently allocated capacity in slots.
func (b *BlockingQueue[T]) Cap() int {
	return b.q.Cap()
}
