// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rwq

import (
	"time"
	"unsafe"
)

// Producer is the enqueue side of a queue. Exactly one goroutine may hold
// the producer role.
//
// The element is passed by pointer to avoid copying large structs. The
// queue stores a copy of the pointed-to value, so the original can be
// modified after Enqueue returns.
type Producer[T any] interface {
	// Enqueue adds an element to the queue.
	// An unbounded queue grows as needed and always succeeds; a bounded
	// queue returns ErrWouldBlock once full at max capacity.
	Enqueue(elem *T) error

	// TryEnqueue adds an element only if room already exists.
	// It never allocates; returns ErrWouldBlock where Enqueue would grow.
	TryEnqueue(elem *T) error
}

// Consumer is the dequeue side of a queue. Exactly one goroutine may hold
// the consumer role.
//
// Elements are returned by value, moved out of the queue's internal
// buffer; the vacated slot is cleared so referenced objects can be
// collected.
type Consumer[T any] interface {
	// Dequeue removes and returns the front element (non-blocking).
	// Returns (zero-value, ErrWouldBlock) if the queue is empty.
	Dequeue() (T, error)

	// Peek returns the front element without removing it, or nil if the
	// queue is empty. The pointer is valid only until the next
	// successful Dequeue.
	Peek() *T
}

// WaitConsumer is a Consumer that can additionally block until an element
// arrives.
type WaitConsumer[T any] interface {
	Consumer[T]

	// WaitDequeue removes and returns the front element, blocking until
	// one arrives or timeout elapses. A negative timeout blocks
	// indefinitely. Returns (zero-value, ErrTimedOut) on timeout.
	WaitDequeue(timeout time.Duration) (T, error)
}

// ProducerPtr enqueues unsafe.Pointer values (non-blocking).
type ProducerPtr interface {
	Enqueue(elem unsafe.Pointer) error
	TryEnqueue(elem unsafe.Pointer) error
}

// ConsumerPtr dequeues unsafe.Pointer values (non-blocking).
type ConsumerPtr interface {
	Dequeue() (unsafe.Pointer, error)
	Peek() unsafe.Pointer
}
