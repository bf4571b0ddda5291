// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rwq

import "unsafe"

// defaultGrowthFactor multiplies the block size on each ring growth.
const defaultGrowthFactor = 2

// Options configures queue creation.
type Options struct {
	// Capacity of the first block (rounds up to next power of 2)
	capacity int

	// Growth ceiling in slots; 0 selects unbounded mode
	maxCapacity int

	// Block size multiplier applied on each growth
	growthFactor int
}

// Builder creates queues with fluent configuration.
//
// Example:
//
//	// Unbounded queue, first block 64 slots
//	q := rwq.Build[Event](rwq.New(64))
//
//	// Bounded queue: grows from 64 up to 4096 slots, then applies
//	// backpressure
//	q := rwq.Build[Event](rwq.New(64).MaxCapacity(4096))
//
//	// Blocking consumer side
//	q := rwq.BuildBlocking[Event](rwq.New(64))
//
//	// Zero-copy pointer queue with aggressive growth
//	q := rwq.New(64).GrowthFactor(4).BuildPtr()
type Builder struct {
	opts Options
}

// New creates a queue builder with the given initial capacity.
//
// Capacity rounds up to the next power of 2 and sizes the first block.
// Panics if capacity < 2.
func New(capacity int) *Builder {
	if capacity < 2 {
		panic("rwq: capacity must be >= 2")
	}
	return &Builder{opts: Options{
		capacity:     capacity,
		growthFactor: defaultGrowthFactor,
	}}
}

// MaxCapacity bounds the queue at maxCapacity slots (rounds up to the next
// power of 2). Enqueue returns ErrWouldBlock once the queue is full at its
// maximum. Without MaxCapacity the queue is unbounded.
func (b *Builder) MaxCapacity(maxCapacity int) *Builder {
	b.opts.maxCapacity = maxCapacity
	return b
}

// GrowthFactor sets the block size multiplier used when the ring grows.
// Defaults to 2. Panics later at build time if factor < 2.
func (b *Builder) GrowthFactor(factor int) *Builder {
	b.opts.growthFactor = factor
	return b
}

// Build creates a non-blocking Queue from the builder configuration.
func Build[T any](b *Builder) *Queue[T] {
	return newQueue[T](b.opts.capacity, b.opts.maxCapacity, b.opts.growthFactor)
}

// BuildBlocking creates a BlockingQueue from the builder configuration.
func BuildBlocking[T any](b *Builder) *BlockingQueue[T] {
	return &BlockingQueue[T]{
		q:    Build[T](b),
		sema: newSemaphore(),
	}
}

// BuildPtr creates a QueuePtr from the builder configuration.
func (b *Builder) BuildPtr() *QueuePtr {
	return newQueuePtr(b.opts.capacity, b.opts.maxCapacity, b.opts.growthFactor)
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// floorPow2 rounds n down to the previous power of 2. n must be >= 1.
func floorPow2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n - n>>1
}

// ptrSize is the size of a pointer in bytes.
const ptrSize = int(unsafe.Sizeof(uintptr(0)))

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte
