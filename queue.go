// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rwq

import "code.hybscloud.com/atomix"

// block is one fixed-capacity segment of the queue ring.
//
// Cursors are monotonically increasing; slot positions are cursor&mask.
// The block is empty iff front == tail and full iff tail-front == len(slots).
// The producer owns tail and cachedFront, the consumer owns front and
// cachedTail. Each side reads the other's cursor only through the atomic
// cell, and caches it to keep the opposite cache line out of the hot path.
type block[T any] struct {
	_           pad
	front       atomix.Uint64 // Consumer reads from here
	_           pad
	cachedTail  uint64 // Consumer's cached view of tail
	_           pad
	tail        atomix.Uint64 // Producer writes here
	_           pad
	cachedFront uint64 // Producer's cached view of front
	_           pad
	next        atomix.Uint64 // Arena index of the next block in the ring
	_           padShort
	slots       []T
	mask        uint64
}

func newBlock[T any](size uint64) *block[T] {
	return &block[T]{
		slots: make([]T, size),
		mask:  size - 1,
	}
}

// Queue is a single-producer single-consumer FIFO queue built from a ring
// of fixed-capacity blocks.
//
// The design follows a queue-of-queues: each block is a power-of-two ring
// buffer, and the blocks themselves form a circular list. The producer owns
// the tail block pointer and every block's tail cursor; the consumer owns
// the front block pointer and every block's front cursor. Each side only
// ever reads the other's state, so no compare-and-swap is needed anywhere
// on the item path.
//
// When the tail block fills up and the next block in the ring is still
// being consumed, an unbounded queue allocates a larger block (previous
// size times the growth factor) and splices it into the ring. Drained
// blocks are never freed; the producer reuses them in place once the
// consumer has moved past, so steady-state operation allocates nothing.
//
// A bounded queue (max capacity set) stops growing at its maximum and
// returns ErrWouldBlock from Enqueue instead.
//
// Exactly one goroutine may enqueue and exactly one may dequeue. This is a
// precondition, not checked at runtime; violating it corrupts the queue.
//
// Memory: O(allocated capacity); grows by at most the growth factor per
// allocation and only when the queue is actually full.
type Queue[T any] struct {
	_          pad
	frontBlock atomix.Uint64 // Arena index the consumer dequeues from
	_          pad
	tailBlock  atomix.Uint64 // Arena index the producer enqueues to
	_          pad
	capacity   atomix.Uint64 // Total slots across allocated blocks
	_          padShort

	arena [maxArenaBlocks]*block[T]

	// Producer-owned growth state.
	allocated     uint64
	nextBlockSize uint64
	growthFactor  uint64
	maxCapacity   uint64 // 0 = unbounded
}

// maxArenaBlocks bounds the number of blocks ever allocated. Growth at
// least doubles the next block size, so a 64-bit address space is
// exhausted before the arena is.
const maxArenaBlocks = 64

// NewQueue creates an unbounded queue with the given initial capacity.
// Capacity rounds up to the next power of 2. Panics if capacity < 2.
func NewQueue[T any](capacity int) *Queue[T] {
	return newQueue[T](capacity, 0, defaultGrowthFactor)
}

// NewBounded creates a bounded queue. Enqueue fails with ErrWouldBlock
// once maxCapacity slots are allocated and full. Both capacities round up
// to the next power of 2. Panics if capacity < 2 or maxCapacity < capacity.
func NewBounded[T any](capacity, maxCapacity int) *Queue[T] {
	return newQueue[T](capacity, maxCapacity, defaultGrowthFactor)
}

func newQueue[T any](capacity, maxCapacity, growthFactor int) *Queue[T] {
	if capacity < 2 {
		panic("rwq: capacity must be >= 2")
	}
	if growthFactor < 2 {
		panic("rwq: growth factor must be >= 2")
	}
	n := uint64(roundToPow2(capacity))
	var m uint64
	if maxCapacity != 0 {
		m = uint64(roundToPow2(maxCapacity))
		if m < n {
			panic("rwq: max capacity must be >= capacity")
		}
	}

	q := &Queue[T]{
		allocated:     1,
		nextBlockSize: n * uint64(growthFactor),
		growthFactor:  uint64(growthFactor),
		maxCapacity:   m,
	}
	q.arena[0] = newBlock[T](n) // ring of one: next is already index 0
	q.capacity.Store(n)
	return q
}

// Enqueue adds an element to the queue (producer only).
//
// An unbounded queue always succeeds, allocating a new block when the ring
// is full; allocation failure surfaces as a runtime panic from make. A
// bounded queue returns ErrWouldBlock once it is full at max capacity.
func (q *Queue[T]) Enqueue(elem *T) error {
	return q.enqueue(elem, true)
}

// TryEnqueue adds an element only if room already exists (producer only).
// It never allocates; returns ErrWouldBlock where Enqueue would grow.
func (q *Queue[T]) TryEnqueue(elem *T) error {
	return q.enqueue(elem, false)
}

func (q *Queue[T]) enqueue(elem *T, canAlloc bool) error {
	tb := q.arena[q.tailBlock.LoadRelaxed()]
	tail := tb.tail.LoadRelaxed()
	if tail-tb.cachedFront > tb.mask {
		tb.cachedFront = tb.front.LoadAcquire()
		if tail-tb.cachedFront > tb.mask {
			return q.enqueueSlow(tb, elem, canAlloc)
		}
	}

	tb.slots[tail&tb.mask] = *elem
	tb.tail.StoreRelease(tail + 1)
	return nil
}

// enqueueSlow handles a full tail block: advance into the next ring block
// if the consumer has fully drained it, otherwise grow the ring.
func (q *Queue[T]) enqueueSlow(tb *block[T], elem *T, canAlloc bool) error {
	next := tb.next.LoadRelaxed()
	if next != q.frontBlock.LoadAcquire() {
		// The consumer moved past this block, so front == tail and
		// every slot in it is reusable.
		nb := q.arena[next]
		tail := nb.tail.LoadRelaxed()
		nb.cachedFront = tail

		nb.slots[tail&nb.mask] = *elem
		nb.tail.StoreRelease(tail + 1)
		q.tailBlock.StoreRelease(next)
		return nil
	}
	if !canAlloc {
		return ErrWouldBlock
	}
	return q.grow(tb, elem)
}

// grow allocates a new block, places elem as its first element and splices
// it into the ring directly after the current tail block.
func (q *Queue[T]) grow(tb *block[T], elem *T) error {
	size := q.nextBlockSize
	if q.maxCapacity != 0 {
		remaining := q.maxCapacity - q.capacity.Load()
		if remaining < 2 {
			return ErrWouldBlock
		}
		if size > remaining {
			size = floorPow2(remaining)
		}
	}

	nb := newBlock[T](size)
	nb.slots[0] = *elem
	nb.tail.StoreRelaxed(1)
	nb.next.StoreRelaxed(tb.next.LoadRelaxed())

	idx := q.allocated
	q.arena[idx] = nb
	q.allocated++
	q.capacity.Add(size)
	if size <= (1<<63)/q.growthFactor {
		q.nextBlockSize = size * q.growthFactor
	}

	// Publish the link first, then the tail block. The consumer only
	// follows next after observing the tail block move past its front
	// block, so it can never read the link before it is set.
	tb.next.StoreRelease(idx)
	q.tailBlock.StoreRelease(idx)
	return nil
}

// Dequeue removes and returns the front element (consumer only).
// Returns (zero-value, ErrWouldBlock) if the queue is empty; never blocks.
func (q *Queue[T]) Dequeue() (T, error) {
	var zero T

	// The tail block must be snapshotted before the front block is
	// inspected: if the front block drains and the producer moves on
	// between the two reads, a stale snapshot only delays the advance
	// until the next call, while the opposite order could skip a block
	// the producer filled in between.
	tbAtStart := q.tailBlock.LoadAcquire()
	fbIdx := q.frontBlock.LoadRelaxed()
	fb := q.arena[fbIdx]

	front := fb.front.LoadRelaxed()
	if front >= fb.cachedTail {
		fb.cachedTail = fb.tail.LoadAcquire()
	}
	if front < fb.cachedTail {
		elem := fb.slots[front&fb.mask]
		fb.slots[front&fb.mask] = zero
		fb.front.StoreRelease(front + 1)
		return elem, nil
	}
	if fbIdx == tbAtStart {
		return zero, ErrWouldBlock
	}

	// Front block drained but the producer has moved on, so the next
	// block holds at least one element: the producer never advances the
	// tail block without writing to the block it advances into.
	nextIdx := fb.next.LoadAcquire()
	nb := q.arena[nextIdx]
	nfront := nb.front.LoadRelaxed()
	nb.cachedTail = nb.tail.LoadAcquire()

	// Leaving the front block releases it for the producer to reuse.
	q.frontBlock.StoreRelease(nextIdx)

	elem := nb.slots[nfront&nb.mask]
	nb.slots[nfront&nb.mask] = zero
	nb.front.StoreRelease(nfront + 1)
	return elem, nil
}

// Peek returns the front element without removing it (consumer only).
// Returns nil if the queue is empty. The pointer is valid only until the
// next successful Dequeue.
func (q *Queue[T]) Peek() *T {
	tbAtStart := q.tailBlock.LoadAcquire()
	fbIdx := q.frontBlock.LoadRelaxed()
	fb := q.arena[fbIdx]

	front := fb.front.LoadRelaxed()
	if front >= fb.cachedTail {
		fb.cachedTail = fb.tail.LoadAcquire()
	}
	if front < fb.cachedTail {
		return &fb.slots[front&fb.mask]
	}
	if fbIdx == tbAtStart {
		return nil
	}

	nextIdx := fb.next.LoadAcquire()
	nb := q.arena[nextIdx]
	nfront := nb.front.LoadRelaxed()
	nb.cachedTail = nb.tail.LoadAcquire()
	q.frontBlock.StoreRelease(nextIdx)
	return &nb.slots[nfront&nb.mask]
}

// SizeApprox returns the number of enqueued-but-not-dequeued elements.
//
// Safe to call from either thread. The result is a value that held at
// some instant during the call; concurrent enqueues and dequeues make it
// approximate. It is exact while both threads are quiescent.
func (q *Queue[T]) SizeApprox() int {
	fbIdx := q.frontBlock.LoadAcquire()
	tbIdx := q.tailBlock.LoadAcquire()

	n := uint64(0)
	idx := fbIdx
	for range maxArenaBlocks {
		b := q.arena[idx]
		// front before tail keeps each term non-negative under a
		// racing consumer.
		front := b.front.LoadAcquire()
		tail := b.tail.LoadAcquire()
		n += tail - front
		if idx == tbIdx {
			break
		}
		idx = b.next.LoadAcquire()
	}
	return int(n)
}

// IsEmpty reports whether the queue had no elements at some instant during
// the call. Safe to call from either thread; approximate under concurrency.
func (q *Queue[T]) IsEmpty() bool {
	return q.SizeApprox() == 0
}

// Cap returns the currently allocated capacity in slots.
// An unbounded queue's capacity grows as blocks are added.
func (q *Queue[T]) Cap() int {
	return int(q.capacity.Load())
}
