// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rwq

import (
	"unsafe"

	"code.hybscloud.com/atomix"
)

// blockPtr is one fixed-capacity segment of a QueuePtr ring.
// Same ownership split as block: producer owns tail and cachedFront,
// consumer owns front and cachedTail.
type blockPtr struct {
	_           pad
	front       atomix.Uint64
	_           pad
	cachedTail  uint64
	_           pad
	tail        atomix.Uint64
	_           pad
	cachedFront uint64
	_           pad
	next        atomix.Uint64
	_           padShort
	slots       []unsafe.Pointer
	mask        uint64
}

func newBlockPtr(size uint64) *blockPtr {
	return &blockPtr{
		slots: make([]unsafe.Pointer, size),
		mask:  size - 1,
	}
}

func (b *blockPtr) slot(cursor uint64) *unsafe.Pointer {
	// Pointer arithmetic avoids slice bounds checking in hot path.
	// Equivalent to &b.slots[cursor&b.mask]
	return (*unsafe.Pointer)(unsafe.Add(unsafe.Pointer(unsafe.SliceData(b.slots)), int(cursor&b.mask)*ptrSize))
}

// QueuePtr is a growable SPSC queue for unsafe.Pointer values.
// Useful for zero-copy pointer passing between goroutines: the producer
// enqueues a pointer and transfers ownership, the consumer receives the
// same pointer.
//
// Same block-ring design, growth policy and producer/consumer contract as
// Queue.
type QueuePtr struct {
	_          pad
	frontBlock atomix.Uint64
	_          pad
	tailBlock  atomix.Uint64
	_          pad
	capacity   atomix.Uint64
	_          padShort

	arena [maxArenaBlocks]*blockPtr

	allocated     uint64
	nextBlockSize uint64
	growthFactor  uint64
	maxCapacity   uint64
}

// NewQueuePtr creates an unbounded queue for unsafe.Pointer values.
// Capacity rounds up to the next power of 2. Panics if capacity < 2.
func NewQueuePtr(capacity int) *QueuePtr {
	return newQueuePtr(capacity, 0, defaultGrowthFactor)
}

// NewBoundedPtr creates a bounded queue for unsafe.Pointer values.
// Both capacities round up to the next power of 2. Panics if capacity < 2
// or maxCapacity < capacity.
func NewBoundedPtr(capacity, maxCapacity int) *QueuePtr {
	return newQueuePtr(capacity, maxCapacity, defaultGrowthFactor)
}

func newQueuePtr(capacity, maxCapacity, growthFactor int) *QueuePtr {
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

	q := &QueuePtr{
		allocated:     1,
		nextBlockSize: n * uint64(growthFactor),
		growthFactor:  uint64(growthFactor),
		maxCapacity:   m,
	}
	q.arena[0] = newBlockPtr(n)
	q.capacity.Store(n)
	return q
}

// Enqueue adds a pointer to the queue (producer only).
// A bounded queue returns ErrWouldBlock once full at max capacity.
func (q *QueuePtr) Enqueue(elem unsafe.Pointer) error {
	return q.enqueue(elem, true)
}

// TryEnqueue adds a pointer only if room already exists (producer only).
// It never allocates.
func (q *QueuePtr) TryEnqueue(elem unsafe.Pointer) error {
	return q.enqueue(elem, false)
}

func (q *QueuePtr) enqueue(elem unsafe.Pointer, canAlloc bool) error {
	tb := q.arena[q.tailBlock.LoadRelaxed()]
	tail := tb.tail.LoadRelaxed()
	if tail-tb.cachedFront > tb.mask {
		tb.cachedFront = tb.front.LoadAcquire()
		if tail-tb.cachedFront > tb.mask {
			return q.enqueueSlow(tb, elem, canAlloc)
		}
	}

	*tb.slot(tail) = elem
	tb.tail.StoreRelease(tail + 1)
	return nil
}

func (q *QueuePtr) enqueueSlow(tb *blockPtr, elem unsafe.Pointer, canAlloc bool) error {
	next := tb.next.LoadRelaxed()
	if next != q.frontBlock.LoadAcquire() {
		nb := q.arena[next]
		tail := nb.tail.LoadRelaxed()
		nb.cachedFront = tail

		*nb.slot(tail) = elem
		nb.tail.StoreRelease(tail + 1)
		q.tailBlock.StoreRelease(next)
		return nil
	}
	if !canAlloc {
		return ErrWouldBlock
	}
	return q.grow(tb, elem)
}

func (q *QueuePtr) grow(tb *blockPtr, elem unsafe.Pointer) error {
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

	nb := newBlockPtr(size)
	nb.slots[0] = elem
	nb.tail.StoreRelaxed(1)
	nb.next.StoreRelaxed(tb.next.LoadRelaxed())

	idx := q.allocated
	q.arena[idx] = nb
	q.allocated++
	q.capacity.Add(size)
	if size <= (1<<63)/q.growthFactor {
		q.nextBlockSize = size * q.growthFactor
	}

	tb.next.StoreRelease(idx)
	q.tailBlock.StoreRelease(idx)
	return nil
}

// Dequeue removes and returns the front pointer (consumer only).
// Returns (nil, ErrWouldBlock) if the queue is empty; never blocks.
func (q *QueuePtr) Dequeue() (unsafe.Pointer, error) {
	tbAtStart := q.tailBlock.LoadAcquire()
	fbIdx := q.frontBlock.LoadRelaxed()
	fb := q.arena[fbIdx]

	front := fb.front.LoadRelaxed()
	if front >= fb.cachedTail {
		fb.cachedTail = fb.tail.LoadAcquire()
	}
	if front < fb.cachedTail {
		p := fb.slot(front)
		elem := *p
		*p = nil
		fb.front.StoreRelease(front + 1)
		return elem, nil
	}
	if fbIdx == tbAtStart {
		return nil, ErrWouldBlock
	}

	nextIdx := fb.next.LoadAcquire()
	nb := q.arena[nextIdx]
	nfront := nb.front.LoadRelaxed()
	nb.cachedTail = nb.tail.LoadAcquire()
	q.frontBlock.StoreRelease(nextIdx)

	p := nb.slot(nfront)
	elem := *p
	*p = nil
	nb.front.StoreRelease(nfront + 1)
	return elem, nil
}

// Peek returns the front pointer without removing it (consumer only).
// Returns nil if the queue is empty.
func (q *QueuePtr) Peek() unsafe.Pointer {
	tbAtStart := q.tailBlock.LoadAcquire()
	fbIdx := q.frontBlock.LoadRelaxed()
	fb := q.arena[fbIdx]

	front := fb.front.LoadRelaxed()
	if front >= fb.cachedTail {
		fb.cachedTail = fb.tail.LoadAcquire()
	}
	if front < fb.cachedTail {
		return *fb.slot(front)
	}
	if fbIdx == tbAtStart {
		return nil
	}

	nextIdx := fb.next.LoadAcquire()
	nb := q.arena[nextIdx]
	nfront := nb.front.LoadRelaxed()
	nb.cachedTail = nb.tail.LoadAcquire()
	q.frontBlock.StoreRelease(nextIdx)
	return *nb.slot(nfront)
}

// SizeApprox returns the number of enqueued-but-not-dequeued pointers.
// Safe to call from either thread; approximate under concurrency.
func (q *QueuePtr) SizeApprox() int {
	fbIdx := q.frontBlock.LoadAcquire()
	tbIdx := q.tailBlock.LoadAcquire()

	n := uint64(0)
	idx := fbIdx
	for range maxArenaBlocks {
		b := q.arena[idx]
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
// the call.
func (q *QueuePtr) IsEmpty() bool {
	return q.SizeApprox() == 0
}

// Cap returns the currently allocated capacity in slots.
func (q *QueuePtr) Cap() int {
	return int(q.capacity.Load())
}
