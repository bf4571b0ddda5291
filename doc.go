// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rwq provides a growable lock-free single-producer
// single-consumer FIFO queue.
//
// Unlike a fixed ring buffer, an rwq queue grows on demand: storage is a
// circular list of power-of-two blocks, and when the ring fills up a
// larger block is spliced in. Drained blocks are recycled in place, so a
// queue that has reached its working size allocates nothing in steady
// state. A maximum capacity can be set to get strictly bounded behavior
// with backpressure instead of growth.
//
// # Quick Start
//
// Direct constructors:
//
//	q := rwq.NewQueue[Event](64)            // unbounded, grows as needed
//	q := rwq.NewBounded[Event](64, 4096)    // grows up to 4096, then full
//	q := rwq.NewBlocking[Event](64)         // consumer can sleep when empty
//	q := rwq.NewQueuePtr(64)                // zero-copy unsafe.Pointer flavor
//
// Builder API for non-default growth policy:
//
//	q := rwq.Build[Event](rwq.New(64).MaxCapacity(4096).GrowthFactor(4))
//	q := rwq.BuildBlocking[Event](rwq.New(64))
//	q := rwq.New(64).BuildPtr()
//
// # Basic Usage
//
//	q := rwq.NewBounded[int](4, 64)
//
//	// Enqueue (non-blocking; grows until max capacity)
//	value := 42
//	err := q.Enqueue(&value)
//	if rwq.IsWouldBlock(err) {
//	    // Queue is full - handle backpressure
//	}
//
//	// TryEnqueue never allocates
//	err = q.TryEnqueue(&value)
//
//	// Dequeue (non-blocking)
//	elem, err := q.Dequeue()
//	if rwq.IsWouldBlock(err) {
//	    // Queue is empty - try again later
//	}
//
//	// Inspect without consuming
//	if p := q.Peek(); p != nil {
//	    // *p is the front element until the next Dequeue
//	}
//
// # Pipeline Stage
//
//	q := rwq.NewQueue[Data](1024)
//
//	go func() { // Producer (Stage 1)
//	    for data := range input {
//	        q.Enqueue(&data) // unbounded: never fails
//	    }
//	}()
//
//	go func() { // Consumer (Stage 2)
//	    backoff := iox.Backoff{}
//	    for {
//	        data, err := q.Dequeue()
//	        if err != nil {
//	            backoff.Wait()
//	            continue
//	        }
//	        backoff.Reset()
//	        process(data)
//	    }
//	}()
//
// # Blocking Consumer
//
// BlockingQueue layers a lightweight semaphore over the lock-free core so
// the consumer can sleep instead of polling. The producer path stays one
// atomic add when no one is parked.
//
//	q := rwq.NewBlocking[Job](256)
//
//	go func() { // Consumer
//	    for {
//	        job, err := q.WaitDequeue(100 * time.Millisecond)
//	        if rwq.IsTimedOut(err) {
//	            continue // periodic housekeeping, shutdown checks, ...
//	        }
//	        job.Run()
//	    }
//	}()
//
//	// Producer
//	q.Enqueue(&job) // wakes the consumer if it is parked
//
// A negative timeout waits indefinitely. Timed waits always return once
// the timeout elapses, even if the producer never enqueues again.
//
// # Growth and Recycling
//
// The first block is sized by the constructor capacity (rounded up to a
// power of 2). When the producer fills the ring, it allocates a block
// growthFactor times larger than the last (default 2) and links it in.
// Blocks are never freed: once the consumer drains a block and moves past
// it, the producer reuses it in place. Allocation is therefore O(log n)
// amortized in the total number of elements ever enqueued, and zero once
// the queue stops growing.
//
// In bounded mode growth stops at MaxCapacity and Enqueue reports
// ErrWouldBlock while full. Note that when a bounded queue spans several
// blocks, slots in a partially drained block become reusable only when
// that block drains completely.
//
// # Size
//
// SizeApprox returns a count that was correct at some instant during the
// call. With one side quiescent it is exact from the other side's
// perspective; under full concurrency it may lag by in-flight operations.
// IsEmpty is SizeApprox() == 0.
//
// # Error Handling
//
// Queues return [ErrWouldBlock] when operations cannot proceed, sourced
// from [code.hybscloud.com/iox] for ecosystem consistency, and
// [ErrTimedOut] when a WaitDequeue deadline expires. Both are control flow
// signals, not failures:
//
//	rwq.IsWouldBlock(err)  // queue full/empty
//	rwq.IsTimedOut(err)    // WaitDequeue deadline expired
//	rwq.IsSemantic(err)    // any control flow signal
//	rwq.IsNonFailure(err)  // nil or control flow signal
//
// Allocation failure during unbounded growth surfaces as the runtime's
// out-of-memory fault; the queue has no partial states to clean up.
//
// # Thread Safety
//
// Exactly one goroutine may enqueue and exactly one may dequeue. The roles
// may be held by the same goroutine. Peek and WaitDequeue belong to the
// consumer role; SizeApprox, IsEmpty and Cap are safe from either role.
//
// The single-producer single-consumer discipline is a precondition, not
// enforced at runtime: the hot paths contain no arbitration to detect a
// second producer or consumer, and violating the contract corrupts the
// queue. Synchronize externally if roles must migrate between goroutines.
//
// # Memory Model
//
// Each slot is handed from producer to consumer exactly once per use. The
// producer publishes a slot by release-storing the block's tail cursor;
// the consumer observes it with the matching acquire-load, and returns the
// slot by release-storing the front cursor. These acquire/release pairs on
// the cursors are the only synchronization on the item path — no locks and
// no compare-and-swap retries, because only one goroutine ever writes each
// cursor.
//
// # Race Detection
//
// Go's race detector is not designed for lock-free algorithm verification.
// It tracks explicit synchronization primitives (mutex, channels,
// WaitGroup) but cannot observe happens-before relationships established
// through atomic memory orderings on separate variables, so it may report
// false positives on the cursor-protected slot accesses. Tests
// incompatible with race detection are skipped via RaceEnabled.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, and [code.hybscloud.com/spin] for CPU pause
// instructions.
package rwq
