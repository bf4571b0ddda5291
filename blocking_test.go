// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rwq_test

import (
	"errors"
	"testing"
	"time"

	"code.hybscloud.com/rwq"
)

// =============================================================================
// BlockingQueue - Non-blocking surface
// =============================================================================

func TestBlockingBasic(t *testing.T) {
	q := rwq.NewBlocking[int](4)

	if _, err := q.Dequeue(); !errors.Is(err, rwq.ErrWouldBlock) {
		t.Fatalf("Dequeue on empty: got %v, want ErrWouldBlock", err)
	}

	for i := range 4 {
		v := i + 100
		if err := q.Enqueue(&v); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	if got := q.SizeApprox(); got != 4 {
		t.Fatalf("SizeApprox: got %d, want 4", got)
	}
	if q.IsEmpty() {
		t.Fatal("IsEmpty: got true, want false")
	}
	if p := q.Peek(); p == nil || *p != 100 {
		t.Fatalf("Peek: got %v, want 100", p)
	}

	for i := range 4 {
		val, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue(%d): %v", i, err)
		}
		if val != i+100 {
			t.Fatalf("Dequeue(%d): got %d, want %d", i, val, i+100)
		}
	}
	if !q.IsEmpty() {
		t.Fatal("IsEmpty after drain: got false, want true")
	}
}

func TestBlockingBounded(t *testing.T) {
	q := rwq.NewBlockingBounded[int](2, 2)

	one, two, three := 1, 2, 3
	if err := q.Enqueue(&one); err != nil {
		t.Fatalf("Enqueue(1): %v", err)
	}
	if err := q.TryEnqueue(&two); err != nil {
		t.Fatalf("TryEnqueue(2): %v", err)
	}
	if err := q.Enqueue(&three); !errors.Is(err, rwq.ErrWouldBlock) {
		t.Fatalf("Enqueue on full: got %v, want ErrWouldBlock", err)
	}

	for _, want := range []int{1, 2} {
		val, err := q.WaitDequeue(time.Second)
		if err != nil || val != want {
			t.Fatalf("WaitDequeue: got (%d, %v), want (%d, nil)", val, err, want)
		}
	}
}

// TestBlockingGrowth verifies the wrapper keeps the core's growth
// semantics.
func TestBlockingGrowth(t *testing.T) {
	const n = 1000
	q := rwq.NewBlocking[int](2)

	for i := range n {
		v := i
		if err := q.Enqueue(&v); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	if got := q.SizeApprox(); got != n {
		t.Fatalf("SizeApprox: got %d, want %d", got, n)
	}
	for want := range n {
		val, err := q.WaitDequeue(time.Second)
		if err != nil || val != want {
			t.Fatalf("WaitDequeue: got (%d, %v), want (%d, nil)", val, err, want)
		}
	}
}

// =============================================================================
// WaitDequeue - Timeout behavior
// =============================================================================

// TestWaitDequeueTimeout checks the timed wait on a permanently empty
// queue returns ErrTimedOut after at least the requested duration.
func TestWaitDequeueTimeout(t *testing.T) {
	q := rwq.NewBlocking[int](4)
	const timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := q.WaitDequeue(timeout)
	elapsed := time.Since(start)

	if !rwq.IsTimedOut(err) {
		t.Fatalf("WaitDequeue: got %v, want ErrTimedOut", err)
	}
	if elapsed < timeout {
		t.Fatalf("WaitDequeue returned after %v, want >= %v", elapsed, timeout)
	}
	// Queue unchanged
	if !q.IsEmpty() {
		t.Fatal("queue modified by timed-out wait")
	}
}

// TestWaitDequeueImmediate checks a timed wait never parks when an element
// is already available.
func TestWaitDequeueImmediate(t *testing.T) {
	q := rwq.NewBlocking[int](4)
	v := 7
	if err := q.Enqueue(&v); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	val, err := q.WaitDequeue(0)
	if err != nil || val != 7 {
		t.Fatalf("WaitDequeue: got (%d, %v), want (7, nil)", val, err)
	}
}

// TestWaitDequeueWakes parks the consumer and checks a later enqueue wakes
// it before the deadline.
func TestWaitDequeueWakes(t *testing.T) {
	if rwq.RaceEnabled {
		t.Skip("skip: lock-free core uses cross-variable memory ordering")
	}
	q := rwq.NewBlocking[int](4)

	go func() {
		time.Sleep(20 * time.Millisecond)
		v := 42
		q.Enqueue(&v)
	}()

	val, err := q.WaitDequeue(5 * time.Second)
	if err != nil || val != 42 {
		t.Fatalf("WaitDequeue: got (%d, %v), want (42, nil)", val, err)
	}
}

// TestWaitDequeueIndefinite checks a negative timeout parks until an
// element arrives.
func TestWaitDequeueIndefinite(t *testing.T) {
	if rwq.RaceEnabled {
		t.Skip("skip: lock-free core uses cross-variable memory ordering")
	}
	q := rwq.NewBlocking[int](4)

	go func() {
		time.Sleep(10 * time.Millisecond)
		v := 1
		q.Enqueue(&v)
	}()

	val, err := q.WaitDequeue(-1)
	if err != nil || val != 1 {
		t.Fatalf("WaitDequeue(-1): got (%d, %v), want (1, nil)", val, err)
	}
}

// TestWaitDequeueAfterTimeout checks the semaphore accounting recovers
// after timed-out waits: later enqueues are neither lost nor double
// counted.
func TestWaitDequeueAfterTimeout(t *testing.T) {
	q := rwq.NewBlocking[int](4)

	for range 3 {
		if _, err := q.WaitDequeue(time.Millisecond); !rwq.IsTimedOut(err) {
			t.Fatalf("WaitDequeue: got %v, want ErrTimedOut", err)
		}
	}

	for i := range 3 {
		v := i
		if err := q.Enqueue(&v); err != nil {
			t.Fatalf("Enqueue(%d): %v", i, err)
		}
	}
	for want := range 3 {
		val, err := q.WaitDequeue(time.Second)
		if err != nil || val != want {
			t.Fatalf("WaitDequeue: got (%d, %v), want (%d, nil)", val, err, want)
		}
	}
	if _, err := q.Dequeue(); !errors.Is(err, rwq.ErrWouldBlock) {
		t.Fatalf("Dequeue on empty: got %v, want ErrWouldBlock", err)
	}
}
