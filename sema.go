// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rwq

import (
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// semaSpin is the number of spin iterations before a waiter parks.
const semaSpin = 1024

// semaphore is a lightweight single-waiter semaphore.
//
// The count carries the number of available items; a negative count
// records a parked (or parking) waiter's debt. The channel is the inner
// park/wake primitive and is touched only when the count shows a waiter
// is actually parked, so uncontended signals cost one atomic add.
//
// SPSC contract: one goroutine signals, one goroutine waits.
type semaphore struct {
	_      pad
	count  atomix.Int64
	_      padShort
	parked chan struct{}
}

func newSemaphore() *semaphore {
	return &semaphore{parked: make(chan struct{}, 1)}
}

// signal makes one item available and wakes the waiter if one is parked.
func (s *semaphore) signal() {
	if s.count.AddAcqRel(1)-1 < 0 {
		select {
		case s.parked <- struct{}{}:
		default:
		}
	}
}

// tryWait consumes one available item without blocking.
func (s *semaphore) tryWait() bool {
	c := s.count.LoadRelaxed()
	for c > 0 {
		if s.count.CompareAndSwapAcqRel(c, c-1) {
			return true
		}
		c = s.count.LoadRelaxed()
	}
	return false
}

// wait consumes one available item, blocking up to timeout.
// A negative timeout waits indefinitely. Returns false on timeout.
func (s *semaphore) wait(timeout time.Duration) bool {
	sw := spin.Wait{}
	for range semaSpin {
		if s.tryWait() {
			return true
		}
		sw.Once()
	}

	// Register the debt. A positive old count means an item arrived
	// during the spin phase.
	if s.count.AddAcqRel(-1)+1 > 0 {
		return true
	}
	if timeout < 0 {
		<-s.parked
		return true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s.parked:
		return true
	case <-timer.C:
	}

	// Timed out with the debt still registered. Undo it — unless the
	// signaler observed the debt in the meantime, in which case its wake
	// token must be consumed instead of leaking.
	for {
		if s.count.AddAcqRel(1)-1 < 0 {
			return false
		}
		if s.count.AddAcqRel(-1)+1 > 0 {
			select {
			case <-s.parked:
				return true
			default:
			}
		}
	}
}

// availableApprox returns the item count visible at some instant.
// The transient negative value of a parking waiter reads as zero.
func (s *semaphore) availableApprox() int {
	c := s.count.LoadRelaxed()
	if c < 0 {
		return 0
	}
	return int(c)
}
