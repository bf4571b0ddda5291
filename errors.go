// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rwq

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For Enqueue: the queue is full (bounded mode backpressure)
// For Dequeue: the queue is empty (no data available)
//
// ErrWouldBlock is a control flow signal, not a failure. The caller should
// retry the operation later (with backoff or yield) rather than propagating
// the error.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := q.Enqueue(&item)
//	    if err == nil {
//	        backoff.Reset()
//	        break
//	    }
//	    if rwq.IsWouldBlock(err) {
//	        backoff.Wait()  // Adaptive backpressure
//	        continue
//	    }
//	    return err  // Unexpected error
//	}
var ErrWouldBlock = iox.ErrWouldBlock

// ErrTimedOut indicates a WaitDequeue timeout elapsed before an element
// became available. The queue is unchanged.
//
// Distinct from ErrWouldBlock so callers can tell deadline expiry from an
// instantaneous empty poll. Like ErrWouldBlock, it is an expected
// condition, not a failure.
var ErrTimedOut = errors.New("rwq: wait timed out")

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsTimedOut reports whether err indicates a WaitDequeue timeout.
func IsTimedOut(err error) bool {
	return errors.Is(err, ErrTimedOut)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// True for ErrTimedOut; otherwise delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return errors.Is(err, ErrTimedOut) || iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil, ErrWouldBlock, ErrTimedOut, or ErrMore.
func IsNonFailure(err error) bool {
	return errors.Is(err, ErrTimedOut) || iox.IsNonFailure(err)
}
