// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crossbeam

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For TrySend: the channel is full (backpressure)
// For TryRecv: the channel is empty (no data available)
// For Select.Try: no candidate operation is ready
//
// ErrWouldBlock is a control flow signal, not a failure. The caller should
// retry the operation later (with backoff or yield), switch to the blocking
// variant, or drop the message, rather than propagating the error.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := s.TrySend(item)
//	    if err == nil {
//	        backoff.Reset()
//	        break
//	    }
//	    if crossbeam.IsWouldBlock(err) {
//	        backoff.Wait()  // Adaptive backpressure
//	        continue
//	    }
//	    return err  // Disconnected
//	}
var ErrWouldBlock = iox.ErrWouldBlock

// ErrTimeout indicates the deadline elapsed before the operation could
// complete.
//
// Returned by SendTimeout, RecvTimeout and Select.WaitTimeout. A timed-out
// send never consumes the value; the caller's copy is untouched and may be
// retried or discarded.
var ErrTimeout = errors.New("crossbeam: operation timed out")

// ErrDisconnected indicates the channel has no live peer.
//
// For sends: every receiver has been closed, so the value could never be
// observed. For receives: every sender has been closed and all buffered
// values have already been drained.
//
// Disconnection is sticky: once the channel has disconnected, every
// subsequent operation on it reports ErrDisconnected (receives keep
// draining buffered values first). An operation on an endpoint that was
// itself closed also reports ErrDisconnected, even while other live
// endpoints keep the channel connected.
var ErrDisconnected = errors.New("crossbeam: channel disconnected")

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsTimeout reports whether err indicates an elapsed deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsDisconnected reports whether err indicates a channel with no live peer.
func IsDisconnected(err error) bool {
	return errors.Is(err, ErrDisconnected)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil or ErrWouldBlock.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
