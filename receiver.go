// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crossbeam

import (
	"time"

	"code.hybscloud.com/atomix"
)

// Receiver is the consuming endpoint of a channel.
//
// A Receiver is safe for concurrent use. Clone creates another live
// consumer endpoint; Close retires this one. When the last Receiver of a
// channel closes, the channel disconnects and senders observe
// ErrDisconnected.
type Receiver[T any] struct {
	ch     *channel[T]
	closed atomix.Uint64
}

func newReceiver[T any](ch *channel[T]) *Receiver[T] {
	ch.receivers.AddAcqRel(1)
	return &Receiver[T]{ch: ch}
}

// Clone returns a new Receiver for the same channel and increments the
// live receiver count. Panics if called on a closed Receiver.
func (r *Receiver[T]) Clone() *Receiver[T] {
	if r.isHandleClosed() {
		panic("crossbeam: Clone of closed Receiver")
	}
	return newReceiver(r.ch)
}

// Close retires this endpoint. The last Receiver to close disconnects the
// channel and wakes every parked waiter. Close is idempotent; operations
// on a closed Receiver return ErrDisconnected.
func (r *Receiver[T]) Close() {
	if !r.closed.CompareAndSwapAcqRel(0, 1) {
		return
	}
	if r.ch.receivers.AddAcqRel(-1) == 0 {
		r.ch.close()
	}
}

func (r *Receiver[T]) isHandleClosed() bool {
	return r.closed.LoadAcquire() != 0
}

// TryRecv attempts to receive a value without blocking.
// Returns ErrWouldBlock if the channel is empty (for the rendezvous
// flavor: no sender is waiting), ErrDisconnected if the channel is
// disconnected and every buffered value has been drained.
func (r *Receiver[T]) TryRecv() (T, error) {
	return r.tryRecvFrom(nil)
}

func (r *Receiver[T]) tryRecvFrom(self *actor) (T, error) {
	if r.isHandleClosed() {
		var zero T
		return zero, ErrDisconnected
	}
	switch r.ch.flavor {
	case flavorArray:
		return r.ch.array.tryRecv()
	case flavorList:
		return r.ch.list.tryRecv()
	default:
		return r.ch.zero.tryRecv(self)
	}
}

// Recv blocks until a value arrives. Returns ErrDisconnected once the
// channel is disconnected and drained.
func (r *Receiver[T]) Recv() (T, error) {
	return r.recvUntil(time.Time{})
}

// RecvTimeout blocks like Recv for at most d.
// Returns ErrTimeout if the deadline elapsed with nothing received.
func (r *Receiver[T]) RecvTimeout(d time.Duration) (T, error) {
	return r.recvUntil(time.Now().Add(d))
}

func (r *Receiver[T]) recvUntil(deadline time.Time) (T, error) {
	if r.isHandleClosed() {
		var zero T
		return zero, ErrDisconnected
	}
	switch r.ch.flavor {
	case flavorArray:
		return r.ch.array.recvUntil(deadline)
	case flavorList:
		return r.ch.list.recvUntil(deadline)
	default:
		return r.ch.zero.recvUntil(deadline)
	}
}

// Len reports the number of buffered values. Always 0 for the rendezvous
// flavor.
func (r *Receiver[T]) Len() int {
	return r.ch.len()
}

// IsEmpty reports whether the channel holds no buffered value, so that
// TryRecv on a connected channel would return ErrWouldBlock. For the
// rendezvous flavor this means no sender is currently waiting.
// Disconnection is not reflected; see IsDisconnected. The answer may be
// stale by the time the caller acts on it.
func (r *Receiver[T]) IsEmpty() bool {
	switch r.ch.flavor {
	case flavorArray:
		return r.ch.array.len() == 0
	case flavorList:
		return r.ch.list.len() == 0
	default:
		return !r.ch.zero.hasSenders(nil)
	}
}

// IsDisconnected reports whether the channel is disconnected. Sticky.
func (r *Receiver[T]) IsDisconnected() bool {
	return r.ch.isClosed()
}

// Capacity reports the channel's capacity. ok is false for the unbounded
// flavor; the rendezvous flavor reports (0, true).
func (r *Receiver[T]) Capacity() (capacity int, ok bool) {
	switch r.ch.flavor {
	case flavorArray:
		return r.ch.array.cap(), true
	case flavorList:
		return 0, false
	default:
		return 0, true
	}
}
