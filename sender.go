// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crossbeam

import (
	"time"

	"code.hybscloud.com/atomix"
)

// Sender is the producing endpoint of a channel.
//
// A Sender is safe for concurrent use. Clone creates another live producer
// endpoint; Close retires this one. When the last Sender of a channel
// closes, the channel disconnects: receivers keep draining buffered values
// and then observe ErrDisconnected.
//
// All send operations copy v, so a failed send (ErrWouldBlock, ErrTimeout,
// ErrDisconnected) leaves the caller's value untouched for retry.
type Sender[T any] struct {
	ch     *channel[T]
	closed atomix.Uint64
}

func newSender[T any](ch *channel[T]) *Sender[T] {
	ch.senders.AddAcqRel(1)
	return &Sender[T]{ch: ch}
}

// Clone returns a new Sender for the same channel and increments the live
// sender count. Panics if called on a closed Sender.
func (s *Sender[T]) Clone() *Sender[T] {
	if s.isHandleClosed() {
		panic("crossbeam: Clone of closed Sender")
	}
	return newSender(s.ch)
}

// Close retires this endpoint. The last Sender to close disconnects the
// channel and wakes every parked waiter. Close is idempotent; operations
// on a closed Sender return ErrDisconnected.
func (s *Sender[T]) Close() {
	if !s.closed.CompareAndSwapAcqRel(0, 1) {
		return
	}
	if s.ch.senders.AddAcqRel(-1) == 0 {
		s.ch.close()
	}
}

func (s *Sender[T]) isHandleClosed() bool {
	return s.closed.LoadAcquire() != 0
}

// TrySend attempts to send v without blocking.
// Returns nil on success, ErrWouldBlock if the channel is full (for the
// rendezvous flavor: no receiver is waiting), ErrDisconnected if the
// channel has no live receivers.
func (s *Sender[T]) TrySend(v T) error {
	return s.trySendFrom(v, nil)
}

func (s *Sender[T]) trySendFrom(v T, self *actor) error {
	if s.isHandleClosed() {
		return ErrDisconnected
	}
	switch s.ch.flavor {
	case flavorArray:
		return s.ch.array.trySend(v)
	case flavorList:
		return s.ch.list.trySend(v)
	default:
		return s.ch.zero.trySend(v, self)
	}
}

// Send blocks until v is enqueued (for the rendezvous flavor: until a
// receiver takes it). Returns ErrDisconnected if the channel has no live
// receivers.
func (s *Sender[T]) Send(v T) error {
	return s.sendUntil(v, time.Time{})
}

// SendTimeout blocks like Send for at most d.
// Returns ErrTimeout if the deadline elapsed with v unsent.
func (s *Sender[T]) SendTimeout(v T, d time.Duration) error {
	return s.sendUntil(v, time.Now().Add(d))
}

func (s *Sender[T]) sendUntil(v T, deadline time.Time) error {
	if s.isHandleClosed() {
		return ErrDisconnected
	}
	switch s.ch.flavor {
	case flavorArray:
		return s.ch.array.sendUntil(v, deadline)
	case flavorList:
		// Unbounded sends never block.
		return s.ch.list.trySend(v)
	default:
		return s.ch.zero.sendUntil(v, deadline)
	}
}

// Len reports the number of buffered values. Always 0 for the rendezvous
// flavor.
func (s *Sender[T]) Len() int {
	return s.ch.len()
}

// IsFull reports whether the channel has no free capacity, so that TrySend
// on a connected channel would return ErrWouldBlock. For the rendezvous
// flavor this means no receiver is currently waiting. Disconnection is not
// reflected; see IsDisconnected. The answer may be stale by the time the
// caller acts on it.
func (s *Sender[T]) IsFull() bool {
	switch s.ch.flavor {
	case flavorArray:
		return s.ch.array.len() == s.ch.array.cap()
	case flavorList:
		return false
	default:
		return !s.ch.zero.hasReceivers(nil)
	}
}

// IsDisconnected reports whether the channel is disconnected. Sticky.
func (s *Sender[T]) IsDisconnected() bool {
	return s.ch.isClosed()
}

// Capacity reports the channel's capacity. ok is false for the unbounded
// flavor; the rendezvous flavor reports (0, true).
func (s *Sender[T]) Capacity() (capacity int, ok bool) {
	switch s.ch.flavor {
	case flavorArray:
		return s.ch.array.cap(), true
	case flavorList:
		return 0, false
	default:
		return 0, true
	}
}
