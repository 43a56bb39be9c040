// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crossbeam

import (
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// arrayQueue is the bounded flavor: a CAS-based multi-producer
// multi-consumer ring with per-slot sequence stamps.
//
// Positions pack {lap, index}: oneLap is the smallest power of 2 greater
// than the capacity, the low bits of a position are the slot index and the
// remaining bits count laps. A slot is writable when stamp == tail,
// readable when stamp == head+1; reading re-arms the slot one lap ahead
// with stamp = head + oneLap. Producers CAS-advance tail, consumers
// CAS-advance head, and a stamp mismatch distinguishes full/empty from a
// racing peer mid-operation.
//
// Unlike a plain power-of-2 ring, the lap encoding supports any exact
// capacity >= 1, which the single-slot and rendezvous-adjacent channel
// shapes require.
type arrayQueue[T any] struct {
	capacity uint64
	oneLap   uint64
	_        pad
	tail     atomix.Uint64 // Producer position {lap, index}
	_        pad
	head     atomix.Uint64 // Consumer position {lap, index}
	_        pad
	closed   atomix.Uint64
	buffer   []arraySlot[T]
	sendq    waitlist // Parked senders
	recvq    waitlist // Parked receivers
}

type arraySlot[T any] struct {
	stamp atomix.Uint64
	data  T
	_     padShort // Pad to cache line
}

func newArrayQueue[T any](capacity int) *arrayQueue[T] {
	if capacity < 1 {
		panic("crossbeam: capacity must be >= 1")
	}

	n := uint64(capacity)
	q := &arrayQueue[T]{
		capacity: n,
		oneLap:   uint64(roundToPow2(capacity + 1)),
		buffer:   make([]arraySlot[T], n),
	}

	for i := uint64(0); i < n; i++ {
		q.buffer[i].stamp.StoreRelaxed(i)
	}

	return q
}

// nextPos advances a packed position by one slot, wrapping the index into
// the next lap at the capacity boundary.
func (q *arrayQueue[T]) nextPos(pos uint64) uint64 {
	if (pos&(q.oneLap-1))+1 < q.capacity {
		return pos + 1
	}
	return pos&^(q.oneLap-1) + q.oneLap
}

func (q *arrayQueue[T]) isClosed() bool {
	return q.closed.LoadAcquire() != 0
}

// trySend appends v to the ring.
// Returns ErrWouldBlock if the ring is full, ErrDisconnected if closed.
func (q *arrayQueue[T]) trySend(v T) error {
	sw := spin.Wait{}
	for {
		if q.isClosed() {
			return ErrDisconnected
		}
		tail := q.tail.LoadAcquire()
		slot := &q.buffer[tail&(q.oneLap-1)]
		stamp := slot.stamp.LoadAcquire()

		if stamp == tail {
			if q.tail.CompareAndSwapAcqRel(tail, q.nextPos(tail)) {
				slot.data = v
				slot.stamp.StoreRelease(tail + 1)
				q.recvq.signalOne()
				return nil
			}
		} else if stamp+q.oneLap == tail+1 {
			// The slot still holds the value written one lap back.
			return ErrWouldBlock
		}
		sw.Once()
	}
}

// tryRecv removes the frontmost value from the ring. Buffered values stay
// deliverable after close; only a closed drained ring reports
// ErrDisconnected.
func (q *arrayQueue[T]) tryRecv() (T, error) {
	var zero T
	sw := spin.Wait{}
	for {
		head := q.head.LoadAcquire()
		slot := &q.buffer[head&(q.oneLap-1)]
		stamp := slot.stamp.LoadAcquire()

		if stamp == head+1 {
			if q.head.CompareAndSwapAcqRel(head, q.nextPos(head)) {
				v := slot.data
				slot.data = zero
				slot.stamp.StoreRelease(head + q.oneLap)
				q.sendq.signalOne()
				return v, nil
			}
		} else if stamp == head {
			// Nothing published at this position. A producer that already
			// advanced tail is still writing; otherwise the ring is empty.
			if q.tail.LoadAcquire() == head {
				if q.isClosed() {
					return zero, ErrDisconnected
				}
				return zero, ErrWouldBlock
			}
		}
		sw.Once()
	}
}

// canSend is the non-committing readiness probe used before parking.
// Closed counts as ready so a waiter surfaces ErrDisconnected instead of
// parking forever.
func (q *arrayQueue[T]) canSend() bool {
	return q.isClosed() || q.len() < int(q.capacity)
}

func (q *arrayQueue[T]) canRecv() bool {
	return q.isClosed() || q.len() > 0
}

// sendUntil blocks until v is enqueued, the deadline elapses, or the
// channel disconnects. A zero deadline blocks indefinitely.
func (q *arrayQueue[T]) sendUntil(v T, deadline time.Time) error {
	for {
		err := q.trySend(v)
		if !IsWouldBlock(err) {
			return err
		}

		a := getActor()
		gen := a.beginRound()
		q.sendq.add(a, gen, 0)

		// Re-check after registering to close the park race: a slot freed
		// before the registration was visible cannot signal us.
		if q.canSend() {
			q.sendq.remove(a)
			a.resolve()
			putActor(a)
			continue
		}

		kind, _ := a.waitUntil(deadline)
		q.sendq.remove(a)
		putActor(a)
		if kind == stateCancelled {
			return ErrTimeout
		}
		// Signalled or closed: retry; trySend reports the outcome.
	}
}

// recvUntil blocks until a value arrives, the deadline elapses, or the
// channel disconnects with its buffer drained.
func (q *arrayQueue[T]) recvUntil(deadline time.Time) (T, error) {
	for {
		v, err := q.tryRecv()
		if !IsWouldBlock(err) {
			return v, err
		}

		a := getActor()
		gen := a.beginRound()
		q.recvq.add(a, gen, 0)

		if q.canRecv() {
			q.recvq.remove(a)
			a.resolve()
			putActor(a)
			continue
		}

		kind, _ := a.waitUntil(deadline)
		q.recvq.remove(a)
		putActor(a)
		if kind == stateCancelled {
			var zero T
			return zero, ErrTimeout
		}
	}
}

// close disconnects the ring and wakes every parked waiter. Idempotent.
func (q *arrayQueue[T]) close() {
	if !q.closed.CompareAndSwapAcqRel(0, 1) {
		return
	}
	q.sendq.closeAll()
	q.recvq.closeAll()
}

// len reports the number of buffered values from a consistent snapshot of
// the two positions.
func (q *arrayQueue[T]) len() int {
	for {
		tail := q.tail.LoadAcquire()
		head := q.head.LoadAcquire()
		if q.tail.LoadAcquire() != tail {
			continue
		}
		hix := head & (q.oneLap - 1)
		tix := tail & (q.oneLap - 1)
		switch {
		case hix < tix:
			return int(tix - hix)
		case hix > tix:
			return int(q.capacity - hix + tix)
		case tail == head:
			return 0
		default:
			return int(q.capacity)
		}
	}
}

func (q *arrayQueue[T]) cap() int {
	return int(q.capacity)
}
