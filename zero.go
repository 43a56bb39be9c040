// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crossbeam

import (
	"sync"
	"time"

	"code.hybscloud.com/atomix"
)

// zeroEntry is one parked party of a rendezvous. Senders carry the offered
// value; receivers carry the destination cell. The claimer moves the value
// through the entry after winning the waiter's claim CAS and before
// notifying, so the woken party always observes the transfer.
type zeroEntry[T any] struct {
	a     *actor
	gen   uint32
	idx   int
	value T  // offered value (senders)
	cell  *T // destination (receivers)
}

// zeroQueue is the rendezvous flavor: no storage, every transfer is a
// handshake between one sender and one receiver. The wait-lists double as
// the queue state; the per-waiter claim CAS is what makes delivery
// exactly-once even against a racing timeout.
type zeroQueue[T any] struct {
	closed atomix.Uint64
	mu     sync.Mutex
	sendq  []zeroEntry[T] // offered sends
	recvq  []zeroEntry[T] // waiting receivers
}

func newZeroQueue[T any]() *zeroQueue[T] {
	return &zeroQueue[T]{}
}

func (q *zeroQueue[T]) isClosed() bool {
	return q.closed.LoadAcquire() != 0
}

// trySend hands v to a waiting receiver. skip identifies the calling
// select's own actor so an operation never rendezvouses with its sibling
// case on the same channel.
func (q *zeroQueue[T]) trySend(v T, skip *actor) error {
	q.mu.Lock()
	for i := 0; i < len(q.recvq); {
		e := q.recvq[i]
		if e.a == skip {
			i++
			continue
		}
		q.recvq = append(q.recvq[:i], q.recvq[i+1:]...)
		if e.a.tryClaim(e.gen, e.idx) {
			*e.cell = v
			e.a.notify()
			q.mu.Unlock()
			return nil
		}
		// Cancelled or claimed elsewhere; pruned, keep scanning.
	}
	q.mu.Unlock()
	if q.isClosed() {
		return ErrDisconnected
	}
	return ErrWouldBlock
}

// tryRecv takes the value of a waiting sender.
func (q *zeroQueue[T]) tryRecv(skip *actor) (T, error) {
	var zero T
	q.mu.Lock()
	for i := 0; i < len(q.sendq); {
		e := q.sendq[i]
		if e.a == skip {
			i++
			continue
		}
		q.sendq = append(q.sendq[:i], q.sendq[i+1:]...)
		if e.a.tryClaim(e.gen, e.idx) {
			e.a.notify()
			q.mu.Unlock()
			return e.value, nil
		}
	}
	q.mu.Unlock()
	if q.isClosed() {
		return zero, ErrDisconnected
	}
	return zero, ErrWouldBlock
}

func (q *zeroQueue[T]) addSender(a *actor, gen uint32, idx int, v T) {
	q.mu.Lock()
	q.sendq = append(q.sendq, zeroEntry[T]{a: a, gen: gen, idx: idx, value: v})
	q.mu.Unlock()
}

func (q *zeroQueue[T]) addReceiver(a *actor, gen uint32, idx int, cell *T) {
	q.mu.Lock()
	q.recvq = append(q.recvq, zeroEntry[T]{a: a, gen: gen, idx: idx, cell: cell})
	q.mu.Unlock()
}

func (q *zeroQueue[T]) removeSender(a *actor) {
	q.mu.Lock()
	for i := range q.sendq {
		if q.sendq[i].a == a {
			q.sendq = append(q.sendq[:i], q.sendq[i+1:]...)
			break
		}
	}
	q.mu.Unlock()
}

func (q *zeroQueue[T]) removeReceiver(a *actor) {
	q.mu.Lock()
	for i := range q.recvq {
		if q.recvq[i].a == a {
			q.recvq = append(q.recvq[:i], q.recvq[i+1:]...)
			break
		}
	}
	q.mu.Unlock()
}

// hasSenders reports whether an offer from someone other than skip is
// parked. Backs IsEmpty and the select readiness probe.
func (q *zeroQueue[T]) hasSenders(skip *actor) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.sendq {
		if q.sendq[i].a != skip {
			return true
		}
	}
	return false
}

func (q *zeroQueue[T]) hasReceivers(skip *actor) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.recvq {
		if q.recvq[i].a != skip {
			return true
		}
	}
	return false
}

// sendUntil blocks until a receiver takes v, the deadline elapses, or the
// channel disconnects. A cancelled or closed offer keeps ownership of v;
// only a claimed one gives it up.
func (q *zeroQueue[T]) sendUntil(v T, deadline time.Time) error {
	for {
		err := q.trySend(v, nil)
		if !IsWouldBlock(err) {
			return err
		}

		a := getActor()
		gen := a.beginRound()
		q.addSender(a, gen, 0, v)

		// A receiver that registered between the scan above and this point
		// may have probed before seeing the offer; re-check before parking.
		if q.hasReceivers(a) || q.isClosed() {
			q.removeSender(a)
			kind, _ := a.resolve()
			putActor(a)
			if kind == stateSignalled {
				return nil
			}
			continue
		}

		kind, _ := a.waitUntil(deadline)
		q.removeSender(a)
		putActor(a)
		switch kind {
		case stateSignalled:
			return nil
		case stateClosed:
			return ErrDisconnected
		default:
			return ErrTimeout
		}
	}
}

// recvUntil blocks until a sender hands over a value, the deadline
// elapses, or the channel disconnects.
func (q *zeroQueue[T]) recvUntil(deadline time.Time) (T, error) {
	for {
		v, err := q.tryRecv(nil)
		if !IsWouldBlock(err) {
			return v, err
		}

		a := getActor()
		gen := a.beginRound()
		var cell T
		q.addReceiver(a, gen, 0, &cell)

		if q.hasSenders(a) || q.isClosed() {
			q.removeReceiver(a)
			kind, _ := a.resolve()
			putActor(a)
			if kind == stateSignalled {
				return cell, nil
			}
			continue
		}

		kind, _ := a.waitUntil(deadline)
		q.removeReceiver(a)
		putActor(a)
		switch kind {
		case stateSignalled:
			return cell, nil
		case stateClosed:
			var zero T
			return zero, ErrDisconnected
		default:
			var zero T
			return zero, ErrTimeout
		}
	}
}

// close disconnects the channel and wakes every parked party. Unclaimed
// offers report ErrDisconnected to their owners, value intact. Idempotent.
func (q *zeroQueue[T]) close() {
	if !q.closed.CompareAndSwapAcqRel(0, 1) {
		return
	}
	q.mu.Lock()
	for _, e := range q.sendq {
		if e.a.tryCloseClaim(e.gen, e.idx) {
			e.a.notify()
		}
	}
	q.sendq = nil
	for _, e := range q.recvq {
		if e.a.tryCloseClaim(e.gen, e.idx) {
			e.a.notify()
		}
	}
	q.recvq = nil
	q.mu.Unlock()
}
