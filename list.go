// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crossbeam

import (
	"sync/atomic"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

const (
	segShift = 5
	segSize  = 1 << segShift // slots per segment
)

// listQueue is the unbounded flavor: a segmented linked list with
// monotonic position counters. Producers claim positions with a
// fetch-add and never block on capacity; consumers claim positions with a
// CAS and park only on empty.
//
// Segment reclamation: the head cursor advances past a segment only once
// every one of its slots has been consumed, which unlinks the segment from
// all live cursors. The garbage collector frees it once no claiming
// goroutine still holds a reference, so no epoch or hazard scheme is
// needed.
type listQueue[T any] struct {
	_       pad
	tail    atomix.Uint64 // Next position to produce
	_       pad
	head    atomix.Uint64 // Next position to consume
	_       pad
	closed  atomix.Uint64
	tailSeg atomic.Pointer[segment[T]] // Cursor cache near tail
	headSeg atomic.Pointer[segment[T]] // First segment with unconsumed slots
	recvq   waitlist                   // Parked receivers
}

type segment[T any] struct {
	start    uint64 // Position of slot 0
	next     atomic.Pointer[segment[T]]
	consumed atomix.Uint64 // Slots fully read; segSize retires the segment
	slots    [segSize]listSlot[T]
}

type listSlot[T any] struct {
	ready atomix.Bool // Value published
	data  T
}

func newListQueue[T any]() *listQueue[T] {
	q := &listQueue[T]{}
	seg := &segment[T]{}
	q.tailSeg.Store(seg)
	q.headSeg.Store(seg)
	return q
}

func (q *listQueue[T]) isClosed() bool {
	return q.closed.LoadAcquire() != 0
}

// findSegment returns the segment covering pos, allocating and linking new
// segments at the tail as needed. The tail cursor cache is advanced best
// effort; exact matches only, so it never moves backward.
func (q *listQueue[T]) findSegment(pos uint64) *segment[T] {
	seg := q.tailSeg.Load()
	if pos < seg.start {
		seg = q.headSeg.Load()
	}
	for pos >= seg.start+segSize {
		next := seg.next.Load()
		if next == nil {
			ns := &segment[T]{start: seg.start + segSize}
			if seg.next.CompareAndSwap(nil, ns) {
				next = ns
			} else {
				next = seg.next.Load()
			}
		}
		q.tailSeg.CompareAndSwap(seg, next)
		seg = next
	}
	return seg
}

// findHeadSegment returns the segment covering a claimed consumer position.
// The producer that claimed pos allocates its segment before publishing,
// so at worst the walk waits out that allocation. The head cursor cannot
// have passed pos: a segment retires only after all of its slots are
// consumed.
func (q *listQueue[T]) findHeadSegment(pos uint64) *segment[T] {
	sw := spin.Wait{}
	seg := q.headSeg.Load()
	for pos >= seg.start+segSize {
		next := seg.next.Load()
		if next == nil {
			sw.Once()
			continue
		}
		seg = next
	}
	return seg
}

// retireSlot counts a consumed slot and advances the head cursor across
// every fully consumed prefix segment, cascading in case segments complete
// out of order.
func (q *listQueue[T]) retireSlot(seg *segment[T]) {
	if seg.consumed.AddAcqRel(1) != segSize {
		return
	}
	for {
		cur := q.headSeg.Load()
		if cur.consumed.LoadAcquire() != segSize {
			return
		}
		next := cur.next.Load()
		if next == nil {
			return
		}
		q.headSeg.CompareAndSwap(cur, next)
	}
}

// trySend appends v. Never returns ErrWouldBlock: producers only
// coordinate on segment allocation, not capacity.
func (q *listQueue[T]) trySend(v T) error {
	if q.isClosed() {
		return ErrDisconnected
	}
	t := q.tail.AddAcqRel(1) - 1
	seg := q.findSegment(t)
	slot := &seg.slots[t-seg.start]
	slot.data = v
	slot.ready.StoreRelease(true)
	q.recvq.signalOne()
	return nil
}

// tryRecv removes the frontmost value. A consumer that claims a position
// ahead of an in-flight producer spins briefly on the ready flag.
func (q *listQueue[T]) tryRecv() (T, error) {
	var zero T
	sw := spin.Wait{}
	for {
		h := q.head.LoadAcquire()
		t := q.tail.LoadAcquire()
		if h >= t {
			if q.isClosed() {
				return zero, ErrDisconnected
			}
			return zero, ErrWouldBlock
		}
		if q.head.CompareAndSwapAcqRel(h, h+1) {
			seg := q.findHeadSegment(h)
			slot := &seg.slots[h-seg.start]
			for !slot.ready.LoadAcquire() {
				sw.Once()
			}
			v := slot.data
			slot.data = zero
			q.retireSlot(seg)
			return v, nil
		}
		sw.Once()
	}
}

func (q *listQueue[T]) canRecv() bool {
	return q.isClosed() || q.head.LoadAcquire() < q.tail.LoadAcquire()
}

// recvUntil blocks until a value arrives, the deadline elapses, or the
// channel disconnects with its buffer drained.
func (q *listQueue[T]) recvUntil(deadline time.Time) (T, error) {
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

// close disconnects the queue and wakes every parked receiver. Idempotent.
// Values still buffered become unreachable together with the queue once
// both sides drop their handles.
func (q *listQueue[T]) close() {
	if !q.closed.CompareAndSwapAcqRel(0, 1) {
		return
	}
	q.recvq.closeAll()
}

// len reports the number of buffered values from a consistent snapshot of
// the two counters.
func (q *listQueue[T]) len() int {
	for {
		t := q.tail.LoadAcquire()
		h := q.head.LoadAcquire()
		if q.tail.LoadAcquire() != t {
			continue
		}
		if t < h {
			return 0
		}
		return int(t - h)
	}
}
