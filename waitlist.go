// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crossbeam

import "sync"

// waitEntry is a borrowed reference to a parked waiter. The parked
// goroutine owns the actor and removes its entry on wake, timeout or
// cancellation, so the list never outlives its waiters.
type waitEntry struct {
	a   *actor
	gen uint32
	idx int
}

// waitlist is the queue of waiters parked on one side of an array or list
// channel. The mutex is held only for list mutation and the claim CAS; the
// slot claims and value transfers of the queues run outside it, and a
// successful operation takes it only briefly to signal one waiter.
type waitlist struct {
	mu      sync.Mutex
	entries []waitEntry
}

// add registers a waiter at the back of the list.
func (w *waitlist) add(a *actor, gen uint32, idx int) {
	w.mu.Lock()
	w.entries = append(w.entries, waitEntry{a: a, gen: gen, idx: idx})
	w.mu.Unlock()
}

// remove deletes the waiter's entry if a peer has not already popped it.
func (w *waitlist) remove(a *actor) {
	w.mu.Lock()
	for i := range w.entries {
		if w.entries[i].a == a {
			w.entries = append(w.entries[:i], w.entries[i+1:]...)
			break
		}
	}
	w.mu.Unlock()
}

// signalOne wakes the frontmost claimable waiter. Entries whose claim CAS
// fails belong to waiters that already resolved (cancelled, or claimed by
// another channel of the same select); they are pruned and the scan moves
// on so the wake is never lost on a dead entry.
func (w *waitlist) signalOne() {
	w.mu.Lock()
	for len(w.entries) > 0 {
		e := w.entries[0]
		w.entries = w.entries[1:]
		if e.a.tryClaim(e.gen, e.idx) {
			e.a.notify()
			break
		}
	}
	w.mu.Unlock()
}

// closeAll marks every parked waiter disconnected and empties the list.
func (w *waitlist) closeAll() {
	w.mu.Lock()
	for _, e := range w.entries {
		if e.a.tryCloseClaim(e.gen, e.idx) {
			e.a.notify()
		}
	}
	w.entries = nil
	w.mu.Unlock()
}
