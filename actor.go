// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crossbeam

import (
	"sync"
	"time"

	"code.hybscloud.com/atomix"
)

// Waiter resolution kinds, packed into the low half of the actor state word.
const (
	stateWaiting   uint32 = 0 // parked or about to park, claimable
	stateCancelled uint32 = 1 // owner withdrew (timeout or aborted round)
	stateSignalled uint32 = 2 // a peer claimed the waiter for an operation
	stateClosed    uint32 = 3 // the waiter's channel disconnected
)

// packState encodes {generation, kind, case index} into one atomic word.
// The generation occupies the high 32 bits so a claim attempt carrying a
// stale generation can never match.
func packState(gen uint32, kind uint32, idx int) uint64 {
	return uint64(gen)<<32 | uint64(kind)<<16 | uint64(uint16(idx))
}

func unpackState(st uint64) (kind uint32, idx int) {
	return uint32(st>>16) & 0xffff, int(st & 0xffff)
}

// actor is the per-goroutine parking record shared by all blocking
// operations and by Select.
//
// The state word is the single commit point: exactly one claim CAS can win
// per round, whether it comes from a peer operation, from close, or from
// the owner cancelling. The wake token is a 1-buffered channel; the winner
// of the claim CAS sends exactly one token after it is done touching the
// waiter's cells, so a parked owner that receives the token observes every
// write the claimer made.
type actor struct {
	_     pad
	state atomix.Uint64
	_     pad
	gen   uint32 // owner-only; current round's generation
	token chan struct{}
}

func newActor() *actor {
	return &actor{token: make(chan struct{}, 1)}
}

var actorPool = sync.Pool{New: func() any { return newActor() }}

func getActor() *actor  { return actorPool.Get().(*actor) }
func putActor(a *actor) { actorPool.Put(a) }

// beginRound opens a new registration round and returns its generation.
// The state reset must precede the token drain: once the new generation is
// published, a straggling claimer from the previous round can no longer
// win, so any token it managed to send is already in the buffer and the
// drain removes it.
func (a *actor) beginRound() uint32 {
	a.gen++
	a.state.StoreRelease(packState(a.gen, stateWaiting, 0))
	select {
	case <-a.token:
	default:
	}
	return a.gen
}

// tryClaim attempts to win the waiter for operation idx. Claimers that need
// to move data through the waiter's cells must do so after winning the CAS
// and before calling notify.
func (a *actor) tryClaim(gen uint32, idx int) bool {
	return a.state.CompareAndSwapAcqRel(
		packState(gen, stateWaiting, 0),
		packState(gen, stateSignalled, idx),
	)
}

// tryCloseClaim marks the waiter's operation idx as disconnected.
func (a *actor) tryCloseClaim(gen uint32, idx int) bool {
	return a.state.CompareAndSwapAcqRel(
		packState(gen, stateWaiting, 0),
		packState(gen, stateClosed, idx),
	)
}

// notify wakes the parked owner. Only the winner of a claim CAS may call
// it, exactly once, so the buffered send cannot block.
func (a *actor) notify() {
	a.token <- struct{}{}
}

// resolve withdraws the owner from the current round. If a claim is already
// in flight the owner loses the cancel CAS, waits for the claimer's token,
// and reports the claimed operation instead. Either way the round ends in a
// non-Waiting state, so no claim can land after resolve returns.
func (a *actor) resolve() (kind uint32, idx int) {
	if a.state.CompareAndSwapAcqRel(
		packState(a.gen, stateWaiting, 0),
		packState(a.gen, stateCancelled, 0),
	) {
		return stateCancelled, 0
	}
	<-a.token
	return unpackState(a.state.LoadAcquire())
}

// waitUntil parks the owner until a claim lands or the deadline elapses.
// A zero deadline parks indefinitely. Returns the resolved kind and the
// claimed case index.
func (a *actor) waitUntil(deadline time.Time) (kind uint32, idx int) {
	if deadline.IsZero() {
		<-a.token
		return unpackState(a.state.LoadAcquire())
	}
	d := time.Until(deadline)
	if d <= 0 {
		return a.resolve()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-a.token:
		return unpackState(a.state.LoadAcquire())
	case <-timer.C:
		return a.resolve()
	}
}
