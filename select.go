// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crossbeam

import (
	"time"

	"code.hybscloud.com/atomix"
)

// Case is one candidate operation of a Select, built with SendCase or
// RecvCase.
type Case interface {
	// exec attempts the operation without blocking, committing on success.
	exec(self *actor) error
	// ready is the non-committing readiness probe used between
	// registration and parking.
	ready(self *actor) bool
	// register parks the waiter on the operation's wait-list.
	register(a *actor, gen uint32, idx int)
	// unregister removes the waiter again if a peer has not claimed it.
	unregister(a *actor)
	// rendezvous reports whether a won claim on this case is itself the
	// committed transfer (zero flavor) rather than a wake hint.
	rendezvous() bool
}

// SendCase builds a Select candidate that sends v on s. The value is
// captured at construction; if the Select is reused after a commit, the
// case offers the same value again.
func SendCase[T any](s *Sender[T], v T) Case {
	return &sendCase[T]{s: s, v: v}
}

// RecvCase builds a Select candidate that receives from r into *dst. The
// destination is written only when this case commits with a nil error.
func RecvCase[T any](r *Receiver[T], dst *T) Case {
	return &recvCase[T]{r: r, dst: dst}
}

type sendCase[T any] struct {
	s *Sender[T]
	v T
}

func (c *sendCase[T]) exec(self *actor) error {
	return c.s.trySendFrom(c.v, self)
}

func (c *sendCase[T]) ready(self *actor) bool {
	if c.s.isHandleClosed() {
		return true
	}
	switch c.s.ch.flavor {
	case flavorArray:
		return c.s.ch.array.canSend()
	case flavorList:
		return true
	default:
		return c.s.ch.zero.hasReceivers(self) || c.s.ch.zero.isClosed()
	}
}

func (c *sendCase[T]) register(a *actor, gen uint32, idx int) {
	switch c.s.ch.flavor {
	case flavorArray:
		c.s.ch.array.sendq.add(a, gen, idx)
	case flavorList:
		// Unbounded sends are always ready; nothing to park on.
	default:
		c.s.ch.zero.addSender(a, gen, idx, c.v)
	}
}

func (c *sendCase[T]) unregister(a *actor) {
	switch c.s.ch.flavor {
	case flavorArray:
		c.s.ch.array.sendq.remove(a)
	case flavorList:
	default:
		c.s.ch.zero.removeSender(a)
	}
}

func (c *sendCase[T]) rendezvous() bool {
	return c.s.ch.flavor == flavorZero
}

type recvCase[T any] struct {
	r   *Receiver[T]
	dst *T
}

func (c *recvCase[T]) exec(self *actor) error {
	v, err := c.r.tryRecvFrom(self)
	if err == nil {
		*c.dst = v
	}
	return err
}

func (c *recvCase[T]) ready(self *actor) bool {
	if c.r.isHandleClosed() {
		return true
	}
	switch c.r.ch.flavor {
	case flavorArray:
		return c.r.ch.array.canRecv()
	case flavorList:
		return c.r.ch.list.canRecv()
	default:
		return c.r.ch.zero.hasSenders(self) || c.r.ch.zero.isClosed()
	}
}

func (c *recvCase[T]) register(a *actor, gen uint32, idx int) {
	switch c.r.ch.flavor {
	case flavorArray:
		c.r.ch.array.recvq.add(a, gen, idx)
	case flavorList:
		c.r.ch.list.recvq.add(a, gen, idx)
	default:
		c.r.ch.zero.addReceiver(a, gen, idx, c.dst)
	}
}

func (c *recvCase[T]) unregister(a *actor) {
	switch c.r.ch.flavor {
	case flavorArray:
		c.r.ch.array.recvq.remove(a)
	case flavorList:
		c.r.ch.list.recvq.remove(a)
	default:
		c.r.ch.zero.removeReceiver(a)
	}
}

func (c *recvCase[T]) rendezvous() bool {
	return c.r.ch.flavor == flavorZero
}

// Select waits on several channel operations and commits exactly one.
//
// A Select is built once and may be reused across calls; each call opens a
// fresh generation, so nested Selects on the same goroutine and concurrent
// Selects over the same channels are both fine. A single Select value must
// not be used from multiple goroutines at once.
//
// Fairness: each call scans the candidates in rotation from a fresh
// random start, so no case is starved under contention.
//
// Example:
//
//	var v int
//	sel := crossbeam.NewSelect(
//	    crossbeam.RecvCase(r1, &v),
//	    crossbeam.SendCase(s2, 7),
//	)
//	switch idx, err := sel.Wait(); {
//	case err != nil:
//	    // the committed case observed disconnection
//	case idx == 0:
//	    // received v from r1
//	case idx == 1:
//	    // sent 7 on s2
//	}
type Select struct {
	cases []Case
	a     *actor
	rng   uint64
}

// maxCases bounds the case index so it packs into the actor state word.
const maxCases = 1 << 16

// NewSelect builds a Select over the given candidate operations.
func NewSelect(cases ...Case) *Select {
	s := &Select{
		cases: cases,
		a:     newActor(),
		rng:   nextSeed() | 1,
	}
	if len(cases) >= maxCases {
		panic("crossbeam: too many select cases")
	}
	return s
}

// Add appends another candidate and returns its index.
func (s *Select) Add(c Case) int {
	if len(s.cases)+1 >= maxCases {
		panic("crossbeam: too many select cases")
	}
	s.cases = append(s.cases, c)
	return len(s.cases) - 1
}

// Try attempts every candidate once, in rotation from a random start, and
// commits the first one that is ready. Returns the committed index; err is
// ErrDisconnected when the committed operation observed disconnection.
// Returns (-1, ErrWouldBlock) if no candidate is ready.
func (s *Select) Try() (int, error) {
	if len(s.cases) == 0 {
		return -1, ErrWouldBlock
	}
	n := len(s.cases)
	start := s.nextStart()
	for i := range n {
		k := (start + i) % n
		if err := s.cases[k].exec(s.a); !IsWouldBlock(err) {
			return k, err
		}
	}
	return -1, ErrWouldBlock
}

// Wait blocks until one candidate commits and returns its index; err is
// ErrDisconnected when the committed operation observed disconnection.
// Panics if the Select has no cases.
func (s *Select) Wait() (int, error) {
	return s.waitDeadline(time.Time{})
}

// WaitTimeout blocks like Wait for at most d.
// Returns (-1, ErrTimeout) if the deadline elapsed with nothing committed.
func (s *Select) WaitTimeout(d time.Duration) (int, error) {
	return s.waitDeadline(time.Now().Add(d))
}

func (s *Select) waitDeadline(deadline time.Time) (int, error) {
	if len(s.cases) == 0 {
		panic("crossbeam: select with no cases")
	}
	n := len(s.cases)
	for {
		start := s.nextStart()

		// Unregistered pass: free to commit directly. A disconnected
		// operation counts as ready.
		for i := range n {
			k := (start + i) % n
			if err := s.cases[k].exec(s.a); !IsWouldBlock(err) {
				return k, err
			}
		}

		// Park on every candidate at once.
		gen := s.a.beginRound()
		for i, c := range s.cases {
			c.register(s.a, gen, i)
		}

		// Close the park race. From here on every exit goes through the
		// actor state, so a peer handoff and our own commit are mutually
		// exclusive.
		kind, idx := uint32(0), 0
		if s.anyReady() {
			for _, c := range s.cases {
				c.unregister(s.a)
			}
			kind, idx = s.a.resolve()
			if kind == stateCancelled {
				continue
			}
		} else {
			kind, idx = s.a.waitUntil(deadline)
			for _, c := range s.cases {
				c.unregister(s.a)
			}
		}

		switch kind {
		case stateCancelled:
			return -1, ErrTimeout
		case stateSignalled:
			if s.cases[idx].rendezvous() {
				// The claimer completed the handshake; the transfer is done.
				return idx, nil
			}
			if err := s.cases[idx].exec(s.a); !IsWouldBlock(err) {
				return idx, err
			}
			// Lost the race to another thread; scan again.
		case stateClosed:
			if err := s.cases[idx].exec(s.a); !IsWouldBlock(err) {
				return idx, err
			}
		}
	}
}

func (s *Select) anyReady() bool {
	for _, c := range s.cases {
		if c.ready(s.a) {
			return true
		}
	}
	return false
}

// nextStart draws the rotation offset from a per-Select xorshift.
func (s *Select) nextStart() int {
	x := s.rng
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	s.rng = x
	return int(x % uint64(len(s.cases)))
}

var seedState atomix.Uint64

// nextSeed hands out splitmix64 outputs to seed per-Select generators.
func nextSeed() uint64 {
	z := seedState.AddAcqRel(0x9e3779b97f4a7c15)
	z ^= z >> 30
	z *= 0xbf58476d1ce4e5b9
	z ^= z >> 27
	z *= 0x94d049bb133111eb
	return z ^ z>>31
}
