// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package crossbeam provides multi-producer multi-consumer channels with
// blocking, non-blocking and timeout operations, plus a Select
// multiplexer that waits on several channel operations at once and
// commits exactly one.
//
// Three channel flavors share one endpoint pair:
//
//   - Bounded: fixed-capacity lock-free ring buffer
//   - Unbounded: linked segments grown on demand; sends never block
//   - Rendezvous (capacity 0): no buffer, every transfer is a handshake
//
// # Quick Start
//
//	s, r := crossbeam.Bounded[int](1024)   // bounded ring
//	s, r := crossbeam.Unbounded[string]()  // unbounded list
//	s, r := crossbeam.Bounded[Event](0)    // rendezvous
//
// # Basic Usage
//
// Every flavor offers the same operations. Non-blocking variants report
// [ErrWouldBlock] instead of waiting:
//
//	s, r := crossbeam.Bounded[int](8)
//
//	// Non-blocking
//	if err := s.TrySend(42); crossbeam.IsWouldBlock(err) {
//	    // channel full - handle backpressure
//	}
//	v, err := r.TryRecv()
//	if crossbeam.IsWouldBlock(err) {
//	    // channel empty - try again later
//	}
//
//	// Blocking
//	err := s.Send(42)     // parks until a slot frees
//	v, err := r.Recv()    // parks until a value arrives
//
//	// Bounded blocking
//	err := s.SendTimeout(42, time.Millisecond)
//	v, err := r.RecvTimeout(time.Millisecond)
//
// # Endpoint Lifecycle
//
// Endpoints are reference counted. Clone adds a live endpoint on the same
// side; Close retires one. When the last endpoint of either side closes,
// the channel disconnects: values already buffered remain deliverable,
// and once drained every operation reports [ErrDisconnected].
//
//	s, r := crossbeam.Unbounded[Job]()
//
//	for w := range workers {
//	    go produce(s.Clone())
//	}
//	s.Close() // disconnects once every clone has closed too
//
//	for {
//	    job, err := r.Recv()
//	    if err != nil {
//	        break // drained and disconnected
//	    }
//	    job.Run()
//	}
//
// # Select
//
// [Select] waits on any mix of sends and receives across channels of any
// flavors and commits exactly one operation per call:
//
//	var v int
//	sel := crossbeam.NewSelect(
//	    crossbeam.RecvCase(r1, &v),
//	    crossbeam.SendCase(s2, 7),
//	)
//	idx, err := sel.WaitTimeout(time.Second)
//
// Try never parks, Wait parks indefinitely, WaitTimeout parks with a
// deadline. The random rotation start keeps every case live under
// contention. A Select is reusable across calls but not from multiple
// goroutines at once.
//
// # Error Handling
//
// Errors are values. [ErrWouldBlock] is sourced from
// [code.hybscloud.com/iox] for ecosystem consistency; [ErrTimeout] and
// [ErrDisconnected] complete the taxonomy. Failed sends never consume the
// value: the caller's copy is untouched, so retry loops compose with
// [iox.Backoff]:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := s.TrySend(item)
//	    if err == nil {
//	        break
//	    }
//	    if !crossbeam.IsWouldBlock(err) {
//	        return err // disconnected
//	    }
//	    backoff.Wait()
//	}
//
// # Ordering Guarantees
//
// Buffered flavors are FIFO per channel: values leave in the order the
// producer index was claimed. Select guarantees nothing across channels
// beyond one commit per call. Disconnection is sticky, and every value
// enqueued before the close is visible to subsequent receives.
//
// # Blocking Model
//
// Only Send, SendTimeout, Recv, RecvTimeout and Select.Wait* park the
// calling goroutine. Every Try* operation and every query (Len, IsFull,
// IsEmpty, IsDisconnected, Capacity) is lock-free or bounded-retry and
// never parks. Parked waiters are woken one per opposite-side operation;
// close wakes all.
//
// # Race Detection
//
// Go's race detector is not designed for lock-free algorithm
// verification. The bounded and unbounded flavors protect their value
// slots with sequence stamps and ready flags carrying acquire-release
// semantics through atomix; the detector cannot observe happens-before
// edges established that way and reports false positives. Tests
// incompatible with race detection skip themselves when [RaceEnabled] is
// set, and the examples are excluded via //go:build !race.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors,
// [code.hybscloud.com/atomix] for atomic primitives with explicit
// memory ordering, and [code.hybscloud.com/spin] for CPU pause
// instructions.
package crossbeam
