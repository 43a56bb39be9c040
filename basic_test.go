// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crossbeam_test

import (
	"errors"
	"testing"
	"time"

	"github.com/malbertoni/crossbeam"
)

// =============================================================================
// Bounded Flavor - Basic Operations
// =============================================================================

// TestBoundedBasic tests non-blocking operations on the bounded flavor.
func TestBoundedBasic(t *testing.T) {
	s, r := crossbeam.Bounded[int](3)

	if c, ok := s.Capacity(); !ok || c != 3 {
		t.Fatalf("Capacity: got (%d, %v), want (3, true)", c, ok)
	}

	// Fill to capacity
	for i := range 3 {
		if err := s.TrySend(i + 100); err != nil {
			t.Fatalf("TrySend(%d): %v", i, err)
		}
	}

	// Full channel returns ErrWouldBlock
	if err := s.TrySend(999); !errors.Is(err, crossbeam.ErrWouldBlock) {
		t.Fatalf("TrySend on full: got %v, want ErrWouldBlock", err)
	}
	if !s.IsFull() {
		t.Fatal("IsFull: got false, want true")
	}
	if s.Len() != 3 {
		t.Fatalf("Len: got %d, want 3", s.Len())
	}

	// Dequeue in FIFO order
	for i := range 3 {
		v, err := r.TryRecv()
		if err != nil {
			t.Fatalf("TryRecv(%d): %v", i, err)
		}
		if v != i+100 {
			t.Fatalf("TryRecv(%d): got %d, want %d", i, v, i+100)
		}
	}

	// Empty channel returns ErrWouldBlock
	if _, err := r.TryRecv(); !errors.Is(err, crossbeam.ErrWouldBlock) {
		t.Fatalf("TryRecv on empty: got %v, want ErrWouldBlock", err)
	}
	if !r.IsEmpty() {
		t.Fatal("IsEmpty: got false, want true")
	}
}

// TestBoundedScenario walks the canonical bounded(2) lifecycle: fill, fail
// full, interleave, disconnect, drain.
func TestBoundedScenario(t *testing.T) {
	s, r := crossbeam.Bounded[int](2)

	if err := s.TrySend(1); err != nil {
		t.Fatalf("TrySend(1): %v", err)
	}
	if err := s.TrySend(2); err != nil {
		t.Fatalf("TrySend(2): %v", err)
	}
	if err := s.TrySend(3); !errors.Is(err, crossbeam.ErrWouldBlock) {
		t.Fatalf("TrySend(3) on full: got %v, want ErrWouldBlock", err)
	}
	if v, err := r.TryRecv(); err != nil || v != 1 {
		t.Fatalf("TryRecv: got (%d, %v), want (1, nil)", v, err)
	}
	if err := s.TrySend(4); err != nil {
		t.Fatalf("TrySend(4): %v", err)
	}

	s.Close()

	// Buffered values survive the disconnect
	if v, err := r.TryRecv(); err != nil || v != 2 {
		t.Fatalf("TryRecv after close: got (%d, %v), want (2, nil)", v, err)
	}
	if v, err := r.TryRecv(); err != nil || v != 4 {
		t.Fatalf("TryRecv after close: got (%d, %v), want (4, nil)", v, err)
	}
	if _, err := r.TryRecv(); !errors.Is(err, crossbeam.ErrDisconnected) {
		t.Fatalf("TryRecv on drained: got %v, want ErrDisconnected", err)
	}
}

// TestBoundedOne verifies a single-slot channel accepts exactly one send.
func TestBoundedOne(t *testing.T) {
	s, r := crossbeam.Bounded[string](1)

	if err := s.TrySend("a"); err != nil {
		t.Fatalf("TrySend: %v", err)
	}
	if err := s.TrySend("b"); !errors.Is(err, crossbeam.ErrWouldBlock) {
		t.Fatalf("TrySend on full: got %v, want ErrWouldBlock", err)
	}
	if v, err := r.TryRecv(); err != nil || v != "a" {
		t.Fatalf("TryRecv: got (%q, %v), want (\"a\", nil)", v, err)
	}
	if err := s.TrySend("b"); err != nil {
		t.Fatalf("TrySend after drain: %v", err)
	}
}

// TestBoundedWrapAround cycles a small ring several laps.
func TestBoundedWrapAround(t *testing.T) {
	s, r := crossbeam.Bounded[int](3)

	for lap := range 10 {
		for i := range 3 {
			if err := s.TrySend(lap*10 + i); err != nil {
				t.Fatalf("TrySend(lap %d, %d): %v", lap, i, err)
			}
		}
		for i := range 3 {
			v, err := r.TryRecv()
			if err != nil {
				t.Fatalf("TryRecv(lap %d, %d): %v", lap, i, err)
			}
			if v != lap*10+i {
				t.Fatalf("TryRecv(lap %d, %d): got %d, want %d", lap, i, v, lap*10+i)
			}
		}
	}
}

// TestSendTimeout verifies the deadline path keeps the value with the
// caller.
func TestSendTimeout(t *testing.T) {
	s, _ := crossbeam.Bounded[int](1)

	if err := s.SendTimeout(1, 10*time.Millisecond); err != nil {
		t.Fatalf("SendTimeout(1): %v", err)
	}
	if err := s.SendTimeout(2, 10*time.Millisecond); !errors.Is(err, crossbeam.ErrTimeout) {
		t.Fatalf("SendTimeout(2) on full: got %v, want ErrTimeout", err)
	}
	// The value was never consumed; retry succeeds once a slot frees
	if s.Len() != 1 {
		t.Fatalf("Len after timeout: got %d, want 1", s.Len())
	}
}

// TestRecvTimeout verifies the receive deadline path.
func TestRecvTimeout(t *testing.T) {
	_, r := crossbeam.Bounded[int](4)

	start := time.Now()
	if _, err := r.RecvTimeout(10 * time.Millisecond); !errors.Is(err, crossbeam.ErrTimeout) {
		t.Fatalf("RecvTimeout on empty: got %v, want ErrTimeout", err)
	}
	if time.Since(start) < 10*time.Millisecond {
		t.Fatal("RecvTimeout returned before the deadline")
	}
}

// =============================================================================
// Unbounded Flavor
// =============================================================================

// TestUnboundedBasic tests that sends never report full.
func TestUnboundedBasic(t *testing.T) {
	s, r := crossbeam.Unbounded[int]()

	if _, ok := s.Capacity(); ok {
		t.Fatal("Capacity: got ok, want no bound")
	}
	if s.IsFull() {
		t.Fatal("IsFull on unbounded: got true, want false")
	}

	// Push well past one segment to exercise segment linking
	const n = 1000
	for i := range n {
		if err := s.TrySend(i); err != nil {
			t.Fatalf("TrySend(%d): %v", i, err)
		}
	}
	if s.Len() != n {
		t.Fatalf("Len: got %d, want %d", s.Len(), n)
	}

	for i := range n {
		v, err := r.TryRecv()
		if err != nil {
			t.Fatalf("TryRecv(%d): %v", i, err)
		}
		if v != i {
			t.Fatalf("TryRecv(%d): got %d, want %d", i, v, i)
		}
	}
	if _, err := r.TryRecv(); !errors.Is(err, crossbeam.ErrWouldBlock) {
		t.Fatalf("TryRecv on empty: got %v, want ErrWouldBlock", err)
	}
}

// TestUnboundedDisconnected verifies both receive variants report the
// disconnect after the sender drops.
func TestUnboundedDisconnected(t *testing.T) {
	s, r := crossbeam.Unbounded[int]()
	s.Close()

	if _, err := r.TryRecv(); !errors.Is(err, crossbeam.ErrDisconnected) {
		t.Fatalf("TryRecv: got %v, want ErrDisconnected", err)
	}
	if _, err := r.Recv(); !errors.Is(err, crossbeam.ErrDisconnected) {
		t.Fatalf("Recv: got %v, want ErrDisconnected", err)
	}
}

// TestUnboundedDrainAfterClose verifies buffered values outlive the
// disconnect.
func TestUnboundedDrainAfterClose(t *testing.T) {
	s, r := crossbeam.Unbounded[int]()

	for i := range 100 {
		if err := s.TrySend(i); err != nil {
			t.Fatalf("TrySend(%d): %v", i, err)
		}
	}
	s.Close()

	for i := range 100 {
		v, err := r.Recv()
		if err != nil {
			t.Fatalf("Recv(%d) after close: %v", i, err)
		}
		if v != i {
			t.Fatalf("Recv(%d): got %d, want %d", i, v, i)
		}
	}
	if _, err := r.Recv(); !errors.Is(err, crossbeam.ErrDisconnected) {
		t.Fatalf("Recv on drained: got %v, want ErrDisconnected", err)
	}
}

// =============================================================================
// Rendezvous Flavor
// =============================================================================

// TestRendezvousTry verifies that non-blocking operations need a waiting
// peer.
func TestRendezvousTry(t *testing.T) {
	s, r := crossbeam.Bounded[int](0)

	if c, ok := s.Capacity(); !ok || c != 0 {
		t.Fatalf("Capacity: got (%d, %v), want (0, true)", c, ok)
	}
	if err := s.TrySend(1); !errors.Is(err, crossbeam.ErrWouldBlock) {
		t.Fatalf("TrySend without receiver: got %v, want ErrWouldBlock", err)
	}
	if _, err := r.TryRecv(); !errors.Is(err, crossbeam.ErrWouldBlock) {
		t.Fatalf("TryRecv without sender: got %v, want ErrWouldBlock", err)
	}
	if !s.IsFull() {
		t.Fatal("IsFull without waiting receiver: got false, want true")
	}
	if !r.IsEmpty() {
		t.Fatal("IsEmpty without waiting sender: got false, want true")
	}
	if s.Len() != 0 || r.Len() != 0 {
		t.Fatalf("Len: got (%d, %d), want (0, 0)", s.Len(), r.Len())
	}
}

// TestRendezvousHandshake verifies a blocked receiver completes once a
// sender arrives.
func TestRendezvousHandshake(t *testing.T) {
	if crossbeam.RaceEnabled {
		t.Skip("skip: concurrent access over atomix primitives")
	}
	s, r := crossbeam.Bounded[int](0)

	go func() {
		time.Sleep(10 * time.Millisecond)
		if err := s.Send(7); err != nil {
			t.Errorf("Send: %v", err)
		}
	}()

	v, err := r.Recv()
	if err != nil || v != 7 {
		t.Fatalf("Recv: got (%d, %v), want (7, nil)", v, err)
	}
}

// TestRendezvousSendTimeout verifies a timed-out offer keeps its value.
func TestRendezvousSendTimeout(t *testing.T) {
	s, r := crossbeam.Bounded[int](0)

	if err := s.SendTimeout(1, 10*time.Millisecond); !errors.Is(err, crossbeam.ErrTimeout) {
		t.Fatalf("SendTimeout without receiver: got %v, want ErrTimeout", err)
	}

	// The cancelled offer left no residue a receiver could claim
	if _, err := r.TryRecv(); !errors.Is(err, crossbeam.ErrWouldBlock) {
		t.Fatalf("TryRecv after timed-out offer: got %v, want ErrWouldBlock", err)
	}
}

// TestRendezvousClosePendingOffer verifies close hands pending offers back
// to their owners.
func TestRendezvousClosePendingOffer(t *testing.T) {
	if crossbeam.RaceEnabled {
		t.Skip("skip: concurrent access over atomix primitives")
	}
	s, r := crossbeam.Bounded[int](0)

	done := make(chan error, 1)
	go func() {
		done <- s.Send(42)
	}()

	time.Sleep(10 * time.Millisecond)
	r.Close()

	if err := <-done; !errors.Is(err, crossbeam.ErrDisconnected) {
		t.Fatalf("Send against closing receiver: got %v, want ErrDisconnected", err)
	}
}

// =============================================================================
// Lifecycle
// =============================================================================

// TestCloseIdempotent verifies repeated closes are no-ops.
func TestCloseIdempotent(t *testing.T) {
	s, r := crossbeam.Bounded[int](2)

	if err := s.TrySend(1); err != nil {
		t.Fatalf("TrySend: %v", err)
	}
	s.Close()
	s.Close()
	s.Close()

	if v, err := r.TryRecv(); err != nil || v != 1 {
		t.Fatalf("TryRecv after double close: got (%d, %v), want (1, nil)", v, err)
	}
	r.Close()
	r.Close()
}

// TestCloneKeepsChannelAlive verifies the per-side reference counting.
func TestCloneKeepsChannelAlive(t *testing.T) {
	s, r := crossbeam.Bounded[int](4)
	s2 := s.Clone()

	s.Close()
	if r.IsDisconnected() {
		t.Fatal("IsDisconnected with a live clone: got true, want false")
	}
	if err := s2.TrySend(5); err != nil {
		t.Fatalf("TrySend on clone: %v", err)
	}

	s2.Close()
	if !r.IsDisconnected() {
		t.Fatal("IsDisconnected after last clone closed: got false, want true")
	}
	if v, err := r.TryRecv(); err != nil || v != 5 {
		t.Fatalf("TryRecv: got (%d, %v), want (5, nil)", v, err)
	}
	if _, err := r.TryRecv(); !errors.Is(err, crossbeam.ErrDisconnected) {
		t.Fatalf("TryRecv on drained: got %v, want ErrDisconnected", err)
	}
}

// TestReceiverCloseDisconnectsSenders verifies the symmetric direction.
func TestReceiverCloseDisconnectsSenders(t *testing.T) {
	s, r := crossbeam.Bounded[int](4)
	r.Close()

	if err := s.TrySend(1); !errors.Is(err, crossbeam.ErrDisconnected) {
		t.Fatalf("TrySend with no receivers: got %v, want ErrDisconnected", err)
	}
	if err := s.Send(1); !errors.Is(err, crossbeam.ErrDisconnected) {
		t.Fatalf("Send with no receivers: got %v, want ErrDisconnected", err)
	}
}

// TestClosedHandle verifies a retired endpoint refuses further use.
func TestClosedHandle(t *testing.T) {
	s, r := crossbeam.Bounded[int](4)
	s2 := s.Clone()
	s.Close()

	if err := s.TrySend(1); !errors.Is(err, crossbeam.ErrDisconnected) {
		t.Fatalf("TrySend on closed handle: got %v, want ErrDisconnected", err)
	}
	// The channel itself is still connected through the clone
	if err := s2.TrySend(1); err != nil {
		t.Fatalf("TrySend on live clone: %v", err)
	}
	if v, err := r.TryRecv(); err != nil || v != 1 {
		t.Fatalf("TryRecv: got (%d, %v), want (1, nil)", v, err)
	}
}

// TestDisconnectedSticky verifies disconnection never heals.
func TestDisconnectedSticky(t *testing.T) {
	s, r := crossbeam.Unbounded[int]()
	s.Close()

	for range 3 {
		if !r.IsDisconnected() {
			t.Fatal("IsDisconnected: got false, want true")
		}
		if _, err := r.TryRecv(); !errors.Is(err, crossbeam.ErrDisconnected) {
			t.Fatalf("TryRecv: got %v, want ErrDisconnected", err)
		}
	}
}

// TestTryRoundTrip verifies a send immediately followed by a receive on an
// idle channel returns the same value, for both buffered flavors.
func TestTryRoundTrip(t *testing.T) {
	sb, rb := crossbeam.Bounded[int](8)
	if err := sb.TrySend(31); err != nil {
		t.Fatalf("bounded TrySend: %v", err)
	}
	if v, err := rb.TryRecv(); err != nil || v != 31 {
		t.Fatalf("bounded TryRecv: got (%d, %v), want (31, nil)", v, err)
	}

	su, ru := crossbeam.Unbounded[int]()
	if err := su.TrySend(41); err != nil {
		t.Fatalf("unbounded TrySend: %v", err)
	}
	if v, err := ru.TryRecv(); err != nil || v != 41 {
		t.Fatalf("unbounded TryRecv: got (%d, %v), want (41, nil)", v, err)
	}
}

// TestNegativeCapacityPanics verifies constructor validation.
func TestNegativeCapacityPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Bounded(-1): expected panic")
		}
	}()
	crossbeam.Bounded[int](-1)
}

// TestErrorClassification verifies the iox-backed helpers.
func TestErrorClassification(t *testing.T) {
	if !crossbeam.IsWouldBlock(crossbeam.ErrWouldBlock) {
		t.Fatal("IsWouldBlock(ErrWouldBlock): got false, want true")
	}
	if !crossbeam.IsTimeout(crossbeam.ErrTimeout) {
		t.Fatal("IsTimeout(ErrTimeout): got false, want true")
	}
	if !crossbeam.IsDisconnected(crossbeam.ErrDisconnected) {
		t.Fatal("IsDisconnected(ErrDisconnected): got false, want true")
	}
	if crossbeam.IsWouldBlock(crossbeam.ErrDisconnected) {
		t.Fatal("IsWouldBlock(ErrDisconnected): got true, want false")
	}
	if !crossbeam.IsNonFailure(nil) {
		t.Fatal("IsNonFailure(nil): got false, want true")
	}
}
