// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !race

// This file contains examples that drive the lock-free data paths from
// multiple goroutines. The race detector cannot observe the happens-before
// edges the sequence stamps establish and reports false positives, so the
// examples are excluded from race testing.

package crossbeam_test

import (
	"fmt"
	"sync"
	"time"

	"github.com/malbertoni/crossbeam"
)

// ExampleBounded demonstrates basic bounded channel usage.
func ExampleBounded() {
	s, r := crossbeam.Bounded[int](4)

	for i := 1; i <= 4; i++ {
		s.TrySend(i * 10)
	}
	if err := s.TrySend(50); crossbeam.IsWouldBlock(err) {
		fmt.Println("full")
	}

	for range 4 {
		v, _ := r.TryRecv()
		fmt.Println(v)
	}

	// Output:
	// full
	// 10
	// 20
	// 30
	// 40
}

// ExampleUnbounded demonstrates a fan-in where sends never block.
func ExampleUnbounded() {
	s, r := crossbeam.Unbounded[string]()

	var wg sync.WaitGroup
	for p := range 3 {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			snd := s.Clone()
			defer snd.Close()
			snd.Send(fmt.Sprintf("msg from producer %d", id))
		}(p)
	}
	wg.Wait()
	s.Close()

	for {
		msg, err := r.Recv()
		if err != nil {
			break // drained and disconnected
		}
		fmt.Println(msg)
	}

	// Unordered output:
	// msg from producer 0
	// msg from producer 1
	// msg from producer 2
}

// ExampleBounded_rendezvous demonstrates the zero-capacity handshake.
func ExampleBounded_rendezvous() {
	s, r := crossbeam.Bounded[int](0)

	go func() {
		time.Sleep(time.Millisecond)
		s.Send(7)
	}()

	v, _ := r.Recv()
	fmt.Println(v)

	// Output:
	// 7
}

// ExampleSelect demonstrates waiting on several operations at once.
func ExampleSelect() {
	s1, r1 := crossbeam.Bounded[int](1)
	_, r2 := crossbeam.Bounded[int](1)
	s1.TrySend(42)

	var v1, v2 int
	sel := crossbeam.NewSelect(
		crossbeam.RecvCase(r1, &v1),
		crossbeam.RecvCase(r2, &v2),
	)

	idx, err := sel.Wait()
	fmt.Println(idx, v1, err)

	// Output:
	// 0 42 <nil>
}
