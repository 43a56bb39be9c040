// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package crossbeam

import "code.hybscloud.com/atomix"

// flavor tags the queue engine behind a channel. Dispatch is a tagged
// switch rather than an interface so the non-blocking paths stay
// inlineable.
type flavor int32

const (
	flavorArray flavor = iota // bounded ring
	flavorList                // unbounded segmented list
	flavorZero                // zero-capacity rendezvous
)

// channel is the state shared by every endpoint of one channel: the
// flavor-specific queue plus the live endpoint counts. A channel is
// identified by its address, which is unique and stable for its lifetime.
//
// The channel disconnects when either count reaches zero; buffered values
// stay deliverable until drained. The struct itself is reclaimed by GC
// once the last endpoint drops, so the counts exist only to drive close
// propagation, not to manage memory.
type channel[T any] struct {
	senders   atomix.Int64
	receivers atomix.Int64
	flavor    flavor
	array     *arrayQueue[T]
	list      *listQueue[T]
	zero      *zeroQueue[T]
}

func (c *channel[T]) close() {
	switch c.flavor {
	case flavorArray:
		c.array.close()
	case flavorList:
		c.list.close()
	default:
		c.zero.close()
	}
}

func (c *channel[T]) isClosed() bool {
	switch c.flavor {
	case flavorArray:
		return c.array.isClosed()
	case flavorList:
		return c.list.isClosed()
	default:
		return c.zero.isClosed()
	}
}

func (c *channel[T]) len() int {
	switch c.flavor {
	case flavorArray:
		return c.array.len()
	case flavorList:
		return c.list.len()
	default:
		return 0
	}
}

// Unbounded creates a channel with no capacity bound. Sends never block.
func Unbounded[T any]() (*Sender[T], *Receiver[T]) {
	ch := &channel[T]{flavor: flavorList, list: newListQueue[T]()}
	return newSender(ch), newReceiver(ch)
}

// Bounded creates a channel holding at most capacity values. A capacity of
// zero yields the rendezvous flavor, where every send blocks until a
// receiver is ready to take the value. Panics if capacity is negative.
func Bounded[T any](capacity int) (*Sender[T], *Receiver[T]) {
	if capacity < 0 {
		panic("crossbeam: capacity must be >= 0")
	}
	ch := &channel[T]{}
	if capacity == 0 {
		ch.flavor = flavorZero
		ch.zero = newZeroQueue[T]()
	} else {
		ch.flavor = flavorArray
		ch.array = newArrayQueue[T](capacity)
	}
	return newSender(ch), newReceiver(ch)
}

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill cache line after 8-byte field.
type padShort [64 - 8]byte
