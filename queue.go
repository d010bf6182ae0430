package statsd

/*

Copyright (c) 2017 Andrey Smirnov

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.

*/

import (
	"sync"
	"time"
)

// queue is FIFO of formatted metric lines
//
// Any number of goroutines push, single sender goroutine polls.
type queue struct {
	mu       sync.Mutex
	items    [][]byte
	head     int
	capacity int
	closed   bool

	// notify holds a token when items were pushed since last poll
	notify chan struct{}
	// done is closed by close()
	done chan struct{}
}

func newQueue(capacity int) *queue {
	return &queue{
		capacity: capacity,
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// push appends msg to the tail, it never blocks
//
// ErrQueueFull or ErrClientClosed is returned if msg was dropped.
func (q *queue) push(msg []byte) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClientClosed
	}
	if q.capacity > 0 && len(q.items)-q.head >= q.capacity {
		q.mu.Unlock()
		return ErrQueueFull
	}
	q.items = append(q.items, msg)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}

	return nil
}

// tryPop removes the head of the queue without waiting
func (q *queue) tryPop() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == len(q.items) {
		return nil, false
	}

	msg := q.items[q.head]
	q.items[q.head] = nil
	q.head++

	switch {
	case q.head == len(q.items):
		q.items = q.items[:0]
		q.head = 0
	case q.head >= 1024 && q.head*2 >= len(q.items):
		// reclaim space taken by popped items
		n := copy(q.items, q.items[q.head:])
		for i := n; i < len(q.items); i++ {
			q.items[i] = nil
		}
		q.items = q.items[:n]
		q.head = 0
	}

	return msg, true
}

// poll waits up to timeout for the next message
//
// Closed queue is not waited for: remaining items are returned right away,
// then poll reports false.
func (q *queue) poll(timeout time.Duration) ([]byte, bool) {
	if msg, ok := q.tryPop(); ok {
		return msg, true
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-q.notify:
			if msg, ok := q.tryPop(); ok {
				return msg, true
			}
		case <-q.done:
			return q.tryPop()
		case <-timer.C:
			return q.tryPop()
		}
	}
}

// ready reports whether next message is immediately available
func (q *queue) ready() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.head < len(q.items)
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items) - q.head
}

// drained reports whether queue is closed and nothing is left in it
func (q *queue) drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.closed && q.head == len(q.items)
}

// close stops accepting new messages and wakes up the poller
func (q *queue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.done)
	}
}

// discard drops everything left in the queue and returns number of dropped items
func (q *queue) discard() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := len(q.items) - q.head
	q.items = nil
	q.head = 0

	return n
}
