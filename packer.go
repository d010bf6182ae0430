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

import "time"

// packet accumulates metric lines joined with '\n' up to capacity bytes
//
// packet is owned by the sender goroutine.
type packet struct {
	buf      []byte
	capacity int

	// deadline is when the oldest line in the packet should be sent
	deadline time.Time
}

func newPacket(capacity int) *packet {
	return &packet{
		buf:      make([]byte, 0, capacity),
		capacity: capacity,
	}
}

func (p *packet) empty() bool {
	return len(p.buf) == 0
}

// fits checks whether line of n bytes could be added without overflowing
//
// Empty packet accepts line of any size, oversized line is sent alone.
func (p *packet) fits(n int) bool {
	if len(p.buf) == 0 {
		return true
	}

	return len(p.buf)+1+n <= p.capacity
}

// add appends line to the packet, caller checks fits first
func (p *packet) add(line []byte, now time.Time, maxDelay time.Duration) {
	if len(p.buf) == 0 {
		p.deadline = now.Add(maxDelay)
	} else {
		p.buf = append(p.buf, '\n')
	}

	p.buf = append(p.buf, line...)
}

// shouldFlush decides whether packet is to be sent right after adding a line
//
// more reports whether another line is immediately available.
func (p *packet) shouldFlush(policy FlushPolicy, more bool) bool {
	if len(p.buf) >= p.capacity {
		return true
	}

	if more {
		return false
	}

	switch policy {
	case FlushWhenIdle:
		return true
	default:
		return len(p.buf) > p.capacity/2
	}
}

func (p *packet) reset() {
	if cap(p.buf) > 2*p.capacity {
		// oversized line was sent, don't keep its buffer around
		p.buf = make([]byte, 0, p.capacity)
		return
	}

	p.buf = p.buf[:0]
}
