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
	"net"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"golang.org/x/text/encoding"
)

// packetWriter is the part of *net.UDPConn used to deliver packets
type packetWriter interface {
	WriteToUDP(b []byte, addr *net.UDPAddr) (int, error)
	Close() error
}

// transport owns the queue, the socket and the sender goroutine
//
// transport is shared by the client and all of its clones.
type transport struct {
	options  ClientOptions
	resolver Resolver
	conn     packetWriter
	handler  ErrorHandler

	queue   *queue
	packet  *packet
	encoder *encoding.Encoder

	bufPool chan []byte

	messagesQueued  *atomic.Int64
	messagesDropped *atomic.Int64
	packetsSent     *atomic.Int64
	packetsLost     *atomic.Int64
	bytesSent       *atomic.Int64
	errors          *atomic.Int64

	lostPacketsPeriod     *atomic.Int64
	droppedMessagesPeriod *atomic.Int64

	shutdown   chan struct{}
	shutdownWg sync.WaitGroup
	done       chan struct{}
	abort      chan struct{}
	aborted    *atomic.Bool
	closeOnce  sync.Once
}

// newTransport starts background processing, options should have defaults applied
func newTransport(options ClientOptions, resolver Resolver, conn packetWriter) *transport {
	t := &transport{
		options:  options,
		resolver: resolver,
		conn:     conn,
		handler:  options.ErrorHandler,

		queue:  newQueue(options.QueueCapacity),
		packet: newPacket(options.MaxPacketSize),

		bufPool: make(chan []byte, options.BufPoolCapacity),

		messagesQueued:  atomic.NewInt64(0),
		messagesDropped: atomic.NewInt64(0),
		packetsSent:     atomic.NewInt64(0),
		packetsLost:     atomic.NewInt64(0),
		bytesSent:       atomic.NewInt64(0),
		errors:          atomic.NewInt64(0),

		lostPacketsPeriod:     atomic.NewInt64(0),
		droppedMessagesPeriod: atomic.NewInt64(0),

		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		abort:    make(chan struct{}),
		aborted:  atomic.NewBool(false),
	}

	if options.Encoding != nil {
		t.encoder = options.Encoding.NewEncoder()
	}

	go t.sendLoop()

	if options.ReportInterval > 0 {
		t.shutdownWg.Add(1)
		go t.reportLoop()
	}

	return t
}

// getBuf returns empty buffer to format metric line into
func (t *transport) getBuf() []byte {
	select {
	case buf := <-t.bufPool:
		return buf[:0]
	default:
		return make([]byte, 0, 64)
	}
}

// putBuf returns line buffer to the pool once its content was copied
func (t *transport) putBuf(buf []byte) {
	if cap(buf) > t.options.MaxPacketSize {
		return
	}

	select {
	case t.bufPool <- buf:
	default:
		// pool is full, let GC handle the buf
	}
}

// enqueue passes formatted line to the sender, it never blocks
func (t *transport) enqueue(line []byte) {
	if err := t.queue.push(line); err != nil {
		t.drop(1)
		t.report(err)
		return
	}

	t.messagesQueued.Inc()
}

func (t *transport) drop(n int64) {
	t.messagesDropped.Add(n)
	t.droppedMessagesPeriod.Add(n)
}

func (t *transport) report(err error) {
	t.errors.Inc()
	t.handler.Handle(err)
}

// pack adds line to the packet, flushing packet before and/or after that
func (t *transport) pack(line []byte) {
	data := line

	if t.encoder != nil {
		encoded, err := t.encoder.Bytes(line)
		if err != nil {
			t.putBuf(line)
			t.drop(1)
			t.report(errors.Wrapf(err, "statsd: failed to encode %q", line))
			return
		}
		data = encoded
	}

	if !t.packet.fits(len(data)) {
		t.flush()
	}

	t.packet.add(data, time.Now(), t.options.FlushInterval)
	t.putBuf(line)

	if t.packet.shouldFlush(t.options.FlushPolicy, t.queue.ready()) {
		t.flush()
	}
}

// flush sends the packet as single datagram and resets it
func (t *transport) flush() {
	if t.packet.empty() {
		return
	}
	defer t.packet.reset()

	if t.aborted.Load() {
		t.lost()
		return
	}

	addr, err := t.resolver.Resolve()
	if err != nil {
		t.lost()
		t.report(err)
		return
	}

	requested := len(t.packet.buf)

	sent, err := t.conn.WriteToUDP(t.packet.buf, addr)
	if err != nil {
		t.lost()
		if !t.aborted.Load() {
			t.report(errors.Wrapf(err, "statsd: error writing to %s", addr))
		}
		return
	}

	if sent != requested {
		t.lost()
		t.report(&PartialSendError{Addr: addr, Requested: requested, Sent: sent})
		return
	}

	t.packetsSent.Inc()
	t.bytesSent.Add(int64(sent))
}

func (t *transport) lost() {
	t.packetsLost.Inc()
	t.lostPacketsPeriod.Inc()
}

// close stops accepting metrics, waits up to ShutdownTimeout for the sender
// to send what is queued and closes the socket
func (t *transport) close() {
	t.closeOnce.Do(func() {
		t.queue.close()

		timer := time.NewTimer(t.options.ShutdownTimeout)
		select {
		case <-t.done:
		case <-timer.C:
			t.aborted.Store(true)
			close(t.abort)
			t.report(ErrShutdownTimeout)
		}
		timer.Stop()

		close(t.shutdown)
		t.shutdownWg.Wait()

		if err := t.conn.Close(); err != nil {
			t.report(errors.Wrap(err, "statsd: error closing socket"))
		}

		if n := t.queue.discard(); n > 0 {
			t.drop(int64(n))
		}
	})
}

// Stats are counters of the client lifetime
type Stats struct {
	// MessagesQueued is number of metric lines accepted into the queue
	MessagesQueued int64
	// MessagesDropped is number of metric lines which never made it into a packet
	MessagesDropped int64
	// PacketsSent is number of packets written to the socket
	PacketsSent int64
	// PacketsLost is number of packets which failed to be sent
	PacketsLost int64
	// BytesSent is total size of PacketsSent
	BytesSent int64
	// Errors is number of errors passed to ErrorHandler
	Errors int64
	// QueueLength is number of metric lines waiting to be packed
	QueueLength int
}

func (t *transport) stats() Stats {
	return Stats{
		MessagesQueued:  t.messagesQueued.Load(),
		MessagesDropped: t.messagesDropped.Load(),
		PacketsSent:     t.packetsSent.Load(),
		PacketsLost:     t.packetsLost.Load(),
		BytesSent:       t.bytesSent.Load(),
		Errors:          t.errors.Load(),
		QueueLength:     t.queue.len(),
	}
}
