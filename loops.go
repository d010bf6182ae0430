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
	"time"
)

// sendLoop drains the queue into packets and delivers them over UDP
//
// sendLoop is the only goroutine touching the packet and the socket.
func (t *transport) sendLoop() {
	defer close(t.done)

	for {
		select {
		case <-t.abort:
			if !t.packet.empty() {
				// shutdown timed out, packed lines are never sent
				t.lost()
				t.packet.reset()
			}
			return
		default:
		}

		wait := t.options.FlushInterval
		if !t.packet.empty() {
			wait = time.Until(t.packet.deadline)
			if wait <= 0 {
				t.flush()
				continue
			}
		}

		line, ok := t.queue.poll(wait)
		if !ok {
			// nothing arrived in time: don't hold metrics any longer
			t.flush()

			if t.queue.drained() {
				return
			}

			continue
		}

		t.pack(line)
	}
}

// reportLoop reports periodically number of packets lost and metrics dropped
func (t *transport) reportLoop() {
	defer t.shutdownWg.Done()

	reportTicker := time.NewTicker(t.options.ReportInterval)
	defer reportTicker.Stop()

	for {
		select {
		case <-t.shutdown:
			return
		case <-reportTicker.C:
			lostPeriod := t.lostPacketsPeriod.Swap(0)
			if lostPeriod > 0 {
				t.options.Logger.Printf("%d packets lost", lostPeriod)
			}

			droppedPeriod := t.droppedMessagesPeriod.Swap(0)
			if droppedPeriod > 0 {
				t.options.Logger.Printf("%d metrics dropped", droppedPeriod)
			}
		}
	}
}
