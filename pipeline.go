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

// Pipeline collects metrics and sends them together on Flush
//
// Lines are joined into packets of at most mtu bytes, every packet
// enters client queue as a single message. Pipeline is not safe for
// concurrent use, once flushed it ignores all the calls.
type Pipeline struct {
	client *Client
	mtu    int
	lines  [][]byte
	closed bool
}

// Pipeline starts new pipeline with DefaultPipelineMTU
func (c *Client) Pipeline() *Pipeline {
	return c.PipelineMTU(DefaultPipelineMTU)
}

// PipelineMTU starts new pipeline which builds packets of at most mtu bytes
//
// mtu is capped by MaxPacketSize of the client.
func (c *Client) PipelineMTU(mtu int) *Pipeline {
	if mtu <= 0 || mtu > c.trans.options.MaxPacketSize {
		mtu = c.trans.options.MaxPacketSize
	}

	return &Pipeline{client: c, mtu: mtu}
}

func (p *Pipeline) add(line []byte) *Pipeline {
	p.lines = append(p.lines, line)
	return p
}

// Incr increments a counter metric
func (p *Pipeline) Incr(stat string, count int64, tags ...Tag) *Pipeline {
	return p.CountSampled(stat, count, 1, tags...)
}

// Decr decrements a counter metric
func (p *Pipeline) Decr(stat string, count int64, tags ...Tag) *Pipeline {
	return p.CountSampled(stat, -count, 1, tags...)
}

// CountSampled adjusts a counter, line is annotated with sample rate
//
// Unlike Client.CountSampled, pipeline doesn't drop any calls.
func (p *Pipeline) CountSampled(stat string, count int64, rate float64, tags ...Tag) *Pipeline {
	if p.closed {
		return p
	}

	return p.add(p.client.appendInt(nil, stat, "", count, "c", rate, tags))
}

// Gauge sets constant value for the gauge
func (p *Pipeline) Gauge(stat string, value int64, tags ...Tag) *Pipeline {
	if p.closed {
		return p
	}

	if value < 0 {
		p.add(p.client.appendInt(nil, stat, "", 0, "g", 1, tags))
	}

	return p.add(p.client.appendInt(nil, stat, "", value, "g", 1, tags))
}

// FGauge sets floating point value for the gauge
func (p *Pipeline) FGauge(stat string, value float64, tags ...Tag) *Pipeline {
	if p.closed {
		return p
	}

	if value < 0 {
		p.add(p.client.appendInt(nil, stat, "", 0, "g", 1, tags))
	}

	return p.add(p.client.appendFloat(nil, stat, "", value, "g", 1, tags))
}

// GaugeDelta sends a change for a gauge
func (p *Pipeline) GaugeDelta(stat string, value int64, tags ...Tag) *Pipeline {
	if p.closed {
		return p
	}

	return p.add(p.client.appendInt(nil, stat, deltaSign(value < 0), value, "g", 1, tags))
}

// FGaugeDelta sends a floating point change for a gauge
func (p *Pipeline) FGaugeDelta(stat string, value float64, tags ...Tag) *Pipeline {
	if p.closed {
		return p
	}

	return p.add(p.client.appendFloat(nil, stat, deltaSign(value < 0), value, "g", 1, tags))
}

// SetAdd adds unique element to a set
func (p *Pipeline) SetAdd(stat string, value string, tags ...Tag) *Pipeline {
	if p.closed {
		return p
	}

	return p.add(p.client.appendString(nil, stat, value, "s", tags))
}

// Timing tracks a duration event in milliseconds
func (p *Pipeline) Timing(stat string, delta int64, tags ...Tag) *Pipeline {
	return p.TimingSampled(stat, delta, 1, tags...)
}

// TimingSampled tracks a duration event in milliseconds annotated with sample rate
func (p *Pipeline) TimingSampled(stat string, delta int64, rate float64, tags ...Tag) *Pipeline {
	if p.closed {
		return p
	}

	return p.add(p.client.appendInt(nil, stat, "", delta, "ms", rate, tags))
}

// TimeSince tracks time in milliseconds elapsed since start
func (p *Pipeline) TimeSince(stat string, start time.Time, tags ...Tag) *Pipeline {
	elapsed := time.Since(start)
	if elapsed < 0 {
		elapsed = 0
	}

	return p.Timing(stat, int64(elapsed/time.Millisecond), tags...)
}

// Flush queues collected metrics and closes the pipeline
func (p *Pipeline) Flush() {
	if p.closed {
		return
	}
	p.closed = true

	for _, packet := range p.concatenate() {
		p.client.trans.enqueue(packet)
	}

	p.lines = nil
}

// concatenate joins lines with '\n' into chunks of at most mtu bytes
//
// Line longer than mtu forms chunk of its own.
func (p *Pipeline) concatenate() [][]byte {
	var (
		chunks [][]byte
		chunk  []byte
	)

	for _, line := range p.lines {
		if len(chunk) > 0 && len(chunk)+1+len(line) > p.mtu {
			chunks = append(chunks, chunk)
			chunk = nil
		}

		if len(chunk) > 0 {
			chunk = append(chunk, '\n')
		}
		chunk = append(chunk, line...)
	}

	if len(chunk) > 0 {
		chunks = append(chunks, chunk)
	}

	return chunks
}
