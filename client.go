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
	"log"
	"math/rand"
	"net"
	"os"
	"time"

	"github.com/pkg/errors"
)

// Client implements statsd client
//
// All the metric methods are safe for concurrent use, they never block
// on network and never panic: delivery problems are passed to ErrorHandler.
type Client struct {
	formatter

	trans *transport
}

// NewClient creates new statsd client and starts background processing
//
// Client sends metrics to statsd server at addr ("host:port"). Unless
// VolatileAddress is set, addr is resolved right away and NewClient fails
// if it can't be resolved.
//
// Client settings could be controlled via functions of type Option
func NewClient(addr string, options ...Option) (*Client, error) {
	opts, err := buildOptions(addr, options)
	if err != nil {
		return nil, err
	}

	var resolver Resolver

	if opts.VolatileAddress {
		resolver = NewVolatileResolver(addr)
	} else {
		resolver, err = NewStaticResolver(addr)
		if err != nil {
			return nil, errors.Wrap(err, "statsd: failed to lookup statsd host")
		}
	}

	return newClient(opts, resolver)
}

// NewClientWithResolver creates new statsd client which asks resolver for
// the statsd server address before sending every packet
func NewClientWithResolver(resolver Resolver, options ...Option) (*Client, error) {
	opts, err := buildOptions("", options)
	if err != nil {
		return nil, err
	}

	return newClient(opts, resolver)
}

func buildOptions(addr string, options []Option) (ClientOptions, error) {
	opts := ClientOptions{
		Addr:            addr,
		MetricPrefix:    DefaultMetricPrefix,
		MaxPacketSize:   DefaultMaxPacketSize,
		FlushInterval:   DefaultFlushInterval,
		ShutdownTimeout: DefaultShutdownTimeout,
		ReportInterval:  DefaultReportInterval,
		Logger:          log.New(os.Stderr, DefaultLogPrefix, log.LstdFlags),
		ErrorHandler:    NoopErrorHandler,
		BufPoolCapacity: DefaultBufPoolCapacity,
		QueueCapacity:   DefaultQueueCapacity,
		TagFormat:       TagFormatDatadog,
	}

	for _, option := range options {
		option(&opts)
	}

	if opts.MaxPacketSize <= 0 {
		return opts, errors.Errorf("statsd: invalid max packet size %d", opts.MaxPacketSize)
	}

	if opts.QueueCapacity < 0 {
		return opts, errors.Errorf("statsd: invalid queue capacity %d", opts.QueueCapacity)
	}

	if opts.FlushInterval <= 0 {
		opts.FlushInterval = DefaultFlushInterval
	}

	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}

	if opts.BufPoolCapacity < 0 {
		opts.BufPoolCapacity = 0
	}

	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr, DefaultLogPrefix, log.LstdFlags)
	}

	if opts.ErrorHandler == nil {
		opts.ErrorHandler = NoopErrorHandler
	}

	if opts.TagFormat == nil {
		opts.TagFormat = TagFormatDatadog
	}

	return opts, nil
}

func newClient(opts ClientOptions, resolver Resolver) (*Client, error) {
	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, errors.Wrap(err, "statsd: failed to open UDP socket")
	}

	return newClientWithConn(opts, resolver, conn), nil
}

func newClientWithConn(opts ClientOptions, resolver Resolver, conn packetWriter) *Client {
	return &Client{
		formatter: formatter{
			prefix:      normalizePrefix(opts.MetricPrefix),
			tagFormat:   opts.TagFormat,
			defaultTags: opts.DefaultTags,
		},
		trans: newTransport(opts, resolver, conn),
	}
}

// CloneWithPrefix returns a clone of the original client with different metricPrefix.
//
// Clones share the queue and the socket with the original client,
// closing any of them stops all the clones.
func (c *Client) CloneWithPrefix(prefix string) *Client {
	clone := *c
	clone.prefix = normalizePrefix(prefix)

	return &clone
}

// CloneWithPrefixExtension returns a clone of the original client with metricPrefix
// extended with extension
func (c *Client) CloneWithPrefixExtension(extension string) *Client {
	return c.CloneWithPrefix(c.prefix + extension)
}

// Close stops the client
//
// Close waits up to ShutdownTimeout for queued metrics to be sent, then
// closes the socket. Errors are passed to ErrorHandler, Close always returns nil.
func (c *Client) Close() error {
	c.trans.close()

	return nil
}

// GetLostPackets returns number of packets lost during client lifecycle
func (c *Client) GetLostPackets() int64 {
	return c.trans.packetsLost.Load()
}

// Stats returns client counters
func (c *Client) Stats() Stats {
	return c.trans.stats()
}

// sampled decides whether metric with sample rate should be sent
func sampled(rate float64) bool {
	return rate >= 1 || (rate > 0 && rand.Float64() < rate)
}

// Incr increments a counter metric
//
// Often used to note a particular event
func (c *Client) Incr(stat string, count int64, tags ...Tag) {
	if count != 0 {
		c.trans.enqueue(c.appendInt(c.trans.getBuf(), stat, "", count, "c", 1, tags))
	}
}

// Decr decrements a counter metric
//
// Often used to note a particular event
func (c *Client) Decr(stat string, count int64, tags ...Tag) {
	c.Incr(stat, -count, tags...)
}

// Count adjusts a counter by count, zero count is sent as well
func (c *Client) Count(stat string, count int64, tags ...Tag) {
	c.trans.enqueue(c.appendInt(c.trans.getBuf(), stat, "", count, "c", 1, tags))
}

// CountSampled adjusts a counter, sending only rate share of the calls
//
// Server scales received value back by 1/rate.
func (c *Client) CountSampled(stat string, count int64, rate float64, tags ...Tag) {
	if sampled(rate) {
		c.trans.enqueue(c.appendInt(c.trans.getBuf(), stat, "", count, "c", rate, tags))
	}
}

// FIncr increments a counter metric by a floating point value
func (c *Client) FIncr(stat string, count float64, tags ...Tag) {
	if count != 0 {
		c.trans.enqueue(c.appendFloat(c.trans.getBuf(), stat, "", count, "c", 1, tags))
	}
}

// FDecr decrements a counter metric by a floating point value
func (c *Client) FDecr(stat string, count float64, tags ...Tag) {
	c.FIncr(stat, -count, tags...)
}

// Timing tracks a duration event, the time delta must be given in milliseconds
func (c *Client) Timing(stat string, delta int64, tags ...Tag) {
	c.trans.enqueue(c.appendInt(c.trans.getBuf(), stat, "", delta, "ms", 1, tags))
}

// TimingSampled tracks a duration event in milliseconds, sending only rate share of the calls
func (c *Client) TimingSampled(stat string, delta int64, rate float64, tags ...Tag) {
	if sampled(rate) {
		c.trans.enqueue(c.appendInt(c.trans.getBuf(), stat, "", delta, "ms", rate, tags))
	}
}

// PrecisionTiming track a duration event, the time delta has to be a duration
func (c *Client) PrecisionTiming(stat string, delta time.Duration, tags ...Tag) {
	c.trans.enqueue(c.appendFloat(c.trans.getBuf(), stat, "", float64(delta)/float64(time.Millisecond), "ms", 1, tags))
}

// TimeSince tracks time in milliseconds elapsed since start
func (c *Client) TimeSince(stat string, start time.Time, tags ...Tag) {
	elapsed := time.Since(start)
	if elapsed < 0 {
		elapsed = 0
	}

	c.Timing(stat, int64(elapsed/time.Millisecond), tags...)
}

// Gauge sets or updates constant value for the interval
//
// Gauges are a constant data type. They are not subject to averaging,
// and they don’t change unless you change them. That is, once you set a gauge value,
// it will be a flat line on the graph until you change it again. Due to the
// underlying protocol, you can't explicitly set a gauge to a negative number without
// first setting it to zero.
func (c *Client) Gauge(stat string, value int64, tags ...Tag) {
	if value < 0 {
		c.trans.enqueue(c.appendInt(c.trans.getBuf(), stat, "", 0, "g", 1, tags))
	}

	c.trans.enqueue(c.appendInt(c.trans.getBuf(), stat, "", value, "g", 1, tags))
}

// GaugeDelta sends a change for a gauge
func (c *Client) GaugeDelta(stat string, value int64, tags ...Tag) {
	c.trans.enqueue(c.appendInt(c.trans.getBuf(), stat, deltaSign(value < 0), value, "g", 1, tags))
}

// FGauge sends a floating point value for a gauge
func (c *Client) FGauge(stat string, value float64, tags ...Tag) {
	if value < 0 {
		c.trans.enqueue(c.appendInt(c.trans.getBuf(), stat, "", 0, "g", 1, tags))
	}

	c.trans.enqueue(c.appendFloat(c.trans.getBuf(), stat, "", value, "g", 1, tags))
}

// FGaugeDelta sends a floating point change for a gauge
func (c *Client) FGaugeDelta(stat string, value float64, tags ...Tag) {
	c.trans.enqueue(c.appendFloat(c.trans.getBuf(), stat, deltaSign(value < 0), value, "g", 1, tags))
}

// Histogram records a value to be tracked with average, maximum and percentiles
func (c *Client) Histogram(stat string, value int64, tags ...Tag) {
	c.trans.enqueue(c.appendInt(c.trans.getBuf(), stat, "", value, "h", 1, tags))
}

// FHistogram records a floating point value for the histogram
func (c *Client) FHistogram(stat string, value float64, tags ...Tag) {
	c.trans.enqueue(c.appendFloat(c.trans.getBuf(), stat, "", value, "h", 1, tags))
}

// SetAdd adds unique element to a set
func (c *Client) SetAdd(stat string, value string, tags ...Tag) {
	c.trans.enqueue(c.appendString(c.trans.getBuf(), stat, value, "s", tags))
}

// Event records a DogStatsD event
//
// Invalid event (without title or text) is reported to ErrorHandler.
func (c *Client) Event(e Event, tags ...Tag) {
	buf, err := c.appendEvent(c.trans.getBuf(), &e, tags)
	if err != nil {
		c.trans.putBuf(buf)
		c.trans.drop(1)
		c.trans.report(err)
		return
	}

	c.trans.enqueue(buf)
}

// ServiceCheck records a DogStatsD service check run
//
// Invalid service check is reported to ErrorHandler.
func (c *Client) ServiceCheck(sc ServiceCheck) {
	buf, err := c.appendServiceCheck(c.trans.getBuf(), &sc)
	if err != nil {
		c.trans.putBuf(buf)
		c.trans.drop(1)
		c.trans.report(err)
		return
	}

	c.trans.enqueue(buf)
}

// Send queues line as is, without prefix or tags
//
// line might contain several metrics separated with '\n'.
func (c *Client) Send(line string) {
	if line == "" {
		return
	}

	buf := c.trans.getBuf()
	c.trans.enqueue(append(buf, line...))
}
