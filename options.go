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

	"golang.org/x/text/encoding"
)

// Default settings
const (
	DefaultMaxPacketSize   = 1500
	DefaultMetricPrefix    = ""
	DefaultFlushInterval   = 100 * time.Millisecond
	DefaultShutdownTimeout = 30 * time.Second
	DefaultReportInterval  = time.Minute
	DefaultLogPrefix       = "[STATSD] "
	DefaultBufPoolCapacity = 64
	DefaultQueueCapacity   = 0
	DefaultPipelineMTU     = 512
)

// FlushPolicy controls when a partially filled packet is sent while
// metrics keep arriving
type FlushPolicy int

// Flush policies
const (
	// FlushHalfFull sends the packet once it is more than half full and no
	// other metric is queued; smaller packets wait for FlushInterval
	FlushHalfFull FlushPolicy = iota
	// FlushWhenIdle sends the packet as soon as the queue is momentarily empty
	FlushWhenIdle
)

// SomeLogger defines logging interface that allows using 3rd party loggers
// (e.g. github.com/apex/log or go.uber.org/zap via package statsdlog) with this Statsd client.
type SomeLogger interface {
	Printf(fmt string, args ...interface{})
}

// ClientOptions are statsd client settings
type ClientOptions struct {
	// Addr is statsd server address in "host:port" format
	Addr string

	// MetricPrefix is metricPrefix to prepend to every metric being sent
	//
	// Prefix is separated from metric name with '.', which is added
	// if missing. If not set defaults to empty string
	MetricPrefix string

	// MaxPacketSize is maximum UDP packet size
	//
	// Safe value is 1432 bytes, if your network supports jumbo frames,
	// this value could be raised up to 8960 bytes
	MaxPacketSize int

	// FlushInterval is the longest time metric stays in an incomplete
	// packet; it is also how often sender wakes up to look for shutdown
	//
	// Default value is 100ms
	FlushInterval time.Duration

	// FlushPolicy controls sending of incomplete packets under load
	//
	// Default value is FlushHalfFull
	FlushPolicy FlushPolicy

	// ShutdownTimeout bounds Close: pending metrics which were not sent
	// by that time are dropped
	//
	// Default value is 30 seconds
	ShutdownTimeout time.Duration

	// VolatileAddress makes client resolve Addr before every packet
	//
	// Resolving is important to follow DNS changes, e.g. in
	// dynamic container environments like K8s where statsd server
	// instance might be relocated leading to new IP address.
	//
	// By default address is resolved once in NewClient
	VolatileAddress bool

	// ReportInterval instructs client to report number of packets lost
	// and metrics dropped each interval via Logger
	//
	// By default lost packets are reported every minute, setting to zero
	// disables reporting
	ReportInterval time.Duration

	// Logger is used by statsd client to report lost packets
	//
	// If not set, default logger to stderr with metricPrefix `[STATSD] ` is being used
	Logger SomeLogger

	// ErrorHandler receives every delivery error: failed writes, partial
	// writes, resolution and encoding failures, dropped metrics
	//
	// Handler is called from the sender goroutine and from goroutines
	// emitting metrics, so it should be safe for concurrent use.
	// By default errors are ignored
	ErrorHandler ErrorHandler

	// BufPoolCapacity controls size of the cache of metric line buffers
	//
	// Default value is DefaultBufPoolCapacity
	BufPoolCapacity int

	// QueueCapacity limits number of metrics waiting to be packed
	//
	// Metrics over the limit are dropped and reported with ErrQueueFull.
	// Default value is 0 which means queue is unbounded
	QueueCapacity int

	// Encoding is the character encoding of the packets
	//
	// Metric lines are built as UTF-8, if Encoding is set every line is
	// converted before packing. By default lines are sent as is
	Encoding encoding.Encoding

	// TagFormat controls formatting of StatsD tags
	//
	// If tags are not used, value of this setting isn't used.
	//
	// There are three predefined formats: for Datadog, InfluxDB and
	// Graphite, default format is Datadog tag format.
	TagFormat *TagFormat

	// DefaultTags is a list of tags to be applied to every metric
	DefaultTags []Tag
}

// Option is type for option transport
type Option func(c *ClientOptions)

// MetricPrefix is metricPrefix to prepend to every metric being sent
//
// Usually metrics are prefixed with app name, e.g. `app.`.
// To avoid providing this metricPrefix for every metric being collected,
// and to enable shared libraries to collect metric under app name,
// use MetricPrefix to set global metricPrefix for all the app metrics,
// e.g. `MetricPrefix("app")`.
//
// If not set defaults to empty string
func MetricPrefix(prefix string) Option {
	return func(c *ClientOptions) {
		c.MetricPrefix = prefix
	}
}

// MaxPacketSize control maximum UDP packet size
//
// Default value is DefaultMaxPacketSize
func MaxPacketSize(packetSize int) Option {
	return func(c *ClientOptions) {
		c.MaxPacketSize = packetSize
	}
}

// FlushInterval controls flushing incomplete UDP packets which makes
// sure metric is not delayed longer than FlushInterval
//
// Default value is 100ms
func FlushInterval(interval time.Duration) Option {
	return func(c *ClientOptions) {
		c.FlushInterval = interval
	}
}

// WithFlushPolicy controls sending of incomplete packets
//
// Default value is FlushHalfFull
func WithFlushPolicy(policy FlushPolicy) Option {
	return func(c *ClientOptions) {
		c.FlushPolicy = policy
	}
}

// ShutdownTimeout bounds time Close waits for pending metrics to be sent
//
// Default value is 30 seconds
func ShutdownTimeout(timeout time.Duration) Option {
	return func(c *ClientOptions) {
		c.ShutdownTimeout = timeout
	}
}

// VolatileAddress enables resolving statsd address before every packet
//
// By default address is resolved once
func VolatileAddress(volatile bool) Option {
	return func(c *ClientOptions) {
		c.VolatileAddress = volatile
	}
}

// ReportInterval instructs client to report number of packets lost
// each interval via Logger
//
// By default lost packets are reported every minute, setting to zero
// disables reporting
func ReportInterval(interval time.Duration) Option {
	return func(c *ClientOptions) {
		c.ReportInterval = interval
	}
}

// Logger is used by statsd client to report lost packets
//
// If not set, default logger to stderr with metricPrefix `[STATSD] ` is being used
func Logger(logger SomeLogger) Option {
	return func(c *ClientOptions) {
		c.Logger = logger
	}
}

// WithErrorHandler sets handler for delivery errors
//
// By default errors are ignored
func WithErrorHandler(handler ErrorHandler) Option {
	return func(c *ClientOptions) {
		c.ErrorHandler = handler
	}
}

// BufPoolCapacity controls size of pre-allocated buffer cache
//
// Default value is DefaultBufPoolCapacity
func BufPoolCapacity(capacity int) Option {
	return func(c *ClientOptions) {
		c.BufPoolCapacity = capacity
	}
}

// QueueCapacity limits number of queued metrics, zero means no limit
//
// Default value is DefaultQueueCapacity
func QueueCapacity(capacity int) Option {
	return func(c *ClientOptions) {
		c.QueueCapacity = capacity
	}
}

// Encoding sets character encoding of the packets
//
// By default metric lines are sent as UTF-8
func Encoding(enc encoding.Encoding) Option {
	return func(c *ClientOptions) {
		c.Encoding = enc
	}
}

// TagStyle controls formatting of StatsD tags
//
// There are three predefined formats: for Datadog, InfluxDB and Graphite,
// default format is Datadog tag format.
func TagStyle(style *TagFormat) Option {
	return func(c *ClientOptions) {
		c.TagFormat = style
	}
}

// DefaultTags defines a list of tags to be applied to every metric
func DefaultTags(tags ...Tag) Option {
	return func(c *ClientOptions) {
		c.DefaultTags = tags
	}
}
