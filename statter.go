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

// Statter is the metric emitting part of Client
//
// Libraries could accept Statter to allow NoopClient when metrics are disabled.
type Statter interface {
	Incr(stat string, count int64, tags ...Tag)
	Decr(stat string, count int64, tags ...Tag)
	Count(stat string, count int64, tags ...Tag)
	CountSampled(stat string, count int64, rate float64, tags ...Tag)
	FIncr(stat string, count float64, tags ...Tag)
	FDecr(stat string, count float64, tags ...Tag)
	Timing(stat string, delta int64, tags ...Tag)
	TimingSampled(stat string, delta int64, rate float64, tags ...Tag)
	PrecisionTiming(stat string, delta time.Duration, tags ...Tag)
	TimeSince(stat string, start time.Time, tags ...Tag)
	Gauge(stat string, value int64, tags ...Tag)
	GaugeDelta(stat string, value int64, tags ...Tag)
	FGauge(stat string, value float64, tags ...Tag)
	FGaugeDelta(stat string, value float64, tags ...Tag)
	Histogram(stat string, value int64, tags ...Tag)
	FHistogram(stat string, value float64, tags ...Tag)
	SetAdd(stat string, value string, tags ...Tag)
	Event(e Event, tags ...Tag)
	ServiceCheck(sc ServiceCheck)
	Send(line string)
	Close() error
}

var (
	_ Statter = (*Client)(nil)
	_ Statter = NoopClient{}
)

// NoopClient drops all the metrics
type NoopClient struct{}

func (NoopClient) Incr(string, int64, ...Tag) {}
func (NoopClient) Decr(string, int64, ...Tag) {}
func (NoopClient) Count(string, int64, ...Tag) {}
func (NoopClient) CountSampled(string, int64, float64, ...Tag) {}
func (NoopClient) FIncr(string, float64, ...Tag) {}
func (NoopClient) FDecr(string, float64, ...Tag) {}
func (NoopClient) Timing(string, int64, ...Tag) {}
func (NoopClient) TimingSampled(string, int64, float64, ...Tag) {}
func (NoopClient) PrecisionTiming(string, time.Duration, ...Tag) {}
func (NoopClient) TimeSince(string, time.Time, ...Tag) {}
func (NoopClient) Gauge(string, int64, ...Tag) {}
func (NoopClient) GaugeDelta(string, int64, ...Tag) {}
func (NoopClient) FGauge(string, float64, ...Tag) {}
func (NoopClient) FGaugeDelta(string, float64, ...Tag) {}
func (NoopClient) Histogram(string, int64, ...Tag) {}
func (NoopClient) FHistogram(string, float64, ...Tag) {}
func (NoopClient) SetAdd(string, string, ...Tag) {}
func (NoopClient) Event(Event, ...Tag) {}
func (NoopClient) ServiceCheck(ServiceCheck) {}
func (NoopClient) Send(string) {}
func (NoopClient) Close() error { return nil }
