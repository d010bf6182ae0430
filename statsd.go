/*
Package statsd implements a non-blocking DogStatsD client.

Metrics are formatted into StatsD/DogStatsD text lines on the calling goroutine
and handed to a queue; everything else happens in the background, so emitting
a metric never blocks and never panics on behalf of the application.

Architecture is the following:

 * every metric call formats a single line and appends it to the outbound queue
 * one worker goroutine per client drains the queue and packs lines into UDP
   packets (joined with '\n') of at most MaxPacketSize bytes
 * packet is sent when the next line doesn't fit, when it is more than half full
   and nothing else is queued, or when its oldest line waited FlushInterval
 * destination address is resolved once on startup or, with VolatileAddress,
   before every packet (to follow statsd DNS address changes)
 * delivery failures (partial writes, resolution errors, socket errors) are
   passed to the ErrorHandler and the packet is dropped

Usage

Initialize client instance with options, one client per application is usually enough:

    client, err := statsd.NewClient("localhost:8125",
        statsd.MaxPacketSize(1400),
        statsd.MetricPrefix("web"))
    if err != nil {
        // static address resolution failed or socket couldn't be opened
    }

Send metrics as events happen in the application:

    start := time.Now()
    client.Incr("requests.http", 1)
    ...
    client.TimeSince("requests.route.api.latency", start)

Shutdown client during application shutdown to flush all the pending metrics:

    client.Close()

Tagging

DogStatsD tags are appended to every line, constant tags are passed as options:

    client, _ := statsd.NewClient("localhost:8125",
        statsd.DefaultTags(statsd.StringTag("app", "billing")))

    client.Incr("request", 1,
        statsd.StringTag("protocol", "http"), statsd.IntTag("port", 80))
*/
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
