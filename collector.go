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
	"github.com/prometheus/client_golang/prometheus"
)

const collectorNamespace = "statsd_client"

type collector struct {
	client *Client

	messagesQueued  *prometheus.Desc
	messagesDropped *prometheus.Desc
	packetsSent     *prometheus.Desc
	packetsLost     *prometheus.Desc
	bytesSent       *prometheus.Desc
	errors          *prometheus.Desc
	queueLength     *prometheus.Desc
}

// NewCollector exposes client Stats as Prometheus metrics
//
// constLabels are attached to every metric, e.g. to tell several clients apart.
func NewCollector(client *Client, constLabels prometheus.Labels) prometheus.Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(collectorNamespace, "", name), help, nil, constLabels)
	}

	return &collector{
		client: client,

		messagesQueued:  desc("messages_queued_total", "Metric lines accepted into the send queue."),
		messagesDropped: desc("messages_dropped_total", "Metric lines dropped before being packed."),
		packetsSent:     desc("packets_sent_total", "UDP packets sent to statsd."),
		packetsLost:     desc("packets_lost_total", "UDP packets which failed to be sent."),
		bytesSent:       desc("bytes_sent_total", "Bytes sent to statsd."),
		errors:          desc("errors_total", "Errors passed to the error handler."),
		queueLength:     desc("queue_length", "Metric lines waiting in the send queue."),
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.messagesQueued
	ch <- c.messagesDropped
	ch <- c.packetsSent
	ch <- c.packetsLost
	ch <- c.bytesSent
	ch <- c.errors
	ch <- c.queueLength
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.client.Stats()

	ch <- prometheus.MustNewConstMetric(c.messagesQueued, prometheus.CounterValue, float64(stats.MessagesQueued))
	ch <- prometheus.MustNewConstMetric(c.messagesDropped, prometheus.CounterValue, float64(stats.MessagesDropped))
	ch <- prometheus.MustNewConstMetric(c.packetsSent, prometheus.CounterValue, float64(stats.PacketsSent))
	ch <- prometheus.MustNewConstMetric(c.packetsLost, prometheus.CounterValue, float64(stats.PacketsLost))
	ch <- prometheus.MustNewConstMetric(c.bytesSent, prometheus.CounterValue, float64(stats.BytesSent))
	ch <- prometheus.MustNewConstMetric(c.errors, prometheus.CounterValue, float64(stats.Errors))
	ch <- prometheus.MustNewConstMetric(c.queueLength, prometheus.GaugeValue, float64(stats.QueueLength))
}
