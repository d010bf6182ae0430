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
	"math/rand"
	"net"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func setupListener(t *testing.T) (*net.UDPConn, chan []byte) {
	inSocket, err := net.ListenUDP("udp4", &net.UDPAddr{
		IP: net.IPv4(127, 0, 0, 1),
	})
	if err != nil {
		t.Fatal(err)
	}

	received := make(chan []byte, 1024)

	go func() {
		for {
			buf := make([]byte, 65536)

			n, err := inSocket.Read(buf)
			if err != nil {
				return
			}

			received <- buf[0:n]
		}

	}()

	return inSocket, received
}

func newTestClient(t *testing.T, addr string, options ...Option) *Client {
	client, err := NewClient(addr, append([]Option{ReportInterval(0)}, options...)...)
	require.NoError(t, err)

	return client
}

// errorRecorder is ErrorHandler collecting errors for inspection
type errorRecorder struct {
	mu     sync.Mutex
	errors []error
	signal chan struct{}
}

func newErrorRecorder() *errorRecorder {
	return &errorRecorder{signal: make(chan struct{}, 1024)}
}

func (r *errorRecorder) Handle(err error) {
	r.mu.Lock()
	r.errors = append(r.errors, err)
	r.mu.Unlock()

	select {
	case r.signal <- struct{}{}:
	default:
	}
}

func (r *errorRecorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]error(nil), r.errors...)
}

func (r *errorRecorder) wait(t *testing.T) error {
	select {
	case <-r.signal:
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for error to be reported")
	}

	errs := r.Errors()

	return errs[len(errs)-1]
}

func compareOutput(received chan []byte, actions func(), expected []string) func(*testing.T) {
	return func(t *testing.T) {
		actions()

		for _, exp := range expected {
			var buf []byte
			select {
			case buf = <-received:
			case <-time.After(time.Second):
				t.Errorf("timeout waiting for %v", exp)
				return
			}

			if string(buf) != exp {
				t.Errorf("unexpected part received: %#v != %#v", string(buf), exp)
			}
		}
	}
}

func TestWrongAddress(t *testing.T) {
	client, err := NewClient("BOOM:BOOM")
	if err == nil {
		_ = client.Close()
		t.Fatal("error expected for unresolvable address")
	}

	var resolveErr *ResolveError
	if !errors.As(err, &resolveErr) {
		t.Errorf("unexpected error type: %#v", err)
	}
}

func TestWrongAddressVolatile(t *testing.T) {
	recorder := newErrorRecorder()

	client := newTestClient(t, "BOOM:BOOM", VolatileAddress(true), WithErrorHandler(recorder))

	client.Incr("req.count", 1)

	var resolveErr *ResolveError
	require.ErrorAs(t, recorder.wait(t), &resolveErr)
	require.Equal(t, "BOOM:BOOM", resolveErr.Addr)

	require.NoError(t, client.Close())
	require.EqualValues(t, 1, client.GetLostPackets())
}

func TestInvalidOptions(t *testing.T) {
	_, err := NewClient("127.0.0.1:8125", MaxPacketSize(0))
	require.Error(t, err)

	_, err = NewClient("127.0.0.1:8125", QueueCapacity(-1))
	require.Error(t, err)
}

func TestCommands(t *testing.T) {
	inSocket, received := setupListener(t)

	client := newTestClient(t, inSocket.LocalAddr().String(),
		MetricPrefix("foo."),
		MaxPacketSize(1400),
		TagStyle(TagFormatInfluxDB))
	clientTagged := newTestClient(t, inSocket.LocalAddr().String(),
		DefaultTags(StringTag("host", "example.com"), Int64Tag("weight", 38)))

	t.Run("Incr", compareOutput(received,
		func() { client.Incr("req.count", 30) },
		[]string{"foo.req.count:30|c"}))

	t.Run("IncrTaggedInflux", compareOutput(received,
		func() { client.Incr("req.count", 30, StringTag("app", "service"), IntTag("port", 80)) },
		[]string{"foo.req.count,app=service,port=80:30|c"}))

	t.Run("IncrTaggedDatadog", compareOutput(received,
		func() { clientTagged.Incr("req.count", 30, StringTag("app", "service"), IntTag("port", 80)) },
		[]string{"req.count:30|c|#host:example.com,weight:38,app:service,port:80"}))

	t.Run("Decr", compareOutput(received,
		func() { client.Decr("req.count", 30) },
		[]string{"foo.req.count:-30|c"}))

	t.Run("CountZero", compareOutput(received,
		func() {
			client.Incr("req.count", 0)
			client.Count("req.count", 0)
		},
		[]string{"foo.req.count:0|c"}))

	t.Run("CountSampled", compareOutput(received,
		func() {
			client.CountSampled("req.count", 30, 0)
			client.CountSampled("req.count", 30, 1)
		},
		[]string{"foo.req.count:30|c"}))

	t.Run("FIncr", compareOutput(received,
		func() { client.FIncr("req.count", 0.3) },
		[]string{"foo.req.count:0.3|c"}))

	t.Run("FDecr", compareOutput(received,
		func() { client.FDecr("req.count", 0.3) },
		[]string{"foo.req.count:-0.3|c"}))

	t.Run("Timing", compareOutput(received,
		func() { client.Timing("req.duration", 100) },
		[]string{"foo.req.duration:100|ms"}))

	t.Run("TimingTaggedInflux", compareOutput(received,
		func() { client.Timing("req.duration", 100, StringTag("app", "service"), IntTag("port", 80)) },
		[]string{"foo.req.duration,app=service,port=80:100|ms"}))

	t.Run("TimingTaggedDatadog", compareOutput(received,
		func() { clientTagged.Timing("req.duration", 100, StringTag("app", "service"), IntTag("port", 80)) },
		[]string{"req.duration:100|ms|#host:example.com,weight:38,app:service,port:80"}))

	t.Run("PrecisionTiming", compareOutput(received,
		func() { client.PrecisionTiming("req.duration", 157356*time.Microsecond) },
		[]string{"foo.req.duration:157.356|ms"}))

	t.Run("PrecisionTimingTaggedDatadog", compareOutput(received,
		func() {
			clientTagged.PrecisionTiming("req.duration", 157356*time.Microsecond, StringTag("app", "service"), IntTag("port", 80))
		},
		[]string{"req.duration:157.356|ms|#host:example.com,weight:38,app:service,port:80"}))

	t.Run("Gauge", compareOutput(received,
		func() {
			client.Gauge("req.clients", 33)
			client.Gauge("req.clients", -533)
		},
		[]string{"foo.req.clients:33|g\nfoo.req.clients:0|g\nfoo.req.clients:-533|g"}))

	t.Run("GaugeTaggedInflux", compareOutput(received,
		func() {
			client.Gauge("req.clients", 33, StringTag("app", "service"), IntTag("port", 80))
			client.Gauge("req.clients", -533, StringTag("app", "service"), IntTag("port", 80))
		},
		[]string{"foo.req.clients,app=service,port=80:33|g\nfoo.req.clients,app=service,port=80:0|g\nfoo.req.clients,app=service,port=80:-533|g"}))

	t.Run("GaugeDelta", compareOutput(received,
		func() {
			client.GaugeDelta("req.clients", 33)
			client.GaugeDelta("req.clients", -533)
		},
		[]string{"foo.req.clients:+33|g\nfoo.req.clients:-533|g"}))

	t.Run("GaugeDeltaTaggedDatadog", compareOutput(received,
		func() {
			clientTagged.GaugeDelta("req.clients", 33)
			clientTagged.GaugeDelta("req.clients", -533)
		},
		[]string{"req.clients:+33|g|#host:example.com,weight:38\nreq.clients:-533|g|#host:example.com,weight:38"}))

	t.Run("FGauge", compareOutput(received,
		func() {
			client.FGauge("req.clients", 33.5)
			client.FGauge("req.clients", -533.3)
		},
		[]string{"foo.req.clients:33.5|g\nfoo.req.clients:0|g\nfoo.req.clients:-533.3|g"}))

	t.Run("FGaugeDelta", compareOutput(received,
		func() {
			client.FGaugeDelta("req.clients", 33.5)
			client.FGaugeDelta("req.clients", -533.3)
		},
		[]string{"foo.req.clients:+33.5|g\nfoo.req.clients:-533.3|g"}))

	t.Run("FGaugeDeltaTaggedDatadog", compareOutput(received,
		func() {
			clientTagged.FGaugeDelta("req.clients", 33.5)
			clientTagged.FGaugeDelta("req.clients", -533.3)
		},
		[]string{"req.clients:+33.5|g|#host:example.com,weight:38\nreq.clients:-533.3|g|#host:example.com,weight:38"}))

	t.Run("Histogram", compareOutput(received,
		func() {
			client.Histogram("req.size", 423)
			client.FHistogram("req.size", 0.423)
		},
		[]string{"foo.req.size:423|h\nfoo.req.size:0.423|h"}))

	t.Run("SetAdd", compareOutput(received,
		func() { client.SetAdd("req.user", "bob") },
		[]string{"foo.req.user:bob|s"}))

	t.Run("SetAddTaggedDatadog", compareOutput(received,
		func() { clientTagged.SetAdd("req.user", "bob", StringTag("app", "service"), IntTag("port", 80)) },
		[]string{"req.user:bob|s|#host:example.com,weight:38,app:service,port:80"}))

	t.Run("Event", compareOutput(received,
		func() {
			client.Event(Event{Title: "deploy", Text: "v1.2.3", AlertType: AlertSuccess}, BareTag("canary"))
		},
		[]string{"_e{10,6}:foo.deploy|v1.2.3|t:success|#canary"}))

	t.Run("ServiceCheck", compareOutput(received,
		func() {
			clientTagged.ServiceCheck(ServiceCheck{Name: "db.up", Status: StatusCritical, Message: "conn refused"})
		},
		[]string{"_sc|db.up|2|#host:example.com,weight:38|m:conn refused"}))

	t.Run("Send", compareOutput(received,
		func() { client.Send("raw.metric:1|c") },
		[]string{"raw.metric:1|c"}))

	t.Run("FlushedIncr", compareOutput(received,
		func() {
			client.Incr("req.count", 40)
			client.Incr("req.count", 20)
			time.Sleep(150 * time.Millisecond)
			client.Incr("req.count", 10)
		},
		[]string{"foo.req.count:40|c\nfoo.req.count:20|c", "foo.req.count:10|c"}))

	t.Run("SplitIncr", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			client.Incr("req.count", 30)
		}

		lines := 0
		for lines < 100 {
			select {
			case buf := <-received:
				if len(buf) > 1400 {
					t.Errorf("packet is too big: %d", len(buf))
				}
				for _, part := range strings.Split(string(buf), "\n") {
					if part != "foo.req.count:30|c" {
						t.Errorf("unexpected part received: %#v", part)
					}
					lines++
				}
			case <-time.After(time.Second):
				t.Fatalf("timeout waiting for packets, got %d lines", lines)
			}
		}
	})

	_ = client.Close()
	_ = clientTagged.Close()
	_ = inSocket.Close()
	close(received)
}

func TestPrefixScenarios(t *testing.T) {
	inSocket, received := setupListener(t)

	client := newTestClient(t, inSocket.LocalAddr().String(), MetricPrefix("my.prefix"))

	t.Run("Count", compareOutput(received,
		func() { client.Count("mycount", 24) },
		[]string{"my.prefix.mycount:24|c"}))

	t.Run("ExecutionTime", compareOutput(received,
		func() { client.Timing("mytime", 123) },
		[]string{"my.prefix.mytime:123|ms"}))

	t.Run("NegativeGauge", compareOutput(received,
		func() { client.Gauge("mygauge", -423) },
		[]string{"my.prefix.mygauge:0|g\nmy.prefix.mygauge:-423|g"}))

	t.Run("RapidCalls", compareOutput(received,
		func() {
			client.Count("a", 1)
			client.Count("b", 2)
		},
		[]string{"my.prefix.a:1|c\nmy.prefix.b:2|c"}))

	_ = client.Close()
	_ = inSocket.Close()
	close(received)
}

func TestClones(t *testing.T) {
	inSocket, received := setupListener(t)

	client := newTestClient(t, inSocket.LocalAddr().String(),
		MetricPrefix("foo."),
		MaxPacketSize(1400))
	client2 := client.CloneWithPrefix("bar.")
	client3 := client2.CloneWithPrefixExtension("blah.")

	t.Run("Original", compareOutput(received,
		func() { client.Incr("req.count", 30) },
		[]string{"foo.req.count:30|c"}))

	t.Run("CloneWithPrefix", compareOutput(received,
		func() { client2.Incr("req.count", 30) },
		[]string{"bar.req.count:30|c"}))

	t.Run("CloneWithPrefixExtension", compareOutput(received,
		func() { client3.Incr("req.count", 30) },
		[]string{"bar.blah.req.count:30|c"}))

	_ = client.Close()
	_ = client2.Close()
	_ = client3.Close()
	_ = inSocket.Close()
	close(received)
}

func TestClosedClient(t *testing.T) {
	recorder := newErrorRecorder()

	client := newTestClient(t, "127.0.0.1:1", WithErrorHandler(recorder))
	require.NoError(t, client.Close())

	start := time.Now()
	for i := 0; i < 1000; i++ {
		client.Incr("req.count", 1)
		client.Gauge("req.clients", -1)
		client.Event(Event{Title: "title", Text: "text"})
	}
	require.Less(t, time.Since(start), time.Second)

	require.ErrorIs(t, recorder.Errors()[0], ErrClientClosed)
	require.EqualValues(t, 4000, client.Stats().MessagesDropped)

	// second close is a no-op
	require.NoError(t, client.Close())
}

func TestUnreachableServer(t *testing.T) {
	client := newTestClient(t, "127.0.0.1:1", ShutdownTimeout(time.Second))

	start := time.Now()
	for i := 0; i < 10000; i++ {
		client.Incr("req.count", 1)
	}
	require.Less(t, time.Since(start), time.Second)

	require.NoError(t, client.Close())
}

func TestInvalidEvents(t *testing.T) {
	recorder := newErrorRecorder()

	client := newTestClient(t, "127.0.0.1:1", WithErrorHandler(recorder))
	defer client.Close()

	client.Event(Event{Text: "no title"})
	client.ServiceCheck(ServiceCheck{Status: StatusOK})

	require.Len(t, recorder.Errors(), 2)
	require.EqualValues(t, 2, client.Stats().MessagesDropped)
	require.EqualValues(t, 0, client.Stats().MessagesQueued)
}

func TestConcurrent(t *testing.T) {
	inSocket, received := setupListener(t)

	client := newTestClient(t, inSocket.LocalAddr().String(), MetricPrefix("foo."))

	var totalSent, totalReceived int64

	var wg1, wg2 sync.WaitGroup

	wg1.Add(1)

	go func() {
		for buf := range received {
			for _, part := range strings.Split(string(buf), "\n") {
				i1 := strings.Index(part, ":")
				i2 := strings.Index(part, "|")

				if i1 == -1 || i2 == -1 {
					t.Logf("non-parsable part: %#v", part)
					continue
				}

				count, err := strconv.ParseInt(part[i1+1:i2], 10, 64)
				if err != nil {
					t.Log(err)
					continue
				}

				atomic.AddInt64(&totalReceived, count)
			}
		}

		wg1.Done()
	}()

	workers := 16
	count := 1024

	for i := 0; i < workers; i++ {
		wg2.Add(1)

		go func(i int) {
			for j := 0; j < count; j++ {
				// to simulate real load, sleep a bit in between the stats calls
				time.Sleep(time.Duration(rand.ExpFloat64() * float64(time.Microsecond)))

				increment := i + j
				client.Incr("some.counter", int64(increment))

				atomic.AddInt64(&totalSent, int64(increment))
			}

			wg2.Done()
		}(i)
	}

	wg2.Wait()

	_ = client.Close()

	if client.GetLostPackets() > 0 || client.Stats().MessagesDropped > 0 {
		t.Errorf("some packets were lost during the test, results are not valid: %d", client.GetLostPackets())
	}

	// wait for 30 seconds for all the packets to be received
	for i := 0; i < 30; i++ {
		if atomic.LoadInt64(&totalSent) == atomic.LoadInt64(&totalReceived) {
			break
		}

		time.Sleep(time.Second)
	}

	_ = inSocket.Close()
	close(received)

	wg1.Wait()

	if atomic.LoadInt64(&totalSent) != atomic.LoadInt64(&totalReceived) {
		t.Errorf("sent != received: %v != %v", totalSent, totalReceived)
	}
}

func BenchmarkSimple(b *testing.B) {
	inSocket, err := net.ListenUDP("udp4", &net.UDPAddr{
		IP: net.IPv4(127, 0, 0, 1),
	})
	if err != nil {
		b.Error(err)
	}

	go func() {
		buf := make([]byte, 1500)
		for {
			_, err := inSocket.Read(buf)
			if err != nil {
				return
			}
		}

	}()

	c, err := NewClient(inSocket.LocalAddr().String(), MetricPrefix("metricPrefix"), MaxPacketSize(1432),
		FlushInterval(100*time.Millisecond))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		c.Incr("foo.bar.counter", 1)
		c.Gauge("foo.bar.gauge", 42)
		c.PrecisionTiming("foo.bar.timing", 153*time.Millisecond)
	}
	_ = c.Close()
	_ = inSocket.Close()
}

func BenchmarkTagged(b *testing.B) {
	inSocket, err := net.ListenUDP("udp4", &net.UDPAddr{
		IP: net.IPv4(127, 0, 0, 1),
	})
	if err != nil {
		b.Error(err)
	}

	go func() {
		buf := make([]byte, 1500)
		for {
			_, err := inSocket.Read(buf)
			if err != nil {
				return
			}
		}

	}()

	client, err := NewClient(inSocket.LocalAddr().String(), MetricPrefix("metricPrefix"), MaxPacketSize(1432),
		FlushInterval(100*time.Millisecond), DefaultTags(StringTag("host", "foo")), BufPoolCapacity(40))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		client.Incr("foo.bar.counter", 1, StringTag("route", "api.one"), IntTag("status", 200))
		client.Timing("another.value", 157, StringTag("service", "db"))
		client.PrecisionTiming("response.time.for.some.api", 150*time.Millisecond, IntTag("status", 404))
		client.PrecisionTiming("response.time.for.some.api.case1", 150*time.Millisecond, StringTag("service", "db"), IntTag("status", 200))
	}
	_ = client.Close()
	_ = inSocket.Close()
}
