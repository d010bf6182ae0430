package main

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
	"strings"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listen(t *testing.T) (*net.UDPConn, <-chan string) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)

	received := make(chan string, 16)

	go func() {
		buf := make([]byte, 65536)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				close(received)
				return
			}

			received <- string(buf[:n])
		}
	}()

	t.Cleanup(func() { _ = conn.Close() })

	return conn, received
}

func receive(t *testing.T, received <-chan string) string {
	select {
	case packet := <-received:
		return packet
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for packet")
	}

	return ""
}

func TestParseConfig(t *testing.T) {
	t.Setenv("STATSD_ADDR", "10.0.0.1:8125")

	c, err := parseConfig([]string{"-packet-size", "512", "-volatile", "a:1|c", "b:2|c"})
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.1:8125", c.addr)
	assert.Equal(t, 512, c.packetSize)
	assert.True(t, c.volatile)
	assert.Equal(t, defaultTimeout, c.timeout)
	assert.Equal(t, []string{"a:1|c", "b:2|c"}, c.lines)

	_, err = parseConfig([]string{"-packet-size", "huge"})
	assert.Error(t, err)
}

func TestRunArgs(t *testing.T) {
	conn, received := listen(t)

	handler := memory.New()
	logger := &log.Logger{Handler: handler, Level: log.DebugLevel}

	err := run([]string{"-addr", conn.LocalAddr().String(), "a:1|c", " b:2|c "}, strings.NewReader(""), logger)
	require.NoError(t, err)

	assert.Equal(t, "a:1|c\nb:2|c", receive(t, received))

	require.NotEmpty(t, handler.Entries)
	last := handler.Entries[len(handler.Entries)-1]
	assert.Equal(t, "done", last.Message)
	assert.EqualValues(t, 2, last.Fields.Get("queued"))
}

func TestRunStdin(t *testing.T) {
	conn, received := listen(t)

	logger := &log.Logger{Handler: memory.New(), Level: log.InfoLevel}

	in := strings.NewReader("page.views:1|c\n\nusers.online:42|g\n")

	err := run([]string{"-addr", conn.LocalAddr().String()}, in, logger)
	require.NoError(t, err)

	assert.Equal(t, "page.views:1|c\nusers.online:42|g", receive(t, received))
}

func TestRunBadAddress(t *testing.T) {
	logger := &log.Logger{Handler: memory.New(), Level: log.InfoLevel}

	err := run([]string{"-addr", "BOOM:BOOM", "a:1|c"}, strings.NewReader(""), logger)
	assert.Error(t, err)
}
