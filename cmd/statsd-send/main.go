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
	"bufio"
	"io"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/apex/log/handlers/text"
	"github.com/namsral/flag"
	"github.com/pkg/errors"

	"github.com/smira/go-dogstatsd"
	"github.com/smira/go-dogstatsd/statsdlog"
)

const (
	defaultAddr    = "127.0.0.1:8125"
	defaultTimeout = 5 * time.Second
)

func main() {
	log.SetHandler(text.New(os.Stderr))

	if err := run(os.Args[1:], os.Stdin, log.Log); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.WithError(err).Fatal("statsd-send failed")
	}
}

// config is filled from flags and STATSD_* environment variables
type config struct {
	addr       string
	packetSize int
	volatile   bool
	timeout    time.Duration
	lines      []string
}

func parseConfig(args []string) (*config, error) {
	c := &config{}

	fs := flag.NewFlagSetWithEnvPrefix("statsd-send", "STATSD", flag.ContinueOnError)
	fs.StringVar(&c.addr, "addr", defaultAddr, "statsd server address (host:port)")
	fs.IntVar(&c.packetSize, "packet-size", statsd.DefaultMaxPacketSize, "maximum UDP packet size")
	fs.BoolVar(&c.volatile, "volatile", false, "resolve server address before every packet")
	fs.DurationVar(&c.timeout, "timeout", defaultTimeout, "how long to wait for pending metrics on exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	c.lines = fs.Args()

	return c, nil
}

// run sends metric lines passed as arguments, or read from in when there are no arguments
func run(args []string, in io.Reader, logger log.Interface) error {
	c, err := parseConfig(args)
	if err != nil {
		return err
	}

	client, err := statsd.NewClient(c.addr,
		statsd.MaxPacketSize(c.packetSize),
		statsd.VolatileAddress(c.volatile),
		statsd.ShutdownTimeout(c.timeout),
		statsd.Logger(statsdlog.Apex(logger)),
		statsd.WithErrorHandler(statsdlog.ApexErrorHandler(logger)))
	if err != nil {
		return err
	}

	if len(c.lines) > 0 {
		for _, line := range c.lines {
			client.Send(strings.TrimSpace(line))
		}
	} else {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			client.Send(strings.TrimSpace(scanner.Text()))
		}

		if err = scanner.Err(); err != nil {
			err = errors.Wrap(err, "error reading metrics")
		}
	}

	_ = client.Close()

	stats := client.Stats()
	logger.WithFields(log.Fields{
		"queued":  stats.MessagesQueued,
		"packets": stats.PacketsSent,
		"lost":    stats.PacketsLost,
		"dropped": stats.MessagesDropped,
	}).Debug("done")

	return err
}
