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
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// Errors passed to ErrorHandler when a metric is dropped before reaching the sender
var (
	ErrQueueFull       = errors.New("statsd: queue is full, metric dropped")
	ErrClientClosed    = errors.New("statsd: client is closed, metric dropped")
	ErrShutdownTimeout = errors.New("statsd: timed out waiting for pending metrics to be sent")
)

// ErrorHandler processes errors which happen while metrics are delivered
//
// Metric calls never return errors, everything that goes wrong after the
// metric was formatted ends up in the handler.
type ErrorHandler interface {
	Handle(err error)
}

// ErrorHandlerFunc is an adapter to use ordinary functions as ErrorHandler
type ErrorHandlerFunc func(err error)

// Handle calls f(err)
func (f ErrorHandlerFunc) Handle(err error) {
	f(err)
}

// NoopErrorHandler ignores all the errors
var NoopErrorHandler ErrorHandler = ErrorHandlerFunc(func(error) {})

// LoggingErrorHandler reports every error via logger
func LoggingErrorHandler(logger SomeLogger) ErrorHandler {
	return ErrorHandlerFunc(func(err error) {
		logger.Printf("%s", err)
	})
}

// PartialSendError is reported when socket accepted only part of the packet
type PartialSendError struct {
	Addr      *net.UDPAddr
	Requested int
	Sent      int
}

func (e *PartialSendError) Error() string {
	return fmt.Sprintf("statsd: could not send entire packet to %s: only sent %d bytes out of %d bytes",
		e.Addr, e.Sent, e.Requested)
}

// ResolveError is reported when statsd address can't be resolved
type ResolveError struct {
	Addr string
	Err  error
}

func (e *ResolveError) Error() string {
	return fmt.Sprintf("statsd: failed to resolve %q: %s", e.Addr, e.Err)
}

// Unwrap returns underlying lookup error
func (e *ResolveError) Unwrap() error {
	return e.Err
}
