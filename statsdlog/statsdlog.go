// Package statsdlog connects statsd client logging and error reporting
// to github.com/apex/log and go.uber.org/zap loggers.
package statsdlog

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

	"github.com/apex/log"
	"go.uber.org/zap"

	"github.com/smira/go-dogstatsd"
)

type apexLogger struct {
	entry log.Interface
}

func (l apexLogger) Printf(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

// Apex returns statsd.SomeLogger which reports lost packets as warnings
func Apex(logger log.Interface) statsd.SomeLogger {
	return apexLogger{entry: logger.WithField("context", "statsd")}
}

// ApexErrorHandler returns statsd.ErrorHandler which logs delivery errors
func ApexErrorHandler(logger log.Interface) statsd.ErrorHandler {
	entry := logger.WithField("context", "statsd")

	return statsd.ErrorHandlerFunc(func(err error) {
		entry.WithError(err).Error("metrics delivery failed")
	})
}

type zapLogger struct {
	logger *zap.Logger
}

func (l zapLogger) Printf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

// Zap returns statsd.SomeLogger which reports lost packets as warnings
func Zap(logger *zap.Logger) statsd.SomeLogger {
	return zapLogger{logger: logger.Named("statsd")}
}

// ZapErrorHandler returns statsd.ErrorHandler which logs delivery errors
func ZapErrorHandler(logger *zap.Logger) statsd.ErrorHandler {
	logger = logger.Named("statsd")

	return statsd.ErrorHandlerFunc(func(err error) {
		logger.Error("metrics delivery failed", zap.Error(err))
	})
}
