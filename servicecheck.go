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
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ServiceCheckStatus is the status of service check run
type ServiceCheckStatus int

// Service check statuses
const (
	StatusOK ServiceCheckStatus = iota
	StatusWarning
	StatusCritical
	StatusUnknown
)

// ServiceCheck is a DogStatsD service check run
type ServiceCheck struct {
	Name      string
	Status    ServiceCheckStatus
	Timestamp time.Time
	Hostname  string
	Message   string
	Tags      []Tag
}

// Validate checks that service check could be sent
func (sc *ServiceCheck) Validate() error {
	if sc.Name == "" {
		return errors.New("statsd: service check name must be set")
	}

	if sc.Status < StatusOK || sc.Status > StatusUnknown {
		return errors.Errorf("statsd: invalid service check status %d", sc.Status)
	}

	return nil
}

var serviceCheckMessageEscaper = strings.NewReplacer("\n", "\\n", "m:", "m\\:")

// EscapedMessage returns message ready to be put on the wire
func (sc *ServiceCheck) EscapedMessage() string {
	return serviceCheckMessageEscaper.Replace(sc.Message)
}

// appendServiceCheck writes `_sc|<name>|<status>|d:...|h:...|#tags|m:...`
func (f *formatter) appendServiceCheck(buf []byte, sc *ServiceCheck) ([]byte, error) {
	if err := sc.Validate(); err != nil {
		return buf, err
	}

	buf = append(buf, "_sc|"...)
	buf = append(buf, sc.Name...)
	buf = append(buf, '|')
	buf = strconv.AppendInt(buf, int64(sc.Status), 10)

	if !sc.Timestamp.IsZero() {
		buf = append(buf, "|d:"...)
		buf = strconv.AppendInt(buf, sc.Timestamp.Unix(), 10)
	}

	if sc.Hostname != "" {
		buf = append(buf, "|h:"...)
		buf = append(buf, sc.Hostname...)
	}

	buf = appendTags(buf, TagFormatDatadog, f.defaultTags, sc.Tags)

	if sc.Message != "" {
		buf = append(buf, "|m:"...)
		buf = append(buf, sc.EscapedMessage()...)
	}

	return buf, nil
}
