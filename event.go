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

// EventPriority is priority of the event
type EventPriority string

// Event priorities
const (
	PriorityNormal EventPriority = "normal"
	PriorityLow    EventPriority = "low"
)

// EventAlertType is alert type of the event
type EventAlertType string

// Event alert types
const (
	AlertError   EventAlertType = "error"
	AlertWarning EventAlertType = "warning"
	AlertInfo    EventAlertType = "info"
	AlertSuccess EventAlertType = "success"
)

// Event is a DogStatsD event
//
// Title and Text are mandatory, other fields are sent only when set.
type Event struct {
	// Title of the event, metric prefix is prepended to it
	Title string
	// Text of the event, supports line breaks
	Text string
	// Timestamp of the event, server uses current time if not set
	Timestamp time.Time
	// Hostname to attach the event to
	Hostname string
	// AggregationKey groups the event with others having the same key
	AggregationKey string
	// Priority is PriorityNormal or PriorityLow
	Priority EventPriority
	// AlertType is one of AlertError, AlertWarning, AlertInfo, AlertSuccess
	AlertType EventAlertType
}

// Validate checks that mandatory fields are set
func (e *Event) Validate() error {
	if e.Title == "" {
		return errors.New("statsd: event title must be set")
	}

	if e.Text == "" {
		return errors.New("statsd: event text must be set")
	}

	return nil
}

var eventTextEscaper = strings.NewReplacer("\n", "\\n")

// appendEvent writes `_e{<title_len>,<text_len>}:<title>|<text>|d:...|h:...|k:...|p:...|t:...|#tags`
func (f *formatter) appendEvent(buf []byte, e *Event, tags []Tag) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return buf, err
	}

	title := f.prefix + e.Title
	text := eventTextEscaper.Replace(e.Text)

	buf = append(buf, "_e{"...)
	buf = strconv.AppendInt(buf, int64(len(title)), 10)
	buf = append(buf, ',')
	buf = strconv.AppendInt(buf, int64(len(text)), 10)
	buf = append(buf, "}:"...)
	buf = append(buf, title...)
	buf = append(buf, '|')
	buf = append(buf, text...)

	if !e.Timestamp.IsZero() {
		buf = append(buf, "|d:"...)
		buf = strconv.AppendInt(buf, e.Timestamp.Unix(), 10)
	}

	if e.Hostname != "" {
		buf = append(buf, "|h:"...)
		buf = append(buf, e.Hostname...)
	}

	if e.AggregationKey != "" {
		buf = append(buf, "|k:"...)
		buf = append(buf, e.AggregationKey...)
	}

	if e.Priority != "" {
		buf = append(buf, "|p:"...)
		buf = append(buf, string(e.Priority)...)
	}

	if e.AlertType != "" {
		buf = append(buf, "|t:"...)
		buf = append(buf, string(e.AlertType)...)
	}

	return appendTags(buf, TagFormatDatadog, f.defaultTags, tags), nil
}
