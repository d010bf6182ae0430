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
	"bytes"
	"math"
	"strconv"
	"strings"
)

// fraction digits kept when formatting floating point numbers
const (
	valueFractionDigits = 6
	rateFractionDigits  = 19
)

// formatter builds metric lines, it's immutable and shared by goroutines
type formatter struct {
	prefix      string
	tagFormat   *TagFormat
	defaultTags []Tag
}

// normalizePrefix makes sure non-empty prefix ends with exactly one '.'
func normalizePrefix(prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, ".") {
		return prefix
	}

	return prefix + "."
}

// appendDecimal formats value with '.' radix point, without exponent or
// grouping, keeping at most maxFractionDigits digits after the point
func appendDecimal(buf []byte, value float64, maxFractionDigits int) []byte {
	switch {
	case math.IsNaN(value):
		return append(buf, "NaN"...)
	case math.IsInf(value, 1):
		return append(buf, "Inf"...)
	case math.IsInf(value, -1):
		return append(buf, "-Inf"...)
	}

	start := len(buf)
	buf = strconv.AppendFloat(buf, value, 'f', -1, 64)

	dot := bytes.IndexByte(buf[start:], '.')
	if dot >= 0 && len(buf)-start-dot-1 > maxFractionDigits {
		buf = strconv.AppendFloat(buf[:start], value, 'f', maxFractionDigits, 64)
		buf = bytes.TrimRight(buf, "0")
		buf = bytes.TrimSuffix(buf, []byte{'.'})
	}

	if len(buf)-start == 2 && buf[start] == '-' && buf[start+1] == '0' {
		buf = append(buf[:start], '0')
	}

	return buf
}

// appendHead writes `<prefix><stat>[tags]:`
func (f *formatter) appendHead(buf []byte, stat string, tags []Tag) []byte {
	buf = append(buf, f.prefix...)
	buf = append(buf, stat...)

	if f.tagFormat.AttachAfterName {
		buf = appendTags(buf, f.tagFormat, f.defaultTags, tags)
	}

	return append(buf, ':')
}

// appendTail writes `|<type>[|@<rate>][tags]`
func (f *formatter) appendTail(buf []byte, typ string, rate float64, tags []Tag) []byte {
	buf = append(buf, '|')
	buf = append(buf, typ...)

	if rate < 1 {
		buf = append(buf, '|', '@')
		buf = appendDecimal(buf, rate, rateFractionDigits)
	}

	if !f.tagFormat.AttachAfterName {
		buf = appendTags(buf, f.tagFormat, f.defaultTags, tags)
	}

	return buf
}

func (f *formatter) appendInt(buf []byte, stat string, sign string, value int64, typ string, rate float64, tags []Tag) []byte {
	buf = f.appendHead(buf, stat, tags)
	buf = append(buf, sign...)
	buf = strconv.AppendInt(buf, value, 10)

	return f.appendTail(buf, typ, rate, tags)
}

func (f *formatter) appendFloat(buf []byte, stat string, sign string, value float64, typ string, rate float64, tags []Tag) []byte {
	buf = f.appendHead(buf, stat, tags)
	buf = append(buf, sign...)
	buf = appendDecimal(buf, value, valueFractionDigits)

	return f.appendTail(buf, typ, rate, tags)
}

func (f *formatter) appendString(buf []byte, stat string, value string, typ string, tags []Tag) []byte {
	buf = f.appendHead(buf, stat, tags)
	buf = append(buf, value...)

	return f.appendTail(buf, typ, 1, tags)
}

// deltaSign returns sign for gauge deltas: '-' takes care of itself but the '+' must added by hand
func deltaSign(negative bool) string {
	if negative {
		return ""
	}

	return "+"
}
