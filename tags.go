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
)

// TagFormat controls formatting of StatsD tags
type TagFormat struct {
	// AttachAfterName puts tags right after metric name, otherwise tags
	// go to the end of the line
	AttachAfterName bool
	// FirstSeparator is put before first tag
	FirstSeparator string
	// OtherSeparator separates 2nd and subsequent tags from each other
	OtherSeparator byte
	// KeyValueSeparator separates tag name and tag value
	KeyValueSeparator byte
}

// Predefined tag formats
var (
	// TagFormatDatadog is DogStatsD format: `name:1|c|#tag:value,tag2:value2`
	TagFormatDatadog = &TagFormat{
		FirstSeparator:    "|#",
		OtherSeparator:    ',',
		KeyValueSeparator: ':',
	}

	// TagFormatInfluxDB is InfluxDB-Telegraf format: `name,tag=value,tag2=value2:1|c`
	TagFormatInfluxDB = &TagFormat{
		AttachAfterName:   true,
		FirstSeparator:    ",",
		OtherSeparator:    ',',
		KeyValueSeparator: '=',
	}

	// TagFormatGraphite is Graphite tagged metrics format: `name;tag=value;tag2=value2:1|c`
	TagFormatGraphite = &TagFormat{
		AttachAfterName:   true,
		FirstSeparator:    ";",
		OtherSeparator:    ';',
		KeyValueSeparator: '=',
	}
)

const (
	typeString = iota
	typeInt64
	typeBare
)

// Tag is metric-specific tag
type Tag struct {
	name     string
	strvalue string
	intvalue int64
	typ      byte
}

// Append formats tag and appends it to the buffer
func (tag Tag) Append(buf []byte, style *TagFormat) []byte {
	buf = append(buf, tag.name...)

	switch tag.typ {
	case typeString:
		buf = append(buf, style.KeyValueSeparator)
		buf = append(buf, tag.strvalue...)
	case typeInt64:
		buf = append(buf, style.KeyValueSeparator)
		buf = strconv.AppendInt(buf, tag.intvalue, 10)
	}

	return buf
}

// String formats tag in Datadog format
func (tag Tag) String() string {
	return string(tag.Append(nil, TagFormatDatadog))
}

// StringTag creates Tag with string value
func StringTag(name, value string) Tag {
	return Tag{name: name, strvalue: value, typ: typeString}
}

// IntTag creates Tag with integer value
func IntTag(name string, value int) Tag {
	return Tag{name: name, intvalue: int64(value), typ: typeInt64}
}

// Int64Tag creates Tag with integer value
func Int64Tag(name string, value int64) Tag {
	return Tag{name: name, intvalue: value, typ: typeInt64}
}

// BareTag creates Tag without value, e.g. `|#canary`
func BareTag(name string) Tag {
	return Tag{name: name, typ: typeBare}
}

// appendTags writes default tags followed by tags, starting with FirstSeparator
func appendTags(buf []byte, style *TagFormat, defaultTags, tags []Tag) []byte {
	if len(defaultTags)+len(tags) == 0 {
		return buf
	}

	buf = append(buf, style.FirstSeparator...)

	for i, tag := range defaultTags {
		if i > 0 {
			buf = append(buf, style.OtherSeparator)
		}
		buf = tag.Append(buf, style)
	}

	for i, tag := range tags {
		if i > 0 || len(defaultTags) > 0 {
			buf = append(buf, style.OtherSeparator)
		}
		buf = tag.Append(buf, style)
	}

	return buf
}
