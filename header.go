package wally

import (
	"strings"
)

// HeaderField is one of the header fields the server understands.
// Lines naming any other field are dropped while parsing.
type HeaderField int

const (
	ContentType HeaderField = iota
	ContentLength
	Server
	Date
	ETag
	IfMatch
	IfNoneMatch
	IfModifiedSince
	Connection
)

type fieldInfo struct {
	name  string
	multi bool
	date  bool
}

var fields = [...]fieldInfo{
	ContentType:     {name: "Content-Type"},
	ContentLength:   {name: "Content-Length"},
	Server:          {name: "Server"},
	Date:            {name: "Date", date: true},
	ETag:            {name: "ETag"},
	IfMatch:         {name: "If-Match", multi: true},
	IfNoneMatch:     {name: "If-None-Match", multi: true},
	IfModifiedSince: {name: "If-Modified-Since", date: true},
	Connection:      {name: "Connection", multi: true},
}

// String returns the wire name of the field.
func (f HeaderField) String() string {
	if !f.valid() {
		return "Unknown"
	}
	return fields[f].name
}

// AllowsMultipleValues reports whether the field carries a comma separated list.
func (f HeaderField) AllowsMultipleValues() bool {
	return f.valid() && fields[f].multi
}

// IsDate reports whether the field value is an RFC 1123 date.
func (f HeaderField) IsDate() bool {
	return f.valid() && fields[f].date
}

func (f HeaderField) valid() bool {
	return f >= 0 && int(f) < len(fields)
}

// LookupField finds the field for a wire name, ignoring case.
func LookupField(name string) (HeaderField, bool) {
	name = strings.TrimSpace(name)
	for i := range fields {
		if strings.EqualFold(fields[i].name, name) {
			return HeaderField(i), true
		}
	}
	return 0, false
}

// Header maps supported fields to their values. Lookups ignore insertion
// order; serialization follows the order in which fields were first added.
// The zero value is ready to use.
type Header struct {
	values map[HeaderField][]string
	order  []HeaderField
}

// NewHeader returns an empty header.
func NewHeader() *Header {
	return &Header{}
}

// AddEntry appends value to the values of field.
func (h *Header) AddEntry(field HeaderField, value string) {
	if !field.valid() {
		return
	}
	if h.values == nil {
		h.values = make(map[HeaderField][]string)
	}
	if _, ok := h.values[field]; !ok {
		h.order = append(h.order, field)
	}
	h.values[field] = append(h.values[field], value)
}

// AddEntryWhenSupported parses a raw "Name: value" line. It returns false and
// leaves the header untouched when the line has no ':' or names a field
// outside the supported set. A supported line replaces earlier values of the
// same field.
func (h *Header) AddEntryWhenSupported(line string) bool {
	name, raw, ok := strings.Cut(line, ":")
	if !ok {
		return false
	}

	field, ok := LookupField(name)
	if !ok {
		return false
	}

	value := strings.TrimSpace(raw)
	if !field.IsDate() {
		value = strings.ReplaceAll(value, " ", "")
	}

	var values []string
	if field.AllowsMultipleValues() {
		values = strings.Split(value, ",")
	} else {
		values = []string{value}
	}

	if h.values == nil {
		h.values = make(map[HeaderField][]string)
	}
	if _, exists := h.values[field]; !exists {
		h.order = append(h.order, field)
	}
	h.values[field] = values
	return true
}

// Has reports whether field is present.
func (h *Header) Has(field HeaderField) bool {
	_, ok := h.values[field]
	return ok
}

// Values returns all values of field, or nil when absent.
func (h *Header) Values(field HeaderField) []string {
	v, ok := h.values[field]
	if !ok {
		return nil
	}
	out := make([]string, len(v))
	copy(out, v)
	return out
}

// Value returns the first value of field.
func (h *Header) Value(field HeaderField) (string, bool) {
	v, ok := h.values[field]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// Line renders field as "Name: v1,v2".
func (h *Header) Line(field HeaderField) (string, bool) {
	v, ok := h.values[field]
	if !ok {
		return "", false
	}
	return field.String() + ": " + strings.Join(v, ","), true
}

// Lines renders every present field in insertion order.
func (h *Header) Lines() []string {
	lines := make([]string, 0, len(h.order))
	for _, f := range h.order {
		line, _ := h.Line(f)
		lines = append(lines, line)
	}
	return lines
}

// HasToken reports whether any value of field equals token, ignoring case.
func (h *Header) HasToken(field HeaderField, token string) bool {
	for _, v := range h.values[field] {
		if strings.EqualFold(strings.TrimSpace(v), token) {
			return true
		}
	}
	return false
}
