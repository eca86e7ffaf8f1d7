// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package log

import (
	"fmt"
	"strconv"
	"strings"
)

// Formatter renders an Event according to a tag-driven pattern. The
// supported tags mirror the original implementation's field language:
//
//	%m message   %p level   %t thread ID   %n newline
//	%c logger name   %d event time   %f file name   %l line number
//	%T tab
const defaultPattern = "[%d] %p %c %f:%l - %m%n"

// Formatter is an immutable compiled pattern.
type Formatter struct {
	pattern string
	fields  []field
}

type field func(out *strings.Builder, loggerName string, event Event)

// DefaultFormatter returns the formatter used when none is configured.
func DefaultFormatter() *Formatter {
	f, err := NewFormatter(defaultPattern)
	if err != nil {
		panic(err)
	}
	return f
}

// NewFormatter compiles pattern into a Formatter, returning an error
// if it contains an unrecognized tag.
func NewFormatter(pattern string) (*Formatter, error) {
	var fields []field
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' || i+1 >= len(runes) {
			literal := string(runes[i])
			fields = append(fields, literalField(literal))
			continue
		}
		i++
		fn, ok := fieldFor(runes[i])
		if !ok {
			return nil, fmt.Errorf("log: unrecognized formatter tag %%%c", runes[i])
		}
		fields = append(fields, fn)
	}
	return &Formatter{pattern: pattern, fields: fields}, nil
}

// Pattern returns the compiled pattern string.
func (f *Formatter) Pattern() string {
	return f.pattern
}

// Format renders event as this formatter's pattern dictates.
func (f *Formatter) Format(loggerName string, event Event) string {
	var out strings.Builder
	for _, fn := range f.fields {
		fn(&out, loggerName, event)
	}
	return out.String()
}

func literalField(s string) field {
	return func(out *strings.Builder, _ string, _ Event) {
		out.WriteString(s)
	}
}

func fieldFor(tag rune) (field, bool) {
	switch tag {
	case 'm':
		return func(out *strings.Builder, _ string, e Event) { out.WriteString(e.Message) }, true
	case 'p':
		return func(out *strings.Builder, _ string, e Event) { out.WriteString(e.Level.String()) }, true
	case 't':
		return func(out *strings.Builder, _ string, e Event) { out.WriteString(strconv.FormatInt(e.ThreadID, 10)) }, true
	case 'n':
		return func(out *strings.Builder, _ string, _ Event) { out.WriteByte('\n') }, true
	case 'c':
		return func(out *strings.Builder, name string, _ Event) { out.WriteString(name) }, true
	case 'd':
		return func(out *strings.Builder, _ string, e Event) { out.WriteString(e.Time.Format("2006-01-02 15:04:05.000")) }, true
	case 'f':
		return func(out *strings.Builder, _ string, e Event) { out.WriteString(e.File) }, true
	case 'l':
		return func(out *strings.Builder, _ string, e Event) { out.WriteString(strconv.Itoa(e.Line)) }, true
	case 'T':
		return func(out *strings.Builder, _ string, _ Event) { out.WriteByte('\t') }, true
	case '%':
		return func(out *strings.Builder, _ string, _ Event) { out.WriteByte('%') }, true
	default:
		return nil, false
	}
}
