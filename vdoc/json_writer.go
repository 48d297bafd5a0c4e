// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package vdoc

import (
	"io"
	"math"
	"strconv"

	"github.com/apache/arrow-vdoc/internal/arena"
)

// WriteJSON writes the compact JSON text of v to w and returns the number
// of bytes w accepted. A null handle is written as null.
func WriteJSON(w io.Writer, v Variant) (int, error) {
	jw := jsonWriter{out: sink{w: w}}
	return jw.write(v)
}

// WriteJSONPretty is WriteJSON with a line per element or member, indented
// by two spaces per level.
func WriteJSONPretty(w io.Writer, v Variant) (int, error) {
	jw := jsonWriter{out: sink{w: w}, pretty: true}
	return jw.write(v)
}

// MeasureJSON returns the length of the compact JSON text of v.
func MeasureJSON(v Variant) int {
	var c counter
	n, _ := WriteJSON(&c, v)
	return n
}

type jsonWriter struct {
	d      *Document
	out    sink
	pretty bool
	depth  int
	// scratch for number formatting
	num [32]byte
}

func (w *jsonWriter) write(v Variant) (int, error) {
	if s, ok := v.slot(); ok {
		w.d = v.doc
		w.value(&s)
	} else {
		w.out.WriteString("null")
	}
	return w.out.close()
}

func (w *jsonWriter) value(s *arena.Slot) {
	if w.out.err != nil {
		return
	}
	switch Type(s.Kind) {
	case Unbound, Null:
		w.out.WriteString("null")
	case Bool:
		if s.Payload != 0 {
			w.out.WriteString("true")
		} else {
			w.out.WriteString("false")
		}
	case Int:
		w.out.Write(strconv.AppendInt(w.num[:0], int64(s.Payload), 10))
	case Uint:
		w.out.Write(strconv.AppendUint(w.num[:0], s.Payload, 10))
	case Float:
		w.out.Write(appendJSONFloat(w.num[:0], math.Float64frombits(s.Payload)))
	case String, Binary, Extension:
		w.string(w.d.arena.Bytes(s.Str()))
	case Raw:
		w.out.Write(w.d.arena.Bytes(s.Str()))
	case Array:
		w.container(s, '[', ']', false)
	case Object:
		w.container(s, '{', '}', true)
	}
}

func (w *jsonWriter) container(s *arena.Slot, open, end byte, members bool) {
	w.out.WriteByte(open)
	w.depth++
	first := true
	for c := s.Head(); c != arena.Nil && w.out.err == nil; {
		cs := w.d.arena.Load(c)
		if !first {
			w.out.WriteByte(',')
		}
		first = false
		w.newline()
		if members {
			w.string(w.d.arena.Bytes(cs.Key))
			w.out.WriteByte(':')
			if w.pretty {
				w.out.WriteByte(' ')
			}
		}
		w.value(&cs)
		c = cs.Next
	}
	w.depth--
	if !first {
		w.newline()
	}
	w.out.WriteByte(end)
}

func (w *jsonWriter) newline() {
	if !w.pretty {
		return
	}
	w.out.WriteByte('\n')
	for i := 0; i < w.depth; i++ {
		w.out.WriteString("  ")
	}
}

const hexDigits = "0123456789abcdef"

func (w *jsonWriter) string(b []byte) {
	w.out.WriteByte('"')
	start := 0
	for i, c := range b {
		var esc byte
		switch c {
		case '"', '\\':
			esc = c
		case '\b':
			esc = 'b'
		case '\f':
			esc = 'f'
		case '\n':
			esc = 'n'
		case '\r':
			esc = 'r'
		case '\t':
			esc = 't'
		default:
			if c >= 0x20 {
				continue
			}
		}
		w.out.Write(b[start:i])
		start = i + 1
		w.out.WriteByte('\\')
		if esc != 0 {
			w.out.WriteByte(esc)
		} else {
			w.out.WriteString("u00")
			w.out.WriteByte(hexDigits[c>>4])
			w.out.WriteByte(hexDigits[c&0xF])
		}
	}
	w.out.Write(b[start:])
	w.out.WriteByte('"')
}

// appendJSONFloat formats f the way encoding/json does, then marks integral
// values with ".0" so they read back as floats. NaN and infinities have no
// JSON form and are written as null.
func appendJSONFloat(b []byte, f float64) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(b, "null"...)
	}
	start := len(b)
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	b = strconv.AppendFloat(b, f, format, -1, 64)
	if format == 'e' {
		// clean up e-09 to e-9
		if n := len(b); n-start >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
		return b
	}
	for _, c := range b[start:] {
		if c == '.' {
			return b
		}
	}
	return append(b, ".0"...)
}
