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
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/apache/arrow-vdoc/internal/arena"
	"github.com/tinylib/msgp/msgp"
)

// WriteMsgPack writes the MessagePack encoding of v to w and returns the
// number of bytes w accepted. A null handle is written as nil.
//
// Integers use the smallest encoding of their value, non-negative ones
// through the unsigned family. Floats holding an integral value within the
// int64 range are written as integers; other floats use float32 when that
// is exact and float64 otherwise.
func WriteMsgPack(w io.Writer, v Variant) (int, error) {
	mw := msgpackWriter{out: sink{w: w}}
	if s, ok := v.slot(); ok {
		mw.d = v.doc
		mw.value(&s)
	} else {
		mw.out.Write(msgp.AppendNil(mw.tmp[:0]))
	}
	n, err := mw.out.close()
	if err == nil {
		err = mw.err
	}
	return n, err
}

// MeasureMsgPack returns the length of the MessagePack encoding of v.
func MeasureMsgPack(v Variant) int {
	var c counter
	n, _ := WriteMsgPack(&c, v)
	return n
}

// lengthFamily holds the tags of a length-prefixed MessagePack type. A
// negative fixMax means the type has no fix form.
type lengthFamily struct {
	fix                byte
	fixMax             int
	tag8, tag16, tag32 byte
}

var (
	strFamily = lengthFamily{fix: 0xa0, fixMax: 31, tag8: 0xd9, tag16: 0xda, tag32: 0xdb}
	binFamily = lengthFamily{fixMax: -1, tag8: 0xc4, tag16: 0xc5, tag32: 0xc6}
	extFamily = lengthFamily{fixMax: -1, tag8: 0xc7, tag16: 0xc8, tag32: 0xc9}
)

func (f lengthFamily) appendHeader(b []byte, n int) []byte {
	switch {
	case n <= f.fixMax:
		return append(b, f.fix|byte(n))
	case n <= math.MaxUint8:
		return append(b, f.tag8, byte(n))
	case n <= math.MaxUint16:
		return binary.BigEndian.AppendUint16(append(b, f.tag16), uint16(n))
	}
	return binary.BigEndian.AppendUint32(append(b, f.tag32), uint32(n))
}

// fixext tags by payload size
func fixextTag(n int) (byte, bool) {
	switch n {
	case 1:
		return 0xd4, true
	case 2:
		return 0xd5, true
	case 4:
		return 0xd6, true
	case 8:
		return 0xd7, true
	case 16:
		return 0xd8, true
	}
	return 0, false
}

func appendMsgPackInt(b []byte, i int64) []byte {
	if i >= 0 {
		return msgp.AppendUint64(b, uint64(i))
	}
	return msgp.AppendInt64(b, i)
}

func appendMsgPackFloat(b []byte, f float64) []byte {
	if f >= minInt64Float && f < maxInt64Float && f == math.Trunc(f) {
		return appendMsgPackInt(b, int64(f))
	}
	if f32 := float32(f); float64(f32) == f {
		return msgp.AppendFloat32(b, f32)
	}
	return msgp.AppendFloat64(b, f)
}

type msgpackWriter struct {
	d   *Document
	out sink
	err error
	tmp [16]byte
}

func (w *msgpackWriter) value(s *arena.Slot) {
	if w.out.err != nil || w.err != nil {
		return
	}
	b := w.tmp[:0]
	switch Type(s.Kind) {
	case Unbound, Null:
		b = msgp.AppendNil(b)
	case Bool:
		b = msgp.AppendBool(b, s.Payload != 0)
	case Int:
		b = appendMsgPackInt(b, int64(s.Payload))
	case Uint:
		b = msgp.AppendUint64(b, s.Payload)
	case Float:
		b = appendMsgPackFloat(b, math.Float64frombits(s.Payload))
	case String:
		w.bytes(strFamily, w.d.arena.Bytes(s.Str()))
		return
	case Binary:
		w.bytes(binFamily, w.d.arena.Bytes(s.Str()))
		return
	case Extension:
		w.extension(s.Ext, w.d.arena.Bytes(s.Str()))
		return
	case Raw:
		w.out.Write(w.d.arena.Bytes(s.Str()))
		return
	case Array:
		w.container(s, false)
		return
	case Object:
		w.container(s, true)
		return
	}
	w.out.Write(b)
}

func (w *msgpackWriter) checkLength(n int) bool {
	if uint64(n) > math.MaxUint32 {
		w.err = fmt.Errorf("%w: length %d does not fit MessagePack", ErrNotSupported, n)
		return false
	}
	return true
}

func (w *msgpackWriter) bytes(f lengthFamily, data []byte) {
	if !w.checkLength(len(data)) {
		return
	}
	w.out.Write(f.appendHeader(w.tmp[:0], len(data)))
	w.out.Write(data)
}

func (w *msgpackWriter) extension(code int8, data []byte) {
	if !w.checkLength(len(data)) {
		return
	}
	b := w.tmp[:0]
	if tag, ok := fixextTag(len(data)); ok {
		b = append(b, tag)
	} else {
		b = extFamily.appendHeader(b, len(data))
	}
	w.out.Write(append(b, byte(code)))
	w.out.Write(data)
}

func (w *msgpackWriter) container(s *arena.Slot, members bool) {
	n := w.d.count(s)
	if !w.checkLength(n) {
		return
	}
	if members {
		w.out.Write(msgp.AppendMapHeader(w.tmp[:0], uint32(n)))
	} else {
		w.out.Write(msgp.AppendArrayHeader(w.tmp[:0], uint32(n)))
	}
	for c := s.Head(); c != arena.Nil && w.out.err == nil && w.err == nil; {
		cs := w.d.arena.Load(c)
		if members {
			w.bytes(strFamily, w.d.arena.Bytes(cs.Key))
		}
		w.value(&cs)
		c = cs.Next
	}
}
