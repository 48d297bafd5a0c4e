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
	"fmt"
	"io"
)

// source reads one byte ahead of an io.ByteReader and tracks the offset for
// error messages.
type source struct {
	r   io.ByteReader
	c   byte
	ok  bool
	eof bool
	err error
	off int
}

// peek returns the next byte without consuming it. It reports false at the
// end of the input or after a read error.
func (s *source) peek() (byte, bool) {
	if s.ok {
		return s.c, true
	}
	if s.eof {
		return 0, false
	}
	c, err := s.r.ReadByte()
	if err != nil {
		s.eof = true
		if err != io.EOF {
			s.err = err
		}
		return 0, false
	}
	s.c, s.ok = c, true
	return c, true
}

// next consumes the byte returned by the last peek.
func (s *source) next() {
	s.ok = false
	s.off++
}

func (s *source) readByte() (byte, error) {
	c, ok := s.peek()
	if !ok {
		return 0, s.incomplete()
	}
	s.next()
	return c, nil
}

func (s *source) incomplete() error {
	if s.err != nil {
		return fmt.Errorf("read at offset %d: %w", s.off, s.err)
	}
	return fmt.Errorf("%w: unexpected end at offset %d", ErrIncompleteInput, s.off)
}

func (s *source) invalid(c byte, expected string) error {
	return fmt.Errorf("%w: unexpected %q at offset %d, expected %s", ErrInvalidInput, c, s.off, expected)
}

func (s *source) tooDeep() error {
	return fmt.Errorf("%w: nesting limit reached at offset %d", ErrTooDeep, s.off)
}

func (s *source) noMemory(err error, what string) error {
	return fmt.Errorf("%s at offset %d: %w", what, s.off, err)
}

// empty is the error for an input without any value.
func (s *source) empty() error {
	if s.err != nil {
		return s.incomplete()
	}
	return ErrEmptyInput
}

// filter selects the parts of the input a parse keeps. The zero filter
// keeps nothing.
type filter struct {
	v   Variant
	all bool
}

var keepAll = filter{all: true}

func (f filter) allowValue() bool  { return f.all || (f.v.IsBool() && f.v.AsBool()) }
func (f filter) allowArray() bool  { return f.allowValue() || f.v.IsArray() }
func (f filter) allowObject() bool { return f.allowValue() || f.v.IsObject() }
func (f filter) allow() bool       { return f.allowArray() || f.allowObject() }

// member returns the filter for the member named key.
func (f filter) member(key []byte) filter {
	if f.allowValue() {
		return f
	}
	m := f.v.getBytes(key)
	if m.IsNullHandle() {
		m = f.v.Get("*")
	}
	return filter{v: m}
}

// element returns the filter for every element of an array.
func (f filter) element() filter {
	if f.allowValue() {
		return f
	}
	return filter{v: f.v.Index(0)}
}
