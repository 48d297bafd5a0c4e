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

import "io"

// sink stages output in a fixed buffer in front of an io.Writer. The first
// error is sticky: once the writer fails, everything else is dropped.
type sink struct {
	w       io.Writer
	buf     [128]byte
	n       int
	written int
	err     error
}

func (s *sink) write(p []byte) {
	if s.err != nil {
		return
	}
	m, err := s.w.Write(p)
	s.written += m
	if err == nil && m < len(p) {
		err = io.ErrShortWrite
	}
	s.err = err
}

func (s *sink) flush() {
	if s.n > 0 {
		s.write(s.buf[:s.n])
		s.n = 0
	}
}

func (s *sink) WriteByte(c byte) error {
	if s.n == len(s.buf) {
		s.flush()
	}
	s.buf[s.n] = c
	s.n++
	return s.err
}

func (s *sink) Write(p []byte) (int, error) {
	if len(p) > len(s.buf)-s.n {
		s.flush()
		if len(p) >= len(s.buf) {
			s.write(p)
			return len(p), s.err
		}
	}
	s.n += copy(s.buf[s.n:], p)
	return len(p), s.err
}

func (s *sink) WriteString(str string) (int, error) {
	return s.Write(stringBytes(str))
}

// close flushes the staged bytes and returns how many bytes the writer
// accepted in total.
func (s *sink) close() (int, error) {
	s.flush()
	return s.written, s.err
}

// counter is an io.Writer that only counts.
type counter int

func (c *counter) Write(p []byte) (int, error) {
	*c += counter(len(p))
	return len(p), nil
}
