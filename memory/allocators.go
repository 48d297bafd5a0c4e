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

package memory

import (
	"fmt"
)

//go:generate go tool stringer -type=Op -linecomment -output=op_string.go

// Op identifies an allocator call recorded by SpyingAllocator.
type Op int

const (
	OpAllocate       Op = iota // Allocate
	OpAllocateFail             // AllocateFail
	OpReallocate               // Reallocate
	OpReallocateFail           // ReallocateFail
	OpDeallocate               // Deallocate
)

// Event is one recorded allocator call. Size is the requested size, From is
// the size of the block being reallocated.
type Event struct {
	Op   Op
	From int
	Size int
}

func (e Event) String() string {
	switch e.Op {
	case OpReallocate, OpReallocateFail:
		return fmt.Sprintf("%s(%d, %d)", e.Op, e.From, e.Size)
	}
	return fmt.Sprintf("%s(%d)", e.Op, e.Size)
}

func Allocate(n int) Event             { return Event{Op: OpAllocate, Size: n} }
func AllocateFail(n int) Event         { return Event{Op: OpAllocateFail, Size: n} }
func Reallocate(from, n int) Event     { return Event{Op: OpReallocate, From: from, Size: n} }
func ReallocateFail(from, n int) Event { return Event{Op: OpReallocateFail, From: from, Size: n} }
func Deallocate(n int) Event           { return Event{Op: OpDeallocate, Size: n} }

// SpyingAllocator forwards to another allocator and records every call.
//
// It is meant for tests asserting the exact sequence of allocations a
// document performs.
type SpyingAllocator struct {
	mem       Allocator
	log       []Event
	allocated int
}

// NewSpyingAllocator wraps mem, or DefaultAllocator if mem is nil.
func NewSpyingAllocator(mem Allocator) *SpyingAllocator {
	if mem == nil {
		mem = DefaultAllocator
	}
	return &SpyingAllocator{mem: mem}
}

func (s *SpyingAllocator) Allocate(size int) []byte {
	b := s.mem.Allocate(size)
	if Failed(b, size) {
		s.log = append(s.log, AllocateFail(size))
		return nil
	}
	s.log = append(s.log, Allocate(size))
	s.allocated += size
	return b
}

func (s *SpyingAllocator) Reallocate(size int, b []byte) []byte {
	from := len(b)
	out := s.mem.Reallocate(size, b)
	if Failed(out, size) {
		s.log = append(s.log, ReallocateFail(from, size))
		return nil
	}
	s.log = append(s.log, Reallocate(from, size))
	s.allocated += size - from
	return out
}

func (s *SpyingAllocator) Free(b []byte) {
	s.log = append(s.log, Deallocate(len(b)))
	s.allocated -= len(b)
	s.mem.Free(b)
}

// Log returns the calls recorded since creation or the last ClearLog.
func (s *SpyingAllocator) Log() []Event { return s.log }

// ClearLog forgets the recorded calls.
func (s *SpyingAllocator) ClearLog() { s.log = nil }

// Allocated returns the number of bytes currently held through this allocator.
func (s *SpyingAllocator) Allocated() int { return s.allocated }

// TimebombAllocator forwards to another allocator until a countdown of
// successful Allocate/Reallocate calls reaches zero, then fails every
// subsequent one. Free always succeeds.
type TimebombAllocator struct {
	mem       Allocator
	countdown int
	armed     bool
}

// NewTimebombAllocator returns an allocator that fails after countdown
// successful calls. A negative countdown disarms it.
func NewTimebombAllocator(countdown int, mem Allocator) *TimebombAllocator {
	if mem == nil {
		mem = DefaultAllocator
	}
	t := &TimebombAllocator{mem: mem}
	t.SetCountdown(countdown)
	return t
}

// SetCountdown rearms the allocator. A negative value disarms it.
func (t *TimebombAllocator) SetCountdown(n int) {
	t.countdown, t.armed = n, n >= 0
}

func (t *TimebombAllocator) tick() bool {
	if !t.armed {
		return true
	}
	if t.countdown == 0 {
		return false
	}
	t.countdown--
	return true
}

func (t *TimebombAllocator) Allocate(size int) []byte {
	if !t.tick() {
		return nil
	}
	return t.mem.Allocate(size)
}

func (t *TimebombAllocator) Reallocate(size int, b []byte) []byte {
	if !t.tick() {
		return nil
	}
	return t.mem.Reallocate(size, b)
}

func (t *TimebombAllocator) Free(b []byte) { t.mem.Free(b) }

var (
	_ Allocator = (*SpyingAllocator)(nil)
	_ Allocator = (*TimebombAllocator)(nil)
)
