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

// Package arena implements the memory manager behind a document: a single
// allocator block of fixed-size node slots, resized to the exact number of
// live slots, plus a table of independently allocated string buffers.
//
// Slots reference each other by index, never by address, so the block can be
// moved by the allocator and compacted when slots are released.
package arena

import (
	"encoding/binary"
	"errors"
	"math"
	"slices"

	"github.com/apache/arrow-vdoc/internal/debug"
	"github.com/apache/arrow-vdoc/memory"
)

// ErrNoMemory is returned when the allocator refuses a request or when the
// request would exceed the arena's budget.
var ErrNoMemory = errors.New("no memory")

// SlotSize is the encoded size of one node slot.
const SlotSize = 24

// Ref references a slot: its index in the region plus one. The root slot is
// held outside the region under the reserved Root ref.
type Ref uint32

const (
	Nil  Ref = 0
	Root Ref = math.MaxUint32
)

// StrID identifies an entry of the string table. Zero means no string.
type StrID uint32

// Slot flags tell the arena which parts of the payload it must follow when
// freeing and compacting.
const (
	// FlagContainer marks a payload holding the head and tail child refs.
	FlagContainer uint8 = 1 << iota
	// FlagString marks a payload holding a StrID.
	FlagString
)

// Slot is the decoded form of a node record.
//
// Layout: kind u8 | flags u8 | ext i8 | pad u8 | key u32 | next u32 | id u32 | payload u64.
type Slot struct {
	Kind    uint8
	Flags   uint8
	Ext     int8
	Key     StrID
	Next    Ref
	ID      uint32
	Payload uint64
}

func (s Slot) Head() Ref         { return Ref(uint32(s.Payload)) }
func (s Slot) Tail() Ref         { return Ref(uint32(s.Payload >> 32)) }
func (s Slot) Str() StrID        { return StrID(uint32(s.Payload)) }
func (s Slot) IsContainer() bool { return s.Flags&FlagContainer != 0 }
func (s Slot) IsString() bool    { return s.Flags&FlagString != 0 }

func (s *Slot) SetChildren(head, tail Ref) {
	s.Payload = uint64(head) | uint64(tail)<<32
}

func decodeSlot(b []byte) Slot {
	_ = b[SlotSize-1]
	return Slot{
		Kind:    b[0],
		Flags:   b[1],
		Ext:     int8(b[2]),
		Key:     StrID(binary.LittleEndian.Uint32(b[4:])),
		Next:    Ref(binary.LittleEndian.Uint32(b[8:])),
		ID:      binary.LittleEndian.Uint32(b[12:]),
		Payload: binary.LittleEndian.Uint64(b[16:]),
	}
}

func (s *Slot) encode(b []byte) {
	_ = b[SlotSize-1]
	b[0], b[1], b[2], b[3] = s.Kind, s.Flags, byte(s.Ext), 0
	binary.LittleEndian.PutUint32(b[4:], uint32(s.Key))
	binary.LittleEndian.PutUint32(b[8:], uint32(s.Next))
	binary.LittleEndian.PutUint32(b[12:], s.ID)
	binary.LittleEndian.PutUint64(b[16:], s.Payload)
}

type str struct {
	// buf is the allocated block of an owned string, or the caller's bytes
	// for a linked one.
	buf    []byte
	n      int
	linked bool
}

// Stats describes what an arena currently holds.
type Stats struct {
	Slots       int
	SlotBytes   int
	Strings     int
	StringBytes int
	// LinkedStrings counts the strings referencing caller memory. They are
	// included in Strings but not in StringBytes.
	LinkedStrings int
}

// Arena owns the slot region and the string buffers of one document.
// It is not safe for concurrent use.
type Arena struct {
	mem    memory.Allocator
	budget int

	region []byte
	count  int
	root   Slot
	nextID uint32

	strs     []str
	freeStrs []StrID
	// strBytes counts owned string blocks, pending counts builder blocks
	// not saved yet.
	strBytes int
	pending  int
}

// New returns an empty arena allocating through mem. A positive budget caps
// the total bytes the arena may hold at once.
func New(mem memory.Allocator, budget int) *Arena {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	return &Arena{mem: mem, budget: budget}
}

func (a *Arena) held() int { return len(a.region) + a.strBytes + a.pending }

func (a *Arena) fits(extra int) bool {
	return a.budget <= 0 || a.held()+extra <= a.budget
}

// Len returns the number of live slots in the region.
func (a *Arena) Len() int { return a.count }

// RegionSize returns the size in bytes of the slot region block.
func (a *Arena) RegionSize() int { return len(a.region) }

// Alloc appends a zeroed slot to the region, growing it by exactly one slot.
// On failure the region and every existing ref are left unchanged.
func (a *Arena) Alloc() (Ref, error) {
	size := (a.count + 1) * SlotSize
	if len(a.region) < size {
		if !a.fits(size - len(a.region)) {
			return Nil, ErrNoMemory
		}
		var region []byte
		if len(a.region) == 0 {
			region = a.mem.Allocate(size)
		} else {
			region = a.mem.Reallocate(size, a.region)
		}
		if memory.Failed(region, size) {
			return Nil, ErrNoMemory
		}
		a.region = region
	}

	a.count++
	a.nextID++
	if a.nextID == 0 {
		a.nextID++
	}
	r := Ref(a.count)
	a.Store(r, Slot{ID: a.nextID})
	return r, nil
}

func (a *Arena) offset(r Ref) int {
	debug.Assert(r != Nil && int(r) <= a.count, "arena: slot ref out of range")
	return (int(r) - 1) * SlotSize
}

// Load decodes the slot referenced by r.
func (a *Arena) Load(r Ref) Slot {
	if r == Root {
		return a.root
	}
	return decodeSlot(a.region[a.offset(r):])
}

// Store encodes s into the slot referenced by r.
func (a *Arena) Store(r Ref, s Slot) {
	if r == Root {
		a.root = s
		return
	}
	s.encode(a.region[a.offset(r):])
}

// Valid reports whether r still references the slot with the given stable id.
func (a *Arena) Valid(r Ref, id uint32) bool {
	switch {
	case r == Root:
		return id == 0
	case r == Nil || int(r) > a.count:
		return false
	}
	return binary.LittleEndian.Uint32(a.region[a.offset(r)+12:]) == id
}

// Find returns the current ref of the slot with the given stable id, or Nil
// if that slot has been released.
func (a *Arena) Find(id uint32) Ref {
	if id == 0 {
		return Root
	}
	for i := 0; i < a.count; i++ {
		if binary.LittleEndian.Uint32(a.region[i*SlotSize+12:]) == id {
			return Ref(i + 1)
		}
	}
	return Nil
}

// Free releases the given slots, which must already be detached from the
// tree and whose strings must already be released. Surviving slots are
// compacted into the freed positions, every reference to a moved slot is
// rewritten (including the refs in keep), and the region is shrunk to
// exactly the surviving slot count.
func (a *Arena) Free(dead []Ref, keep ...*Ref) {
	if len(dead) == 0 {
		return
	}
	slices.Sort(dead)
	n := a.count - len(dead)

	// holes are dead positions inside the surviving range, movers are live
	// slots beyond it; there are as many of one as of the other.
	holes := dead[:0:0]
	for _, r := range dead {
		if int(r) <= n {
			holes = append(holes, r)
		}
	}
	movers := make([]Ref, 0, len(holes))
	for r, i := Ref(n+1), 0; int(r) <= a.count; r++ {
		for i < len(dead) && dead[i] < r {
			i++
		}
		if i < len(dead) && dead[i] == r {
			continue
		}
		movers = append(movers, r)
	}
	debug.Assert(len(holes) == len(movers), "arena: compaction imbalance")

	for i, from := range movers {
		copy(a.region[a.offset(holes[i]):], a.region[a.offset(from):a.offset(from)+SlotSize])
	}

	remap := func(r Ref) Ref {
		if r == Nil || r == Root || int(r) <= n {
			return r
		}
		i, found := slices.BinarySearch(movers, r)
		debug.Assert(found, "arena: reference to a released slot")
		if !found {
			return Nil
		}
		return holes[i]
	}
	fix := func(s *Slot) bool {
		next := remap(s.Next)
		changed := next != s.Next
		s.Next = next
		if s.IsContainer() {
			head, tail := remap(s.Head()), remap(s.Tail())
			if head != s.Head() || tail != s.Tail() {
				s.SetChildren(head, tail)
				changed = true
			}
		}
		return changed
	}

	a.count = n
	if len(movers) > 0 {
		for r := Ref(1); int(r) <= n; r++ {
			s := a.Load(r)
			if fix(&s) {
				a.Store(r, s)
			}
		}
		fix(&a.root)
		for _, k := range keep {
			*k = remap(*k)
		}
	}

	a.shrink()
}

func (a *Arena) shrink() {
	size := a.count * SlotSize
	switch {
	case size == len(a.region):
	case size == 0:
		a.mem.Free(a.region)
		a.region = nil
	default:
		// a refused shrink keeps the larger block, Alloc reuses it
		if region := a.mem.Reallocate(size, a.region); !memory.Failed(region, size) {
			a.region = region
		}
	}
}

// NewString stores an owned copy of b in a block of exactly len(b) bytes.
// An empty string takes no allocation.
func (a *Arena) NewString(b []byte) (StrID, error) {
	if len(b) == 0 {
		return a.register(str{}), nil
	}
	if !a.fits(len(b)) {
		return 0, ErrNoMemory
	}
	buf := a.mem.Allocate(len(b))
	if memory.Failed(buf, len(b)) {
		return 0, ErrNoMemory
	}
	copy(buf, b)
	a.strBytes += len(buf)
	return a.register(str{buf: buf, n: len(b)}), nil
}

// LinkString stores a reference to b without copying it. The caller keeps
// b alive and unmodified for as long as the string is in use.
func (a *Arena) LinkString(b []byte) StrID {
	return a.register(str{buf: b, n: len(b), linked: true})
}

// Bytes returns the content of a string. The slice aliases arena memory.
func (a *Arena) Bytes(id StrID) []byte {
	if id == 0 {
		return nil
	}
	e := &a.strs[id]
	return e.buf[:e.n:e.n]
}

func (a *Arena) isLinked(id StrID) bool { return a.strs[id].linked }

// ReleaseString frees an owned string's block and recycles its id.
func (a *Arena) ReleaseString(id StrID) {
	e := &a.strs[id]
	if !e.linked && len(e.buf) > 0 {
		a.strBytes -= len(e.buf)
		a.mem.Free(e.buf)
	}
	*e = str{}
	a.freeStrs = append(a.freeStrs, id)
}

func (a *Arena) register(s str) StrID {
	if n := len(a.freeStrs); n > 0 {
		id := a.freeStrs[n-1]
		a.freeStrs = a.freeStrs[:n-1]
		a.strs[id] = s
		return id
	}
	if len(a.strs) == 0 {
		// id 0 is reserved for "no string"
		a.strs = append(a.strs, str{})
	}
	a.strs = append(a.strs, s)
	return StrID(len(a.strs) - 1)
}

// Reset releases every slot and string. The root slot becomes zero again.
func (a *Arena) Reset() {
	if len(a.region) > 0 {
		a.mem.Free(a.region)
	}
	a.region, a.count, a.root = nil, 0, Slot{}

	for i := range a.strs {
		if e := &a.strs[i]; !e.linked && len(e.buf) > 0 {
			a.mem.Free(e.buf)
		}
	}
	a.strs, a.freeStrs, a.strBytes = nil, nil, 0
}

// Stats reports the current occupancy of the arena.
func (a *Arena) Stats() Stats {
	st := Stats{
		Slots:       a.count,
		SlotBytes:   len(a.region),
		StringBytes: a.strBytes,
	}
	if len(a.strs) > 0 {
		st.Strings = len(a.strs) - 1 - len(a.freeStrs)
	}
	for id := 1; id < len(a.strs); id++ {
		if a.isLinked(StrID(id)) {
			st.LinkedStrings++
		}
	}
	return st
}
