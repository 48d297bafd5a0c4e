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
	"bytes"
	"errors"
	"fmt"
	"math"
	"unsafe"

	"github.com/apache/arrow-vdoc/internal/arena"
	"github.com/apache/arrow-vdoc/internal/debug"
	"github.com/google/uuid"
)

func (d *Document) handle(r arena.Ref) Variant {
	return Variant{doc: d, ref: r, id: d.arena.Load(r).ID}
}

// releaseValue releases what the value of s owns: its string, or every
// descendant depth-first. Released child slots are appended to dead; the
// caller frees them. s keeps its key and becomes Unbound.
func (d *Document) releaseValue(s *arena.Slot, dead *[]arena.Ref) {
	switch {
	case s.IsContainer():
		for c := s.Head(); c != arena.Nil; {
			cs := d.arena.Load(c)
			d.releaseValue(&cs, dead)
			if cs.Key != 0 {
				d.arena.ReleaseString(cs.Key)
			}
			*dead = append(*dead, c)
			c = cs.Next
		}
	case s.IsString():
		d.arena.ReleaseString(s.Str())
	}
	s.Kind, s.Flags, s.Ext, s.Payload = uint8(Unbound), 0, 0, 0
}

// clearValue makes the node at r Unbound, releasing what it owned. It
// returns the node's ref, which compaction may have changed.
func (d *Document) clearValue(r arena.Ref) arena.Ref {
	s := d.arena.Load(r)
	if !s.IsContainer() && !s.IsString() {
		s.Kind, s.Ext, s.Payload = uint8(Unbound), 0, 0
		d.arena.Store(r, s)
		return r
	}
	var dead []arena.Ref
	d.releaseValue(&s, &dead)
	d.arena.Store(r, s)
	d.arena.Free(dead, &r)
	return r
}

func (d *Document) setScalar(r arena.Ref, t Type, payload uint64) arena.Ref {
	r = d.clearValue(r)
	s := d.arena.Load(r)
	s.Kind, s.Payload = uint8(t), payload
	d.arena.Store(r, s)
	return r
}

// setStringID attaches a registered string to the cleared node at r.
func (d *Document) setStringID(r arena.Ref, t Type, ext int8, id arena.StrID) {
	s := d.arena.Load(r)
	debug.Assert(!s.IsContainer() && !s.IsString(), "vdoc: string set on an uncleared node")
	s.Kind, s.Flags, s.Ext, s.Payload = uint8(t), arena.FlagString, ext, uint64(id)
	d.arena.Store(r, s)
}

// setBytes stores b as the value of the node at r. When the copy cannot be
// allocated the node is left Null.
func (d *Document) setBytes(r arena.Ref, t Type, ext int8, b []byte, linked bool) (arena.Ref, error) {
	r = d.setScalar(r, Null, 0)
	var id arena.StrID
	if linked {
		id = d.arena.LinkString(b)
	} else {
		var err error
		if id, err = d.arena.NewString(b); err != nil {
			return r, err
		}
	}
	d.setStringID(r, t, ext, id)
	return r, nil
}

// toContainer turns the node at r into an empty container of type t unless
// it already is one.
func (d *Document) toContainer(r arena.Ref, t Type) arena.Ref {
	if Type(d.arena.Load(r).Kind) == t {
		return r
	}
	r = d.clearValue(r)
	s := d.arena.Load(r)
	s.Kind, s.Flags = uint8(t), arena.FlagContainer
	d.arena.Store(r, s)
	return r
}

// clearChildren releases every child of the container at r and keeps its
// type.
func (d *Document) clearChildren(r arena.Ref) arena.Ref {
	t := Type(d.arena.Load(r).Kind)
	if !t.IsContainer() {
		return r
	}
	r = d.clearValue(r)
	s := d.arena.Load(r)
	s.Kind, s.Flags = uint8(t), arena.FlagContainer
	d.arena.Store(r, s)
	return r
}

func (d *Document) appendChild(parent, child arena.Ref) {
	p := d.arena.Load(parent)
	if tail := p.Tail(); tail == arena.Nil {
		p.SetChildren(child, child)
	} else {
		ts := d.arena.Load(tail)
		ts.Next = child
		d.arena.Store(tail, ts)
		p.SetChildren(p.Head(), child)
	}
	d.arena.Store(parent, p)
}

// newChild allocates a node and appends it to the container at parent. The
// key is stored as the member name when parent is an object. Nothing changes
// on failure.
func (d *Document) newChild(parent arena.Ref, key []byte, t Type) (arena.Ref, error) {
	var keyID arena.StrID
	if Type(d.arena.Load(parent).Kind) == Object {
		var err error
		if keyID, err = d.arena.NewString(key); err != nil {
			return arena.Nil, err
		}
	}
	r, err := d.arena.Alloc()
	if err != nil {
		if keyID != 0 {
			d.arena.ReleaseString(keyID)
		}
		return arena.Nil, err
	}
	s := d.arena.Load(r)
	s.Key, s.Kind = keyID, uint8(t)
	d.arena.Store(r, s)
	d.appendChild(parent, r)
	return r, nil
}

// beginMember resolves the member of obj named by the builder's content,
// consuming the builder. An existing member is reused in place with its
// value reset to Null; otherwise a Null member is appended.
func (d *Document) beginMember(obj *Variant, key *arena.Builder) (Variant, error) {
	parent := obj.refresh()
	if r := d.findMember(parent, key.Bytes()); r != arena.Nil {
		key.Release()
		return d.handle(d.setScalar(r, Null, 0)), nil
	}
	r, err := d.arena.Alloc()
	if err != nil {
		key.Release()
		return Variant{}, err
	}
	s := d.arena.Load(r)
	s.Key, s.Kind = key.Save(), uint8(Null)
	d.arena.Store(r, s)
	d.appendChild(parent, r)
	return Variant{doc: d, ref: r, id: s.ID}, nil
}

// child returns the i-th child of the container at r and its predecessor.
func (d *Document) child(r arena.Ref, i int) (prev, c arena.Ref) {
	s := d.arena.Load(r)
	if !s.IsContainer() || i < 0 {
		return arena.Nil, arena.Nil
	}
	for c = s.Head(); c != arena.Nil && i > 0; i-- {
		prev, c = c, d.arena.Load(c).Next
	}
	return prev, c
}

// member returns the member of the object at r whose name is key, and its
// predecessor.
func (d *Document) member(r arena.Ref, key []byte) (prev, c arena.Ref) {
	s := d.arena.Load(r)
	if Type(s.Kind) != Object {
		return arena.Nil, arena.Nil
	}
	for c = s.Head(); c != arena.Nil; {
		cs := d.arena.Load(c)
		if bytes.Equal(d.arena.Bytes(cs.Key), key) {
			return prev, c
		}
		prev, c = c, cs.Next
	}
	return arena.Nil, arena.Nil
}

func (d *Document) findMember(r arena.Ref, key []byte) arena.Ref {
	_, c := d.member(r, key)
	return c
}

func (d *Document) size(r arena.Ref) int {
	s := d.arena.Load(r)
	return d.count(&s)
}

// count returns the number of children of a container slot.
func (d *Document) count(s *arena.Slot) int {
	if !s.IsContainer() {
		return 0
	}
	n := 0
	for c := s.Head(); c != arena.Nil; c = d.arena.Load(c).Next {
		n++
	}
	return n
}

// removeChild unlinks child from the container at parent and frees it with
// its whole subtree.
func (d *Document) removeChild(parent, prev, child arena.Ref) {
	cs := d.arena.Load(child)
	p := d.arena.Load(parent)
	head, tail := p.Head(), p.Tail()
	if prev == arena.Nil {
		head = cs.Next
	} else {
		ps := d.arena.Load(prev)
		ps.Next = cs.Next
		d.arena.Store(prev, ps)
	}
	if tail == child {
		tail = prev
	}
	p.SetChildren(head, tail)
	d.arena.Store(parent, p)

	var dead []arena.Ref
	d.releaseValue(&cs, &dead)
	if cs.Key != 0 {
		d.arena.ReleaseString(cs.Key)
	}
	d.arena.Free(append(dead, child))
}

func stringBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

func boolPayload(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

var errNullHandle = fmt.Errorf("%w: write through a null handle", ErrNotSupported)

// assign stores val in the node at r, replacing and releasing its previous
// value.
func (d *Document) assign(r arena.Ref, val any) error {
	var err error
	switch v := val.(type) {
	case nil:
		d.setScalar(r, Null, 0)
	case bool:
		d.setScalar(r, Bool, boolPayload(v))
	case int:
		d.setScalar(r, Int, uint64(int64(v)))
	case int8:
		d.setScalar(r, Int, uint64(int64(v)))
	case int16:
		d.setScalar(r, Int, uint64(int64(v)))
	case int32:
		d.setScalar(r, Int, uint64(int64(v)))
	case int64:
		d.setScalar(r, Int, uint64(v))
	case uint:
		d.setScalar(r, Uint, uint64(v))
	case uint8:
		d.setScalar(r, Uint, uint64(v))
	case uint16:
		d.setScalar(r, Uint, uint64(v))
	case uint32:
		d.setScalar(r, Uint, uint64(v))
	case uint64:
		d.setScalar(r, Uint, v)
	case float32:
		d.setScalar(r, Float, math.Float64bits(float64(v)))
	case float64:
		d.setScalar(r, Float, math.Float64bits(v))
	case string:
		_, err = d.setBytes(r, String, 0, stringBytes(v), false)
	case []byte:
		_, err = d.setBytes(r, String, 0, v, false)
	case LinkedString:
		_, err = d.setBytes(r, String, 0, stringBytes(string(v)), true)
	case BinaryValue:
		_, err = d.setBytes(r, Binary, 0, v, false)
	case RawValue:
		_, err = d.setBytes(r, Raw, 0, v, false)
	case ExtensionValue:
		_, err = d.setBytes(r, Extension, v.Type, v.Data, false)
	case uuid.UUID:
		_, err = d.setBytes(r, String, 0, []byte(v.String()), false)
	default:
		return fmt.Errorf("%w: cannot store a value of type %T", ErrNotSupported, val)
	}
	return err
}

// rollback leaves the root of a document whose parse failed in a valid
// state. After an allocation failure what was committed is kept; after any
// other failure a container root keeps its type and loses its content.
func (d *Document) rollback(err error) {
	if errors.Is(err, ErrNoMemory) {
		return
	}
	d.clearChildren(arena.Root)
}
