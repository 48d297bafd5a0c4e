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
	"math"

	"github.com/apache/arrow-vdoc/internal/arena"
	"github.com/goccy/go-json"
)

// Variant is a handle to a node of a document. It is a small value meant to
// be passed by copy.
//
// The zero Variant, like any handle to a missing index or key, is a null
// handle: reads return zero values and writes fail with ErrNotSupported.
// A handle whose node has been released also behaves as a null handle.
type Variant struct {
	doc *Document
	ref arena.Ref
	id  uint32
}

// resolve returns the current ref of the node, following it if compaction
// moved it.
func (v Variant) resolve() (arena.Ref, bool) {
	if v.doc == nil || v.ref == arena.Nil {
		return arena.Nil, false
	}
	a := v.doc.arena
	if a.Valid(v.ref, v.id) {
		return v.ref, true
	}
	r := a.Find(v.id)
	return r, r != arena.Nil
}

// refresh is resolve for handles held across mutations: the handle itself
// is updated.
func (v *Variant) refresh() arena.Ref {
	r, _ := v.resolve()
	v.ref = r
	return r
}

func (v Variant) slot() (arena.Slot, bool) {
	r, ok := v.resolve()
	if !ok {
		return arena.Slot{}, false
	}
	return v.doc.arena.Load(r), true
}

// IsNullHandle reports whether v references no node at all.
func (v Variant) IsNullHandle() bool {
	_, ok := v.resolve()
	return !ok
}

// Type returns the tag of the node, Unbound for a null handle.
func (v Variant) Type() Type {
	s, _ := v.slot()
	return Type(s.Kind)
}

// Size returns the number of elements or members of a container, zero for
// anything else.
func (v Variant) Size() int {
	r, ok := v.resolve()
	if !ok {
		return 0
	}
	return v.doc.size(r)
}

// Index returns the i-th element of an array. Out of range indexes and
// non-array nodes give a null handle.
func (v Variant) Index(i int) Variant {
	r, ok := v.resolve()
	if !ok || Type(v.doc.arena.Load(r).Kind) != Array {
		return Variant{}
	}
	if _, c := v.doc.child(r, i); c != arena.Nil {
		return v.doc.handle(c)
	}
	return Variant{}
}

// Get returns the member of an object named key, or a null handle.
func (v Variant) Get(key string) Variant {
	return v.getBytes(stringBytes(key))
}

func (v Variant) getBytes(key []byte) Variant {
	r, ok := v.resolve()
	if !ok {
		return Variant{}
	}
	if c := v.doc.findMember(r, key); c != arena.Nil {
		return v.doc.handle(c)
	}
	return Variant{}
}

// Set replaces the value of the node with val. Accepted types are nil, bool,
// the integer and float types, string, []byte (stored as a string),
// LinkedString, BinaryValue, RawValue, ExtensionValue and uuid.UUID (stored
// as its textual form). The previous value is released first; if the new value
// cannot be allocated the node is left Null.
func (v Variant) Set(val any) error {
	r, ok := v.resolve()
	if !ok {
		return errNullHandle
	}
	return v.doc.assign(r, val)
}

func (v Variant) setScalar(t Type, payload uint64) error {
	r, ok := v.resolve()
	if !ok {
		return errNullHandle
	}
	v.doc.setScalar(r, t, payload)
	return nil
}

func (v Variant) SetNull() error           { return v.setScalar(Null, 0) }
func (v Variant) SetBool(b bool) error     { return v.setScalar(Bool, boolPayload(b)) }
func (v Variant) SetInt(i int64) error     { return v.setScalar(Int, uint64(i)) }
func (v Variant) SetUint(u uint64) error   { return v.setScalar(Uint, u) }
func (v Variant) SetFloat(f float64) error { return v.setScalar(Float, math.Float64bits(f)) }

// SetString stores an owned copy of s.
func (v Variant) SetString(s string) error {
	r, ok := v.resolve()
	if !ok {
		return errNullHandle
	}
	_, err := v.doc.setBytes(r, String, 0, stringBytes(s), false)
	return err
}

// Clear makes the node Unbound, releasing whatever it held.
func (v Variant) Clear() error {
	r, ok := v.resolve()
	if !ok {
		return errNullHandle
	}
	v.doc.clearValue(r)
	return nil
}

// ToArray turns the node into an empty array unless it already is an array,
// and returns it. A null handle gives a null ArrayValue.
func (v Variant) ToArray() ArrayValue {
	r, ok := v.resolve()
	if !ok {
		return ArrayValue{}
	}
	return ArrayValue{v.doc.handle(v.doc.toContainer(r, Array))}
}

// ToObject turns the node into an empty object unless it already is an
// object, and returns it. A null handle gives a null ObjectValue.
func (v Variant) ToObject() ObjectValue {
	r, ok := v.resolve()
	if !ok {
		return ObjectValue{}
	}
	return ObjectValue{v.doc.handle(v.doc.toContainer(r, Object))}
}

// AsArray returns the node as an array, or a null ArrayValue if it is not one.
func (v Variant) AsArray() ArrayValue {
	if v.Type() != Array {
		return ArrayValue{}
	}
	return ArrayValue{v}
}

// AsObject returns the node as an object, or a null ObjectValue if it is not one.
func (v Variant) AsObject() ObjectValue {
	if v.Type() != Object {
		return ObjectValue{}
	}
	return ObjectValue{v}
}

// String renders the node as compact JSON. A null handle renders as null.
func (v Variant) String() string {
	var buf bytes.Buffer
	WriteJSON(&buf, v)
	return buf.String()
}

func (v Variant) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := WriteJSON(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode unmarshals the JSON rendering of the node into dst.
func (v Variant) Decode(dst any) error {
	b, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dst)
}
