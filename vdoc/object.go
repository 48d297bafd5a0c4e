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
	"iter"

	"github.com/apache/arrow-vdoc/internal/arena"
)

// ObjectValue is a handle to an object node. Member names are unique, setting an
// existing name replaces its value in place. The zero ObjectValue is a null
// handle.
type ObjectValue struct {
	v Variant
}

func (o ObjectValue) resolve() (arena.Ref, bool) {
	r, ok := o.v.resolve()
	if !ok || Type(o.v.doc.arena.Load(r).Kind) != Object {
		return arena.Nil, false
	}
	return r, true
}

// IsNull reports whether o does not reference an object.
func (o ObjectValue) IsNull() bool {
	_, ok := o.resolve()
	return !ok
}

// Variant returns the object as a generic handle.
func (o ObjectValue) Variant() Variant { return o.v }

func (o ObjectValue) Size() int { return o.v.Size() }

// Get returns the member named key, or a null handle.
func (o ObjectValue) Get(key string) Variant { return o.v.Get(key) }

// Has reports whether a member named key exists.
func (o ObjectValue) Has(key string) bool { return !o.v.Get(key).IsNullHandle() }

// Member returns the member named key, appending an Unbound one if there is
// none.
func (o ObjectValue) Member(key string) (Variant, error) {
	r, ok := o.resolve()
	if !ok {
		return Variant{}, errNullHandle
	}
	d := o.v.doc
	if c := d.findMember(r, stringBytes(key)); c != arena.Nil {
		return d.handle(c), nil
	}
	c, err := d.newChild(r, stringBytes(key), Unbound)
	if err != nil {
		return Variant{}, fmt.Errorf("add member %q: %w", key, err)
	}
	return d.handle(c), nil
}

// Set stores val under key, accepting the same types as Variant.Set. An
// existing member keeps its position and gets the new value.
func (o ObjectValue) Set(key string, val any) error {
	m, err := o.Member(key)
	if err != nil {
		return err
	}
	return m.Set(val)
}

// SetArray stores an empty array under key and returns it.
func (o ObjectValue) SetArray(key string) (ArrayValue, error) {
	m, err := o.Member(key)
	if err != nil {
		return ArrayValue{}, err
	}
	if err := m.Clear(); err != nil {
		return ArrayValue{}, err
	}
	return m.ToArray(), nil
}

// SetObject stores an empty object under key and returns it.
func (o ObjectValue) SetObject(key string) (ObjectValue, error) {
	m, err := o.Member(key)
	if err != nil {
		return ObjectValue{}, err
	}
	if err := m.Clear(); err != nil {
		return ObjectValue{}, err
	}
	return m.ToObject(), nil
}

// Remove releases the member named key, if any.
func (o ObjectValue) Remove(key string) {
	r, ok := o.resolve()
	if !ok {
		return
	}
	if prev, c := o.v.doc.member(r, stringBytes(key)); c != arena.Nil {
		o.v.doc.removeChild(r, prev, c)
	}
}

// Clear releases every member.
func (o ObjectValue) Clear() {
	if r, ok := o.resolve(); ok {
		o.v.doc.clearChildren(r)
	}
}

// All iterates over the members in insertion order. The object must not be
// modified during the iteration.
func (o ObjectValue) All() iter.Seq2[string, Variant] {
	return func(yield func(string, Variant) bool) {
		r, ok := o.resolve()
		if !ok {
			return
		}
		ar := o.v.doc.arena
		for c := ar.Load(r).Head(); c != arena.Nil; {
			s := ar.Load(c)
			if !yield(string(ar.Bytes(s.Key)), Variant{doc: o.v.doc, ref: c, id: s.ID}) {
				return
			}
			c = s.Next
		}
	}
}

func (o ObjectValue) String() string { return o.v.String() }
