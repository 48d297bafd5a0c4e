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

// ArrayValue is a handle to an array node. The zero ArrayValue is a null handle.
type ArrayValue struct {
	v Variant
}

func (a ArrayValue) resolve() (arena.Ref, bool) {
	r, ok := a.v.resolve()
	if !ok || Type(a.v.doc.arena.Load(r).Kind) != Array {
		return arena.Nil, false
	}
	return r, true
}

// IsNull reports whether a does not reference an array.
func (a ArrayValue) IsNull() bool {
	_, ok := a.resolve()
	return !ok
}

// Variant returns the array as a generic handle.
func (a ArrayValue) Variant() Variant { return a.v }

func (a ArrayValue) Size() int { return a.v.Size() }

// At returns the i-th element, or a null handle when i is out of range.
func (a ArrayValue) At(i int) Variant { return a.v.Index(i) }

// AddElement appends an Unbound element and returns it.
func (a ArrayValue) AddElement() (Variant, error) {
	r, ok := a.resolve()
	if !ok {
		return Variant{}, errNullHandle
	}
	c, err := a.v.doc.newChild(r, nil, Unbound)
	if err != nil {
		return Variant{}, fmt.Errorf("add array element: %w", err)
	}
	return a.v.doc.handle(c), nil
}

// Add appends val, accepting the same types as Variant.Set. If the element
// was added but its value could not be allocated, it stays as Null.
func (a ArrayValue) Add(val any) error {
	elem, err := a.AddElement()
	if err != nil {
		return err
	}
	return elem.Set(val)
}

// AddArray appends an empty array and returns it.
func (a ArrayValue) AddArray() (ArrayValue, error) {
	elem, err := a.AddElement()
	if err != nil {
		return ArrayValue{}, err
	}
	return elem.ToArray(), nil
}

// AddObject appends an empty object and returns it.
func (a ArrayValue) AddObject() (ObjectValue, error) {
	elem, err := a.AddElement()
	if err != nil {
		return ObjectValue{}, err
	}
	return elem.ToObject(), nil
}

// Remove releases the i-th element. Out of range indexes are ignored.
func (a ArrayValue) Remove(i int) {
	r, ok := a.resolve()
	if !ok {
		return
	}
	if prev, c := a.v.doc.child(r, i); c != arena.Nil {
		a.v.doc.removeChild(r, prev, c)
	}
}

// Clear releases every element.
func (a ArrayValue) Clear() {
	if r, ok := a.resolve(); ok {
		a.v.doc.clearChildren(r)
	}
}

// All iterates over the elements in order. The array must not be modified
// during the iteration.
func (a ArrayValue) All() iter.Seq2[int, Variant] {
	return func(yield func(int, Variant) bool) {
		r, ok := a.resolve()
		if !ok {
			return
		}
		ar := a.v.doc.arena
		i := 0
		for c := ar.Load(r).Head(); c != arena.Nil; i++ {
			s := ar.Load(c)
			if !yield(i, Variant{doc: a.v.doc, ref: c, id: s.ID}) {
				return
			}
			c = s.Next
		}
	}
}

func (a ArrayValue) String() string { return a.v.String() }
