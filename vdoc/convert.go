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

import "math"

const (
	// float64 bounds of the integer ranges, both exact powers of two
	minInt64Float  = -(1 << 63)
	maxInt64Float  = 1 << 63
	maxUint64Float = 1 << 64
)

func (v Variant) IsNull() bool {
	t := v.Type()
	return t == Unbound || t == Null
}

func (v Variant) IsUnbound() bool   { return v.Type() == Unbound }
func (v Variant) IsBool() bool      { return v.Type() == Bool }
func (v Variant) IsString() bool    { return v.Type() == String }
func (v Variant) IsBinary() bool    { return v.Type() == Binary }
func (v Variant) IsExtension() bool { return v.Type() == Extension }
func (v Variant) IsRaw() bool       { return v.Type() == Raw }
func (v Variant) IsArray() bool     { return v.Type() == Array }
func (v Variant) IsObject() bool    { return v.Type() == Object }

// IsInt reports whether the node holds an integer representable as int64.
func (v Variant) IsInt() bool {
	s, _ := v.slot()
	switch Type(s.Kind) {
	case Int:
		return true
	case Uint:
		return s.Payload <= math.MaxInt64
	}
	return false
}

// IsUint reports whether the node holds an integer representable as uint64.
func (v Variant) IsUint() bool {
	s, _ := v.slot()
	switch Type(s.Kind) {
	case Uint:
		return true
	case Int:
		return int64(s.Payload) >= 0
	}
	return false
}

// IsFloat reports whether the node holds any number.
func (v Variant) IsFloat() bool {
	switch v.Type() {
	case Int, Uint, Float:
		return true
	}
	return false
}

// AsBool converts the node to a bool: numbers are true when non-zero, every
// non-boolean, non-numeric node is false.
func (v Variant) AsBool() bool {
	s, _ := v.slot()
	switch Type(s.Kind) {
	case Bool, Int, Uint:
		return s.Payload != 0
	case Float:
		return math.Float64frombits(s.Payload) != 0
	}
	return false
}

// AsInt converts the node to an int64. Values out of range give zero.
func (v Variant) AsInt() int64 {
	s, _ := v.slot()
	switch Type(s.Kind) {
	case Bool, Int:
		return int64(s.Payload)
	case Uint:
		if s.Payload <= math.MaxInt64 {
			return int64(s.Payload)
		}
	case Float:
		if f := math.Float64frombits(s.Payload); f >= minInt64Float && f < maxInt64Float {
			return int64(f)
		}
	}
	return 0
}

// AsUint converts the node to a uint64. Values out of range give zero.
func (v Variant) AsUint() uint64 {
	s, _ := v.slot()
	switch Type(s.Kind) {
	case Bool, Uint:
		return s.Payload
	case Int:
		if int64(s.Payload) >= 0 {
			return s.Payload
		}
	case Float:
		if f := math.Float64frombits(s.Payload); f >= 0 && f < maxUint64Float {
			return uint64(f)
		}
	}
	return 0
}

// AsFloat converts the node to a float64.
func (v Variant) AsFloat() float64 {
	s, _ := v.slot()
	switch Type(s.Kind) {
	case Bool, Uint:
		return float64(s.Payload)
	case Int:
		return float64(int64(s.Payload))
	case Float:
		return math.Float64frombits(s.Payload)
	}
	return 0
}

// AsString returns a copy of a string node's content, "" for anything else.
func (v Variant) AsString() string {
	if v.Type() != String {
		return ""
	}
	return string(v.AsBytes())
}

// AsBytes returns the content of a string, binary, raw or extension node. The
// slice aliases document memory and is valid until the node changes.
func (v Variant) AsBytes() []byte {
	s, ok := v.slot()
	if !ok || !s.IsString() {
		return nil
	}
	return v.doc.arena.Bytes(s.Str())
}

// AsExtension returns the type code and payload of an extension node.
func (v Variant) AsExtension() (code int8, data []byte, ok bool) {
	s, _ := v.slot()
	if Type(s.Kind) != Extension {
		return 0, nil, false
	}
	return s.Ext, v.doc.arena.Bytes(s.Str()), true
}
