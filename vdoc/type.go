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

//go:generate go tool stringer -type=Type -linecomment -output=type_string.go

// Type is the tag of a node.
type Type uint8

const (
	// Unbound is a node that has never been assigned.
	Unbound Type = iota // Unbound
	Null                // Null
	Bool                // Bool
	Int                 // Int
	Uint                // Uint
	Float               // Float
	String              // String
	Binary              // Binary
	Extension           // Extension
	Raw                 // Raw
	Array               // Array
	Object              // Object
)

// IsContainer reports whether nodes of this type hold children.
func (t Type) IsContainer() bool { return t == Array || t == Object }
