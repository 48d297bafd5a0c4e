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

import "github.com/google/uuid"

// LinkedString is a string stored by reference: the document keeps pointing
// at the caller's memory instead of copying it. The string must outlive
// every use of the node.
type LinkedString string

// BinaryValue is stored as a Binary node holding a copy of the bytes.
type BinaryValue []byte

// RawValue is already-encoded output. It is stored as a Raw node holding a
// copy of the bytes, which the writers emit verbatim in either format.
type RawValue []byte

// ExtensionValue is stored as an Extension node: an application type code
// and a copy of the payload.
type ExtensionValue struct {
	Type int8
	Data []byte
}

// UUIDExtension returns an extension value carrying the 16 bytes of id
// under the given type code.
func UUIDExtension(code int8, id uuid.UUID) ExtensionValue {
	return ExtensionValue{Type: code, Data: id[:]}
}

// AsUUID decodes a 16-byte extension node, or a string node holding the
// textual form of a UUID.
func (v Variant) AsUUID() (uuid.UUID, bool) {
	switch v.Type() {
	case Extension:
		_, data, _ := v.AsExtension()
		id, err := uuid.FromBytes(data)
		return id, err == nil
	case String:
		id, err := uuid.ParseBytes(v.AsBytes())
		return id, err == nil
	}
	return uuid.Nil, false
}
