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

// Package vdoc provides a document model for JSON-like data whose memory is
// managed by a caller-supplied allocator.
//
// A Document owns an arena holding every node of the tree and every string
// it references. Nodes are reached through lightweight handles (Variant,
// ArrayValue and ObjectValue) which stay usable across the internal compaction that
// happens whenever nodes are released. A handle to a missing array index or
// object key is a null handle: it reads as null and costs nothing.
//
// Documents are filled by ParseJSON, a lenient parser accepting single
// quotes, unquoted keys and duplicate keys (the last one wins), or by
// ParseMsgPack. They are rendered with WriteJSON, WriteJSONPretty and
// WriteMsgPack.
//
// Allocation failures never corrupt a document. Every operation that needs
// memory reports ErrNoMemory and leaves the tree in a valid state, so a
// document can be used with a fixed budget (WithCapacity) or with an
// allocator that may refuse requests.
//
// A Document and its handles must not be used from several goroutines at
// once.
package vdoc
