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
	"github.com/apache/arrow-vdoc/internal/arena"
	"github.com/apache/arrow-vdoc/memory"
)

// Stats describes the memory a document holds.
type Stats = arena.Stats

// Document is the owner of a tree of nodes and of the strings they
// reference. The zero value is not usable, create documents with
// NewDocument.
type Document struct {
	arena *arena.Arena
}

// NewDocument returns an empty document. Its root is Unbound.
func NewDocument(opts ...Option) *Document {
	cfg := config{mem: memory.DefaultAllocator}
	for _, o := range opts {
		o(&cfg)
	}
	return &Document{arena: arena.New(cfg.mem, cfg.capacity)}
}

// Root returns the handle of the root node. It is never a null handle.
func (d *Document) Root() Variant {
	return Variant{doc: d, ref: arena.Root}
}

// Clear releases every node and string. The root becomes Unbound and
// handles to other nodes become null handles.
func (d *Document) Clear() { d.arena.Reset() }

// Release frees all the memory held by the document. The document stays
// usable and empty afterwards.
func (d *Document) Release() { d.Clear() }

// Stats reports the blocks currently held by the document.
func (d *Document) Stats() Stats { return d.arena.Stats() }

// String renders the root as compact JSON.
func (d *Document) String() string { return d.Root().String() }
