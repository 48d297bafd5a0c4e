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

// Package memory defines the allocation capability used by document arenas,
// along with allocators that record or sabotage the calls made through it.
package memory

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Allocator is the capability a document arena allocates through.
//
// The method set is the same as arrow's memory.Allocator, so any arrow
// allocator can be passed directly. Unlike arrow's allocators an
// implementation is allowed to fail: Allocate and Reallocate return nil when
// a block of a non-zero size cannot be provided. A failed Reallocate must
// leave b valid and untouched.
type Allocator interface {
	Allocate(size int) []byte
	Reallocate(size int, b []byte) []byte
	Free(b []byte)
}

// DefaultAllocator is used by documents created without an explicit allocator.
var DefaultAllocator Allocator = memory.DefaultAllocator

// NewGoAllocator returns an allocator backed by the Go runtime.
func NewGoAllocator() Allocator {
	return memory.NewGoAllocator()
}

// Failed reports whether b is an allocation failure for a request of size bytes.
func Failed(b []byte, size int) bool {
	return b == nil && size > 0
}
