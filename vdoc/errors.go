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
	"errors"

	"github.com/apache/arrow-vdoc/internal/arena"
)

// Errors reported by parsing, serialization and tree mutation. Returned
// errors wrap one of these with position or context information; classify
// them with errors.Is.
var (
	// ErrIncompleteInput means the input ended before the value was complete.
	ErrIncompleteInput = errors.New("incomplete input")
	// ErrInvalidInput means the input is not well formed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoMemory means the allocator refused a request or the document's
	// capacity is exhausted.
	ErrNoMemory = arena.ErrNoMemory
	// ErrTooDeep means the input nests deeper than the nesting limit.
	ErrTooDeep = errors.New("too deep")
	// ErrEmptyInput means the input holds nothing but whitespace.
	ErrEmptyInput = errors.New("empty input")
	// ErrNotSupported means the operation cannot be applied to this handle
	// or value.
	ErrNotSupported = errors.New("not supported")
)
