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

import "github.com/apache/arrow-vdoc/memory"

// DefaultNestingLimit is the nesting depth accepted by the parsers unless
// WithNestingLimit says otherwise.
const DefaultNestingLimit = 10

type config struct {
	mem      memory.Allocator
	capacity int
}

// Option configures a Document.
type Option func(*config)

// WithAllocator sets the allocator every block of the document comes from.
// The default is memory.DefaultAllocator.
func WithAllocator(mem memory.Allocator) Option {
	return func(c *config) {
		c.mem = mem
	}
}

// WithCapacity caps the bytes the document may hold at once. Requests that
// would exceed it fail with ErrNoMemory. Zero means no cap.
func WithCapacity(bytes int) Option {
	return func(c *config) {
		c.capacity = bytes
	}
}

type parseConfig struct {
	nestingLimit int
	filter       filter
}

// ParseOption configures ParseJSON and ParseMsgPack.
type ParseOption func(*parseConfig)

// WithNestingLimit sets how deep arrays and objects may nest. Entering a
// container beyond it fails with ErrTooDeep.
func WithNestingLimit(n int) ParseOption {
	return func(c *parseConfig) {
		c.nestingLimit = n
	}
}

// WithFilter keeps only the parts of the input selected by the filter
// document f. A true value keeps a whole subtree, an object keeps the members
// it lists (a "*" member applies to every other key) and an array applies
// its first element to every element of the input. Values filtered out are
// skipped without allocating. f must not belong to the document being parsed.
func WithFilter(f Variant) ParseOption {
	return func(c *parseConfig) {
		c.filter = filter{v: f}
	}
}

func newParseConfig(opts []ParseOption) parseConfig {
	cfg := parseConfig{nestingLimit: DefaultNestingLimit, filter: keepAll}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}
