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

package arena

import "github.com/apache/arrow-vdoc/memory"

// DefaultBuilderCapacity is the size of the first block of a Builder started
// without a hint.
const DefaultBuilderCapacity = 32

// Builder accumulates the bytes of a string of unknown final length in an
// allocator block that doubles when full. A started builder must end with
// either Save or Release.
type Builder struct {
	a   *Arena
	buf []byte
	n   int
}

// NewBuilder returns an idle builder bound to a.
func (a *Arena) NewBuilder() Builder { return Builder{a: a} }

// Start allocates the initial block. A non-positive hint selects
// DefaultBuilderCapacity.
func (b *Builder) Start(hint int) error {
	if hint <= 0 {
		hint = DefaultBuilderCapacity
	}
	if !b.a.fits(hint) {
		return ErrNoMemory
	}
	buf := b.a.mem.Allocate(hint)
	if memory.Failed(buf, hint) {
		return ErrNoMemory
	}
	b.buf, b.n = buf, 0
	b.a.pending += len(buf)
	return nil
}

// Started reports whether the builder holds a block.
func (b *Builder) Len() int { return b.n }

// Bytes returns the accumulated content. It aliases the builder's block.
func (b *Builder) Bytes() []byte { return b.buf[:b.n] }

func (b *Builder) grow(need int) error {
	size := max(len(b.buf), 1) * 2
	for size < need {
		size *= 2
	}
	if !b.a.fits(size - len(b.buf)) {
		return ErrNoMemory
	}
	buf := b.a.mem.Reallocate(size, b.buf)
	if memory.Failed(buf, size) {
		return ErrNoMemory
	}
	b.a.pending += len(buf) - len(b.buf)
	b.buf = buf
	return nil
}

// AppendByte adds one byte. On failure the content so far is intact.
func (b *Builder) AppendByte(c byte) error {
	if b.n == len(b.buf) {
		if err := b.grow(b.n + 1); err != nil {
			return err
		}
	}
	b.buf[b.n] = c
	b.n++
	return nil
}

// Append adds p. On failure the content so far is intact.
func (b *Builder) Append(p []byte) error {
	if need := b.n + len(p); need > len(b.buf) {
		if err := b.grow(need); err != nil {
			return err
		}
	}
	b.n += copy(b.buf[b.n:], p)
	return nil
}

// Save shrinks the block to the content length and registers it as an owned
// string. The builder is idle afterwards.
func (b *Builder) Save() StrID {
	buf, held := b.buf, len(b.buf)
	switch {
	case b.n == 0:
		if buf != nil {
			b.a.mem.Free(buf)
		}
		buf = nil
	case b.n < len(buf):
		if out := b.a.mem.Reallocate(b.n, buf); !memory.Failed(out, b.n) {
			buf = out
		}
	}
	b.a.pending -= held
	b.a.strBytes += len(buf)
	id := b.a.register(str{buf: buf, n: b.n})
	b.buf, b.n = nil, 0
	return id
}

// Release frees the block of an abandoned builder. It is a no-op on an idle
// builder.
func (b *Builder) Release() {
	if b.buf != nil {
		b.a.pending -= len(b.buf)
		b.a.mem.Free(b.buf)
	}
	b.buf, b.n = nil, 0
}
