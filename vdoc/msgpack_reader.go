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
	"bytes"
	"io"
	"math"

	"github.com/apache/arrow-vdoc/internal/arena"
)

// ParseMsgPack clears d and fills it with the first MessagePack value read
// from r. Map keys must be strings; a repeated key replaces the earlier
// value. Failures leave the document as ParseJSON does.
func ParseMsgPack(d *Document, r io.ByteReader, opts ...ParseOption) error {
	cfg := newParseConfig(opts)
	d.Clear()
	p := msgpackParser{d: d, src: source{r: r}}
	if _, ok := p.src.peek(); !ok {
		return p.src.empty()
	}
	root := d.Root()
	err := p.parseValue(&root, cfg.filter, cfg.nestingLimit)
	if err != nil {
		d.rollback(err)
	}
	return err
}

// ParseMsgPackBytes is ParseMsgPack reading from b.
func ParseMsgPackBytes(d *Document, b []byte, opts ...ParseOption) error {
	return ParseMsgPack(d, bytes.NewReader(b), opts...)
}

type msgpackParser struct {
	d   *Document
	src source
}

// readUint reads a big-endian unsigned integer of the given width.
func (p *msgpackParser) readUint(width int) (uint64, error) {
	var u uint64
	for i := 0; i < width; i++ {
		c, err := p.src.readByte()
		if err != nil {
			return 0, err
		}
		u = u<<8 | uint64(c)
	}
	return u, nil
}

func (p *msgpackParser) readInt(width int) (int64, error) {
	u, err := p.readUint(width)
	if err != nil {
		return 0, err
	}
	shift := 64 - 8*width
	return int64(u<<shift) >> shift, nil
}

func (p *msgpackParser) setScalar(n *Variant, f filter, t Type, payload uint64) {
	if f.allowValue() {
		p.d.setScalar(n.refresh(), t, payload)
	}
}

func (p *msgpackParser) parseValue(n *Variant, f filter, depth int) error {
	c, err := p.src.readByte()
	if err != nil {
		return err
	}
	switch {
	case c <= 0x7f:
		p.setScalar(n, f, Uint, uint64(c))
		return nil
	case c >= 0xe0:
		p.setScalar(n, f, Int, uint64(int64(int8(c))))
		return nil
	case c <= 0x8f:
		return p.parseMap(n, f, depth, int(c&0x0f))
	case c <= 0x9f:
		return p.parseArray(n, f, depth, int(c&0x0f))
	case c <= 0xbf:
		return p.parseBytes(n, f, String, 0, int(c&0x1f))
	}

	switch c {
	case 0xc0:
		p.setScalar(n, f, Null, 0)
	case 0xc2, 0xc3:
		p.setScalar(n, f, Bool, uint64(c&1))
	case 0xc4, 0xc5, 0xc6:
		return p.parseSized(n, f, Binary, 1<<(c-0xc4))
	case 0xc7, 0xc8, 0xc9:
		size, err := p.readUint(1 << (c - 0xc7))
		if err != nil {
			return err
		}
		return p.parseExtension(n, f, int(size))
	case 0xca:
		u, err := p.readUint(4)
		if err != nil {
			return err
		}
		p.setScalar(n, f, Float, math.Float64bits(float64(math.Float32frombits(uint32(u)))))
	case 0xcb:
		u, err := p.readUint(8)
		if err != nil {
			return err
		}
		p.setScalar(n, f, Float, u)
	case 0xcc, 0xcd, 0xce, 0xcf:
		u, err := p.readUint(1 << (c - 0xcc))
		if err != nil {
			return err
		}
		p.setScalar(n, f, Uint, u)
	case 0xd0, 0xd1, 0xd2, 0xd3:
		i, err := p.readInt(1 << (c - 0xd0))
		if err != nil {
			return err
		}
		p.setScalar(n, f, Int, uint64(i))
	case 0xd4, 0xd5, 0xd6, 0xd7, 0xd8:
		return p.parseExtension(n, f, 1<<(c-0xd4))
	case 0xd9, 0xda, 0xdb:
		return p.parseSized(n, f, String, 1<<(c-0xd9))
	case 0xdc, 0xdd:
		size, err := p.readUint(2 << (c - 0xdc))
		if err != nil {
			return err
		}
		return p.parseArray(n, f, depth, int(size))
	case 0xde, 0xdf:
		size, err := p.readUint(2 << (c - 0xde))
		if err != nil {
			return err
		}
		return p.parseMap(n, f, depth, int(size))
	default:
		return p.src.invalid(c, "a MessagePack type")
	}
	return nil
}

// parseSized reads a length of the given width, then that many bytes.
func (p *msgpackParser) parseSized(n *Variant, f filter, t Type, width int) error {
	size, err := p.readUint(width)
	if err != nil {
		return err
	}
	return p.parseBytes(n, f, t, 0, int(size))
}

func (p *msgpackParser) parseExtension(n *Variant, f filter, size int) error {
	code, err := p.src.readByte()
	if err != nil {
		return err
	}
	return p.parseBytes(n, f, Extension, int8(code), size)
}

// maxSizeHint caps the block reserved for a declared length. Longer payloads
// grow the builder as their bytes arrive.
const maxSizeHint = 4096

// readInto reads size bytes into a builder, or skips them when b is nil. The
// builder starts with exactly size bytes when size is at most maxSizeHint.
func (p *msgpackParser) readInto(b *arena.Builder, size int, what string) error {
	if b != nil {
		if err := b.Start(min(size, maxSizeHint)); err != nil {
			return p.src.noMemory(err, what)
		}
	}
	for i := 0; i < size; i++ {
		c, err := p.src.readByte()
		if err == nil && b != nil {
			err = b.AppendByte(c)
		}
		if err != nil {
			if b != nil {
				b.Release()
			}
			return err
		}
	}
	return nil
}

func (p *msgpackParser) parseBytes(n *Variant, f filter, t Type, code int8, size int) error {
	if !f.allowValue() {
		return p.readInto(nil, size, "")
	}
	var id arena.StrID
	if size == 0 {
		var err error
		if id, err = p.d.arena.NewString(nil); err != nil {
			return err
		}
	} else {
		b := p.d.arena.NewBuilder()
		if err := p.readInto(&b, size, t.String()); err != nil {
			return err
		}
		id = b.Save()
	}
	r := p.d.clearValue(n.refresh())
	p.d.setStringID(r, t, code, id)
	return nil
}

func (p *msgpackParser) parseArray(n *Variant, f filter, depth, size int) error {
	if depth == 0 {
		return p.src.tooDeep()
	}
	var ef filter
	if f.allowArray() {
		n.ref = p.d.toContainer(n.refresh(), Array)
		ef = f.element()
	}
	for i := 0; i < size; i++ {
		var elem Variant
		if ef.allow() {
			r, err := p.d.newChild(n.refresh(), nil, Null)
			if err != nil {
				return p.src.noMemory(err, "array element")
			}
			elem = p.d.handle(r)
		}
		if err := p.parseValue(&elem, ef, depth-1); err != nil {
			return err
		}
	}
	return nil
}

func (p *msgpackParser) parseMap(n *Variant, f filter, depth, size int) error {
	if depth == 0 {
		return p.src.tooDeep()
	}
	keep := f.allowObject()
	if keep {
		n.ref = p.d.toContainer(n.refresh(), Object)
	}
	for i := 0; i < size; i++ {
		keySize, err := p.keySize()
		if err != nil {
			return err
		}
		var key arena.Builder
		var kb *arena.Builder
		if keep {
			key = p.d.arena.NewBuilder()
			kb = &key
		}
		if err := p.readInto(kb, keySize, "member name"); err != nil {
			return err
		}

		var mf filter
		if keep {
			mf = f.member(key.Bytes())
		}
		if mf.allow() {
			member, err := p.d.beginMember(n, &key)
			if err != nil {
				return p.src.noMemory(err, "object member")
			}
			if err := p.parseValue(&member, mf, depth-1); err != nil {
				return err
			}
		} else {
			key.Release()
			var skipped Variant
			if err := p.parseValue(&skipped, mf, depth-1); err != nil {
				return err
			}
		}
	}
	return nil
}

// keySize reads the header of a map key, which must be a string.
func (p *msgpackParser) keySize() (int, error) {
	c, err := p.src.readByte()
	if err != nil {
		return 0, err
	}
	switch {
	case c&0xe0 == 0xa0:
		return int(c & 0x1f), nil
	case c >= 0xd9 && c <= 0xdb:
		size, err := p.readUint(1 << (c - 0xd9))
		return int(size), err
	}
	return 0, p.src.invalid(c, "a string key")
}
