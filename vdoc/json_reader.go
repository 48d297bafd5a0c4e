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
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
	"unsafe"

	"github.com/apache/arrow-vdoc/internal/arena"
)

// maxNumberLength is the longest number literal the parser accepts.
const maxNumberLength = 63

// ParseJSON clears d and fills it with the first JSON value read from r.
// Bytes after that value are not read.
//
// The grammar is lenient: strings and member names may use single quotes,
// member names may be bare words of letters, digits and underscores, and a
// repeated member name replaces the earlier value while keeping its
// position.
//
// On a syntax error, a premature end or ErrTooDeep, a container root keeps
// its type but loses its content. On ErrNoMemory everything parsed before
// the failure is kept.
func ParseJSON(d *Document, r io.ByteReader, opts ...ParseOption) error {
	cfg := newParseConfig(opts)
	d.Clear()
	p := jsonParser{d: d, src: source{r: r}}
	if _, ok := p.skipSpace(); !ok {
		return p.src.empty()
	}
	root := d.Root()
	err := p.parseValue(&root, cfg.filter, cfg.nestingLimit)
	if err != nil {
		d.rollback(err)
	}
	return err
}

// ParseJSONBytes is ParseJSON reading from b.
func ParseJSONBytes(d *Document, b []byte, opts ...ParseOption) error {
	return ParseJSON(d, bytes.NewReader(b), opts...)
}

// ParseJSONString is ParseJSON reading from s.
func ParseJSONString(d *Document, s string, opts ...ParseOption) error {
	return ParseJSON(d, strings.NewReader(s), opts...)
}

type jsonParser struct {
	d   *Document
	src source
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isWordByte(c byte) bool {
	return c == '_' || ('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isNumberByte(c byte) bool {
	switch c {
	case '+', '-', '.', 'e', 'E':
		return true
	}
	return '0' <= c && c <= '9'
}

// skipSpace consumes whitespace and peeks at the byte after it.
func (p *jsonParser) skipSpace() (byte, bool) {
	for {
		c, ok := p.src.peek()
		if !ok || !isSpace(c) {
			return c, ok
		}
		p.src.next()
	}
}

// token is skipSpace inside a value, where the end of input is an error.
func (p *jsonParser) token() (byte, error) {
	c, ok := p.skipSpace()
	if !ok {
		return 0, p.src.incomplete()
	}
	return c, nil
}

// parseValue parses one value into n. A filter that does not allow the value
// makes the parser skip it without touching n.
func (p *jsonParser) parseValue(n *Variant, f filter, depth int) error {
	c, err := p.token()
	if err != nil {
		return err
	}
	switch {
	case c == '{':
		return p.parseObject(n, f, depth)
	case c == '[':
		return p.parseArray(n, f, depth)
	case c == '"' || c == '\'':
		return p.parseString(n, f)
	case c == 't':
		return p.parseLiteral(n, f, "true", Bool, 1)
	case c == 'f':
		return p.parseLiteral(n, f, "false", Bool, 0)
	case c == 'n':
		return p.parseLiteral(n, f, "null", Null, 0)
	case c != 'e' && c != 'E' && isNumberByte(c):
		return p.parseNumber(n, f)
	}
	return p.src.invalid(c, "a value")
}

func (p *jsonParser) parseObject(n *Variant, f filter, depth int) error {
	if depth == 0 {
		return p.src.tooDeep()
	}
	p.src.next()
	keep := f.allowObject()
	if keep {
		n.ref = p.d.toContainer(n.refresh(), Object)
	}

	c, err := p.token()
	if err != nil {
		return err
	}
	if c == '}' {
		p.src.next()
		return nil
	}
	for {
		var key arena.Builder
		var kb *arena.Builder
		if keep {
			key = p.d.arena.NewBuilder()
			kb = &key
		}
		if err := p.parseKey(kb); err != nil {
			return err
		}
		c, err := p.token()
		if err == nil && c != ':' {
			err = p.src.invalid(c, "':'")
		}
		if err != nil {
			key.Release()
			return err
		}
		p.src.next()

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

		if c, err = p.token(); err != nil {
			return err
		}
		switch c {
		case '}':
			p.src.next()
			return nil
		case ',':
			p.src.next()
		default:
			return p.src.invalid(c, "',' or '}'")
		}
	}
}

func (p *jsonParser) parseArray(n *Variant, f filter, depth int) error {
	if depth == 0 {
		return p.src.tooDeep()
	}
	p.src.next()
	keep := f.allowArray()
	var ef filter
	if keep {
		n.ref = p.d.toContainer(n.refresh(), Array)
		ef = f.element()
	}

	c, err := p.token()
	if err != nil {
		return err
	}
	if c == ']' {
		p.src.next()
		return nil
	}
	for {
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

		if c, err = p.token(); err != nil {
			return err
		}
		switch c {
		case ']':
			p.src.next()
			return nil
		case ',':
			p.src.next()
		default:
			return p.src.invalid(c, "',' or ']'")
		}
	}
}

// parseKey reads a member name into b, or skips it when b is nil. On
// failure b is released.
func (p *jsonParser) parseKey(b *arena.Builder) error {
	c, err := p.token()
	if err != nil {
		return err
	}
	switch {
	case c == '"' || c == '\'':
		return p.parseQuoted(b)
	case !isWordByte(c):
		return p.src.invalid(c, "a member name")
	}
	if b != nil {
		if err := b.Start(0); err != nil {
			return p.src.noMemory(err, "member name")
		}
	}
	for {
		c, ok := p.src.peek()
		if !ok || !isWordByte(c) {
			return nil
		}
		if err := p.emit(b, c); err != nil {
			b.Release()
			return err
		}
		p.src.next()
	}
}

func (p *jsonParser) parseString(n *Variant, f filter) error {
	if !f.allowValue() {
		return p.parseQuoted(nil)
	}
	b := p.d.arena.NewBuilder()
	if err := p.parseQuoted(&b); err != nil {
		return err
	}
	r := p.d.clearValue(n.refresh())
	p.d.setStringID(r, String, 0, b.Save())
	return nil
}

// parseQuoted reads a quoted string into b, or skips it when b is nil. On
// failure b is released.
func (p *jsonParser) parseQuoted(b *arena.Builder) error {
	quote, _ := p.src.peek()
	p.src.next()
	if b != nil {
		if err := b.Start(0); err != nil {
			return p.src.noMemory(err, "string")
		}
	}
	if err := p.quotedBody(b, quote); err != nil {
		if b != nil {
			b.Release()
		}
		return err
	}
	return nil
}

func (p *jsonParser) quotedBody(b *arena.Builder, quote byte) error {
	for {
		c, err := p.src.readByte()
		if err != nil {
			return err
		}
		switch c {
		case quote:
			return nil
		case '\\':
			c, err := p.src.readByte()
			if err != nil {
				return err
			}
			err = p.escape(b, c)
			if err != nil {
				return err
			}
		default:
			if err := p.emit(b, c); err != nil {
				return err
			}
		}
	}
}

// escape decodes the escape sequence starting with c, the byte after the
// backslash.
func (p *jsonParser) escape(b *arena.Builder, c byte) error {
	switch c {
	case '"', '\'', '\\', '/':
		return p.emit(b, c)
	case 'b':
		return p.emit(b, '\b')
	case 'f':
		return p.emit(b, '\f')
	case 'n':
		return p.emit(b, '\n')
	case 'r':
		return p.emit(b, '\r')
	case 't':
		return p.emit(b, '\t')
	case 'u':
		return p.unicodeEscape(b)
	}
	return p.src.invalid(c, "an escape sequence")
}

func (p *jsonParser) unicodeEscape(b *arena.Builder) error {
	r, err := p.hex4()
	if err != nil {
		return err
	}
	if !utf16.IsSurrogate(r) {
		return p.emitRune(b, r)
	}
	// a surrogate only makes sense followed by a \u escape of its pair
	if c, ok := p.src.peek(); !ok || c != '\\' {
		return p.emitRune(b, utf8.RuneError)
	}
	p.src.next()
	c, err := p.src.readByte()
	if err != nil {
		return err
	}
	if c != 'u' {
		if err := p.emitRune(b, utf8.RuneError); err != nil {
			return err
		}
		return p.escape(b, c)
	}
	r2, err := p.hex4()
	if err != nil {
		return err
	}
	if pair := utf16.DecodeRune(r, r2); pair != utf8.RuneError {
		return p.emitRune(b, pair)
	}
	if err := p.emitRune(b, utf8.RuneError); err != nil {
		return err
	}
	return p.emitRune(b, r2)
}

func (p *jsonParser) hex4() (rune, error) {
	var r rune
	for i := 0; i < 4; i++ {
		c, err := p.src.readByte()
		if err != nil {
			return 0, err
		}
		switch {
		case '0' <= c && c <= '9':
			c -= '0'
		case 'a' <= c && c <= 'f':
			c -= 'a' - 10
		case 'A' <= c && c <= 'F':
			c -= 'A' - 10
		default:
			return 0, p.src.invalid(c, "a hexadecimal digit")
		}
		r = r<<4 | rune(c)
	}
	return r, nil
}

func (p *jsonParser) emit(b *arena.Builder, c byte) error {
	if b == nil {
		return nil
	}
	if err := b.AppendByte(c); err != nil {
		return p.src.noMemory(err, "string")
	}
	return nil
}

// emitRune writes r as UTF-8; surrogates and invalid code points become
// U+FFFD.
func (p *jsonParser) emitRune(b *arena.Builder, r rune) error {
	if b == nil {
		return nil
	}
	var tmp [utf8.UTFMax]byte
	if err := b.Append(utf8.AppendRune(tmp[:0], r)); err != nil {
		return p.src.noMemory(err, "string")
	}
	return nil
}

func (p *jsonParser) parseLiteral(n *Variant, f filter, word string, t Type, payload uint64) error {
	for i := 0; i < len(word); i++ {
		c, err := p.src.readByte()
		if err != nil {
			return err
		}
		if c != word[i] {
			return p.src.invalid(c, strconv.Quote(word))
		}
	}
	if f.allowValue() {
		p.d.setScalar(n.refresh(), t, payload)
	}
	return nil
}

func (p *jsonParser) parseNumber(n *Variant, f filter) error {
	var buf [maxNumberLength]byte
	size := 0
	for {
		c, ok := p.src.peek()
		if !ok || !isNumberByte(c) {
			break
		}
		if size == len(buf) {
			return fmt.Errorf("%w: number longer than %d bytes at offset %d", ErrInvalidInput, maxNumberLength, p.src.off)
		}
		buf[size] = c
		size++
		p.src.next()
	}
	t, payload, ok := parseNumberText(buf[:size])
	if !ok {
		return fmt.Errorf("%w: malformed number %q at offset %d", ErrInvalidInput, buf[:size], p.src.off)
	}
	if f.allowValue() {
		p.d.setScalar(n.refresh(), t, payload)
	}
	return nil
}

// parseNumberText classifies a number literal: a leading minus gives Int,
// other integers give Uint, fractions, exponents and integers out of range
// give Float.
func parseNumberText(b []byte) (Type, uint64, bool) {
	if len(b) == 0 {
		return 0, 0, false
	}
	s := unsafe.String(&b[0], len(b))
	if !strings.ContainsAny(s, ".eE") {
		if s[0] == '-' {
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return Int, uint64(i), true
			}
		} else if u, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, 64); err == nil {
			return Uint, u, true
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, 0, false
	}
	return Float, math.Float64bits(f), true
}
