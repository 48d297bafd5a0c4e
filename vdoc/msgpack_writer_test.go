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

package vdoc_test

import (
	"bytes"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/apache/arrow-vdoc/vdoc"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinylib/msgp/msgp"
)

func writeMsgPack(t *testing.T, v vdoc.Variant) []byte {
	t.Helper()
	var buf bytes.Buffer
	n, err := vdoc.WriteMsgPack(&buf, v)
	require.NoError(t, err)
	require.Equal(t, buf.Len(), n)
	require.Equal(t, n, vdoc.MeasureMsgPack(v))
	return buf.Bytes()
}

func checkMsgPack(t *testing.T, val any, want string) {
	t.Helper()
	doc := vdoc.NewDocument()
	defer doc.Release()
	require.NoError(t, doc.Root().Set(val))
	got := writeMsgPack(t, doc.Root())
	assert.Equal(t, []byte(want), got, "%v", val)
}

func TestWriteMsgPackScalars(t *testing.T) {
	tests := []struct {
		name string
		val  any
		want string
	}{
		{"nil", nil, "\xC0"},
		{"false", false, "\xC2"},
		{"true", true, "\xC3"},
		{"positive fixint signed", 0, "\x00"},
		{"positive fixint signed max", 127, "\x7F"},
		{"positive fixint unsigned", uint(0), "\x00"},
		{"positive fixint unsigned max", uint(127), "\x7F"},
		{"uint 8", 128, "\xCC\x80"},
		{"uint 8 max", 255, "\xCC\xFF"},
		{"uint 16", 256, "\xCD\x01\x00"},
		{"uint 16 max", 0xFFFF, "\xCD\xFF\xFF"},
		{"uint 32", uint32(0x00010000), "\xCE\x00\x01\x00\x00"},
		{"uint 32 mid", uint32(0x12345678), "\xCE\x12\x34\x56\x78"},
		{"uint 32 max", uint32(0xFFFFFFFF), "\xCE\xFF\xFF\xFF\xFF"},
		{"uint 64", uint64(0x0001000000000000), "\xCF\x00\x01\x00\x00\x00\x00\x00\x00"},
		{"uint 64 mid", uint64(0x123456789ABCDEF0), "\xCF\x12\x34\x56\x78\x9A\xBC\xDE\xF0"},
		{"uint 64 max", uint64(math.MaxUint64), "\xCF\xFF\xFF\xFF\xFF\xFF\xFF\xFF\xFF"},
		{"negative fixint", -1, "\xFF"},
		{"negative fixint min", -32, "\xE0"},
		{"int 8", -33, "\xD0\xDF"},
		{"int 8 min", -128, "\xD0\x80"},
		{"int 16", -129, "\xD1\xFF\x7F"},
		{"int 16 min", -32768, "\xD1\x80\x00"},
		{"int 32", -32769, "\xD2\xFF\xFF\x7F\xFF"},
		{"int 32 min", int32(math.MinInt32), "\xD2\x80\x00\x00\x00"},
		{"int 64", int64(-0x0123456789ABCDF0), "\xD3\xFE\xDC\xBA\x98\x76\x54\x32\x10"},
		{"float 32", 1.25, "\xCA\x3F\xA0\x00\x00"},
		{"float 32 beyond int64", float32(9.22337204e+18), "\xCA\x5F\x00\x00\x00"},
		{"float 64", 3.1415, "\xCB\x40\x09\x21\xCA\xC0\x83\x12\x6F"},
		{"fixstr empty", "", "\xA0"},
		{"fixstr max", "hello world hello world hello !", "\xBFhello world hello world hello !"},
		{"str 8", "hello world hello world hello !!", "\xD9\x20hello world hello world hello !!"},
		{"bin 8", vdoc.BinaryValue("?"), "\xC4\x01?"},
		{"fixext 1", vdoc.ExtensionValue{Type: 1, Data: []byte("\x02")}, "\xD4\x01\x02"},
		{"fixext 2", vdoc.ExtensionValue{Type: 1, Data: []byte("\x03\x04")}, "\xD5\x01\x03\x04"},
		{"fixext 4", vdoc.ExtensionValue{Type: 1, Data: []byte("\x05\x06\x07\x08")}, "\xD6\x01\x05\x06\x07\x08"},
		{"fixext 8", vdoc.ExtensionValue{Type: 1, Data: []byte("????????")}, "\xD7\x01????????"},
		{"fixext 16", vdoc.ExtensionValue{Type: 1, Data: []byte("????????????????")}, "\xD8\x01????????????????"},
		{"ext 8 of 3", vdoc.ExtensionValue{Type: 2, Data: []byte("???")}, "\xC7\x03\x02???"},
		{"ext 8 of 5", vdoc.ExtensionValue{Type: 2, Data: []byte("?????")}, "\xC7\x05\x02?????"},
		{"ext 8 of 7", vdoc.ExtensionValue{Type: 2, Data: []byte("???????")}, "\xC7\x07\x02???????"},
		{"ext 8 of 9", vdoc.ExtensionValue{Type: 2, Data: []byte("?????????")}, "\xC7\x09\x02?????????"},
		{"ext 8 of 15", vdoc.ExtensionValue{Type: 2, Data: []byte("???????????????")}, "\xC7\x0F\x02???????????????"},
		{"ext 8 of 17", vdoc.ExtensionValue{Type: 2, Data: []byte("?????????????????")}, "\xC7\x11\x02?????????????????"},
		{"negative extension type", vdoc.ExtensionValue{Type: -1, Data: []byte("\x00")}, "\xD4\xFF\x00"},
		{"raw str 16 header", vdoc.RawValue("\xDA\xFF\xFF"), "\xDA\xFF\xFF"},
		{"raw with nul", vdoc.RawValue("\xDB\x00\x01\x00\x00"), "\xDB\x00\x01\x00\x00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkMsgPack(t, tt.val, tt.want)
		})
	}
}

func TestWriteRawMember(t *testing.T) {
	doc := vdoc.NewDocument()
	defer doc.Release()
	obj := doc.Root().ToObject()
	require.NoError(t, obj.Set("a", vdoc.RawValue(msgp.AppendArrayHeader(nil, 0))))
	require.NoError(t, obj.Set("b", vdoc.RawValue("[1,2]")))

	a := obj.Get("a")
	assert.True(t, a.IsRaw())
	assert.Equal(t, vdoc.Raw, a.Type())
	assert.Equal(t, []byte{0x90}, a.AsBytes())
	assert.Equal(t, "\x82\xA1a\x90\xA1b[1,2]", string(writeMsgPack(t, doc.Root())))

	var buf bytes.Buffer
	_, err := vdoc.WriteJSON(&buf, obj.Variant())
	require.NoError(t, err)
	assert.Equal(t, "{\"a\":\x90,\"b\":[1,2]}", buf.String())
}

func TestWriteMsgPackUnbound(t *testing.T) {
	doc := vdoc.NewDocument()
	assert.Equal(t, []byte{0xC0}, writeMsgPack(t, doc.Root()))
	assert.Equal(t, []byte{0xC0}, writeMsgPack(t, vdoc.Variant{}))
}

func TestWriteMsgPackLongStrings(t *testing.T) {
	for _, tt := range []struct {
		n      int
		header string
	}{
		{256, "\xDA\x01\x00"},
		{65535, "\xDA\xFF\xFF"},
		{65536, "\xDB\x00\x01\x00\x00"},
	} {
		s := strings.Repeat("?", tt.n)
		checkMsgPack(t, s, tt.header+s)
	}

	// a linked string is written the same way
	s := strings.Repeat("?", 65536)
	checkMsgPack(t, vdoc.LinkedString(s), "\xDB\x00\x01\x00\x00"+s)
}

func TestWriteMsgPackLongBinaryAndExtension(t *testing.T) {
	s := strings.Repeat("?", 256)
	checkMsgPack(t, vdoc.BinaryValue(s), "\xC5\x01\x00"+s)
	checkMsgPack(t, vdoc.ExtensionValue{Type: 2, Data: []byte(s)}, "\xC8\x01\x00\x02"+s)

	s = strings.Repeat("?", 65536)
	checkMsgPack(t, vdoc.BinaryValue(s), "\xC6\x00\x01\x00\x00"+s)
	checkMsgPack(t, vdoc.ExtensionValue{Type: 2, Data: []byte(s)}, "\xC9\x00\x01\x00\x00\x02"+s)
}

func TestWriteMsgPackIntegralFloats(t *testing.T) {
	tests := []struct {
		val  float64
		want string
	}{
		{-32768.0, "\xD1\x80\x00"},
		{-129.0, "\xD1\xFF\x7F"},
		{-128.0, "\xD0\x80"},
		{-33.0, "\xD0\xDF"},
		{-32.0, "\xE0"},
		{-1.0, "\xFF"},
		{0.0, "\x00"},
		{127.0, "\x7F"},
		{128.0, "\xCC\x80"},
		{255.0, "\xCC\xFF"},
		{256.0, "\xCD\x01\x00"},
		{-9223372036854775808.0, "\xD3\x80\x00\x00\x00\x00\x00\x00\x00"},
		{math.Inf(1), "\xCA\x7F\x80\x00\x00"},
	}
	for _, tt := range tests {
		checkMsgPack(t, tt.val, tt.want)
	}
}

func TestWriteMsgPackContainers(t *testing.T) {
	doc := vdoc.NewDocument()
	require.NoError(t, vdoc.ParseJSONString(doc, `{"a":1,"b":[true,null,"x"],"c":-1.5,"d":200,"e":{}}`))
	out := writeMsgPack(t, doc.Root())

	got, rest, err := msgp.ReadIntfBytes(out)
	require.NoError(t, err)
	assert.Empty(t, rest)
	want := map[string]any{
		"a": int64(1),
		"b": []any{true, nil, "x"},
		"c": float32(-1.5),
		"d": uint64(200),
		"e": map[string]any{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("decoded value mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteMsgPackContainerHeaders(t *testing.T) {
	doc := vdoc.NewDocument()
	arr := doc.Root().ToArray()
	for i := 0; i < 16; i++ {
		require.NoError(t, arr.Add(i))
	}
	out := writeMsgPack(t, doc.Root())
	assert.Equal(t, []byte{0xDC, 0x00, 0x10}, out[:3])

	sz, _, err := msgp.ReadArrayHeaderBytes(out)
	require.NoError(t, err)
	assert.Equal(t, uint32(16), sz)
}

func TestWriteMsgPackShortWrite(t *testing.T) {
	doc := vdoc.NewDocument()
	require.NoError(t, vdoc.ParseJSONString(doc, `["hello","world"]`))

	w := &limitedWriter{n: 4}
	n, err := vdoc.WriteMsgPack(w, doc.Root())
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Equal(t, 4, n)
}
