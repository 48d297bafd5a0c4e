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
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/apache/arrow-vdoc/vdoc"
	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(t *testing.T, v vdoc.Variant) string {
	t.Helper()
	var buf bytes.Buffer
	n, err := vdoc.WriteJSON(&buf, v)
	require.NoError(t, err)
	require.Equal(t, buf.Len(), n)
	require.Equal(t, n, vdoc.MeasureJSON(v))
	return buf.String()
}

func TestWriteJSONScalars(t *testing.T) {
	tests := []struct {
		val  any
		want string
	}{
		{nil, "null"},
		{true, "true"},
		{false, "false"},
		{0, "0"},
		{-42, "-42"},
		{uint64(math.MaxUint64), "18446744073709551615"},
		{int64(math.MinInt64), "-9223372036854775808"},
		{1.5, "1.5"},
		{2.0, "2.0"},
		{-0.0, "0.0"},
		{3.1415, "3.1415"},
		{1e21, "1e+21"},
		{1e20, "100000000000000000000.0"},
		{1e-7, "1e-7"},
		{float32(0.1), "0.10000000149011612"},
		{math.NaN(), "null"},
		{math.Inf(1), "null"},
		{math.Inf(-1), "null"},
		{"hello", `"hello"`},
		{"", `""`},
		{vdoc.BinaryValue("raw"), `"raw"`},
		{vdoc.ExtensionValue{Type: 1, Data: []byte("ext")}, `"ext"`},
		{vdoc.RawValue(`{"pre":"encoded"}`), `{"pre":"encoded"}`},
	}
	for _, tt := range tests {
		doc := vdoc.NewDocument()
		require.NoError(t, doc.Root().Set(tt.val))
		assert.Equal(t, tt.want, writeJSON(t, doc.Root()), "%#v", tt.val)
	}
}

func TestWriteJSONEscapes(t *testing.T) {
	doc := vdoc.NewDocument()
	require.NoError(t, doc.Root().SetString("\"\\\b\f\n\r\t\x00\x01\x1f/é"))
	assert.Equal(t, `"\"\\\b\f\n\r\t\u0000\u0001\u001f/é"`, writeJSON(t, doc.Root()))
}

func TestWriteJSONUnboundAndNullHandle(t *testing.T) {
	doc := vdoc.NewDocument()
	assert.Equal(t, "null", writeJSON(t, doc.Root()))
	assert.Equal(t, "null", writeJSON(t, vdoc.Variant{}))
	assert.Equal(t, "null", writeJSON(t, doc.Root().Get("missing")))
}

func TestWriteJSONContainers(t *testing.T) {
	doc := vdoc.NewDocument()
	obj := doc.Root().ToObject()
	require.NoError(t, obj.Set("name", "vdoc"))
	arr, err := obj.SetArray("list")
	require.NoError(t, err)
	require.NoError(t, arr.Add(1))
	require.NoError(t, arr.Add("two"))
	_, err = arr.AddObject()
	require.NoError(t, err)
	_, err = arr.AddArray()
	require.NoError(t, err)
	require.NoError(t, obj.Set("ok", true))

	const want = `{"name":"vdoc","list":[1,"two",{},[]],"ok":true}`
	assert.Equal(t, want, writeJSON(t, doc.Root()))
	assert.True(t, json.Valid([]byte(want)))
}

func TestWriteJSONPretty(t *testing.T) {
	doc := vdoc.NewDocument()
	require.NoError(t, vdoc.ParseJSONString(doc, `{"a":1,"b":[true,{"c":null}],"d":{},"e":[]}`))

	var buf bytes.Buffer
	n, err := vdoc.WriteJSONPretty(&buf, doc.Root())
	require.NoError(t, err)
	assert.Equal(t, buf.Len(), n)

	want := strings.Join([]string{
		`{`,
		`  "a": 1,`,
		`  "b": [`,
		`    true,`,
		`    {`,
		`      "c": null`,
		`    }`,
		`  ],`,
		`  "d": {},`,
		`  "e": []`,
		`}`,
	}, "\n")
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("pretty output mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	inputs := []string{
		`{"a":[1,-2,3.5,"x"],"b":{"c":true,"d":null}}`,
		`[[],{},"",0,-0,1.0]`,
		`"multi\nline"`,
	}
	for _, input := range inputs {
		doc := vdoc.NewDocument()
		require.NoError(t, vdoc.ParseJSONString(doc, input))
		out := writeJSON(t, doc.Root())
		assert.True(t, json.Valid([]byte(out)), out)

		again := vdoc.NewDocument()
		require.NoError(t, vdoc.ParseJSONString(again, out))
		assert.Equal(t, out, writeJSON(t, again.Root()))
	}
}

// limitedWriter accepts at most n bytes, then reports a short write
// without an error.
type limitedWriter struct {
	buf bytes.Buffer
	n   int
}

func (w *limitedWriter) Write(p []byte) (int, error) {
	if len(p) > w.n {
		p = p[:w.n]
	}
	w.n -= len(p)
	return w.buf.Write(p)
}

func TestWriteJSONShortWrite(t *testing.T) {
	doc := vdoc.NewDocument()
	require.NoError(t, vdoc.ParseJSONString(doc, `{"hello":"world"}`))

	w := &limitedWriter{n: 5}
	n, err := vdoc.WriteJSON(w, doc.Root())
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Equal(t, 5, n)
	assert.Equal(t, `{"hel`, w.buf.String())
}

type failingWriter struct{ err error }

func (w failingWriter) Write(p []byte) (int, error) { return 0, w.err }

func TestWriteJSONWriterError(t *testing.T) {
	boom := errors.New("boom")
	doc := vdoc.NewDocument()
	require.NoError(t, doc.Root().Set("x"))
	n, err := vdoc.WriteJSON(failingWriter{boom}, doc.Root())
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, n)
}

func TestWriteJSONLargeOutput(t *testing.T) {
	doc := vdoc.NewDocument()
	long := strings.Repeat("abcdefgh", 100)
	arr := doc.Root().ToArray()
	for i := 0; i < 10; i++ {
		require.NoError(t, arr.Add(long))
	}
	out := writeJSON(t, doc.Root())
	assert.Len(t, out, 2+10*(len(long)+2)+9)
}
