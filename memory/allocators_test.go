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

package memory_test

import (
	"testing"

	"github.com/apache/arrow-vdoc/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpyingAllocator(t *testing.T) {
	spy := memory.NewSpyingAllocator(memory.NewGoAllocator())

	b := spy.Allocate(10)
	require.Len(t, b, 10)
	b = spy.Reallocate(20, b)
	require.Len(t, b, 20)
	assert.Equal(t, 20, spy.Allocated())
	spy.Free(b)

	assert.Equal(t, []memory.Event{
		memory.Allocate(10),
		memory.Reallocate(10, 20),
		memory.Deallocate(20),
	}, spy.Log())
	assert.Zero(t, spy.Allocated())

	spy.ClearLog()
	assert.Empty(t, spy.Log())
}

func TestSpyingAllocatorRecordsFailures(t *testing.T) {
	spy := memory.NewSpyingAllocator(memory.NewTimebombAllocator(1, nil))

	b := spy.Allocate(4)
	require.NotNil(t, b)
	assert.Nil(t, spy.Reallocate(8, b))
	assert.Nil(t, spy.Allocate(1))
	spy.Free(b)

	assert.Equal(t, []memory.Event{
		memory.Allocate(4),
		memory.ReallocateFail(4, 8),
		memory.AllocateFail(1),
		memory.Deallocate(4),
	}, spy.Log())
}

func TestTimebombAllocator(t *testing.T) {
	bomb := memory.NewTimebombAllocator(2, nil)

	assert.NotNil(t, bomb.Allocate(1))
	assert.NotNil(t, bomb.Allocate(1))
	assert.Nil(t, bomb.Allocate(1))

	bomb.SetCountdown(-1)
	assert.NotNil(t, bomb.Allocate(1))

	bomb.SetCountdown(0)
	assert.Nil(t, bomb.Allocate(1))
	assert.Nil(t, bomb.Reallocate(2, make([]byte, 1)))
}

func TestEventString(t *testing.T) {
	tests := []struct {
		ev   memory.Event
		want string
	}{
		{memory.Allocate(32), "Allocate(32)"},
		{memory.AllocateFail(7), "AllocateFail(7)"},
		{memory.Reallocate(32, 4), "Reallocate(32, 4)"},
		{memory.ReallocateFail(4, 8), "ReallocateFail(4, 8)"},
		{memory.Deallocate(24), "Deallocate(24)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.ev.String())
	}
}

func TestFailed(t *testing.T) {
	assert.True(t, memory.Failed(nil, 1))
	assert.False(t, memory.Failed(nil, 0))
	assert.False(t, memory.Failed([]byte{}, 0))
}
