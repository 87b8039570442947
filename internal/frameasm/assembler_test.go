// Copyright 2023 LiveKit, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package frameasm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBoundaryDetection(t *testing.T) {
	a := New(1024, 16)
	require.False(t, a.Started())
	require.False(t, a.IsBoundary(100), "no frame in progress: not a boundary")

	a.BeginFrame(100, 1000)
	require.True(t, a.Started())
	require.False(t, a.IsBoundary(100))
	require.True(t, a.IsBoundary(101), "B1: a new timestamp starts a new frame")
}

func TestWriteChunkPlacesByOffsetFromFrameStartSeq(t *testing.T) {
	a := New(1024, 4)
	a.BeginFrame(100, 1000)

	a.WriteChunk(1001, []byte{0xAA, 0xAA, 0xAA, 0xAA})
	a.WriteChunk(1000, []byte{0xBB, 0xBB, 0xBB, 0xBB})

	got := a.Frame()
	require.Equal(t, []byte{0xBB, 0xBB, 0xBB, 0xBB, 0xAA, 0xAA, 0xAA, 0xAA}, got)
}

func TestWriteChunkOutOfBoundsDropsRatherThanPanics(t *testing.T) {
	a := New(8, 4)
	a.BeginFrame(100, 1000)

	require.NotPanics(t, func() {
		a.WriteChunk(1005, []byte{0x01, 0x02, 0x03, 0x04}) // offset 20, buffer is 8 bytes
	})
	require.Equal(t, 0, len(a.Frame()))
}

func TestMarkLastAndIsFrameEnd(t *testing.T) {
	a := New(1024, 4)
	a.BeginFrame(100, 1000)
	require.False(t, a.IsFrameEnd(1003))

	a.MarkLast(1003)
	require.True(t, a.IsFrameEnd(1003))
	require.False(t, a.IsFrameEnd(1004))
}

func TestResetClearsFrameState(t *testing.T) {
	a := New(1024, 4)
	a.BeginFrame(100, 1000)
	a.WriteChunk(1000, []byte{1, 2, 3, 4})
	a.MarkLast(1000)

	a.Reset()

	require.False(t, a.Started())
	require.False(t, a.IsFrameEnd(1000))
	require.Equal(t, 0, len(a.Frame()))
}

func TestFrameHighWaterMarkGrowsWithLaterWrites(t *testing.T) {
	a := New(1024, 4)
	a.BeginFrame(100, 1000)

	a.WriteChunk(1000, []byte{1, 2, 3, 4})
	require.Equal(t, 4, len(a.Frame()))

	a.WriteChunk(1002, []byte{5, 6, 7, 8})
	require.Equal(t, 12, len(a.Frame()))
}
