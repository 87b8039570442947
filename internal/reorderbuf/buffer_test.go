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

package reorderbuf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/livekit/rtp-jpeg-streamer/internal/clockutil"
)

type fakeStats struct{ lost int }

func (f *fakeStats) IncPacketsLost() { f.lost++ }

func TestFirstInsertSeedsExpectedSeq(t *testing.T) {
	mock := clockutil.NewMock()
	b := New(mock, DefaultWindow)

	placement := b.Insert(500, []byte("a"))
	require.Equal(t, InOrder, placement)
	require.Equal(t, uint16(500), b.ExpectedSeq())
}

func TestDuplicateAtHead(t *testing.T) {
	// S6: seq 600 then 600 then 601.
	mock := clockutil.NewMock()
	b := New(mock, DefaultWindow)

	require.Equal(t, InOrder, b.Insert(600, []byte("A")))
	require.Equal(t, Duplicate, b.Insert(600, []byte("A-dup")))
	require.Equal(t, Buffered, b.Insert(601, []byte("B")))

	stats := &fakeStats{}
	payload, seq, ok := b.Take(DefaultAgeOut, stats)
	require.True(t, ok)
	require.Equal(t, uint16(600), seq)
	require.Equal(t, []byte("A"), payload)

	payload, seq, ok = b.Take(DefaultAgeOut, stats)
	require.True(t, ok)
	require.Equal(t, uint16(601), seq)
	require.Equal(t, []byte("B"), payload)
	require.Zero(t, stats.lost)
}

func TestReorderingOutOfOrderArrival(t *testing.T) {
	// S4: arrival order 400, 402, 401, 403.
	mock := clockutil.NewMock()
	b := New(mock, DefaultWindow)

	require.Equal(t, InOrder, b.Insert(400, []byte("400")))
	require.Equal(t, Buffered, b.Insert(402, []byte("402")))
	require.Equal(t, Buffered, b.Insert(401, []byte("401")))
	require.Equal(t, Buffered, b.Insert(403, []byte("403")))

	stats := &fakeStats{}
	var gotSeqs []uint16
	for {
		_, seq, ok := b.Take(DefaultAgeOut, stats)
		if !ok {
			break
		}
		gotSeqs = append(gotSeqs, seq)
	}
	require.Equal(t, []uint16{400, 401, 402, 403}, gotSeqs)
	require.Zero(t, stats.lost)
}

func TestOutOfWindowBoundary(t *testing.T) {
	// P12: offset == W-1 accepted, offset == W dropped.
	mock := clockutil.NewMock()
	b := New(mock, DefaultWindow)

	require.Equal(t, InOrder, b.Insert(0, []byte("0")))
	require.Equal(t, Buffered, b.Insert(uint16(DefaultWindow-1), []byte("last")))
	require.Equal(t, OutOfWindow, b.Insert(uint16(DefaultWindow), []byte("too far")))
}

func TestOldPacketDropped(t *testing.T) {
	mock := clockutil.NewMock()
	b := New(mock, DefaultWindow)

	require.Equal(t, InOrder, b.Insert(100, []byte("a")))
	stats := &fakeStats{}
	_, _, ok := b.Take(DefaultAgeOut, stats)
	require.True(t, ok)
	require.Equal(t, uint16(101), b.ExpectedSeq())

	// seq 100 is now behind expected_seq=101: straggler, dropped.
	require.Equal(t, OutOfWindow, b.Insert(100, []byte("straggler")))
}

func TestAgeOutAdvancesPastHole(t *testing.T) {
	// S3-style: a hole that never fills ages out and packets_lost increments.
	mock := clockutil.NewMock()
	b := New(mock, DefaultWindow)

	// The first insert seeds expected_seq; release it so 300 is the head.
	require.Equal(t, InOrder, b.Insert(299, []byte("seed")))
	stats := &fakeStats{}
	_, _, ok := b.Take(DefaultAgeOut, stats)
	require.True(t, ok)

	require.Equal(t, Buffered, b.Insert(301, []byte("after-hole")))
	// slot 0 (seq 300) never arrives.

	_, _, ok = b.Take(DefaultAgeOut, stats)
	require.False(t, ok, "must not release before age-out elapses")
	require.Zero(t, stats.lost)

	mock.Add(DefaultAgeOut + 1)

	payload, seq, ok := b.Take(DefaultAgeOut, stats)
	require.True(t, ok)
	require.Equal(t, uint16(301), seq)
	require.Equal(t, []byte("after-hole"), payload)
	require.Equal(t, 1, stats.lost)
}

func TestSequenceWrapGap(t *testing.T) {
	// P10: after 65534, seq 0 lands at offset 2 across the wrap as a
	// normal buffered arrival, not a reset; the missing 65535 ages out.
	mock := clockutil.NewMock()
	b := New(mock, DefaultWindow)

	require.Equal(t, InOrder, b.Insert(65534, []byte("a")))
	require.Equal(t, Buffered, b.Insert(0, []byte("c")))

	stats := &fakeStats{}
	_, seq, ok := b.Take(DefaultAgeOut, stats)
	require.True(t, ok)
	require.Equal(t, uint16(65534), seq)

	mock.Add(DefaultAgeOut + 1)
	_, seq, ok = b.Take(DefaultAgeOut, stats)
	require.True(t, ok)
	require.Equal(t, uint16(0), seq, "missing 65535 aged out, 0 released in the same call")
	require.Equal(t, 1, stats.lost)

	_, _, ok = b.Take(DefaultAgeOut, stats)
	require.False(t, ok, "nothing left to release")
	require.Equal(t, uint16(1), b.ExpectedSeq())
}

func TestReset(t *testing.T) {
	mock := clockutil.NewMock()
	b := New(mock, DefaultWindow)

	b.Insert(10, []byte("x"))
	b.Reset()

	require.Equal(t, uint16(0), b.ExpectedSeq())
	require.Equal(t, InOrder, b.Insert(500, []byte("y")))
}
