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

package nackmgr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/livekit/rtp-jpeg-streamer/internal/clockutil"
)

func TestFirstAttemptAlwaysSendable(t *testing.T) {
	mock := clockutil.NewMock()
	m := New(mock, DefaultSize, DefaultMaxRetries, DefaultRTTMillis)

	require.True(t, m.CanSend(205))
}

func TestBackoffSchedule(t *testing.T) {
	// S2: NACK 205, then a retry must wait 20ms (RTT_MS^1).
	mock := clockutil.NewMock()
	m := New(mock, DefaultSize, DefaultMaxRetries, DefaultRTTMillis)

	m.RecordAttempt(205)
	require.False(t, m.CanSend(205), "must wait out the 20ms backoff")

	mock.Add(19 * time.Millisecond)
	require.False(t, m.CanSend(205))

	mock.Add(2 * time.Millisecond)
	require.True(t, m.CanSend(205))
}

func TestClearStopsFurtherNacks(t *testing.T) {
	// P5: a packet arriving before backoff expiry clears the entry,
	// no further NACK for that sequence.
	mock := clockutil.NewMock()
	m := New(mock, DefaultSize, DefaultMaxRetries, DefaultRTTMillis)

	m.RecordAttempt(205)
	mock.Add(10 * time.Millisecond)
	m.Clear(205)

	var sent []uint16
	mock.Add(time.Hour)
	m.Tick(func(seq uint16) { sent = append(sent, seq) })
	require.Empty(t, sent)
}

func TestMaxRetriesReaped(t *testing.T) {
	// P4/S3: no more than NACK_MAX_RETRIES NACKs for a single sequence.
	mock := clockutil.NewMock()
	m := New(mock, DefaultSize, DefaultMaxRetries, DefaultRTTMillis)

	m.RecordAttempt(303) // retryCount=1, counts as attempt #1

	var attempts int
	for i := 0; i < 10; i++ {
		mock.Add(10 * time.Second) // always past backoff, even 20ms^3=8s
		m.Tick(func(seq uint16) {
			require.Equal(t, uint16(303), seq)
			attempts++
		})
	}

	// RecordAttempt counted as attempt 1; Tick fires for retryCount=1
	// and retryCount=2 (2 more attempts) before reaping at 3.
	require.Equal(t, DefaultMaxRetries-1, attempts)
	require.True(t, m.CanSend(303), "reaped entry behaves as if never tracked")
}

func TestResetClearsAllSlots(t *testing.T) {
	// Frame-boundary reinit: a retry left pending from the prior frame
	// must not survive into the next frame's sequence space.
	mock := clockutil.NewMock()
	m := New(mock, DefaultSize, DefaultMaxRetries, DefaultRTTMillis)

	m.RecordAttempt(205)
	m.RecordAttempt(900)
	m.Reset()

	require.True(t, m.CanSend(205))
	require.True(t, m.CanSend(900))

	var sent []uint16
	mock.Add(time.Hour)
	m.Tick(func(seq uint16) { sent = append(sent, seq) })
	require.Empty(t, sent)
}

func TestAtMostOneLiveEntryPerSequence(t *testing.T) {
	// I3: collisions on the same slot overwrite, never coexist.
	mock := clockutil.NewMock()
	m := New(mock, 4, DefaultMaxRetries, DefaultRTTMillis) // seq 1 and 5 collide mod 4

	m.RecordAttempt(1)
	m.RecordAttempt(5)

	require.True(t, m.CanSend(1), "seq 1's entry was evicted by seq 5")
}
