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

package sendpipeline

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/livekit/rtp-jpeg-streamer/internal/clockutil"
	"github.com/livekit/rtp-jpeg-streamer/internal/config"
	"github.com/livekit/rtp-jpeg-streamer/internal/netio/netiofakes"
	"github.com/livekit/rtp-jpeg-streamer/internal/retransmit"
	"github.com/livekit/rtp-jpeg-streamer/internal/wireformat"
)

func newTestSender(t *testing.T) (*Sender, *netiofakes.FakeSocket, *retransmit.Store) {
	t.Helper()
	cfg := config.Default()
	cfg.ChunkSize = 4
	cfg.InterPacketPause = 0
	cfg.TailDrainWindow = 4 * time.Millisecond
	cfg.TailDrainSpacing = 2 * time.Millisecond

	socket := &netiofakes.FakeSocket{}
	socket.ReadFromReturns(0, nil, errTimeout{})

	store := retransmit.New(cfg.MaxStoredPackets)
	s := New(cfg, clockutil.NewMock(), socket, store, zap.NewNop().Sugar())
	s.sleep = func(time.Duration) {} // don't slow tests down with real sleeps
	return s, socket, store
}

// errTimeout stands in for the timeout error a real UDP read deadline
// produces: any non-nil error here is meant to be the common case of
// "nothing arrived," which pollForNACK must treat as a no-op.
type errTimeout struct{}

func (errTimeout) Error() string   { return "i/o timeout" }
func (errTimeout) Timeout() bool   { return true }
func (errTimeout) Temporary() bool { return true }

func TestSendFrameFragmentsAndMarksLastChunk(t *testing.T) {
	s, socket, _ := newTestSender(t)

	require.NoError(t, s.SendFrame([]byte("0123456789"))) // 3 chunks of 4,4,2

	require.Equal(t, 3, socket.WriteToCallCount())

	for i := 0; i < 3; i++ {
		wire, _ := socket.WriteToArgsForCall(i)
		pkt, err := wireformat.Decode(wire)
		require.NoError(t, err)
		require.EqualValues(t, i, pkt.Sequence)
		require.Equal(t, i == 2, pkt.Marker)
	}
}

func TestSendFrameSequenceNeverResetsAcrossFrames(t *testing.T) {
	s, socket, _ := newTestSender(t)

	require.NoError(t, s.SendFrame([]byte("aaaa")))
	require.NoError(t, s.SendFrame([]byte("bbbb")))

	require.Equal(t, 2, socket.WriteToCallCount())
	first, _ := socket.WriteToArgsForCall(0)
	second, _ := socket.WriteToArgsForCall(1)

	p1, err := wireformat.Decode(first)
	require.NoError(t, err)
	p2, err := wireformat.Decode(second)
	require.NoError(t, err)

	require.EqualValues(t, 0, p1.Sequence)
	require.EqualValues(t, 1, p2.Sequence, "sequence carries over, only timestamp advances")
}

func TestSendFrameStoresEveryChunkForRetransmission(t *testing.T) {
	s, _, store := newTestSender(t)

	require.NoError(t, s.SendFrame([]byte("01234567"))) // 2 chunks of 4

	_, ok := store.Get(0)
	require.True(t, ok)
	_, ok = store.Get(1)
	require.True(t, ok)
}

func TestSendFrameResendsOnNACK(t *testing.T) {
	s, socket, _ := newTestSender(t)

	nack := wireformat.EncodeNACK(0, 1)
	calls := 0
	socket.ReadFromStub = func(buf []byte) (int, net.Addr, error) {
		calls++
		if calls == 1 {
			// First poll, right after chunk 0 goes out: deliver the NACK.
			n := copy(buf, nack)
			return n, nil, nil
		}
		return 0, nil, errTimeout{}
	}

	require.NoError(t, s.SendFrame([]byte("0123456789012"))) // 4 chunks

	require.EqualValues(t, 1, s.RetransmitCount())
	// 4 original sends + 1 retransmit of seq 0, which goes out right
	// after chunk 0 (write index 1).
	require.Equal(t, 5, socket.WriteToCallCount())
	resent, _ := socket.WriteToArgsForCall(1)
	pkt, err := wireformat.Decode(resent)
	require.NoError(t, err)
	require.EqualValues(t, 0, pkt.Sequence)
}

func TestSendFrameIgnoresUnknownNACKSequence(t *testing.T) {
	s, socket, _ := newTestSender(t)

	nack := wireformat.EncodeNACK(99, 1) // never sent, never stored
	socket.ReadFromStub = func(buf []byte) (int, net.Addr, error) {
		n := copy(buf, nack)
		socket.ReadFromStub = func([]byte) (int, net.Addr, error) { return 0, nil, errTimeout{} }
		return n, nil, nil
	}

	require.NoError(t, s.SendFrame([]byte("0123")))
	require.EqualValues(t, 0, s.RetransmitCount())
}

func TestSendFrameDrainsTailWindowAfterLastChunk(t *testing.T) {
	s, socket, _ := newTestSender(t)

	require.NoError(t, s.SendFrame([]byte("0123")))

	// One poll after the single chunk, plus tailDrainWindow/tailDrainSpacing
	// drains (4ms/2ms = 2) during the tail window.
	require.Equal(t, 3, socket.ReadFromCallCount())
}

func TestSendFrameEmptyImageSendsNothing(t *testing.T) {
	s, socket, _ := newTestSender(t)

	require.NoError(t, s.SendFrame(nil))
	require.Equal(t, 0, socket.WriteToCallCount())
	// The tail drain still runs even for an empty frame.
	require.Equal(t, 2, socket.ReadFromCallCount())
}
