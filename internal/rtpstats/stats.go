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

// Package rtpstats holds the end-to-end counters the pipeline exposes
// to the reporter: monotonically non-decreasing, safe for concurrent
// reads from a console printer or a Prometheus scrape while the
// single receive loop keeps writing them.
package rtpstats

import (
	"time"

	"go.uber.org/atomic"

	"github.com/livekit/rtp-jpeg-streamer/internal/clockutil"
)

// Stats is the counter block of spec §3/§4.9. Every field is an
// atomic counter so the single-writer receive loop and a concurrent
// reader (console printer, Prometheus scrape) never race, without the
// receive loop ever blocking on a lock.
type Stats struct {
	clock clockutil.Clock

	PacketsReceived    atomic.Uint32
	PacketsLost        atomic.Uint32
	FramesReceived     atomic.Uint32
	TotalBytes         atomic.Uint64
	RetransmitRequests atomic.Uint32
	PacketsReordered   atomic.Uint32
	lastSeq            atomic.Uint32 // stores uint16 plus a "seen" high bit
	startTime          time.Time
}

const lastSeqSeenBit = 1 << 16

// New builds a zeroed Stats block, stamping start_time from clock.
func New(clock clockutil.Clock) *Stats {
	return &Stats{
		clock:     clock,
		startTime: clock.Now(),
	}
}

// IncPacketsLost satisfies reorderbuf.LossCounter: the reorder
// buffer's aging path is the only place loss is recognised on the
// data path (spec §4.4 rationale).
func (s *Stats) IncPacketsLost() {
	s.PacketsLost.Inc()
}

// OnArrival records a packet's receipt off the wire: I6 says
// total_bytes counts bytes including headers, so callers pass the raw
// wire size, not the payload size.
func (s *Stats) OnArrival(seq uint16, wireSize int) {
	s.PacketsReceived.Inc()
	s.TotalBytes.Add(uint64(wireSize))
	s.lastSeq.Store(uint32(seq) | lastSeqSeenBit)
}

// LastSeq returns the most recently observed sequence and whether any
// packet has arrived yet.
func (s *Stats) LastSeq() (seq uint16, ok bool) {
	v := s.lastSeq.Load()
	return uint16(v), v&lastSeqSeenBit != 0
}

// IncRetransmitRequests records one NACK emitted by the gap detector.
func (s *Stats) IncRetransmitRequests() {
	s.RetransmitRequests.Inc()
}

// IncPacketsReordered records one reorder-buffer Buffered placement
// (spec §4.4: offset > 0 on Insert).
func (s *Stats) IncPacketsReordered() {
	s.PacketsReordered.Inc()
}

// IncFramesReceived records one successfully finalized, JPEG-valid
// frame (spec §4.5 finalization).
func (s *Stats) IncFramesReceived() {
	s.FramesReceived.Inc()
}

// Snapshot is an immutable, derived-value view suitable for a console
// printer or a structured log line — bitrate and frame rate are
// computed here, at read time, never stored (spec §4.9).
type Snapshot struct {
	PacketsReceived    uint32
	PacketsLost        uint32
	FramesReceived     uint32
	TotalBytes         uint64
	RetransmitRequests uint32
	PacketsReordered   uint32
	Elapsed            time.Duration
	BitrateKbps        float64
	FrameRateFPS       float64
}

// Snapshot captures a point-in-time read of every counter plus the
// derived bitrate/frame-rate values.
func (s *Stats) Snapshot() Snapshot {
	elapsed := s.clock.Now().Sub(s.startTime)
	totalBytes := s.TotalBytes.Load()
	frames := s.FramesReceived.Load()

	snap := Snapshot{
		PacketsReceived:    s.PacketsReceived.Load(),
		PacketsLost:        s.PacketsLost.Load(),
		FramesReceived:     frames,
		TotalBytes:         totalBytes,
		RetransmitRequests: s.RetransmitRequests.Load(),
		PacketsReordered:   s.PacketsReordered.Load(),
		Elapsed:            elapsed,
	}

	if elapsedMs := float64(elapsed.Milliseconds()); elapsedMs > 0 {
		snap.BitrateKbps = (float64(totalBytes) * 8.0) / elapsedMs
		snap.FrameRateFPS = (float64(frames) / elapsedMs) * 1000.0
	}

	return snap
}
