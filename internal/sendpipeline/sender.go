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

// Package sendpipeline is the sender-side counterpart to
// receivepipeline: it fragments one image into chunks, stamps and
// sends them over a Socket, mirrors each onto the retransmission
// store, and opportunistically services NACKs both between sends and
// during a trailing drain window, per spec.md §4.8.
package sendpipeline

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/livekit/rtp-jpeg-streamer/internal/clockutil"
	"github.com/livekit/rtp-jpeg-streamer/internal/config"
	"github.com/livekit/rtp-jpeg-streamer/internal/netio"
	"github.com/livekit/rtp-jpeg-streamer/internal/retransmit"
	"github.com/livekit/rtp-jpeg-streamer/internal/wireformat"
)

// pollReadTimeout is the fixed per-read deadline armed before every
// opportunistic NACK poll. Go's deadline API has no persistent
// SO_RCVTIMEO equivalent (a deadline is one-shot), so this value is
// reapplied before each read; the value itself is fixed at
// construction and never changed, matching spec.md §5's socket
// discipline.
const pollReadTimeout = 2 * time.Millisecond

// Sender drives one send loop: SendFrame fragments and emits one
// frame, polling for NACKs along the way and during a trailing drain
// window. The caller (a CLI entry point, out of this core's scope)
// decides how many frames to send and at what cadence.
type Sender struct {
	socket netio.Socket
	clock  clockutil.Clock
	store  *retransmit.Store
	logger *zap.SugaredLogger

	ssrc             uint32
	chunkSize        int
	interPacketPause time.Duration
	tailDrainWindow  time.Duration
	tailDrainSpacing time.Duration
	sleep            func(time.Duration)

	nextSeq         uint16
	retransmitCount uint64
}

// New builds a Sender from cfg's tunables. store is the circular
// retransmission cache shared with nothing else — this is its only
// writer and only reader.
func New(cfg config.Config, clock clockutil.Clock, socket netio.Socket, store *retransmit.Store, logger *zap.SugaredLogger) *Sender {
	return &Sender{
		socket:           socket,
		clock:            clock,
		store:            store,
		logger:           logger,
		ssrc:             cfg.SSRC,
		chunkSize:        cfg.ChunkSize,
		interPacketPause: cfg.InterPacketPause,
		tailDrainWindow:  cfg.TailDrainWindow,
		tailDrainSpacing: cfg.TailDrainSpacing,
		sleep:            time.Sleep,
	}
}

// RetransmitCount reports how many packets have been resent in
// response to a NACK across every SendFrame call so far.
func (s *Sender) RetransmitCount() uint64 {
	return s.retransmitCount
}

// SendFrame fragments image into ChunkSize chunks under one
// monotonic per-frame timestamp, sends each in ascending sequence
// order with the marker bit set on the last, and mirrors every sent
// packet into the retransmission store. Sequence numbers carry over
// from the previous call; only the timestamp changes (spec.md §4.8).
// After the last chunk it drains the tail window for late NACKs
// before returning.
func (s *Sender) SendFrame(image []byte) error {
	ts := uint32(s.clock.Now().UnixMilli())

	offset := 0
	for offset < len(image) {
		end := offset + s.chunkSize
		if end > len(image) {
			end = len(image)
		}
		marker := end >= len(image)
		if err := s.sendChunk(ts, marker, image[offset:end]); err != nil {
			return err
		}
		offset = end

		s.pollForNACK(s.interPacketPause)
	}

	s.drainTailWindow()
	return nil
}

func (s *Sender) sendChunk(ts uint32, marker bool, chunk []byte) error {
	seq := s.nextSeq
	s.nextSeq++

	wire, err := wireformat.Encode(seq, ts, s.ssrc, marker, chunk)
	if err != nil {
		return errors.Wrapf(err, "sendpipeline: encode seq %d", seq)
	}
	if _, err := s.socket.WriteTo(wire, nil); err != nil {
		return errors.Wrapf(err, "sendpipeline: write seq %d", seq)
	}
	s.store.Put(seq, wire)
	return nil
}

// drainTailWindow keeps polling for late NACKs for roughly
// tailDrainWindow, spaced tailDrainSpacing apart, after the last chunk
// of a frame has gone out.
func (s *Sender) drainTailWindow() {
	drains := int(s.tailDrainWindow / s.tailDrainSpacing)
	if drains < 1 {
		drains = 1
	}
	for i := 0; i < drains; i++ {
		s.pollForNACK(s.tailDrainSpacing)
	}
}

// pollForNACK sleeps pause, then performs one bounded, non-blocking
// receive. A timeout or any other read error is the expected outcome
// on a quiet return path and is silently ignored; anything that
// parses as a NACK triggers a resend from the retransmission store.
func (s *Sender) pollForNACK(pause time.Duration) {
	s.sleep(pause)

	if err := s.socket.SetReadDeadline(time.Now().Add(pollReadTimeout)); err != nil {
		s.logger.Warnw("failed to arm read deadline", "err", err)
		return
	}

	buf := make([]byte, wireformat.MaxPacketSize)
	n, _, err := s.socket.ReadFrom(buf)
	if err != nil {
		return
	}
	s.handleInbound(buf[:n])
}

func (s *Sender) handleInbound(buf []byte) {
	seqStart, seqCount, err := wireformat.DecodeNACK(buf)
	if err != nil {
		s.logger.Debugw("ignoring non-NACK datagram on the send socket", "err", err)
		return
	}

	// Iterate by count, not by comparing seq < seqStart+seqCount: that
	// sum wraps at 65535 and would silently skip the resend (spec.md
	// P10 requires the wrap boundary to NACK and resend like any other
	// sequence).
	for i := uint16(0); i < seqCount; i++ {
		s.resend(seqStart + i)
	}
}

func (s *Sender) resend(seq uint16) {
	wire, ok := s.store.Get(seq)
	if !ok {
		s.logger.Warnw("nack for a sequence no longer in the retransmission store", "seq", seq)
		return
	}
	if _, err := s.socket.WriteTo(wire, nil); err != nil {
		s.logger.Warnw("retransmit failed", "err", err, "seq", seq)
		return
	}
	s.retransmitCount++
}
