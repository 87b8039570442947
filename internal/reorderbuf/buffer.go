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

// Package reorderbuf presents payloads in strictly ascending sequence
// order, with a bounded per-gap wait after which a missing sequence is
// declared lost and skipped. Slot storage is allocated once in New
// and rotated on release — no per-packet allocation on the fast path.
package reorderbuf

import (
	"time"

	"github.com/livekit/rtp-jpeg-streamer/internal/clockutil"
)

// Placement is the result of Insert.
type Placement int

const (
	// OutOfWindow: offset < 0 (duplicate/straggler) or offset >= W
	// (beyond window). The packet was dropped.
	OutOfWindow Placement = iota
	// Duplicate: the slot at this offset is already valid.
	Duplicate
	// InOrder: offset == 0 — this is the next expected sequence.
	InOrder
	// Buffered: offset > 0 — held for later release.
	Buffered
)

// DefaultWindow is REORDER_BUFFER_SIZE from spec (W).
const DefaultWindow = 101

// DefaultAgeOut is NEXT_PACKET_WAIT_MS from spec.
const DefaultAgeOut = 15 * time.Millisecond

// slotCapacity bounds each slot's owned payload buffer. The original
// design allocates 2000 bytes per slot (comfortably above CHUNK_SIZE);
// kept identical here.
const slotCapacity = 2000

type slot struct {
	seq   uint16
	data  []byte
	size  int
	valid bool
}

// LossCounter is the minimal stats hook Take needs: it only ever
// increments packets_lost, one call per aged-out slot.
type LossCounter interface {
	IncPacketsLost()
}

// Buffer is the fixed-capacity out-of-order holding window.
type Buffer struct {
	clock clockutil.Clock
	window int

	slots       []slot
	expectedSeq uint16
	initialized bool
	waitStart   time.Time
}

// New builds a reorder buffer with the given window size W. The
// per-gap age-out duration is passed to each Take call. Slot storage
// is allocated once here and never grows.
func New(clock clockutil.Clock, window int) *Buffer {
	b := &Buffer{
		clock:  clock,
		window: window,
		slots:  make([]slot, window),
	}
	for i := range b.slots {
		b.slots[i].data = make([]byte, slotCapacity)
	}
	b.waitStart = clock.Now()
	return b
}

// Reset reinitializes the buffer to its just-built state: all slots
// invalid, expected_seq uncommitted. Storage is reused, not
// reallocated. Called on frame boundaries (spec §4.5 B1/B2).
func (b *Buffer) Reset() {
	for i := range b.slots {
		b.slots[i].valid = false
		b.slots[i].seq = 0
		b.slots[i].size = 0
	}
	b.initialized = false
	b.expectedSeq = 0
	b.waitStart = b.clock.Now()
}

// ExpectedSeq reports the next sequence this buffer will release.
func (b *Buffer) ExpectedSeq() uint16 {
	return b.expectedSeq
}

// Insert places a payload at its offset from expected_seq. On the
// first call ever (or after Reset), expected_seq is seeded to seq.
func (b *Buffer) Insert(seq uint16, payload []byte) Placement {
	if !b.initialized {
		b.expectedSeq = seq
		b.initialized = true
	}

	offset := int(int16(seq - b.expectedSeq))
	if offset < 0 {
		return OutOfWindow
	}
	if offset >= b.window {
		return OutOfWindow
	}

	s := &b.slots[offset]
	if s.valid {
		return Duplicate
	}

	n := copy(s.data, payload)
	s.seq = seq
	s.size = n
	s.valid = true

	if offset == 0 {
		return InOrder
	}
	return Buffered
}

// shift releases slot[0], shifts slot[i] := slot[i+1] for i in
// [0, window-2], and lets slot[window-1] reuse the released backing
// array (emptied). expected_seq advances by one and waitStart resets.
// Returns the released payload and its length. The payload aliases the
// backing array now owned by b.slots[window-1]; nothing is copied, so
// it stays intact only until that slot is written again (see Take).
func (b *Buffer) shift() (data []byte, size int) {
	released := b.slots[0].data
	releasedSize := b.slots[0].size

	copy(b.slots, b.slots[1:])

	b.slots[b.window-1] = slot{data: released}

	b.expectedSeq++
	b.waitStart = b.clock.Now()

	return released[:releasedSize], releasedSize
}

// Take releases slot[0] if it holds expected_seq. Otherwise, once the
// head has waited longer than ageOut, the missing head is declared
// lost: packets_lost increments, expected_seq advances past the hole,
// and Take recurses. Returns ok=false if neither condition fires.
//
// The returned slice aliases buffer-owned storage and is only valid
// until the next call to Insert/Take/Reset on this buffer — callers
// that need to retain it (the frame assembler does, briefly, to copy
// it into the frame) must copy before calling Take again.
func (b *Buffer) Take(ageOut time.Duration, stats LossCounter) (payload []byte, seq uint16, ok bool) {
	if b.slots[0].valid && b.slots[0].seq == b.expectedSeq {
		releasedSeq := b.expectedSeq
		data, size := b.shift()
		return data[:size], releasedSeq, true
	}

	if b.clock.Now().Sub(b.waitStart) > ageOut {
		if stats != nil {
			stats.IncPacketsLost()
		}
		b.shift()
		return b.Take(ageOut, stats)
	}

	return nil, 0, false
}
