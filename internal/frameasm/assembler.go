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

// Package frameasm reassembles the payloads released by the reorder
// buffer into one frame at a time, detects frame boundaries, validates
// the result looks like a JPEG, and hands it to a Writer.
package frameasm

// DefaultBufferSize is BUFFER_SIZE from spec: 10 MB, allocated once.
const DefaultBufferSize = 10 * 1024 * 1024

// DefaultChunkSize is CHUNK_SIZE from spec: the sender's fixed
// fragment size, a protocol invariant the receiver assumes holds for
// every non-final fragment.
const DefaultChunkSize = 1400

// Assembler owns one reassembly buffer and the bookkeeping for where
// the current frame started and where the current frame ends.
type Assembler struct {
	chunkSize int

	buf        []byte
	frameBytes int

	haveTimestamp    bool
	currentTimestamp uint32
	frameStartSeq    uint16

	haveEndSeq  bool
	frameEndSeq uint16
}

// New builds an assembler with a buffer of bufSize bytes, allocated
// once and reused for every frame.
func New(bufSize, chunkSize int) *Assembler {
	return &Assembler{
		chunkSize: chunkSize,
		buf:       make([]byte, bufSize),
	}
}

// Started reports whether a frame is currently being assembled.
func (a *Assembler) Started() bool {
	return a.haveTimestamp
}

// IsBoundary reports whether ts differs from the timestamp of the
// frame in progress (spec §4.5 B1). Only meaningful when Started().
func (a *Assembler) IsBoundary(ts uint32) bool {
	return a.haveTimestamp && ts != a.currentTimestamp
}

// BeginFrame anchors a new frame to the first packet that starts it:
// its timestamp and its sequence number (frame_start_seq, used for
// offset placement).
func (a *Assembler) BeginFrame(ts uint32, startSeq uint16) {
	a.haveTimestamp = true
	a.currentTimestamp = ts
	a.frameStartSeq = startSeq
}

// MarkLast records that seq carried the marker bit: it is the last
// fragment of the frame in progress, and the frame is finalized once
// the reorder buffer releases exactly this sequence.
func (a *Assembler) MarkLast(seq uint16) {
	a.haveEndSeq = true
	a.frameEndSeq = seq
}

// IsFrameEnd reports whether seq is the marked last fragment of the
// frame in progress.
func (a *Assembler) IsFrameEnd(seq uint16) bool {
	return a.haveEndSeq && seq == a.frameEndSeq
}

// WriteChunk places payload at offset (seq - frame_start_seq) *
// chunkSize, extending the high-water mark if this write grows it.
// Writes that would run past the buffer are dropped rather than
// panicking — a mis-signaled CHUNK_SIZE on the wire costs a corrupted
// (and therefore JPEG-check-rejected) frame, never a crash.
func (a *Assembler) WriteChunk(seq uint16, payload []byte) {
	offset := int(seq-a.frameStartSeq) * a.chunkSize
	if offset < 0 || offset+len(payload) > len(a.buf) {
		return
	}
	n := copy(a.buf[offset:], payload)
	if end := offset + n; end > a.frameBytes {
		a.frameBytes = end
	}
}

// Frame returns the bytes written so far, up to the current high-water
// mark. The slice aliases assembler-owned storage; it is only valid
// until the next Reset/BeginFrame/WriteChunk.
func (a *Assembler) Frame() []byte {
	return a.buf[:a.frameBytes]
}

// Reset clears all frame-in-progress state. The backing buffer is
// reused, not reallocated or zeroed — the next WriteChunk calls will
// overwrite whatever's stale before Frame() is read again, and
// frameBytes is reset so Frame() never exposes stale tail bytes.
func (a *Assembler) Reset() {
	a.haveTimestamp = false
	a.currentTimestamp = 0
	a.frameStartSeq = 0
	a.haveEndSeq = false
	a.frameEndSeq = 0
	a.frameBytes = 0
}
