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

// Package jitterbuf smooths inter-arrival variance by holding every
// arrival for a fixed wall-clock delay before making it visible
// downstream. Arrivals emerge in arrival order, not sequence order —
// reordering is the reorder buffer's job.
package jitterbuf

import (
	"time"

	"github.com/gammazero/deque"
	"github.com/pkg/errors"

	"github.com/livekit/rtp-jpeg-streamer/internal/clockutil"
	"github.com/livekit/rtp-jpeg-streamer/internal/wireformat"
)

// ErrBufferFull is returned by Add when the buffer has reached its
// configured capacity; the caller must drop the new arrival.
var ErrBufferFull = errors.New("jitterbuf: buffer full")

const (
	// DefaultSize is JITTER_BUFFER_SIZE from spec.
	DefaultSize = 50
	// DefaultDelay is JITTER_DELAY_MS from spec.
	DefaultDelay = 100 * time.Millisecond
)

type entry struct {
	packet    wireformat.Packet
	size      int
	arrivedAt time.Time
}

// Buffer is a bounded FIFO: Add enqueues at the tail, Take releases
// the head once it has dwelled for at least Delay.
type Buffer struct {
	clock clockutil.Clock
	delay time.Duration
	cap   int

	q deque.Deque[entry]
}

// New builds a jitter buffer. size is the maximum number of held
// packets (DefaultSize); delay is the minimum dwell time
// (DefaultDelay).
func New(clock clockutil.Clock, size int, delay time.Duration) *Buffer {
	b := &Buffer{
		clock: clock,
		delay: delay,
		cap:   size,
	}
	b.q.SetMinCapacity(6) // 2^6 = 64, comfortably covers DefaultSize
	return b
}

// Add enqueues packet with its arrival time stamped now. Returns
// ErrBufferFull — and drops the arrival — if the buffer is at
// capacity; the gap detector may already have NACKed the sequence
// this arrival occupies, so the loss stays observable downstream.
func (b *Buffer) Add(packet wireformat.Packet, size int) error {
	if b.q.Len() >= b.cap {
		return ErrBufferFull
	}
	b.q.PushBack(entry{
		packet:    packet,
		size:      size,
		arrivedAt: b.clock.Now(),
	})
	return nil
}

// Take returns the head packet and advances the FIFO iff its dwell
// time has reached Delay. Otherwise it returns ok=false without
// mutating state.
func (b *Buffer) Take() (packet wireformat.Packet, size int, ok bool) {
	if b.q.Len() == 0 {
		return wireformat.Packet{}, 0, false
	}

	head := b.q.Front()
	if b.clock.Now().Sub(head.arrivedAt) < b.delay {
		return wireformat.Packet{}, 0, false
	}

	b.q.PopFront()
	return head.packet, head.size, true
}

// Len reports the number of packets currently held.
func (b *Buffer) Len() int {
	return b.q.Len()
}
