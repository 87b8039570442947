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

// Package nackmgr rate-limits retransmission requests with exponential
// backoff and per-sequence state. It is an open-addressed table of
// tagged slots — Empty | Pending{seq, retries, last} — avoiding the
// original design's overloaded "retry_count == 0 means empty" field
// (spec §9 design note).
package nackmgr

import (
	"math"
	"time"

	"github.com/livekit/rtp-jpeg-streamer/internal/clockutil"
)

const (
	// DefaultSize is NACK_BUFFER_SIZE (M) from spec.
	DefaultSize = 256
	// DefaultMaxRetries is NACK_MAX_RETRIES from spec.
	DefaultMaxRetries = 3
	// DefaultRTTMillis is RTT_MS from spec: required_wait(k) = RTT_MS^k.
	DefaultRTTMillis = 20
)

type slotState int

const (
	empty slotState = iota
	pending
)

type slot struct {
	state       slotState
	seq         uint16
	retryCount  uint8
	lastAttempt time.Time
}

// Manager is the open-addressed NACK retry table.
type Manager struct {
	clock      clockutil.Clock
	maxRetries uint8
	rttMillis  float64

	slots []slot
}

// New builds a NACK manager. size is the table size (M,
// DefaultSize); maxRetries bounds retry_count (DefaultMaxRetries);
// rttMillis is the backoff base (DefaultRTTMillis).
func New(clock clockutil.Clock, size int, maxRetries uint8, rttMillis float64) *Manager {
	return &Manager{
		clock:      clock,
		maxRetries: maxRetries,
		rttMillis:  rttMillis,
		slots:      make([]slot, size),
	}
}

func (m *Manager) index(seq uint16) int {
	return int(seq) % len(m.slots)
}

// requiredWait implements the RTT_MS^k backoff schedule: attempts 1,
// 2, 3 wait rttMillis, rttMillis^2, rttMillis^3 ms before retry.
func (m *Manager) requiredWait(retryCount uint8) time.Duration {
	if retryCount == 0 {
		return 0
	}
	ms := math.Pow(m.rttMillis, float64(retryCount))
	return time.Duration(ms * float64(time.Millisecond))
}

// liveEntry returns the slot for seq if it is live (tracking seq with
// retry_count > 0), else nil.
func (m *Manager) liveEntry(seq uint16) *slot {
	s := &m.slots[m.index(seq)]
	if s.state == pending && s.seq == seq {
		return s
	}
	return nil
}

// CanSend reports whether a NACK for seq may be sent now: true if no
// live entry exists, or the live entry hasn't exhausted its retries
// and its backoff has elapsed.
func (m *Manager) CanSend(seq uint16) bool {
	s := m.liveEntry(seq)
	if s == nil {
		return true
	}
	if s.retryCount >= m.maxRetries {
		return false
	}
	return m.clock.Now().Sub(s.lastAttempt) >= m.requiredWait(s.retryCount)
}

// RecordAttempt seeds a fresh entry for seq (retry_count=1) if the
// slot is empty or tracks a different sequence; otherwise increments
// the existing entry's retry_count. Either way last_attempt is
// stamped now. I3: at most one live entry per sequence, by
// construction — a different sequence hashing to the same slot
// overwrites it.
func (m *Manager) RecordAttempt(seq uint16) {
	s := &m.slots[m.index(seq)]
	if s.state != pending || s.seq != seq {
		s.state = pending
		s.seq = seq
		s.retryCount = 1
	} else {
		s.retryCount++
	}
	s.lastAttempt = m.clock.Now()
}

// Clear zeroes the slot if it tracks seq. Called whenever a packet
// for seq arrives, so a now-useless pending retry never fires (P5).
func (m *Manager) Clear(seq uint16) {
	s := &m.slots[m.index(seq)]
	if s.state == pending && s.seq == seq {
		*s = slot{}
	}
}

// Reset zeroes every slot, matching init_nack_buffer: called on each
// frame boundary so a retry state left over from the previous frame
// never fires against the new one's sequence space.
func (m *Manager) Reset() {
	for i := range m.slots {
		m.slots[i] = slot{}
	}
}

// SendFunc is called by Tick once per sequence whose backoff has
// elapsed, to actually emit the NACK on the wire.
type SendFunc func(seq uint16)

// Tick scans every live entry whose backoff has elapsed and calls
// send for each. The entry's retry_count is then incremented and
// last_attempt stamped now; if retry_count reaches maxRetries the
// entry is reaped (I4) — no further NACK is ever sent for that
// sequence by this manager.
func (m *Manager) Tick(send SendFunc) {
	now := m.clock.Now()
	for i := range m.slots {
		s := &m.slots[i]
		if s.state != pending {
			continue
		}
		if s.retryCount >= m.maxRetries {
			*s = slot{}
			continue
		}
		if now.Sub(s.lastAttempt) < m.requiredWait(s.retryCount) {
			continue
		}

		send(s.seq)
		s.retryCount++
		s.lastAttempt = now
		if s.retryCount >= m.maxRetries {
			*s = slot{}
		}
	}
}
