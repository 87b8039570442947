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

// Package retransmit is the sender-side retransmission cache: a ring
// indexed by seq mod K holding a copy of each recently sent packet, so
// a NACK can be served without re-reading or re-fragmenting the
// source image. Touched only by the send loop — no locking.
package retransmit

// DefaultCapacity is MAX_STORED_PACKETS from spec (K). K must exceed
// the worst expected outstanding unacked window to avoid self-eviction
// before a NACK arrives.
const DefaultCapacity = 1000

type entry struct {
	wire  []byte
	seq   uint16
	valid bool
}

// Store is the sender's circular retransmission cache.
type Store struct {
	slots []entry
}

// New builds a store with the given ring capacity K.
func New(capacity int) *Store {
	return &Store{slots: make([]entry, capacity)}
}

func (s *Store) index(seq uint16) int {
	return int(seq) % len(s.slots)
}

// Put unconditionally overwrites the slot at seq mod K with a copy of
// wire, marking it valid. Unconditional overwrite is the point: the
// ring never refuses a store, it just shortens how long an older
// packet survives before an equally-indexed newer one evicts it.
func (s *Store) Put(seq uint16, wire []byte) {
	cp := make([]byte, len(wire))
	copy(cp, wire)

	idx := s.index(seq)
	s.slots[idx] = entry{wire: cp, seq: seq, valid: true}
}

// Get returns the stored packet for seq, and whether it was found. A
// miss means either the slot was never written or a different
// sequence has since overwritten it.
func (s *Store) Get(seq uint16) (wire []byte, ok bool) {
	e := s.slots[s.index(seq)]
	if !e.valid || e.seq != seq {
		return nil, false
	}
	return e.wire, true
}
