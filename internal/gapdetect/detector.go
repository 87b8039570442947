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

// Package gapdetect inspects newly arrived sequence numbers against a
// high-water mark and reports the run of sequences a real gap
// implies, so the receive loop can schedule NACKs for each.
package gapdetect

// ResetCap is the sanity cap (spec: "diff >= 100") beyond which a gap
// is treated as a stream reset/wrap and ignored for NACK purposes, to
// avoid a NACK storm on stream resumption.
const ResetCap = 100

// Detector tracks the high-water-mark sequence seen so far.
type Detector struct {
	maxSeqSeen uint16
	seenFirst  bool
}

// New builds a gap detector with no packets observed yet.
func New() *Detector {
	return &Detector{}
}

// MaxSeqSeen reports the current high-water mark.
func (d *Detector) MaxSeqSeen() uint16 {
	return d.maxSeqSeen
}

// Observe reports the gap, if any, implied by the arrival of seq.
// missing lists every sequence strictly between the previous
// high-water mark and seq, in ascending order, for diff in
// (1, ResetCap) — i.e. a real, bounded gap. A diff <= 0 (late or
// duplicate) or diff >= ResetCap (reset/wrap) yields no missing
// sequences. The high-water mark advances whenever diff > 0.
func (d *Detector) Observe(seq uint16) (missing []uint16) {
	if !d.seenFirst {
		d.maxSeqSeen = seq
		d.seenFirst = true
		return nil
	}

	diff := int16(seq - d.maxSeqSeen)

	if diff > 1 && diff < ResetCap {
		missing = make([]uint16, 0, diff-1)
		for i := int16(1); i < diff; i++ {
			missing = append(missing, d.maxSeqSeen+uint16(i))
		}
	}

	if diff > 0 {
		d.maxSeqSeen = seq
	}

	return missing
}
