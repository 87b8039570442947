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

package gapdetect

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFirstPacketNoGap(t *testing.T) {
	d := New()
	require.Empty(t, d.Observe(100))
	require.Equal(t, uint16(100), d.MaxSeqSeen())
}

func TestNoGapOnContiguous(t *testing.T) {
	d := New()
	d.Observe(100)
	require.Empty(t, d.Observe(101))
}

func TestRealGapReportsMissing(t *testing.T) {
	// S2: seqs 200..209, 205 dropped; arrival of 206 reports gap.
	d := New()
	d.Observe(204)
	missing := d.Observe(206)
	require.Equal(t, []uint16{205}, missing)
	require.Equal(t, uint16(206), d.MaxSeqSeen())
}

func TestMultiSequenceGap(t *testing.T) {
	d := New()
	d.Observe(10)
	missing := d.Observe(14)
	require.Equal(t, []uint16{11, 12, 13}, missing)
}

func TestLateOrDuplicateNoGap(t *testing.T) {
	d := New()
	d.Observe(100)
	d.Observe(105)
	missing := d.Observe(102) // late arrival, diff < 0
	require.Empty(t, missing)
	require.Equal(t, uint16(105), d.MaxSeqSeen(), "high-water mark doesn't regress")
}

func TestSequenceWrapGapDetected(t *testing.T) {
	// P10: a gap from 65534 to 0 is a single missing sequence 65535.
	d := New()
	d.Observe(65534)
	missing := d.Observe(0)
	require.Equal(t, []uint16{65535}, missing)
}

func TestResetCapIgnoresLargeJump(t *testing.T) {
	d := New()
	d.Observe(100)
	missing := d.Observe(100 + ResetCap)
	require.Empty(t, missing, "diff >= ResetCap is a reset, not NACKed")
	require.Equal(t, uint16(100+ResetCap), d.MaxSeqSeen())
}
