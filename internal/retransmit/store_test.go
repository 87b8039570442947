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

package retransmit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutGetRoundTrip(t *testing.T) {
	s := New(4)
	s.Put(2, []byte("packet-2"))

	got, ok := s.Get(2)
	require.True(t, ok)
	require.Equal(t, []byte("packet-2"), got)
}

func TestMissWhenNeverStored(t *testing.T) {
	s := New(4)
	_, ok := s.Get(1)
	require.False(t, ok)
}

func TestOverwriteEvictsOlderSeqAtSameIndex(t *testing.T) {
	s := New(4) // seq 1 and 5 share index 1
	s.Put(1, []byte("old"))
	s.Put(5, []byte("new"))

	_, ok := s.Get(1)
	require.False(t, ok, "slot 1 was overwritten by seq 5")

	got, ok := s.Get(5)
	require.True(t, ok)
	require.Equal(t, []byte("new"), got)
}

func TestPutCopiesInput(t *testing.T) {
	s := New(4)
	buf := []byte("mutable")
	s.Put(1, buf)
	buf[0] = 'X'

	got, _ := s.Get(1)
	require.Equal(t, byte('m'), got[0], "store must not alias caller's buffer")
}
