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

package main

import (
	"net"
	"sync"

	"github.com/livekit/rtp-jpeg-streamer/internal/netio"
	"github.com/livekit/rtp-jpeg-streamer/internal/wireformat"
)

// nackSender implements receivepipeline.NACKSender over a bound UDP
// socket. The peer address is learned from whichever datagram most
// recently arrived — this core speaks to exactly one sender per spec,
// so the last-seen address is always the right one to NACK back to.
type nackSender struct {
	socket netio.Socket

	mu   sync.Mutex
	peer net.Addr
}

func (n *nackSender) setPeer(addr net.Addr) {
	n.mu.Lock()
	n.peer = addr
	n.mu.Unlock()
}

// SendNACK emits one NACK packet naming seqStart/seqCount to the most
// recently observed peer address. If no packet has arrived yet there
// is no one to NACK, so the call is a no-op.
func (n *nackSender) SendNACK(seqStart, seqCount uint16) error {
	n.mu.Lock()
	peer := n.peer
	n.mu.Unlock()
	if peer == nil {
		return nil
	}

	wire := wireformat.EncodeNACK(seqStart, seqCount)
	_, err := n.socket.WriteTo(wire, peer)
	return err
}
