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

// Package wireformat encodes and decodes the two packet types this core
// speaks on the wire: the RTP-style data packet and the NACK packet.
package wireformat

import (
	"encoding/binary"

	"github.com/pion/rtp"
	"github.com/pkg/errors"
)

const (
	// RTPVersion is the fixed version field the sender stamps on every
	// data packet. Decoders never reject a different version.
	RTPVersion = 2
	// PayloadTypeJPEG is the payload_type the sender stamps on every
	// data packet. Decoders never reject a different payload type.
	PayloadTypeJPEG = 26

	// rtpHeaderSize is the fixed, non-extended RTP header size this
	// core ever produces or expects: 12 bytes, no CSRC, no extension.
	rtpHeaderSize = 12

	// MaxPacketSize bounds a single UDP datagram this core will ever
	// send or accept.
	MaxPacketSize = 65535
	// MaxPayloadSize is the largest payload that fits in MaxPacketSize
	// alongside the fixed RTP header.
	MaxPayloadSize = MaxPacketSize - rtpHeaderSize

	// NACKPacketType is the single byte identifying a NACK packet on
	// the wire, as opposed to an RTP data packet.
	NACKPacketType = 1
	// nackPacketSize is the fixed wire size of a NACK packet.
	nackPacketSize = 5
)

var (
	// ErrPayloadTooLarge is returned by Encode when payload exceeds
	// MaxPayloadSize.
	ErrPayloadTooLarge = errors.New("wireformat: payload too large")
	// ErrShortRead is returned by Decode when the buffer is smaller
	// than a minimal RTP header.
	ErrShortRead = errors.New("wireformat: short read")
	// ErrShortNACK is returned by DecodeNACK when the buffer is
	// smaller than a NACK packet.
	ErrShortNACK = errors.New("wireformat: short NACK read")
	// ErrNotNACK is returned by DecodeNACK when the type byte doesn't
	// mark the buffer as a NACK packet.
	ErrNotNACK = errors.New("wireformat: not a NACK packet")
)

// Packet is the decoded view of an RTP data packet: the handful of
// header fields the core actually reads, plus the payload slice
// (which aliases the buffer passed to Decode — callers that retain it
// across reads must copy).
type Packet struct {
	Sequence  uint16
	Timestamp uint32
	SSRC      uint32
	Marker    bool
	Payload   []byte
}

// Encode packs seq/ts/ssrc/payload into an RTP data packet. Returns
// ErrPayloadTooLarge if payload exceeds MaxPayloadSize.
func Encode(seq uint16, ts, ssrc uint32, marker bool, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayloadSize {
		return nil, errors.Wrapf(ErrPayloadTooLarge, "payload %d bytes exceeds max %d", len(payload), MaxPayloadSize)
	}

	p := &rtp.Packet{
		Header: rtp.Header{
			Version:        RTPVersion,
			PayloadType:    PayloadTypeJPEG,
			SequenceNumber: seq,
			Timestamp:      ts,
			SSRC:           ssrc,
			Marker:         marker,
		},
		Payload: payload,
	}
	buf, err := p.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "wireformat: marshal rtp packet")
	}
	return buf, nil
}

// Decode parses an RTP data packet off the wire. The receiver never
// validates version or payload_type — only seq, ts, and marker are
// read, per spec. Returns ErrShortRead if buf is too small to contain
// a header.
func Decode(buf []byte) (Packet, error) {
	if len(buf) < rtpHeaderSize {
		return Packet{}, errors.Wrapf(ErrShortRead, "got %d bytes, need at least %d", len(buf), rtpHeaderSize)
	}

	var p rtp.Packet
	if err := p.Unmarshal(buf); err != nil {
		return Packet{}, errors.Wrap(ErrShortRead, err.Error())
	}

	return Packet{
		Sequence:  p.SequenceNumber,
		Timestamp: p.Timestamp,
		SSRC:      p.SSRC,
		Marker:    p.Marker,
		Payload:   p.Payload,
	}, nil
}

// EncodeNACK packs a NACK packet naming the first missing sequence and
// a run length. The present implementation always sends seqCount=1;
// the format is range-capable for future senders.
func EncodeNACK(seqStart, seqCount uint16) []byte {
	buf := make([]byte, nackPacketSize)
	buf[0] = NACKPacketType
	binary.BigEndian.PutUint16(buf[1:3], seqStart)
	binary.BigEndian.PutUint16(buf[3:5], seqCount)
	return buf
}

// DecodeNACK parses a NACK packet. Returns ErrShortNACK if buf is
// smaller than a NACK packet, ErrNotNACK if the type byte doesn't
// match.
func DecodeNACK(buf []byte) (seqStart, seqCount uint16, err error) {
	if len(buf) < nackPacketSize {
		return 0, 0, errors.Wrapf(ErrShortNACK, "got %d bytes, need %d", len(buf), nackPacketSize)
	}
	if buf[0] != NACKPacketType {
		return 0, 0, errors.Wrapf(ErrNotNACK, "type byte %d", buf[0])
	}
	seqStart = binary.BigEndian.Uint16(buf[1:3])
	seqCount = binary.BigEndian.Uint16(buf[3:5])
	return seqStart, seqCount, nil
}
