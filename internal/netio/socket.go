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

// Package netio wraps a UDP socket behind the minimal interface the
// receive and send loops need, so both can be driven by a fake in
// tests instead of a real network stack.
package netio

import (
	"net"
	"strconv"
	"time"
)

// Socket is a UDP endpoint bound to one local address and (for the
// sender) implicitly connected to one remote address. ReadFrom never
// blocks longer than the deadline passed to SetReadDeadline — on
// expiry it returns a timeout error, the only cancellation point
// inside a loop iteration.
//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -o netiofakes/fake_socket.go . Socket
type Socket interface {
	ReadFrom(buf []byte) (n int, addr net.Addr, err error)
	WriteTo(buf []byte, addr net.Addr) (n int, err error)
	SetReadDeadline(t time.Time) error
	LocalAddr() net.Addr
	Close() error
}

// UDPSocket adapts *net.UDPConn to Socket.
type UDPSocket struct {
	conn *net.UDPConn
}

// Listen binds a UDP socket on port for the receiver side.
func Listen(port int) (*UDPSocket, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: port})
	if err != nil {
		return nil, err
	}
	return &UDPSocket{conn: conn}, nil
}

// Dial resolves host:port for the sender side. The returned socket's
// WriteTo target is always the resolved address regardless of the
// addr argument, matching a connected UDP socket's semantics; ReadFrom
// still reports the peer so NACKs arriving from it can be recognized.
func Dial(host string, port int) (*UDPSocket, error) {
	raddr, err := net.ResolveUDPAddr("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, err
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, err
	}
	return &UDPSocket{conn: conn}, nil
}

func (s *UDPSocket) ReadFrom(buf []byte) (int, net.Addr, error) {
	return s.conn.ReadFromUDP(buf)
}

func (s *UDPSocket) WriteTo(buf []byte, addr net.Addr) (int, error) {
	if addr == nil {
		return s.conn.Write(buf)
	}
	return s.conn.WriteTo(buf, addr)
}

func (s *UDPSocket) SetReadDeadline(t time.Time) error {
	return s.conn.SetReadDeadline(t)
}

func (s *UDPSocket) LocalAddr() net.Addr {
	return s.conn.LocalAddr()
}

func (s *UDPSocket) Close() error {
	return s.conn.Close()
}
