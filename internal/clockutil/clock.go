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

// Package clockutil injects a monotonic time source into the pipeline
// stages that read one (NACK manager, jitter buffer, reorder buffer,
// statistics), so tests can drive time deterministically instead
// of sleeping real wall-clock milliseconds.
package clockutil

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Clock is the narrow time source every clock-reading pipeline stage
// takes as a constructor argument: only Now() — nothing in this core
// sleeps on an injected clock; its blocking waits (the UDP read
// deadline, the sender's pauses) run on real time (see spec §5).
//
//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -o clockutilfakes/fake_clock.go . Clock
type Clock interface {
	Now() time.Time
}

// New returns the real wall-clock-backed implementation, built on
// benbjohnson/clock so tests elsewhere in the module can swap in
// *clock.Mock without this package knowing about it.
func New() Clock {
	return clock.New()
}

// NewMock returns a fully controllable clock for tests: Add/Set
// advance it, nothing else does. *clock.Mock satisfies Clock
// structurally.
func NewMock() *clock.Mock {
	return clock.NewMock()
}
