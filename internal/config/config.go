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

// Package config holds the compile-time tunables of the streaming
// core as overridable defaults, resolved from an optional YAML file
// the same way the teacher's service layer resolves its own config:
// a path given explicitly, or else a file under the user's home
// directory, with the compiled-in defaults standing in for anything
// the file doesn't set.
package config

import (
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/livekit/rtp-jpeg-streamer/internal/frameasm"
	"github.com/livekit/rtp-jpeg-streamer/internal/gapdetect"
	"github.com/livekit/rtp-jpeg-streamer/internal/jitterbuf"
	"github.com/livekit/rtp-jpeg-streamer/internal/nackmgr"
	"github.com/livekit/rtp-jpeg-streamer/internal/reorderbuf"
	"github.com/livekit/rtp-jpeg-streamer/internal/retransmit"
)

// DefaultConfigRelPath is where Load looks under the user's home
// directory when no explicit path is given.
const DefaultConfigRelPath = ".rtp-jpeg-streamer/config.yaml"

// DefaultSSRC is the fixed per-session SSRC spec.md §4.8 mandates.
const DefaultSSRC = 0x12345678

// DefaultTailDrainWindow is WAIT_NACK_MS's 5-second reading: how long
// the sender keeps polling for late NACKs after its last chunk.
const DefaultTailDrainWindow = 5 * time.Second

// DefaultTailDrainSpacing is WAIT_NACK_MS's other reading: the ~2s
// spacing between tail-window poll drains.
const DefaultTailDrainSpacing = 2 * time.Second

// DefaultInterPacketPause is the brief sleep the sender takes between
// chunk sends while opportunistically polling for NACKs.
const DefaultInterPacketPause = 5 * time.Millisecond

// Config is the full set of overridable tunables. YAML field names
// are lower_snake_case, matching the teacher's own config structs.
type Config struct {
	ChunkSize         int           `yaml:"chunk_size"`
	JitterBufferSize  int           `yaml:"jitter_buffer_size"`
	JitterDelay       time.Duration `yaml:"jitter_delay"`
	ReorderBufferSize int           `yaml:"reorder_buffer_size"`
	NextPacketWait    time.Duration `yaml:"next_packet_wait"`
	NackBufferSize    int           `yaml:"nack_buffer_size"`
	NackMaxRetries    uint8         `yaml:"nack_max_retries"`
	RTTMillis         float64       `yaml:"rtt_millis"`
	AssemblerBufSize  int           `yaml:"assembler_buffer_size"`
	MaxStoredPackets  int           `yaml:"max_stored_packets"`
	TailDrainWindow   time.Duration `yaml:"tail_drain_window"`
	TailDrainSpacing  time.Duration `yaml:"tail_drain_spacing"`
	InterPacketPause  time.Duration `yaml:"inter_packet_pause"`
	SSRC              uint32        `yaml:"ssrc"`
	OutputDir         string        `yaml:"output_dir"`
}

// Default returns the reference design's compiled-in constants.
func Default() Config {
	return Config{
		ChunkSize:         frameasm.DefaultChunkSize,
		JitterBufferSize:  jitterbuf.DefaultSize,
		JitterDelay:       jitterbuf.DefaultDelay,
		ReorderBufferSize: reorderbuf.DefaultWindow,
		NextPacketWait:    reorderbuf.DefaultAgeOut,
		NackBufferSize:    nackmgr.DefaultSize,
		NackMaxRetries:    nackmgr.DefaultMaxRetries,
		RTTMillis:         nackmgr.DefaultRTTMillis,
		AssemblerBufSize:  frameasm.DefaultBufferSize,
		MaxStoredPackets:  retransmit.DefaultCapacity,
		TailDrainWindow:   DefaultTailDrainWindow,
		TailDrainSpacing:  DefaultTailDrainSpacing,
		InterPacketPause:  DefaultInterPacketPause,
		SSRC:              DefaultSSRC,
		OutputDir:         "frames",
	}
}

// gapdetect has no size knob of its own (ResetCap is a protocol
// constant, not a tunable), so it's intentionally absent from Config.
var _ = gapdetect.ResetCap

// Load resolves configuration: start from Default(), then overlay a
// YAML file if one exists at path (when path is empty, the default
// home-relative location is tried and silently skipped if absent —
// no config file is required, per spec.md §6 "Environment variables:
// none required").
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		home, err := homedir.Dir()
		if err != nil {
			return cfg, errors.Wrap(err, "config: resolve home directory")
		}
		candidate, err := homedir.Expand(home + "/" + DefaultConfigRelPath)
		if err != nil {
			return cfg, errors.Wrap(err, "config: expand default path")
		}
		if _, err := os.Stat(candidate); err != nil {
			return cfg, nil
		}
		path = candidate
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "config: read %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "config: parse %s", path)
	}
	return cfg, nil
}
