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

// Command sender is the CLI entry point for the send side of the
// pipeline: it reads one image from disk and repeatedly fragments and
// sends it as successive frames (spec.md §4.8's outer per-frame loop),
// serving retransmission requests along the way, until interrupted.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/frostbyte73/core"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/livekit/rtp-jpeg-streamer/internal/clockutil"
	"github.com/livekit/rtp-jpeg-streamer/internal/config"
	"github.com/livekit/rtp-jpeg-streamer/internal/netio"
	"github.com/livekit/rtp-jpeg-streamer/internal/retransmit"
	"github.com/livekit/rtp-jpeg-streamer/internal/sendpipeline"
)

func main() {
	app := &cli.App{
		Name:      "sender",
		Usage:     "fragment an image into RTP-over-UDP chunks and stream it",
		ArgsUsage: "<destination_ip> <destination_port> <image_path>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to an optional YAML config file"},
		},
		Action: runSender,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runSender(c *cli.Context) error {
	if c.NArg() != 3 {
		return cli.Exit("usage: sender <destination_ip> <destination_port> <image_path>", 1)
	}
	destIP := c.Args().Get(0)
	destPort, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid port %q", c.Args().Get(1)), 1)
	}
	imagePath := c.Args().Get(2)

	logger, err := zap.NewProduction()
	if err != nil {
		return cli.Exit(errors.Wrap(err, "sender: build logger"), 1)
	}
	defer logger.Sync() //nolint:errcheck
	sugar := logger.Sugar()

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(errors.Wrap(err, "sender: load config"), 1)
	}

	image, err := os.ReadFile(imagePath)
	if err != nil {
		return cli.Exit(errors.Wrap(err, "sender: read image file"), 1)
	}

	socket, err := netio.Dial(destIP, destPort)
	if err != nil {
		return cli.Exit(errors.Wrap(err, "sender: dial socket"), 1)
	}
	defer socket.Close() //nolint:errcheck

	clock := clockutil.New()
	store := retransmit.New(cfg.MaxStoredPackets)
	s := sendpipeline.New(cfg, clock, socket, store, sugar.Named("sender"))

	shutdown := core.NewFuse()
	go awaitSignal(shutdown)

	sugar.Infow("sending image", "image", imagePath, "bytes", len(image), "dest", fmt.Sprintf("%s:%d", destIP, destPort))

	frameNum := 0
	for {
		select {
		case <-shutdown.Watch():
			sugar.Infow("sender shutting down", "frames_sent", frameNum, "retransmits", s.RetransmitCount())
			return nil
		default:
		}

		if err := s.SendFrame(image); err != nil {
			return cli.Exit(errors.Wrap(err, "sender: send frame"), 1)
		}
		frameNum++
		sugar.Debugw("frame sent", "frame_num", frameNum, "retransmits", s.RetransmitCount())
	}
}

// awaitSignal trips shutdown on SIGINT/SIGTERM so the send loop exits
// cleanly between frames instead of mid-fragment.
func awaitSignal(shutdown core.Fuse) {
	waitForSignal()
	shutdown.Break()
}
