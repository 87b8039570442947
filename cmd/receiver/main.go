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

// Command receiver is the CLI entry point for the receive side of the
// pipeline: it binds a UDP socket, wires the four pipeline stages
// together via internal/receivepipeline, and drives the single
// cooperative loop spec.md §2 describes until interrupted.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/frostbyte73/core"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/livekit/rtp-jpeg-streamer/internal/clockutil"
	"github.com/livekit/rtp-jpeg-streamer/internal/config"
	"github.com/livekit/rtp-jpeg-streamer/internal/frameasm"
	"github.com/livekit/rtp-jpeg-streamer/internal/netio"
	"github.com/livekit/rtp-jpeg-streamer/internal/receivepipeline"
	"github.com/livekit/rtp-jpeg-streamer/internal/rtpstats"
	"github.com/livekit/rtp-jpeg-streamer/internal/wireformat"
)

// readTimeout is the bounded-blocking read deadline armed before
// every ReadFrom: short enough that the pipeline's periodic ticks
// (jitter drain, NACK backoff, reorder age-out) keep firing even
// during a quiet socket, per spec.md §5.
const readTimeout = 5 * time.Millisecond

func main() {
	app := &cli.App{
		Name:      "receiver",
		Usage:     "receive fragmented JPEG frames over RTP-over-UDP",
		ArgsUsage: "<listen_port>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to an optional YAML config file"},
			&cli.StringFlag{Name: "output", Usage: "override the directory frames are written to"},
			&cli.IntFlag{Name: "metrics-port", Usage: "serve Prometheus /metrics on this port (0 disables)", Value: 9090},
		},
		Action: runReceiver,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runReceiver(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: receiver <listen_port>", 1)
	}
	portNum, err := strconv.Atoi(c.Args().Get(0))
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid port %q", c.Args().Get(0)), 1)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return cli.Exit(errors.Wrap(err, "receiver: build logger"), 1)
	}
	defer logger.Sync() //nolint:errcheck
	sugar := logger.Sugar()

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return cli.Exit(errors.Wrap(err, "receiver: load config"), 1)
	}
	if out := c.String("output"); out != "" {
		cfg.OutputDir = out
	}

	socket, err := netio.Listen(portNum)
	if err != nil {
		return cli.Exit(errors.Wrap(err, "receiver: bind socket"), 1)
	}
	defer socket.Close() //nolint:errcheck

	writer, err := frameasm.NewFileWriter(cfg.OutputDir, sugar.Named("writer"))
	if err != nil {
		return cli.Exit(errors.Wrap(err, "receiver: open output directory"), 1)
	}
	defer writer.Close()

	clock := clockutil.New()
	stats := rtpstats.New(clock)
	sender := &nackSender{socket: socket}
	pipeline := receivepipeline.New(cfg, clock, writer, sender, stats, sugar.Named("pipeline"))

	metricsSrv := startMetricsServer(c.Int("metrics-port"), stats, sugar.Named("metrics"))
	if metricsSrv != nil {
		defer metricsSrv.Shutdown(context.Background()) //nolint:errcheck
	}

	shutdown := core.NewFuse()
	go awaitSignal(shutdown)

	sugar.Infow("receiver listening", "port", portNum, "output_dir", cfg.OutputDir)
	runLoop(socket, pipeline, sender, shutdown, sugar)

	pipeline.FlushPartial()
	rtpstats.WriteTable(os.Stdout, stats.Snapshot())
	return nil
}

// startMetricsServer registers a PrometheusCollector against a private
// registry and serves it on /metrics, giving the counters of spec.md
// §3/§4.9 the scrape surface SPEC_FULL §11 calls for. port == 0 skips
// this entirely — the console snapshot printed on exit still reports
// the same counters either way.
func startMetricsServer(port int, stats *rtpstats.Stats, logger *zap.SugaredLogger) *http.Server {
	if port == 0 {
		return nil
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(rtpstats.NewPrometheusCollector(stats))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warnw("metrics server stopped", "err", err)
		}
	}()

	logger.Infow("serving prometheus metrics", "port", port)
	return srv
}

// runLoop is the single cooperative loop of spec.md §2: each iteration
// tries one bounded-blocking read, hands any parsed packet to the
// pipeline, then always ticks the periodic stages regardless of
// whether a packet arrived.
func runLoop(socket *netio.UDPSocket, pipeline *receivepipeline.Pipeline, sender *nackSender, shutdown core.Fuse, sugar *zap.SugaredLogger) {
	buf := make([]byte, wireformat.MaxPacketSize)

	for {
		select {
		case <-shutdown.Watch():
			return
		default:
		}

		if err := socket.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
			sugar.Warnw("failed to arm read deadline", "err", err)
		}

		n, addr, err := socket.ReadFrom(buf)
		if err != nil {
			// TRANSIENT_IO: a read timeout is the expected steady
			// state between arrivals and is never logged above debug
			// (spec.md §7).
			if ne, ok := err.(net.Error); !ok || !ne.Timeout() {
				sugar.Debugw("read error", "err", err)
			}
		} else {
			sender.setPeer(addr)
			pkt, decodeErr := wireformat.Decode(buf[:n])
			if decodeErr != nil {
				sugar.Debugw("dropping malformed packet", "err", decodeErr)
			} else {
				pipeline.OnPacket(pkt, n)
			}
		}

		pipeline.Tick()
	}
}

// awaitSignal trips shutdown on SIGINT/SIGTERM so runLoop's next
// iteration exits and the caller can flush a partial frame before the
// process exits (spec.md §12's completion of the original's evident,
// never-populated flush-on-exit intent).
func awaitSignal(shutdown core.Fuse) {
	waitForSignal()
	shutdown.Break()
}
