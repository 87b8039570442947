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

package rtpstats

import "github.com/prometheus/client_golang/prometheus"

// PrometheusCollector mirrors the teacher's own telemetry pattern
// (pkg/telemetry/prometheus, referenced from the sfu package's forward
// stats): a thin collector that reads Stats' atomic counters into
// Prometheus gauges/counters on each scrape, so the pipeline's hot
// path never touches the Prometheus client directly.
type PrometheusCollector struct {
	stats *Stats

	packetsReceived    *prometheus.Desc
	packetsLost        *prometheus.Desc
	framesReceived     *prometheus.Desc
	totalBytes         *prometheus.Desc
	retransmitRequests *prometheus.Desc
	packetsReordered   *prometheus.Desc
}

// NewPrometheusCollector wraps stats for registration with a
// prometheus.Registry.
func NewPrometheusCollector(stats *Stats) *PrometheusCollector {
	ns := "rtp_jpeg_streamer"
	return &PrometheusCollector{
		stats: stats,
		packetsReceived: prometheus.NewDesc(
			ns+"_packets_received_total", "Total RTP data packets received off the wire.", nil, nil),
		packetsLost: prometheus.NewDesc(
			ns+"_packets_lost_total", "Sequences the reorder buffer aged out without ever receiving.", nil, nil),
		framesReceived: prometheus.NewDesc(
			ns+"_frames_received_total", "Frames successfully reassembled and JPEG-validated.", nil, nil),
		totalBytes: prometheus.NewDesc(
			ns+"_bytes_received_total", "Bytes received off the wire, including headers.", nil, nil),
		retransmitRequests: prometheus.NewDesc(
			ns+"_retransmit_requests_total", "NACKs emitted by the gap detector.", nil, nil),
		packetsReordered: prometheus.NewDesc(
			ns+"_packets_reordered_total", "Packets that arrived out of sequence order.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.packetsReceived
	ch <- c.packetsLost
	ch <- c.framesReceived
	ch <- c.totalBytes
	ch <- c.retransmitRequests
	ch <- c.packetsReordered
}

// Collect implements prometheus.Collector, reading a fresh snapshot
// on every scrape.
func (c *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	snap := c.stats.Snapshot()

	ch <- prometheus.MustNewConstMetric(c.packetsReceived, prometheus.CounterValue, float64(snap.PacketsReceived))
	ch <- prometheus.MustNewConstMetric(c.packetsLost, prometheus.CounterValue, float64(snap.PacketsLost))
	ch <- prometheus.MustNewConstMetric(c.framesReceived, prometheus.CounterValue, float64(snap.FramesReceived))
	ch <- prometheus.MustNewConstMetric(c.totalBytes, prometheus.CounterValue, float64(snap.TotalBytes))
	ch <- prometheus.MustNewConstMetric(c.retransmitRequests, prometheus.CounterValue, float64(snap.RetransmitRequests))
	ch <- prometheus.MustNewConstMetric(c.packetsReordered, prometheus.CounterValue, float64(snap.PacketsReordered))
}
