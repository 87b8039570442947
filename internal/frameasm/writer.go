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

package frameasm

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gammazero/deque"
	"go.uber.org/zap"
)

//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -o frameasmfakes/fake_writer.go . Writer

// Writer persists one finalized, JPEG-valid frame. Implementations
// must preserve the order frames are submitted in — the pipeline
// hands frames to Submit in strict ascending frame-count order and
// relies on the writer never reordering them on the way to disk.
type Writer interface {
	Submit(frameNum int, data []byte)
	Close()
}

// FileWriter writes each frame to dir/received_frame_NNNN.jpg. Writes
// happen on a single background goroutine draining a FIFO of pending
// frames, the same shape as the teacher's OpsQueue
// (pkg/utils/opsqueue.go): one gammazero/deque, one consumer, woken by
// a buffered channel — adapted here so disk I/O never blocks the
// receive loop, while frames still land on disk in the order the
// pipeline finalized them (a worker pool would not give that
// guarantee).
type FileWriter struct {
	dir    string
	logger *zap.SugaredLogger

	lock      sync.Mutex
	ops       deque.Deque[frameOp]
	wake      chan struct{}
	doneChan  chan struct{}
	isStopped bool
}

type frameOp struct {
	frameNum int
	data     []byte
}

// NewFileWriter builds a writer rooted at dir and starts its drain
// goroutine. dir is created if missing.
func NewFileWriter(dir string, logger *zap.SugaredLogger) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	w := &FileWriter{
		dir:      dir,
		logger:   logger,
		wake:     make(chan struct{}, 1),
		doneChan: make(chan struct{}),
	}
	w.ops.SetMinCapacity(4)
	go w.process()
	return w, nil
}

// Submit enqueues a frame for writing and returns immediately; data is
// copied, the caller's buffer may be reused right after this call
// returns.
func (w *FileWriter) Submit(frameNum int, data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)

	w.lock.Lock()
	defer w.lock.Unlock()
	if w.isStopped {
		return
	}
	w.ops.PushBack(frameOp{frameNum: frameNum, data: cp})
	if w.ops.Len() == 1 {
		select {
		case w.wake <- struct{}{}:
		default:
		}
	}
}

// Close flushes any pending frames and stops the drain goroutine.
func (w *FileWriter) Close() {
	w.lock.Lock()
	if w.isStopped {
		w.lock.Unlock()
		return
	}
	w.isStopped = true
	close(w.wake)
	w.lock.Unlock()
	<-w.doneChan
}

func (w *FileWriter) process() {
	defer close(w.doneChan)

	for {
		<-w.wake
		for {
			w.lock.Lock()
			if w.ops.Len() == 0 {
				w.lock.Unlock()
				break
			}
			op := w.ops.PopFront()
			w.lock.Unlock()

			w.writeOne(op)
		}

		w.lock.Lock()
		stopped := w.isStopped && w.ops.Len() == 0
		w.lock.Unlock()
		if stopped {
			return
		}
	}
}

func (w *FileWriter) writeOne(op frameOp) {
	path := filepath.Join(w.dir, fmt.Sprintf("received_frame_%04d.jpg", op.frameNum))
	if err := os.WriteFile(path, op.data, 0o644); err != nil {
		if w.logger != nil {
			w.logger.Errorw("failed to write frame", "err", err, "path", path)
		}
		return
	}
	if w.logger != nil {
		w.logger.Debugw("wrote frame", "path", path, "bytes", len(op.data))
	}
}
