//go:build headless

package video

import "sync/atomic"

// HeadlessSink discards presented frames but tracks how many were
// delivered, adapted from the teacher's HeadlessVideoOutput.
type HeadlessSink struct {
	started    bool
	frameCount uint64
}

func NewHeadlessSink() *HeadlessSink { return &HeadlessSink{} }

func (h *HeadlessSink) Start() error { h.started = true; return nil }
func (h *HeadlessSink) Stop() error  { h.started = false; return nil }
func (h *HeadlessSink) Close() error { h.started = false; return nil }
func (h *HeadlessSink) IsStarted() bool { return h.started }

func (h *HeadlessSink) UpdateFrame(buf []byte, width, height int) error {
	atomic.AddUint64(&h.frameCount, 1)
	return nil
}

func (h *HeadlessSink) GetFrameCount() uint64 {
	return atomic.LoadUint64(&h.frameCount)
}
