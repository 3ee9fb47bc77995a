package soundbox

import (
	"sync"
	"sync/atomic"
)

// FrameBuffer accumulates fixed-size capture frames. It is single-writer:
// only the device callback calls Push, while any number of goroutines may
// read. Completed frames are published through an atomic cursor, so readers
// never observe a frame that is still being written. Once the session
// buffer is full further frames are counted and dropped instead of written
// out of bounds.
type FrameBuffer struct {
	frameSize int
	maxFrames int
	data      []float32

	frames  atomic.Int64 // completed frames in data
	dropped atomic.Int64

	latestMu sync.Mutex
	latest   []float32
	hasFrame bool
}

// NewFrameBuffer sizes a buffer for maxFrames frames of frameSize samples.
func NewFrameBuffer(frameSize, maxFrames int) *FrameBuffer {
	return &FrameBuffer{
		frameSize: frameSize,
		maxFrames: maxFrames,
		data:      make([]float32, frameSize*maxFrames),
		latest:    make([]float32, frameSize),
	}
}

// FrameSize returns the samples per frame.
func (b *FrameBuffer) FrameSize() int { return b.frameSize }

// Capacity returns the session buffer capacity in frames.
func (b *FrameBuffer) Capacity() int { return b.maxFrames }

// Push records one captured frame. Short frames are zero-padded, long ones
// truncated to the frame size. Writer-side only.
func (b *FrameBuffer) Push(frame []float32) {
	b.latestMu.Lock()
	n := copy(b.latest, frame)
	for i := n; i < b.frameSize; i++ {
		b.latest[i] = 0
	}
	b.hasFrame = true
	b.latestMu.Unlock()

	cur := b.frames.Load()
	if int(cur) >= b.maxFrames {
		b.dropped.Add(1)
		return
	}
	off := int(cur) * b.frameSize
	m := copy(b.data[off:off+b.frameSize], frame)
	for i := m; i < b.frameSize; i++ {
		b.data[off+i] = 0
	}
	b.frames.Store(cur + 1)
}

// FrameCount returns how many frames the session buffer holds.
func (b *FrameBuffer) FrameCount() int { return int(b.frames.Load()) }

// DroppedFrames returns how many frames arrived after the buffer filled.
func (b *FrameBuffer) DroppedFrames() int { return int(b.dropped.Load()) }

// LatestFrame copies the most recent frame into dst and returns the number
// of samples written, or 0 when nothing has been captured yet.
func (b *FrameBuffer) LatestFrame(dst []float32) int {
	b.latestMu.Lock()
	defer b.latestMu.Unlock()
	if !b.hasFrame {
		return 0
	}
	return copy(dst, b.latest)
}

// Samples returns a copy of all completed session samples in capture order.
func (b *FrameBuffer) Samples() []float32 {
	n := int(b.frames.Load()) * b.frameSize
	out := make([]float32, n)
	copy(out, b.data[:n])
	return out
}

// Reset rewinds the session buffer. Not safe against a concurrent Push;
// stop capture first.
func (b *FrameBuffer) Reset() {
	b.frames.Store(0)
	b.dropped.Store(0)
	b.latestMu.Lock()
	b.hasFrame = false
	b.latestMu.Unlock()
}
