package soundbox

import (
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// CaptureConfig sizes a capture session.
type CaptureConfig struct {
	// SampleRate of the capture stream in Hz.
	SampleRate int
	// Channels delivered per frame (1 = mono).
	Channels int
	// FrameSize is the number of samples per device callback.
	FrameSize int
	// MaxFrames caps the session buffer; frames past it are dropped.
	MaxFrames int
}

// DefaultCaptureConfig matches the wrapped layer's defaults: 44.1kHz mono,
// 256-sample frames, ten seconds of session buffer.
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		SampleRate: 44100,
		Channels:   1,
		FrameSize:  256,
		MaxFrames:  44100 * 10 / 256,
	}
}

// Capture relays fixed-size frames from a device callback into an owned
// FrameBuffer. The callback runs on a PortAudio-owned thread; everything
// else is synchronous calls from the host.
type Capture struct {
	mu      sync.Mutex
	cfg     CaptureConfig
	stream  *portaudio.Stream
	buf     *FrameBuffer
	inited  bool
	started bool
}

// NewCapture prepares a session. Nothing touches the device until Init.
func NewCapture(cfg CaptureConfig) *Capture {
	if cfg.SampleRate <= 0 {
		cfg = DefaultCaptureConfig()
	}
	return &Capture{
		cfg: cfg,
		buf: NewFrameBuffer(cfg.FrameSize*cfg.Channels, cfg.MaxFrames),
	}
}

// Init opens the capture device. deviceIndex addresses the list returned by
// ListCaptureDevices; -1 selects the default input device. Initializing an
// already-initialized session fails, mirroring the wrapped layer.
func (c *Capture) Init(deviceIndex int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.inited {
		return ErrCaptureInitFailed
	}
	if err := paAcquire(); err != nil {
		return fmt.Errorf("%w: %v", ErrCaptureInitFailed, err)
	}

	var dev *portaudio.DeviceInfo
	var err error
	if deviceIndex < 0 {
		dev, err = portaudio.DefaultInputDevice()
	} else {
		var in []*portaudio.DeviceInfo
		in, err = inputDevices()
		if err == nil {
			if deviceIndex >= len(in) {
				err = fmt.Errorf("no input device at index %d", deviceIndex)
			} else {
				dev = in[deviceIndex]
			}
		}
	}
	if err != nil {
		paRelease()
		return fmt.Errorf("%w: %v", ErrCaptureInitFailed, err)
	}

	params := portaudio.LowLatencyParameters(dev, nil)
	params.Input.Channels = c.cfg.Channels
	params.SampleRate = float64(c.cfg.SampleRate)
	params.FramesPerBuffer = c.cfg.FrameSize

	stream, err := portaudio.OpenStream(params, c.buf.Push)
	if err != nil {
		paRelease()
		return fmt.Errorf("%w: %v", ErrCaptureInitFailed, err)
	}
	c.stream = stream
	c.inited = true
	return nil
}

// Start begins delivering frames to the session buffer.
func (c *Capture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.inited {
		return ErrCaptureNotInited
	}
	if c.started {
		return nil
	}
	if err := c.stream.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrFailedToStartDevice, err)
	}
	c.started = true
	return nil
}

// Stop halts capture and releases the device; the session buffer keeps its
// contents. Like the wrapped layer, Stop tears the device down, so a new
// Init is needed to capture again.
func (c *Capture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.inited {
		return ErrCaptureNotInited
	}
	if c.started {
		_ = c.stream.Stop()
		c.started = false
	}
	_ = c.stream.Close()
	c.stream = nil
	c.inited = false
	paRelease()
	return nil
}

// Dispose releases everything. Safe to call in any state.
func (c *Capture) Dispose() {
	c.mu.Lock()
	inited := c.inited
	c.mu.Unlock()
	if inited {
		_ = c.Stop()
	}
}

// IsInited reports whether the device is open.
func (c *Capture) IsInited() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inited
}

// IsStarted reports whether frames are being delivered.
func (c *Capture) IsStarted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inited && c.started
}

// Buffer exposes the session frame buffer.
func (c *Capture) Buffer() *FrameBuffer { return c.buf }

// LatestFrame copies the most recent frame into dst.
func (c *Capture) LatestFrame(dst []float32) int { return c.buf.LatestFrame(dst) }

// FrameCount returns the number of frames accumulated this session.
func (c *Capture) FrameCount() int { return c.buf.FrameCount() }

// Samples returns a copy of everything captured this session, in order.
func (c *Capture) Samples() []float32 { return c.buf.Samples() }

// DroppedFrames counts frames discarded after the session buffer filled.
func (c *Capture) DroppedFrames() int { return c.buf.DroppedFrames() }

// Reset rewinds the session buffer. Call only while stopped.
func (c *Capture) Reset() { c.buf.Reset() }
