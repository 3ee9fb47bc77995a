package engine

import (
	"io"
	"time"
)

// Source is a playable audio resource. A Source may be played by any number
// of voices at once, so per-voice read state lives in the Stream it hands
// out, never in the Source itself.
type Source interface {
	// NewStream returns an independent read cursor over the source.
	NewStream() Stream
	// SampleRate of the source material in Hz.
	SampleRate() int
	// Channels count of the source material (1=mono, 2=stereo).
	Channels() int
	// Duration of the material, or 0 if unbounded (generators).
	Duration() time.Duration
}

// Stream reads interleaved float32 samples in [-1,1].
// ReadSamples returns the number of float32 values written; io.EOF signals
// the end of bounded material.
type Stream interface {
	ReadSamples(dst []float32) (int, error)
	Seek(t time.Duration) error
}

// BufferSource holds fully decoded PCM in memory.
type BufferSource struct {
	Data []float32 // interleaved
	Rate int
	Ch   int
}

// NewBufferSource wraps interleaved PCM data. Rate and channel count
// describe the data as-is; no conversion happens here.
func NewBufferSource(data []float32, rate, channels int) *BufferSource {
	return &BufferSource{Data: data, Rate: rate, Ch: channels}
}

func (b *BufferSource) NewStream() Stream { return &bufferStream{src: b} }
func (b *BufferSource) SampleRate() int   { return b.Rate }
func (b *BufferSource) Channels() int     { return b.Ch }

func (b *BufferSource) Duration() time.Duration {
	if b.Rate == 0 || b.Ch == 0 {
		return 0
	}
	frames := len(b.Data) / b.Ch
	return time.Duration(float64(frames) / float64(b.Rate) * float64(time.Second))
}

type bufferStream struct {
	src *BufferSource
	pos int // in float32 values
}

func (s *bufferStream) ReadSamples(dst []float32) (int, error) {
	if s.pos >= len(s.src.Data) {
		return 0, io.EOF
	}
	n := copy(dst, s.src.Data[s.pos:])
	s.pos += n
	return n, nil
}

func (s *bufferStream) Seek(t time.Duration) error {
	frame := int(t.Seconds() * float64(s.src.Rate))
	pos := frame * s.src.Ch
	if pos < 0 {
		pos = 0
	}
	if pos > len(s.src.Data) {
		pos = len(s.src.Data)
	}
	s.pos = pos
	return nil
}
