package engine

import (
	"math"
	"sync"
	"time"
)

// Waveform selects the shape produced by a synthesized source.
type Waveform int

const (
	WaveSquare Waveform = iota
	WaveSaw
	WaveSin
	WaveTriangle
	WaveBounce
	WaveJaws
	WaveHumps
	WaveFSquare // band-limited square (first four odd harmonics)
	WaveFSaw    // band-limited saw (first four harmonics)
)

// IsValid reports whether w names a known waveform kind.
func (w Waveform) IsValid() bool { return w >= WaveSquare && w <= WaveFSaw }

// superVoices is the number of detuned oscillators layered when a
// WaveformSource runs in superwave mode.
const superVoices = 3

// WaveformSource is a procedural generator source. Its parameters may be
// mutated while voices are playing it; streams pick the change up on their
// next read.
type WaveformSource struct {
	mu        sync.Mutex
	kind      Waveform
	freq      float64
	superWave bool
	scale     float64
	detune    float64
	rate      int
}

// NewWaveformSource builds a generator producing mono samples at rate Hz.
// The default frequency is 440 Hz.
func NewWaveformSource(kind Waveform, superWave bool, scale, detune float64, rate int) *WaveformSource {
	return &WaveformSource{
		kind:      kind,
		freq:      440,
		superWave: superWave,
		scale:     scale,
		detune:    detune,
		rate:      rate,
	}
}

func (w *WaveformSource) NewStream() Stream {
	return &waveformStream{src: w, phase: make([]float64, superVoices)}
}

func (w *WaveformSource) SampleRate() int         { return w.rate }
func (w *WaveformSource) Channels() int           { return 1 }
func (w *WaveformSource) Duration() time.Duration { return 0 }

func (w *WaveformSource) SetWaveform(kind Waveform) {
	w.mu.Lock()
	w.kind = kind
	w.mu.Unlock()
}

func (w *WaveformSource) SetFreq(freq float64) {
	w.mu.Lock()
	w.freq = freq
	w.mu.Unlock()
}

func (w *WaveformSource) SetScale(scale float64) {
	w.mu.Lock()
	w.scale = scale
	w.mu.Unlock()
}

func (w *WaveformSource) SetDetune(detune float64) {
	w.mu.Lock()
	w.detune = detune
	w.mu.Unlock()
}

func (w *WaveformSource) SetSuperWave(enabled bool) {
	w.mu.Lock()
	w.superWave = enabled
	w.mu.Unlock()
}

func (w *WaveformSource) snapshot() (Waveform, float64, bool, float64, float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.kind, w.freq, w.superWave, w.scale, w.detune
}

type waveformStream struct {
	src   *WaveformSource
	phase []float64 // one per layered oscillator, in [0,1)
}

func (s *waveformStream) ReadSamples(dst []float32) (int, error) {
	kind, freq, superWave, scale, detune := s.src.snapshot()
	rate := float64(s.src.rate)

	voices := 1
	if superWave {
		voices = superVoices
	}
	for i := range dst {
		var sum float64
		for v := 0; v < voices; v++ {
			f := freq
			if superWave && v > 0 {
				f += detune * float64(v) * scale
			}
			sum += shape(kind, s.phase[v])
			s.phase[v] += f / rate
			s.phase[v] -= math.Floor(s.phase[v])
		}
		dst[i] = float32(sum / float64(voices))
	}
	return len(dst), nil
}

// Seek on a generator just realigns the oscillator phases.
func (s *waveformStream) Seek(t time.Duration) error {
	_, freq, _, _, _ := s.src.snapshot()
	p := t.Seconds() * freq
	p -= math.Floor(p)
	for i := range s.phase {
		s.phase[i] = p
	}
	return nil
}

// shape evaluates one waveform kind at phase p in [0,1).
func shape(kind Waveform, p float64) float64 {
	switch kind {
	case WaveSquare:
		if p < 0.5 {
			return 1
		}
		return -1
	case WaveSaw:
		return 2*p - 1
	case WaveSin:
		return math.Sin(2 * math.Pi * p)
	case WaveTriangle:
		return 1 - 4*math.Abs(p-0.5)
	case WaveBounce:
		return 2*math.Abs(math.Sin(math.Pi*p)) - 1
	case WaveJaws:
		// rising saw shaped by a half-sine envelope
		return (2*p - 1) * math.Sin(math.Pi*p)
	case WaveHumps:
		return math.Abs(math.Sin(2 * math.Pi * p))
	case WaveFSquare:
		var v float64
		for _, k := range [...]float64{1, 3, 5, 7} {
			v += math.Sin(2*math.Pi*p*k) / k
		}
		return v * 4 / math.Pi
	case WaveFSaw:
		var v float64
		for k := 1.0; k <= 4; k++ {
			v += math.Sin(2*math.Pi*p*k) / k
		}
		return v * 2 / math.Pi
	}
	return 0
}
