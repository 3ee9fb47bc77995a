package engine

import (
	"encoding/binary"
	"io"
	"math"
	"sync"
	"time"
)

const bytesPerOutFrame = 8 // stereo float32 LE

// voice is one active playback of a Source. It implements io.Reader for the
// oto player that owns it, producing interleaved stereo float32 LE bytes at
// the mixer rate. All parameter setters go through the voice mutex; the oto
// playback goroutine holds it only for the duration of a Read.
type voice struct {
	mu    sync.Mutex
	mixer *Mixer
	src   Source

	stream  Stream
	srcRate int
	srcCh   int

	// resampling cursor: cur and nxt are consecutive source frames, frac is
	// the interpolation position between them.
	cur, nxt [2]float32
	frac     float64
	primed   bool
	tail     bool // source exhausted, draining the final frame
	srcEOF   bool
	readBuf  []float32
	bufPos   int
	bufLen   int

	clock     float64 // seconds of unpaused output produced
	srcFrames int64   // source frames consumed, for Position

	vol     float64
	pan     float64
	speed   float64
	pitch   float64 // doppler factor, applied on top of speed
	looping bool
	paused  bool
	stopped bool
	done    bool

	volFader   fader
	panFader   fader
	speedFader fader
	schedStop  float64 // voice-clock deadline, <0 when unset
	schedPause float64

	// derived 3D state, recomputed by Update3DAudio
	is3D        bool
	spatial     spatialParams
	spatialGain float64
	spatialPan  float64

	lastL, lastR float64 // applied channel gains, ramped per block
}

func newVoice(m *Mixer, src Source, vol, pan float64, paused bool) *voice {
	v := &voice{
		mixer:       m,
		src:         src,
		stream:      src.NewStream(),
		srcRate:     src.SampleRate(),
		srcCh:       src.Channels(),
		vol:         vol,
		pan:         pan,
		speed:       1,
		pitch:       1,
		paused:      paused,
		spatialGain: 1,
		schedStop:   -1,
		schedPause:  -1,
		readBuf:     make([]float32, 1024*src.Channels()),
	}
	gl, gr := panGains(pan)
	v.lastL, v.lastR = vol*gl, vol*gr
	return v
}

// pullFrame reads the next source frame into dst, refilling the buffered
// chunk as needed and wrapping around on EOF when looping.
func (v *voice) pullFrame(dst *[2]float32) bool {
	for v.bufPos+v.srcCh > v.bufLen {
		if v.srcEOF {
			return false
		}
		n, err := v.stream.ReadSamples(v.readBuf)
		v.bufPos = 0
		v.bufLen = n - n%v.srcCh
		if v.bufLen > 0 {
			break
		}
		if err == nil || err == io.EOF {
			// End of material: wrap around when looping, else finish.
			if v.looping && v.stream.Seek(0) == nil {
				v.srcFrames = 0
				continue
			}
		}
		v.srcEOF = true
		return false
	}
	switch v.srcCh {
	case 1:
		s := v.readBuf[v.bufPos]
		dst[0], dst[1] = s, s
	default:
		dst[0] = v.readBuf[v.bufPos]
		dst[1] = v.readBuf[v.bufPos+1]
	}
	v.bufPos += v.srcCh
	v.srcFrames++
	return true
}

// panGains maps pan in [-1,1] to constant-power stereo gains.
func panGains(pan float64) (l, r float64) {
	if pan < -1 {
		pan = -1
	}
	if pan > 1 {
		pan = 1
	}
	theta := (pan + 1) * math.Pi / 4
	return math.Cos(theta), math.Sin(theta)
}

func (v *voice) Read(p []byte) (int, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.stopped || v.done {
		return 0, io.EOF
	}
	frames := len(p) / bytesPerOutFrame
	if frames == 0 {
		return 0, nil
	}
	outRate := float64(v.mixer.rate)
	blockDur := float64(frames) / outRate

	// Scheduled actions fire at block granularity on the voice clock.
	if v.schedStop >= 0 && v.clock >= v.schedStop {
		v.done = true
		return 0, io.EOF
	}
	if v.schedPause >= 0 && v.clock >= v.schedPause {
		v.paused = true
		v.schedPause = -1
	}

	if v.paused {
		for i := 0; i < frames*bytesPerOutFrame; i++ {
			p[i] = 0
		}
		return frames * bytesPerOutFrame, nil
	}

	// Advance faders, committing their value into the base parameter.
	if v.volFader.active() {
		v.vol = v.volFader.value(v.clock, v.vol)
	}
	if v.panFader.active() {
		v.pan = v.panFader.value(v.clock, v.pan)
	}
	if v.speedFader.active() {
		v.speed = clampSpeed(v.speedFader.value(v.clock, v.speed))
	}

	globalVol := v.mixer.globalGain()
	gl, gr := panGains(clamp(v.pan+v.spatialPan, -1, 1))
	targetL := v.vol * v.spatialGain * globalVol * gl
	targetR := v.vol * v.spatialGain * globalVol * gr

	step := v.speed * v.pitch * float64(v.srcRate) / outRate
	if step <= 0 {
		step = float64(v.srcRate) / outRate
	}

	if !v.primed {
		if !v.pullFrame(&v.cur) {
			v.done = true
			return 0, io.EOF
		}
		if !v.pullFrame(&v.nxt) {
			v.tail = true
			v.nxt = v.cur
		}
		v.primed = true
	}

	rampL := (targetL - v.lastL) / float64(frames)
	rampR := (targetR - v.lastR) / float64(frames)

	produced := 0
	for i := 0; i < frames; i++ {
		if v.tail && v.frac >= 1 {
			v.done = true
			break
		}
		for v.frac >= 1 {
			v.cur = v.nxt
			if !v.pullFrame(&v.nxt) {
				// Source exhausted: drain the final frame, then finish.
				v.tail = true
				v.nxt = v.cur
				v.frac = 0
				break
			}
			v.frac--
		}
		l := float64(v.cur[0]) + (float64(v.nxt[0])-float64(v.cur[0]))*v.frac
		r := float64(v.cur[1]) + (float64(v.nxt[1])-float64(v.cur[1]))*v.frac
		v.lastL += rampL
		v.lastR += rampR
		off := i * bytesPerOutFrame
		binary.LittleEndian.PutUint32(p[off:], math.Float32bits(float32(l*v.lastL)))
		binary.LittleEndian.PutUint32(p[off+4:], math.Float32bits(float32(r*v.lastR)))
		v.frac += step
		produced++
	}
	v.lastL, v.lastR = targetL, targetR
	v.clock += blockDur * float64(produced) / float64(frames)

	if produced == 0 {
		return 0, io.EOF
	}
	return produced * bytesPerOutFrame, nil
}

func (v *voice) position() time.Duration {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.srcRate == 0 {
		return 0
	}
	return time.Duration(float64(v.srcFrames) / float64(v.srcRate) * float64(time.Second))
}

func (v *voice) seek(t time.Duration) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if err := v.stream.Seek(t); err != nil {
		return err
	}
	v.srcFrames = int64(t.Seconds() * float64(v.srcRate))
	v.primed = false
	v.tail = false
	v.srcEOF = false
	v.done = false
	v.frac = 0
	v.bufPos, v.bufLen = 0, 0
	return nil
}

func (v *voice) live() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return !v.done && !v.stopped
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// clampSpeed keeps relative play speed off zero, as the engine does.
func clampSpeed(s float64) float64 {
	if s < 0.05 {
		return 0.05
	}
	return s
}
