// Package enginetest provides a recording in-memory engine for registry
// tests. It issues handles and tracks per-voice state without producing any
// audio.
package enginetest

import (
	"sync"
	"time"

	"soundbox/engine"
)

// FadeCall records one fade or oscillation request.
type FadeCall struct {
	Handle   engine.Handle
	Param    engine.Param
	From, To float64
	Duration time.Duration
	Osc      bool
}

// Voice is the fake's view of one playback.
type Voice struct {
	Src      engine.Source
	Volume   float64
	VoicePan float64
	Speed    float64
	Paused   bool
	Looping  bool
	Is3D     bool
	Pos, Vel engine.Vec3
	Position time.Duration
	Live     bool
}

// Fake implements soundbox.Engine entirely in memory.
type Fake struct {
	mu sync.Mutex

	next      engine.Handle
	Voices    map[engine.Handle]*Voice
	StopCalls []engine.Handle
	Fades     []FadeCall
	Disposed  bool

	globalVol  float64
	listener   engine.Listener
	soundSpeed float64

	// NextHandleZero forces the next Play to fail with handle 0.
	NextHandleZero bool
}

func New() *Fake {
	return &Fake{
		Voices:     make(map[engine.Handle]*Voice),
		globalVol:  1,
		soundSpeed: 343,
	}
}

func (f *Fake) voice(h engine.Handle) *Voice {
	v := f.Voices[h]
	if v == nil || !v.Live {
		return nil
	}
	return v
}

func (f *Fake) play(src engine.Source, volume, pan float64, paused bool) engine.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.NextHandleZero {
		f.NextHandleZero = false
		return 0
	}
	f.next++
	f.Voices[f.next] = &Voice{
		Src:      src,
		Volume:   volume,
		VoicePan: pan,
		Speed:    1,
		Paused:   paused,
		Live:     true,
	}
	return f.next
}

func (f *Fake) Play(src engine.Source, volume, pan float64, paused bool) engine.Handle {
	return f.play(src, volume, pan, paused)
}

func (f *Fake) Play3D(src engine.Source, pos, vel engine.Vec3, volume float64, paused bool) engine.Handle {
	h := f.play(src, volume, 0, paused)
	if h != 0 {
		f.mu.Lock()
		f.Voices[h].Is3D = true
		f.Voices[h].Pos = pos
		f.Voices[h].Vel = vel
		f.mu.Unlock()
	}
	return h
}

func (f *Fake) Stop(h engine.Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.StopCalls = append(f.StopCalls, h)
	if v := f.Voices[h]; v != nil {
		v.Live = false
	}
}

func (f *Fake) StopSource(src engine.Source) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for h, v := range f.Voices {
		if v.Src == src && v.Live {
			v.Live = false
			f.StopCalls = append(f.StopCalls, h)
		}
	}
}

func (f *Fake) StopAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for h, v := range f.Voices {
		if v.Live {
			v.Live = false
			f.StopCalls = append(f.StopCalls, h)
		}
	}
}

func (f *Fake) Dispose() {
	f.StopAll()
	f.mu.Lock()
	f.Disposed = true
	f.mu.Unlock()
}

func (f *Fake) IsValidHandle(h engine.Handle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.voice(h) != nil
}

func (f *Fake) VoiceCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.Voices {
		if v.Live {
			n++
		}
	}
	return n
}

func (f *Fake) ActiveVoiceCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.Voices {
		if v.Live && !v.Paused {
			n++
		}
	}
	return n
}

func (f *Fake) SetPause(h engine.Handle, paused bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v := f.voice(h); v != nil {
		v.Paused = paused
	}
}

func (f *Fake) Pause(h engine.Handle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.voice(h)
	return v != nil && v.Paused
}

func (f *Fake) SetVolume(h engine.Handle, volume float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v := f.voice(h); v != nil {
		v.Volume = volume
	}
}

func (f *Fake) Volume(h engine.Handle) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v := f.voice(h); v != nil {
		return v.Volume
	}
	return 0
}

func (f *Fake) SetPan(h engine.Handle, pan float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v := f.voice(h); v != nil {
		v.VoicePan = pan
	}
}

func (f *Fake) Pan(h engine.Handle) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v := f.voice(h); v != nil {
		return v.VoicePan
	}
	return 0
}

func (f *Fake) SetSpeed(h engine.Handle, speed float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v := f.voice(h); v != nil {
		if speed < 0.05 {
			speed = 0.05
		}
		v.Speed = speed
	}
}

func (f *Fake) Speed(h engine.Handle) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v := f.voice(h); v != nil {
		return v.Speed
	}
	return 0
}

func (f *Fake) SetLooping(h engine.Handle, looping bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v := f.voice(h); v != nil {
		v.Looping = looping
	}
}

func (f *Fake) Looping(h engine.Handle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.voice(h)
	return v != nil && v.Looping
}

func (f *Fake) Seek(h engine.Handle, t time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.voice(h)
	if v == nil {
		return engine.ErrInvalidHandle
	}
	v.Position = t
	return nil
}

func (f *Fake) Position(h engine.Handle) time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v := f.voice(h); v != nil {
		return v.Position
	}
	return 0
}

func (f *Fake) SetGlobalVolume(volume float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.globalVol = volume
}

func (f *Fake) GlobalVolume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.globalVol
}

func (f *Fake) Fade(h engine.Handle, p engine.Param, to float64, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Fades = append(f.Fades, FadeCall{Handle: h, Param: p, To: to, Duration: d})
}

func (f *Fake) Oscillate(h engine.Handle, p engine.Param, from, to float64, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Fades = append(f.Fades, FadeCall{Handle: h, Param: p, From: from, To: to, Duration: d, Osc: true})
}

func (f *Fake) FadeGlobalVolume(to float64, d time.Duration) {
	f.Fade(0, engine.ParamVolume, to, d)
}

func (f *Fake) OscillateGlobalVolume(from, to float64, d time.Duration) {
	f.Oscillate(0, engine.ParamVolume, from, to, d)
}

func (f *Fake) ScheduleStop(engine.Handle, time.Duration)  {}
func (f *Fake) SchedulePause(engine.Handle, time.Duration) {}

func (f *Fake) SetListener(l engine.Listener) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listener = l
}

func (f *Fake) ListenerState() engine.Listener {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listener
}

func (f *Fake) SetSoundSpeed(speed float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.soundSpeed = speed
}

func (f *Fake) SoundSpeed() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.soundSpeed
}

func (f *Fake) Set3DSourceParams(h engine.Handle, pos, vel engine.Vec3) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v := f.voice(h); v != nil {
		v.Pos, v.Vel = pos, vel
	}
}

func (f *Fake) Set3DSourcePosition(h engine.Handle, pos engine.Vec3) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v := f.voice(h); v != nil {
		v.Pos = pos
	}
}

func (f *Fake) Set3DSourceVelocity(h engine.Handle, vel engine.Vec3) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v := f.voice(h); v != nil {
		v.Vel = vel
	}
}

func (f *Fake) Set3DSourceMinMaxDistance(engine.Handle, float64, float64)         {}
func (f *Fake) Set3DSourceAttenuation(engine.Handle, engine.Attenuation, float64) {}
func (f *Fake) Set3DSourceDopplerFactor(engine.Handle, float64)                   {}
func (f *Fake) Update3DAudio()                                                    {}
