package soundbox

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"os"
	"sync"
	"time"

	"soundbox/decode"
	"soundbox/engine"
)

// memorySampleName is the fixed identity memory-loaded sounds are hashed
// under, so at most one memory-loaded sound exists at a time.
const memorySampleName = "memory-sample"

// Engine is the wrapped playback engine the Player forwards to.
// *engine.Mixer is the production implementation.
type Engine interface {
	Dispose()
	Play(src engine.Source, volume, pan float64, paused bool) engine.Handle
	Play3D(src engine.Source, pos, vel engine.Vec3, volume float64, paused bool) engine.Handle
	Stop(h engine.Handle)
	StopSource(src engine.Source)
	StopAll()
	IsValidHandle(h engine.Handle) bool
	VoiceCount() int
	ActiveVoiceCount() int

	SetPause(h engine.Handle, paused bool)
	Pause(h engine.Handle) bool
	SetVolume(h engine.Handle, volume float64)
	Volume(h engine.Handle) float64
	SetPan(h engine.Handle, pan float64)
	Pan(h engine.Handle) float64
	SetSpeed(h engine.Handle, speed float64)
	Speed(h engine.Handle) float64
	SetLooping(h engine.Handle, looping bool)
	Looping(h engine.Handle) bool
	Seek(h engine.Handle, t time.Duration) error
	Position(h engine.Handle) time.Duration

	SetGlobalVolume(volume float64)
	GlobalVolume() float64
	Fade(h engine.Handle, p engine.Param, to float64, d time.Duration)
	Oscillate(h engine.Handle, p engine.Param, from, to float64, d time.Duration)
	FadeGlobalVolume(to float64, d time.Duration)
	OscillateGlobalVolume(from, to float64, d time.Duration)
	ScheduleStop(h engine.Handle, d time.Duration)
	SchedulePause(h engine.Handle, d time.Duration)

	SetListener(l engine.Listener)
	ListenerState() engine.Listener
	SetSoundSpeed(speed float64)
	SoundSpeed() float64
	Set3DSourceParams(h engine.Handle, pos, vel engine.Vec3)
	Set3DSourcePosition(h engine.Handle, pos engine.Vec3)
	Set3DSourceVelocity(h engine.Handle, vel engine.Vec3)
	Set3DSourceMinMaxDistance(h engine.Handle, min, max float64)
	Set3DSourceAttenuation(h engine.Handle, model engine.Attenuation, rolloff float64)
	Set3DSourceDopplerFactor(h engine.Handle, factor float64)
	Update3DAudio()
}

var _ Engine = (*engine.Mixer)(nil)

// Player is the sound registry and forwarding layer. It owns the list of
// loaded sounds keyed by content hash and tracks which playback handles
// reference each one; everything audible happens inside the engine.
//
// Lookups are linear scans over sounds and their handle lists. Expected
// cardinality is tens of sounds with a handful of voices each, so nothing
// fancier is warranted.
type Player struct {
	mu     sync.Mutex
	eng    Engine
	sounds []*Sound
	closed bool
}

// NewPlayer wraps an engine. Use engine.NewMixer for real output.
func NewPlayer(eng Engine) *Player {
	return &Player{eng: eng}
}

// Dispose stops everything, clears the registry and shuts the engine down.
// The player rejects loads afterwards.
func (p *Player) Dispose() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.sounds = nil
	p.mu.Unlock()
	p.eng.Dispose()
}

func pathHash(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// lookup must be called with p.mu held.
func (p *Player) lookup(hash uint32) *Sound {
	for _, s := range p.sounds {
		if s.Hash == hash {
			return s
		}
	}
	return nil
}

// LoadFile registers the sound file at path under a hash of the path string
// and decodes it through the engine-side decoders. Loading a path that is
// already registered returns the existing hash and ErrFileAlreadyLoaded.
func (p *Player) LoadFile(path string) (uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, ErrBackendNotInited
	}

	hash := pathHash(path)
	if p.lookup(hash) != nil {
		return hash, ErrFileAlreadyLoaded
	}
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	src, err := decode.File(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrFileLoadFailed, path, err)
	}
	p.sounds = append(p.sounds, &Sound{Hash: hash, Kind: SourceFile, Name: path, Source: src})
	return hash, nil
}

// LoadMem registers raw interleaved 44.1kHz stereo samples under a fixed
// sentinel identity, so only one memory-loaded sound can exist at a time.
func (p *Player) LoadMem(samples []float32) (uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, ErrBackendNotInited
	}
	if len(samples) == 0 {
		return 0, ErrInvalidParameter
	}

	hash := pathHash(memorySampleName)
	if p.lookup(hash) != nil {
		return hash, ErrFileAlreadyLoaded
	}
	p.sounds = append(p.sounds, &Sound{
		Hash:   hash,
		Kind:   SourceMemory,
		Source: decode.Memory(samples),
	})
	return hash, nil
}

// LoadWaveform registers a synthesized waveform generator under a freshly
// rolled hash. Collisions are not checked.
func (p *Player) LoadWaveform(kind engine.Waveform, superWave bool, scale, detune float64) (uint32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, ErrBackendNotInited
	}
	if !kind.IsValid() {
		return 0, fmt.Errorf("%w: waveform kind %d", ErrInvalidParameter, kind)
	}

	hash := rand.Uint32()
	for hash == 0 {
		hash = rand.Uint32()
	}
	p.sounds = append(p.sounds, &Sound{
		Hash:   hash,
		Kind:   SourceWaveform,
		Source: engine.NewWaveformSource(kind, superWave, scale, detune, 44100),
	})
	return hash, nil
}

// waveform returns the generator behind hash, or nil when the hash is
// unknown or not a synthesized sound. Waveform setters are silent no-ops in
// both cases.
func (p *Player) waveform(hash uint32) *engine.WaveformSource {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.lookup(hash)
	if s == nil || s.Kind != SourceWaveform {
		return nil
	}
	w, _ := s.Source.(*engine.WaveformSource)
	return w
}

// SetWaveform swaps the shape of a synthesized sound, live.
func (p *Player) SetWaveform(hash uint32, kind engine.Waveform) {
	if w := p.waveform(hash); w != nil && kind.IsValid() {
		w.SetWaveform(kind)
	}
}

func (p *Player) SetWaveformScale(hash uint32, scale float64) {
	if w := p.waveform(hash); w != nil {
		w.SetScale(scale)
	}
}

func (p *Player) SetWaveformDetune(hash uint32, detune float64) {
	if w := p.waveform(hash); w != nil {
		w.SetDetune(detune)
	}
}

func (p *Player) SetWaveformFreq(hash uint32, freq float64) {
	if w := p.waveform(hash); w != nil {
		w.SetFreq(freq)
	}
}

func (p *Player) SetWaveformSuperWave(hash uint32, enabled bool) {
	if w := p.waveform(hash); w != nil {
		w.SetSuperWave(enabled)
	}
}

// Play starts a voice for the sound registered under hash and tracks the
// new handle. Unknown hashes return the invalid handle 0.
func (p *Player) Play(hash uint32, volume, pan float64, paused bool) engine.Handle {
	p.mu.Lock()
	s := p.lookup(hash)
	p.mu.Unlock()
	if s == nil {
		return 0
	}
	h := p.eng.Play(s.Source, volume, pan, paused)
	if h != 0 {
		p.mu.Lock()
		s.addHandle(h)
		p.mu.Unlock()
	}
	return h
}

// Play3D starts a positional voice at pos moving with vel.
func (p *Player) Play3D(hash uint32, pos, vel engine.Vec3, volume float64, paused bool) engine.Handle {
	p.mu.Lock()
	s := p.lookup(hash)
	p.mu.Unlock()
	if s == nil {
		return 0
	}
	h := p.eng.Play3D(s.Source, pos, vel, volume, paused)
	if h != 0 {
		p.mu.Lock()
		s.addHandle(h)
		p.mu.Unlock()
	}
	return h
}

// Stop ends the voice behind handle and drops it from its owning sound's
// live list. Untracked handles are a no-op.
func (p *Player) Stop(h engine.Handle) {
	p.mu.Lock()
	var owner *Sound
	for _, s := range p.sounds {
		if s.removeHandle(h) {
			owner = s
			break
		}
	}
	p.mu.Unlock()
	if owner == nil {
		return
	}
	p.eng.Stop(h)
}

// DisposeSound stops every voice of the sound under hash and removes it from
// the registry. Unknown hashes are a no-op.
func (p *Player) DisposeSound(hash uint32) {
	p.mu.Lock()
	var src engine.Source
	for i, s := range p.sounds {
		if s.Hash == hash {
			src = s.Source
			p.sounds = append(p.sounds[:i], p.sounds[i+1:]...)
			break
		}
	}
	p.mu.Unlock()
	if src != nil {
		p.eng.StopSource(src)
	}
}

// DisposeAll stops every engine voice and empties the registry.
func (p *Player) DisposeAll() {
	p.mu.Lock()
	p.sounds = nil
	p.mu.Unlock()
	p.eng.StopAll()
}

// SoundCount returns the number of registered sounds.
func (p *Player) SoundCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sounds)
}

// Sounds returns a snapshot of the registry entries in load order.
func (p *Player) Sounds() []*Sound {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*Sound, len(p.sounds))
	copy(out, p.sounds)
	return out
}

// VoiceCountOf returns how many tracked handles reference hash.
func (p *Player) VoiceCountOf(hash uint32) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s := p.lookup(hash); s != nil {
		return len(s.handles)
	}
	return 0
}

// Duration reports the length of the material under hash; generators report
// zero.
func (p *Player) Duration(hash uint32) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s := p.lookup(hash); s != nil {
		return s.Source.Duration()
	}
	return 0
}

// The rest of the surface forwards to the engine as-is.

// PauseSwitch toggles the pause state of a voice.
func (p *Player) PauseSwitch(h engine.Handle) { p.eng.SetPause(h, !p.eng.Pause(h)) }

func (p *Player) SetPause(h engine.Handle, paused bool) { p.eng.SetPause(h, paused) }
func (p *Player) IsPaused(h engine.Handle) bool         { return p.eng.Pause(h) }

func (p *Player) SetVolume(h engine.Handle, volume float64) { p.eng.SetVolume(h, volume) }
func (p *Player) Volume(h engine.Handle) float64            { return p.eng.Volume(h) }
func (p *Player) SetPan(h engine.Handle, pan float64)       { p.eng.SetPan(h, pan) }
func (p *Player) Pan(h engine.Handle) float64               { return p.eng.Pan(h) }

// SetRelativePlaySpeed scales a voice's playback rate; the engine clamps
// values below 0.05.
func (p *Player) SetRelativePlaySpeed(h engine.Handle, speed float64) { p.eng.SetSpeed(h, speed) }
func (p *Player) RelativePlaySpeed(h engine.Handle) float64           { return p.eng.Speed(h) }

func (p *Player) SetLooping(h engine.Handle, looping bool) { p.eng.SetLooping(h, looping) }
func (p *Player) Looping(h engine.Handle) bool             { return p.eng.Looping(h) }

// Seek moves a voice's play cursor to t.
func (p *Player) Seek(h engine.Handle, t time.Duration) error {
	if err := p.eng.Seek(h, t); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}
	return nil
}

func (p *Player) Position(h engine.Handle) time.Duration { return p.eng.Position(h) }

func (p *Player) IsValidVoiceHandle(h engine.Handle) bool { return p.eng.IsValidHandle(h) }
func (p *Player) VoiceCount() int                         { return p.eng.VoiceCount() }
func (p *Player) ActiveVoiceCount() int                   { return p.eng.ActiveVoiceCount() }

func (p *Player) SetGlobalVolume(volume float64) { p.eng.SetGlobalVolume(volume) }
func (p *Player) GlobalVolume() float64          { return p.eng.GlobalVolume() }

func (p *Player) FadeVolume(h engine.Handle, to float64, d time.Duration) {
	p.eng.Fade(h, engine.ParamVolume, to, d)
}

func (p *Player) FadePan(h engine.Handle, to float64, d time.Duration) {
	p.eng.Fade(h, engine.ParamPan, to, d)
}

func (p *Player) FadeRelativePlaySpeed(h engine.Handle, to float64, d time.Duration) {
	p.eng.Fade(h, engine.ParamSpeed, to, d)
}

func (p *Player) FadeGlobalVolume(to float64, d time.Duration) { p.eng.FadeGlobalVolume(to, d) }

func (p *Player) OscillateVolume(h engine.Handle, from, to float64, d time.Duration) {
	p.eng.Oscillate(h, engine.ParamVolume, from, to, d)
}

func (p *Player) OscillatePan(h engine.Handle, from, to float64, d time.Duration) {
	p.eng.Oscillate(h, engine.ParamPan, from, to, d)
}

func (p *Player) OscillateRelativePlaySpeed(h engine.Handle, from, to float64, d time.Duration) {
	p.eng.Oscillate(h, engine.ParamSpeed, from, to, d)
}

func (p *Player) OscillateGlobalVolume(from, to float64, d time.Duration) {
	p.eng.OscillateGlobalVolume(from, to, d)
}

// ScheduleStop ends a voice after d of further playback.
func (p *Player) ScheduleStop(h engine.Handle, d time.Duration) { p.eng.ScheduleStop(h, d) }

// SchedulePause pauses a voice after d of further playback.
func (p *Player) SchedulePause(h engine.Handle, d time.Duration) { p.eng.SchedulePause(h, d) }

// Update3DAudio recomputes spatial gain and pan for all positional voices.
func (p *Player) Update3DAudio() { p.eng.Update3DAudio() }

// Set3DListenerParameters replaces the whole listener state at once.
func (p *Player) Set3DListenerParameters(pos, at, up, velocity engine.Vec3) {
	p.eng.SetListener(engine.Listener{Pos: pos, At: at, Up: up, Velocity: velocity})
}

func (p *Player) Set3DListenerPosition(pos engine.Vec3) {
	l := p.eng.ListenerState()
	l.Pos = pos
	p.eng.SetListener(l)
}

func (p *Player) Set3DListenerAt(at engine.Vec3) {
	l := p.eng.ListenerState()
	l.At = at
	p.eng.SetListener(l)
}

func (p *Player) Set3DListenerUp(up engine.Vec3) {
	l := p.eng.ListenerState()
	l.Up = up
	p.eng.SetListener(l)
}

func (p *Player) Set3DListenerVelocity(velocity engine.Vec3) {
	l := p.eng.ListenerState()
	l.Velocity = velocity
	p.eng.SetListener(l)
}

func (p *Player) Set3DSoundSpeed(speed float64) { p.eng.SetSoundSpeed(speed) }
func (p *Player) Get3DSoundSpeed() float64      { return p.eng.SoundSpeed() }

func (p *Player) Set3DSourceParameters(h engine.Handle, pos, vel engine.Vec3) {
	p.eng.Set3DSourceParams(h, pos, vel)
}

func (p *Player) Set3DSourcePosition(h engine.Handle, pos engine.Vec3) {
	p.eng.Set3DSourcePosition(h, pos)
}

func (p *Player) Set3DSourceVelocity(h engine.Handle, vel engine.Vec3) {
	p.eng.Set3DSourceVelocity(h, vel)
}

func (p *Player) Set3DSourceMinMaxDistance(h engine.Handle, min, max float64) {
	p.eng.Set3DSourceMinMaxDistance(h, min, max)
}

func (p *Player) Set3DSourceAttenuation(h engine.Handle, model engine.Attenuation, rolloff float64) {
	p.eng.Set3DSourceAttenuation(h, model, rolloff)
}

func (p *Player) Set3DSourceDopplerFactor(h engine.Handle, factor float64) {
	p.eng.Set3DSourceDopplerFactor(h, factor)
}
