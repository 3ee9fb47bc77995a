// Package engine wraps the oto playback context behind a voice-mixing API.
//
// A Mixer issues one opaque Handle per playback. The per-voice work (gain,
// constant-power pan, play-speed scaling, looping, faders and 3D placement)
// happens in the voice streams the oto players pull from; oto itself does
// the summing and the device I/O.
package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Handle identifies one active playback. The zero handle is never issued.
type Handle uint32

// Param selects which voice parameter a fade or oscillation drives.
type Param int

const (
	ParamVolume Param = iota
	ParamPan
	ParamSpeed
)

// ErrInvalidHandle is returned by operations that cannot silently no-op on
// an unknown or finished handle.
var ErrInvalidHandle = errors.New("invalid voice handle")

// Config holds mixer output parameters.
type Config struct {
	// SampleRate of the output context in Hz.
	SampleRate int
	// BufferSize of the underlying device buffer. Zero uses the driver
	// default.
	BufferSize time.Duration
}

// DefaultConfig returns the standard 44.1kHz stereo output setup.
func DefaultConfig() Config {
	return Config{SampleRate: 44100}
}

// Mixer is the playback engine: it owns the oto context and the table of
// live voices. The process-wide oto context cannot be torn down, so at most
// one Mixer may be created per process; Dispose suspends output and drops
// all voices.
type Mixer struct {
	ctx  *oto.Context
	rate int

	mu      sync.Mutex
	voices  map[Handle]*voice
	players map[Handle]*oto.Player
	next    Handle
	closed  bool

	gmu         sync.Mutex
	globalVol   float64
	globalFader fader
	epoch       time.Time

	smu        sync.Mutex
	listener   Listener
	soundSpeed float64
}

// NewMixer opens the oto playback context and waits for it to become ready.
func NewMixer(cfg Config) (*Mixer, error) {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   cfg.BufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("opening playback context: %w", err)
	}
	<-ready
	return &Mixer{
		ctx:        ctx,
		rate:       cfg.SampleRate,
		voices:     make(map[Handle]*voice),
		players:    make(map[Handle]*oto.Player),
		globalVol:  1,
		epoch:      time.Now(),
		listener:   Listener{At: Vec3{Z: -1}, Up: Vec3{Y: 1}},
		soundSpeed: 343,
	}, nil
}

// SampleRate returns the output rate of the context.
func (m *Mixer) SampleRate() int { return m.rate }

// Dispose stops every voice and suspends the output context.
func (m *Mixer) Dispose() {
	m.StopAll()
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	_ = m.ctx.Suspend()
}

func (m *Mixer) register(v *voice, p *oto.Player) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0
	}
	m.next++
	if m.next == 0 {
		m.next++
	}
	m.voices[m.next] = v
	m.players[m.next] = p
	return m.next
}

// reap drops voices that finished on their own. Their handles become
// invalid; callers holding stale handles get no-ops.
func (m *Mixer) reap() {
	m.mu.Lock()
	var finished []*oto.Player
	for h, v := range m.voices {
		if !v.live() {
			finished = append(finished, m.players[h])
			delete(m.voices, h)
			delete(m.players, h)
		}
	}
	m.mu.Unlock()
	for _, p := range finished {
		if p != nil {
			_ = p.Close()
		}
	}
}

// Play starts a voice over src. It returns the new handle, or 0 when the
// mixer is disposed.
func (m *Mixer) Play(src Source, volume, pan float64, paused bool) Handle {
	m.reap()
	v := newVoice(m, src, volume, pan, paused)
	p := m.ctx.NewPlayer(v)
	h := m.register(v, p)
	if h == 0 {
		_ = p.Close()
		return 0
	}
	p.Play()
	return h
}

// Play3D starts a positional voice. Pan and attenuation derive from the
// listener and source parameters on the next Update3DAudio.
func (m *Mixer) Play3D(src Source, pos, vel Vec3, volume float64, paused bool) Handle {
	m.reap()
	v := newVoice(m, src, volume, 0, paused)
	v.is3D = true
	v.spatial = defaultSpatialParams(pos, vel)
	m.applySpatial(v)
	p := m.ctx.NewPlayer(v)
	h := m.register(v, p)
	if h == 0 {
		_ = p.Close()
		return 0
	}
	p.Play()
	return h
}

// Stop ends the voice and invalidates its handle. Unknown handles no-op.
func (m *Mixer) Stop(h Handle) {
	m.mu.Lock()
	v := m.voices[h]
	p := m.players[h]
	delete(m.voices, h)
	delete(m.players, h)
	m.mu.Unlock()
	if v == nil {
		return
	}
	v.mu.Lock()
	v.stopped = true
	v.mu.Unlock()
	if p != nil {
		_ = p.Close()
	}
}

// StopSource stops every voice playing src.
func (m *Mixer) StopSource(src Source) {
	m.mu.Lock()
	var handles []Handle
	for h, v := range m.voices {
		if v.src == src {
			handles = append(handles, h)
		}
	}
	m.mu.Unlock()
	for _, h := range handles {
		m.Stop(h)
	}
}

// StopAll stops every live voice.
func (m *Mixer) StopAll() {
	m.mu.Lock()
	var handles []Handle
	for h := range m.voices {
		handles = append(handles, h)
	}
	m.mu.Unlock()
	for _, h := range handles {
		m.Stop(h)
	}
}

func (m *Mixer) voice(h Handle) *voice {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.voices[h]
}

// IsValidHandle reports whether h names a voice that is still live.
func (m *Mixer) IsValidHandle(h Handle) bool {
	v := m.voice(h)
	return v != nil && v.live()
}

// VoiceCount returns the number of live voices, paused included.
func (m *Mixer) VoiceCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, v := range m.voices {
		if v.live() {
			n++
		}
	}
	return n
}

// ActiveVoiceCount returns the number of live, unpaused voices.
func (m *Mixer) ActiveVoiceCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, v := range m.voices {
		v.mu.Lock()
		active := !v.done && !v.stopped && !v.paused
		v.mu.Unlock()
		if active {
			n++
		}
	}
	return n
}

func (m *Mixer) SetPause(h Handle, paused bool) {
	if v := m.voice(h); v != nil {
		v.mu.Lock()
		v.paused = paused
		v.mu.Unlock()
	}
}

func (m *Mixer) Pause(h Handle) bool {
	v := m.voice(h)
	if v == nil {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.paused
}

func (m *Mixer) SetVolume(h Handle, volume float64) {
	if v := m.voice(h); v != nil {
		v.mu.Lock()
		v.vol = volume
		v.volFader.stop()
		v.mu.Unlock()
	}
}

func (m *Mixer) Volume(h Handle) float64 {
	v := m.voice(h)
	if v == nil {
		return 0
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vol
}

func (m *Mixer) SetPan(h Handle, pan float64) {
	if v := m.voice(h); v != nil {
		v.mu.Lock()
		v.pan = clamp(pan, -1, 1)
		v.panFader.stop()
		v.mu.Unlock()
	}
}

func (m *Mixer) Pan(h Handle) float64 {
	v := m.voice(h)
	if v == nil {
		return 0
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pan
}

func (m *Mixer) SetSpeed(h Handle, speed float64) {
	if v := m.voice(h); v != nil {
		v.mu.Lock()
		v.speed = clampSpeed(speed)
		v.speedFader.stop()
		v.mu.Unlock()
	}
}

func (m *Mixer) Speed(h Handle) float64 {
	v := m.voice(h)
	if v == nil {
		return 0
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.speed
}

func (m *Mixer) SetLooping(h Handle, looping bool) {
	if v := m.voice(h); v != nil {
		v.mu.Lock()
		v.looping = looping
		v.mu.Unlock()
	}
}

func (m *Mixer) Looping(h Handle) bool {
	v := m.voice(h)
	if v == nil {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.looping
}

// Seek moves the voice's source cursor to t.
func (m *Mixer) Seek(h Handle, t time.Duration) error {
	v := m.voice(h)
	if v == nil {
		return ErrInvalidHandle
	}
	return v.seek(t)
}

// Position returns the voice's source cursor.
func (m *Mixer) Position(h Handle) time.Duration {
	v := m.voice(h)
	if v == nil {
		return 0
	}
	return v.position()
}

// now is the global fader clock, in seconds since the mixer started.
func (m *Mixer) now() float64 { return time.Since(m.epoch).Seconds() }

// globalGain resolves the global volume, advancing any global fade.
func (m *Mixer) globalGain() float64 {
	m.gmu.Lock()
	defer m.gmu.Unlock()
	if m.globalFader.active() {
		m.globalVol = m.globalFader.value(m.now(), m.globalVol)
	}
	return m.globalVol
}

func (m *Mixer) SetGlobalVolume(volume float64) {
	m.gmu.Lock()
	m.globalVol = volume
	m.globalFader.stop()
	m.gmu.Unlock()
}

func (m *Mixer) GlobalVolume() float64 { return m.globalGain() }

// Fade ramps a voice parameter to a target over d.
func (m *Mixer) Fade(h Handle, p Param, to float64, d time.Duration) {
	v := m.voice(h)
	if v == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	switch p {
	case ParamVolume:
		v.volFader.fadeTo(v.clock, v.vol, to, d.Seconds())
	case ParamPan:
		v.panFader.fadeTo(v.clock, v.pan, to, d.Seconds())
	case ParamSpeed:
		v.speedFader.fadeTo(v.clock, v.speed, to, d.Seconds())
	}
}

// Oscillate bounces a voice parameter between from and to, one leg per d.
func (m *Mixer) Oscillate(h Handle, p Param, from, to float64, d time.Duration) {
	v := m.voice(h)
	if v == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	switch p {
	case ParamVolume:
		v.volFader.oscillate(v.clock, from, to, d.Seconds())
	case ParamPan:
		v.panFader.oscillate(v.clock, from, to, d.Seconds())
	case ParamSpeed:
		v.speedFader.oscillate(v.clock, from, to, d.Seconds())
	}
}

func (m *Mixer) FadeGlobalVolume(to float64, d time.Duration) {
	m.gmu.Lock()
	m.globalFader.fadeTo(m.now(), m.globalVol, to, d.Seconds())
	m.gmu.Unlock()
}

func (m *Mixer) OscillateGlobalVolume(from, to float64, d time.Duration) {
	m.gmu.Lock()
	m.globalFader.oscillate(m.now(), from, to, d.Seconds())
	m.gmu.Unlock()
}

// ScheduleStop ends the voice after d of further playback.
func (m *Mixer) ScheduleStop(h Handle, d time.Duration) {
	if v := m.voice(h); v != nil {
		v.mu.Lock()
		v.schedStop = v.clock + d.Seconds()
		v.mu.Unlock()
	}
}

// SchedulePause pauses the voice after d of further playback.
func (m *Mixer) SchedulePause(h Handle, d time.Duration) {
	if v := m.voice(h); v != nil {
		v.mu.Lock()
		v.schedPause = v.clock + d.Seconds()
		v.mu.Unlock()
	}
}

// SetListener replaces the global listener state. Takes effect on the next
// Update3DAudio.
func (m *Mixer) SetListener(l Listener) {
	m.smu.Lock()
	if l.At == (Vec3{}) {
		l.At = Vec3{Z: -1}
	}
	if l.Up == (Vec3{}) {
		l.Up = Vec3{Y: 1}
	}
	m.listener = l
	m.smu.Unlock()
}

// ListenerState returns the current listener.
func (m *Mixer) ListenerState() Listener {
	m.smu.Lock()
	defer m.smu.Unlock()
	return m.listener
}

func (m *Mixer) SetSoundSpeed(speed float64) {
	m.smu.Lock()
	if speed > 0 {
		m.soundSpeed = speed
	}
	m.smu.Unlock()
}

func (m *Mixer) SoundSpeed() float64 {
	m.smu.Lock()
	defer m.smu.Unlock()
	return m.soundSpeed
}

func (m *Mixer) Set3DSourceParams(h Handle, pos, vel Vec3) {
	if v := m.voice(h); v != nil {
		v.mu.Lock()
		v.is3D = true
		v.spatial.pos = pos
		v.spatial.vel = vel
		v.mu.Unlock()
	}
}

func (m *Mixer) Set3DSourcePosition(h Handle, pos Vec3) {
	if v := m.voice(h); v != nil {
		v.mu.Lock()
		v.is3D = true
		v.spatial.pos = pos
		v.mu.Unlock()
	}
}

func (m *Mixer) Set3DSourceVelocity(h Handle, vel Vec3) {
	if v := m.voice(h); v != nil {
		v.mu.Lock()
		v.spatial.vel = vel
		v.mu.Unlock()
	}
}

func (m *Mixer) Set3DSourceMinMaxDistance(h Handle, min, max float64) {
	if v := m.voice(h); v != nil {
		v.mu.Lock()
		v.spatial.minDistance = min
		v.spatial.maxDistance = max
		v.mu.Unlock()
	}
}

func (m *Mixer) Set3DSourceAttenuation(h Handle, model Attenuation, rolloff float64) {
	if v := m.voice(h); v != nil {
		v.mu.Lock()
		v.spatial.attenuation = model
		v.spatial.rolloff = rolloff
		v.mu.Unlock()
	}
}

func (m *Mixer) Set3DSourceDopplerFactor(h Handle, factor float64) {
	if v := m.voice(h); v != nil {
		v.mu.Lock()
		v.spatial.doppler = factor
		v.mu.Unlock()
	}
}

// Update3DAudio recomputes derived gain, pan and doppler pitch for every
// positional voice from the current listener and source parameters.
func (m *Mixer) Update3DAudio() {
	m.smu.Lock()
	l := m.listener
	speed := m.soundSpeed
	m.smu.Unlock()

	m.mu.Lock()
	voices := make([]*voice, 0, len(m.voices))
	for _, v := range m.voices {
		voices = append(voices, v)
	}
	m.mu.Unlock()

	for _, v := range voices {
		v.mu.Lock()
		if v.is3D {
			gain, pan, pitch := v.spatial.compute(l, speed)
			v.spatialGain = gain
			v.spatialPan = pan
			v.pitch = pitch
		}
		v.mu.Unlock()
	}
}

// applySpatial seeds the derived 3D state for a voice that has not been
// through Update3DAudio yet.
func (m *Mixer) applySpatial(v *voice) {
	m.smu.Lock()
	l := m.listener
	speed := m.soundSpeed
	m.smu.Unlock()
	gain, pan, pitch := v.spatial.compute(l, speed)
	v.spatialGain = gain
	v.spatialPan = pan
	v.pitch = pitch
}
