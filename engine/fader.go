package engine

import "math"

// fader ramps a voice parameter over time. It runs on the voice clock
// (seconds of audio produced), so a paused voice holds its fades too.
type faderMode int

const (
	fadeOff faderMode = iota
	fadeLerp
	fadeOscillate
)

type fader struct {
	mode     faderMode
	from, to float64
	start    float64 // voice-clock seconds at activation
	duration float64
}

// fadeTo starts a linear ramp from the current value to target.
func (f *fader) fadeTo(now, current, target, duration float64) {
	if duration <= 0 {
		f.mode = fadeOff
		return
	}
	f.mode = fadeLerp
	f.from = current
	f.to = target
	f.start = now
	f.duration = duration
}

// oscillate bounces the value between from and to with a full period of
// 2*duration, starting at from.
func (f *fader) oscillate(now, from, to, duration float64) {
	if duration <= 0 {
		f.mode = fadeOff
		return
	}
	f.mode = fadeOscillate
	f.from = from
	f.to = to
	f.start = now
	f.duration = duration
}

func (f *fader) stop() { f.mode = fadeOff }

func (f *fader) active() bool { return f.mode != fadeOff }

// value returns the parameter value at clock time now, or fallback when the
// fader is idle. A finished lerp pins to its target and switches itself off.
func (f *fader) value(now, fallback float64) float64 {
	switch f.mode {
	case fadeLerp:
		t := (now - f.start) / f.duration
		if t >= 1 {
			f.mode = fadeOff
			return f.to
		}
		if t < 0 {
			t = 0
		}
		return f.from + (f.to-f.from)*t
	case fadeOscillate:
		t := (now - f.start) / f.duration
		t = math.Abs(math.Mod(t, 2) - 1) // triangle wave 1..0..1
		return f.to + (f.from-f.to)*t
	}
	return fallback
}
