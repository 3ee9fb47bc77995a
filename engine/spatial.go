package engine

import "math"

// Vec3 is a position or velocity in the 3D scene, in caller units.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) length() float64 { return math.Sqrt(v.dot(v)) }

func (v Vec3) normalized() Vec3 {
	l := v.length()
	if l == 0 {
		return v
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}

// Attenuation selects the distance rolloff model for a 3D voice.
type Attenuation int

const (
	NoAttenuation Attenuation = iota
	InverseDistance
	LinearDistance
	ExponentialDistance
)

// Listener describes the single global listener.
type Listener struct {
	Pos      Vec3
	At       Vec3 // look direction
	Up       Vec3
	Velocity Vec3
}

// spatialParams is the per-voice 3D state. Values only take audible effect
// when Update3DAudio recomputes the derived gain/pan/pitch.
type spatialParams struct {
	pos         Vec3
	vel         Vec3
	minDistance float64
	maxDistance float64
	attenuation Attenuation
	rolloff     float64
	doppler     float64
}

func defaultSpatialParams(pos, vel Vec3) spatialParams {
	return spatialParams{
		pos:         pos,
		vel:         vel,
		minDistance: 1,
		maxDistance: 1_000_000,
		attenuation: NoAttenuation,
		rolloff:     1,
		doppler:     1,
	}
}

// attenuate returns the distance gain for the configured model.
func (sp *spatialParams) attenuate(distance float64) float64 {
	min, max := sp.minDistance, sp.maxDistance
	if distance < min {
		distance = min
	}
	if distance > max {
		distance = max
	}
	switch sp.attenuation {
	case InverseDistance:
		return min / (min + sp.rolloff*(distance-min))
	case LinearDistance:
		if max == min {
			return 1
		}
		return 1 - sp.rolloff*(distance-min)/(max-min)
	case ExponentialDistance:
		if min == 0 {
			return 1
		}
		return math.Pow(distance/min, -sp.rolloff)
	}
	return 1
}

// compute derives gain, stereo pan and a doppler pitch factor from the
// source and listener state. soundSpeed is in caller units per second.
func (sp *spatialParams) compute(l Listener, soundSpeed float64) (gain, pan, pitch float64) {
	rel := sp.pos.sub(l.Pos)
	distance := rel.length()

	gain = sp.attenuate(distance)
	if gain < 0 {
		gain = 0
	}

	// Pan from the horizontal angle between the look direction and the
	// source: right vector = at x up.
	at := l.At.normalized()
	up := l.Up.normalized()
	right := Vec3{
		at.Y*up.Z - at.Z*up.Y,
		at.Z*up.X - at.X*up.Z,
		at.X*up.Y - at.Y*up.X,
	}
	if distance > 0 {
		pan = rel.normalized().dot(right)
	}

	pitch = 1
	if sp.doppler > 0 && soundSpeed > 0 && distance > 0 {
		dir := rel.normalized()
		vListener := l.Velocity.dot(dir)
		vSource := sp.vel.dot(dir)
		denom := soundSpeed + vSource*sp.doppler
		if denom > 0.01 {
			pitch = (soundSpeed + vListener*sp.doppler) / denom
		}
	}
	return gain, pan, pitch
}
