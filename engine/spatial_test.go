package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testListener() Listener {
	return Listener{At: Vec3{Z: -1}, Up: Vec3{Y: 1}}
}

func TestAttenuate_NoAttenuation(t *testing.T) {
	t.Parallel()

	sp := defaultSpatialParams(Vec3{}, Vec3{})
	require.Equal(t, 1.0, sp.attenuate(0))
	require.Equal(t, 1.0, sp.attenuate(5000))
}

func TestAttenuate_InverseDistance(t *testing.T) {
	t.Parallel()

	sp := defaultSpatialParams(Vec3{}, Vec3{})
	sp.attenuation = InverseDistance
	sp.minDistance = 1
	sp.rolloff = 1

	require.InDelta(t, 1.0, sp.attenuate(1), 1e-12)
	require.InDelta(t, 0.5, sp.attenuate(2), 1e-12)
	require.InDelta(t, 0.1, sp.attenuate(10), 1e-12)
	// Below the minimum distance the gain stays pinned at full.
	require.InDelta(t, 1.0, sp.attenuate(0.1), 1e-12)
}

func TestAttenuate_LinearDistance(t *testing.T) {
	t.Parallel()

	sp := defaultSpatialParams(Vec3{}, Vec3{})
	sp.attenuation = LinearDistance
	sp.minDistance = 1
	sp.maxDistance = 11
	sp.rolloff = 1

	require.InDelta(t, 1.0, sp.attenuate(1), 1e-12)
	require.InDelta(t, 0.5, sp.attenuate(6), 1e-12)
	require.InDelta(t, 0.0, sp.attenuate(11), 1e-12)
	// Distance clamps to the max, so the gain bottoms out there.
	require.InDelta(t, 0.0, sp.attenuate(50), 1e-12)
}

func TestAttenuate_ExponentialDistance(t *testing.T) {
	t.Parallel()

	sp := defaultSpatialParams(Vec3{}, Vec3{})
	sp.attenuation = ExponentialDistance
	sp.minDistance = 1
	sp.rolloff = 1

	require.InDelta(t, 1.0, sp.attenuate(1), 1e-12)
	require.InDelta(t, 0.25, sp.attenuate(4), 1e-12)

	sp.rolloff = 2
	require.InDelta(t, 0.0625, sp.attenuate(4), 1e-12)
}

func TestCompute_PanFollowsAzimuth(t *testing.T) {
	t.Parallel()

	l := testListener()

	right := defaultSpatialParams(Vec3{X: 3}, Vec3{})
	_, pan, _ := right.compute(l, 343)
	require.InDelta(t, 1.0, pan, 1e-12)

	left := defaultSpatialParams(Vec3{X: -3}, Vec3{})
	_, pan, _ = left.compute(l, 343)
	require.InDelta(t, -1.0, pan, 1e-12)

	ahead := defaultSpatialParams(Vec3{Z: -3}, Vec3{})
	_, pan, _ = ahead.compute(l, 343)
	require.InDelta(t, 0.0, pan, 1e-12)

	// A source on the listener position has no direction; pan centers.
	onTop := defaultSpatialParams(Vec3{}, Vec3{})
	_, pan, _ = onTop.compute(l, 343)
	require.Equal(t, 0.0, pan)
}

func TestCompute_DopplerShift(t *testing.T) {
	t.Parallel()

	l := testListener()

	// Source closing in on the listener raises the pitch.
	closing := defaultSpatialParams(Vec3{Z: -10}, Vec3{Z: 10})
	_, _, pitch := closing.compute(l, 343)
	require.Greater(t, pitch, 1.0)

	// Source receding lowers it.
	receding := defaultSpatialParams(Vec3{Z: -10}, Vec3{Z: -10})
	_, _, pitch = receding.compute(l, 343)
	require.Less(t, pitch, 1.0)

	// A static scene is shift-free.
	static := defaultSpatialParams(Vec3{Z: -10}, Vec3{})
	_, _, pitch = static.compute(l, 343)
	require.InDelta(t, 1.0, pitch, 1e-12)

	// Doppler factor zero disables the shift entirely.
	off := defaultSpatialParams(Vec3{Z: -10}, Vec3{Z: 10})
	off.doppler = 0
	_, _, pitch = off.compute(l, 343)
	require.Equal(t, 1.0, pitch)
}

func TestCompute_GainUsesAttenuationModel(t *testing.T) {
	t.Parallel()

	sp := defaultSpatialParams(Vec3{X: 4}, Vec3{})
	sp.attenuation = InverseDistance
	gain, _, _ := sp.compute(testListener(), 343)
	require.InDelta(t, 0.25, gain, 1e-12)
}

func TestVec3_Normalized(t *testing.T) {
	t.Parallel()

	v := Vec3{X: 3, Y: 4}.normalized()
	require.InDelta(t, 0.6, v.X, 1e-12)
	require.InDelta(t, 0.8, v.Y, 1e-12)

	zero := Vec3{}.normalized()
	require.Equal(t, Vec3{}, zero)
}
