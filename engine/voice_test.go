package engine

import (
	"encoding/binary"
	"io"
	"math"
	"testing"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/stretchr/testify/require"
)

// centerGain is the constant-power gain each channel gets at pan 0.
var centerGain = math.Cos(math.Pi / 4)

// newTestMixer builds a mixer without an output context. Voices registered
// with a nil player still mix; only device playback needs the context.
func newTestMixer(rate int) *Mixer {
	return &Mixer{
		rate:       rate,
		voices:     make(map[Handle]*voice),
		players:    make(map[Handle]*oto.Player),
		globalVol:  1,
		epoch:      time.Now(),
		listener:   Listener{At: Vec3{Z: -1}, Up: Vec3{Y: 1}},
		soundSpeed: 343,
	}
}

// readFrames pulls up to frames stereo frames out of the voice and decodes
// them to float64 pairs.
func readFrames(t *testing.T, v *voice, frames int) ([][2]float64, error) {
	t.Helper()
	buf := make([]byte, frames*bytesPerOutFrame)
	n, err := v.Read(buf)
	require.Zero(t, n%bytesPerOutFrame, "Read must return whole frames")
	out := make([][2]float64, n/bytesPerOutFrame)
	for i := range out {
		off := i * bytesPerOutFrame
		out[i][0] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])))
		out[i][1] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[off+4:])))
	}
	return out, err
}

func constSource(value float32, frames, rate int) *BufferSource {
	data := make([]float32, frames)
	for i := range data {
		data[i] = value
	}
	return NewBufferSource(data, rate, 1)
}

func TestVoice_MonoDuplicatesToBothChannels(t *testing.T) {
	t.Parallel()

	m := newTestMixer(100)
	src := NewBufferSource([]float32{0.5, -0.25, 0.125, 1}, 100, 1)
	v := newVoice(m, src, 1, 0, false)

	frames, err := readFrames(t, v, 4)
	require.NoError(t, err)
	require.Len(t, frames, 4)

	want := []float64{0.5, -0.25, 0.125, 1}
	for i, w := range want {
		require.InDelta(t, w*centerGain, frames[i][0], 1e-6, "frame %d left", i)
		require.InDelta(t, w*centerGain, frames[i][1], 1e-6, "frame %d right", i)
	}
}

func TestVoice_EOFAfterMaterial(t *testing.T) {
	t.Parallel()

	m := newTestMixer(100)
	src := NewBufferSource([]float32{0.1, 0.2, 0.3, 0.4}, 100, 1)
	v := newVoice(m, src, 1, 0, false)

	// Ask for more than the source holds: the read is short, not padded.
	frames, err := readFrames(t, v, 16)
	require.NoError(t, err)
	require.Len(t, frames, 4)
	require.InDelta(t, 0.4*centerGain, frames[3][0], 1e-6)

	_, err = readFrames(t, v, 16)
	require.ErrorIs(t, err, io.EOF)
	require.False(t, v.live())
}

func TestVoice_LoopingWrapsAround(t *testing.T) {
	t.Parallel()

	m := newTestMixer(100)
	src := NewBufferSource([]float32{0.5, -0.5}, 100, 1)
	v := newVoice(m, src, 1, 0, false)
	v.looping = true

	frames, err := readFrames(t, v, 8)
	require.NoError(t, err)
	require.Len(t, frames, 8)
	for i, f := range frames {
		want := 0.5 * centerGain
		if i%2 == 1 {
			want = -want
		}
		require.InDelta(t, want, f[0], 1e-6, "frame %d", i)
	}
	require.True(t, v.live())
}

func TestVoice_PanHardLeftSilencesRight(t *testing.T) {
	t.Parallel()

	m := newTestMixer(100)
	v := newVoice(m, constSource(1, 8, 100), 1, -1, false)

	frames, err := readFrames(t, v, 8)
	require.NoError(t, err)
	require.InDelta(t, 1.0, frames[0][0], 1e-6)
	require.InDelta(t, 0.0, frames[0][1], 1e-6)
}

func TestVoice_VolumeScalesOutput(t *testing.T) {
	t.Parallel()

	m := newTestMixer(100)
	v := newVoice(m, constSource(1, 8, 100), 0.5, 0, false)

	frames, err := readFrames(t, v, 8)
	require.NoError(t, err)
	require.InDelta(t, 0.5*centerGain, frames[0][0], 1e-6)
}

func TestVoice_PausedProducesSilenceWithoutAdvancing(t *testing.T) {
	t.Parallel()

	m := newTestMixer(100)
	src := NewBufferSource([]float32{0.5, -0.5, 0.25, -0.25}, 100, 1)
	v := newVoice(m, src, 1, 0, true)

	frames, err := readFrames(t, v, 4)
	require.NoError(t, err)
	require.Len(t, frames, 4)
	for i, f := range frames {
		require.Zero(t, f[0], "frame %d", i)
		require.Zero(t, f[1], "frame %d", i)
	}
	require.Equal(t, time.Duration(0), v.position())

	// Unpausing resumes from the start of the material.
	v.mu.Lock()
	v.paused = false
	v.mu.Unlock()
	frames, err = readFrames(t, v, 4)
	require.NoError(t, err)
	require.InDelta(t, 0.5*centerGain, frames[0][0], 1e-6)
}

func TestVoice_UpsamplesLowerRateSource(t *testing.T) {
	t.Parallel()

	// 50 Hz source into a 100 Hz mixer: every source frame covers two
	// output frames, linearly interpolated.
	m := newTestMixer(100)
	src := NewBufferSource([]float32{1, 0}, 50, 1)
	v := newVoice(m, src, 1, 0, false)

	frames, err := readFrames(t, v, 8)
	require.NoError(t, err)
	require.Len(t, frames, 4)
	require.InDelta(t, 1.0*centerGain, frames[0][0], 1e-6)
	require.InDelta(t, 0.5*centerGain, frames[1][0], 1e-6)
	require.InDelta(t, 0.0, frames[2][0], 1e-6)
}

func TestVoice_SpeedDoublesConsumption(t *testing.T) {
	t.Parallel()

	m := newTestMixer(100)
	src := NewBufferSource([]float32{0, 0.25, 0.5, 0.75, 1, 0.75, 0.5, 0.25}, 100, 1)
	v := newVoice(m, src, 1, 0, false)
	v.speed = 2

	frames, err := readFrames(t, v, 8)
	require.NoError(t, err)
	// Eight source frames play out in five at double speed, the last one
	// draining the final source frame.
	require.Len(t, frames, 5)
	require.InDelta(t, 0.0, frames[0][0], 1e-6)
	require.InDelta(t, 0.5*centerGain, frames[1][0], 1e-6)
	require.InDelta(t, 1.0*centerGain, frames[2][0], 1e-6)
}

func TestVoice_SeekAndPosition(t *testing.T) {
	t.Parallel()

	m := newTestMixer(100)
	v := newVoice(m, constSource(1, 100, 100), 1, 0, false)

	require.NoError(t, v.seek(500*time.Millisecond))
	require.Equal(t, 500*time.Millisecond, v.position())

	// Seeking past EOF just leaves nothing to read.
	require.NoError(t, v.seek(2*time.Second))
	_, err := readFrames(t, v, 4)
	require.ErrorIs(t, err, io.EOF)
}

func TestVoice_VolumeFadeRampsToSilence(t *testing.T) {
	t.Parallel()

	m := newTestMixer(100)
	v := newVoice(m, constSource(1, 1000, 100), 1, 0, false)
	v.looping = true

	// One 100-frame block is one second of voice clock at 100 Hz.
	v.volFader.fadeTo(0, 1, 0, 2)

	frames, err := readFrames(t, v, 100)
	require.NoError(t, err)
	require.InDelta(t, centerGain, frames[0][0], 1e-3)

	frames, err = readFrames(t, v, 100)
	require.NoError(t, err)
	// Second block ends halfway down the fade.
	require.InDelta(t, 0.5*centerGain, frames[99][0], 1e-3)

	_, err = readFrames(t, v, 100)
	require.NoError(t, err)
	frames, err = readFrames(t, v, 100)
	require.NoError(t, err)
	for i, f := range frames {
		require.Zero(t, f[0], "frame %d", i)
	}

	// The fade committed its target into the base volume and detached.
	v.mu.Lock()
	defer v.mu.Unlock()
	require.Zero(t, v.vol)
	require.False(t, v.volFader.active())
}

func TestVoice_GlobalVolumeApplies(t *testing.T) {
	t.Parallel()

	m := newTestMixer(100)
	m.SetGlobalVolume(0.5)
	v := newVoice(m, constSource(1, 200, 100), 1, 0, false)
	v.looping = true

	// First block ramps from the per-voice gain toward the global target;
	// by the second block the gain is settled.
	_, err := readFrames(t, v, 100)
	require.NoError(t, err)
	frames, err := readFrames(t, v, 100)
	require.NoError(t, err)
	require.InDelta(t, 0.5*centerGain, frames[50][0], 1e-3)
}

func TestVoice_ScheduledStopFiresOnVoiceClock(t *testing.T) {
	t.Parallel()

	m := newTestMixer(100)
	v := newVoice(m, constSource(1, 1000, 100), 1, 0, false)
	v.looping = true
	h := m.register(v, nil)
	require.NotZero(t, h)

	m.ScheduleStop(h, time.Second)

	_, err := readFrames(t, v, 100) // clock reaches 1s
	require.NoError(t, err)
	_, err = readFrames(t, v, 100)
	require.ErrorIs(t, err, io.EOF)
	require.False(t, m.IsValidHandle(h))
}

func TestVoice_ScheduledPauseHoldsClock(t *testing.T) {
	t.Parallel()

	m := newTestMixer(100)
	v := newVoice(m, constSource(1, 1000, 100), 1, 0, false)
	v.looping = true
	h := m.register(v, nil)

	m.SchedulePause(h, time.Second)

	_, err := readFrames(t, v, 100)
	require.NoError(t, err)
	frames, err := readFrames(t, v, 100)
	require.NoError(t, err)
	for _, f := range frames {
		require.Zero(t, f[0])
	}
	require.True(t, m.Pause(h))
	require.Equal(t, 1, m.VoiceCount())
	require.Equal(t, 0, m.ActiveVoiceCount())
}

func TestVoice_StereoSourcePreservesChannels(t *testing.T) {
	t.Parallel()

	m := newTestMixer(100)
	src := NewBufferSource([]float32{0.25, -0.75, 0.5, -0.5}, 100, 2)
	v := newVoice(m, src, 1, 0, false)

	frames, err := readFrames(t, v, 2)
	require.NoError(t, err)
	require.Len(t, frames, 2)
	require.InDelta(t, 0.25*centerGain, frames[0][0], 1e-6)
	require.InDelta(t, -0.75*centerGain, frames[0][1], 1e-6)
	require.InDelta(t, 0.5*centerGain, frames[1][0], 1e-6)
	require.InDelta(t, -0.5*centerGain, frames[1][1], 1e-6)
}
