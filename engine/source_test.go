package engine

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBufferSource_Metadata(t *testing.T) {
	t.Parallel()

	src := NewBufferSource(make([]float32, 44100*2), 44100, 2)
	require.Equal(t, 44100, src.SampleRate())
	require.Equal(t, 2, src.Channels())
	require.Equal(t, time.Second, src.Duration())

	empty := NewBufferSource(nil, 0, 0)
	require.Equal(t, time.Duration(0), empty.Duration())
}

func TestBufferStream_ReadAndEOF(t *testing.T) {
	t.Parallel()

	src := NewBufferSource([]float32{1, 2, 3, 4, 5}, 100, 1)
	s := src.NewStream()

	buf := make([]float32, 3)
	n, err := s.ReadSamples(buf)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []float32{1, 2, 3}, buf)

	n, err = s.ReadSamples(buf)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []float32{4, 5}, buf[:n])

	_, err = s.ReadSamples(buf)
	require.ErrorIs(t, err, io.EOF)
}

func TestBufferStream_SeekClamps(t *testing.T) {
	t.Parallel()

	src := NewBufferSource([]float32{1, 2, 3, 4}, 2, 2) // 1 second, 2 frames
	s := src.NewStream()

	require.NoError(t, s.Seek(500*time.Millisecond))
	buf := make([]float32, 4)
	n, err := s.ReadSamples(buf)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []float32{3, 4}, buf[:n])

	// Past the end clamps to EOF, negative clamps to the start.
	require.NoError(t, s.Seek(time.Minute))
	_, err = s.ReadSamples(buf)
	require.ErrorIs(t, err, io.EOF)

	require.NoError(t, s.Seek(-time.Second))
	n, err = s.ReadSamples(buf)
	require.NoError(t, err)
	require.Equal(t, 4, n)
}

func TestBufferStream_IndependentCursors(t *testing.T) {
	t.Parallel()

	src := NewBufferSource([]float32{1, 2, 3, 4}, 4, 1)
	a := src.NewStream()
	b := src.NewStream()

	buf := make([]float32, 2)
	_, err := a.ReadSamples(buf)
	require.NoError(t, err)

	n, err := b.ReadSamples(buf)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, []float32{1, 2}, buf)
}
