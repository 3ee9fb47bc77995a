package soundbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveWAV_RejectsEmptyInput(t *testing.T) {
	t.Parallel()

	err := SaveWAV(filepath.Join(t.TempDir(), "empty.wav"), nil, 44100, 1)
	require.ErrorIs(t, err, ErrInvalidParameter)
}

func TestSaveWAV_WritesPlayableFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "out.wav")
	// Values past full scale clip instead of wrapping.
	err := SaveWAV(path, []float32{0, 0.5, -0.5, 1.5, -1.5}, 8000, 1)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(44), "header plus sample data")
}

func TestSaveWAV_BadPath(t *testing.T) {
	t.Parallel()

	err := SaveWAV(filepath.Join(t.TempDir(), "missing", "out.wav"), []float32{0.1}, 44100, 1)
	require.Error(t, err)
}
