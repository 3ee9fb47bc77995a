// Package decode loads audio files into memory-resident PCM sources.
//
// Dispatch is by file extension: .wav, .mp3, .ogg and .opus are supported.
// Every decoder reads the whole file up front and returns an
// engine.BufferSource at the material's native rate and channel count; rate
// conversion is the playback engine's problem.
package decode

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"soundbox/engine"
)

// ErrUnsupportedFormat is returned for extensions with no registered decoder.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// File decodes the file at path into a buffer source.
func File(path string) (*engine.BufferSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return decodeWAV(f)
	case ".mp3":
		return decodeMP3(f)
	case ".ogg":
		return decodeVorbis(f)
	case ".opus":
		return decodeOpus(f)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// Memory wraps raw interleaved float samples. The buffer is taken as 44.1kHz
// stereo, the layout the host runtime hands over.
func Memory(samples []float32) *engine.BufferSource {
	return engine.NewBufferSource(samples, 44100, 2)
}
