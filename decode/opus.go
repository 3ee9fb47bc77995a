package decode

import (
	"io"

	"github.com/hraban/opus"

	"soundbox/engine"
)

// Opus material always decodes at 48kHz; the stream API does not expose the
// channel layout, so stereo is assumed.
const (
	opusRate     = 48000
	opusChannels = 2
)

func decodeOpus(r io.Reader) (*engine.BufferSource, error) {
	stream, err := opus.NewStream(r)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	var data []float32
	buf := make([]float32, 4096*opusChannels)
	for {
		n, err := stream.ReadFloat32(buf)
		if n > 0 {
			data = append(data, buf[:n*opusChannels]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return engine.NewBufferSource(data, opusRate, opusChannels), nil
}
