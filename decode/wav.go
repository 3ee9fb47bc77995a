package decode

import (
	"errors"
	"io"

	"github.com/go-audio/wav"

	"soundbox/engine"
)

func decodeWAV(r io.ReadSeeker) (*engine.BufferSource, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("not a valid WAV file")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := float32(int64(1) << (bitDepth - 1))

	data := make([]float32, len(buf.Data))
	for i, s := range buf.Data {
		data[i] = float32(s) / scale
	}
	return engine.NewBufferSource(data, buf.Format.SampleRate, buf.Format.NumChannels), nil
}
