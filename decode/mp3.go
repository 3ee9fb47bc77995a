package decode

import (
	"io"

	mp3 "github.com/hajimehoshi/go-mp3"

	"soundbox/engine"
)

func decodeMP3(r io.Reader) (*engine.BufferSource, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, err
	}

	// go-mp3 emits 16-bit little-endian stereo.
	data := make([]float32, len(raw)/2)
	for i := range data {
		v := int16(uint16(raw[2*i]) | uint16(raw[2*i+1])<<8)
		data[i] = float32(v) / 32768.0
	}
	return engine.NewBufferSource(data, dec.SampleRate(), 2), nil
}
