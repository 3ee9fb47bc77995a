package decode

import (
	"io"

	"github.com/jfreymuth/oggvorbis"

	"soundbox/engine"
)

func decodeVorbis(r io.Reader) (*engine.BufferSource, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, err
	}

	var data []float32
	buf := make([]float32, 4096*dec.Channels())
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			data = append(data, buf[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return engine.NewBufferSource(data, dec.SampleRate(), dec.Channels()), nil
}
