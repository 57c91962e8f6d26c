package audio

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always emits 16-bit little-endian stereo.
const (
	mp3Channels       = 2
	mp3BytesPerSample = 2
)

func decodeMP3(r io.Reader) ([]float64, int, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("open mp3 stream: %w", err)
	}
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("decode mp3 frames: %w", err)
	}
	if len(raw)%(mp3Channels*mp3BytesPerSample) != 0 {
		return nil, 0, 0, fmt.Errorf("unexpected MP3 decoded length %d", len(raw))
	}

	samples := make([]float64, len(raw)/mp3BytesPerSample)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(raw[i*mp3BytesPerSample:]))
		samples[i] = float64(v) / 32768.0
	}
	return samples, dec.SampleRate(), mp3Channels, nil
}
