package audio

import (
	"fmt"
	"io"

	"github.com/go-audio/wav"
)

// decodeWAV returns interleaved normalised samples, the sample rate and the channel count.
func decodeWAV(r io.ReadSeeker) ([]float64, int, int, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, 0, 0, fmt.Errorf("invalid WAV file")
	}
	if d.WavAudioFormat != 1 {
		return nil, 0, 0, fmt.Errorf("unsupported WAV format %d (only PCM is supported)", d.WavAudioFormat)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("read PCM buffer: %w", err)
	}
	if buf.Format == nil || buf.Format.SampleRate <= 0 || buf.Format.NumChannels <= 0 {
		return nil, 0, 0, fmt.Errorf("missing WAV format chunk")
	}

	depth := int(d.BitDepth)
	if depth == 0 {
		depth = buf.SourceBitDepth
	}
	out := make([]float64, len(buf.Data))
	switch depth {
	case 8:
		// 8-bit PCM is unsigned with a 128 midpoint.
		for i, v := range buf.Data {
			out[i] = float64(v-128) / 128.0
		}
	case 16, 24, 32:
		scale := float64(int64(1) << (depth - 1))
		for i, v := range buf.Data {
			out[i] = float64(v) / scale
		}
	default:
		return nil, 0, 0, fmt.Errorf("unsupported bit depth: %d", depth)
	}
	return out, buf.Format.SampleRate, buf.Format.NumChannels, nil
}
