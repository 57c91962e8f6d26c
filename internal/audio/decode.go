package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"amd-service-go/internal/apperr"
)

// Container identifies the recording file format.
type Container string

const (
	ContainerWAV     Container = "wav"
	ContainerMP3     Container = "mp3"
	ContainerUnknown Container = "unknown"
)

var errUnsupported = errors.New("unsupported audio container")

// Sniff inspects the leading bytes of a recording.
func Sniff(header []byte) Container {
	switch {
	case len(header) >= 12 && bytes.Equal(header[0:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return ContainerWAV
	case len(header) >= 3 && bytes.Equal(header[0:3], []byte("ID3")):
		return ContainerMP3
	case len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0:
		return ContainerMP3
	default:
		return ContainerUnknown
	}
}

// Decode reads a WAV or MP3 recording and returns a mono buffer at TargetSampleRate.
func Decode(r io.ReadSeeker) (SampleBuffer, error) {
	header := make([]byte, 12)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return SampleBuffer{}, apperr.Decode("decode", "Audio processing failed", err)
	}
	if n == 0 {
		return SampleBuffer{}, apperr.EmptyInput("decode")
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return SampleBuffer{}, apperr.Decode("decode", "Audio processing failed", err)
	}

	var (
		samples  []float64
		rate     int
		channels int
	)
	switch Sniff(header[:n]) {
	case ContainerWAV:
		samples, rate, channels, err = decodeWAV(r)
	case ContainerMP3:
		samples, rate, channels, err = decodeMP3(r)
	default:
		err = errUnsupported
	}
	if err != nil {
		return SampleBuffer{}, apperr.Decode("decode", fmt.Sprintf("Audio processing failed: %v", err), err)
	}

	mono, err := Downmix(samples, channels)
	if err != nil {
		return SampleBuffer{}, apperr.Decode("decode", "Audio processing failed", err)
	}
	if len(mono) == 0 {
		return SampleBuffer{}, apperr.EmptyInput("decode")
	}
	out, err := Resample(mono, rate, TargetSampleRate)
	if err != nil {
		return SampleBuffer{}, apperr.Decode("decode", "Audio processing failed", err)
	}
	if len(out) == 0 {
		return SampleBuffer{}, apperr.EmptyInput("decode")
	}
	return SampleBuffer{Samples: out, SampleRate: TargetSampleRate}, nil
}

// DecodeFile opens path and decodes it.
func DecodeFile(path string) (SampleBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return SampleBuffer{}, apperr.Decode("decode", "Audio processing failed", err)
	}
	defer f.Close()
	return Decode(f)
}
