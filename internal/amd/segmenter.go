package amd

import (
	"math"

	"amd-service-go/internal/audio"
)

// amin floors frame power before the dB conversion.
const amin = 1e-10

// Segment is a contiguous interval of speech activity.
type Segment struct {
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
	Duration    float64 `json:"duration"`
	Energy      float64 `json:"energy"`
	StartSample int     `json:"start_sample"`
	EndSample   int     `json:"end_sample"`
}

// SegmentSpeech splits buf into non-silent intervals. Frames are centred on
// multiples of the hop length and zero padded at both ends; a frame is active
// when its mean power is within SilenceThresholdDB of the loudest frame.
// A buffer with no energy at all has no segments.
func SegmentSpeech(buf audio.SampleBuffer, p Params) []Segment {
	n := buf.Len()
	if n == 0 || buf.SampleRate <= 0 {
		return nil
	}

	power := framePower(buf.Samples, p.FrameLength, p.HopLength)
	peak := 0.0
	for _, v := range power {
		peak = math.Max(peak, v)
	}
	if peak == 0 {
		return nil
	}

	ref := 10 * math.Log10(math.Max(amin, peak))
	active := make([]bool, len(power))
	for i, v := range power {
		active[i] = 10*math.Log10(math.Max(amin, v))-ref > -p.SilenceThresholdDB
	}

	var segments []Segment
	for i := 0; i < len(active); {
		if !active[i] {
			i++
			continue
		}
		j := i
		for j < len(active) && active[j] {
			j++
		}
		start := min(i*p.HopLength, n)
		end := min(j*p.HopLength, n)
		if end > start {
			segments = append(segments, newSegment(buf, start, end))
		}
		i = j
	}
	return segments
}

func newSegment(buf audio.SampleBuffer, start, end int) Segment {
	return Segment{
		StartTime:   buf.Seconds(start),
		EndTime:     buf.Seconds(end),
		Duration:    buf.Seconds(end - start),
		Energy:      rms(buf.Samples[start:end]),
		StartSample: start,
		EndSample:   end,
	}
}

// framePower returns the mean squared amplitude of every centred frame.
func framePower(samples []float64, frameLength, hopLength int) []float64 {
	n := len(samples)
	half := frameLength / 2

	// prefix[i] is the sum of squares of samples[:i].
	prefix := make([]float64, n+1)
	for i, s := range samples {
		prefix[i+1] = prefix[i] + s*s
	}

	frames := 1 + (n+2*half-frameLength)/hopLength
	power := make([]float64, frames)
	for t := range power {
		lo := t*hopLength - half
		hi := lo + frameLength
		lo = max(lo, 0)
		hi = min(hi, n)
		if hi > lo {
			power[t] = (prefix[hi] - prefix[lo]) / float64(frameLength)
		}
	}
	return power
}

func rms(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}
