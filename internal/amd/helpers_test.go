package amd

import (
	"math"

	"amd-service-go/internal/audio"
)

const testRate = audio.TargetSampleRate

type tone struct {
	from, to float64 // seconds
	rms      float64
}

// synth renders a silent buffer of the given length with 440 Hz tones laid over it.
func synth(seconds float64, tones ...tone) audio.SampleBuffer {
	samples := make([]float64, int(seconds*testRate))
	for _, tn := range tones {
		amp := tn.rms * math.Sqrt2
		for i := int(tn.from * testRate); i < int(tn.to*testRate) && i < len(samples); i++ {
			samples[i] = amp * math.Sin(2*math.Pi*440*float64(i)/testRate)
		}
	}
	return audio.SampleBuffer{Samples: samples, SampleRate: testRate}
}

func seg(start, end, energy float64) Segment {
	return Segment{
		StartTime:   start,
		EndTime:     end,
		Duration:    end - start,
		Energy:      energy,
		StartSample: int(start * testRate),
		EndSample:   int(end * testRate),
	}
}
