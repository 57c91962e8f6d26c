package audio

import "fmt"

// Downmix averages interleaved frames of numChannels samples into one channel.
func Downmix(interleaved []float64, numChannels int) ([]float64, error) {
	if numChannels <= 0 {
		return nil, fmt.Errorf("invalid channel count: %d", numChannels)
	}
	if numChannels == 1 {
		return interleaved, nil
	}
	frames := len(interleaved) / numChannels
	mono := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < numChannels; c++ {
			sum += interleaved[i*numChannels+c]
		}
		mono[i] = sum / float64(numChannels)
	}
	return mono, nil
}

// Resample converts samples between rates with linear interpolation.
func Resample(input []float64, fromRate, toRate int) ([]float64, error) {
	if fromRate <= 0 || toRate <= 0 {
		return nil, fmt.Errorf("invalid sample rates: from=%d, to=%d", fromRate, toRate)
	}
	if fromRate == toRate {
		out := make([]float64, len(input))
		copy(out, input)
		return out, nil
	}
	n := len(input)
	if n == 0 {
		return []float64{}, nil
	}

	outLen := int(float64(n) * float64(toRate) / float64(fromRate))
	out := make([]float64, outLen)
	ratio := float64(fromRate) / float64(toRate)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= n-1 {
			out[i] = input[n-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = input[idx] + frac*(input[idx+1]-input[idx])
	}
	return out, nil
}
