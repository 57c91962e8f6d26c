package audio

// TargetSampleRate is the rate every decoded recording is resampled to.
const TargetSampleRate = 16000

// SampleBuffer holds mono samples normalised to [-1, 1].
type SampleBuffer struct {
	Samples    []float64
	SampleRate int
}

// Len returns the number of samples.
func (b SampleBuffer) Len() int { return len(b.Samples) }

// Duration returns the buffer length in seconds.
func (b SampleBuffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Seconds converts a sample index to seconds.
func (b SampleBuffer) Seconds(sample int) float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(sample) / float64(b.SampleRate)
}
