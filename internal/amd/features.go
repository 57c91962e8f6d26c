package amd

import "math"

// FeatureSet summarises the timing and energy of an answer window.
type FeatureSet struct {
	SegmentCount        int       `json:"segment_count"`
	TotalSpeechDuration float64   `json:"total_speech_duration"`
	SilenceInAnswer     float64   `json:"silence_in_answer"`
	SpeechRatio         float64   `json:"speech_ratio"`
	AvgSegmentDuration  float64   `json:"avg_segment_duration"`
	MaxSegmentDuration  float64   `json:"max_segment_duration"`
	AvgEnergy           float64   `json:"avg_energy"`
	Gaps                []float64 `json:"gaps"`
	AvgGap              float64   `json:"avg_gap"`
	DurationStd         float64   `json:"duration_std"`
	DurationVariance    float64   `json:"duration_variance"`
	FirstSegmentStart   float64   `json:"first_segment_start"`
	AnswerDuration      float64   `json:"answer_duration"`
}

// ExtractFeatures reduces the window's segments to aggregate statistics.
// Standard deviation and variance are population statistics and are zero for
// fewer than two segments.
func ExtractFeatures(w AnswerWindow) FeatureSet {
	segs := w.Segments
	f := FeatureSet{
		SegmentCount:   len(segs),
		AnswerDuration: w.Duration,
	}
	if len(segs) == 0 {
		return f
	}

	var energy float64
	durations := make([]float64, len(segs))
	for i, s := range segs {
		durations[i] = s.Duration
		f.TotalSpeechDuration += s.Duration
		f.MaxSegmentDuration = math.Max(f.MaxSegmentDuration, s.Duration)
		energy += s.Energy
	}
	count := float64(len(segs))
	f.AvgSegmentDuration = f.TotalSpeechDuration / count
	f.AvgEnergy = energy / count
	f.SilenceInAnswer = w.Duration - f.TotalSpeechDuration
	if w.Duration > 0 {
		// Rounding in the segment boundaries can push the ratio a hair above 1.
		f.SpeechRatio = math.Min(1, f.TotalSpeechDuration/w.Duration)
	}
	f.FirstSegmentStart = segs[0].StartTime

	f.Gaps = make([]float64, 0, len(segs)-1)
	for i := 0; i+1 < len(segs); i++ {
		f.Gaps = append(f.Gaps, segs[i+1].StartTime-segs[i].EndTime)
	}
	if len(f.Gaps) > 0 {
		var sum float64
		for _, g := range f.Gaps {
			sum += g
		}
		f.AvgGap = sum / float64(len(f.Gaps))
	}

	if len(segs) >= 2 {
		var sq float64
		for _, d := range durations {
			diff := d - f.AvgSegmentDuration
			sq += diff * diff
		}
		f.DurationVariance = sq / count
		f.DurationStd = math.Sqrt(f.DurationVariance)
	}
	return f
}
