package amd

// AnswerWindow is the span of the recording judged to hold the callee's answer.
type AnswerWindow struct {
	Segments []Segment `json:"segments"`
	Start    float64   `json:"answer_start"`
	End      float64   `json:"answer_end"`
	Duration float64   `json:"answer_duration"`
}

// IsCandidate reports whether seg may belong to the callee's answer: it must
// start after the carrier message, end before the trailing greeting and be
// louder than line noise.
func IsCandidate(seg Segment, totalDuration float64, p Params) bool {
	return seg.StartTime >= p.AnswerStartSec &&
		seg.EndTime <= totalDuration-p.TrailingExclusionSec &&
		seg.Energy > p.MinSegmentEnergy
}

// SelectAnswerWindow keeps the candidate segments in their original order.
// It returns false when no segment qualifies.
func SelectAnswerWindow(segments []Segment, totalDuration float64, p Params) (AnswerWindow, bool) {
	var candidates []Segment
	for _, seg := range segments {
		if IsCandidate(seg, totalDuration, p) {
			candidates = append(candidates, seg)
		}
	}
	if len(candidates) == 0 {
		return AnswerWindow{}, false
	}

	start := candidates[0].StartTime
	end := candidates[len(candidates)-1].EndTime
	return AnswerWindow{
		Segments: candidates,
		Start:    start,
		End:      end,
		Duration: end - start,
	}, true
}
