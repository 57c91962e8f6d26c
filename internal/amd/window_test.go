package amd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCandidate(t *testing.T) {
	p := DefaultParams()
	tests := []struct {
		name string
		seg  Segment
		want bool
	}{
		{"inside window", seg(6, 8, 0.05), true},
		{"starts exactly at answer start", seg(5, 6, 0.05), true},
		{"ends exactly at trailing cutoff", seg(20, 22, 0.05), true},
		{"carrier message", seg(1, 4, 0.05), false},
		{"straddles answer start", seg(4.9, 6, 0.05), false},
		{"runs into trailing greeting", seg(20, 22.1, 0.05), false},
		{"line noise", seg(6, 8, 0.015), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCandidate(tt.seg, 30, p))
		})
	}
}

func TestSelectAnswerWindow(t *testing.T) {
	segments := []Segment{
		seg(0.5, 3, 0.2),
		seg(6, 7, 0.04),
		seg(7.5, 7.9, 0.01),
		seg(8.5, 10, 0.05),
		seg(24, 29, 0.3),
	}

	w, ok := SelectAnswerWindow(segments, 30, DefaultParams())
	require.True(t, ok)
	require.Len(t, w.Segments, 2)
	assert.Equal(t, 6.0, w.Segments[0].StartTime)
	assert.Equal(t, 8.5, w.Segments[1].StartTime)
	assert.Equal(t, 6.0, w.Start)
	assert.Equal(t, 10.0, w.End)
	assert.InDelta(t, 4.0, w.Duration, 1e-9)
}

func TestSelectAnswerWindow_NoCandidates(t *testing.T) {
	_, ok := SelectAnswerWindow([]Segment{seg(1, 2, 0.3), seg(25, 28, 0.3)}, 30, DefaultParams())
	assert.False(t, ok)

	_, ok = SelectAnswerWindow(nil, 30, DefaultParams())
	assert.False(t, ok)

	// Recordings shorter than the exclusions combined never have a window.
	_, ok = SelectAnswerWindow([]Segment{seg(5, 6, 0.3)}, 12, DefaultParams())
	assert.False(t, ok)
}

func TestExtractFeatures(t *testing.T) {
	w, ok := SelectAnswerWindow([]Segment{
		seg(6, 7, 0.02),
		seg(8, 10, 0.04),
		seg(10.5, 13.5, 0.06),
	}, 30, DefaultParams())
	require.True(t, ok)

	f := ExtractFeatures(w)
	assert.Equal(t, 3, f.SegmentCount)
	assert.InDelta(t, 6.0, f.TotalSpeechDuration, 1e-9)
	assert.InDelta(t, 7.5, f.AnswerDuration, 1e-9)
	assert.InDelta(t, 1.5, f.SilenceInAnswer, 1e-9)
	assert.InDelta(t, 0.8, f.SpeechRatio, 1e-9)
	assert.InDelta(t, 2.0, f.AvgSegmentDuration, 1e-9)
	assert.InDelta(t, 3.0, f.MaxSegmentDuration, 1e-9)
	assert.InDelta(t, 0.04, f.AvgEnergy, 1e-9)
	assert.InDeltaSlice(t, []float64{1.0, 0.5}, f.Gaps, 1e-9)
	assert.InDelta(t, 0.75, f.AvgGap, 1e-9)
	assert.InDelta(t, 2.0/3.0, f.DurationVariance, 1e-9)
	assert.InDelta(t, 0.8165, f.DurationStd, 1e-4)
	assert.Equal(t, 6.0, f.FirstSegmentStart)
}

func TestExtractFeatures_SingleSegment(t *testing.T) {
	f := ExtractFeatures(AnswerWindow{Segments: []Segment{seg(6, 9, 0.05)}, Start: 6, End: 9, Duration: 3})

	assert.Equal(t, 1, f.SegmentCount)
	assert.Empty(t, f.Gaps)
	assert.Zero(t, f.AvgGap)
	assert.Zero(t, f.DurationStd)
	assert.Zero(t, f.DurationVariance)
	assert.InDelta(t, 1.0, f.SpeechRatio, 1e-9)
}

func TestExtractFeatures_SpeechRatioBounds(t *testing.T) {
	// A zero-length window yields a zero ratio rather than a division by zero.
	f := ExtractFeatures(AnswerWindow{Segments: []Segment{seg(6, 6, 0.05)}, Start: 6, End: 6})
	assert.Zero(t, f.SpeechRatio)

	w, ok := SelectAnswerWindow([]Segment{seg(6, 7.1, 0.05), seg(7.1, 9.3, 0.05)}, 30, DefaultParams())
	require.True(t, ok)
	f = ExtractFeatures(w)
	assert.GreaterOrEqual(t, f.SpeechRatio, 0.0)
	assert.LessOrEqual(t, f.SpeechRatio, 1.0)
}

func TestExtractFeatures_SpeechRatioClampedAtOne(t *testing.T) {
	// Boundary rounding can leave the window a hair shorter than its speech.
	w := AnswerWindow{Segments: []Segment{seg(6, 9, 0.05)}, Start: 6, End: 9, Duration: 2.9999999}
	f := ExtractFeatures(w)
	assert.Equal(t, 1.0, f.SpeechRatio)
	assert.Less(t, f.SilenceInAnswer, 0.0)
}
