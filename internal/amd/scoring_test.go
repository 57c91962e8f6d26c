package amd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func familyByName(t *testing.T, name string) Family {
	t.Helper()
	for _, fam := range Families() {
		if fam.Name == name {
			return fam
		}
	}
	t.Fatalf("no family %q", name)
	return Family{}
}

func TestFamilies_Order(t *testing.T) {
	fams := Families()
	require.Len(t, fams, 14)
	for i, fam := range fams {
		if i < 7 {
			assert.Equal(t, LeanVoicemail, fam.Lean, fam.Name)
		} else {
			assert.Equal(t, LeanHuman, fam.Lean, fam.Name)
		}
	}
	assert.Equal(t, "max_segment_duration", fams[0].Name)
	assert.Equal(t, "voice_energy", fams[13].Name)
}

func TestFamily_MaxSegmentDurationLadder(t *testing.T) {
	fam := familyByName(t, "max_segment_duration")
	tests := []struct {
		max        float64
		fires      bool
		score      int
		indicators int
		tag        Tag
	}{
		{9.0, true, -10, 3, TagVoicemail},
		{8.0, true, -7, 3, TagVoicemail},
		{5.0, true, -4, 2, TagVoicemail},
		{4.0, true, -2, 1, TagNeutral},
		{3.5, false, 0, 0, TagNeutral},
	}
	for _, tt := range tests {
		d, ok := fam.Evaluate(FeatureSet{MaxSegmentDuration: tt.max})
		assert.Equal(t, tt.fires, ok, "max=%v", tt.max)
		assert.Equal(t, tt.score, d.Score, "max=%v", tt.max)
		assert.Equal(t, tt.indicators, d.Indicators, "max=%v", tt.max)
		assert.Equal(t, tt.tag, d.Reason.Tag, "max=%v", tt.max)
	}
}

func TestFamily_Guards(t *testing.T) {
	// Zero gaps would satisfy avg_gap < 0.2, but the family needs at least one gap.
	_, ok := familyByName(t, "short_gaps").Evaluate(FeatureSet{SegmentCount: 1})
	assert.False(t, ok)
	_, ok = familyByName(t, "long_gaps").Evaluate(FeatureSet{SegmentCount: 1, AvgGap: 2})
	assert.False(t, ok)

	_, ok = familyByName(t, "uniform_segments").Evaluate(FeatureSet{SegmentCount: 1})
	assert.False(t, ok)
	d, ok := familyByName(t, "uniform_segments").Evaluate(FeatureSet{SegmentCount: 2, AvgSegmentDuration: 2.5, DurationStd: 0.1})
	assert.True(t, ok)
	assert.Equal(t, -5, d.Score)

	_, ok = familyByName(t, "variable_segments").Evaluate(FeatureSet{SegmentCount: 2, DurationStd: 0.9})
	assert.False(t, ok)
	d, ok = familyByName(t, "variable_segments").Evaluate(FeatureSet{SegmentCount: 3, DurationStd: 0.9})
	assert.True(t, ok)
	assert.Equal(t, 4, d.Score)
}

func TestFamily_VoiceEnergy(t *testing.T) {
	fam := familyByName(t, "voice_energy")

	d, ok := fam.Evaluate(FeatureSet{AvgEnergy: 0.05})
	require.True(t, ok)
	assert.Equal(t, 3, d.Score)
	assert.Equal(t, "HUMAN: Natural voice energy", d.Reason.String())

	d, ok = fam.Evaluate(FeatureSet{AvgEnergy: 0.018})
	require.True(t, ok)
	assert.Equal(t, -2, d.Score)
	assert.Zero(t, d.Indicators)
	assert.Equal(t, "Weak signal", d.Reason.String())

	_, ok = fam.Evaluate(FeatureSet{AvgEnergy: 0.025})
	assert.False(t, ok)
	_, ok = fam.Evaluate(FeatureSet{AvgEnergy: 0.09})
	assert.False(t, ok)
}

func TestReasonFormatting(t *testing.T) {
	d, ok := familyByName(t, "speech_ratio").Evaluate(FeatureSet{SpeechRatio: 0.934})
	require.True(t, ok)
	assert.Equal(t, "VOICEMAIL: Almost continuous talking (93%)", d.Reason.String())

	d, ok = familyByName(t, "segment_count_vs_duration").Evaluate(FeatureSet{SegmentCount: 2, TotalSpeechDuration: 6.44})
	require.True(t, ok)
	assert.Equal(t, "VOICEMAIL: Few segments (2) but very long duration (6.4s)", d.Reason.String())
}

func TestScoreResult_ApplyDoesNotShareReasons(t *testing.T) {
	base := ScoreResult{}.Apply(Delta{Score: -2, Indicators: 1, Reason: Reason{Text: "a"}})
	left := base.Apply(Delta{Score: 3, Reason: Reason{Text: "left", Tag: TagHuman}})
	right := base.Apply(Delta{Score: -4, Indicators: 2, Reason: Reason{Text: "right", Tag: TagVoicemail}})

	assert.Len(t, base.Reasons, 1)
	assert.Equal(t, []string{"a", "HUMAN: left"}, left.ReasonStrings())
	assert.Equal(t, []string{"a", "VOICEMAIL: right"}, right.ReasonStrings())
	assert.Equal(t, 1, left.Score)
	assert.Equal(t, 3, right.VoicemailIndicators)
}

func TestScore_SingleLongMessage(t *testing.T) {
	f := FeatureSet{
		SegmentCount:        1,
		TotalSpeechDuration: 9.0,
		AvgSegmentDuration:  9.0,
		MaxSegmentDuration:  9.0,
		SpeechRatio:         1.0,
		AvgEnergy:           0.05,
		Gaps:                []float64{},
		FirstSegmentStart:   10.0,
		AnswerDuration:      9.0,
	}

	r := Score(f)
	// -10 -8 -9 -6 -4 from the voicemail families, +3 for voice energy, then -3.
	assert.Equal(t, -37, r.Score)
	assert.Equal(t, 13, r.VoicemailIndicators)
	assert.Equal(t, "VOICEMAIL: Extremely long continuous speech (9.0s)", r.Reasons[0].String())
}

func TestScore_BriefGreeting(t *testing.T) {
	f := FeatureSet{
		SegmentCount:        2,
		TotalSpeechDuration: 1.4,
		AvgSegmentDuration:  0.7,
		MaxSegmentDuration:  0.8,
		SpeechRatio:         0.30,
		AvgEnergy:           0.04,
		Gaps:                []float64{1.2},
		AvgGap:              1.2,
		DurationStd:         0.1,
		DurationVariance:    0.01,
		FirstSegmentStart:   6.0,
		AnswerDuration:      4.6,
	}

	r := Score(f)
	// consistent lengths -2; brevity +8, back-and-forth +4, listening +6,
	// pauses +5, quick start +5, energy +3.
	assert.Equal(t, 29, r.Score)
	assert.Equal(t, 1, r.VoicemailIndicators)
	assert.Len(t, r.Reasons, 7)
}

func TestScore_OverrideBeatsHumanSignals(t *testing.T) {
	f := FeatureSet{
		SegmentCount:        5,
		TotalSpeechDuration: 2.5,
		AvgSegmentDuration:  0.5,
		MaxSegmentDuration:  6.5,
		SpeechRatio:         0.3,
		AvgEnergy:           0.05,
		Gaps:                []float64{1.5, 1.5, 1.5, 1.5},
		AvgGap:              1.5,
		DurationStd:         0.8,
		DurationVariance:    0.64,
		FirstSegmentStart:   5.5,
		AnswerDuration:      8.0,
	}

	r := Score(f)
	// Raw score is +26 with three indicators: clamp to -10, then -3.
	assert.Equal(t, -13, r.Score)
	assert.Equal(t, 3, r.VoicemailIndicators)
	assert.Equal(t, ResultMachine, Classify(r).Result)
}

func TestScore_MaxSegmentDurationMonotonic(t *testing.T) {
	base := FeatureSet{
		SegmentCount:        3,
		TotalSpeechDuration: 4.0,
		AvgSegmentDuration:  4.0 / 3,
		SpeechRatio:         0.6,
		AvgEnergy:           0.04,
		Gaps:                []float64{0.8, 0.8},
		AvgGap:              0.8,
		DurationStd:         0.4,
		DurationVariance:    0.16,
		FirstSegmentStart:   6.0,
		AnswerDuration:      6.6,
	}

	prev := Score(base).Score
	for _, longest := range []float64{3.0, 3.6, 4.6, 6.1, 8.1, 12.0} {
		f := base
		f.MaxSegmentDuration = longest
		got := Score(f).Score
		assert.LessOrEqual(t, got, prev, "max=%v", longest)
		prev = got
	}
}

func TestApplyOverride(t *testing.T) {
	tests := []struct {
		name       string
		score      int
		indicators int
		want       int
	}{
		{"no indicators", 5, 0, 5},
		{"two indicators positive score", 5, 2, 5},
		{"two indicators negative score", -1, 2, -4},
		{"three indicators clamp", 12, 3, -13},
		{"three indicators already low", -20, 3, -23},
		{"one indicator negative score", -6, 1, -6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyOverride(ScoreResult{Score: tt.score, VoicemailIndicators: tt.indicators})
			assert.Equal(t, tt.want, got.Score)
		})
	}
}
