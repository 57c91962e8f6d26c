package amd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type tierCase struct {
	name       string
	f          FeatureSet
	fires      bool
	score      int
	indicators int
	tag        Tag
}

func fires(name string, f FeatureSet, score, indicators int, tag Tag) tierCase {
	return tierCase{name: name, f: f, fires: true, score: score, indicators: indicators, tag: tag}
}

func silent(name string, f FeatureSet) tierCase {
	return tierCase{name: name, f: f}
}

func assertTiers(t *testing.T, family string, cases []tierCase) {
	t.Helper()
	fam := familyByName(t, family)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, ok := fam.Evaluate(tc.f)
			assert.Equal(t, tc.fires, ok)
			assert.Equal(t, tc.score, d.Score)
			assert.Equal(t, tc.indicators, d.Indicators)
			assert.Equal(t, tc.tag, d.Reason.Tag)
			if ok {
				assert.Equal(t, family, d.Family)
				assert.NotEmpty(t, d.Reason.Text)
			}
		})
	}
}

func TestFamily_SpeechRatio(t *testing.T) {
	ratio := func(r float64) FeatureSet { return FeatureSet{SpeechRatio: r} }
	assertTiers(t, "speech_ratio", []tierCase{
		fires("above 0.90", ratio(0.91), -8, 3, TagVoicemail),
		fires("at 0.90", ratio(0.90), -5, 2, TagVoicemail),
		fires("above 0.80", ratio(0.81), -5, 2, TagVoicemail),
		fires("at 0.80", ratio(0.80), -2, 1, TagNeutral),
		fires("above 0.70", ratio(0.71), -2, 1, TagNeutral),
		silent("at 0.70", ratio(0.70)),
	})
}

func TestFamily_SegmentCountVsDuration(t *testing.T) {
	sc := func(n int, total float64) FeatureSet {
		return FeatureSet{SegmentCount: n, TotalSpeechDuration: total}
	}
	assertTiers(t, "segment_count_vs_duration", []tierCase{
		fires("single above 5s", sc(1, 5.1), -9, 3, TagVoicemail),
		fires("single at 5s", sc(1, 5.0), -4, 1, TagNeutral),
		fires("two above 6s", sc(2, 6.1), -7, 3, TagVoicemail),
		fires("two at 6s", sc(2, 6.0), -4, 1, TagNeutral),
		fires("two above 4s", sc(2, 4.1), -4, 1, TagNeutral),
		silent("two at 4s", sc(2, 4.0)),
		silent("three segments", sc(3, 10.0)),
	})
}

func TestFamily_TotalSpeechDuration(t *testing.T) {
	total := func(s float64) FeatureSet { return FeatureSet{TotalSpeechDuration: s} }
	assertTiers(t, "total_speech_duration", []tierCase{
		fires("above 9s", total(9.1), -9, 3, TagVoicemail),
		fires("at 9s", total(9.0), -6, 2, TagVoicemail),
		fires("above 7s", total(7.1), -6, 2, TagVoicemail),
		fires("at 7s", total(7.0), -3, 1, TagNeutral),
		fires("above 5.5s", total(5.6), -3, 1, TagNeutral),
		silent("at 5.5s", total(5.5)),
	})
}

func TestFamily_ShortGaps(t *testing.T) {
	gap := func(g float64) FeatureSet { return FeatureSet{Gaps: []float64{g}, AvgGap: g} }
	assertTiers(t, "short_gaps", []tierCase{
		fires("below 0.2s", gap(0.19), -4, 2, TagVoicemail),
		fires("at 0.2s", gap(0.2), -2, 1, TagNeutral),
		fires("below 0.4s", gap(0.39), -2, 1, TagNeutral),
		silent("at 0.4s", gap(0.4)),
	})
}

func TestFamily_UniformSegments(t *testing.T) {
	assertTiers(t, "uniform_segments", []tierCase{
		fires("uniform and long", FeatureSet{SegmentCount: 2, DurationStd: 0.29, DurationVariance: 0.08, AvgSegmentDuration: 2.1}, -5, 2, TagVoicemail),
		fires("std at 0.3", FeatureSet{SegmentCount: 2, DurationStd: 0.3, DurationVariance: 0.09, AvgSegmentDuration: 2.1}, -2, 1, TagNeutral),
		fires("average at 2s", FeatureSet{SegmentCount: 2, DurationStd: 0.29, DurationVariance: 0.08, AvgSegmentDuration: 2.0}, -2, 1, TagNeutral),
		silent("variance at 0.15", FeatureSet{SegmentCount: 2, DurationStd: 0.39, DurationVariance: 0.15, AvgSegmentDuration: 1.0}),
	})
}

func TestFamily_LongAnswerWindow(t *testing.T) {
	win := func(d, r float64) FeatureSet { return FeatureSet{AnswerDuration: d, SpeechRatio: r} }
	assertTiers(t, "long_answer_window", []tierCase{
		fires("above 10s dense", win(10.1, 0.71), -7, 3, TagVoicemail),
		fires("at 10s", win(10.0, 0.71), -4, 2, TagVoicemail),
		fires("above 10s ratio at 0.7", win(10.1, 0.70), -4, 2, TagVoicemail),
		fires("above 7s", win(7.1, 0.61), -4, 2, TagVoicemail),
		fires("at 7s", win(7.0, 0.61), -2, 1, TagNeutral),
		fires("above 7s ratio at 0.6", win(7.1, 0.60), -2, 1, TagNeutral),
		fires("above 5.5s", win(5.6, 0.51), -2, 1, TagNeutral),
		silent("at 5.5s", win(5.5, 0.51)),
		silent("ratio at 0.5", win(5.6, 0.50)),
	})
}

func TestFamily_Brevity(t *testing.T) {
	sp := func(total float64, n int) FeatureSet { return FeatureSet{TotalSpeechDuration: total, SegmentCount: n} }
	assertTiers(t, "brevity", []tierCase{
		fires("below 1.5s", sp(1.4, 2), 8, 0, TagHuman),
		fires("at 1.5s", sp(1.5, 2), 6, 0, TagHuman),
		fires("brief but three segments", sp(1.4, 3), 6, 0, TagHuman),
		fires("below 3s", sp(2.9, 3), 6, 0, TagHuman),
		fires("at 3s", sp(3.0, 3), 3, 0, TagHuman),
		fires("short but four segments", sp(2.9, 4), 3, 0, TagHuman),
		fires("below 4.5s", sp(4.4, 5), 3, 0, TagHuman),
		silent("at 4.5s", sp(4.5, 1)),
	})
}

func TestFamily_Burstiness(t *testing.T) {
	b := func(n int, avg float64) FeatureSet { return FeatureSet{SegmentCount: n, AvgSegmentDuration: avg} }
	assertTiers(t, "burstiness", []tierCase{
		fires("four short", b(4, 1.9), 7, 0, TagHuman),
		fires("four at 2s", b(4, 2.0), 5, 0, TagHuman),
		fires("three below 2.5s", b(3, 2.4), 5, 0, TagHuman),
		silent("three at 2.5s", b(3, 2.5)),
		fires("two below 1.5s", b(2, 1.4), 4, 0, TagHuman),
		silent("two at 1.5s", b(2, 1.5)),
		silent("one segment", b(1, 0.5)),
	})
}

func TestFamily_LowSpeechRatio(t *testing.T) {
	r := func(ratio float64, n int) FeatureSet { return FeatureSet{SpeechRatio: ratio, SegmentCount: n} }
	assertTiers(t, "low_speech_ratio", []tierCase{
		fires("below 0.35", r(0.34, 2), 6, 0, TagHuman),
		fires("at 0.35", r(0.35, 2), 3, 0, TagNeutral),
		fires("below 0.35 single segment", r(0.34, 1), 3, 0, TagNeutral),
		fires("below 0.50", r(0.49, 1), 3, 0, TagNeutral),
		silent("at 0.50", r(0.50, 1)),
	})
}

func TestFamily_LongGaps(t *testing.T) {
	gap := func(g float64) FeatureSet { return FeatureSet{Gaps: []float64{g}, AvgGap: g} }
	assertTiers(t, "long_gaps", []tierCase{
		fires("above 1s", gap(1.01), 5, 0, TagHuman),
		fires("at 1s", gap(1.0), 3, 0, TagNeutral),
		fires("above 0.7s", gap(0.71), 3, 0, TagNeutral),
		silent("at 0.7s", gap(0.7)),
	})
}

func TestFamily_QuickStart(t *testing.T) {
	q := func(start, total float64) FeatureSet {
		return FeatureSet{FirstSegmentStart: start, TotalSpeechDuration: total}
	}
	assertTiers(t, "quick_start", []tierCase{
		fires("early and brief", q(6.4, 2.9), 5, 0, TagHuman),
		fires("start at 6.5s", q(6.5, 2.9), 3, 0, TagHuman),
		fires("speech at 3s", q(6.4, 3.0), 3, 0, TagHuman),
		fires("below 7.5s", q(7.4, 4.9), 3, 0, TagHuman),
		fires("start at 7.5s", q(7.5, 4.9), 1, 0, TagNeutral),
		fires("speech at 5s", q(7.4, 5.0), 1, 0, TagNeutral),
		fires("below 8s", q(7.9, 9.0), 1, 0, TagNeutral),
		silent("at 8s", q(8.0, 1.0)),
	})
}

func TestFamily_VariableSegments(t *testing.T) {
	v := func(std float64) FeatureSet { return FeatureSet{SegmentCount: 3, DurationStd: std} }
	assertTiers(t, "variable_segments", []tierCase{
		fires("above 0.5", v(0.51), 4, 0, TagHuman),
		fires("at 0.5", v(0.5), 2, 0, TagNeutral),
		fires("above 0.3", v(0.31), 2, 0, TagNeutral),
		silent("at 0.3", v(0.3)),
	})
}

func TestFamily_VoiceEnergyBounds(t *testing.T) {
	e := func(v float64) FeatureSet { return FeatureSet{AvgEnergy: v} }
	assertTiers(t, "voice_energy", []tierCase{
		fires("just above 0.030", e(0.0301), 3, 0, TagHuman),
		silent("at 0.030", e(0.030)),
		silent("at 0.070", e(0.070)),
		silent("at 0.020", e(0.020)),
		fires("just below 0.020", e(0.0199), -2, 0, TagNeutral),
	})
}
