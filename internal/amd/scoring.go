package amd

import "fmt"

// Tag marks which way a reason leans. Classification uses it to pick the
// reasons that explain the winning result.
type Tag int

const (
	TagNeutral Tag = iota
	TagHuman
	TagVoicemail
)

func (t Tag) String() string {
	switch t {
	case TagHuman:
		return "HUMAN"
	case TagVoicemail:
		return "VOICEMAIL"
	default:
		return "NEUTRAL"
	}
}

// Reason is one line of the scoring breakdown.
type Reason struct {
	Text string `json:"text"`
	Tag  Tag    `json:"tag"`
}

// String renders the reason with its polarity marker, e.g.
// "VOICEMAIL: Single very long message (9.0s)". Neutral reasons carry no marker.
func (r Reason) String() string {
	if r.Tag == TagNeutral {
		return r.Text
	}
	return r.Tag.String() + ": " + r.Text
}

// Delta is the effect of one fired tier.
type Delta struct {
	Family     string
	Score      int
	Indicators int
	Reason     Reason
}

// ScoreResult accumulates deltas. Apply returns a new value and never
// modifies the receiver's reasons.
type ScoreResult struct {
	Score               int      `json:"score"`
	Reasons             []Reason `json:"reasons"`
	VoicemailIndicators int      `json:"voicemail_indicators"`
}

// Apply folds d into r.
func (r ScoreResult) Apply(d Delta) ScoreResult {
	reasons := make([]Reason, len(r.Reasons), len(r.Reasons)+1)
	copy(reasons, r.Reasons)
	return ScoreResult{
		Score:               r.Score + d.Score,
		Reasons:             append(reasons, d.Reason),
		VoicemailIndicators: r.VoicemailIndicators + d.Indicators,
	}
}

// ReasonStrings renders every reason in insertion order.
func (r ScoreResult) ReasonStrings() []string {
	out := make([]string, len(r.Reasons))
	for i, reason := range r.Reasons {
		out[i] = reason.String()
	}
	return out
}

// Lean says which result a rule family argues for.
type Lean int

const (
	LeanVoicemail Lean = iota
	LeanHuman
)

type tier struct {
	when       func(f FeatureSet) bool
	score      int
	indicators int
	tag        Tag
	reason     func(f FeatureSet) string
}

// Family is an else-if ladder: tiers are ordered from most to least extreme
// and at most one of them fires.
type Family struct {
	Name  string
	Lean  Lean
	guard func(f FeatureSet) bool
	tiers []tier
}

// Evaluate returns the delta of the first matching tier.
func (fam Family) Evaluate(f FeatureSet) (Delta, bool) {
	if fam.guard != nil && !fam.guard(f) {
		return Delta{}, false
	}
	for _, t := range fam.tiers {
		if !t.when(f) {
			continue
		}
		return Delta{
			Family:     fam.Name,
			Score:      t.score,
			Indicators: t.indicators,
			Reason:     Reason{Text: t.reason(f), Tag: t.tag},
		}, true
	}
	return Delta{}, false
}

func text(s string) func(FeatureSet) string {
	return func(FeatureSet) string { return s }
}

func hasGaps(f FeatureSet) bool { return len(f.Gaps) > 0 }

func pct(v float64) string { return fmt.Sprintf("%.0f%%", v*100) }

// voicemailFamilies look for long, dense, uniform speech typical of a recorded greeting.
var voicemailFamilies = []Family{
	{
		Name: "max_segment_duration",
		Lean: LeanVoicemail,
		tiers: []tier{
			{func(f FeatureSet) bool { return f.MaxSegmentDuration > 8.0 }, -10, 3, TagVoicemail,
				func(f FeatureSet) string {
					return fmt.Sprintf("Extremely long continuous speech (%.1fs)", f.MaxSegmentDuration)
				}},
			{func(f FeatureSet) bool { return f.MaxSegmentDuration > 6.0 }, -7, 3, TagVoicemail,
				func(f FeatureSet) string {
					return fmt.Sprintf("Very long continuous speech (%.1fs)", f.MaxSegmentDuration)
				}},
			{func(f FeatureSet) bool { return f.MaxSegmentDuration > 4.5 }, -4, 2, TagVoicemail,
				func(f FeatureSet) string {
					return fmt.Sprintf("Long continuous speech (%.1fs)", f.MaxSegmentDuration)
				}},
			{func(f FeatureSet) bool { return f.MaxSegmentDuration > 3.5 }, -2, 1, TagNeutral,
				func(f FeatureSet) string {
					return fmt.Sprintf("Moderately long speech segment (%.1fs)", f.MaxSegmentDuration)
				}},
		},
	},
	{
		Name: "speech_ratio",
		Lean: LeanVoicemail,
		tiers: []tier{
			{func(f FeatureSet) bool { return f.SpeechRatio > 0.90 }, -8, 3, TagVoicemail,
				func(f FeatureSet) string { return "Almost continuous talking (" + pct(f.SpeechRatio) + ")" }},
			{func(f FeatureSet) bool { return f.SpeechRatio > 0.80 }, -5, 2, TagVoicemail,
				func(f FeatureSet) string { return "Mostly continuous speech (" + pct(f.SpeechRatio) + ")" }},
			{func(f FeatureSet) bool { return f.SpeechRatio > 0.70 }, -2, 1, TagNeutral,
				func(f FeatureSet) string { return "High speech ratio (" + pct(f.SpeechRatio) + ")" }},
		},
	},
	{
		Name: "segment_count_vs_duration",
		Lean: LeanVoicemail,
		tiers: []tier{
			{func(f FeatureSet) bool { return f.SegmentCount == 1 && f.TotalSpeechDuration > 5.0 }, -9, 3, TagVoicemail,
				func(f FeatureSet) string {
					return fmt.Sprintf("Single very long message (%.1fs)", f.TotalSpeechDuration)
				}},
			{func(f FeatureSet) bool { return f.SegmentCount <= 2 && f.TotalSpeechDuration > 6.0 }, -7, 3, TagVoicemail,
				func(f FeatureSet) string {
					return fmt.Sprintf("Few segments (%d) but very long duration (%.1fs)", f.SegmentCount, f.TotalSpeechDuration)
				}},
			{func(f FeatureSet) bool { return f.SegmentCount <= 2 && f.TotalSpeechDuration > 4.0 }, -4, 1, TagNeutral,
				text("Limited segments with long duration")},
		},
	},
	{
		Name: "total_speech_duration",
		Lean: LeanVoicemail,
		tiers: []tier{
			{func(f FeatureSet) bool { return f.TotalSpeechDuration > 9.0 }, -9, 3, TagVoicemail,
				func(f FeatureSet) string {
					return fmt.Sprintf("Very extended talking time (%.1fs)", f.TotalSpeechDuration)
				}},
			{func(f FeatureSet) bool { return f.TotalSpeechDuration > 7.0 }, -6, 2, TagVoicemail,
				func(f FeatureSet) string {
					return fmt.Sprintf("Extended talking time (%.1fs)", f.TotalSpeechDuration)
				}},
			{func(f FeatureSet) bool { return f.TotalSpeechDuration > 5.5 }, -3, 1, TagNeutral,
				func(f FeatureSet) string {
					return fmt.Sprintf("Long talking duration (%.1fs)", f.TotalSpeechDuration)
				}},
		},
	},
	{
		Name:  "short_gaps",
		Lean:  LeanVoicemail,
		guard: hasGaps,
		tiers: []tier{
			{func(f FeatureSet) bool { return f.AvgGap < 0.2 }, -4, 2, TagVoicemail,
				func(f FeatureSet) string {
					return fmt.Sprintf("Almost no pauses (%.2fs) - scripted flow", f.AvgGap)
				}},
			{func(f FeatureSet) bool { return f.AvgGap < 0.4 }, -2, 1, TagNeutral,
				text("Very short pauses - possibly scripted")},
		},
	},
	{
		Name:  "uniform_segments",
		Lean:  LeanVoicemail,
		guard: func(f FeatureSet) bool { return f.SegmentCount >= 2 },
		tiers: []tier{
			{func(f FeatureSet) bool { return f.DurationStd < 0.3 && f.AvgSegmentDuration > 2.0 }, -5, 2, TagVoicemail,
				text("Uniform long segments - scripted pattern")},
			{func(f FeatureSet) bool { return f.DurationVariance < 0.15 }, -2, 1, TagNeutral,
				text("Consistent segment lengths")},
		},
	},
	{
		Name: "long_answer_window",
		Lean: LeanVoicemail,
		tiers: []tier{
			{func(f FeatureSet) bool { return f.AnswerDuration > 10.0 && f.SpeechRatio > 0.7 }, -7, 3, TagVoicemail,
				func(f FeatureSet) string {
					return fmt.Sprintf("Very extended answer window (%.1fs) with high speech", f.AnswerDuration)
				}},
			{func(f FeatureSet) bool { return f.AnswerDuration > 7.0 && f.SpeechRatio > 0.6 }, -4, 2, TagVoicemail,
				func(f FeatureSet) string {
					return fmt.Sprintf("Extended answer window (%.1fs) with high speech", f.AnswerDuration)
				}},
			{func(f FeatureSet) bool { return f.AnswerDuration > 5.5 && f.SpeechRatio > 0.5 }, -2, 1, TagNeutral,
				func(f FeatureSet) string {
					return fmt.Sprintf("Long answer window (%.1fs)", f.AnswerDuration)
				}},
		},
	},
}

// humanFamilies look for short, bursty, pause-heavy speech typical of a person picking up.
var humanFamilies = []Family{
	{
		Name: "brevity",
		Lean: LeanHuman,
		tiers: []tier{
			{func(f FeatureSet) bool { return f.TotalSpeechDuration < 1.5 && f.SegmentCount <= 2 }, 8, 0, TagHuman,
				func(f FeatureSet) string { return fmt.Sprintf("Brief greeting (%.1fs)", f.TotalSpeechDuration) }},
			{func(f FeatureSet) bool { return f.TotalSpeechDuration < 3.0 && f.SegmentCount <= 3 }, 6, 0, TagHuman,
				func(f FeatureSet) string { return fmt.Sprintf("Short response (%.1fs)", f.TotalSpeechDuration) }},
			{func(f FeatureSet) bool { return f.TotalSpeechDuration < 4.5 }, 3, 0, TagHuman,
				func(f FeatureSet) string {
					return fmt.Sprintf("Reasonable response length (%.1fs)", f.TotalSpeechDuration)
				}},
		},
	},
	{
		Name: "burstiness",
		Lean: LeanHuman,
		tiers: []tier{
			{func(f FeatureSet) bool { return f.SegmentCount >= 4 && f.AvgSegmentDuration < 2.0 }, 7, 0, TagHuman,
				func(f FeatureSet) string {
					return fmt.Sprintf("Multiple brief utterances (%d bursts)", f.SegmentCount)
				}},
			{func(f FeatureSet) bool { return f.SegmentCount >= 3 && f.AvgSegmentDuration < 2.5 }, 5, 0, TagHuman,
				func(f FeatureSet) string {
					return fmt.Sprintf("Conversational pattern (%d bursts)", f.SegmentCount)
				}},
			{func(f FeatureSet) bool { return f.SegmentCount >= 2 && f.AvgSegmentDuration < 1.5 }, 4, 0, TagHuman,
				text("Quick back-and-forth pattern")},
		},
	},
	{
		Name: "low_speech_ratio",
		Lean: LeanHuman,
		tiers: []tier{
			{func(f FeatureSet) bool { return f.SpeechRatio < 0.35 && f.SegmentCount >= 2 }, 6, 0, TagHuman,
				func(f FeatureSet) string {
					return "Mostly listening (" + pct(f.SpeechRatio) + ") - responding to caller"
				}},
			{func(f FeatureSet) bool { return f.SpeechRatio < 0.50 }, 3, 0, TagNeutral,
				func(f FeatureSet) string { return "Balanced listening/speaking (" + pct(f.SpeechRatio) + ")" }},
		},
	},
	{
		Name:  "long_gaps",
		Lean:  LeanHuman,
		guard: hasGaps,
		tiers: []tier{
			{func(f FeatureSet) bool { return f.AvgGap > 1.0 }, 5, 0, TagHuman,
				func(f FeatureSet) string {
					return fmt.Sprintf("Long pauses (%.2fs) - natural conversation", f.AvgGap)
				}},
			{func(f FeatureSet) bool { return f.AvgGap > 0.7 }, 3, 0, TagNeutral,
				text("Natural pauses between responses")},
		},
	},
	{
		Name: "quick_start",
		Lean: LeanHuman,
		tiers: []tier{
			{func(f FeatureSet) bool { return f.FirstSegmentStart < 6.5 && f.TotalSpeechDuration < 3.0 }, 5, 0, TagHuman,
				text("Quick brief greeting")},
			{func(f FeatureSet) bool { return f.FirstSegmentStart < 7.5 && f.TotalSpeechDuration < 5.0 }, 3, 0, TagHuman,
				text("Prompt response")},
			{func(f FeatureSet) bool { return f.FirstSegmentStart < 8.0 }, 1, 0, TagNeutral,
				text("Reasonable response time")},
		},
	},
	{
		Name:  "variable_segments",
		Lean:  LeanHuman,
		guard: func(f FeatureSet) bool { return f.SegmentCount >= 3 },
		tiers: []tier{
			{func(f FeatureSet) bool { return f.DurationStd > 0.5 }, 4, 0, TagHuman,
				text("Highly varied speech patterns")},
			{func(f FeatureSet) bool { return f.DurationStd > 0.3 }, 2, 0, TagNeutral,
				text("Natural variation in speech")},
		},
	},
	{
		Name: "voice_energy",
		Lean: LeanHuman,
		tiers: []tier{
			{func(f FeatureSet) bool { return f.AvgEnergy > 0.030 && f.AvgEnergy < 0.070 }, 3, 0, TagHuman,
				text("Natural voice energy")},
			// A weak line counts against a human pickup but is not a voicemail indicator.
			{func(f FeatureSet) bool { return f.AvgEnergy < 0.020 }, -2, 0, TagNeutral,
				text("Weak signal")},
		},
	},
}

// Families returns every rule family in evaluation order: the seven
// voicemail-leaning families followed by the seven human-leaning ones.
func Families() []Family {
	out := make([]Family, 0, len(voicemailFamilies)+len(humanFamilies))
	out = append(out, voicemailFamilies...)
	return append(out, humanFamilies...)
}

const (
	// overrideIndicators is the indicator count that forces a machine-leaning score.
	overrideIndicators = 3
	// overrideCeiling is the highest score allowed once the override applies.
	overrideCeiling = -10
	// reinforceIndicators and reinforcePenalty deepen an already negative score.
	reinforceIndicators = 2
	reinforcePenalty    = 3
)

// Score evaluates every family independently, sums the fired deltas and then
// applies the voicemail override.
func Score(f FeatureSet) ScoreResult {
	result := ScoreResult{Reasons: []Reason{}}
	for _, fam := range Families() {
		if d, ok := fam.Evaluate(f); ok {
			result = result.Apply(d)
		}
	}
	return applyOverride(result)
}

// applyOverride guarantees that three or more strong machine signals produce
// a machine-leaning score whatever the human families contributed.
func applyOverride(r ScoreResult) ScoreResult {
	if r.VoicemailIndicators >= overrideIndicators {
		r.Score = min(r.Score, overrideCeiling)
	}
	if r.Score < 0 && r.VoicemailIndicators >= reinforceIndicators {
		r.Score -= reinforcePenalty
	}
	return r
}
