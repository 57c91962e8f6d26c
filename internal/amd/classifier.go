package amd

import (
	"math"
	"strings"
)

// Result is the detected kind of pickup.
type Result string

const (
	ResultHuman   Result = "human"
	ResultMachine Result = "machine"
	ResultUnknown Result = "unknown"
)

const (
	reasonNoSpeech       = "No speech detected in entire recording - possible silence or connection issue"
	reasonNoAnswerSpeech = "No speech detected in expected answer window - likely silent or call quality issue"

	confidenceNoSpeech       = 0.65
	confidenceNoAnswerSpeech = 0.70
	confidenceAmbiguous      = 0.50
	confidenceCeiling        = 0.95
	indicatorBoost           = 0.10
)

// Classification is the verdict for one recording.
type Classification struct {
	Result          Result  `json:"result"`
	Confidence      float64 `json:"confidence"`
	Reasoning       string  `json:"reasoning"`
	DetectionTimeMs int64   `json:"detection_time_ms"`
}

// NoSpeech is returned when segmentation finds nothing at all.
func NoSpeech() Classification {
	return Classification{Result: ResultUnknown, Confidence: confidenceNoSpeech, Reasoning: reasonNoSpeech}
}

// NoAnswerSpeech is returned when there is speech but none of it falls in the answer window.
func NoAnswerSpeech() Classification {
	return Classification{Result: ResultUnknown, Confidence: confidenceNoAnswerSpeech, Reasoning: reasonNoAnswerSpeech}
}

type band struct {
	when       func(score int) bool
	result     Result
	confidence func(score int) float64
	prefix     string
	keep       func(Reason) bool
	limit      int
}

func abs(score int) float64 { return math.Abs(float64(score)) }

func tagged(t Tag) func(Reason) bool {
	return func(r Reason) bool { return r.Tag == t }
}

func notTagged(t Tag) func(Reason) bool {
	return func(r Reason) bool { return r.Tag != t }
}

// bands are checked in order; the first match wins. Only the top and bottom
// bands clamp their confidence.
var bands = []band{
	{
		when:       func(s int) bool { return s >= 8 },
		result:     ResultHuman,
		confidence: func(s int) float64 { return math.Min(confidenceCeiling, 0.80+float64(s-8)*0.02) },
		prefix:     "Strong human indicators: ",
		keep:       tagged(TagHuman),
		limit:      3,
	},
	{
		when:       func(s int) bool { return s >= 4 },
		result:     ResultHuman,
		confidence: func(s int) float64 { return 0.70 + float64(s-4)*0.025 },
		prefix:     "Likely human: ",
		keep:       notTagged(TagVoicemail),
		limit:      3,
	},
	{
		when:       func(s int) bool { return s <= -8 },
		result:     ResultMachine,
		confidence: func(s int) float64 { return math.Min(confidenceCeiling, 0.80+(abs(s)-8)*0.02) },
		prefix:     "Strong voicemail indicators: ",
		keep:       tagged(TagVoicemail),
		limit:      3,
	},
	{
		when:       func(s int) bool { return s <= -4 },
		result:     ResultMachine,
		confidence: func(s int) float64 { return 0.70 + (abs(s)-4)*0.025 },
		prefix:     "Likely voicemail: ",
		keep:       notTagged(TagHuman),
		limit:      3,
	},
	{
		when:       func(s int) bool { return s <= -1 },
		result:     ResultMachine,
		confidence: func(s int) float64 { return 0.60 + abs(s)*0.03 },
		prefix:     "Voicemail pattern detected: ",
		keep:       tagged(TagVoicemail),
		limit:      2,
	},
	{
		when:       func(s int) bool { return s >= 1 },
		result:     ResultHuman,
		confidence: func(s int) float64 { return 0.60 + float64(s)*0.03 },
		prefix:     "Human pattern detected: ",
		keep:       tagged(TagHuman),
		limit:      2,
	},
}

// Classify maps a final score to a result, a confidence and a short
// explanation built from the reasons that argue for that result.
func Classify(r ScoreResult) Classification {
	c := Classification{
		Result:     ResultUnknown,
		Confidence: confidenceAmbiguous,
		Reasoning:  "Ambiguous pattern: " + joinReasons(r.Reasons, nil, 2),
	}
	for _, b := range bands {
		if !b.when(r.Score) {
			continue
		}
		c = Classification{
			Result:     b.result,
			Confidence: b.confidence(r.Score),
			Reasoning:  b.prefix + joinReasons(r.Reasons, b.keep, b.limit),
		}
		break
	}

	if c.Result == ResultMachine && r.VoicemailIndicators >= overrideIndicators {
		c.Confidence = math.Min(confidenceCeiling, c.Confidence+indicatorBoost)
	}
	return c
}

// joinReasons renders up to limit reasons accepted by keep, in insertion order.
// A nil keep accepts everything.
func joinReasons(reasons []Reason, keep func(Reason) bool, limit int) string {
	picked := make([]string, 0, limit)
	for _, r := range reasons {
		if len(picked) == limit {
			break
		}
		if keep == nil || keep(r) {
			picked = append(picked, r.String())
		}
	}
	return strings.Join(picked, "; ")
}
