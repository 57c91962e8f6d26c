package amd

import (
	"time"

	"github.com/sirupsen/logrus"

	"amd-service-go/internal/audio"
)

// Analysis is a Classification together with everything that produced it.
// Window, Features and Score are zero when the pipeline short-circuited.
type Analysis struct {
	Classification
	TotalDuration float64      `json:"total_duration"`
	Segments      []Segment    `json:"segments"`
	Window        AnswerWindow `json:"window"`
	Features      FeatureSet   `json:"features"`
	Score         ScoreResult  `json:"score"`
}

// Detector runs the detection pipeline with a fixed set of parameters.
type Detector struct {
	params Params
	log    logrus.FieldLogger
}

// NewDetector returns a Detector. A nil log discards the debug breakdown.
func NewDetector(p Params, log logrus.FieldLogger) *Detector {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Detector{params: p, log: log}
}

// Params returns the parameters the detector was built with.
func (d *Detector) Params() Params { return d.params }

// Detect classifies buf. It never fails: an absence of speech is reported
// as an unknown result.
func (d *Detector) Detect(buf audio.SampleBuffer) Analysis {
	start := time.Now()
	a := d.detect(buf)
	a.DetectionTimeMs = time.Since(start).Milliseconds()
	return a
}

func (d *Detector) detect(buf audio.SampleBuffer) Analysis {
	total := buf.Duration()
	a := Analysis{TotalDuration: total}

	a.Segments = SegmentSpeech(buf, d.params)
	if len(a.Segments) == 0 {
		d.log.WithField("total_duration", total).Debug("no speech segments found")
		a.Classification = NoSpeech()
		return a
	}

	window, ok := SelectAnswerWindow(a.Segments, total, d.params)
	if !ok {
		d.log.WithFields(logrus.Fields{
			"total_duration": total,
			"segments":       len(a.Segments),
		}).Debug("no speech in answer window")
		a.Classification = NoAnswerSpeech()
		return a
	}
	a.Window = window
	a.Features = ExtractFeatures(window)
	a.Score = Score(a.Features)
	a.Classification = Classify(a.Score)

	d.log.WithFields(logrus.Fields{
		"candidates":           a.Features.SegmentCount,
		"total_speech":         a.Features.TotalSpeechDuration,
		"speech_ratio":         a.Features.SpeechRatio,
		"max_segment":          a.Features.MaxSegmentDuration,
		"avg_gap":              a.Features.AvgGap,
		"avg_energy":           a.Features.AvgEnergy,
		"score":                a.Score.Score,
		"voicemail_indicators": a.Score.VoicemailIndicators,
		"reasons":              a.Score.ReasonStrings(),
		"result":               a.Result,
		"confidence":           a.Confidence,
	}).Debug("detection breakdown")
	return a
}
