package amd

import "fmt"

// Default heuristic constants. They were tuned empirically against recorded
// carrier calls and should only be changed together with the scoring rules.
const (
	DefaultSilenceThresholdDB   = 30.0
	DefaultFrameLength          = 2048
	DefaultHopLength            = 512
	DefaultAnswerStartSec       = 5.0
	DefaultTrailingExclusionSec = 8.0
	DefaultMinSegmentEnergy     = 0.015
)

// Params are the segmentation and answer-window constants.
type Params struct {
	// SilenceThresholdDB is how far below the loudest frame a frame may fall
	// and still count as speech.
	SilenceThresholdDB float64 `yaml:"silence_threshold_db"`
	FrameLength        int     `yaml:"frame_length"`
	HopLength          int     `yaml:"hop_length"`

	// AnswerStartSec skips the carrier/trial message at the start of the recording.
	AnswerStartSec float64 `yaml:"answer_start_sec"`
	// TrailingExclusionSec skips our own greeting played at the end of the recording.
	TrailingExclusionSec float64 `yaml:"trailing_exclusion_sec"`
	// MinSegmentEnergy is the RMS floor below which a segment is treated as line noise.
	MinSegmentEnergy float64 `yaml:"min_segment_energy"`
}

// DefaultParams returns the tuned defaults.
func DefaultParams() Params {
	return Params{
		SilenceThresholdDB:   DefaultSilenceThresholdDB,
		FrameLength:          DefaultFrameLength,
		HopLength:            DefaultHopLength,
		AnswerStartSec:       DefaultAnswerStartSec,
		TrailingExclusionSec: DefaultTrailingExclusionSec,
		MinSegmentEnergy:     DefaultMinSegmentEnergy,
	}
}

// Validate rejects values the pipeline cannot work with.
func (p Params) Validate() error {
	if p.SilenceThresholdDB <= 0 {
		return fmt.Errorf("silence_threshold_db must be positive, got %f", p.SilenceThresholdDB)
	}
	if p.FrameLength < 2 {
		return fmt.Errorf("frame_length must be at least 2 samples, got %d", p.FrameLength)
	}
	if p.HopLength < 1 || p.HopLength > p.FrameLength {
		return fmt.Errorf("hop_length must be between 1 and frame_length (%d), got %d", p.FrameLength, p.HopLength)
	}
	if p.AnswerStartSec < 0 {
		return fmt.Errorf("answer_start_sec cannot be negative, got %f", p.AnswerStartSec)
	}
	if p.TrailingExclusionSec < 0 {
		return fmt.Errorf("trailing_exclusion_sec cannot be negative, got %f", p.TrailingExclusionSec)
	}
	if p.MinSegmentEnergy < 0 || p.MinSegmentEnergy >= 1 {
		return fmt.Errorf("min_segment_energy must be in [0, 1), got %f", p.MinSegmentEnergy)
	}
	return nil
}
