package processor

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"amd-service-go/internal/amd"
	"amd-service-go/internal/apperr"
	"amd-service-go/internal/audio"
	"amd-service-go/internal/logger"
	"amd-service-go/internal/metrics"
	"amd-service-go/internal/recording"
	"amd-service-go/internal/types"
)

// Source supplies recordings by URL.
type Source interface {
	Fetch(ctx context.Context, url string) (*recording.Spool, error)
}

// Options configure a Processor.
type Options struct {
	Source                Source
	Detector              *amd.Detector
	Metrics               *metrics.Metrics
	Log                   *logger.Logger
	ModelLabel            string
	CredentialsConfigured bool
}

// Processor runs the fetch, decode and detect steps for a single call.
type Processor struct {
	source     Source
	detector   *amd.Detector
	metrics    *metrics.Metrics
	log        *logger.Logger
	modelLabel string
	hasCreds   bool
}

func New(opts Options) *Processor {
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}
	det := opts.Detector
	if det == nil {
		det = amd.NewDetector(amd.DefaultParams(), log.Entry)
	}
	return &Processor{
		source:     opts.Source,
		detector:   det,
		metrics:    opts.Metrics,
		log:        log,
		modelLabel: opts.ModelLabel,
		hasCreds:   opts.CredentialsConfigured,
	}
}

// Result is the API response plus the detector's full breakdown.
type Result struct {
	types.AnalyzeResponse
	Analysis amd.Analysis `json:"-"`
}

// Analyze downloads req.AudioURL and classifies it. DetectionTime covers the
// whole request, download included.
func (p *Processor) Analyze(ctx context.Context, req types.AnalyzeRequest) (Result, error) {
	start := time.Now()
	log := p.log.WithCall(req.CallID)

	if strings.TrimSpace(req.CallID) == "" {
		return Result{}, p.fail(log, apperr.InvalidInput("analyze", "call_id is required"))
	}
	if strings.TrimSpace(req.AudioURL) == "" {
		return Result{}, p.fail(log, apperr.InvalidInput("analyze", "audio_url is required"))
	}
	if !p.hasCreds {
		return Result{}, p.fail(log, apperr.Configuration("analyze", "Twilio credentials not configured. Check .env file."))
	}
	if p.source == nil {
		return Result{}, p.fail(log, apperr.Configuration("analyze", "no recording source configured"))
	}

	log.Info("analyzing call")
	spool, err := p.source.Fetch(ctx, req.AudioURL)
	if err != nil {
		return Result{}, p.fail(log, err)
	}
	defer func() {
		if err := spool.Close(); err != nil {
			log.WithError(err).Warn("failed to remove recording spool")
		}
	}()
	if p.metrics != nil {
		p.metrics.ObserveDownload(spool.Size, time.Since(start))
	}

	res, err := p.analyzePath(spool.Path)
	if err != nil {
		return Result{}, p.fail(log, err)
	}
	return p.finish(log, res, start), nil
}

// AnalyzeFile classifies a recording already on disk.
func (p *Processor) AnalyzeFile(ctx context.Context, callID, path string) (Result, error) {
	start := time.Now()
	log := p.log.WithCall(callID)
	if strings.TrimSpace(path) == "" {
		return Result{}, p.fail(log, apperr.InvalidInput("analyze", "audio path is required"))
	}
	if err := ctx.Err(); err != nil {
		return Result{}, p.fail(log, apperr.Internal("analyze", err))
	}
	res, err := p.analyzePath(path)
	if err != nil {
		return Result{}, p.fail(log, err)
	}
	return p.finish(log, res, start), nil
}

func (p *Processor) analyzePath(path string) (a amd.Analysis, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperr.Internal("analyze", fmt.Errorf("panic: %v\n%s", r, debug.Stack()))
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return amd.Analysis{}, apperr.Internal("analyze", err)
	}
	defer f.Close()

	buf, err := audio.Decode(f)
	if err != nil {
		return amd.Analysis{}, err
	}
	return p.detector.Detect(buf), nil
}

func (p *Processor) finish(log *logrus.Entry, a amd.Analysis, start time.Time) Result {
	took := time.Since(start)
	res := Result{
		AnalyzeResponse: types.AnalyzeResponse{
			Result:        string(a.Result),
			Confidence:    a.Confidence,
			Reasoning:     a.Reasoning,
			DetectionTime: took.Milliseconds(),
			ModelUsed:     p.modelLabel,
		},
		Analysis: a,
	}
	if p.metrics != nil {
		p.metrics.ObserveAnalysis(res.Result, res.Confidence, len(a.Segments), a.Score.VoicemailIndicators, took)
	}
	log.WithFields(logrus.Fields{
		"result":       res.Result,
		"confidence":   res.Confidence,
		"score":        a.Score.Score,
		"duration_s":   a.TotalDuration,
		"detection_ms": res.DetectionTime,
	}).Info("analysis complete")
	return res
}

// fail logs err with full detail and counts it by kind.
func (p *Processor) fail(log *logrus.Entry, err error) error {
	kind := apperr.KindOf(err)
	if p.metrics != nil {
		p.metrics.ObserveError(string(kind))
	}
	entry := log.WithField("kind", kind).WithError(err)
	if apperr.HTTPStatus(kind) >= 500 {
		entry.Error("analysis failed")
	} else {
		entry.Warn("analysis rejected")
	}
	return err
}
