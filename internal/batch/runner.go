// Package batch analyses lists of calls with bounded concurrency.
package batch

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"amd-service-go/internal/actionable"
	"amd-service-go/internal/aggregator"
	"amd-service-go/internal/apperr"
	"amd-service-go/internal/logger"
	"amd-service-go/internal/metrics"
	"amd-service-go/internal/processor"
	"amd-service-go/internal/types"
)

// Analyzer classifies remote or local recordings.
type Analyzer interface {
	Analyze(ctx context.Context, req types.AnalyzeRequest) (processor.Result, error)
	AnalyzeFile(ctx context.Context, callID, path string) (processor.Result, error)
}

type Runner struct {
	analyzer    Analyzer
	concurrency int
	log         *logger.Logger
	metrics     *metrics.Metrics
	allowLocal  bool
}

func NewRunner(a Analyzer, concurrency int, log *logger.Logger, m *metrics.Metrics) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Runner{analyzer: a, concurrency: concurrency, log: log, metrics: m}
}

// AllowLocalFiles lets records name recordings on local disk. Only trusted
// callers such as the batch CLI should enable it.
func (r *Runner) AllowLocalFiles() *Runner {
	r.allowLocal = true
	return r
}

// Report is the outcome of one batch run.
type Report struct {
	JobID   string             `json:"job_id"`
	Results []types.CallResult `json:"results"`
	Summary aggregator.Summary `json:"summary"`
}

// Run analyses every record. A failed record is reported in its result and
// never stops the batch; Run only fails when ctx is cancelled. Results keep
// the order of records.
func (r *Runner) Run(ctx context.Context, records []types.CallRecord) (Report, error) {
	jobID := uuid.New().String()
	log := r.log.WithField("job_id", jobID)
	log.WithField("records", len(records)).Info("batch started")
	start := time.Now()

	results := make([]types.CallResult, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, rec := range records {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = r.analyze(gctx, rec)
			if r.metrics != nil {
				r.metrics.BatchRecords.Inc()
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		log.WithError(err).Warn("batch cancelled")
		return Report{}, err
	}

	summary := aggregator.Aggregate(results)
	log.WithFields(logrus.Fields{
		"duration_ms":  time.Since(start).Milliseconds(),
		"errors":       summary.Errors,
		"machine_rate": summary.MachineRate,
	}).Info("batch finished")
	return Report{JobID: jobID, Results: results, Summary: summary}, nil
}

func (r *Runner) analyze(ctx context.Context, rec types.CallRecord) types.CallResult {
	start := time.Now()
	out := types.CallResult{CallRecord: rec}

	var (
		res processor.Result
		err error
	)
	switch {
	case IsRemote(rec.AudioURL):
		res, err = r.analyzer.Analyze(ctx, types.AnalyzeRequest{CallID: rec.CallID, AudioURL: rec.AudioURL})
	case r.allowLocal:
		res, err = r.analyzer.AnalyzeFile(ctx, rec.CallID, rec.AudioURL)
	default:
		err = apperr.InvalidInput("batch", "audio_url must be an http(s) URL")
	}
	out.DurationMs = time.Since(start).Milliseconds()
	if err != nil {
		out.Error = apperr.PublicMessage(err)
		out.ErrorKind = string(apperr.KindOf(err))
	} else {
		out.AnalyzeResponse = res.AnalyzeResponse
	}
	out.Action = string(actionable.Decide(out).Action)
	return out
}

// IsRemote reports whether u is an http(s) URL.
func IsRemote(u string) bool {
	l := strings.ToLower(u)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}
