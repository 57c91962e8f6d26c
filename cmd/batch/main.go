// Command batch classifies every call in an xlsx workbook and writes the
// results and summary to another workbook.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"amd-service-go/internal/amd"
	"amd-service-go/internal/batch"
	"amd-service-go/internal/config"
	"amd-service-go/internal/dataset"
	"amd-service-go/internal/logger"
	"amd-service-go/internal/metrics"
	"amd-service-go/internal/processor"
	"amd-service-go/internal/recording"
)

func main() {
	input := flag.String("input", "calls.xlsx", "workbook with one call per row")
	output := flag.String("output", "amd_results.xlsx", "workbook to write results to")
	concurrency := flag.Int("concurrency", 0, "parallel analyses (default BATCH_CONCURRENCY)")
	flag.Parse()

	log := logger.New()
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if *concurrency > 0 {
		cfg.BatchConcurrency = *concurrency
	}

	records, err := dataset.Load(*input)
	if err != nil {
		log.WithError(err).WithField("input", *input).Fatal("failed to load dataset")
	}
	log.WithField("records", len(records)).Info("dataset loaded")

	m := metrics.New(nil)
	proc := processor.New(processor.Options{
		Source: recording.NewFetcher(recording.Options{
			Credentials: recording.Credentials{Username: cfg.TwilioAccountSID, Password: cfg.TwilioAuthToken},
			Timeout:     cfg.FetchTimeout,
			MaxRetries:  cfg.FetchMaxRetries,
			MaxBytes:    cfg.MaxAudioBytes,
			TempDir:     cfg.TempDir,
			Log:         log.Entry,
		}),
		Detector:              amd.NewDetector(cfg.Params, log.Entry),
		Metrics:               m,
		Log:                   log,
		ModelLabel:            cfg.ModelLabel,
		CredentialsConfigured: cfg.CredentialsConfigured(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := batch.NewRunner(proc, cfg.BatchConcurrency, log, m).AllowLocalFiles().Run(ctx, records)
	if err != nil {
		log.WithError(err).Fatal("batch interrupted")
	}
	if err := dataset.WriteReport(*output, report.Results, report.Summary); err != nil {
		log.WithError(err).WithField("output", *output).Fatal("failed to write report")
	}

	log.WithFields(logrus.Fields{
		"job_id":       report.JobID,
		"output":       *output,
		"total_calls":  report.Summary.TotalCalls,
		"errors":       report.Summary.Errors,
		"by_result":    report.Summary.ByResult,
		"machine_rate": report.Summary.MachineRate,
	}).Info("batch complete")
}
