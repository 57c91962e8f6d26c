package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"amd-service-go/internal/amd"
	"amd-service-go/internal/batch"
	"amd-service-go/internal/config"
	"amd-service-go/internal/logger"
	"amd-service-go/internal/metrics"
	"amd-service-go/internal/processor"
	"amd-service-go/internal/recording"
	"amd-service-go/internal/server"
)

func main() {
	log := logger.New()
	log.WithField("service", config.ServiceName).Info("starting service")

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if !cfg.CredentialsConfigured() {
		log.Warn("TWILIO_ACCOUNT_SID / TWILIO_AUTH_TOKEN not set, /analyze will reject requests")
	}
	if cfg.TuningFile != "" {
		log.WithField("tuning_file", cfg.TuningFile).Info("detection tuning loaded")
	}

	m := metrics.New(nil)
	fetcher := recording.NewFetcher(recording.Options{
		Credentials: recording.Credentials{Username: cfg.TwilioAccountSID, Password: cfg.TwilioAuthToken},
		Timeout:     cfg.FetchTimeout,
		MaxRetries:  cfg.FetchMaxRetries,
		MaxBytes:    cfg.MaxAudioBytes,
		TempDir:     cfg.TempDir,
		Log:         log.Entry,
	})
	proc := processor.New(processor.Options{
		Source:                fetcher,
		Detector:              amd.NewDetector(cfg.Params, log.Entry),
		Metrics:               m,
		Log:                   log,
		ModelLabel:            cfg.ModelLabel,
		CredentialsConfigured: cfg.CredentialsConfigured(),
	})
	srv := server.New(server.Options{
		Analyzer: proc,
		Batch:    batch.NewRunner(proc, cfg.BatchConcurrency, log, m),
		Log:      log,
		Metrics:  m,
		Info: server.Info{
			Service:               config.ServiceName,
			Version:               config.Version,
			CredentialsConfigured: cfg.CredentialsConfigured(),
		},
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.WithField("addr", addr).Info("listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server terminated")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
