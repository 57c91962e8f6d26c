// Package server exposes the detection service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"amd-service-go/internal/apperr"
	"amd-service-go/internal/batch"
	"amd-service-go/internal/logger"
	"amd-service-go/internal/metrics"
	"amd-service-go/internal/processor"
	"amd-service-go/internal/types"
)

const (
	maxBodyBytes    = 1 << 20
	maxBatchRecords = 500
)

// Analyzer classifies one call recording.
type Analyzer interface {
	Analyze(ctx context.Context, req types.AnalyzeRequest) (processor.Result, error)
}

// BatchRunner analyses many calls.
type BatchRunner interface {
	Run(ctx context.Context, records []types.CallRecord) (batch.Report, error)
}

// Info describes the service on / and the health endpoints.
type Info struct {
	Service               string
	Version               string
	CredentialsConfigured bool
}

type Options struct {
	Analyzer Analyzer
	Batch    BatchRunner
	Log      *logger.Logger
	Metrics  *metrics.Metrics
	// Gatherer backs /metrics. Nil uses the default registry.
	Gatherer prometheus.Gatherer
	Info     Info
}

type Server struct {
	analyzer  Analyzer
	batch     BatchRunner
	log       *logger.Logger
	metrics   *metrics.Metrics
	gatherer  prometheus.Gatherer
	info      Info
	startTime time.Time
}

func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}
	return &Server{
		analyzer:  opts.Analyzer,
		batch:     opts.Batch,
		log:       log,
		metrics:   opts.Metrics,
		gatherer:  opts.Gatherer,
		info:      opts.Info,
		startTime: time.Now(),
	}
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.withMetrics("/", s.handleRoot))
	mux.HandleFunc("GET /healthz", s.withMetrics("/healthz", s.handleHealth))
	mux.HandleFunc("GET /readyz", s.withMetrics("/readyz", s.handleReady))
	mux.HandleFunc("POST /analyze", s.withMetrics("/analyze", s.handleAnalyze))
	mux.HandleFunc("POST /webhooks/twilio/recording", s.withMetrics("/webhooks/twilio/recording", s.handleRecordingWebhook))
	mux.HandleFunc("POST /batch", s.withMetrics("/batch", s.handleBatch))

	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	} else {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
	return mux
}

// withMetrics logs and counts every request to endpoint.
func (s *Server) withMetrics(endpoint string, handler func(http.ResponseWriter, *http.Request, *logrus.Entry)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqLog := s.log.WithRequest(r)
		ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		handler(ww, r, reqLog)

		duration := time.Since(start)
		if s.metrics != nil {
			s.metrics.HTTPRequests.WithLabelValues(r.Method, endpoint, strconv.Itoa(ww.statusCode)).Inc()
			s.metrics.HTTPRequestDuration.WithLabelValues(r.Method, endpoint).Observe(duration.Seconds())
		}
		entry := reqLog.WithFields(logrus.Fields{"status": ww.statusCode, "duration_ms": duration.Milliseconds()})
		if endpoint == "/healthz" || endpoint == "/readyz" {
			entry.Debug("request served")
		} else {
			entry.Info("request served")
		}
	}
}

// responseWriter records the status written by the handler.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request, _ *logrus.Entry) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":           s.info.Service,
		"version":           s.info.Version,
		"status":            "running",
		"uptime":            time.Since(s.startTime).Round(time.Second).String(),
		"features":          []string{"voicemail-detection", "human-detection", "silence-detection"},
		"twilio_configured": s.info.CredentialsConfigured,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ *logrus.Entry) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "healthy",
		"twilio_auth": s.info.CredentialsConfigured,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request, _ *logrus.Entry) {
	if !s.info.CredentialsConfigured {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"reason": "Twilio credentials not configured",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request, reqLog *logrus.Entry) {
	req, err := decodeAnalyzeRequest(r)
	if err != nil {
		reqLog.WithError(err).Warn("invalid analyze request")
		writeError(w, err)
		return
	}
	reqLog = reqLog.WithField("call_id", req.CallID)
	reqLog.Info("analyze request received")

	res, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		reqLog.WithError(err).Warn("analysis returned error")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res.AnalyzeResponse)
}

func decodeAnalyzeRequest(r *http.Request) (types.AnalyzeRequest, error) {
	var req types.AnalyzeRequest
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "application/x-www-form-urlencoded", "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			return req, apperr.InvalidInput("analyze", "invalid form body")
		}
		req.AudioURL = r.FormValue("audio_url")
		req.CallID = r.FormValue("call_id")
	default:
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
		if err := dec.Decode(&req); err != nil {
			return req, apperr.InvalidInput("analyze", "request body must be JSON with audio_url and call_id")
		}
	}
	req.AudioURL = strings.TrimSpace(req.AudioURL)
	req.CallID = strings.TrimSpace(req.CallID)
	if req.AudioURL == "" {
		return req, apperr.InvalidInput("analyze", "audio_url is required")
	}
	if req.CallID == "" {
		return req, apperr.InvalidInput("analyze", "call_id is required")
	}
	return req, nil
}

// handleRecordingWebhook analyses a recording as soon as Twilio reports it
// complete. Twilio retries non-2xx responses, so every outcome is acknowledged
// with 200.
func (s *Server) handleRecordingWebhook(w http.ResponseWriter, r *http.Request, reqLog *logrus.Entry) {
	callID := r.URL.Query().Get("callId")
	if callID == "" {
		reqLog.Warn("recording webhook without callId")
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "skipped": true})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		reqLog.WithError(err).Warn("invalid webhook form")
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "invalid form body"})
		return
	}

	reqLog = reqLog.WithFields(logrus.Fields{
		"call_id":            callID,
		"recording_sid":      r.PostFormValue("RecordingSid"),
		"recording_status":   r.PostFormValue("RecordingStatus"),
		"recording_duration": r.PostFormValue("RecordingDuration"),
	})
	if status := r.PostFormValue("RecordingStatus"); status != "completed" {
		reqLog.Info("recording not completed yet, skipping")
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "skipped": true})
		return
	}

	res, err := s.analyzer.Analyze(r.Context(), types.AnalyzeRequest{
		CallID:   callID,
		AudioURL: r.PostFormValue("RecordingUrl"),
	})
	if err != nil {
		reqLog.WithError(err).Warn("webhook analysis failed")
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"call_id":    callID,
			"result":     "unknown",
			"confidence": 0.5,
			"error":      apperr.PublicMessage(err),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"call_id":        callID,
		"result":         res.Result,
		"confidence":     res.Confidence,
		"reasoning":      res.Reasoning,
		"detection_time": res.DetectionTime,
		"model_used":     res.ModelUsed,
	})
}

type batchRequest struct {
	Records []types.CallRecord `json:"records"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request, reqLog *logrus.Entry) {
	if s.batch == nil {
		writeError(w, apperr.Configuration("batch", "batch analysis is not enabled"))
		return
	}
	var body batchRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, apperr.InvalidInput("batch", "request body must be JSON with a records array"))
		return
	}
	if len(body.Records) == 0 {
		writeError(w, apperr.InvalidInput("batch", "records must not be empty"))
		return
	}
	if len(body.Records) > maxBatchRecords {
		writeError(w, apperr.InvalidInput("batch", fmt.Sprintf("at most %d records per batch", maxBatchRecords)))
		return
	}
	for i, rec := range body.Records {
		u := strings.TrimSpace(rec.AudioURL)
		if u == "" {
			writeError(w, apperr.InvalidInput("batch", fmt.Sprintf("records[%d].audio_url is required", i)))
			return
		}
		if !batch.IsRemote(u) {
			writeError(w, apperr.InvalidInput("batch", fmt.Sprintf("records[%d].audio_url must be an http(s) URL", i)))
			return
		}
		body.Records[i].AudioURL = u
	}

	reqLog.WithField("records", len(body.Records)).Info("batch request received")
	report, err := s.batch.Run(r.Context(), body.Records)
	if err != nil {
		reqLog.WithError(err).Warn("batch aborted")
		writeError(w, apperr.Internal("batch", err))
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, apperr.HTTPStatus(apperr.KindOf(err)), types.ErrorResponse{Detail: apperr.PublicMessage(err)})
}
