// Package config reads service settings from the environment and the
// optional heuristic tuning file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"amd-service-go/internal/amd"
)

const (
	DefaultPort             = "8080"
	DefaultFetchTimeout     = 30 * time.Second
	DefaultFetchMaxRetries  = 0
	DefaultMaxAudioBytes    = 25 << 20
	DefaultBatchConcurrency = 4
	DefaultModelLabel       = "energy-segmentation-v2-voicemail-enhanced"
	ServiceName             = "amd-service-go"
	Version                 = "2.0.0"
)

// Config holds everything the service reads at startup.
type Config struct {
	Port             string
	Environment      string
	TwilioAccountSID string
	TwilioAuthToken  string
	FetchTimeout     time.Duration
	FetchMaxRetries  int
	MaxAudioBytes    int64
	TempDir          string
	TuningFile       string
	BatchConcurrency int
	ModelLabel       string
	Params           amd.Params
}

// Load reads .env (when present) and the process environment. The tuning
// file, when configured, overrides the detection defaults.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:             envOr("PORT", DefaultPort),
		Environment:      envOr("ENVIRONMENT", "local"),
		TwilioAccountSID: strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID")),
		TwilioAuthToken:  strings.TrimSpace(os.Getenv("TWILIO_AUTH_TOKEN")),
		TempDir:          envOr("TEMP_DIR", os.TempDir()),
		TuningFile:       os.Getenv("AMD_TUNING_FILE"),
		ModelLabel:       envOr("MODEL_LABEL", DefaultModelLabel),
		Params:           amd.DefaultParams(),
	}

	var err error
	if cfg.FetchTimeout, err = envDuration("FETCH_TIMEOUT", DefaultFetchTimeout); err != nil {
		return Config{}, err
	}
	if cfg.FetchMaxRetries, err = envInt("FETCH_MAX_RETRIES", DefaultFetchMaxRetries); err != nil {
		return Config{}, err
	}
	maxBytes, err := envInt("MAX_AUDIO_BYTES", DefaultMaxAudioBytes)
	if err != nil {
		return Config{}, err
	}
	cfg.MaxAudioBytes = int64(maxBytes)
	if cfg.BatchConcurrency, err = envInt("BATCH_CONCURRENCY", DefaultBatchConcurrency); err != nil {
		return Config{}, err
	}

	if cfg.TuningFile != "" {
		if cfg.Params, err = LoadTuning(cfg.TuningFile, cfg.Params); err != nil {
			return Config{}, err
		}
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the service cannot run with. Missing Twilio
// credentials are allowed here; see CredentialsConfigured.
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive, got %s", c.FetchTimeout)
	}
	if c.FetchMaxRetries < 0 {
		return fmt.Errorf("FETCH_MAX_RETRIES cannot be negative, got %d", c.FetchMaxRetries)
	}
	if c.MaxAudioBytes <= 0 {
		return fmt.Errorf("MAX_AUDIO_BYTES must be positive, got %d", c.MaxAudioBytes)
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("BATCH_CONCURRENCY must be at least 1, got %d", c.BatchConcurrency)
	}
	if err := c.Params.Validate(); err != nil {
		return fmt.Errorf("detection params: %w", err)
	}
	return nil
}

// CredentialsConfigured reports whether recordings can be downloaded.
func (c Config) CredentialsConfigured() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != ""
}

// LoadTuning overlays the YAML file at path onto base. Keys missing from the
// file keep their base value.
func LoadTuning(path string, base amd.Params) (amd.Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return amd.Params{}, fmt.Errorf("read tuning file: %w", err)
	}
	p := base
	if err := yaml.Unmarshal(b, &p); err != nil {
		return amd.Params{}, fmt.Errorf("parse tuning file %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return amd.Params{}, fmt.Errorf("tuning file %s: %w", path, err)
	}
	return p, nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) (int, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return n, nil
}

// envDuration accepts Go durations ("45s") or a bare number of seconds.
func envDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}
