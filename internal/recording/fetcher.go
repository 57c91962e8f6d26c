// Package recording downloads call recordings to local temporary files.
package recording

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"amd-service-go/internal/apperr"
)

var errTooLarge = errors.New("recording exceeds size limit")

// Credentials authenticate against the recording host with HTTP basic auth.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) Configured() bool { return c.Username != "" && c.Password != "" }

// Options configure a Fetcher.
type Options struct {
	Credentials Credentials
	Timeout     time.Duration
	// MaxRetries bounds retries of transport failures. HTTP error statuses
	// are never retried.
	MaxRetries int
	MaxBytes   int64
	TempDir    string
	Client     *http.Client
	Log        logrus.FieldLogger
}

// Fetcher downloads recordings.
type Fetcher struct {
	opts   Options
	client *http.Client
	log    logrus.FieldLogger
}

func NewFetcher(opts Options) *Fetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Fetcher{opts: opts, client: client, log: log}
}

// Spool is a downloaded recording on disk.
type Spool struct {
	Path        string
	ContentType string
	Size        int64

	once sync.Once
	err  error
}

// Open opens the spooled file for reading.
func (s *Spool) Open() (*os.File, error) { return os.Open(s.Path) }

// Close removes the file. It is safe to call more than once.
func (s *Spool) Close() error {
	s.once.Do(func() {
		if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.err = err
		}
	})
	return s.err
}

// Fetch downloads rawURL into a temporary file. The caller must Close the
// returned Spool.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Spool, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperr.InvalidInput("fetch", "audio_url must be an absolute http(s) URL")
	}

	log := f.log.WithField("audio_url", redact(u))
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(f.opts.MaxRetries)), ctx)

	var spool *Spool
	attempt := 0
	op := func() error {
		attempt++
		s, err := f.download(ctx, u.String())
		if err != nil {
			log.WithField("attempt", attempt).WithError(err).Warn("recording download failed")
			return err
		}
		spool = s
		return nil
	}
	if err := backoff.Retry(op, bo); err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) {
			return nil, ae
		}
		return nil, apperr.Retrieval("fetch", fmt.Sprintf("Failed to download audio: %v", err), err)
	}
	log.WithFields(logrus.Fields{"bytes": spool.Size, "content_type": spool.ContentType}).Debug("recording downloaded")
	return spool, nil
}

func (f *Fetcher) download(ctx context.Context, target string) (*Spool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, backoff.Permanent(apperr.InvalidInput("fetch", "invalid audio_url"))
	}
	if f.opts.Credentials.Configured() {
		req.SetBasicAuth(f.opts.Credentials.Username, f.opts.Credentials.Password)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, backoff.Permanent(apperr.Retrieval("fetch",
			fmt.Sprintf("Failed to download audio: HTTP %d", resp.StatusCode), nil))
	}
	if f.opts.MaxBytes > 0 && resp.ContentLength > f.opts.MaxBytes {
		return nil, backoff.Permanent(apperr.Retrieval("fetch", "Failed to download audio: recording too large", errTooLarge))
	}

	contentType := resp.Header.Get("Content-Type")
	tmp, err := os.CreateTemp(f.opts.TempDir, "amd-*"+extension(contentType, target))
	if err != nil {
		return nil, backoff.Permanent(apperr.Internal("fetch", err))
	}
	spool := &Spool{Path: tmp.Name(), ContentType: contentType}

	body := io.Reader(resp.Body)
	if f.opts.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, f.opts.MaxBytes+1)
	}
	n, copyErr := io.Copy(tmp, body)
	closeErr := tmp.Close()
	spool.Size = n
	switch {
	case copyErr != nil:
		_ = spool.Close()
		return nil, copyErr
	case closeErr != nil:
		_ = spool.Close()
		return nil, backoff.Permanent(apperr.Internal("fetch", closeErr))
	case f.opts.MaxBytes > 0 && n > f.opts.MaxBytes:
		_ = spool.Close()
		return nil, backoff.Permanent(apperr.Retrieval("fetch", "Failed to download audio: recording too large", errTooLarge))
	}
	return spool, nil
}

// extension picks a file suffix from the content type, then the URL path.
// Twilio serves WAV for recording URLs without a suffix.
func extension(contentType, target string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mt {
		case "audio/mpeg", "audio/mp3":
			return ".mp3"
		case "audio/wav", "audio/x-wav", "audio/wave":
			return ".wav"
		}
	}
	if u, err := url.Parse(target); err == nil {
		switch strings.ToLower(path.Ext(u.Path)) {
		case ".mp3":
			return ".mp3"
		case ".wav":
			return ".wav"
		}
	}
	return ".wav"
}

// redact drops userinfo and query strings before a URL is logged.
func redact(u *url.URL) string {
	c := *u
	c.User = nil
	c.RawQuery = ""
	return c.String()
}
