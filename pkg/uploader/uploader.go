package uploader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout bounds a single upload POST.
const DefaultTimeout = 10 * time.Second

// ErrEmptyURI indicates an upload without a destination, typically a
// device whose data URI channel returned nothing.
var ErrEmptyURI = errors.New("upload URI is empty")

// Stats counts upload outcomes across the uploader's lifetime.
type Stats struct {
	// ChunksUploaded is the number of chunks accepted by the server.
	ChunksUploaded uint64

	// BytesUploaded is the total payload bytes accepted.
	BytesUploaded uint64

	// UploadFailures is the number of Upload calls that returned an
	// error after exhausting retries.
	UploadFailures uint64

	// LastHTTPStatus is the status code of the most recent response,
	// zero before the first response arrives.
	LastHTTPStatus int
}

// Config customizes an Uploader.
type Config struct {
	// Timeout bounds each POST attempt. Defaults to DefaultTimeout.
	Timeout time.Duration

	// MaxRetries is the number of additional attempts after a
	// transport error or 5xx response. Zero disables retries; 4xx
	// responses are never retried.
	MaxRetries int

	// InitialBackoff and MaxBackoff shape the delay between retries.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Client overrides the HTTP client; Timeout is ignored when set.
	Client *http.Client
}

// Uploader posts chunks to the cloud. Safe for concurrent use.
type Uploader struct {
	client     *http.Client
	maxRetries int
	initial    time.Duration
	max        time.Duration

	mu    sync.Mutex
	stats Stats
}

// New creates an Uploader with default settings and no retries.
func New() *Uploader {
	return NewWithConfig(Config{})
}

// NewWithConfig creates an Uploader with the given configuration.
func NewWithConfig(cfg Config) *Uploader {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Uploader{
		client:     client,
		maxRetries: cfg.MaxRetries,
		initial:    cfg.InitialBackoff,
		max:        cfg.MaxBackoff,
	}
}

// Upload posts one chunk to uri. It matches session.UploadFunc.
func (u *Uploader) Upload(uri, authHeader string, chunk []byte) error {
	if uri == "" {
		u.recordFailure(0)
		return ErrEmptyURI
	}

	bo := newBackoff(u.initial, u.max)
	var lastErr error
	for attempt := 0; ; attempt++ {
		status, err := u.post(uri, authHeader, chunk)
		if err == nil {
			u.recordSuccess(status, len(chunk))
			return nil
		}
		lastErr = err

		if !retriable(status) || attempt >= u.maxRetries {
			u.recordFailure(status)
			return lastErr
		}
		time.Sleep(bo.next())
	}
}

// Stats returns a snapshot of the upload counters.
func (u *Uploader) Stats() Stats {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.stats
}

// post performs a single POST attempt and returns the HTTP status
// (zero on transport errors).
func (u *Uploader) post(uri, authHeader string, chunk []byte) (int, error) {
	req, err := http.NewRequest(http.MethodPost, uri, bytes.NewReader(chunk))
	if err != nil {
		return 0, fmt.Errorf("building upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	if name, value, ok := splitAuthHeader(authHeader); ok {
		req.Header.Set(name, value)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("posting chunk: %w", err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("chunk upload rejected: %s", resp.Status)
	}
	return resp.StatusCode, nil
}

func (u *Uploader) recordSuccess(status, bytes int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.stats.ChunksUploaded++
	u.stats.BytesUploaded += uint64(bytes)
	u.stats.LastHTTPStatus = status
}

func (u *Uploader) recordFailure(status int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.stats.UploadFailures++
	if status != 0 {
		u.stats.LastHTTPStatus = status
	}
}

// retriable reports whether an attempt with the given status is worth
// repeating: transport errors (status 0) and server-side failures are,
// client errors are not.
func retriable(status int) bool {
	return status == 0 || status >= 500
}

// splitAuthHeader splits "HeaderName:HeaderValue" on the first colon.
func splitAuthHeader(authHeader string) (name, value string, ok bool) {
	name, value, ok = strings.Cut(authHeader, ":")
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if !ok || name == "" {
		return "", "", false
	}
	return name, value, true
}
