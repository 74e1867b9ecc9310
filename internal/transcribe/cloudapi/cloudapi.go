// Package cloudapi implements a transcribe.Recognizer that posts audio to
// a cloud speech-recognition endpoint.
package cloudapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"subgen/internal/subgenerr"
	"subgen/internal/transcribe"
)

const defaultTimeout = 900 * time.Second

// Config carries the settings needed to reach the cloud recognizer.
type Config struct {
	Endpoint       string
	APIKey         string
	TimeoutSeconds int
}

// Adapter is a transcribe.Recognizer that uploads audio over HTTP.
type Adapter struct {
	cfg        Config
	httpClient *http.Client
}

// New returns an Adapter. cfg.Endpoint must be a valid http(s) URL.
func New(cfg Config) (*Adapter, error) {
	if err := validateURL(cfg.Endpoint); err != nil {
		return nil, err
	}
	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return &Adapter{cfg: cfg, httpClient: &http.Client{Timeout: timeout}}, nil
}

func (a *Adapter) Name() string { return "cloudapi" }

// Transcribe uploads audioPath as multipart form data and decodes the
// JSON response into a transcribe.Result.
func (a *Adapter) Transcribe(ctx context.Context, audioPath string, opts transcribe.Options) (transcribe.Result, error) {
	body, contentType, err := buildMultipartBody(audioPath, opts)
	if err != nil {
		return transcribe.Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint, body)
	if err != nil {
		return transcribe.Result{}, subgenerr.Wrap(subgenerr.ErrTranscriptionFailed, "", "transcribe", "build request", err)
	}
	req.Header.Set("Content-Type", contentType)
	if a.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return transcribe.Result{}, subgenerr.Wrap(subgenerr.ErrTranscriptionFailed, "", "transcribe", "http request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transcribe.Result{}, subgenerr.Wrap(subgenerr.ErrTranscriptionFailed, "", "transcribe", "read response body", err)
	}
	if resp.StatusCode != http.StatusOK {
		return transcribe.Result{}, subgenerr.Wrap(subgenerr.ErrTranscriptionFailed, "", "transcribe",
			fmt.Sprintf("http status %d: %s", resp.StatusCode, truncate(data, 500)), nil)
	}

	return transcribe.DecodeOutput(data)
}

func buildMultipartBody(audioPath string, opts transcribe.Options) (*bytes.Buffer, string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return nil, "", subgenerr.Wrap(subgenerr.ErrBadInput, "", "transcribe", "open audio file", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("audio", filepath.Base(audioPath))
	if err != nil {
		return nil, "", subgenerr.Wrap(subgenerr.ErrIO, "", "transcribe", "create form file", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", subgenerr.Wrap(subgenerr.ErrIO, "", "transcribe", "copy audio into request", err)
	}
	if opts.SourceLang != "" {
		w.WriteField("language", opts.SourceLang)
	}
	if opts.Model != "" {
		w.WriteField("model", opts.Model)
	}
	if err := w.Close(); err != nil {
		return nil, "", subgenerr.Wrap(subgenerr.ErrIO, "", "transcribe", "finalize multipart body", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return subgenerr.Wrap(subgenerr.ErrBadConfig, "", "configure cloud recognizer",
			fmt.Sprintf("%q is not a valid http(s) URL", raw), nil)
	}
	return nil
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}
