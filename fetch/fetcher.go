// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package fetch retrieves the raw bytes of an uploaded document from its
// storage location over HTTP. It performs a single attempt per call; the
// ingestion pipeline owns the failure policy, so the fetcher never retries
// internally.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds one fetch attempt end to end.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBytes caps the document size, matching the 4 MB upload
	// limit enforced by the upload transport.
	DefaultMaxBytes = 4 << 20
)

// Fetcher retrieves document bytes from a source URL.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
	logger   *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher) error

// WithTimeout sets the per-request timeout. Default is DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) error {
		if timeout <= 0 {
			return fmt.Errorf("fetch: timeout must be positive, got %s", timeout)
		}
		f.client.Timeout = timeout
		return nil
	}
}

// WithMaxBytes sets the document size cap. Default is DefaultMaxBytes.
func WithMaxBytes(maxBytes int64) Option {
	return func(f *Fetcher) error {
		if maxBytes <= 0 {
			return fmt.Errorf("fetch: max bytes must be positive, got %d", maxBytes)
		}
		f.maxBytes = maxBytes
		return nil
	}
}

// WithHTTPClient replaces the underlying HTTP client. The client's own
// timeout wins over WithTimeout when both are set.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) error {
		if client == nil {
			return fmt.Errorf("fetch: http client cannot be nil")
		}
		f.client = client
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// NewFetcher creates a new Fetcher.
func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		client:   &http.Client{Timeout: DefaultTimeout},
		maxBytes: DefaultMaxBytes,
		logger:   slog.Default().With("component", "fetcher"),
	}

	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Fetch retrieves the document at the given URL and returns its raw bytes.
// Network failures, non-2xx responses, empty bodies and oversized bodies
// are all errors.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, ErrEmptyURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}

	f.logger.Debug("fetching document", "url", url)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching %s: %w: %s", url, ErrUnexpectedStatus, resp.Status)
	}

	// Read one byte past the cap so "exactly at the limit" and "over the
	// limit" are distinguishable.
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", url, err)
	}

	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("fetching %s: %w (limit %d bytes)", url, ErrDocumentTooLarge, f.maxBytes)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("fetching %s: %w", url, ErrEmptyDocument)
	}

	f.logger.Debug("fetched document", "url", url, "bytes", len(data))
	return data, nil
}
