/*
Copyright 2025 Akamai Technologies, Inc.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package pipelines

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
	"github.com/pkg/errors"
	ctrl "sigs.k8s.io/controller-runtime"
)

const (
	defaultMaxSize   = 32 * 1024 * 1024
	defaultChunkSize = 8192
	defaultTimeout   = 30 * time.Second

	defaultMaxConnections        = 10
	defaultMaxConnectionsPerHost = 5

	// fallbackFileName is used when the server does not name the package.
	fallbackFileName = "pipeline.yaml"
)

// SizeExceededError reports a response larger than the configured limit.
type SizeExceededError struct {
	Size  int64
	Limit int64
}

func (e *SizeExceededError) Error() string {
	return fmt.Sprintf("file size %d exceeds limit (%d)", e.Size, e.Limit)
}

// UnexpectedResponseError reports a successful response with a status code
// the downloader cannot handle.
type UnexpectedResponseError struct {
	Status int
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("unexpected status code %d returned in response", e.Status)
}

// HTTPError reports a 4xx or 5xx response.
type HTTPError struct {
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// DownloadConfig tunes the downloader. Zero values fall back to the
// defaults above.
type DownloadConfig struct {
	// LocalPath is the root under which per-source directories are created.
	LocalPath string

	MaxSize   int64
	ChunkSize int
	Timeout   time.Duration

	MaxConnections        int
	MaxConnectionsPerHost int
}

func (c DownloadConfig) withDefaults() DownloadConfig {
	if c.MaxSize == 0 {
		c.MaxSize = defaultMaxSize
	}

	if c.ChunkSize == 0 {
		c.ChunkSize = defaultChunkSize
	}

	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}

	if c.MaxConnections == 0 {
		c.MaxConnections = defaultMaxConnections
	}

	if c.MaxConnectionsPerHost == 0 {
		c.MaxConnectionsPerHost = defaultMaxConnectionsPerHost
	}

	return c
}

// Downloader fetches pipeline packages from configured sources, performing
// conditional requests and enforcing size limits. It is a scoped resource:
// the HTTP session lives from NewDownloader until Close.
type Downloader struct {
	config DownloadConfig
	client *http.Client
}

// NewDownloader acquires the HTTP session for the given configuration.
func NewDownloader(config DownloadConfig) *Downloader {
	config = config.withDefaults()

	transport := cleanhttp.DefaultPooledTransport()
	transport.MaxIdleConns = config.MaxConnections
	transport.MaxConnsPerHost = config.MaxConnectionsPerHost
	transport.MaxIdleConnsPerHost = config.MaxConnectionsPerHost

	return &Downloader{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
	}
}

// Close releases the HTTP session.
func (d *Downloader) Close() {
	d.client.CloseIdleConnections()
}

// Fetch performs a conditional GET of the source. etag and lastModified may
// come from a previous response; a 304 yields (false, nil, nil). On a 200
// the body is streamed into the source's directory (zip archives are
// extracted) and the produced file paths are returned.
func (d *Downloader) Fetch(ctx context.Context, name string, source SourceConfig, etag, lastModified string) (bool, *FileResponse, error) {
	log := ctrl.LoggerFrom(ctx).WithName("pipeline-downloader")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source.URL, nil)
	if err != nil {
		return false, nil, errors.Wrapf(err, "invalid source url %q", source.URL)
	}

	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	if lastModified != "" {
		req.Header.Set("If-Modified-Since", lastModified)
	}

	switch source.AuthType {
	case SourceAuthBasic:
		// The token is stored pre-encoded.
		req.Header.Set("Authorization", "Basic "+source.AuthToken)
	case SourceAuthBearer:
		req.Header.Set("Authorization", "Bearer "+source.AuthToken)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return false, nil, errors.Wrapf(err, "request to %q failed", source.URL)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		log.V(1).Info("File unchanged", "url", source.URL)
		return false, nil, nil
	case resp.StatusCode >= 400:
		return false, nil, &HTTPError{Status: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return false, nil, &UnexpectedResponseError{Status: resp.StatusCode}
	}

	log.Info("Reading file", "url", source.URL)

	dir := filepath.Join(d.config.LocalPath, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, nil, errors.Wrapf(err, "cannot create directory for source %q", name)
	}

	response, err := d.processResponse(resp, dir)
	if err != nil {
		return false, nil, err
	}

	return true, response, nil
}

func (d *Downloader) processResponse(resp *http.Response, dir string) (*FileResponse, error) {
	if err := d.verifyContentLength(resp); err != nil {
		return nil, err
	}

	var paths []string

	if isZipContent(resp.Header.Get("Content-Type")) {
		tmp, err := os.CreateTemp("", "pipeline-*.zip")
		if err != nil {
			return nil, errors.Wrap(err, "cannot create archive spool file")
		}

		defer os.Remove(tmp.Name())
		defer tmp.Close()

		if err := d.streamBody(resp.Body, tmp); err != nil {
			return nil, err
		}

		if paths, err = extractFiles(dir, tmp.Name()); err != nil {
			return nil, err
		}
	} else {
		target := filepath.Join(dir, packageFileName(resp.Header.Get("Content-Disposition")))

		file, err := os.Create(target)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot create %q", target)
		}

		if err := d.streamBody(resp.Body, file); err != nil {
			file.Close()
			os.Remove(target)

			return nil, err
		}

		if err := file.Close(); err != nil {
			os.Remove(target)

			return nil, errors.Wrapf(err, "cannot write %q", target)
		}

		paths = []string{target}
	}

	return &FileResponse{
		FilePaths:    paths,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}, nil
}

// verifyContentLength rejects announced sizes over the limit. An absent or
// invalid header does not fail yet; the streamed size is still enforced.
func (d *Downloader) verifyContentLength(resp *http.Response) error {
	length := resp.ContentLength

	if header := resp.Header.Get("Content-Length"); header != "" {
		parsed, err := strconv.ParseInt(header, 10, 64)
		if err != nil {
			// Do not fail yet, the header was invalid.
			return nil
		}

		length = parsed
	}

	if length > d.config.MaxSize {
		return &SizeExceededError{Size: length, Limit: d.config.MaxSize}
	}

	return nil
}

// streamBody copies the response body in chunks, tracking the cumulative
// size against the limit.
func (d *Downloader) streamBody(body io.Reader, dst io.Writer) error {
	var readTotal int64

	buf := make([]byte, d.config.ChunkSize)

	for {
		n, err := body.Read(buf)
		if n > 0 {
			readTotal += int64(n)
			if readTotal > d.config.MaxSize {
				return &SizeExceededError{Size: readTotal, Limit: d.config.MaxSize}
			}

			if _, werr := dst.Write(buf[:n]); werr != nil {
				return errors.Wrap(werr, "cannot write chunk")
			}
		}

		if err == io.EOF {
			return nil
		}

		if err != nil {
			return errors.Wrap(err, "cannot read response body")
		}
	}
}

func isZipContent(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return strings.HasSuffix(mediaType, "zip")
}

// packageFileName derives the target file name from the Content-Disposition
// header, falling back to pipeline.yaml.
func packageFileName(disposition string) string {
	if disposition == "" {
		return fallbackFileName
	}

	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return fallbackFileName
	}

	filename := filepath.Base(params["filename"])
	if filename == "" || filename == "." || filename == string(filepath.Separator) {
		return fallbackFileName
	}

	return filename
}
