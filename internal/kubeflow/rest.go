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

package kubeflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	cleanhttp "github.com/hashicorp/go-cleanhttp"
	"github.com/pkg/errors"
)

const runPollInterval = 10 * time.Second

// restClient talks to the Kubeflow Pipelines REST API.
type restClient struct {
	endpoint string
	http     *http.Client
}

// NewClient returns a pipeline service client for the given endpoint. An
// empty endpoint is tolerated at construction; requests fail until it is
// configured.
func NewClient(endpoint string) Client {
	return &restClient{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		http:     cleanhttp.DefaultPooledClient(),
	}
}

func (c *restClient) GetPipelineID(ctx context.Context, name string) (string, error) {
	filter := fmt.Sprintf(`{"predicates":[{"operation":"EQUALS","key":"display_name","string_value":%q}]}`, name)

	var result struct {
		Pipelines []struct {
			PipelineID string `json:"pipeline_id"`
		} `json:"pipelines"`
	}

	query := url.Values{"filter": []string{filter}}
	if err := c.getJSON(ctx, "/apis/v2beta1/pipelines?"+query.Encode(), &result); err != nil {
		return "", err
	}

	if len(result.Pipelines) == 0 {
		return "", nil
	}

	return result.Pipelines[0].PipelineID, nil
}

func (c *restClient) UploadPipelineVersion(ctx context.Context, packagePath, versionName, pipelineName string) (string, string, error) {
	if pipelineName == "" {
		pipelineName = strings.TrimSuffix(filepath.Base(packagePath), ".yaml")
	}

	pipelineID, err := c.GetPipelineID(ctx, pipelineName)
	if err != nil {
		return "", "", err
	}

	query := url.Values{"name": []string{versionName}}
	path := "/apis/v1beta1/pipelines/upload"

	if pipelineID != "" {
		path = "/apis/v1beta1/pipelines/upload_version"
		query.Set("pipelineid", pipelineID)
	} else {
		query.Set("name", pipelineName)
	}

	var result struct {
		ID         string `json:"id"`
		PipelineID string `json:"pipeline_id"`
	}

	if err := c.uploadFile(ctx, path+"?"+query.Encode(), packagePath, &result); err != nil {
		return "", "", err
	}

	if pipelineID == "" {
		// A fresh pipeline was created; its upload result carries the
		// pipeline id itself.
		return result.ID, "", nil
	}

	return pipelineID, result.ID, nil
}

func (c *restClient) RunPipeline(ctx context.Context, jobName, pipelineName string, parameters map[string]interface{}) (string, error) {
	pipelineID, err := c.GetPipelineID(ctx, pipelineName)
	if err != nil {
		return "", err
	}

	if pipelineID == "" {
		return "", fmt.Errorf("pipeline %q not found in pipeline service", pipelineName)
	}

	body := map[string]interface{}{
		"display_name": jobName,
		"pipeline_version_reference": map[string]interface{}{
			"pipeline_id": pipelineID,
		},
		"runtime_config": map[string]interface{}{
			"parameters": parameters,
		},
	}

	var result struct {
		RunID string `json:"run_id"`
	}

	if err := c.postJSON(ctx, "/apis/v2beta1/runs", body, &result); err != nil {
		return "", err
	}

	return result.RunID, nil
}

func (c *restClient) WaitForRunCompletion(ctx context.Context, runID string, timeout time.Duration) (*RunResult, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		run, err := c.getRun(ctx, runID)
		if err != nil {
			return nil, err
		}

		switch run.State {
		case RunStateSucceeded:
			return run, nil
		case RunStateFailed, RunStateCanceled:
			return run, fmt.Errorf("pipeline run %q finished in state %s", runID, run.State)
		}

		select {
		case <-ctx.Done():
			return nil, errors.Wrapf(ctx.Err(), "waiting for pipeline run %q", runID)
		case <-time.After(runPollInterval):
		}
	}
}

func (c *restClient) getRun(ctx context.Context, runID string) (*RunResult, error) {
	var result struct {
		RunID      string    `json:"run_id"`
		State      string    `json:"state"`
		CreatedAt  time.Time `json:"created_at"`
		FinishedAt time.Time `json:"finished_at"`
	}

	if err := c.getJSON(ctx, "/apis/v2beta1/runs/"+url.PathEscape(runID), &result); err != nil {
		return nil, err
	}

	return &RunResult{
		ID:         result.RunID,
		State:      result.State,
		CreatedAt:  result.CreatedAt,
		FinishedAt: result.FinishedAt,
	}, nil
}

func (c *restClient) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+path, nil)
	if err != nil {
		return errors.Wrap(err, "cannot build pipeline service request")
	}

	return c.do(req, out)
}

func (c *restClient) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "cannot marshal pipeline service request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "cannot build pipeline service request")
	}

	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *restClient) uploadFile(ctx context.Context, path, filePath string, out interface{}) error {
	file, err := os.Open(filePath)
	if err != nil {
		return errors.Wrapf(err, "cannot open package %q", filePath)
	}
	defer file.Close()

	var buf bytes.Buffer

	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("uploadfile", filepath.Base(filePath))
	if err != nil {
		return errors.Wrap(err, "cannot build upload request")
	}

	if _, err := io.Copy(part, file); err != nil {
		return errors.Wrapf(err, "cannot read package %q", filePath)
	}

	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "cannot finalize upload request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, &buf)
	if err != nil {
		return errors.Wrap(err, "cannot build upload request")
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req, out)
}

func (c *restClient) do(req *http.Request, out interface{}) error {
	if c.endpoint == "" {
		return fmt.Errorf("pipeline service endpoint not configured, set KUBEFLOW_ENDPOINT")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "pipeline service request failed")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "cannot read pipeline service response")
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("pipeline service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	if out == nil || len(payload) == 0 {
		return nil
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return errors.Wrap(err, "cannot decode pipeline service response")
	}

	return nil
}
