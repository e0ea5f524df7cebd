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

// Package kubeflow is the client surface of the downstream pipeline
// service: registering pipeline package versions and driving indexing runs.
package kubeflow

import (
	"context"
	"time"
)

// Run states reported by the pipeline service.
const (
	RunStateSucceeded = "SUCCEEDED"
	RunStateFailed    = "FAILED"
	RunStateCanceled  = "CANCELED"
)

// RunResult describes a finished pipeline run.
type RunResult struct {
	ID         string
	State      string
	CreatedAt  time.Time
	FinishedAt time.Time
}

// Client is the downstream pipeline-service surface used by the operator.
type Client interface {
	// UploadPipelineVersion registers the package at packagePath as a new
	// version of the named pipeline, creating the pipeline when it does not
	// exist yet. It returns the pipeline and version identifiers; when the
	// pipeline is freshly created the version identifier is empty.
	UploadPipelineVersion(ctx context.Context, packagePath, versionName, pipelineName string) (string, string, error)

	// GetPipelineID resolves a pipeline name to its identifier. A missing
	// pipeline yields an empty identifier.
	GetPipelineID(ctx context.Context, name string) (string, error)

	// RunPipeline starts a run of the named pipeline with the given
	// parameters and returns the run identifier.
	RunPipeline(ctx context.Context, jobName, pipelineName string, parameters map[string]interface{}) (string, error)

	// WaitForRunCompletion blocks until the run finishes or the timeout
	// elapses. A failed or canceled run returns an error.
	WaitForRunCompletion(ctx context.Context, runID string, timeout time.Duration) (*RunResult, error)
}
