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

	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/linode/ai-operators/internal/kubeflow"
)

// Uploader submits pipeline packages to the downstream pipeline service.
// Upload is best-effort per version: a failure is logged and surfaced as
// empty identifiers so one bad package does not stop the enclosing cycle.
type Uploader struct {
	service kubeflow.Client
}

// NewUploader returns an uploader over the given pipeline service client.
func NewUploader(service kubeflow.Client) *Uploader {
	return &Uploader{service: service}
}

// Upload registers the package as a new version of the named pipeline.
func (u *Uploader) Upload(ctx context.Context, packagePath, versionName, pipelineName string) (string, string) {
	pipelineID, versionID, err := u.service.UploadPipelineVersion(ctx, packagePath, versionName, pipelineName)
	if err != nil {
		ctrl.LoggerFrom(ctx).WithName("pipeline-uploader").Error(err, "Error uploading pipeline", "version", versionName)

		return "", ""
	}

	return pipelineID, versionID
}
