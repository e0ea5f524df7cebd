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
	"os"
	"path/filepath"
	"strings"

	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/yaml"

	"github.com/linode/ai-operators/util"
)

const defaultSourceVersion = "1.0.0"

// Updater performs the full cycle of checking all configured sources and
// uploading new pipeline versions. The response cache holds the last
// successful fetch per source; it is owned exclusively by the sync loop and
// not persisted across restarts.
type Updater struct {
	uploader      *Uploader
	responseCache map[string]*FileResponse
}

// NewUpdater returns an updater submitting through the given uploader.
func NewUpdater(uploader *Uploader) *Updater {
	return &Updater{
		uploader:      uploader,
		responseCache: map[string]*FileResponse{},
	}
}

// Run triggers an update cycle over all configured sources. An error on one
// source is logged and does not abort the cycle.
func (u *Updater) Run(ctx context.Context, config map[string]SourceConfig, downloader *Downloader) {
	log := ctrl.LoggerFrom(ctx).WithName("pipeline-updater")

	for name, source := range config {
		if err := u.UpdateSource(ctx, downloader, name, source); err != nil {
			log.Error(err, "Error updating pipeline source", "source", name)
		}
	}
}

// UpdateSource checks a single configured source and uploads all pipelines
// produced by a modified fetch.
func (u *Updater) UpdateSource(ctx context.Context, downloader *Downloader, name string, source SourceConfig) error {
	log := ctrl.LoggerFrom(ctx).WithName("pipeline-updater")

	var etag, lastModified string
	if last := u.responseCache[name]; last != nil {
		etag = last.ETag
		lastModified = last.LastModified
	}

	log.V(1).Info("Checking on pipeline source updates", "source", name)

	modified, response, err := downloader.Fetch(ctx, name, source, etag, lastModified)
	if err != nil {
		return err
	}

	if !modified {
		return nil
	}

	version := util.Or(source.Version, defaultSourceVersion)

	log.V(1).Info("Processing files", "paths", response.FilePaths)

	for _, path := range response.FilePaths {
		u.uploadPackage(ctx, path, version)
	}

	u.responseCache[name] = response

	return nil
}

// uploadPackage submits one package file as a new pipeline version. The
// pipeline name embedded in the package is preferred over the file stem.
func (u *Updater) uploadPackage(ctx context.Context, packagePath, version string) {
	log := ctrl.LoggerFrom(ctx).WithName("pipeline-updater")

	pipelineName, err := pipelineNameFromPackage(packagePath)
	if err != nil {
		pipelineName = packageStem(packagePath)
		log.Info("Could not extract pipeline name from package, falling back to file name",
			"package", filepath.Base(packagePath), "error", err.Error())
	}

	versionName := pipelineName + " " + version
	u.uploader.Upload(ctx, packagePath, versionName, pipelineName)
}

func packageStem(packagePath string) string {
	return strings.TrimSuffix(filepath.Base(packagePath), ".yaml")
}

// pipelineNameFromPackage reads pipelineInfo.name from the package YAML.
func pipelineNameFromPackage(packagePath string) (string, error) {
	data, err := os.ReadFile(packagePath)
	if err != nil {
		return "", err
	}

	var pkg struct {
		PipelineInfo struct {
			Name string `json:"name"`
		} `json:"pipelineInfo"`
	}

	if err := yaml.Unmarshal(data, &pkg); err != nil {
		return "", err
	}

	if pkg.PipelineInfo.Name == "" {
		return "", fmt.Errorf("package does not declare pipelineInfo.name")
	}

	return pkg.PipelineInfo.Name, nil
}
