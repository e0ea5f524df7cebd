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

// Package supervisor owns the operator's background loops: the periodic
// pipeline source configuration refresh and the pipeline sync cycle. Both
// run as manager runnables so they start after leader election and stop
// with the manager.
package supervisor

import (
	"context"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/linode/ai-operators/internal/config"
	"github.com/linode/ai-operators/internal/pipelines"
)

// firstSnapshotPoll is how often the sync loop checks for the first
// configuration snapshot.
const firstSnapshotPoll = time.Second

// Supervisor wires the background loops into the manager.
type Supervisor struct {
	Config         *config.Config
	Loader         *pipelines.Loader
	Updater        *pipelines.Updater
	DownloadConfig pipelines.DownloadConfig
}

// SetupWithManager registers both loops with the manager.
func (s *Supervisor) SetupWithManager(mgr ctrl.Manager) error {
	if err := mgr.Add(&configRefresher{
		loader:   s.Loader,
		interval: s.Config.ConfigUpdateInterval,
	}); err != nil {
		return err
	}

	return mgr.Add(&pipelineSync{
		loader:         s.Loader,
		updater:        s.Updater,
		downloadConfig: s.DownloadConfig,
		interval:       s.Config.SourceUpdateInterval,
	})
}

// configRefresher periodically reloads the pipeline source configuration.
// Errors are logged and the loop proceeds; it terminates on shutdown only.
type configRefresher struct {
	loader   *pipelines.Loader
	interval time.Duration
}

func (c *configRefresher) Start(ctx context.Context) error {
	logger := ctrl.Log.WithName("config-refresh")
	ctx = log.IntoContext(ctx, logger)

	logger.Info("Starting configuration refresh loop", "interval", c.interval)

	for {
		if err := c.loader.Refresh(ctx); err != nil {
			logger.Error(err, "Failed to refresh pipeline configuration")
		}

		select {
		case <-ctx.Done():
			logger.Info("Stopping configuration refresh loop")
			return nil
		case <-time.After(c.interval):
		}
	}
}

func (c *configRefresher) NeedLeaderElection() bool { return true }

// pipelineSync drives the update cycle over all configured sources. It
// waits for the loader's first snapshot, then owns the downloader session
// for the lifetime of the loop.
type pipelineSync struct {
	loader         *pipelines.Loader
	updater        *pipelines.Updater
	downloadConfig pipelines.DownloadConfig
	interval       time.Duration
}

func (p *pipelineSync) Start(ctx context.Context) error {
	logger := ctrl.Log.WithName("pipeline-sync")
	ctx = log.IntoContext(ctx, logger)

	err := wait.PollUntilContextCancel(ctx, firstSnapshotPoll, true, func(context.Context) (bool, error) {
		return p.loader.Loaded(), nil
	})
	if err != nil {
		// Shutdown before the first snapshot.
		return nil
	}

	downloader := pipelines.NewDownloader(p.downloadConfig)
	defer downloader.Close()

	logger.Info("Starting pipeline sync loop", "interval", p.interval)

	for {
		p.updater.Run(ctx, p.loader.Snapshot(), downloader)

		select {
		case <-ctx.Done():
			logger.Info("Stopping pipeline sync loop")
			return nil
		case <-time.After(p.interval):
		}
	}
}

func (p *pipelineSync) NeedLeaderElection() bool { return true }
