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

// Package backend deploys agent workloads. Two interchangeable backends
// implement the same contract: a GitOps backend expressing the desired
// state as a managed Application object, and a direct backend rendering the
// chart locally and applying the manifests.
package backend

import (
	"context"

	"github.com/linode/ai-operators/internal/config"
	"github.com/linode/ai-operators/internal/k8s"
)

// AgentData is the enriched deployment input for one agent. It is
// constructed per reconcile invocation and discarded at its end. Tool names
// are already normalized and knowledgeBase-typed tools already carry their
// resolved configuration; backends do not re-apply either.
type AgentData struct {
	Namespace               string
	Name                    string
	FoundationModel         string
	FoundationModelEndpoint string
	SystemPrompt            string
	MaxTokens               int
	Routes                  []map[string]interface{}
	Tools                   []map[string]interface{}
}

// KBData is the decoded knowledge base configuration attached to
// knowledgeBase-typed tools.
type KBData struct {
	Name               string
	PipelineName       string
	PipelineParameters map[string]interface{}
}

// ConfigMapping converts the knowledge base to the config mapping expected
// by agent tools.
func (d *KBData) ConfigMapping() map[string]interface{} {
	config := map[string]interface{}{
		"pipeline_name": d.PipelineName,
	}

	for k, v := range d.PipelineParameters {
		config[k] = v
	}

	return config
}

// DeploymentBackend is the deployment contract shared by both backends.
type DeploymentBackend interface {
	// Create creates the backing workload and returns its deployment id.
	// An already existing workload proceeds as update.
	Create(ctx context.Context, data *AgentData) (string, error)

	// Update brings the backing workload to match data.
	Update(ctx context.Context, data *AgentData) (string, error)

	// Delete removes the backing workload; a missing workload is a no-op.
	Delete(ctx context.Context, data *AgentData) error

	// Status returns the backend-specific status mapping, or nil when the
	// workload does not exist.
	Status(ctx context.Context, data *AgentData) (map[string]interface{}, error)
}

// New selects the backend implementation for the configured provider.
func New(cfg *config.Config, gateway *k8s.Gateway) DeploymentBackend {
	if cfg.Provider == config.ProviderAPL {
		return NewGitOpsBackend(cfg, gateway)
	}

	return NewDirectBackend(cfg, gateway)
}
