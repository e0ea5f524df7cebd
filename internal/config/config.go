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

// Package config resolves the operator runtime configuration from the
// process environment.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ProviderAPL selects the GitOps deployment backend.
const ProviderAPL = "apl"

// Config is the resolved runtime configuration. It is built once at startup
// and threaded through the supervisor and both background loops.
type Config struct {
	// Provider selects the deployment backend: "apl" maps agents to GitOps
	// applications, anything else applies rendered manifests directly.
	Provider string

	// ChartPath is the local chart used by the direct backend.
	ChartPath string

	// Chart source for the GitOps backend.
	AgentChartRepoURL      string
	AgentChartRepoRevision string
	AgentChartPath         string

	// WatchNamespaces restricts the reconcile engine; empty watches all.
	WatchNamespaces []string

	// Namespace holds the pipeline source ConfigMap and auth secrets.
	Namespace string

	// KubeflowEndpoint is the downstream pipeline service address.
	KubeflowEndpoint string

	// PipelineSourceRoot is the working directory for downloaded packages.
	PipelineSourceRoot string

	ConfigUpdateInterval time.Duration
	SourceUpdateInterval time.Duration
	PipelineRunTimeout   time.Duration
}

// New reads the configuration from the environment, applying defaults.
func New() *Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PROVIDER", ProviderAPL)
	v.SetDefault("CHART_PATH", "/app/agent")
	v.SetDefault("AGENT_CHART_REPO_URL", "https://github.com/linode/ai-operators.git")
	v.SetDefault("AGENT_CHART_REPO_REVISION", "main")
	v.SetDefault("AGENT_CHART_PATH", "agent")
	v.SetDefault("NAMESPACE", "ml-operator")
	v.SetDefault("PIPELINE_SOURCE_ROOT", os.TempDir())
	v.SetDefault("CONFIG_UPDATE_INTERVAL", 30*time.Second)
	v.SetDefault("SOURCE_UPDATE_INTERVAL", 10*time.Second)
	v.SetDefault("PIPELINE_RUN_TIMEOUT", 7200*time.Second)

	return &Config{
		Provider:               v.GetString("PROVIDER"),
		ChartPath:              v.GetString("CHART_PATH"),
		AgentChartRepoURL:      v.GetString("AGENT_CHART_REPO_URL"),
		AgentChartRepoRevision: v.GetString("AGENT_CHART_REPO_REVISION"),
		AgentChartPath:         v.GetString("AGENT_CHART_PATH"),
		WatchNamespaces:        splitNamespaces(v.GetString("WATCH_NAMESPACES")),
		Namespace:              v.GetString("NAMESPACE"),
		KubeflowEndpoint:       v.GetString("KUBEFLOW_ENDPOINT"),
		PipelineSourceRoot:     v.GetString("PIPELINE_SOURCE_ROOT"),
		ConfigUpdateInterval:   v.GetDuration("CONFIG_UPDATE_INTERVAL"),
		SourceUpdateInterval:   v.GetDuration("SOURCE_UPDATE_INTERVAL"),
		PipelineRunTimeout:     v.GetDuration("PIPELINE_RUN_TIMEOUT"),
	}
}

func splitNamespaces(arg string) []string {
	if arg == "" {
		return nil
	}

	var namespaces []string

	for _, ns := range strings.Split(arg, ",") {
		if ns = strings.TrimSpace(ns); ns != "" {
			namespaces = append(namespaces, ns)
		}
	}

	return namespaces
}
