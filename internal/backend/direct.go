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

package backend

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/yaml"

	"github.com/linode/ai-operators/internal/config"
	"github.com/linode/ai-operators/internal/k8s"
)

// CommandRunner executes one external command with extra environment
// entries, returning its combined output. Injected for tests.
type CommandRunner func(ctx context.Context, extraEnv []string, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, extraEnv []string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), extraEnv...)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return out, errors.Wrapf(err, "%s failed: %s", name, strings.TrimSpace(string(out)))
	}

	return out, nil
}

// DirectBackend renders the agent chart locally and applies the manifests
// with a recursive apply. Apply is idempotent, so update equals create.
type DirectBackend struct {
	config       *config.Config
	gateway      *k8s.Gateway
	manifestRoot string
	run          CommandRunner
}

// NewDirectBackend returns the direct deployment backend.
func NewDirectBackend(cfg *config.Config, gateway *k8s.Gateway) *DirectBackend {
	return &DirectBackend{
		config:       cfg,
		gateway:      gateway,
		manifestRoot: filepath.Join(os.TempDir(), "agents"),
		run:          runCommand,
	}
}

func (b *DirectBackend) manifestDir(agentName string) string {
	return filepath.Join(b.manifestRoot, agentName)
}

// templateChart renders the chart for an agent into its manifest directory
// and returns the directory path.
func (b *DirectBackend) templateChart(ctx context.Context, data *AgentData) (string, error) {
	values, err := helmValues(data)
	if err != nil {
		return "", err
	}

	valuesYAML, err := yaml.Marshal(values)
	if err != nil {
		return "", errors.Wrapf(err, "cannot render values for agent %q", data.Name)
	}

	valuesFile, err := os.CreateTemp("", "values-*.yaml")
	if err != nil {
		return "", errors.Wrap(err, "cannot create values file")
	}

	defer os.Remove(valuesFile.Name())

	if _, err := valuesFile.Write(valuesYAML); err != nil {
		valuesFile.Close()

		return "", errors.Wrap(err, "cannot write values file")
	}

	if err := valuesFile.Close(); err != nil {
		return "", errors.Wrap(err, "cannot write values file")
	}

	outputDir := b.manifestDir(data.Name)
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "cannot create manifest directory for agent %q", data.Name)
	}

	// Helm needs a writable HOME for its cache directories.
	_, err = b.run(ctx, []string{"HOME=/tmp"}, "helm",
		"template", "agent-"+data.Name, b.config.ChartPath,
		"--values", valuesFile.Name(),
		"--namespace", data.Namespace,
		"--output-dir", outputDir,
	)
	if err != nil {
		return "", errors.Wrapf(err, "helm template failed for agent %q", data.Name)
	}

	ctrl.LoggerFrom(ctx).WithName("direct-backend").Info("Templated chart", "agent", data.Name, "dir", outputDir)

	return outputDir, nil
}

// Create deploys the agent by templating the chart and applying the
// rendered manifests.
func (b *DirectBackend) Create(ctx context.Context, data *AgentData) (string, error) {
	log := ctrl.LoggerFrom(ctx).WithName("direct-backend")

	log.Info("Deploying agent", "agent", data.Name, "namespace", data.Namespace)

	manifestDir, err := b.templateChart(ctx, data)
	if err != nil {
		return "", err
	}

	out, err := b.run(ctx, nil, "kubectl", "apply", "-f", manifestDir, "-n", data.Namespace, "--recursive")
	if err != nil {
		return "", errors.Wrapf(err, "kubectl apply failed for %q", manifestDir)
	}

	log.Info("Applied manifests", "dir", manifestDir, "output", strings.TrimSpace(string(out)))

	return data.Name, nil
}

// Update is identical to Create: apply handles both.
func (b *DirectBackend) Update(ctx context.Context, data *AgentData) (string, error) {
	return b.Create(ctx, data)
}

// Delete removes the agent's resources. When the manifest directory is
// missing the chart is re-templated first.
func (b *DirectBackend) Delete(ctx context.Context, data *AgentData) error {
	log := ctrl.LoggerFrom(ctx).WithName("direct-backend")

	manifestDir := b.manifestDir(data.Name)

	if _, err := os.Stat(manifestDir); os.IsNotExist(err) {
		log.Info("Manifest directory not found, templating chart for deletion", "agent", data.Name)

		var terr error
		if manifestDir, terr = b.templateChart(ctx, data); terr != nil {
			return terr
		}
	}

	log.Info("Deleting agent", "agent", data.Name, "namespace", data.Namespace)

	out, err := b.run(ctx, nil, "kubectl", "delete", "-f", manifestDir, "-n", data.Namespace,
		"--recursive", "--ignore-not-found=true")
	if err != nil {
		return errors.Wrapf(err, "kubectl delete failed for %q", manifestDir)
	}

	log.Info("Deleted resources", "dir", manifestDir, "output", strings.TrimSpace(string(out)))

	return nil
}

// Status returns the raw status of the agent's Deployment, or nil when it
// does not exist.
func (b *DirectBackend) Status(ctx context.Context, data *AgentData) (map[string]interface{}, error) {
	deployment, err := b.gateway.GetDeployment(ctx, data.Namespace, data.Name)
	if err != nil {
		return nil, err
	}

	if deployment == nil {
		return nil, nil
	}

	raw, err := json.Marshal(deployment.Status)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot convert deployment status for %q", data.Name)
	}

	status := map[string]interface{}{}
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, errors.Wrapf(err, "cannot convert deployment status for %q", data.Name)
	}

	return status, nil
}
