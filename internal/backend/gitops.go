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

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/yaml"

	"github.com/linode/ai-operators/internal/config"
	"github.com/linode/ai-operators/internal/k8s"
)

// applicationGVK identifies the managed GitOps application object.
var applicationGVK = schema.GroupVersionKind{
	Group:   "argoproj.io",
	Version: "v1alpha1",
	Kind:    "Application",
}

// gitOpsNamespace is where managed applications live.
const gitOpsNamespace = "argocd"

// GitOpsBackend maps each agent to an Application object whose spec
// references the agent chart with the rendered values blob. The external
// GitOps controller reconciles the application into cluster workloads.
type GitOpsBackend struct {
	config  *config.Config
	gateway *k8s.Gateway
}

// NewGitOpsBackend returns the GitOps deployment backend.
func NewGitOpsBackend(cfg *config.Config, gateway *k8s.Gateway) *GitOpsBackend {
	return &GitOpsBackend{config: cfg, gateway: gateway}
}

func applicationName(data *AgentData) string {
	return "agent-" + data.Name
}

// application builds the Application object for an agent.
func (b *GitOpsBackend) application(data *AgentData) (*unstructured.Unstructured, error) {
	values, err := helmValues(data)
	if err != nil {
		return nil, err
	}

	valuesYAML, err := yaml.Marshal(values)
	if err != nil {
		return nil, err
	}

	name := applicationName(data)

	app := &unstructured.Unstructured{Object: map[string]interface{}{
		"metadata": map[string]interface{}{
			"name":      name,
			"namespace": gitOpsNamespace,
			"annotations": map[string]interface{}{
				"argocd.argoproj.io/compare-options": "ServerSideDiff=true,IncludeMutationWebhook=true",
			},
			"labels": map[string]interface{}{
				"app.kubernetes.io/name":       name,
				"app.kubernetes.io/component":  "agent",
				"app.kubernetes.io/managed-by": "agent-operator",
			},
		},
		"spec": map[string]interface{}{
			"project": "default",
			"source": map[string]interface{}{
				"repoURL":        b.config.AgentChartRepoURL,
				"path":           b.config.AgentChartPath,
				"targetRevision": b.config.AgentChartRepoRevision,
				"helm": map[string]interface{}{
					"values": string(valuesYAML),
				},
			},
			"destination": map[string]interface{}{
				"server":    "https://kubernetes.default.svc",
				"namespace": data.Namespace,
			},
			"syncPolicy": map[string]interface{}{
				"automated": map[string]interface{}{
					"prune":      true,
					"allowEmpty": false,
					"selfHeal":   true,
				},
				"syncOptions": []interface{}{"ServerSideApply=true"},
			},
		},
	}}
	app.SetGroupVersionKind(applicationGVK)

	return app, nil
}

// Create creates the application for the agent. An existing application
// proceeds as update.
func (b *GitOpsBackend) Create(ctx context.Context, data *AgentData) (string, error) {
	log := ctrl.LoggerFrom(ctx).WithName("gitops-backend")

	app, err := b.application(data)
	if err != nil {
		return "", err
	}

	name := app.GetName()

	if err := b.gateway.CreateCustomObject(ctx, app); err != nil {
		if k8s.IsConflict(err) {
			log.Info("Application already exists, updating", "application", name)

			return b.Update(ctx, data)
		}

		return "", err
	}

	log.Info("Created application", "application", name, "agent", data.Name)

	return name, nil
}

// Update merge-patches the application to match the agent.
func (b *GitOpsBackend) Update(ctx context.Context, data *AgentData) (string, error) {
	app, err := b.application(data)
	if err != nil {
		return "", err
	}

	if err := b.gateway.PatchCustomObject(ctx, app); err != nil {
		return "", err
	}

	ctrl.LoggerFrom(ctx).WithName("gitops-backend").Info("Updated application", "application", app.GetName(), "agent", data.Name)

	return app.GetName(), nil
}

// Delete removes the application. A missing application is a no-op.
func (b *GitOpsBackend) Delete(ctx context.Context, data *AgentData) error {
	name := applicationName(data)

	if err := b.gateway.DeleteCustomObject(ctx, applicationGVK, gitOpsNamespace, name); err != nil {
		return err
	}

	ctrl.LoggerFrom(ctx).WithName("gitops-backend").Info("Deleted application", "application", name, "agent", data.Name)

	return nil
}

// Status returns the raw status of the application, or nil when it does
// not exist.
func (b *GitOpsBackend) Status(ctx context.Context, data *AgentData) (map[string]interface{}, error) {
	app, err := b.gateway.GetCustomObject(ctx, applicationGVK, gitOpsNamespace, applicationName(data))
	if err != nil {
		return nil, err
	}

	if app == nil {
		return nil, nil
	}

	status, _, err := unstructured.NestedMap(app.Object, "status")
	if err != nil {
		return nil, err
	}

	return status, nil
}
