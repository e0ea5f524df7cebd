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
	"testing"

	. "github.com/onsi/gomega"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"
	"sigs.k8s.io/yaml"

	"github.com/linode/ai-operators/internal/config"
	"github.com/linode/ai-operators/internal/k8s"
)

func newGitOpsScheme() *runtime.Scheme {
	scheme := runtime.NewScheme()
	scheme.AddKnownTypeWithName(applicationGVK, &unstructured.Unstructured{})
	scheme.AddKnownTypeWithName(applicationGVK.GroupVersion().WithKind("ApplicationList"), &unstructured.UnstructuredList{})

	return scheme
}

func gitOpsConfig() *config.Config {
	return &config.Config{
		Provider:               config.ProviderAPL,
		AgentChartRepoURL:      "https://github.com/linode/ai-operators.git",
		AgentChartRepoRevision: "main",
		AgentChartPath:         "agent",
	}
}

func newGitOpsBackend(objs ...client.Object) (*GitOpsBackend, client.Client) {
	fakeClient := fake.NewClientBuilder().WithScheme(newGitOpsScheme()).WithObjects(objs...).Build()

	return NewGitOpsBackend(gitOpsConfig(), k8s.NewGateway(fakeClient)), fakeClient
}

func sampleAgentData() *AgentData {
	return &AgentData{
		Namespace:               "team-a",
		Name:                    "assistant",
		FoundationModel:         "llama",
		FoundationModelEndpoint: "llama-svc.models.svc.cluster.local",
		SystemPrompt:            "hi",
		MaxTokens:               512,
		Tools: []map[string]interface{}{
			{"type": "knowledgeBase", "name": "my_kb", "config": map[string]interface{}{"pipeline_name": "emb"}},
		},
	}
}

func TestGitOpsCreate(t *testing.T) {
	g := NewWithT(t)

	backend, fakeClient := newGitOpsBackend()

	id, err := backend.Create(context.Background(), sampleAgentData())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(id).To(Equal("agent-assistant"))

	app := &unstructured.Unstructured{}
	app.SetGroupVersionKind(applicationGVK)
	g.Expect(fakeClient.Get(context.Background(), client.ObjectKey{Namespace: gitOpsNamespace, Name: "agent-assistant"}, app)).To(Succeed())

	repoURL, _, err := unstructured.NestedString(app.Object, "spec", "source", "repoURL")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(repoURL).To(Equal("https://github.com/linode/ai-operators.git"))

	destination, _, err := unstructured.NestedString(app.Object, "spec", "destination", "namespace")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(destination).To(Equal("team-a"))

	valuesBlob, _, err := unstructured.NestedString(app.Object, "spec", "source", "helm", "values")
	g.Expect(err).ToNot(HaveOccurred())

	values := map[string]string{}
	g.Expect(yaml.Unmarshal([]byte(valuesBlob), &values)).To(Succeed())
	g.Expect(values["nameOverride"]).To(Equal("assistant"))

	agentConfig := map[string]interface{}{}
	g.Expect(json.Unmarshal([]byte(values["agentConfig"]), &agentConfig)).To(Succeed())
	g.Expect(agentConfig["name"]).To(Equal("assistant"))
	g.Expect(agentConfig["foundation_model"]).To(Equal(map[string]interface{}{
		"name":     "llama",
		"endpoint": "llama-svc.models.svc.cluster.local",
	}))
	g.Expect(agentConfig["system_prompt"]).To(Equal("hi"))
	g.Expect(agentConfig["max_tokens"]).To(Equal(float64(512)))
}

func TestGitOpsCreateExistingFallsBackToUpdate(t *testing.T) {
	g := NewWithT(t)

	existing := &unstructured.Unstructured{}
	existing.SetGroupVersionKind(applicationGVK)
	existing.SetNamespace(gitOpsNamespace)
	existing.SetName("agent-assistant")

	backend, fakeClient := newGitOpsBackend(existing)

	id, err := backend.Create(context.Background(), sampleAgentData())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(id).To(Equal("agent-assistant"))

	app := &unstructured.Unstructured{}
	app.SetGroupVersionKind(applicationGVK)
	g.Expect(fakeClient.Get(context.Background(), client.ObjectKey{Namespace: gitOpsNamespace, Name: "agent-assistant"}, app)).To(Succeed())

	project, _, err := unstructured.NestedString(app.Object, "spec", "project")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(project).To(Equal("default"))
}

func TestGitOpsDeleteMissingIsNoop(t *testing.T) {
	g := NewWithT(t)

	backend, _ := newGitOpsBackend()

	g.Expect(backend.Delete(context.Background(), sampleAgentData())).To(Succeed())
}

func TestGitOpsStatus(t *testing.T) {
	g := NewWithT(t)

	deployed := &unstructured.Unstructured{Object: map[string]interface{}{
		"status": map[string]interface{}{
			"health": map[string]interface{}{"status": "Healthy"},
		},
	}}
	deployed.SetGroupVersionKind(applicationGVK)
	deployed.SetNamespace(gitOpsNamespace)
	deployed.SetName("agent-assistant")

	backend, _ := newGitOpsBackend(deployed)

	status, err := backend.Status(context.Background(), sampleAgentData())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(status).To(HaveKey("health"))

	missing, err := backend.Status(context.Background(), &AgentData{Namespace: "team-a", Name: "other"})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(missing).To(BeNil())
}
