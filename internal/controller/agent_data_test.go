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

package controller

import (
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	operatorv1 "github.com/linode/ai-operators/api/v1alpha1"
	"github.com/linode/ai-operators/internal/k8s"
)

func newTestScheme() *runtime.Scheme {
	scheme := runtime.NewScheme()
	utilruntime.Must(corev1.AddToScheme(scheme))
	utilruntime.Must(operatorv1.AddToScheme(scheme))

	return scheme
}

func newTestGateway(objs ...client.Object) *k8s.Gateway {
	fakeClient := fake.NewClientBuilder().WithScheme(newTestScheme()).WithObjects(objs...).Build()

	return k8s.NewGateway(fakeClient)
}

func modelService() *corev1.Service {
	return &corev1.Service{
		ObjectMeta: metav1.ObjectMeta{
			Name:      "llama-svc",
			Namespace: "models",
			Labels: map[string]string{
				"modelType": "llm",
				"modelName": "llama",
			},
		},
	}
}

func sampleKnowledgeBase() *operatorv1.AkamaiKnowledgeBase {
	return &operatorv1.AkamaiKnowledgeBase{
		ObjectMeta: metav1.ObjectMeta{Name: "my-kb", Namespace: "team-a"},
		Spec: operatorv1.AkamaiKnowledgeBaseSpec{
			PipelineName:       "emb",
			PipelineParameters: apiextensionsv1.JSON{Raw: []byte(`{"x":1}`)},
		},
	}
}

func TestBuildAgentDataResolvesEndpoint(t *testing.T) {
	g := NewWithT(t)

	gateway := newTestGateway(modelService())

	spec := &operatorv1.AkamaiAgentSpec{
		FoundationModel: "llama",
		SystemPrompt:    "hi",
	}

	data, err := buildAgentData(context.Background(), gateway, "team-a", "assistant", spec)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(data.FoundationModelEndpoint).To(Equal("llama-svc.models.svc.cluster.local"))
	g.Expect(data.SystemPrompt).To(Equal("hi"))
	g.Expect(data.MaxTokens).To(Equal(operatorv1.DefaultMaxTokens))
}

func TestBuildAgentDataMissingModelService(t *testing.T) {
	g := NewWithT(t)

	gateway := newTestGateway()

	spec := &operatorv1.AkamaiAgentSpec{FoundationModel: "missing", SystemPrompt: "hi"}

	_, err := buildAgentData(context.Background(), gateway, "team-a", "assistant", spec)
	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring(`foundation model "missing" not found`))
}

func TestBuildAgentDataNormalizesToolNames(t *testing.T) {
	g := NewWithT(t)

	gateway := newTestGateway(modelService())

	spec := &operatorv1.AkamaiAgentSpec{
		FoundationModel: "llama",
		SystemPrompt:    "hi",
		Tools: []apiextensionsv1.JSON{
			{Raw: []byte(`{"type":"search","name":"web-search-tool"}`)},
		},
	}

	data, err := buildAgentData(context.Background(), gateway, "team-a", "assistant", spec)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(data.Tools).To(HaveLen(1))
	g.Expect(data.Tools[0]["name"]).To(Equal("web_search_tool"))

	for _, tool := range data.Tools {
		name, _ := tool["name"].(string)
		g.Expect(strings.Contains(name, "-")).To(BeFalse())
	}
}

func TestBuildAgentDataEnrichesKnowledgeBaseTool(t *testing.T) {
	g := NewWithT(t)

	gateway := newTestGateway(modelService(), sampleKnowledgeBase())

	spec := &operatorv1.AkamaiAgentSpec{
		FoundationModel: "llama",
		SystemPrompt:    "hi",
		Tools: []apiextensionsv1.JSON{
			{Raw: []byte(`{"type":"knowledgeBase","name":"my-kb"}`)},
		},
	}

	data, err := buildAgentData(context.Background(), gateway, "team-a", "assistant", spec)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(data.Tools).To(HaveLen(1))
	g.Expect(data.Tools[0]["name"]).To(Equal("my_kb"))
	g.Expect(data.Tools[0]["config"]).To(Equal(map[string]interface{}{
		"pipeline_name": "emb",
		"x":             float64(1),
	}))
}

func TestBuildAgentDataMissingKnowledgeBase(t *testing.T) {
	g := NewWithT(t)

	gateway := newTestGateway(modelService())

	spec := &operatorv1.AkamaiAgentSpec{
		FoundationModel: "llama",
		SystemPrompt:    "hi",
		Tools: []apiextensionsv1.JSON{
			{Raw: []byte(`{"type":"knowledgeBase","name":"my-kb"}`)},
		},
	}

	_, err := buildAgentData(context.Background(), gateway, "team-a", "assistant", spec)

	kbErr := &KnowledgeBaseError{}
	g.Expect(errors.As(err, &kbErr)).To(BeTrue())
	g.Expect(kbErr.Name).To(Equal("my-kb"))
	g.Expect(err.Error()).To(ContainSubstring("Knowledge base"))
}

func TestMinimalAgentData(t *testing.T) {
	g := NewWithT(t)

	spec := &operatorv1.AkamaiAgentSpec{FoundationModel: "llama", AgentInstructions: "hi"}

	data := minimalAgentData("team-a", "assistant", spec)
	g.Expect(data.FoundationModelEndpoint).To(BeEmpty())
	g.Expect(data.Routes).To(BeEmpty())
	g.Expect(data.Tools).To(BeEmpty())
	g.Expect(data.SystemPrompt).To(Equal("hi"))
}
