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

package status

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	operatorv1 "github.com/linode/ai-operators/api/v1alpha1"
	"github.com/linode/ai-operators/internal/k8s"
)

func newReporterWith(t *testing.T, agent *operatorv1.AkamaiAgent) (*Reporter, client.Client) {
	t.Helper()

	scheme := runtime.NewScheme()
	utilruntime.Must(operatorv1.AddToScheme(scheme))

	fakeClient := fake.NewClientBuilder().
		WithScheme(scheme).
		WithObjects(agent).
		WithStatusSubresource(&operatorv1.AkamaiAgent{}).
		Build()

	reporter := NewReporter(k8s.NewGateway(fakeClient))
	reporter.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	return reporter, fakeClient
}

func testAgent() *operatorv1.AkamaiAgent {
	return &operatorv1.AkamaiAgent{
		ObjectMeta: metav1.ObjectMeta{Name: "assistant", Namespace: "team-a"},
		Spec: operatorv1.AkamaiAgentSpec{
			FoundationModel: "llama",
			SystemPrompt:    "hi",
		},
	}
}

func getStatus(t *testing.T, c client.Client) operatorv1.AkamaiAgentStatus {
	t.Helper()

	agent := &operatorv1.AkamaiAgent{}
	if err := c.Get(context.Background(), client.ObjectKey{Namespace: "team-a", Name: "assistant"}, agent); err != nil {
		t.Fatalf("cannot read agent: %v", err)
	}

	return agent.Status
}

func TestSetDeployed(t *testing.T) {
	g := NewWithT(t)

	reporter, c := newReporterWith(t, testAgent())

	g.Expect(reporter.SetDeployed(context.Background(), "team-a", "assistant", "agent-assistant")).To(Succeed())

	status := getStatus(t, c)
	g.Expect(status.Phase).To(Equal(operatorv1.AgentPhaseDeployed))
	g.Expect(status.DeploymentID).To(Equal("agent-assistant"))
	g.Expect(status.Message).To(Equal("Agent successfully deployed"))
	g.Expect(status.LastUpdated.Time.UTC()).To(Equal(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)))
	g.Expect(status.Conditions).To(HaveLen(1))
	g.Expect(status.Conditions[0].Type).To(Equal(operatorv1.AgentDeployedCondition))
	g.Expect(status.Conditions[0].Reason).To(Equal(operatorv1.ScheduledReason))
}

func TestSetFailedAndClear(t *testing.T) {
	g := NewWithT(t)

	reporter, c := newReporterWith(t, testAgent())

	g.Expect(reporter.SetFailed(context.Background(), "team-a", "assistant", "boom")).To(Succeed())

	status := getStatus(t, c)
	g.Expect(status.Phase).To(Equal(operatorv1.AgentPhaseFailed))
	g.Expect(status.Error).To(Equal("boom"))
	g.Expect(status.Message).To(Equal("Agent deployment failed: boom"))
	g.Expect(status.Conditions[0].Type).To(Equal(operatorv1.AgentFailedCondition))

	g.Expect(reporter.ClearFailed(context.Background(), "team-a", "assistant")).To(Succeed())

	status = getStatus(t, c)
	g.Expect(status.Phase).To(Equal(operatorv1.AgentPhaseDeployed))
	g.Expect(status.Message).To(Equal("Agent deployment recovered"))
}

func TestSetKnowledgeBaseLinked(t *testing.T) {
	g := NewWithT(t)

	reporter, c := newReporterWith(t, testAgent())

	g.Expect(reporter.SetKnowledgeBaseLinked(context.Background(), "team-a", "assistant", "my-kb")).To(Succeed())

	status := getStatus(t, c)
	g.Expect(status.KnowledgeBase).ToNot(BeNil())
	g.Expect(status.KnowledgeBase.Name).To(Equal("my-kb"))
	g.Expect(status.KnowledgeBase.Status).To(Equal(operatorv1.KnowledgeBaseLinked))
}

func TestSetKnowledgeBaseError(t *testing.T) {
	g := NewWithT(t)

	reporter, c := newReporterWith(t, testAgent())

	g.Expect(reporter.SetKnowledgeBaseError(context.Background(), "team-a", "assistant", `Knowledge base "my-kb": not found`)).To(Succeed())

	status := getStatus(t, c)
	g.Expect(status.Phase).To(Equal(operatorv1.AgentPhaseFailed))
	g.Expect(status.KnowledgeBase).ToNot(BeNil())
	g.Expect(status.KnowledgeBase.Status).To(Equal(operatorv1.KnowledgeBaseError))
	g.Expect(status.KnowledgeBase.Error).To(ContainSubstring("my-kb"))
	g.Expect(status.Error).To(ContainSubstring("Knowledge base"))
}
