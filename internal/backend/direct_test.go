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
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega"
	appsv1 "k8s.io/api/apps/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/linode/ai-operators/internal/config"
	"github.com/linode/ai-operators/internal/k8s"
)

type recordedCommand struct {
	env  []string
	name string
	args []string
}

func newDirectBackend(t *testing.T, commands *[]recordedCommand, objs ...client.Object) *DirectBackend {
	t.Helper()

	scheme := runtime.NewScheme()
	utilruntime.Must(appsv1.AddToScheme(scheme))

	fakeClient := fake.NewClientBuilder().WithScheme(scheme).WithObjects(objs...).Build()

	backend := NewDirectBackend(&config.Config{Provider: "direct", ChartPath: "/app/agent"}, k8s.NewGateway(fakeClient))
	backend.manifestRoot = t.TempDir()
	backend.run = func(_ context.Context, env []string, name string, args ...string) ([]byte, error) {
		*commands = append(*commands, recordedCommand{env: env, name: name, args: args})
		return []byte("ok"), nil
	}

	return backend
}

func TestDirectCreate(t *testing.T) {
	g := NewWithT(t)

	var commands []recordedCommand

	backend := newDirectBackend(t, &commands)

	id, err := backend.Create(context.Background(), sampleAgentData())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(id).To(Equal("assistant"))

	g.Expect(commands).To(HaveLen(2))

	helm := commands[0]
	g.Expect(helm.name).To(Equal("helm"))
	g.Expect(helm.env).To(ContainElement("HOME=/tmp"))
	g.Expect(helm.args[0]).To(Equal("template"))
	g.Expect(helm.args[1]).To(Equal("agent-assistant"))
	g.Expect(helm.args[2]).To(Equal("/app/agent"))
	g.Expect(helm.args).To(ContainElement("--namespace"))
	g.Expect(helm.args).To(ContainElement("--output-dir"))
	g.Expect(helm.args).To(ContainElement(filepath.Join(backend.manifestRoot, "assistant")))

	apply := commands[1]
	g.Expect(apply.name).To(Equal("kubectl"))
	g.Expect(apply.args).To(Equal([]string{
		"apply", "-f", filepath.Join(backend.manifestRoot, "assistant"),
		"-n", "team-a", "--recursive",
	}))
}

func TestDirectUpdateEqualsCreate(t *testing.T) {
	g := NewWithT(t)

	var commands []recordedCommand

	backend := newDirectBackend(t, &commands)

	id, err := backend.Update(context.Background(), sampleAgentData())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(id).To(Equal("assistant"))
	g.Expect(commands).To(HaveLen(2))
	g.Expect(commands[1].args[0]).To(Equal("apply"))
}

func TestDirectDeleteWithCachedManifests(t *testing.T) {
	g := NewWithT(t)

	var commands []recordedCommand

	backend := newDirectBackend(t, &commands)

	manifestDir := filepath.Join(backend.manifestRoot, "assistant")
	g.Expect(os.MkdirAll(manifestDir, 0o755)).To(Succeed())

	g.Expect(backend.Delete(context.Background(), sampleAgentData())).To(Succeed())

	// No re-templating: the only invocation is the recursive delete.
	g.Expect(commands).To(HaveLen(1))
	g.Expect(commands[0].name).To(Equal("kubectl"))
	g.Expect(commands[0].args).To(Equal([]string{
		"delete", "-f", manifestDir, "-n", "team-a",
		"--recursive", "--ignore-not-found=true",
	}))
}

func TestDirectDeleteWithoutCachedManifests(t *testing.T) {
	g := NewWithT(t)

	var commands []recordedCommand

	backend := newDirectBackend(t, &commands)

	g.Expect(backend.Delete(context.Background(), sampleAgentData())).To(Succeed())

	// The chart is re-templated before deleting.
	g.Expect(commands).To(HaveLen(2))
	g.Expect(commands[0].name).To(Equal("helm"))
	g.Expect(commands[0].args[0]).To(Equal("template"))
	g.Expect(commands[1].name).To(Equal("kubectl"))
	g.Expect(commands[1].args[0]).To(Equal("delete"))
	g.Expect(commands[1].args).To(ContainElement("--ignore-not-found=true"))
}

func TestDirectStatus(t *testing.T) {
	g := NewWithT(t)

	var commands []recordedCommand

	deployment := &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Name: "assistant", Namespace: "team-a"},
		Spec: appsv1.DeploymentSpec{
			Replicas: ptr.To(int32(1)),
		},
		Status: appsv1.DeploymentStatus{
			ReadyReplicas: 1,
		},
	}

	backend := newDirectBackend(t, &commands, deployment)

	status, err := backend.Status(context.Background(), sampleAgentData())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(status["readyReplicas"]).To(Equal(float64(1)))

	missing, err := backend.Status(context.Background(), &AgentData{Namespace: "team-a", Name: "other"})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(missing).To(BeNil())
}
