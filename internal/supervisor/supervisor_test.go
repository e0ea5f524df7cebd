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

package supervisor

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/client/fake"

	"github.com/linode/ai-operators/internal/k8s"
	"github.com/linode/ai-operators/internal/pipelines"
)

func newTestLoader(objs ...client.Object) *pipelines.Loader {
	scheme := runtime.NewScheme()
	utilruntime.Must(corev1.AddToScheme(scheme))

	fakeClient := fake.NewClientBuilder().WithScheme(scheme).WithObjects(objs...).Build()

	return pipelines.NewLoader(k8s.NewGateway(fakeClient), "ml-operator")
}

func TestConfigRefresherStopsOnShutdown(t *testing.T) {
	g := NewWithT(t)

	loader := newTestLoader(&corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: pipelines.ConfigMapName, Namespace: "ml-operator"},
		Data:       map[string]string{"default": `{"url":"http://example.com/a.yaml"}`},
	})

	refresher := &configRefresher{loader: loader, interval: 5 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- refresher.Start(ctx) }()

	g.Eventually(loader.Loaded, time.Second, time.Millisecond).Should(BeTrue())

	cancel()
	g.Eventually(done, time.Second).Should(Receive(BeNil()))

	g.Expect(loader.Snapshot()).To(HaveKey("default"))
}

func TestPipelineSyncWaitsForFirstSnapshot(t *testing.T) {
	g := NewWithT(t)

	loader := newTestLoader()
	updater := pipelines.NewUpdater(pipelines.NewUploader(nil))

	sync := &pipelineSync{
		loader:         loader,
		updater:        updater,
		downloadConfig: pipelines.DownloadConfig{LocalPath: t.TempDir()},
		interval:       5 * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- sync.Start(ctx) }()

	// Without a first snapshot the loop never starts cycling; shutdown
	// still terminates it promptly.
	cancel()
	g.Eventually(done, time.Second).Should(Receive(BeNil()))
}

func TestPipelineSyncRunsAfterFirstSnapshot(t *testing.T) {
	g := NewWithT(t)

	loader := newTestLoader()
	g.Expect(loader.Refresh(context.Background())).To(Succeed())

	updater := pipelines.NewUpdater(pipelines.NewUploader(nil))

	sync := &pipelineSync{
		loader:         loader,
		updater:        updater,
		downloadConfig: pipelines.DownloadConfig{LocalPath: t.TempDir()},
		interval:       5 * time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- sync.Start(ctx) }()

	// An empty snapshot cycles without work; the loop honors shutdown
	// between iterations.
	time.Sleep(20 * time.Millisecond)
	cancel()

	g.Eventually(done, time.Second).Should(Receive(BeNil()))
}
