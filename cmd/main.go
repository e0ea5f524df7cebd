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

package main

import (
	"flag"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/klog/v2"
	"k8s.io/klog/v2/textlogger"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/cache"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/healthz"
	metricsserver "sigs.k8s.io/controller-runtime/pkg/metrics/server"

	operatorv1 "github.com/linode/ai-operators/api/v1alpha1"
	"github.com/linode/ai-operators/internal/backend"
	"github.com/linode/ai-operators/internal/config"
	operatorcontroller "github.com/linode/ai-operators/internal/controller"
	"github.com/linode/ai-operators/internal/k8s"
	"github.com/linode/ai-operators/internal/kubeflow"
	"github.com/linode/ai-operators/internal/pipelines"
	"github.com/linode/ai-operators/internal/status"
	"github.com/linode/ai-operators/internal/supervisor"
)

var (
	scheme   = runtime.NewScheme()
	setupLog = ctrl.Log.WithName("setup")

	// flags.
	enableLeaderElection        bool
	leaderElectionLeaseDuration time.Duration
	leaderElectionRenewDeadline time.Duration
	leaderElectionRetryPeriod   time.Duration
	concurrencyNumber           int
	syncPeriod                  time.Duration
	metricsBindAddress          string
	healthAddr                  string
)

func init() {
	klog.InitFlags(nil)

	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(operatorv1.AddToScheme(scheme))
}

// InitFlags initializes the flags.
func InitFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&enableLeaderElection, "leader-elect", false,
		"Enable leader election for controller manager. Enabling this will ensure there is only one active controller manager.")

	fs.DurationVar(&leaderElectionLeaseDuration, "leader-elect-lease-duration", 15*time.Second,
		"Interval at which non-leader candidates will wait to force acquire leadership (duration string)")

	fs.DurationVar(&leaderElectionRenewDeadline, "leader-elect-renew-deadline", 10*time.Second,
		"Duration that the leading controller manager will retry refreshing leadership before giving up (duration string)")

	fs.DurationVar(&leaderElectionRetryPeriod, "leader-elect-retry-period", 2*time.Second,
		"Duration the LeaderElector clients should wait between tries of actions (duration string)")

	fs.IntVar(&concurrencyNumber, "concurrency", 1,
		"Number of custom resources to process simultaneously")

	fs.DurationVar(&syncPeriod, "sync-period", 10*time.Minute,
		"The minimum interval at which watched resources are reconciled (e.g. 15m)")

	fs.StringVar(&metricsBindAddress, "metrics-bind-address", ":8080",
		"The address the metric endpoint binds to.")

	fs.StringVar(&healthAddr, "health-addr", ":9440",
		"The address the health endpoint binds to.")
}

func main() {
	InitFlags(pflag.CommandLine)
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	pflag.Parse()

	ctrl.SetLogger(textlogger.NewLogger(textlogger.NewConfig()))

	cfg := config.New()
	restConfig := ctrl.GetConfigOrDie()

	var watchNamespaces map[string]cache.Config
	if len(cfg.WatchNamespaces) > 0 {
		watchNamespaces = map[string]cache.Config{}
		for _, ns := range cfg.WatchNamespaces {
			watchNamespaces[ns] = cache.Config{}
		}
	}

	ctrlOptions := ctrl.Options{
		Scheme:                 scheme,
		LeaderElection:         enableLeaderElection,
		LeaderElectionID:       "controller-leader-election-ai-operator",
		LeaseDuration:          &leaderElectionLeaseDuration,
		RenewDeadline:          &leaderElectionRenewDeadline,
		RetryPeriod:            &leaderElectionRetryPeriod,
		HealthProbeBindAddress: healthAddr,
		Metrics: metricsserver.Options{
			BindAddress: metricsBindAddress,
		},
		Cache: cache.Options{
			DefaultNamespaces: watchNamespaces,
			SyncPeriod:        &syncPeriod,
		},
		Client: client.Options{
			Cache: &client.CacheOptions{
				DisableFor: []client.Object{
					&corev1.ConfigMap{},
					&corev1.Secret{},
				},
			},
		},
	}

	mgr, err := ctrl.NewManager(restConfig, ctrlOptions)
	if err != nil {
		setupLog.Error(err, "unable to start manager")
		os.Exit(1)
	}

	ctx := ctrl.SetupSignalHandler()

	gateway := k8s.NewGateway(mgr.GetClient())
	pipelineService := kubeflow.NewClient(cfg.KubeflowEndpoint)

	setupChecks(mgr)
	setupReconcilers(mgr, cfg, gateway, pipelineService)
	setupSupervisor(mgr, cfg, gateway, pipelineService)

	setupLog.Info("starting manager", "provider", cfg.Provider, "watchNamespaces", cfg.WatchNamespaces)

	if err := mgr.Start(ctx); err != nil {
		setupLog.Error(err, "problem running manager")
		os.Exit(1)
	}
}

func setupChecks(mgr ctrl.Manager) {
	if err := mgr.AddReadyzCheck("ping", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to create ready check")
		os.Exit(1)
	}

	if err := mgr.AddHealthzCheck("ping", healthz.Ping); err != nil {
		setupLog.Error(err, "unable to create health check")
		os.Exit(1)
	}
}

func setupReconcilers(mgr ctrl.Manager, cfg *config.Config, gateway *k8s.Gateway, pipelineService kubeflow.Client) {
	if err := (&operatorcontroller.AgentReconciler{
		Client:  mgr.GetClient(),
		Gateway: gateway,
		Backend: backend.New(cfg, gateway),
		Status:  status.NewReporter(gateway),
	}).SetupWithManager(mgr, concurrency(concurrencyNumber)); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "AkamaiAgent")
		os.Exit(1)
	}

	if err := (&operatorcontroller.KnowledgeBaseReconciler{
		Client:     mgr.GetClient(),
		Pipelines:  pipelineService,
		RunTimeout: cfg.PipelineRunTimeout,
	}).SetupWithManager(mgr, concurrency(concurrencyNumber)); err != nil {
		setupLog.Error(err, "unable to create controller", "controller", "AkamaiKnowledgeBase")
		os.Exit(1)
	}
}

func setupSupervisor(mgr ctrl.Manager, cfg *config.Config, gateway *k8s.Gateway, pipelineService kubeflow.Client) {
	loader := pipelines.NewLoader(gateway, cfg.Namespace)
	updater := pipelines.NewUpdater(pipelines.NewUploader(pipelineService))

	if err := (&supervisor.Supervisor{
		Config:  cfg,
		Loader:  loader,
		Updater: updater,
		DownloadConfig: pipelines.DownloadConfig{
			LocalPath: filepath.Join(cfg.PipelineSourceRoot, "pipeline-sources"),
		},
	}).SetupWithManager(mgr); err != nil {
		setupLog.Error(err, "unable to set up background loops")
		os.Exit(1)
	}
}

func concurrency(c int) controller.Options {
	return controller.Options{MaxConcurrentReconciles: c}
}
