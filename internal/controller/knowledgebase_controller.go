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
	"encoding/json"
	"fmt"
	"time"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	operatorv1 "github.com/linode/ai-operators/api/v1alpha1"
	"github.com/linode/ai-operators/internal/decode"
	"github.com/linode/ai-operators/internal/kubeflow"
)

// Knowledge base phases recorded in the status subresource.
const (
	kbPhaseRunning   = "Running"
	kbPhaseCompleted = "Completed"
	kbPhaseFailed    = "Failed"
)

// KnowledgeBaseReconciler starts an indexing pipeline run for every spec
// change of an AkamaiKnowledgeBase and awaits its completion.
type KnowledgeBaseReconciler struct {
	Client    client.Client
	Pipelines kubeflow.Client

	// RunTimeout bounds the completion wait per run.
	RunTimeout time.Duration
}

// SetupWithManager sets up the controller with the Manager.
func (r *KnowledgeBaseReconciler) SetupWithManager(mgr ctrl.Manager, options controller.Options) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&operatorv1.AkamaiKnowledgeBase{}).
		WithOptions(options).
		Complete(r)
}

func (r *KnowledgeBaseReconciler) Reconcile(ctx context.Context, req reconcile.Request) (ctrl.Result, error) {
	log := ctrl.LoggerFrom(ctx)

	kb := &operatorv1.AkamaiKnowledgeBase{}
	if err := r.Client.Get(ctx, req.NamespacedName, kb); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}

		return ctrl.Result{}, err
	}

	if !controllerutil.ContainsFinalizer(kb, operatorv1.KnowledgeBaseFinalizer) {
		controllerutil.AddFinalizer(kb, operatorv1.KnowledgeBaseFinalizer)

		return ctrl.Result{}, r.Client.Update(ctx, kb)
	}

	if !kb.GetDeletionTimestamp().IsZero() {
		// Running pipelines are not stopped and downstream resources are
		// not archived on delete.
		log.Info("Knowledge base deleted", "knowledgebase", kb.Name, "namespace", kb.Namespace)

		controllerutil.RemoveFinalizer(kb, operatorv1.KnowledgeBaseFinalizer)

		return ctrl.Result{}, r.Client.Update(ctx, kb)
	}

	if kb.Status.ObservedGeneration == kb.Generation {
		return ctrl.Result{}, nil
	}

	return r.reconcileRun(ctx, kb)
}

func (r *KnowledgeBaseReconciler) reconcileRun(ctx context.Context, kb *operatorv1.AkamaiKnowledgeBase) (ctrl.Result, error) {
	log := ctrl.LoggerFrom(ctx)

	spec, err := knowledgeBaseSpec(kb)
	if err != nil {
		return ctrl.Result{}, err
	}

	jobName := fmt.Sprintf("%s-%s-%s", kb.Name, kb.Namespace, time.Now().UTC().Format("20060102-150405"))

	runID, err := r.Pipelines.RunPipeline(ctx, jobName, spec.PipelineName, spec.PipelineParameters)
	if err != nil {
		log.Error(err, "Failed to start embedding pipeline", "knowledgebase", kb.Name, "namespace", kb.Namespace)

		return ctrl.Result{}, err
	}

	log.Info("Started embedding pipeline", "knowledgebase", kb.Name, "namespace", kb.Namespace, "run", runID)

	r.recordRun(ctx, kb, runID, kbPhaseRunning)

	result, err := r.Pipelines.WaitForRunCompletion(ctx, runID, r.RunTimeout)
	if err != nil {
		log.Error(err, "Pipeline failed", "knowledgebase", kb.Name, "run", runID)
		r.recordRun(ctx, kb, runID, kbPhaseFailed)

		return ctrl.Result{}, err
	}

	log.Info("Pipeline completed", "knowledgebase", kb.Name, "run", runID, "state", result.State)

	r.recordRun(ctx, kb, runID, kbPhaseCompleted)

	return ctrl.Result{}, nil
}

// recordRun updates the status subresource; failures to do so are logged
// and do not fail the reconcile.
func (r *KnowledgeBaseReconciler) recordRun(ctx context.Context, kb *operatorv1.AkamaiKnowledgeBase, runID, phase string) {
	kb.Status.LastRunID = runID
	kb.Status.Phase = phase
	kb.Status.ObservedGeneration = kb.Generation
	kb.Status.LastUpdated = metav1.Now()

	if err := r.Client.Status().Update(ctx, kb); err != nil {
		ctrl.LoggerFrom(ctx).Error(err, "Failed to update knowledge base status", "knowledgebase", kb.Name)
	}
}

// knowledgeBaseSpec decodes the typed spec into the internal entity,
// validating required fields.
func knowledgeBaseSpec(kb *operatorv1.AkamaiKnowledgeBase) (*decode.KnowledgeBaseSpec, error) {
	parameters := map[string]interface{}{}
	if len(kb.Spec.PipelineParameters.Raw) > 0 {
		if err := json.Unmarshal(kb.Spec.PipelineParameters.Raw, &parameters); err != nil {
			return nil, &decode.Error{Subject: "knowledge base spec", Err: err}
		}
	}

	return decode.KnowledgeBaseSpecFrom(map[string]interface{}{
		"pipelineName":       kb.Spec.PipelineName,
		"pipelineParameters": parameters,
	})
}
