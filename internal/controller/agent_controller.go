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

// Package controller implements the reconcile engine for the akamai.io
// custom resources.
package controller

import (
	"context"
	"errors"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/builder"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/controller"
	"sigs.k8s.io/controller-runtime/pkg/controller/controllerutil"
	"sigs.k8s.io/controller-runtime/pkg/predicate"
	"sigs.k8s.io/controller-runtime/pkg/reconcile"

	operatorv1 "github.com/linode/ai-operators/api/v1alpha1"
	"github.com/linode/ai-operators/internal/backend"
	"github.com/linode/ai-operators/internal/k8s"
	"github.com/linode/ai-operators/internal/status"
)

// AgentReconciler drives AkamaiAgent objects through the deployment
// lifecycle. Work is serialized per object by the workqueue; different
// objects reconcile concurrently.
type AgentReconciler struct {
	Client  client.Client
	Gateway *k8s.Gateway
	Backend backend.DeploymentBackend
	Status  *status.Reporter
}

// SetupWithManager sets up the controller with the Manager.
func (r *AgentReconciler) SetupWithManager(mgr ctrl.Manager, options controller.Options) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&operatorv1.AkamaiAgent{}, builder.WithPredicates(predicate.GenerationChangedPredicate{})).
		WithOptions(options).
		Complete(r)
}

func (r *AgentReconciler) Reconcile(ctx context.Context, req reconcile.Request) (ctrl.Result, error) {
	log := ctrl.LoggerFrom(ctx)

	agent := &operatorv1.AkamaiAgent{}
	if err := r.Client.Get(ctx, req.NamespacedName, agent); err != nil {
		if apierrors.IsNotFound(err) {
			return ctrl.Result{}, nil
		}

		return ctrl.Result{}, err
	}

	// Add finalizer first to avoid the race between init and delete. The
	// update does not change the generation, so reconciliation continues in
	// this pass rather than waiting for another event.
	if !controllerutil.ContainsFinalizer(agent, operatorv1.AgentFinalizer) {
		controllerutil.AddFinalizer(agent, operatorv1.AgentFinalizer)

		if err := r.Client.Update(ctx, agent); err != nil {
			return ctrl.Result{}, err
		}
	}

	if !agent.GetDeletionTimestamp().IsZero() {
		return r.reconcileDelete(ctx, agent)
	}

	log.Info("Reconciling agent", "agent", agent.Name, "namespace", agent.Namespace)

	return r.reconcileNormal(ctx, agent)
}

func (r *AgentReconciler) reconcileNormal(ctx context.Context, agent *operatorv1.AkamaiAgent) (ctrl.Result, error) {
	log := ctrl.LoggerFrom(ctx)

	data, err := buildAgentData(ctx, r.Gateway, agent.Namespace, agent.Name, &agent.Spec)
	if err != nil {
		return ctrl.Result{}, r.reportFailure(ctx, agent, err)
	}

	existing, err := r.Backend.Status(ctx, data)
	if err != nil {
		return ctrl.Result{}, r.reportFailure(ctx, agent, err)
	}

	var deploymentID string

	if existing == nil {
		if deploymentID, err = r.Backend.Create(ctx, data); err != nil {
			return ctrl.Result{}, r.reportFailure(ctx, agent, err)
		}

		log.Info("Agent created", "agent", agent.Name, "model", agent.Spec.FoundationModel, "deployment", deploymentID)
	} else {
		if deploymentID, err = r.Backend.Update(ctx, data); err != nil {
			return ctrl.Result{}, r.reportFailure(ctx, agent, err)
		}

		log.Info("Agent updated", "agent", agent.Name, "deployment", deploymentID)
	}

	if err := r.Status.SetDeployed(ctx, agent.Namespace, agent.Name, deploymentID); err != nil {
		return ctrl.Result{}, err
	}

	if err := r.Status.ClearFailed(ctx, agent.Namespace, agent.Name); err != nil {
		return ctrl.Result{}, err
	}

	return ctrl.Result{}, nil
}

func (r *AgentReconciler) reconcileDelete(ctx context.Context, agent *operatorv1.AkamaiAgent) (ctrl.Result, error) {
	log := ctrl.LoggerFrom(ctx)

	log.Info("Deleting agent", "agent", agent.Name, "namespace", agent.Namespace)

	// Deletion needs no endpoint resolution or knowledge base enrichment.
	data := minimalAgentData(agent.Namespace, agent.Name, &agent.Spec)

	if err := r.Backend.Delete(ctx, data); err != nil {
		log.Error(err, "Failed to delete agent", "agent", agent.Name)

		return ctrl.Result{}, err
	}

	controllerutil.RemoveFinalizer(agent, operatorv1.AgentFinalizer)

	return ctrl.Result{}, r.Client.Update(ctx, agent)
}

// reportFailure translates an error into a status update and returns the
// original error so the watcher requeues with its backoff. Knowledge base
// failures route to the knowledge base sub-status.
func (r *AgentReconciler) reportFailure(ctx context.Context, agent *operatorv1.AkamaiAgent, err error) error {
	log := ctrl.LoggerFrom(ctx)

	log.Error(err, "Failed to reconcile agent", "agent", agent.Name)

	var kbErr *KnowledgeBaseError
	if errors.As(err, &kbErr) {
		if serr := r.Status.SetKnowledgeBaseError(ctx, agent.Namespace, agent.Name, err.Error()); serr != nil {
			log.Error(serr, "Failed to record knowledge base error", "agent", agent.Name)
		}

		return err
	}

	if serr := r.Status.SetFailed(ctx, agent.Namespace, agent.Name, err.Error()); serr != nil {
		log.Error(serr, "Failed to record failure", "agent", agent.Name)
	}

	return err
}
