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

// Package status writes the AkamaiAgent status subresource. Every write is
// a merge patch stamped with a lastUpdated timestamp.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	jsonpatch "github.com/evanphx/json-patch/v5"
	ctrl "sigs.k8s.io/controller-runtime"

	operatorv1 "github.com/linode/ai-operators/api/v1alpha1"
	"github.com/linode/ai-operators/internal/k8s"
)

var agentGVK = operatorv1.GroupVersion.WithKind("AkamaiAgent")

// Reporter patches agent statuses through the gateway.
type Reporter struct {
	gateway *k8s.Gateway
	now     func() time.Time
}

// NewReporter returns a status reporter over the given gateway.
func NewReporter(gateway *k8s.Gateway) *Reporter {
	return &Reporter{gateway: gateway, now: time.Now}
}

func (r *Reporter) patch(ctx context.Context, namespace, name string, status map[string]interface{}) error {
	log := ctrl.LoggerFrom(ctx).WithName("status")

	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("cannot marshal status for agent %q: %w", name, err)
	}

	stamp, err := json.Marshal(map[string]string{
		"lastUpdated": r.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("cannot marshal status timestamp: %w", err)
	}

	merged, err := jsonpatch.MergeMergePatches(payload, stamp)
	if err != nil {
		return fmt.Errorf("cannot assemble status patch for agent %q: %w", name, err)
	}

	if err := r.gateway.PatchCustomObjectStatus(ctx, agentGVK, namespace, name, merged); err != nil {
		log.Error(err, "Failed to update agent status", "agent", name, "namespace", namespace)

		return err
	}

	log.Info("Updated agent status", "agent", name, "namespace", namespace)

	return nil
}

func (r *Reporter) condition(conditionType, reason, message string) map[string]interface{} {
	now := r.now().UTC().Format(time.RFC3339)

	return map[string]interface{}{
		"type":               conditionType,
		"status":             "True",
		"reason":             reason,
		"message":            message,
		"lastTransitionTime": now,
		"lastUpdateTime":     now,
	}
}

// SetDeployed marks the agent as deployed with the given deployment id.
func (r *Reporter) SetDeployed(ctx context.Context, namespace, name, deploymentID string) error {
	return r.patch(ctx, namespace, name, map[string]interface{}{
		"phase":        operatorv1.AgentPhaseDeployed,
		"deploymentId": deploymentID,
		"message":      "Agent successfully deployed",
		"conditions": []interface{}{
			r.condition(operatorv1.AgentDeployedCondition, operatorv1.ScheduledReason,
				fmt.Sprintf("Agent successfully deployed with ID: %s", deploymentID)),
		},
	})
}

// ClearFailed resets a previous failure after a successful deployment.
func (r *Reporter) ClearFailed(ctx context.Context, namespace, name string) error {
	return r.patch(ctx, namespace, name, map[string]interface{}{
		"phase":   operatorv1.AgentPhaseDeployed,
		"message": "Agent deployment recovered",
	})
}

// SetFailed marks the agent deployment as failed.
func (r *Reporter) SetFailed(ctx context.Context, namespace, name, errorMessage string) error {
	return r.patch(ctx, namespace, name, map[string]interface{}{
		"phase":   operatorv1.AgentPhaseFailed,
		"message": fmt.Sprintf("Agent deployment failed: %s", errorMessage),
		"error":   errorMessage,
		"conditions": []interface{}{
			r.condition(operatorv1.AgentFailedCondition, operatorv1.DeploymentErrorReason,
				fmt.Sprintf("Agent %s deployment failed: %s", name, errorMessage)),
		},
	})
}

// SetKnowledgeBaseLinked records a successfully linked knowledge base.
func (r *Reporter) SetKnowledgeBaseLinked(ctx context.Context, namespace, name, kbName string) error {
	return r.patch(ctx, namespace, name, map[string]interface{}{
		"knowledgeBase": map[string]interface{}{
			"name":   kbName,
			"status": operatorv1.KnowledgeBaseLinked,
		},
	})
}

// SetKnowledgeBaseError routes a knowledge base failure to the dedicated
// sub-status instead of the generic failure path.
func (r *Reporter) SetKnowledgeBaseError(ctx context.Context, namespace, name, errorMessage string) error {
	return r.patch(ctx, namespace, name, map[string]interface{}{
		"phase": operatorv1.AgentPhaseFailed,
		"knowledgeBase": map[string]interface{}{
			"status": operatorv1.KnowledgeBaseError,
			"error":  errorMessage,
		},
		"message": fmt.Sprintf("Knowledge base error: %s", errorMessage),
		"error":   errorMessage,
	})
}
