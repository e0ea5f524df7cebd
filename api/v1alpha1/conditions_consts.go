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

package v1alpha1

const (
	// AgentDeployedCondition documents an agent whose backing workload has
	// been created or updated by the deployment backend.
	AgentDeployedCondition = "AgentDeployed"

	// AgentFailedCondition documents an agent whose deployment failed.
	AgentFailedCondition = "AgentFailed"

	// ScheduledReason documents that the backend accepted the workload.
	ScheduledReason = "Scheduled"

	// DeploymentErrorReason documents that the backend rejected the workload.
	DeploymentErrorReason = "DeploymentError"
)
