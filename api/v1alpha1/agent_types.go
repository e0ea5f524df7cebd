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

import (
	corev1 "k8s.io/api/core/v1"
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	// AgentFinalizer is added to AkamaiAgent objects so backend resources are
	// torn down before the object is removed from the cluster.
	AgentFinalizer = "agent.akamai.io"

	// DefaultMaxTokens is applied when the spec does not set maxTokens.
	DefaultMaxTokens = 512
)

// Agent phases reported through the status subresource.
const (
	AgentPhaseDeployed = "Deployed"
	AgentPhaseFailed   = "Failed"
)

// Knowledge base link states reported through the agent status subresource.
const (
	KnowledgeBaseLinked = "Linked"
	KnowledgeBaseError  = "Error"
)

// AkamaiAgentSpec is the desired state of an agent deployment.
type AkamaiAgentSpec struct {
	// FoundationModel names the model backing the agent. The endpoint is
	// discovered from a Service labeled modelType,modelName=<value>.
	FoundationModel string `json:"foundationModel"`

	// SystemPrompt holds the agent instructions. Exactly one of SystemPrompt
	// or AgentInstructions must be set.
	// +optional
	SystemPrompt string `json:"systemPrompt,omitempty"`

	// AgentInstructions is an alternative key for the agent instructions.
	// +optional
	AgentInstructions string `json:"agentInstructions,omitempty"`

	// MaxTokens bounds the token budget per completion. Defaults to 512.
	// +optional
	// +kubebuilder:validation:Minimum=1
	MaxTokens *int `json:"maxTokens,omitempty"`

	// Routes are opaque routing rules passed through to the agent runtime.
	// +optional
	Routes []apiextensionsv1.JSON `json:"routes,omitempty"`

	// Tools are opaque tool definitions. Each carries at least `type` and
	// `name`; knowledgeBase-typed tools are enriched with the resolved
	// knowledge base configuration at deployment time.
	// +optional
	Tools []apiextensionsv1.JSON `json:"tools,omitempty"`
}

// KnowledgeBaseReference is the knowledge base sub-status on an agent.
type KnowledgeBaseReference struct {
	// +optional
	Name string `json:"name,omitempty"`

	// Status is either Linked or Error.
	Status string `json:"status"`

	// +optional
	Error string `json:"error,omitempty"`
}

// Condition describes one aspect of the agent deployment state.
type Condition struct {
	Type    string                 `json:"type"`
	Status  corev1.ConditionStatus `json:"status"`
	Reason  string                 `json:"reason"`
	Message string                 `json:"message"`

	// +optional
	LastTransitionTime metav1.Time `json:"lastTransitionTime,omitempty"`

	// +optional
	LastUpdateTime metav1.Time `json:"lastUpdateTime,omitempty"`
}

// AkamaiAgentStatus is the observed state of an agent deployment. It is
// written exclusively through merge patches on the status subresource.
type AkamaiAgentStatus struct {
	// +optional
	Phase string `json:"phase,omitempty"`

	// DeploymentID identifies the backing workload created by the
	// deployment backend.
	// +optional
	DeploymentID string `json:"deploymentId,omitempty"`

	// +optional
	Message string `json:"message,omitempty"`

	// +optional
	Error string `json:"error,omitempty"`

	// +optional
	KnowledgeBase *KnowledgeBaseReference `json:"knowledgeBase,omitempty"`

	// LastUpdated is stamped by the status reporter on every patch.
	// +optional
	LastUpdated metav1.Time `json:"lastUpdated,omitempty"`

	// +optional
	Conditions []Condition `json:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:resource:shortName=agent
// +kubebuilder:subresource:status

// AkamaiAgent is the Schema for the akamaiagents API.
type AkamaiAgent struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   AkamaiAgentSpec   `json:"spec,omitempty"`
	Status AkamaiAgentStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// AkamaiAgentList contains a list of AkamaiAgent.
type AkamaiAgentList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []AkamaiAgent `json:"items"`
}

// Instructions returns the agent instructions from whichever spec field is set.
func (s *AkamaiAgentSpec) Instructions() string {
	if s.SystemPrompt != "" {
		return s.SystemPrompt
	}

	return s.AgentInstructions
}

// TokenBudget returns maxTokens with the default applied.
func (s *AkamaiAgentSpec) TokenBudget() int {
	if s.MaxTokens != nil {
		return *s.MaxTokens
	}

	return DefaultMaxTokens
}

func init() {
	SchemeBuilder.Register(&AkamaiAgent{}, &AkamaiAgentList{})
}
