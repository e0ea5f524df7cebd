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
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// KnowledgeBaseFinalizer is added to AkamaiKnowledgeBase objects so the
// delete path runs before the object is removed from the cluster.
const KnowledgeBaseFinalizer = "knowledgebase.akamai.io"

// AkamaiKnowledgeBaseSpec is the desired state of a knowledge base.
type AkamaiKnowledgeBaseSpec struct {
	// PipelineName names the indexing pipeline registered with the
	// downstream pipeline service.
	PipelineName string `json:"pipelineName"`

	// PipelineParameters are passed verbatim to each pipeline run.
	PipelineParameters apiextensionsv1.JSON `json:"pipelineParameters"`
}

// AkamaiKnowledgeBaseStatus is the observed state of a knowledge base.
type AkamaiKnowledgeBaseStatus struct {
	// LastRunID identifies the most recently started pipeline run.
	// +optional
	LastRunID string `json:"lastRunId,omitempty"`

	// +optional
	Phase string `json:"phase,omitempty"`

	// ObservedGeneration is the spec generation the last pipeline run was
	// started for. Unchanged generations do not start new runs.
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`

	// +optional
	LastUpdated metav1.Time `json:"lastUpdated,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:resource:shortName=kb
// +kubebuilder:subresource:status

// AkamaiKnowledgeBase is the Schema for the akamaiknowledgebases API.
type AkamaiKnowledgeBase struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec   AkamaiKnowledgeBaseSpec   `json:"spec,omitempty"`
	Status AkamaiKnowledgeBaseStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// AkamaiKnowledgeBaseList contains a list of AkamaiKnowledgeBase.
type AkamaiKnowledgeBaseList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []AkamaiKnowledgeBase `json:"items"`
}

func init() {
	SchemeBuilder.Register(&AkamaiKnowledgeBase{}, &AkamaiKnowledgeBaseList{})
}
