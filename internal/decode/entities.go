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

package decode

import "fmt"

// AgentSpec is the decoded form of an AkamaiAgent spec mapping.
type AgentSpec struct {
	FoundationModel   string                   `json:"foundationModel"`
	SystemPrompt      string                   `json:"systemPrompt,omitempty"`
	AgentInstructions string                   `json:"agentInstructions,omitempty"`
	MaxTokens         *int                     `json:"maxTokens,omitempty"`
	Routes            []map[string]interface{} `json:"routes,omitempty"`
	Tools             []map[string]interface{} `json:"tools,omitempty"`
}

// AgentSpecFrom decodes and validates an external agent spec mapping.
func AgentSpecFrom(in map[string]interface{}) (*AgentSpec, error) {
	spec := &AgentSpec{}
	if err := FromMap("agent spec", in, spec); err != nil {
		return nil, err
	}

	if spec.FoundationModel == "" {
		return nil, &Error{Subject: "agent spec", Err: fmt.Errorf("foundationModel is required")}
	}

	if spec.SystemPrompt == "" && spec.AgentInstructions == "" {
		return nil, &Error{Subject: "agent spec", Err: fmt.Errorf("one of systemPrompt or agentInstructions is required")}
	}

	if spec.MaxTokens != nil && *spec.MaxTokens <= 0 {
		return nil, &Error{Subject: "agent spec", Err: fmt.Errorf("maxTokens must be positive")}
	}

	return spec, nil
}

// Encode restores the external mapping form of the spec.
func (s *AgentSpec) Encode() (map[string]interface{}, error) {
	return ToMap(s)
}

// Instructions returns the agent instructions from whichever field is set.
func (s *AgentSpec) Instructions() string {
	if s.SystemPrompt != "" {
		return s.SystemPrompt
	}

	return s.AgentInstructions
}

// KnowledgeBaseSpec is the decoded form of an AkamaiKnowledgeBase spec mapping.
type KnowledgeBaseSpec struct {
	PipelineName       string                 `json:"pipelineName"`
	PipelineParameters map[string]interface{} `json:"pipelineParameters"`
}

// KnowledgeBaseSpecFrom decodes and validates an external knowledge base
// spec mapping.
func KnowledgeBaseSpecFrom(in map[string]interface{}) (*KnowledgeBaseSpec, error) {
	spec := &KnowledgeBaseSpec{}
	if err := FromMap("knowledge base spec", in, spec); err != nil {
		return nil, err
	}

	if spec.PipelineName == "" {
		return nil, &Error{Subject: "knowledge base spec", Err: fmt.Errorf("pipelineName is required")}
	}

	if spec.PipelineParameters == nil {
		return nil, &Error{Subject: "knowledge base spec", Err: fmt.Errorf("pipelineParameters is required")}
	}

	return spec, nil
}

// Encode restores the external mapping form of the spec.
func (s *KnowledgeBaseSpec) Encode() (map[string]interface{}, error) {
	return ToMap(s)
}

// ConfigMapping flattens the knowledge base into the config mapping embedded
// into knowledgeBase-typed tools: pipeline_name plus all pipeline parameters.
func (s *KnowledgeBaseSpec) ConfigMapping() map[string]interface{} {
	config := map[string]interface{}{
		"pipeline_name": s.PipelineName,
	}

	for k, v := range s.PipelineParameters {
		config[k] = v
	}

	return config
}
