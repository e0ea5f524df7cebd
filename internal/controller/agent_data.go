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
	"strings"

	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"

	operatorv1 "github.com/linode/ai-operators/api/v1alpha1"
	"github.com/linode/ai-operators/internal/backend"
	"github.com/linode/ai-operators/internal/decode"
	"github.com/linode/ai-operators/internal/k8s"
)

var knowledgeBaseGVK = operatorv1.GroupVersion.WithKind("AkamaiKnowledgeBase")

const knowledgeBaseToolType = "knowledgeBase"

// KnowledgeBaseError tags failures resolving an agent's knowledge base so
// the reconcile engine routes them to the knowledge base sub-status.
type KnowledgeBaseError struct {
	Name string
	Err  error
}

func (e *KnowledgeBaseError) Error() string {
	return fmt.Sprintf("Knowledge base %q: %v", e.Name, e.Err)
}

func (e *KnowledgeBaseError) Unwrap() error { return e.Err }

// normalizeToolName rewrites hyphen-form tool names to underscore-form, as
// required by the agent runtime.
func normalizeToolName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

func toolMappings(tools []apiextensionsv1.JSON) ([]map[string]interface{}, error) {
	mappings := make([]map[string]interface{}, 0, len(tools))

	for _, tool := range tools {
		mapping := map[string]interface{}{}
		if err := json.Unmarshal(tool.Raw, &mapping); err != nil {
			return nil, &decode.Error{Subject: "agent tool", Err: err}
		}

		mappings = append(mappings, mapping)
	}

	return mappings, nil
}

// buildAgentData creates the enriched deployment input for an agent: tool
// names are normalized, knowledgeBase-typed tools are joined with their
// resolved knowledge base configuration and the foundation model endpoint
// is discovered from service labels.
func buildAgentData(ctx context.Context, gateway *k8s.Gateway, namespace, name string, spec *operatorv1.AkamaiAgentSpec) (*backend.AgentData, error) {
	routes, err := toolMappings(spec.Routes)
	if err != nil {
		return nil, err
	}

	rawTools, err := toolMappings(spec.Tools)
	if err != nil {
		return nil, err
	}

	tools := make([]map[string]interface{}, 0, len(rawTools))

	for _, tool := range rawTools {
		toolCopy := map[string]interface{}{}
		for k, v := range tool {
			toolCopy[k] = v
		}

		kbName, _ := tool["name"].(string)

		if toolName, ok := toolCopy["name"].(string); ok {
			toolCopy["name"] = normalizeToolName(toolName)
		}

		if toolType, _ := tool["type"].(string); toolType == knowledgeBaseToolType && kbName != "" {
			kbData, err := fetchKnowledgeBaseData(ctx, gateway, namespace, kbName)
			if err != nil {
				return nil, err
			}

			toolCopy["config"] = kbData.ConfigMapping()
		}

		tools = append(tools, toolCopy)
	}

	endpoint, err := foundationModelEndpoint(ctx, gateway, spec.FoundationModel)
	if err != nil {
		return nil, err
	}

	return &backend.AgentData{
		Namespace:               namespace,
		Name:                    name,
		FoundationModel:         spec.FoundationModel,
		FoundationModelEndpoint: endpoint,
		SystemPrompt:            spec.Instructions(),
		MaxTokens:               spec.TokenBudget(),
		Routes:                  routes,
		Tools:                   tools,
	}, nil
}

// minimalAgentData builds the deletion input: no endpoint resolution, no
// routes or tools.
func minimalAgentData(namespace, name string, spec *operatorv1.AkamaiAgentSpec) *backend.AgentData {
	return &backend.AgentData{
		Namespace:       namespace,
		Name:            name,
		FoundationModel: spec.FoundationModel,
		SystemPrompt:    spec.Instructions(),
		MaxTokens:       spec.TokenBudget(),
		Routes:          []map[string]interface{}{},
		Tools:           []map[string]interface{}{},
	}
}

// fetchKnowledgeBaseData reads and decodes the knowledge base referenced by
// a tool. Failures are tagged as KnowledgeBaseError.
func fetchKnowledgeBaseData(ctx context.Context, gateway *k8s.Gateway, namespace, kbName string) (*backend.KBData, error) {
	obj, err := gateway.GetCustomObject(ctx, knowledgeBaseGVK, namespace, kbName)
	if err != nil {
		return nil, &KnowledgeBaseError{Name: kbName, Err: err}
	}

	if obj == nil {
		return nil, &KnowledgeBaseError{Name: kbName, Err: fmt.Errorf("not found in namespace %q", namespace)}
	}

	specMap, _, err := unstructuredSpec(obj.Object)
	if err != nil {
		return nil, &KnowledgeBaseError{Name: kbName, Err: err}
	}

	kbSpec, err := decode.KnowledgeBaseSpecFrom(specMap)
	if err != nil {
		return nil, &KnowledgeBaseError{Name: kbName, Err: err}
	}

	return &backend.KBData{
		Name:               kbName,
		PipelineName:       kbSpec.PipelineName,
		PipelineParameters: kbSpec.PipelineParameters,
	}, nil
}

func unstructuredSpec(obj map[string]interface{}) (map[string]interface{}, bool, error) {
	raw, ok := obj["spec"]
	if !ok {
		return map[string]interface{}{}, false, nil
	}

	spec, ok := raw.(map[string]interface{})
	if !ok {
		return nil, false, fmt.Errorf("spec is not a mapping")
	}

	return spec, true, nil
}

// foundationModelEndpoint discovers the model endpoint from services
// labeled modelType,modelName=<model>.
func foundationModelEndpoint(ctx context.Context, gateway *k8s.Gateway, model string) (string, error) {
	services, err := gateway.ListServices(ctx, "modelType,modelName="+model)
	if err != nil {
		return "", err
	}

	if len(services.Items) == 0 {
		return "", fmt.Errorf("foundation model %q not found: no service with labels modelType,modelName=%s", model, model)
	}

	service := services.Items[0]

	return fmt.Sprintf("%s.%s.svc.cluster.local", service.Name, service.Namespace), nil
}
