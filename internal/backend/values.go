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

package backend

import (
	"encoding/json"
	"fmt"
)

type foundationModelConfig struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
}

// agentConfig is the configuration payload rendered into the chart values.
// It ends up in the agent's ConfigMap.
type agentConfig struct {
	Namespace       string                   `json:"namespace"`
	Name            string                   `json:"name"`
	FoundationModel foundationModelConfig    `json:"foundation_model"`
	SystemPrompt    string                   `json:"system_prompt"`
	MaxTokens       int                      `json:"max_tokens"`
	Routes          []map[string]interface{} `json:"routes"`
	Tools           []map[string]interface{} `json:"tools"`
}

func newAgentConfig(data *AgentData) agentConfig {
	routes := data.Routes
	if routes == nil {
		routes = []map[string]interface{}{}
	}

	tools := data.Tools
	if tools == nil {
		tools = []map[string]interface{}{}
	}

	return agentConfig{
		Namespace: data.Namespace,
		Name:      data.Name,
		FoundationModel: foundationModelConfig{
			Name:     data.FoundationModel,
			Endpoint: data.FoundationModelEndpoint,
		},
		SystemPrompt: data.SystemPrompt,
		MaxTokens:    data.MaxTokens,
		Routes:       routes,
		Tools:        tools,
	}
}

// helmValues renders the chart values for an agent deployment: the agent
// name override plus the serialized agent configuration.
func helmValues(data *AgentData) (map[string]string, error) {
	payload, err := json.MarshalIndent(newAgentConfig(data), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("cannot serialize agent config for %q: %w", data.Name, err)
	}

	return map[string]string{
		"nameOverride": data.Name,
		"agentConfig":  string(payload),
	}, nil
}
