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

package pipelines

import (
	"context"
	"fmt"
	"sync"

	"github.com/blang/semver"
	"github.com/drone/envsubst/v2"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/linode/ai-operators/internal/decode"
	"github.com/linode/ai-operators/internal/k8s"
)

// ConfigMapName is the ConfigMap holding the pipeline source entries.
const ConfigMapName = "pipelines"

// Loader maintains the process-wide snapshot of resolved pipeline sources.
// The snapshot is written only by the config refresh loop and read by the
// pipeline sync loop; entries are replaced whole.
type Loader struct {
	gateway   *k8s.Gateway
	namespace string

	mu      sync.RWMutex
	current map[string]SourceConfig
	loaded  bool
}

// NewLoader returns a loader reading from the given namespace.
func NewLoader(gateway *k8s.Gateway, namespace string) *Loader {
	return &Loader{
		gateway:   gateway,
		namespace: namespace,
		current:   map[string]SourceConfig{},
	}
}

// Refresh performs one configuration pass: read the ConfigMap, resolve auth
// secrets, merge resolved entries into the snapshot and evict entries whose
// key disappeared. Entries that fail to parse or resolve are skipped,
// preserving any prior snapshot value.
func (l *Loader) Refresh(ctx context.Context) error {
	log := ctrl.LoggerFrom(ctx).WithName("pipeline-config")

	configMap, err := l.gateway.GetConfigMap(ctx, l.namespace, ConfigMapName)
	if err != nil {
		return fmt.Errorf("failed to read pipeline configuration: %w", err)
	}

	entries := map[string]string{}
	if configMap == nil {
		log.Info("No pipeline configuration set")
	} else {
		entries = configMap.Data
	}

	stored := map[string]StoredSourceConfig{}

	for name, raw := range entries {
		entry := StoredSourceConfig{}
		if err := decode.FromBytes("pipeline source "+name, []byte(raw), &entry); err != nil {
			log.Error(err, "Invalid pipeline configuration", "source", name)
			continue
		}

		if entry.URL == "" || !entry.AuthType.valid() {
			log.Error(fmt.Errorf("missing url or unknown authType"), "Invalid pipeline configuration", "source", name)
			continue
		}

		if entry.Version != "" {
			if _, err := semver.ParseTolerant(entry.Version); err != nil {
				log.Info("Pipeline source version is not a semantic version", "source", name, "version", entry.Version)
			}
		}

		stored[name] = entry
	}

	resolved := l.resolve(ctx, stored)

	l.mu.Lock()
	defer l.mu.Unlock()

	for name, cfg := range resolved {
		l.current[name] = cfg
	}

	for name := range l.current {
		if _, ok := entries[name]; !ok {
			delete(l.current, name)
		}
	}

	l.loaded = true

	return nil
}

// resolve joins stored entries with their auth secrets. Entries without
// auth resolve as-is; entries whose secret or key is unavailable are
// dropped from the result.
func (l *Loader) resolve(ctx context.Context, stored map[string]StoredSourceConfig) map[string]SourceConfig {
	log := ctrl.LoggerFrom(ctx).WithName("pipeline-config")

	secretNames := map[string]struct{}{}

	for _, entry := range stored {
		if entry.AuthType != SourceAuthNone && entry.AuthType != "" && entry.AuthSecretName != "" {
			secretNames[entry.AuthSecretName] = struct{}{}
		}
	}

	secrets := map[string]map[string][]byte{}

	for name := range secretNames {
		secret, err := l.gateway.GetSecret(ctx, l.namespace, name)
		if err != nil {
			log.Error(err, "Failed to read auth secret", "secret", name)
			continue
		}

		if secret != nil {
			secrets[name] = secret.Data
		}
	}

	resolved := map[string]SourceConfig{}

	for name, entry := range stored {
		url, err := envsubst.EvalEnv(entry.URL)
		if err != nil {
			log.Error(err, "Failed to expand source url", "source", name)
			continue
		}

		if entry.AuthType == SourceAuthNone || entry.AuthType == "" {
			resolved[name] = SourceConfig{URL: url, Version: entry.Version, AuthType: SourceAuthNone}
			continue
		}

		if entry.AuthSecretName == "" || entry.AuthSecretKey == "" {
			log.Error(fmt.Errorf("auth secret reference incomplete"),
				"Pipeline source is configured to use authentication, but no secret was provided", "source", name)
			continue
		}

		secret, ok := secrets[entry.AuthSecretName]
		if !ok {
			log.Error(fmt.Errorf("secret %q not available", entry.AuthSecretName), "Skipping pipeline source", "source", name)
			continue
		}

		token, ok := secret[entry.AuthSecretKey]
		if !ok || len(token) == 0 {
			log.Error(fmt.Errorf("key %q not found in secret %q", entry.AuthSecretKey, entry.AuthSecretName),
				"Skipping pipeline source", "source", name)
			continue
		}

		resolved[name] = SourceConfig{
			URL:       url,
			Version:   entry.Version,
			AuthType:  entry.AuthType,
			AuthToken: string(token),
		}
	}

	return resolved
}

// Snapshot returns a copy of the current configuration. Readers take one
// snapshot at the start of a cycle.
func (l *Loader) Snapshot() map[string]SourceConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()

	snapshot := make(map[string]SourceConfig, len(l.current))
	for name, cfg := range l.current {
		snapshot[name] = cfg
	}

	return snapshot
}

// Loaded reports whether a first snapshot has been produced.
func (l *Loader) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.loaded
}
