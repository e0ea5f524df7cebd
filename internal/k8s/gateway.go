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

// Package k8s is a thin typed facade over the cluster API for the custom
// objects, core objects and deployments the operator touches. Not-found is
// modeled as absence; every other cluster error surfaces as *ExternalError.
package k8s

import (
	"context"
	"encoding/json"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/labels"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"sigs.k8s.io/controller-runtime/pkg/client"
)

// ExternalError is a non-404 cluster API failure carrying the HTTP status.
type ExternalError struct {
	Op     string
	Status int32
	Err    error
}

func (e *ExternalError) Error() string {
	return fmt.Sprintf("%s failed with status %d: %v", e.Op, e.Status, e.Err)
}

func (e *ExternalError) Unwrap() error { return e.Err }

// IsConflict reports whether err is an ExternalError for an HTTP 409.
func IsConflict(err error) bool {
	return apierrors.IsAlreadyExists(err) || apierrors.IsConflict(err)
}

func wrapExternal(op string, err error) error {
	var status int32
	if s, ok := err.(apierrors.APIStatus); ok {
		status = s.Status().Code
	}

	return &ExternalError{Op: op, Status: status, Err: err}
}

// Gateway wraps a cluster client. The client is shared for the process
// lifetime; every call is stateless at the HTTP layer.
type Gateway struct {
	client client.Client
}

// NewGateway returns a gateway over the given cluster client.
func NewGateway(c client.Client) *Gateway {
	return &Gateway{client: c}
}

func newUnstructured(gvk schema.GroupVersionKind, namespace, name string) *unstructured.Unstructured {
	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(gvk)
	obj.SetNamespace(namespace)
	obj.SetName(name)

	return obj
}

// CreateCustomObject creates a namespaced custom object. Conflicts surface
// as an ExternalError recognizable through IsConflict on its cause.
func (g *Gateway) CreateCustomObject(ctx context.Context, obj *unstructured.Unstructured) error {
	if err := g.client.Create(ctx, obj); err != nil {
		return wrapExternal("create "+obj.GetKind(), err)
	}

	return nil
}

// GetCustomObject reads a namespaced custom object. A missing object yields
// (nil, nil).
func (g *Gateway) GetCustomObject(ctx context.Context, gvk schema.GroupVersionKind, namespace, name string) (*unstructured.Unstructured, error) {
	obj := newUnstructured(gvk, namespace, name)
	if err := g.client.Get(ctx, client.ObjectKey{Namespace: namespace, Name: name}, obj); err != nil {
		if apierrors.IsNotFound(err) {
			return nil, nil
		}

		return nil, wrapExternal("get "+gvk.Kind, err)
	}

	return obj, nil
}

// PatchCustomObject merge-patches a namespaced custom object with the full
// content of obj.
func (g *Gateway) PatchCustomObject(ctx context.Context, obj *unstructured.Unstructured) error {
	body, err := json.Marshal(obj.Object)
	if err != nil {
		return fmt.Errorf("cannot marshal %s patch: %w", obj.GetKind(), err)
	}

	target := newUnstructured(obj.GroupVersionKind(), obj.GetNamespace(), obj.GetName())
	if err := g.client.Patch(ctx, target, client.RawPatch(types.MergePatchType, body)); err != nil {
		return wrapExternal("patch "+obj.GetKind(), err)
	}

	return nil
}

// DeleteCustomObject deletes a namespaced custom object. A missing object is
// not an error.
func (g *Gateway) DeleteCustomObject(ctx context.Context, gvk schema.GroupVersionKind, namespace, name string) error {
	obj := newUnstructured(gvk, namespace, name)
	if err := g.client.Delete(ctx, obj); err != nil {
		if apierrors.IsNotFound(err) {
			return nil
		}

		return wrapExternal("delete "+gvk.Kind, err)
	}

	return nil
}

// PatchCustomObjectStatus merge-patches the status subresource of a custom
// object. statusPatch is the merge document for the status field alone.
func (g *Gateway) PatchCustomObjectStatus(ctx context.Context, gvk schema.GroupVersionKind, namespace, name string, statusPatch []byte) error {
	body, err := json.Marshal(map[string]json.RawMessage{"status": statusPatch})
	if err != nil {
		return fmt.Errorf("cannot assemble status patch: %w", err)
	}

	obj := newUnstructured(gvk, namespace, name)
	if err := g.client.Status().Patch(ctx, obj, client.RawPatch(types.MergePatchType, body)); err != nil {
		return wrapExternal("patch status of "+gvk.Kind, err)
	}

	return nil
}

// ListServices lists Services cluster-wide by label selector.
func (g *Gateway) ListServices(ctx context.Context, selector string) (*corev1.ServiceList, error) {
	parsed, err := labels.Parse(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid service selector %q: %w", selector, err)
	}

	services := &corev1.ServiceList{}
	if err := g.client.List(ctx, services, client.MatchingLabelsSelector{Selector: parsed}); err != nil {
		return nil, wrapExternal("list services", err)
	}

	return services, nil
}

// GetConfigMap reads a ConfigMap. A missing ConfigMap yields (nil, nil).
func (g *Gateway) GetConfigMap(ctx context.Context, namespace, name string) (*corev1.ConfigMap, error) {
	configMap := &corev1.ConfigMap{}
	if err := g.client.Get(ctx, client.ObjectKey{Namespace: namespace, Name: name}, configMap); err != nil {
		if apierrors.IsNotFound(err) {
			return nil, nil
		}

		return nil, wrapExternal("get configmap", err)
	}

	return configMap, nil
}

// GetSecret reads a Secret. A missing Secret yields (nil, nil).
func (g *Gateway) GetSecret(ctx context.Context, namespace, name string) (*corev1.Secret, error) {
	secret := &corev1.Secret{}
	if err := g.client.Get(ctx, client.ObjectKey{Namespace: namespace, Name: name}, secret); err != nil {
		if apierrors.IsNotFound(err) {
			return nil, nil
		}

		return nil, wrapExternal("get secret", err)
	}

	return secret, nil
}

// GetDeployment reads a Deployment. A missing Deployment yields (nil, nil).
func (g *Gateway) GetDeployment(ctx context.Context, namespace, name string) (*appsv1.Deployment, error) {
	deployment := &appsv1.Deployment{}
	if err := g.client.Get(ctx, client.ObjectKey{Namespace: namespace, Name: name}, deployment); err != nil {
		if apierrors.IsNotFound(err) {
			return nil, nil
		}

		return nil, wrapExternal("get deployment", err)
	}

	return deployment, nil
}
