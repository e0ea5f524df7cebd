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

// Package decode maps external resource payloads onto typed internal
// entities. Decoding is strict: unknown fields and missing required fields
// reject the payload, and encoding a decoded entity restores the original
// mapping.
package decode

import (
	"encoding/json"
	"fmt"

	"sigs.k8s.io/yaml"
)

// Error reports a malformed external payload.
type Error struct {
	Subject string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("cannot decode %s: %v", e.Subject, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// FromMap strictly decodes an external mapping into out. Unknown fields
// fail the decode.
func FromMap(subject string, in map[string]interface{}, out interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return &Error{Subject: subject, Err: err}
	}

	return FromBytes(subject, data, out)
}

// FromBytes strictly decodes a JSON or YAML document into out.
func FromBytes(subject string, data []byte, out interface{}) error {
	if err := yaml.UnmarshalStrict(data, out); err != nil {
		return &Error{Subject: subject, Err: err}
	}

	return nil
}

// ToMap re-encodes an internal entity into its external mapping form.
func ToMap(in interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}

	out := map[string]interface{}{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}

	return out, nil
}
