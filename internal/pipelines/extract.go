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
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// extractFiles extracts the archive at archivePath into pathPrefix and
// returns the written paths in archive order. Only members that are rooted
// inside the prefix and carry a .yaml suffix are extracted; absolute names
// and names containing ".." are rejected silently.
func extractFiles(pathPrefix, archivePath string) ([]string, error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open archive")
	}
	defer reader.Close()

	var written []string

	for _, member := range reader.File {
		if !validMemberName(member.Name) {
			continue
		}

		target := filepath.Join(pathPrefix, filepath.FromSlash(member.Name))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, errors.Wrapf(err, "cannot create directory for %q", member.Name)
		}

		if err := writeMember(member, target); err != nil {
			return nil, err
		}

		written = append(written, target)
	}

	return written, nil
}

func validMemberName(name string) bool {
	return !strings.HasPrefix(name, "/") &&
		!strings.Contains(name, "..") &&
		strings.HasSuffix(name, ".yaml")
}

func writeMember(member *zip.File, target string) error {
	src, err := member.Open()
	if err != nil {
		return errors.Wrapf(err, "cannot read archive member %q", member.Name)
	}
	defer src.Close()

	dst, err := os.Create(target)
	if err != nil {
		return errors.Wrapf(err, "cannot create %q", target)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Wrapf(err, "cannot extract %q", member.Name)
	}

	return nil
}
