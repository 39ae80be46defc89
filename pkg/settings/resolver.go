/*
Copyright 2021 Stefan Prodan

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

package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"filippo.io/age"
)

// Extensions lists the definition file extensions in lookup order.
var Extensions = []string{".yaml", ".yml", ".json"}

const encryptedExt = ".age"

// ErrNotFound is returned when a namespace has no definition on disk.
var ErrNotFound = errors.New("settings not found")

// Environment is the deployment context merged into every definition.
type Environment struct {
	// Name selects the '<root>/env/<name>' overlay directory.
	Name string

	// Vars are substituted for '${VAR}' references before the process environment.
	Vars map[string]string
}

// Resolver loads resource definitions from a directory tree.
//
// A definition for the namespace 'databases/content' is read from
// '<root>/databases/content.yaml' and the top-level properties of
// '<root>/env/<env>/databases/content.yaml' are applied on top.
// Files ending in '.age' are decrypted with the resolver identities.
type Resolver struct {
	Root        string
	Environment Environment
	Identities  []age.Identity
}

// NewResolver returns a Resolver for the given root directory and environment.
func NewResolver(root string, env Environment, identities []age.Identity) *Resolver {
	return &Resolver{
		Root:        root,
		Environment: env,
		Identities:  identities,
	}
}

// Resolve loads the definition registered under namespace.
func (r *Resolver) Resolve(namespace string) (*Settings, error) {
	base, baseFound, err := r.read(filepath.Join(r.Root, filepath.FromSlash(namespace)))
	if err != nil {
		return nil, err
	}

	overlay, overlayFound := New(), false
	if dir := r.envDir(); dir != "" {
		overlay, overlayFound, err = r.read(filepath.Join(dir, filepath.FromSlash(namespace)))
		if err != nil {
			return nil, err
		}
	}

	if !baseFound && !overlayFound {
		return nil, fmt.Errorf("%s: %w", namespace, ErrNotFound)
	}

	return base.Merge(overlay), nil
}

// List returns the sorted names of the definitions registered under namespace.
func (r *Resolver) List(namespace string) ([]string, error) {
	dirs := []string{filepath.Join(r.Root, filepath.FromSlash(namespace))}
	if dir := r.envDir(); dir != "" {
		dirs = append(dirs, filepath.Join(dir, filepath.FromSlash(namespace)))
	}

	seen := map[string]struct{}{}
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if name, ok := definitionName(entry.Name()); ok {
				seen[name] = struct{}{}
			}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *Resolver) envDir() string {
	if r.Environment.Name == "" {
		return ""
	}
	return filepath.Join(r.Root, "env", r.Environment.Name)
}

func (r *Resolver) read(base string) (*Settings, bool, error) {
	for _, ext := range Extensions {
		for _, file := range []string{base + ext, base + ext + encryptedExt} {
			data, err := os.ReadFile(file)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					continue
				}
				return nil, false, err
			}

			if strings.HasSuffix(file, encryptedExt) {
				data, err = decrypt(data, r.Identities)
				if err != nil {
					return nil, false, fmt.Errorf("decrypting %s failed, error: %w", file, err)
				}
			}

			s, err := Parse([]byte(r.expand(string(data))))
			if err != nil {
				return nil, false, fmt.Errorf("parsing %s failed, error: %w", file, err)
			}
			return s, true, nil
		}
	}
	return New(), false, nil
}

var varRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expand substitutes '${VAR}' references, unknown references are kept as is.
func (r *Resolver) expand(data string) string {
	return varRef.ReplaceAllStringFunc(data, func(ref string) string {
		key := ref[2 : len(ref)-1]
		if v, ok := r.Environment.Vars[key]; ok {
			return v
		}
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return ref
	})
}

func definitionName(file string) (string, bool) {
	file = strings.TrimSuffix(file, encryptedExt)
	for _, ext := range Extensions {
		if strings.HasSuffix(file, ext) {
			return strings.TrimSuffix(file, ext), true
		}
	}
	return "", false
}
