// Copyright 2025 Stepline Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package step

import (
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/steplinehq/stepline/pkg/errors"
)

// Registry is the catalog of step classes the platform knows how to run.
// The analyzers consume it; the platform supplies it.
type Registry interface {
	// IsKnown reports whether className is a registered step class.
	IsKnown(className string) bool

	// Kind returns the registered kind for className.
	Kind(className string) (Kind, bool)
}

// StaticRegistry is a map-backed Registry. Safe for concurrent use.
type StaticRegistry struct {
	mu      sync.RWMutex
	classes map[string]Kind
}

// NewStaticRegistry creates a registry preloaded with the given classes.
func NewStaticRegistry(classes map[string]Kind) *StaticRegistry {
	r := &StaticRegistry{classes: make(map[string]Kind, len(classes))}
	for name, kind := range classes {
		r.classes[name] = kind
	}
	return r
}

// Register adds or replaces a step class.
func (r *StaticRegistry) Register(className string, kind Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.classes[className] = kind
}

// IsKnown implements Registry.
func (r *StaticRegistry) IsKnown(className string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.classes[className]
	return ok
}

// Kind implements Registry.
func (r *StaticRegistry) Kind(className string) (Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kind, ok := r.classes[className]
	return kind, ok
}

// Classes returns the registered class names in sorted order.
func (r *StaticRegistry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// catalogFile is the YAML shape of a step catalog:
//
//	steps:
//	  SlackMessage: integration
//	  PostgresQuery: query
type catalogFile struct {
	Steps map[string]Kind `yaml:"steps"`
}

// LoadCatalog reads a YAML step catalog into a StaticRegistry.
func LoadCatalog(path string) (*StaticRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errors.ConfigError{Key: "catalog", Reason: "reading step catalog", Cause: err}
	}
	return ParseCatalog(data)
}

// ParseCatalog parses YAML catalog bytes into a StaticRegistry.
func ParseCatalog(data []byte) (*StaticRegistry, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &errors.ConfigError{Key: "catalog", Reason: "parsing step catalog", Cause: err}
	}
	if len(file.Steps) == 0 {
		return nil, &errors.ConfigError{Key: "catalog", Reason: "step catalog declares no steps"}
	}
	return NewStaticRegistry(file.Steps), nil
}
