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

package shared

import "github.com/steplinehq/stepline/pkg/step"

// LoadRegistry resolves the step registry for a command invocation. With no
// --catalog flag the built-in catalog is used; a catalog file replaces it
// entirely.
func LoadRegistry() (step.Registry, error) {
	if path := GetCatalogPath(); path != "" {
		return step.LoadCatalog(path)
	}
	return BuiltinRegistry(), nil
}

// BuiltinRegistry registers the step classes shipped in sdk/steps.
func BuiltinRegistry() *step.StaticRegistry {
	return step.NewStaticRegistry(map[string]step.Kind{
		"PostgresQuery": "database",
		"SlackMessage":  "notification",
		"HTTPRequest":   "http",
	})
}
