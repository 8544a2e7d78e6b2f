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

package lint

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steplinehq/stepline/pkg/step"
)

func testRegistry() step.Registry {
	return step.NewStaticRegistry(map[string]step.Kind{
		"PostgresQuery": "database",
		"SlackMessage":  "notification",
		"HTTPRequest":   "http",
	})
}

// wrap builds a workflow source around the given Execute body.
func wrap(body string) []byte {
	return []byte(`package flows

import (
	"example.com/catalog/steps"

	"github.com/steplinehq/stepline/sdk/flow"
)

type Pipeline struct {
	flow.Definition
}

func (w *Pipeline) Execute(ctx flow.Context) error {
` + body + `
	return nil
}
`)
}

func rulesOf(diags []Diagnostic) []string {
	var rules []string
	for _, d := range diags {
		rules = append(rules, d.Rule)
	}
	return rules
}

func TestLintCleanWorkflow(t *testing.T) {
	src := wrap(`	notify := steps.NewSlackMessage(steps.SlackMessageConfig{Channel: "#support"})
	_ = notify`)
	diags := Lint(src, testRegistry())
	assert.Empty(t, diags)
}

func TestLintSyntaxError(t *testing.T) {
	diags := Lint([]byte("package flows\n\nfunc broken( {\n"), testRegistry())
	require.Len(t, diags, 1)
	assert.Equal(t, "syntax", diags[0].Rule)
	assert.Greater(t, diags[0].Line, 0)
}

func TestLintNoWorkflowClass(t *testing.T) {
	diags := Lint([]byte("package flows\n\ntype Plain struct{ Name string }\n"), testRegistry())
	require.Len(t, diags, 1)
	assert.Equal(t, "workflow-structure", diags[0].Rule)
	assert.Equal(t, 1, diags[0].Line)
}

func TestLintNoEntryMethod(t *testing.T) {
	src := []byte(`package flows

import "github.com/steplinehq/stepline/sdk/flow"

type Silent struct {
	flow.Definition
}
`)
	diags := Lint(src, testRegistry())
	require.Len(t, diags, 1)
	assert.Equal(t, "workflow-structure", diags[0].Rule)
	assert.Contains(t, diags[0].Message, "Execute")
}

func TestNoPanicInEntry(t *testing.T) {
	src := wrap(`	panic("boom")`)
	diags := Lint(src, testRegistry())
	require.Len(t, diags, 1)
	assert.Equal(t, "no-panic-in-entry", diags[0].Rule)
	assert.Equal(t, 14, diags[0].Line)
}

func TestNoPanicInEntryIfBranches(t *testing.T) {
	src := wrap(`	if true {
		panic("then")
	} else if false {
		panic("elseif")
	} else {
		panic("else")
	}`)
	diags := Lint(src, testRegistry())
	require.Len(t, diags, 3)
	for _, d := range diags {
		assert.Equal(t, "no-panic-in-entry", d.Rule)
	}
}

func TestNoPanicInEntryIgnoresNestedLoops(t *testing.T) {
	// Statements inside loops are not replayed positionally, so a panic
	// there is outside this rule's scope.
	src := wrap(`	for i := 0; i < 3; i++ {
		panic("loop")
	}`)
	diags := Lint(src, testRegistry())
	assert.Empty(t, diags)
}

func TestNoInlineStep(t *testing.T) {
	src := wrap(`	steps.NewSlackMessage(steps.SlackMessageConfig{Channel: "#support"})`)
	diags := Lint(src, testRegistry())
	require.Len(t, diags, 1)
	assert.Equal(t, "no-inline-step", diags[0].Rule)
	assert.Contains(t, diags[0].Message, "SlackMessage")
}

func TestNoInlineStepIgnoresUnknownClasses(t *testing.T) {
	src := wrap(`	steps.NewTeleport(steps.TeleportConfig{Destination: "mars"})`)
	diags := Lint(src, testRegistry())
	assert.Empty(t, diags, "inline constructions of unregistered classes are the extractor's problem")
}

func TestNoEmbeddedCredentials(t *testing.T) {
	src := wrap(`	req := steps.NewHTTPRequest(steps.HTTPRequestConfig{
		URL:         "https://api.example.com",
		Credentials: "token-abc",
	})
	_ = req`)
	diags := Lint(src, testRegistry())
	require.Len(t, diags, 1)
	assert.Equal(t, "no-embedded-credentials", diags[0].Rule)
	assert.Contains(t, diags[0].Message, "HTTPRequest")
}

func TestNoEmbeddedCredentialsNested(t *testing.T) {
	src := wrap(`	req := steps.NewHTTPRequest(steps.HTTPRequestConfig{
		Auth: steps.AuthSpec{
			Inner: map[string]string{"Credentials": "secret"},
		},
	})
	_ = req`)
	diags := Lint(src, testRegistry())
	require.Len(t, diags, 1)
	assert.Equal(t, "no-embedded-credentials", diags[0].Rule)
}

func TestNoEmbeddedCredentialsWrappedValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "pointer literal",
			body: `	req := steps.NewHTTPRequest(steps.HTTPRequestConfig{
		Auth: &steps.AuthSpec{Credentials: "secret"},
	})
	_ = req`,
		},
		{
			name: "parenthesized literal",
			body: `	req := steps.NewHTTPRequest(steps.HTTPRequestConfig{
		Auth: (steps.AuthSpec{Credentials: "secret"}),
	})
	_ = req`,
		},
		{
			name: "conversion wrapped literal",
			body: `	req := steps.NewHTTPRequest(steps.HTTPRequestConfig{
		Auth: any(steps.AuthSpec{Credentials: "secret"}),
	})
	_ = req`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diags := Lint(wrap(tt.body), testRegistry())
			require.Len(t, diags, 1)
			assert.Equal(t, "no-embedded-credentials", diags[0].Rule)
			assert.Contains(t, diags[0].Message, "HTTPRequest")
		})
	}
}

func TestNoEmbeddedCredentialsOutsideEntry(t *testing.T) {
	src := []byte(`package flows

import (
	"example.com/catalog/steps"

	"github.com/steplinehq/stepline/sdk/flow"
)

type Pipeline struct {
	flow.Definition
}

func (w *Pipeline) Execute(ctx flow.Context) error {
	return nil
}

func (w *Pipeline) helper() interface{} {
	return steps.NewHTTPRequest(steps.HTTPRequestConfig{Credentials: "oops"})
}
`)
	diags := Lint(src, testRegistry())
	require.Len(t, diags, 1)
	assert.Equal(t, "no-embedded-credentials", diags[0].Rule)
}

func TestNoHelperCallInObjectLiteral(t *testing.T) {
	src := wrap(`	cfg := steps.SlackMessageConfig{Text: w.compose()}
	_ = cfg`)
	diags := Lint(src, testRegistry())
	require.Len(t, diags, 1)
	assert.Equal(t, "no-helper-call-in-expression", diags[0].Rule)
	assert.Contains(t, diags[0].Message, "object literal value")
}

func TestNoHelperCallInArrayLiteral(t *testing.T) {
	src := wrap(`	names := []string{w.name()}
	_ = names`)
	diags := Lint(src, testRegistry())
	require.Len(t, diags, 1)
	assert.Equal(t, "no-helper-call-in-expression", diags[0].Rule)
	assert.Contains(t, diags[0].Message, "array literal element")
}

func TestHelperCallAtStatementLevelAllowed(t *testing.T) {
	src := wrap(`	w.prepare()
	result := w.compute()
	_ = result`)
	diags := Lint(src, testRegistry())
	assert.Empty(t, diags)
}

func TestHelperCallAsPlainArgumentAllowed(t *testing.T) {
	src := wrap(`	w.log(w.compute())`)
	diags := Lint(src, testRegistry())
	assert.Empty(t, diags, "call arguments are not compound literal contexts")
}

func TestHelperCallInParallelSliceAllowed(t *testing.T) {
	src := wrap(`	flow.Parallel([]flow.Step{w.stepA(), w.stepB()})`)
	diags := Lint(src, testRegistry())
	assert.Empty(t, diags, "the flow.Parallel slice argument is the sanctioned compound position")
}

func TestHelperCallInClosureIgnored(t *testing.T) {
	src := wrap(`	fn := func() []string {
		return []string{w.name()}
	}
	_ = fn`)
	diags := Lint(src, testRegistry())
	assert.Empty(t, diags)
}

func TestLintDiagnosticsSorted(t *testing.T) {
	src := wrap(`	names := []string{w.name()}
	_ = names
	panic("boom")
	steps.NewSlackMessage(steps.SlackMessageConfig{Channel: "#x"})`)
	diags := Lint(src, testRegistry())
	require.Len(t, diags, 3)
	assert.True(t, sort.SliceIsSorted(diags, func(i, j int) bool {
		if diags[i].Line != diags[j].Line {
			return diags[i].Line < diags[j].Line
		}
		return diags[i].Column < diags[j].Column
	}))
	assert.Equal(t, []string{
		"no-helper-call-in-expression",
		"no-panic-in-entry",
		"no-inline-step",
	}, rulesOf(diags))
}

// panicRule always panics; used to prove rule isolation.
type panicRule struct{}

func (panicRule) Name() string { return "panic-rule" }

func (panicRule) Check(*Context) []Diagnostic { panic("rule bug") }

func TestRulePanicIsIsolated(t *testing.T) {
	src := wrap(`	panic("boom")`)
	diags := run(src, testRegistry(), []Rule{panicRule{}, noPanicInEntry{}})
	require.Len(t, diags, 1)
	assert.Equal(t, "no-panic-in-entry", diags[0].Rule)
}
