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

package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steplinehq/stepline/pkg/step"
)

func testRegistry() step.Registry {
	return step.NewStaticRegistry(map[string]step.Kind{
		"PostgresQuery": "database",
		"SlackMessage":  "notification",
	})
}

const standardWorkflow = `package flows

import (
	"example.com/catalog/steps"

	"github.com/steplinehq/stepline/sdk/flow"
)

type NightlyTriage struct {
	flow.Definition
}

func (w *NightlyTriage) Execute(ctx flow.Context) error {
	rows := steps.NewPostgresQuery(steps.PostgresQueryConfig{
		ConnectionURL: flow.Env("DATABASE_URL"),
		Query:         "select * from tickets where state = 'open'",
		Archived:      false,
		Tags:          []string{"support", "triage"},
		Limit:         50,
	})
	_ = rows
	return nil
}
`

func TestExtractStandardWorkflow(t *testing.T) {
	result := Extract([]byte(standardWorkflow), testRegistry())
	require.True(t, result.Success, "errors: %v", result.Errors)
	require.Len(t, result.Instantiations, 1)

	inst := result.Instantiations["rows"]
	require.NotNil(t, inst)
	assert.Equal(t, "rows", inst.VariableName)
	assert.Equal(t, "PostgresQuery", inst.ClassName)
	assert.Equal(t, step.Kind("database"), inst.Kind)
	assert.False(t, inst.IsAwaited)
	assert.False(t, inst.IsActionInvoked)
	assert.Equal(t, 14, inst.Line)

	require.Len(t, inst.Parameters, 5)

	conn := inst.Parameter("ConnectionURL")
	require.NotNil(t, conn)
	assert.Equal(t, step.KindEnv, conn.Kind)
	assert.Equal(t, "DATABASE_URL", conn.RawValue, "ENV records the variable name, not its value")

	query := inst.Parameter("Query")
	require.NotNil(t, query)
	assert.Equal(t, step.KindString, query.Kind)
	assert.Equal(t, "select * from tickets where state = 'open'", query.RawValue)

	archived := inst.Parameter("Archived")
	require.NotNil(t, archived)
	assert.Equal(t, step.KindBoolean, archived.Kind)
	assert.Equal(t, "false", archived.RawValue)

	tags := inst.Parameter("Tags")
	require.NotNil(t, tags)
	assert.Equal(t, step.KindArray, tags.Kind)
	assert.Equal(t, `[]string{"support", "triage"}`, tags.RawValue)

	limit := inst.Parameter("Limit")
	require.NotNil(t, limit)
	assert.Equal(t, step.KindNumber, limit.Kind)
	assert.Equal(t, "50", limit.RawValue)
}

func TestExtractSpans(t *testing.T) {
	src := []byte(standardWorkflow)
	result := Extract(src, testRegistry())
	require.True(t, result.Success)

	inst := result.Instantiations["rows"]
	require.NotNil(t, inst)

	constructed := string(src[inst.Span.Start:inst.Span.End])
	assert.True(t, strings.HasPrefix(constructed, "steps.NewPostgresQuery("))
	assert.True(t, strings.HasSuffix(constructed, "})"))

	args := string(src[inst.ArgsSpan.Start:inst.ArgsSpan.End])
	assert.Contains(t, args, "ConnectionURL:")
	assert.Contains(t, args, "Limit:")
	assert.NotContains(t, args, "PostgresQueryConfig")
}

func TestExtractAwaitAndAction(t *testing.T) {
	src := `package flows

import (
	"example.com/catalog/steps"

	"github.com/steplinehq/stepline/sdk/flow"
)

type Notify struct {
	flow.Definition
}

func (w *Notify) Execute(ctx flow.Context) error {
	notify := flow.Await(steps.NewSlackMessage(steps.SlackMessageConfig{
		Channel: "#support",
	}).Action(ctx))
	_ = notify
	return nil
}
`
	result := Extract([]byte(src), testRegistry())
	require.True(t, result.Success, "errors: %v", result.Errors)

	inst := result.Instantiations["notify"]
	require.NotNil(t, inst)
	assert.True(t, inst.IsAwaited)
	assert.True(t, inst.IsActionInvoked)
	assert.Equal(t, "SlackMessage", inst.ClassName)
}

func TestExtractUnregisteredClass(t *testing.T) {
	src := `package flows

import (
	"example.com/catalog/steps"

	"github.com/steplinehq/stepline/sdk/flow"
)

type Broken struct {
	flow.Definition
}

func (w *Broken) Execute(ctx flow.Context) error {
	x := steps.NewTeleport(steps.TeleportConfig{Destination: "mars"})
	_ = x
	return nil
}
`
	result := Extract([]byte(src), testRegistry())
	assert.False(t, result.Success)
	assert.Empty(t, result.Instantiations)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "is not registered")
	assert.Contains(t, result.Errors[0], "Teleport")
}

func TestExtractUnregisteredKeepsSiblings(t *testing.T) {
	src := `package flows

import (
	"example.com/catalog/steps"

	"github.com/steplinehq/stepline/sdk/flow"
)

type Mixed struct {
	flow.Definition
}

func (w *Mixed) Execute(ctx flow.Context) error {
	good := steps.NewSlackMessage(steps.SlackMessageConfig{Channel: "#ok"})
	bad := steps.NewTeleport(steps.TeleportConfig{Destination: "mars"})
	_, _ = good, bad
	return nil
}
`
	result := Extract([]byte(src), testRegistry())
	assert.False(t, result.Success)
	require.Len(t, result.Instantiations, 1)
	assert.NotNil(t, result.Instantiations["good"], "recognized siblings survive an unregistered class")
}

func TestExtractAnonymousConstructions(t *testing.T) {
	src := `package flows

import (
	"example.com/catalog/steps"

	"github.com/steplinehq/stepline/sdk/flow"
)

type FireAndForget struct {
	flow.Definition
}

func (w *FireAndForget) Execute(ctx flow.Context) error {
	steps.NewSlackMessage(steps.SlackMessageConfig{Channel: "#one"})
	steps.NewPostgresQuery(steps.PostgresQueryConfig{Query: "select 1"})
	steps.NewSlackMessage(steps.SlackMessageConfig{Channel: "#two"})
	return nil
}
`
	result := Extract([]byte(src), testRegistry())
	require.True(t, result.Success, "errors: %v", result.Errors)
	require.Len(t, result.Instantiations, 3)

	first := result.Instantiations["SlackMessage#1"]
	require.NotNil(t, first)
	assert.Equal(t, "#one", first.Parameter("Channel").RawValue)

	second := result.Instantiations["SlackMessage#2"]
	require.NotNil(t, second)
	assert.Equal(t, "#two", second.Parameter("Channel").RawValue)

	assert.NotNil(t, result.Instantiations["PostgresQuery#1"],
		"the anonymous counter is per class")
}

func TestExtractDeterministic(t *testing.T) {
	first := Extract([]byte(standardWorkflow), testRegistry())
	second := Extract([]byte(standardWorkflow), testRegistry())
	assert.Equal(t, first, second)
}

func TestExtractIgnoresClosures(t *testing.T) {
	src := `package flows

import (
	"example.com/catalog/steps"

	"github.com/steplinehq/stepline/sdk/flow"
)

type Closures struct {
	flow.Definition
}

func (w *Closures) Execute(ctx flow.Context) error {
	fn := func() {
		hidden := steps.NewSlackMessage(steps.SlackMessageConfig{Channel: "#hidden"})
		_ = hidden
	}
	fn()
	return nil
}
`
	result := Extract([]byte(src), testRegistry())
	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Empty(t, result.Instantiations, "function literals are opaque")
}

func TestExtractSyntaxError(t *testing.T) {
	result := Extract([]byte("package flows\n\nfunc broken( {\n"), testRegistry())
	assert.False(t, result.Success)
	assert.Empty(t, result.Instantiations)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "syntax error")
}

func TestExtractNoWorkflowDefinition(t *testing.T) {
	src := `package flows

type Plain struct {
	Name string
}
`
	result := Extract([]byte(src), testRegistry())
	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "no workflow definition found")
}

func TestExtractMissingEntryMethod(t *testing.T) {
	src := `package flows

import "github.com/steplinehq/stepline/sdk/flow"

type Silent struct {
	flow.Definition
}
`
	result := Extract([]byte(src), testRegistry())
	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "declares no Execute method")
}

func TestExtractPositionalFields(t *testing.T) {
	src := `package flows

import (
	"example.com/catalog/steps"

	"github.com/steplinehq/stepline/sdk/flow"
)

type Positional struct {
	flow.Definition
}

func (w *Positional) Execute(ctx flow.Context) error {
	msg := steps.NewSlackMessage(steps.SlackMessageConfig{"#support", "hello"})
	_ = msg
	return nil
}
`
	result := Extract([]byte(src), testRegistry())
	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "named-field form")

	inst := result.Instantiations["msg"]
	require.NotNil(t, inst, "the instantiation is still recorded")
	assert.Empty(t, inst.Parameters)
}

func TestExtractMalformedConstructor(t *testing.T) {
	src := `package flows

import (
	"example.com/catalog/steps"

	"github.com/steplinehq/stepline/sdk/flow"
)

type Malformed struct {
	flow.Definition
}

func (w *Malformed) Execute(ctx flow.Context) error {
	msg := steps.NewSlackMessage("#support")
	_ = msg
	return nil
}
`
	result := Extract([]byte(src), testRegistry())
	assert.False(t, result.Success)
	assert.Empty(t, result.Instantiations)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "must take a single SlackMessageConfig literal")
}

func TestExtractDuplicateBinding(t *testing.T) {
	src := `package flows

import (
	"example.com/catalog/steps"

	"github.com/steplinehq/stepline/sdk/flow"
)

type Rebind struct {
	flow.Definition
}

func (w *Rebind) Execute(ctx flow.Context) error {
	q := steps.NewPostgresQuery(steps.PostgresQueryConfig{Query: "first"})
	q = steps.NewPostgresQuery(steps.PostgresQueryConfig{Query: "second"})
	_ = q
	return nil
}
`
	result := Extract([]byte(src), testRegistry())
	assert.False(t, result.Success)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "rebinds variable")

	inst := result.Instantiations["q"]
	require.NotNil(t, inst)
	assert.Equal(t, "first", inst.Parameter("Query").RawValue, "the first binding wins")
}

func TestExtractOrdinaryConstructorsIgnored(t *testing.T) {
	src := `package flows

import (
	"errors"
	"time"

	"github.com/steplinehq/stepline/sdk/flow"
)

type NoSteps struct {
	flow.Definition
}

func (w *NoSteps) Execute(ctx flow.Context) error {
	t := time.NewTimer(time.Second)
	_ = t
	return errors.New("done")
}
`
	result := Extract([]byte(src), testRegistry())
	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Empty(t, result.Instantiations)
}

func TestResultOrdered(t *testing.T) {
	result := Extract([]byte(standardWorkflow), testRegistry())
	require.True(t, result.Success)

	ordered := result.Ordered()
	require.Len(t, ordered, 1)
	assert.Equal(t, "rows", ordered[0].VariableName)
}
