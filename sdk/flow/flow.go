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

// Package flow is the surface workflow authors compile against. A workflow
// is a struct embedding Definition with an Execute method:
//
//	type NightlyTriage struct {
//	    flow.Definition
//	}
//
//	func (w *NightlyTriage) Execute(ctx flow.Context) error {
//	    rows := steps.NewPostgresQuery(steps.PostgresQueryConfig{
//	        ConnectionURL: flow.Env("DATABASE_URL"),
//	        Query:         "select * from tickets where state = 'open'",
//	    })
//	    _ = rows
//	    return nil
//	}
//
// The package carries no execution logic. Submitted workflow source is
// analyzed statically and replayed by the execution engine, which supplies
// its own implementations of these hooks at run time.
package flow

import "os"

// Definition marks a struct type as a workflow definition. Embed it as an
// anonymous field; the analyzers identify the workflow class by it.
type Definition struct{}

// Context carries per-run identity into the Execute method.
type Context interface {
	// RunID is the unique identifier of this workflow run.
	RunID() string

	// WorkflowName is the registered name of the running workflow.
	WorkflowName() string
}

// Step is the common surface of catalog step values.
type Step interface {
	// StepClass returns the step's catalog class name, such as
	// "SlackMessage".
	StepClass() string
}

// Env declares a runtime environment reference. In submitted source the
// argument must be a string literal; the analyzers record the variable name
// rather than its value, and the execution engine resolves it per run.
func Env(name string) string {
	return os.Getenv(name)
}

// Await marks a step construction as awaited: the run blocks on the step's
// result before the next statement executes. It returns its argument
// unchanged so awaited and non-awaited constructions bind identically.
func Await[T any](v T) T {
	return v
}

// Parallel groups steps for concurrent execution. The slice literal passed
// to it is the one compound expression position where helper calls on the
// workflow receiver are permitted.
func Parallel(steps []Step) Step {
	return parallelGroup(steps)
}

type parallelGroup []Step

func (parallelGroup) StepClass() string { return "Parallel" }
