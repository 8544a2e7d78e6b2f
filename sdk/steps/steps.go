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

// Package steps is the built-in step catalog. Each step follows the
// construction convention the analyzers recognize: New<Class> takes a single
// <Class>Config literal. Steps do nothing when constructed; the execution
// engine replays extracted constructions against real integrations.
package steps

import "github.com/steplinehq/stepline/sdk/flow"

// PostgresQuery runs a SQL query against a Postgres database.
type PostgresQuery struct {
	cfg PostgresQueryConfig
}

type PostgresQueryConfig struct {
	ConnectionURL string
	Query         string
	Limit         int
}

func NewPostgresQuery(cfg PostgresQueryConfig) *PostgresQuery {
	return &PostgresQuery{cfg: cfg}
}

func (s *PostgresQuery) StepClass() string { return "PostgresQuery" }

// Action requests the step's follow-up action once its result is ready.
func (s *PostgresQuery) Action(ctx flow.Context) *PostgresQuery { return s }

// SlackMessage posts a message to a Slack channel.
type SlackMessage struct {
	cfg SlackMessageConfig
}

type SlackMessageConfig struct {
	Channel string
	Text    string
	Urgent  bool
}

func NewSlackMessage(cfg SlackMessageConfig) *SlackMessage {
	return &SlackMessage{cfg: cfg}
}

func (s *SlackMessage) StepClass() string { return "SlackMessage" }

func (s *SlackMessage) Action(ctx flow.Context) *SlackMessage { return s }

// HTTPRequest performs an outbound HTTP call.
type HTTPRequest struct {
	cfg HTTPRequestConfig
}

type HTTPRequestConfig struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
}

func NewHTTPRequest(cfg HTTPRequestConfig) *HTTPRequest {
	return &HTTPRequest{cfg: cfg}
}

func (s *HTTPRequest) StepClass() string { return "HTTPRequest" }

func (s *HTTPRequest) Action(ctx flow.Context) *HTTPRequest { return s }
