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

// Package typecheck serves line-indexed type diagnostics for workflow
// source from warmed, pooled analysis sessions.
//
// A session is created once per project-configuration identity and reused
// across calls: it keeps a shared file set, a package-resolution cache
// seeded from the configured package directories, and a versioned snapshot
// table for the virtual workflow file. The expensive work of reading the
// configured packages and standard library definitions happens once, at
// session creation.
package typecheck

import (
	"log/slog"
	"sync"

	"github.com/steplinehq/stepline/pkg/errors"
)

// Config identifies and seeds one analysis session.
type Config struct {
	// Key is the resolved project-configuration identity. Sessions are
	// pooled per Key; two configs with the same Key must describe the
	// same package universe.
	Key string `yaml:"key"`

	// Filename is the virtual filename checked inside the session.
	// Defaults to "workflow.go".
	Filename string `yaml:"filename"`

	// Packages maps import paths to directories holding their sources:
	// the flow SDK and the step catalog packages workflow files import.
	Packages map[string]string `yaml:"packages"`
}

func (c Config) filename() string {
	if c.Filename == "" {
		return "workflow.go"
	}
	return c.Filename
}

// Pool is an explicit, lock-guarded registry of warmed sessions keyed by
// configuration identity. Embedders running one pool per worker get
// fully independent sessions; embedders sharing a pool get per-session
// serialization (see Session.Check).
type Pool struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewPool creates an empty session pool.
func NewPool() *Pool {
	return &Pool{sessions: make(map[string]*Session)}
}

// DefaultPool is the process-wide session pool used by Check.
var DefaultPool = NewPool()

// Session returns the warmed session for cfg.Key, creating and warming it
// on first use. Creation errors are not cached: a later call with a fixed
// configuration may succeed.
func (p *Pool) Session(cfg Config) (*Session, error) {
	if cfg.Key == "" {
		return nil, &errors.ConfigError{Key: "key", Reason: "session configuration needs a non-empty identity key"}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if s, ok := p.sessions[cfg.Key]; ok {
		return s, nil
	}

	s, err := newSession(cfg)
	if err != nil {
		return nil, err
	}
	p.sessions[cfg.Key] = s
	slog.Debug("type-check session warmed",
		slog.String("key", cfg.Key),
		slog.Int("packages", len(cfg.Packages)))
	return s, nil
}

// Check runs one type check against the DefaultPool session for cfg.
func Check(src []byte, cfg Config) (*Result, error) {
	session, err := DefaultPool.Session(cfg)
	if err != nil {
		return nil, err
	}
	return session.Check(src), nil
}
