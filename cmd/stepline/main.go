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

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/steplinehq/stepline/internal/cli"
	checkcmd "github.com/steplinehq/stepline/internal/commands/check"
	extractcmd "github.com/steplinehq/stepline/internal/commands/extract"
	lintcmd "github.com/steplinehq/stepline/internal/commands/lint"
	rewritecmd "github.com/steplinehq/stepline/internal/commands/rewrite"
	versioncmd "github.com/steplinehq/stepline/internal/commands/version"
)

// Version information (injected via ldflags at build time)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildDate)

	root := cli.NewRootCommand()
	root.AddCommand(
		extractcmd.NewCommand(),
		lintcmd.NewCommand(),
		rewritecmd.NewCommand(),
		checkcmd.NewCommand(),
		versioncmd.NewCommand(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		cli.HandleExitError(err)
	}
}
