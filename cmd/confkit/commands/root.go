// Copyright 2026 The confkit Authors.
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

// Package commands wires the confkit CLI: the embedding-application
// surface over the resolution library.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/confkit/confkit/cmd/confkit/version"
)

// NewRootCommand builds the confkit root command with all subcommands
// attached.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "confkit",
		Short:         "confkit resolves hierarchical configuration documents",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(newResolveCommand())
	root.AddCommand(newLintCommand())
	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the confkit version",
		Run: func(cmd *cobra.Command, _ []string) {
			version.Fprint(cmd.OutOrStdout())
		},
	}
}
