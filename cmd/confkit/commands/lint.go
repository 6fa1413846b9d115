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

package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/confkit/confkit/pkg/document"
	"github.com/confkit/confkit/pkg/graph"
)

func newLintCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Statically check a document's references without resolving it",
		Long: `Parses a document and runs static analysis: reference cycles, references
to paths that do not exist, and unknown run-type tokens are reported with
their exact location so the document can be corrected.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLint(cmd, file)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the document (use '-' for stdin)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runLint(cmd *cobra.Command, file string) error {
	out := cmd.OutOrStdout()

	data, err := readDocument(cmd.InOrStdin(), file)
	if err != nil {
		return err
	}

	doc, err := document.Parse(data)
	if err != nil {
		return err
	}

	problems := 0

	analysis, err := graph.Analyze(doc)
	if err != nil {
		// Cycles and malformed expressions are fatal for resolution;
		// report and stop.
		fmt.Fprintf(out, "%s %v\n", color.RedString("error:"), err)
		return fmt.Errorf("document failed analysis")
	}

	for _, missing := range analysis.MissingRefs {
		problems++
		fmt.Fprintf(out, "%s unresolved reference %q\n", color.YellowString("problem:"), missing)
	}

	if _, err := doc.RunPhases(); err != nil {
		problems++
		fmt.Fprintf(out, "%s %v\n", color.YellowString("problem:"), err)
	}

	if problems > 0 {
		return fmt.Errorf("%d problem(s) found", problems)
	}

	fmt.Fprintf(out, "%s %d interpolation field(s), %d target(s), no problems\n",
		color.GreenString("ok:"), len(analysis.Refs), len(analysis.Targets))
	return nil
}
