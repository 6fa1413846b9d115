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
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/confkit/confkit/cmd/confkit/internal/view"
	"github.com/confkit/confkit/pkg/document"
	"github.com/confkit/confkit/pkg/resolve"
)

type resolveConfig struct {
	file         string
	outputFormat string
	outputDir    string
	overrides    []string
	stats        []string
	verbose      bool
	logJSON      bool
}

func newResolveCommand() *cobra.Command {
	config := &resolveConfig{}

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a document's interpolations and print the literal result",
		Long: `Parses a configuration document, resolves every ${path} reference and
${resolver:args} call against a resolution context built from the command
line, and prints the fully literal document.`,
		Example: `  # Resolve to stdout (YAML)
  confkit resolve -f config.yaml

  # Resolve to JSON with an override and a precomputed statistic
  confkit resolve -f config.yaml -o json \
    --set data.batch_size=8 --stat energy_mean=-123.4

  # Resolve from stdin
  cat config.yaml | confkit resolve -f -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd, config)
		},
	}

	cmd.Flags().StringVarP(&config.file, "file", "f", "", "Path to the document (use '-' for stdin)")
	cmd.Flags().StringVarP(&config.outputFormat, "format", "o", "yaml", "Output format (yaml|json)")
	cmd.Flags().StringVar(&config.outputDir, "out-dir", "", "Run output directory exposed as ${paths:output_dir}")
	cmd.Flags().StringArrayVar(&config.overrides, "set", nil, "Dotted-path override, key=value (repeatable)")
	cmd.Flags().StringArrayVar(&config.stats, "stat", nil, "Precomputed statistic, name=value (repeatable)")
	cmd.Flags().BoolVarP(&config.verbose, "verbose", "v", false, "Trace resolution steps")
	cmd.Flags().BoolVar(&config.logJSON, "log-json", false, "Log as JSON lines")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runResolve(cmd *cobra.Command, config *resolveConfig) error {
	data, err := readDocument(cmd.InOrStdin(), config.file)
	if err != nil {
		return err
	}

	doc, err := document.Parse(data)
	if err != nil {
		return err
	}

	for _, override := range config.overrides {
		path, value, err := splitAssignment(override)
		if err != nil {
			return fmt.Errorf("--set %q: %w", override, err)
		}
		if err := doc.SetValueAt(path, value); err != nil {
			return fmt.Errorf("--set %q: %w", override, err)
		}
	}

	level := slog.LevelInfo
	if config.verbose {
		level = slog.LevelDebug
	}
	logger := view.NewLogger(cmd.ErrOrStderr(), level, config.logJSON)

	opts := []resolve.ContextOption{
		resolve.WithOutputDir(config.outputDir),
		resolve.WithLogger(logger),
	}
	for _, stat := range config.stats {
		name, value, err := splitAssignment(stat)
		if err != nil {
			return fmt.Errorf("--stat %q: %w", stat, err)
		}
		opts = append(opts, resolve.WithStat(name, value))
	}

	resolver := resolve.New(doc, resolve.NewContext(opts...))
	resolved, err := resolver.ResolveAll()
	if err != nil {
		return err
	}

	return printDocument(cmd.OutOrStdout(), resolved, config.outputFormat)
}

func readDocument(stdin io.Reader, file string) ([]byte, error) {
	if file == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading document from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return data, nil
}

// splitAssignment parses key=value, decoding the value as a YAML scalar so
// numbers, booleans, and null keep their types.
func splitAssignment(s string) (string, any, error) {
	key, raw, found := strings.Cut(s, "=")
	if !found || key == "" {
		return "", nil, fmt.Errorf("expected key=value")
	}
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		value = raw
	}
	if i, ok := value.(int); ok {
		value = int64(i)
	}
	return key, value, nil
}

func printDocument(w io.Writer, doc *document.Document, format string) error {
	switch format {
	case "yaml":
		out, err := doc.ToYAML()
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case "json":
		out, err := doc.ToJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	default:
		return fmt.Errorf("unknown output format %q (yaml|json)", format)
	}
}
