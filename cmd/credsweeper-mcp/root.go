// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/credsweeper/credsweeper-mcp/internal/config"
	"github.com/credsweeper/credsweeper-mcp/internal/logging"
	"github.com/credsweeper/credsweeper-mcp/internal/rules"
	"github.com/credsweeper/credsweeper-mcp/internal/tool"
	"github.com/credsweeper/credsweeper-mcp/internal/validations"
)

var version = "dev"

var (
	configPath string
	rulesPath  string
	debugMode  bool
)

var rootCmd = &cobra.Command{
	Use:           "credsweeper-mcp",
	Short:         "Hardcoded credential scanner with an MCP server",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.InitLogger(debugMode)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a configuration file (defaults to the embedded configuration)")
	rootCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "path to a rule file (defaults to the embedded rules)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "enable debug logging on stderr")

	rootCmd.AddCommand(serveCmd, scanCmd)
}

func execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logging.Logger.Errorw("command failed", "error", err)
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
	}
	return err
}

// loadTools builds the tool handlers from the configuration and rule files
// named on the command line.
func loadTools() (*tool.Tools, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	registry := validations.DefaultRegistry(&http.Client{Timeout: cfg.Validation.Timeout()})
	schema, err := rules.NewSchema(registry.Names()...)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule schema: %w", err)
	}

	var ruleSet []*rules.Rule
	if rulesPath != "" {
		ruleSet, err = rules.LoadRules(rulesPath, schema)
	} else {
		ruleSet, err = rules.DefaultRules(schema)
	}
	if err != nil {
		if len(ruleSet) == 0 {
			return nil, err
		}
		logging.Logger.Warnw("some rules were skipped", "loaded", len(ruleSet), "error", err)
	}
	logging.Logger.Debugw("rules loaded", "count", len(ruleSet), "validators", registry.Names())

	return tool.New(cfg, ruleSet, registry), nil
}
