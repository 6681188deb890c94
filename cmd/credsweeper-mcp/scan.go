// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/credsweeper/credsweeper-mcp/internal/tool"
)

var (
	validate     bool
	formatHint   string
	failOnSecret bool
)

var scanCmd = &cobra.Command{
	Use:   "scan [file]",
	Short: "Scan a file for hardcoded credentials and print the findings as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		content, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return fmt.Errorf("failed to read %q: %w", path, err)
		}

		tools, err := loadTools()
		if err != nil {
			return err
		}

		output := tool.OutputScanContent{Groups: []tool.GroupOutput{}}
		if len(content) > 0 {
			_, output, err = tools.ScanContent(cmd.Context(), nil, tool.InputScanContent{
				Content:  string(content),
				Path:     path,
				Format:   formatHint,
				Validate: validate,
			})
			if err != nil {
				return err
			}
		}

		encoded, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode findings: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(encoded))

		if failOnSecret && len(output.Groups) > 0 {
			return fmt.Errorf("%d credential candidate(s) found in %s", len(output.Groups), path)
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().BoolVar(&validate, "validate", false, "verify candidates against their credential providers")
	scanCmd.Flags().StringVar(&formatHint, "format", "", "format hint: plain, yaml, json or kubernetes")
	scanCmd.Flags().BoolVar(&failOnSecret, "fail-on-findings", false, "exit non-zero when any candidate is found")
}
