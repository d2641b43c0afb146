// Copyright (c) 2025 Sapflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sapflow/cli/internal/logging"
	"sapflow/cli/internal/orchestrator"
)

var (
	runStartDate string
	runEndDate   string
)

// runCmd executes one full extraction run from the terminal.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a SAP notification extraction for a date window",
	Long: `The run command connects to SAP GUI, exports the notification report for the
given date window, extracts the notification numbers from the export, and runs
the lookup transaction for those numbers. Both exported workbooks are left in
the configured export directories.

Credentials are taken from SAP_USERNAME/SAP_PASSWORD or, when unset, from the
OS keychain (see 'sapflow credentials').`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		resolveCredentials(&cfg)
		if err := cfg.ValidateCredentials(); err != nil {
			fmt.Println("⚠️  SAP credentials are not configured.")
			fmt.Println("   Please run: sapflow credentials")
			return err
		}

		runCommand, err := parseDateWindow(runStartDate, runEndDate)
		if err != nil {
			return err
		}

		log, runID := logging.ForRun()
		runner := newRunner(&cfg, log)

		pterm.Println()
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Connection: ") + pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(cfg.ConnectionName))
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Window:     ") + pterm.NewStyle(pterm.FgLightBlue).Sprintf("%s .. %s", runStartDate, runEndDate))
		pterm.Println()

		cursor.Hide()
		spinner, _ := pterm.DefaultSpinner.Start("Running SAP extraction...")
		res, err := runner.Run(cmd.Context(), runCommand)
		if spinner != nil {
			if err != nil {
				spinner.Fail("Extraction failed")
			} else {
				spinner.Success("Extraction finished")
			}
		}
		cursor.Show()

		if err != nil {
			pterm.Println(logging.PresentError("run "+runID, err))
			return err
		}

		body := fmt.Sprintf("Notifications: %d\nReport export: %s\nLookup export: %s",
			res.RecordCount, res.NoticeExport, res.LookupExport)
		pterm.DefaultBox.WithTitle("Run " + runID).Println(body)
		return nil
	},
}

// parseDateWindow validates the CLI date flags into a run command.
func parseDateWindow(start, end string) (orchestrator.RunCommand, error) {
	var cmd orchestrator.RunCommand
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		return cmd, fmt.Errorf("invalid --start date %q, expected YYYY-MM-DD", start)
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		return cmd, fmt.Errorf("invalid --end date %q, expected YYYY-MM-DD", end)
	}
	cmd = orchestrator.RunCommand{Start: s, End: e}
	return cmd, cmd.Validate()
}

func init() {
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
	runCmd.Flags().StringVar(&runStartDate, "start", yesterday, "Window start date (YYYY-MM-DD)")
	runCmd.Flags().StringVar(&runEndDate, "end", yesterday, "Window end date (YYYY-MM-DD)")
	rootCmd.AddCommand(runCmd)
}
