// Copyright (c) 2025 Sapflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"sapflow/cli/internal/etl"
	"sapflow/cli/internal/logging"
)

var (
	etlPeriod string
)

// etlCmd loads an exported workbook pair into Postgres.
var etlCmd = &cobra.Command{
	Use:   "etl",
	Short: "Load exported workbook pairs into Postgres",
	Long: `The etl command reads a notification/lookup workbook pair from the history
directory, merges them by notification number and loads the result into the
ouvidoria_sap table. Rows in the pair's opening-date window are replaced, so
re-running a period is safe.

The Postgres DSN is resolved from SAPFLOW_DSN, DATABASE_URL or the OS keychain.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dsn := resolveDSN(cfg)
		if dsn == "" {
			fmt.Println("⚠️  No database connection configured.")
			fmt.Println("   Set SAPFLOW_DSN or store a DSN with 'sapflow credentials --dsn'.")
			return fmt.Errorf("database DSN not configured")
		}
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Database: ") + pterm.NewStyle(pterm.FgLightBlue).Sprint(logging.Mask(dsn)))

		pair, err := etl.FindPair(cfg.HistoryDir, etlPeriod)
		if err != nil {
			return err
		}
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan).Sprint("→ Period:   ") + pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint(pair.Period))

		spinner, _ := pterm.DefaultSpinner.Start("Reading workbooks...")
		notice, err := etl.ReadTable(pair.NoticePath)
		if err != nil {
			failSpinner(spinner, "Reading workbooks failed")
			return err
		}
		lookup, err := etl.ReadTable(pair.LookupPath)
		if err != nil {
			failSpinner(spinner, "Reading workbooks failed")
			return err
		}

		records, err := etl.Transform(notice, lookup)
		if err != nil {
			failSpinner(spinner, "Transform failed")
			return err
		}
		if spinner != nil {
			spinner.UpdateText(fmt.Sprintf("Loading %d records...", len(records)))
		}

		ctx := cmd.Context()
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			failSpinner(spinner, "Database connection failed")
			return err
		}
		defer pool.Close()

		loader := &etl.Loader{Pool: pool, Log: slog.Default()}
		stats, err := loader.Load(ctx, records)
		if err != nil {
			failSpinner(spinner, "Load failed")
			return err
		}
		if spinner != nil {
			spinner.Success("Load finished")
		}

		pterm.DefaultBox.WithTitle("ETL " + pair.Period).Println(
			fmt.Sprintf("Inserted: %d\nReplaced: %d", stats.Inserted, stats.Deleted))
		return nil
	},
}

func failSpinner(spinner *pterm.SpinnerPrinter, msg string) {
	if spinner != nil {
		spinner.Fail(msg)
	}
}

func init() {
	etlCmd.Flags().StringVar(&etlPeriod, "period", "", "Workbook period YYYYMM (default: newest complete pair)")
	rootCmd.AddCommand(etlCmd)
}
