// Copyright (c) 2025 Sapflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for the sapflow automation
// tool. It implements subcommands for running SAP extractions, serving the
// HTTP trigger API, loading exported workbooks into Postgres and managing
// stored credentials, using the Cobra CLI framework.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sapflow/cli/internal/config"
	"sapflow/cli/internal/logging"
)

var (
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "sapflow",
	Short:         "SAP GUI extraction automation",
	Long:          `Sapflow drives SAP GUI transactions to export notification reports, feeds the exported notification numbers back into the lookup transaction, and optionally loads the resulting workbooks into Postgres.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("sapflow %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, logging.PresentError("", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show version information")
}

// loadConfig reads the environment configuration and wires the global logger.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}
