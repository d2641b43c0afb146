// Copyright (c) 2025 Sapflow
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"log/slog"
	"os"
	"strings"

	"sapflow/cli/internal/clipboard"
	"sapflow/cli/internal/config"
	"sapflow/cli/internal/keychain"
	"sapflow/cli/internal/orchestrator"
	"sapflow/cli/internal/sapgui"
	"sapflow/cli/internal/transaction"
	"sapflow/cli/internal/watcher"
)

// resolveCredentials fills SAP credentials from the keychain when the
// environment did not provide them. Environment always wins.
func resolveCredentials(cfg *config.Config) {
	if cfg.SAPUsername != "" && cfg.SAPPassword != "" {
		return
	}
	km, err := keychain.GetManager()
	if err != nil {
		return
	}
	creds, err := km.LoadCredentials()
	if err != nil {
		return
	}
	if cfg.SAPUsername == "" {
		cfg.SAPUsername = creds.Username
	}
	if cfg.SAPPassword == "" {
		cfg.SAPPassword = creds.Password
	}
}

// resolveDSN returns the Postgres DSN from env or keychain.
func resolveDSN(cfg config.Config) string {
	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		return dsn
	}
	if dsn := strings.TrimSpace(os.Getenv("DATABASE_URL")); dsn != "" {
		return dsn
	}
	if km, err := keychain.GetManager(); err == nil {
		if dsn, err := km.LoadDBDSN(); err == nil {
			return strings.TrimSpace(dsn)
		}
	}
	return ""
}

// newRunner assembles the full extraction pipeline for one process.
func newRunner(cfg *config.Config, log *slog.Logger) *orchestrator.Orchestrator {
	launcher := &sapgui.ComLauncher{
		Executable:     cfg.LogonExecutable,
		StartupTimeout: cfg.StartupTimeout,
	}

	var picker *sapgui.LogonPicker
	if desktop, err := sapgui.NewDesktop(); err == nil {
		picker = &sapgui.LogonPicker{Desktop: desktop, Timeout: cfg.StartupTimeout, Log: log}
	} else {
		log.Debug("logon window fallback unavailable", "error", err)
	}

	connector := &sapgui.Connector{
		Launcher: launcher,
		Picker:   picker,
		Target: sapgui.Target{
			ServerName:     cfg.ServerName,
			ConnectionName: cfg.ConnectionName,
		},
		Creds: sapgui.Credentials{
			Username: cfg.SAPUsername,
			Password: cfg.SAPPassword,
			Client:   cfg.SAPClient,
			Language: cfg.SAPLanguage,
		},
		Log: log,
	}

	notice := &transaction.NoticeRunner{
		Cfg:   cfg,
		Watch: watcher.New(cfg.NoticeExportDir),
		Log:   log,
	}
	lookup := &transaction.LookupRunner{
		Cfg:   cfg,
		Watch: watcher.New(cfg.LookupExportDir),
		Clip:  clipboard.System{},
		Log:   log,
	}
	reset := func(s sapgui.Session) {
		transaction.ResetToMenu(s, cfg.BackPressMax, log)
	}

	return orchestrator.New(connector, notice, lookup, reset, log)
}
