// Package config loads sapflow runtime settings from the environment.
// A local .env file is honored for development, mirroring how the automation
// hosts are provisioned. Secrets (SAP credentials, database DSN) are not kept
// here; they come from the environment or the OS keychain and are resolved by
// the command layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Global cap on back-key presses during navigation reset. The screen-stack
// depth after the notice export is 3 or 4 screens; pressing further would
// land inside another transaction's screen flow.
const MaxBackPresses = 4

// Config holds all runtime settings for the automation core, the HTTP
// trigger surface and the legacy ETL job.
type Config struct {
	// SAP access
	SAPUsername     string
	SAPPassword     string
	SAPClient       string
	SAPLanguage     string
	ServerName      string
	ConnectionName  string
	LogonExecutable string
	StartupTimeout  time.Duration

	// Transaction codes and fixed field values
	NoticeTcode    string
	LookupTcode    string
	NoticeCategory string
	ReportVariant  string

	// Export detection
	NoticeExportDir  string
	LookupExportDir  string
	NoticeExportGlob string
	LookupExportGlob string
	AuditCopyPrefix  string
	ExportTimeout    time.Duration

	// Navigation reset upper bound (clamped to MaxBackPresses)
	BackPressMax int

	// Service surface
	ListenAddr string
	LogLevel   string
	LogFormat  string

	// Legacy ETL
	HistoryDir  string
	DatabaseDSN string
}

// Load reads configuration from the environment, applying the defaults used
// by the production automation host. A .env file in the working directory is
// loaded first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	exportDir := getenv("SAP_EXPORT_DIR", filepath.Join("downloads"))

	c := Config{
		SAPUsername:     os.Getenv("SAP_USERNAME"),
		SAPPassword:     os.Getenv("SAP_PASSWORD"),
		SAPClient:       os.Getenv("SAP_CLIENT"),
		SAPLanguage:     getenv("SAP_LANGUAGE", "PT"),
		ServerName:      getenv("SAP_SERVER_NAME", "00 SAP ERP"),
		ConnectionName:  getenv("SAP_CONNECTION_NAME", "H181 RP1 CCS Producao (without SSO)"),
		LogonExecutable: getenv("SAP_LOGON_EXECUTABLE", `C:\Program Files (x86)\SAP\FrontEnd\SAPgui\saplogon.exe`),
		StartupTimeout:  asSeconds(os.Getenv("SAP_STARTUP_TIMEOUT_SECONDS"), 40),

		NoticeTcode:    getenv("SAP_TRANSACTION_ZUCRM", "zucrm_039"),
		LookupTcode:    getenv("SAP_TRANSACTION_IW59", "iw59"),
		NoticeCategory: getenv("SAP_QMART", "ov"),
		ReportVariant:  getenv("SAP_VARIATION", "/abap ov2"),

		NoticeExportDir:  getenv("SAP_ZUCRM_EXPORT_DIR", filepath.Join(exportDir, "zucrm")),
		LookupExportDir:  getenv("SAP_IW59_EXPORT_DIR", filepath.Join(exportDir, "iw59")),
		NoticeExportGlob: getenv("SAP_ZUCRM_EXPORT_GLOB", "export*.xlsx"),
		LookupExportGlob: getenv("SAP_IW59_EXPORT_GLOB", "brs_sap_gov*.xlsx"),
		AuditCopyPrefix:  getenv("SAP_IW59_COPY_PREFIX", "iw59_full_copy_"),
		ExportTimeout:    asSeconds(os.Getenv("SAP_EXPORT_TIMEOUT_SECONDS"), 180),

		BackPressMax: asInt(os.Getenv("SAP_F3_MAX_PRESSES"), MaxBackPresses),

		ListenAddr: getenv("SAPFLOW_LISTEN_ADDR", ":8080"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		LogFormat:  getenv("LOG_FORMAT", "text"),

		HistoryDir:  getenv("FILE_HISTORY_DIR", "file_history"),
		DatabaseDSN: os.Getenv("SAPFLOW_DSN"),
	}

	if c.BackPressMax < 1 {
		return c, fmt.Errorf("config: SAP_F3_MAX_PRESSES must be positive")
	}
	if c.ExportTimeout <= 0 {
		return c, fmt.Errorf("config: SAP_EXPORT_TIMEOUT_SECONDS must be positive")
	}
	return c, nil
}

// ValidateCredentials reports the env variables still missing after secret
// resolution.
func (c Config) ValidateCredentials() error {
	var missing []string
	if strings.TrimSpace(c.SAPUsername) == "" {
		missing = append(missing, "SAP_USERNAME")
	}
	if strings.TrimSpace(c.SAPPassword) == "" {
		missing = append(missing, "SAP_PASSWORD")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing SAP credentials: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func asInt(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return n
}

func asSeconds(raw string, def int) time.Duration {
	return time.Duration(asInt(raw, def)) * time.Second
}
