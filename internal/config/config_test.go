package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.NoticeTcode != "zucrm_039" {
		t.Errorf("NoticeTcode = %q", c.NoticeTcode)
	}
	if c.LookupTcode != "iw59" {
		t.Errorf("LookupTcode = %q", c.LookupTcode)
	}
	if c.ExportTimeout != 180*time.Second {
		t.Errorf("ExportTimeout = %v", c.ExportTimeout)
	}
	if c.BackPressMax != MaxBackPresses {
		t.Errorf("BackPressMax = %d", c.BackPressMax)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SAP_EXPORT_TIMEOUT_SECONDS", "30")
	t.Setenv("SAP_F3_MAX_PRESSES", "20")
	t.Setenv("SAP_ZUCRM_EXPORT_GLOB", "custom*.XLSX")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.ExportTimeout != 30*time.Second {
		t.Errorf("ExportTimeout = %v, want 30s", c.ExportTimeout)
	}
	// The configured maximum is kept as-is here; clamping to the global cap
	// happens in the navigator.
	if c.BackPressMax != 20 {
		t.Errorf("BackPressMax = %d, want 20", c.BackPressMax)
	}
	if c.NoticeExportGlob != "custom*.XLSX" {
		t.Errorf("NoticeExportGlob = %q", c.NoticeExportGlob)
	}
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		name    string
		user    string
		pass    string
		wantErr bool
	}{
		{name: "both present", user: "svc_auto", pass: "secret"},
		{name: "missing password", user: "svc_auto", wantErr: true},
		{name: "missing both", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Config{SAPUsername: tt.user, SAPPassword: tt.pass}
			if err := c.ValidateCredentials(); (err != nil) != tt.wantErr {
				t.Errorf("ValidateCredentials() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
