package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "connection error",
			err:  Connection("connection entry not found", nil),
			want: ConnectionFailed,
		},
		{
			name: "control error",
			err:  Control("wnd[0]/usr/ctxtPC_VARIA", nil),
			want: ControlNotFound,
		},
		{
			name: "export timeout",
			err:  Export("/tmp/export-a", "export*.xlsx", 3*time.Minute),
			want: ExportTimeout,
		},
		{
			name: "wrapped with fmt",
			err:  fmt.Errorf("run failed: %w", Validation("end date before start date")),
			want: InvalidCommand,
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: "",
		},
		{
			name: "nil",
			err:  nil,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestControlCarriesIdentifier(t *testing.T) {
	err := Control("wnd[1]/tbar[0]/btn[11]", nil)
	if err.ControlID != "wnd[1]/tbar[0]/btn[11]" {
		t.Fatalf("ControlID = %q", err.ControlID)
	}
	if !strings.Contains(err.Error(), "wnd[1]/tbar[0]/btn[11]") {
		t.Errorf("Error() should mention the control id, got %q", err.Error())
	}
}

func TestExportCarriesContext(t *testing.T) {
	err := Export("/data/export-b", "brs_sap_gov*.xlsx", 180*time.Second)
	if err.Dir != "/data/export-b" || err.Pattern != "brs_sap_gov*.xlsx" {
		t.Fatalf("unexpected context: %+v", err)
	}
	for _, want := range []string{"/data/export-b", "brs_sap_gov*.xlsx", "3m0s"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Error() = %q, missing %q", err.Error(), want)
		}
	}
}

func TestWrapKeepsExistingKind(t *testing.T) {
	inner := Export("/d", "*.xlsx", time.Second)
	wrapped := Wrap(ConnectionFailed, "connect", inner)
	if KindOf(wrapped) != ExportTimeout {
		t.Errorf("Wrap should not reclassify automation errors, got %q", KindOf(wrapped))
	}

	plain := Wrap(ConnectionFailed, "connect", errors.New("com failure"))
	if KindOf(plain) != ConnectionFailed {
		t.Errorf("Wrap(plain) kind = %q, want %q", KindOf(plain), ConnectionFailed)
	}
}
