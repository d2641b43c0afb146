package sapgui

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "accents and punctuation stripped",
			in:   "H181 RP1 CCS Produção (without SSO)",
			want: "h181 rp1 ccs producao without sso",
		},
		{
			name: "whitespace collapsed",
			in:   "  00   SAP\tERP ",
			want: "00 sap erp",
		},
		{
			name: "mixed case",
			in:   "SAP Logon 770",
			want: "sap logon 770",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
		{
			name: "only punctuation",
			in:   "...---...",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestScore(t *testing.T) {
	target := Normalize("H181 RP1 CCS Produção")

	tests := []struct {
		name string
		text string
		want int
	}{
		{
			name: "exact after normalization",
			text: "h181 rp1 ccs producao",
			want: 100,
		},
		{
			name: "target contained in longer label",
			text: "H181 RP1 CCS Produção (without SSO)",
			want: 90,
		},
		{
			name: "label contained in target",
			text: "rp1 ccs producao",
			want: 70,
		},
		{
			name: "token overlap with prefix bonus",
			text: "h181 test system",
			want: 18, // token hit + first-token prefix
		},
		{
			name: "empty label",
			text: "",
			want: -1,
		},
		{
			name: "punctuation-only label",
			text: "---",
			want: -1,
		},
		{
			name: "unrelated label",
			text: "q99 quality assurance",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.text, target); got != tt.want {
				t.Errorf("Score(%q, %q) = %d, want %d", tt.text, target, got, tt.want)
			}
		})
	}
}

func TestScoreOrdersCandidates(t *testing.T) {
	target := Normalize("00 SAP ERP")
	best := Score("00 SAP ERP", target)
	partial := Score("01 SAP ERP QA", target)
	none := Score("Favorites", target)

	if !(best > partial && partial > none) {
		t.Errorf("expected best(%d) > partial(%d) > none(%d)", best, partial, none)
	}
}
