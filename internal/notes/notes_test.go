package notes

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Nº Nota Medida", "nonotamedida"},
		{"No. Nota Medida", "nonotamedida"},
		{"  N NOTA MEDIDA  ", "nnotamedida"},
		{"Descrição", "descricao"},
		{"Local de Instalação", "localdeinstalacao"},
		{"Status", "status"},
	}
	for _, tt := range tests {
		if got := NormalizeHeader(tt.in); got != tt.want {
			t.Errorf("NormalizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveColumn(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   int
	}{
		{"second column", []string{"Status", "Nº Nota Medida", "Data"}, 1},
		{"alternate spelling", []string{"No. nota medida"}, 0},
		{"missing", []string{"Status", "Data"}, -1},
		{"empty header", nil, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveColumn(tt.header); got != tt.want {
				t.Errorf("ResolveColumn = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "partial item rows dropped, zeros stripped, dedupe first seen",
			in:   []string{"7/000", "12", "012", "12"},
			want: []string{"12"},
		},
		{
			name: "formatting stripped",
			in:   []string{"10.001.234", " 900123 "},
			want: []string{"10001234", "900123"},
		},
		{
			name: "empty and non numeric dropped",
			in:   []string{"", "   ", "sem nota", "42"},
			want: []string{"42"},
		},
		{
			name: "order preserved",
			in:   []string{"3", "1", "2", "1"},
			want: []string{"3", "1", "2"},
		},
		{
			name: "empty input",
			in:   nil,
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	in := []string{"007", "7/000", "42", "042", "42"}
	once := Normalize(in)
	twice := Normalize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("not idempotent: %v vs %v", once, twice)
	}
}

func TestExtractFromWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Status", "Nº Nota Medida"},
		{"aberta", "012345"},
		{"aberta", "7/000"},
		{"fechada", "12345"},
		{"fechada", "99"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	got, err := ExtractFromWorkbook(path)
	if err != nil {
		t.Fatalf("ExtractFromWorkbook: %v", err)
	}
	want := []string{"12345", "99"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestExtractFromWorkbookMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	header := []any{"Status", "Data"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	if _, err := ExtractFromWorkbook(path); err == nil {
		t.Fatal("expected error for missing column")
	}
}
