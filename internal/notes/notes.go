// Package notes turns a raw exported column of SAP notification numbers into
// the clean list the lookup transaction accepts. The rules mirror what
// analysts did by hand before: drop partial-item rows, strip formatting and
// leading zeros, keep first occurrence.
package notes

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"sapflow/cli/internal/errs"
)

// acceptedHeaders are the normalized spellings under which the notification
// number column appears across export layouts.
var acceptedHeaders = map[string]bool{
	"nnotamedida":  true,
	"nonotamedida": true,
}

var foldMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeHeader folds accents out of a header cell, lowercases it and drops
// every remaining non-alphanumeric rune, so "Nº Nota Medida" and
// "No. nota medida" collapse to the same key.
func NormalizeHeader(s string) string {
	folded, _, err := transform.String(foldMarks, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ResolveColumn finds the index of the notification number column in a header
// row, or -1 when no accepted spelling is present.
func ResolveColumn(header []string) int {
	for i, cell := range header {
		if acceptedHeaders[NormalizeHeader(cell)] {
			return i
		}
	}
	return -1
}

// Normalize applies the cleaning rules to a raw column of values:
// rows containing "/000" are dropped, non-digit characters are stripped,
// leading zeros are removed by integer reparse, and duplicates keep their
// first occurrence. Output order follows input order.
func Normalize(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, value := range raw {
		value = strings.TrimSpace(value)
		if value == "" || strings.Contains(value, "/000") {
			continue
		}
		digits := keepDigits(value)
		if digits == "" {
			continue
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			continue
		}
		id := strconv.FormatInt(n, 10)
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ExtractFromWorkbook reads the first sheet of an exported workbook, locates
// the notification number column by header and returns its normalized values.
func ExtractFromWorkbook(path string) ([]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidCommand, fmt.Sprintf("open workbook %s", path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errs.Validation(fmt.Sprintf("workbook %s has no sheets", path))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errs.Wrap(errs.InvalidCommand, fmt.Sprintf("read sheet %s", sheets[0]), err)
	}
	if len(rows) == 0 {
		return nil, errs.Validation(fmt.Sprintf("workbook %s is empty", path))
	}

	col := ResolveColumn(rows[0])
	if col < 0 {
		return nil, errs.Validation(fmt.Sprintf("notification number column not found in %s", path))
	}

	raw := make([]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		raw = append(raw, row[col])
	}
	return Normalize(raw), nil
}
