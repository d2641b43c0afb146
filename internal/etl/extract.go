// Package etl turns a pair of exported workbooks into rows of the reporting
// table: the notification report carries the facts, the lookup export
// contributes the maintenance context, merged by notification number.
package etl

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"sapflow/cli/internal/errs"
	"sapflow/cli/internal/notes"
)

// Pair is one period's pair of history files.
type Pair struct {
	Period     string
	NoticePath string
	LookupPath string
}

var noticeFileRe = regexp.MustCompile(`^sap_gov_sp_(\d{6})\.xlsx$`)

// FindPair locates the notification/lookup workbook pair for period in the
// history directory. An empty period selects the newest complete pair.
func FindPair(dir, period string) (Pair, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Pair{}, errs.Wrap(errs.InvalidCommand, fmt.Sprintf("read history dir %s", dir), err)
	}

	var periods []string
	for _, entry := range entries {
		if m := noticeFileRe.FindStringSubmatch(strings.ToLower(entry.Name())); m != nil {
			periods = append(periods, m[1])
		}
	}
	if len(periods) == 0 {
		return Pair{}, errs.Validation(fmt.Sprintf("no sap_gov_sp files in %s", dir))
	}
	sort.Strings(periods)

	candidates := periods
	if period != "" {
		candidates = []string{period}
	}
	for i := len(candidates) - 1; i >= 0; i-- {
		p := Pair{
			Period:     candidates[i],
			NoticePath: filepath.Join(dir, fmt.Sprintf("sap_gov_sp_%s.xlsx", candidates[i])),
			LookupPath: filepath.Join(dir, fmt.Sprintf("brs_sap_gov_sp_%s.xlsx", candidates[i])),
		}
		if fileExists(p.NoticePath) && fileExists(p.LookupPath) {
			return p, nil
		}
	}
	return Pair{}, errs.Validation(fmt.Sprintf("no complete workbook pair for period %q in %s", period, dir))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Table is a header row plus data rows from one sheet.
type Table struct {
	Header []string
	Rows   [][]string
}

// ColumnIndex resolves a normalized header name to its column, or -1.
func (t Table) ColumnIndex(normalized string) int {
	for i, cell := range t.Header {
		if notes.NormalizeHeader(cell) == normalized {
			return i
		}
	}
	return -1
}

// ReadTable loads the first sheet of a workbook. Header cells are trimmed,
// leading apostrophes SAP uses to force text cells are stripped and fully
// empty rows are dropped.
func ReadTable(path string) (Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Table{}, errs.Wrap(errs.InvalidCommand, fmt.Sprintf("open workbook %s", path), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, errs.Validation(fmt.Sprintf("workbook %s has no sheets", path))
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Table{}, errs.Wrap(errs.InvalidCommand, fmt.Sprintf("read sheet %s", sheets[0]), err)
	}
	if len(rows) == 0 {
		return Table{}, errs.Validation(fmt.Sprintf("workbook %s is empty", path))
	}

	t := Table{Header: make([]string, len(rows[0]))}
	for i, cell := range rows[0] {
		t.Header[i] = strings.TrimSpace(cell)
	}
	for _, row := range rows[1:] {
		cleaned := make([]string, len(row))
		empty := true
		for i, cell := range row {
			cell = strings.TrimSpace(strings.TrimPrefix(cell, "'"))
			cleaned[i] = cell
			if cell != "" {
				empty = false
			}
		}
		if !empty {
			t.Rows = append(t.Rows, cleaned)
		}
	}
	return t, nil
}
