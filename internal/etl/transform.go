package etl

import (
	"fmt"
	"strings"
	"time"

	"sapflow/cli/internal/errs"
	"sapflow/cli/internal/notes"
)

// Record is one merged row destined for the reporting table.
type Record struct {
	NoteID      string
	OpeningDate time.Time
	NoteType    string
	Description string
	Status      string
	WorkCenter  string
	Order       string
	Equipment   string
	Location    string
}

// normalized header names per source workbook
const (
	colNoticeNote = "nnotamedida"
	colNoticeDate = "datadanota"
	colNoticeTime = "horadanota"
	colNoticeType = "tipodenota"
	colNoticeDesc = "descricao"
	colNoticeStat = "status"

	colLookupNote      = "nonotamedida"
	colLookupOrder     = "ordem"
	colLookupEquipment = "equipamento"
	colLookupCenter    = "centrodetrabalho"
	colLookupLocation  = "localdeinstalacao"
)

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02.01.2006",
	"2006-01-02 15:04:05",
}

// ParseDate accepts the date spellings the exports and operators produce.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errs.Validation(fmt.Sprintf("unparseable date %q", s))
}

// normalizeNote reduces a raw cell to the canonical notification id, empty
// when the cell carries none.
func normalizeNote(cell string) string {
	ids := notes.Normalize([]string{cell})
	if len(ids) == 0 {
		return ""
	}
	return ids[0]
}

// Transform merges the notification table with the lookup table by
// notification number. The notification table drives the output; lookup
// context is joined where present and left empty otherwise. Rows without a
// notification id or a parseable date are skipped.
func Transform(notice, lookup Table) ([]Record, error) {
	noteCol := notice.ColumnIndex(colNoticeNote)
	if noteCol < 0 {
		return nil, errs.Validation("notification column missing in notice workbook")
	}
	dateCol := notice.ColumnIndex(colNoticeDate)
	if dateCol < 0 {
		return nil, errs.Validation("date column missing in notice workbook")
	}

	context := indexLookup(lookup)

	cell := func(row []string, col int) string {
		if col < 0 || col >= len(row) {
			return ""
		}
		return row[col]
	}

	typeCol := notice.ColumnIndex(colNoticeType)
	descCol := notice.ColumnIndex(colNoticeDesc)
	statCol := notice.ColumnIndex(colNoticeStat)
	timeCol := notice.ColumnIndex(colNoticeTime)

	out := make([]Record, 0, len(notice.Rows))
	for _, row := range notice.Rows {
		id := normalizeNote(cell(row, noteCol))
		if id == "" {
			continue
		}
		date, err := ParseDate(cell(row, dateCol))
		if err != nil {
			continue
		}
		if hhmm := cell(row, timeCol); hhmm != "" {
			if t, err := time.Parse("15:04:05", hhmm); err == nil {
				date = date.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
			}
		}

		rec := Record{
			NoteID:      id,
			OpeningDate: date,
			NoteType:    cell(row, typeCol),
			Description: cell(row, descCol),
			Status:      cell(row, statCol),
		}
		if ctx, ok := context[id]; ok {
			rec.Order = ctx.Order
			rec.Equipment = ctx.Equipment
			rec.WorkCenter = ctx.WorkCenter
			rec.Location = ctx.Location
		}
		out = append(out, rec)
	}
	if len(out) == 0 {
		return nil, errs.Validation("no loadable rows after transform")
	}
	return out, nil
}

type lookupContext struct {
	Order      string
	Equipment  string
	WorkCenter string
	Location   string
}

func indexLookup(t Table) map[string]lookupContext {
	noteCol := t.ColumnIndex(colLookupNote)
	if noteCol < 0 {
		return nil
	}
	orderCol := t.ColumnIndex(colLookupOrder)
	equipCol := t.ColumnIndex(colLookupEquipment)
	centerCol := t.ColumnIndex(colLookupCenter)
	locCol := t.ColumnIndex(colLookupLocation)

	cell := func(row []string, col int) string {
		if col < 0 || col >= len(row) {
			return ""
		}
		return row[col]
	}

	idx := make(map[string]lookupContext, len(t.Rows))
	for _, row := range t.Rows {
		id := normalizeNote(cell(row, noteCol))
		if id == "" {
			continue
		}
		if _, seen := idx[id]; seen {
			continue
		}
		idx[id] = lookupContext{
			Order:      cell(row, orderCol),
			Equipment:  cell(row, equipCol),
			WorkCenter: cell(row, centerCol),
			Location:   cell(row, locCol),
		}
	}
	return idx
}
